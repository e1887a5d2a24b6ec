package player

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/tsugi-app/tsugi/internal/config"
	"github.com/tsugi-app/tsugi/internal/log"
)

// Connection retry budget for the IPC handshake.  mpv needs a short window
// after spawn before the endpoint listens; there is deliberately no backoff.
const (
	defaultConnectAttempts   = 20
	defaultConnectRetryDelay = 100 * time.Millisecond
)

// Key bindings registered in the player for episode navigation.  Each
// direction gets a primary key and a fallback for layouts where the primary
// is awkward to reach.
var navigationKeybinds = []struct {
	key    string
	signal string
}{
	{"Shift+N", signalNext},
	{">", signalNext},
	{"Shift+P", signalPrevious},
	{"<", signalPrevious},
}

// Controller launches one mpv process per Play call and drives it over IPC.
type Controller struct {
	cfg *config.Config

	// ConnectAttempts and ConnectRetryDelay bound the IPC handshake.  They
	// default to the package constants and exist as fields so tests can
	// tighten them.
	ConnectAttempts   int
	ConnectRetryDelay time.Duration
}

// NewController creates a playback controller using the configured player
// binary and arguments.
func NewController(cfg *config.Config) *Controller {
	return &Controller{
		cfg:               cfg,
		ConnectAttempts:   defaultConnectAttempts,
		ConnectRetryDelay: defaultConnectRetryDelay,
	}
}

// Play launches the player with the given options and blocks until the player
// process exits.  It returns the highest playback percentage observed for the
// episode that was loaded when the player closed.
//
// When a Navigator is supplied, the in-player navigation keys swap the loaded
// episode without restarting the process.  A nil Navigator leaves the keys
// inert.
//
// Only a spawn failure produces an error.  If the IPC channel cannot be
// established the call degrades to plain playback: no navigation, no progress
// tracking, a clean zero result once the player exits.
func (c *Controller) Play(ctx context.Context, opts PlayOptions, nav Navigator) (float64, error) {
	if opts.URL == "" {
		return 0, &SpawnError{Err: errors.New("no playable URL")}
	}

	socketPath := newSocketPath()

	playerPath := c.cfg.Player.Path
	if playerPath == "" {
		playerPath = "mpv"
	}

	args := c.buildArgs(opts, socketPath)
	log.Info("Launching player", "path", playerPath, "url", opts.URL, "socket", socketPath)

	cmd := exec.Command(playerPath, args...)
	setupPlayerProcess(cmd)

	if err := cmd.Start(); err != nil {
		return 0, &SpawnError{Err: err}
	}

	// One goroutine owns Wait; the event loop learns about process death
	// through this channel.
	exited := make(chan error, 1)
	go func() {
		exited <- cmd.Wait()
	}()

	defer removeSocketFile(socketPath)

	ipc := NewIPCClient(socketPath)
	if err := ipc.WaitForConnection(ctx, c.ConnectAttempts, c.ConnectRetryDelay); err != nil {
		// Degraded mode: the user still gets their video, we just cannot
		// observe it.  Wait for the player to close and report zero progress.
		log.Warn("IPC channel unavailable, navigation and progress tracking disabled", "error", err)
		<-exited
		return 0, nil
	}
	defer ipc.Close()

	c.registerBindings(ipc, nav)

	// maxPercent tracks the highest position seen for the currently loaded
	// episode.  It resets on every successful swap so the returned value
	// always describes the episode the user actually finished on.
	var maxPercent float64
	processExited := false

loop:
	for {
		select {
		case err := <-exited:
			log.Debug("Player process exited", "error", err)
			processExited = true
			break loop

		case event, ok := <-ipc.Events():
			if !ok {
				// Losing the channel is treated like process exit:  without
				// it there is nothing left to control.
				log.Warn("Player IPC channel lost before process exit")
				break loop
			}

			switch event.Kind {
			case EventPosition:
				if event.Percent > maxPercent {
					maxPercent = event.Percent
				}
			case EventSignal:
				c.handleNavigation(ctx, ipc, nav, event.Action, &maxPercent)
			}
		}
	}

	ipc.Close()
	if !processExited {
		<-exited
	}

	log.Info("Playback finished", "watched_percent", maxPercent)
	return maxPercent, nil
}

// registerBindings sets up the navigation keys and position observation.
// Binding failures are logged and tolerated: playback works without them.
func (c *Controller) registerBindings(ipc *IPCClient, nav Navigator) {
	for _, bind := range navigationKeybinds {
		if err := ipc.Keybind(bind.key, bind.signal); err != nil {
			log.Warn("Failed to register player keybind", "key", bind.key, "error", err)
		}
	}

	if err := ipc.ObserveProperty(1, positionProperty); err != nil {
		log.Warn("Failed to observe playback position", "error", err)
	}

	if nav == nil {
		log.Debug("No navigator supplied, navigation keys will be inert")
	}
}

// handleNavigation runs the swap protocol for one navigation signal.  Every
// signal ends in exactly one visible outcome: a successful swap, a not-found
// notice, or an error notice.
func (c *Controller) handleNavigation(ctx context.Context, ipc *IPCClient, nav Navigator, action NavigationAction, maxPercent *float64) {
	if nav == nil {
		log.Debug("Navigation signal ignored, no navigator", "action", action)
		return
	}

	direction := "next"
	if action == ActionPrevious {
		direction = "previous"
	}

	log.Info("Navigation requested", "action", action)
	_ = ipc.ShowText(fmt.Sprintf("Fetching %s episode...", direction))

	opts, err := nav.Resolve(ctx, action)
	switch {
	case err != nil:
		log.Error("Episode resolution failed", "action", action, "error", err)
		_ = ipc.ShowText(fmt.Sprintf("Error: %v", err))

	case opts == nil:
		log.Info("No episode in requested direction", "action", action)
		_ = ipc.ShowText(fmt.Sprintf("No %s episode found", direction))

	default:
		if err := ipc.LoadFile(opts.URL); err != nil {
			log.Error("Failed to load new media", "error", err)
			_ = ipc.ShowText(fmt.Sprintf("Error: %v", err))
			return
		}
		if opts.Title != "" {
			_ = ipc.SetTitle(opts.Title)
		}
		// The fraction now describes the freshly loaded episode.  Reset only
		// here, on a confirmed load:  failed or not-found navigation leaves
		// the current episode and its progress untouched.
		*maxPercent = 0
		log.Info("Swapped to new episode", "title", opts.Title)
	}
}

// buildArgs translates PlayOptions into the mpv invocation.
func (c *Controller) buildArgs(opts PlayOptions, socketPath string) []string {
	args := []string{
		"--force-window=yes",
		"--keep-open=yes",
		"--input-ipc-server=" + socketPath,
		"--term-osd-bar",
		"--term-status-msg=Status: ${time-pos} / ${duration} (${percent-pos}%)",
	}

	if len(opts.Headers) > 0 {
		fields := make([]string, 0, len(opts.Headers))
		for _, h := range opts.Headers {
			fields = append(fields, h.Key+": "+h.Value)
		}
		args = append(args, "--http-header-fields="+strings.Join(fields, ","))
	}

	if opts.Title != "" {
		args = append(args, "--title="+opts.Title)
	}

	if opts.StartTime != "" {
		args = append(args, "--start="+opts.StartTime)
	}

	for _, sub := range opts.Subtitles {
		args = append(args, "--sub-file="+sub)
	}

	if c.cfg.Player.Args != "" {
		args = append(args, ParseArgs(c.cfg.Player.Args)...)
	}

	return append(args, opts.URL)
}

// newSocketPath returns a control-channel endpoint unique to this invocation
// so concurrent or back-to-back plays never collide.  The environment
// override exists for debugging against a known socket.
func newSocketPath() string {
	if path := os.Getenv("TSUGI_MPV_SOCKET"); path != "" {
		return path
	}

	name := fmt.Sprintf("tsugi-mpv-%d-%d", os.Getpid(), time.Now().UnixNano())
	if runtime.GOOS == "windows" {
		return `\\.\pipe\` + name
	}
	return filepath.Join(os.TempDir(), name+".sock")
}

// removeSocketFile cleans up the unix socket artifact after playback.
func removeSocketFile(socketPath string) {
	if runtime.GOOS == "windows" {
		return
	}
	if _, err := os.Stat(socketPath); err == nil {
		if err := os.Remove(socketPath); err != nil {
			log.Warn("Failed to remove player socket file", "path", socketPath, "error", err)
		}
	}
}
