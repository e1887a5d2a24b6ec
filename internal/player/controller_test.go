//go:build !windows

package player

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsugi-app/tsugi/internal/config"
)

// writeFakePlayer writes a stand-in player binary that accepts any arguments
// and stays alive briefly, like a player window a user closes shortly after.
func writeFakePlayer(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fake-mpv")
	script := "#!/bin/sh\nsleep 1\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

// fakeSession is the server end of the IPC socket: it records every command
// the controller sends and lets a test script push events back.
type fakeSession struct {
	t        *testing.T
	conn     net.Conn
	commands chan []interface{}
}

// serveFakePlayer listens on the socket the controller will connect to and
// runs the given script once the controller's connection arrives.
func serveFakePlayer(t *testing.T, socketPath string, script func(s *fakeSession)) {
	t.Helper()

	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)
	t.Cleanup(func() { listener.Close() })

	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}

		s := &fakeSession{t: t, conn: conn, commands: make(chan []interface{}, 64)}
		go func() {
			scanner := bufio.NewScanner(conn)
			for scanner.Scan() {
				var msg struct {
					Command []interface{} `json:"command"`
				}
				if json.Unmarshal(scanner.Bytes(), &msg) == nil && len(msg.Command) > 0 {
					s.commands <- msg.Command
				}
			}
			close(s.commands)
		}()

		script(s)
	}()
}

// send pushes one raw event line to the controller.
func (s *fakeSession) send(line string) {
	if _, err := s.conn.Write([]byte(line + "\n")); err != nil {
		s.t.Logf("fake player write failed: %v", err)
	}
}

// await blocks until the controller sends a command with the given name,
// skipping unrelated commands along the way.
func (s *fakeSession) await(name string) []interface{} {
	deadline := time.After(3 * time.Second)
	for {
		select {
		case cmd, ok := <-s.commands:
			if !ok {
				s.t.Errorf("connection closed while waiting for %q command", name)
				return nil
			}
			if cmd[0] == name {
				return cmd
			}
		case <-deadline:
			s.t.Errorf("timed out waiting for %q command", name)
			return nil
		}
	}
}

func newTestController(t *testing.T, socketPath string) *Controller {
	t.Helper()

	t.Setenv("TSUGI_MPV_SOCKET", socketPath)
	cfg := &config.Config{}
	cfg.Player.Path = writeFakePlayer(t)
	return NewController(cfg)
}

func TestPlayTracksHighestPosition(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "mpv.sock")
	ctrl := newTestController(t, socketPath)

	serveFakePlayer(t, socketPath, func(s *fakeSession) {
		// The controller registers bindings and observation on connect
		s.await("observe_property")

		s.send(`{"event":"property-change","name":"percent-pos","data":45.0}`)
		s.send(`{"event":"property-change","name":"percent-pos","data":80.0}`)
		// A seek backwards must not lower the reported figure
		s.send(`{"event":"property-change","name":"percent-pos","data":30.0}`)
	})

	percent, err := ctrl.Play(context.Background(), PlayOptions{URL: "https://example.com/ep1.mp4"}, nil)
	require.NoError(t, err)
	assert.InDelta(t, 80.0, percent, 0.0001)
}

func TestPlaySwapsEpisodeAndResetsProgress(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "mpv.sock")
	ctrl := newTestController(t, socketPath)

	nav := NavigatorFunc(func(ctx context.Context, action NavigationAction) (*PlayOptions, error) {
		require.Equal(t, ActionNext, action)
		return &PlayOptions{
			URL:   "https://example.com/ep2.mp4",
			Title: "Test Show - Episode 2",
		}, nil
	})

	var loadfile, title []interface{}
	done := make(chan struct{})
	serveFakePlayer(t, socketPath, func(s *fakeSession) {
		s.await("observe_property")

		s.send(`{"event":"property-change","name":"percent-pos","data":75.0}`)
		s.send(`{"event":"client-message","args":["next-episode"]}`)

		loadfile = s.await("loadfile")
		title = s.await("set_property")

		// Progress on the new episode, well below the old high-water mark
		s.send(`{"event":"property-change","name":"percent-pos","data":20.0}`)
		close(done)
	})

	percent, err := ctrl.Play(context.Background(), PlayOptions{URL: "https://example.com/ep1.mp4"}, nav)
	require.NoError(t, err)
	<-done

	// The figure describes the swapped-in episode, not the 75% from before
	assert.InDelta(t, 20.0, percent, 0.0001)
	assert.Equal(t, []interface{}{"loadfile", "https://example.com/ep2.mp4"}, loadfile)
	assert.Equal(t, []interface{}{"set_property", "title", "Test Show - Episode 2"}, title)
}

func TestPlayNavigationWithNoEpisodeLeavesPlaybackAlone(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "mpv.sock")
	ctrl := newTestController(t, socketPath)

	nav := NavigatorFunc(func(ctx context.Context, action NavigationAction) (*PlayOptions, error) {
		return nil, nil
	})

	var sawLoadfile bool
	done := make(chan struct{})
	serveFakePlayer(t, socketPath, func(s *fakeSession) {
		s.await("observe_property")

		s.send(`{"event":"property-change","name":"percent-pos","data":60.0}`)
		s.send(`{"event":"client-message","args":["previous-episode"]}`)

		// Drain until the connection drops at player exit
		for cmd := range s.commands {
			if cmd[0] == "loadfile" {
				sawLoadfile = true
			}
		}
		close(done)
	})

	percent, err := ctrl.Play(context.Background(), PlayOptions{URL: "https://example.com/ep1.mp4"}, nav)
	require.NoError(t, err)
	<-done
	assert.InDelta(t, 60.0, percent, 0.0001)
	assert.False(t, sawLoadfile, "no media swap should happen when there is no episode to swap to")
}

func TestPlayDegradesWhenIPCUnavailable(t *testing.T) {
	// Nobody listens on this socket, so the handshake must give up
	socketPath := filepath.Join(t.TempDir(), "mpv.sock")
	ctrl := newTestController(t, socketPath)
	ctrl.ConnectAttempts = 3
	ctrl.ConnectRetryDelay = 10 * time.Millisecond

	percent, err := ctrl.Play(context.Background(), PlayOptions{URL: "https://example.com/ep1.mp4"}, nil)
	require.NoError(t, err)
	assert.Zero(t, percent)
}

func TestPlaySpawnFailures(t *testing.T) {
	t.Run("EmptyURL", func(t *testing.T) {
		ctrl := NewController(&config.Config{})
		_, err := ctrl.Play(context.Background(), PlayOptions{}, nil)

		var spawnErr *SpawnError
		assert.ErrorAs(t, err, &spawnErr)
	})

	t.Run("MissingBinary", func(t *testing.T) {
		t.Setenv("TSUGI_MPV_SOCKET", filepath.Join(t.TempDir(), "mpv.sock"))
		cfg := &config.Config{}
		cfg.Player.Path = filepath.Join(t.TempDir(), "does-not-exist")
		ctrl := NewController(cfg)

		_, err := ctrl.Play(context.Background(), PlayOptions{URL: "https://example.com/ep1.mp4"}, nil)

		var spawnErr *SpawnError
		require.ErrorAs(t, err, &spawnErr)
		assert.NotNil(t, spawnErr.Unwrap())
	})
}

func TestBuildArgs(t *testing.T) {
	cfg := &config.Config{}
	cfg.Player.Args = `--volume=50 --mute`
	ctrl := NewController(cfg)

	opts := PlayOptions{
		URL:       "https://example.com/ep1.mp4",
		Title:     "Test Show - Episode 1",
		StartTime: "120",
		Headers: []Header{
			{Key: "Referer", Value: "https://example.com/"},
			{Key: "User-Agent", Value: "test-agent"},
		},
		Subtitles: []string{"https://example.com/ep1.vtt"},
	}

	args := ctrl.buildArgs(opts, "/tmp/test.sock")

	assert.Contains(t, args, "--input-ipc-server=/tmp/test.sock")
	assert.Contains(t, args, "--http-header-fields=Referer: https://example.com/,User-Agent: test-agent")
	assert.Contains(t, args, "--title=Test Show - Episode 1")
	assert.Contains(t, args, "--start=120")
	assert.Contains(t, args, "--sub-file=https://example.com/ep1.vtt")
	assert.Contains(t, args, "--volume=50")
	assert.Contains(t, args, "--mute")

	// The media URL always goes last
	assert.Equal(t, "https://example.com/ep1.mp4", args[len(args)-1])
}
