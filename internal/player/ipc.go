package player

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"runtime"
	"time"

	"github.com/tsugi-app/tsugi/internal/log"
)

// Wire signal strings bound to the in-player navigation keys.  They arrive
// back as client-message events when the user presses a bound key.
const (
	signalNext     = "next-episode"
	signalPrevious = "previous-episode"
)

// positionProperty is the observed mpv property carrying playback progress
// as a percentage.
const positionProperty = "percent-pos"

// EventKind discriminates the closed set of inbound channel events the
// controller acts on.
type EventKind int

const (
	// EventSignal is an in-player navigation request
	EventSignal EventKind = iota
	// EventPosition is a playback position percentage update
	EventPosition
)

// Event is one parsed inbound message.  Raw JSON is inspected exactly once,
// at the channel boundary; everything downstream switches on Kind.
type Event struct {
	Kind    EventKind
	Action  NavigationAction // set for EventSignal
	Percent float64          // set for EventPosition
}

// IPCClient speaks mpv's line-delimited JSON IPC protocol over a unix socket
// or Windows named pipe.
type IPCClient struct {
	socketPath string
	conn       net.Conn
	events     chan Event
}

// NewIPCClient creates a client for the given socket path.  No connection is
// made until Connect or WaitForConnection.
func NewIPCClient(socketPath string) *IPCClient {
	return &IPCClient{
		socketPath: socketPath,
		events:     make(chan Event, 100),
	}
}

// WaitForConnection attempts to connect with a bounded retry loop.  The
// player process needs a moment after spawn before its IPC endpoint listens,
// so a fixed number of attempts with a fixed delay covers startup without
// hanging forever when the endpoint never appears.
func (c *IPCClient) WaitForConnection(ctx context.Context, maxAttempts int, retryDelay time.Duration) error {
	log.Debug("Waiting for player IPC endpoint", "socket_path", c.socketPath, "max_attempts", maxAttempts)

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		// On unix the socket file appearing is the cheapest readiness signal
		if runtime.GOOS != "windows" {
			if _, err := os.Stat(c.socketPath); os.IsNotExist(err) {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(retryDelay):
					continue
				}
			}
		}

		err := c.Connect(ctx)
		if err == nil {
			log.Debug("Connected to player IPC endpoint", "attempt", attempt)
			return nil
		}

		log.Trace("IPC connect attempt failed", "attempt", attempt, "error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryDelay):
		}
	}

	return fmt.Errorf("IPC endpoint not reachable after %d attempts", maxAttempts)
}

// Close closes the connection, which also stops the event reader.
func (c *IPCClient) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Events returns the channel of parsed inbound events.  The channel is closed
// when the connection is lost.
func (c *IPCClient) Events() <-chan Event {
	return c.events
}

// readEvents reads lines until the connection drops, forwarding the events
// the controller cares about.
func (c *IPCClient) readEvents() {
	scanner := bufio.NewScanner(c.conn)
	for scanner.Scan() {
		line := scanner.Bytes()
		log.Trace("Raw player message", "data", string(line))

		if event, ok := parseEvent(line); ok {
			c.events <- event
		}
	}

	if err := scanner.Err(); err != nil {
		log.Debug("Player IPC read ended", "error", err)
	}

	close(c.events)
}

// wireMessage is the raw shape of an inbound mpv IPC line
type wireMessage struct {
	Event string          `json:"event"`
	Args  []string        `json:"args,omitempty"`
	Name  string          `json:"name,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// parseEvent turns one wire line into a typed Event.  Command replies and
// events the controller does not act on report ok=false.
func parseEvent(line []byte) (Event, bool) {
	var msg wireMessage
	if err := json.Unmarshal(line, &msg); err != nil {
		log.Warn("Failed to parse player message", "error", err)
		return Event{}, false
	}

	switch msg.Event {
	case "client-message":
		if len(msg.Args) == 0 {
			return Event{}, false
		}
		switch msg.Args[0] {
		case signalNext:
			return Event{Kind: EventSignal, Action: ActionNext}, true
		case signalPrevious:
			return Event{Kind: EventSignal, Action: ActionPrevious}, true
		}
		return Event{}, false

	case "property-change":
		if msg.Name != positionProperty {
			return Event{}, false
		}
		var percent float64
		if err := json.Unmarshal(msg.Data, &percent); err != nil {
			// mpv sends a null payload while no file is loaded
			return Event{}, false
		}
		return Event{Kind: EventPosition, Percent: percent}, true
	}

	return Event{}, false
}

// SendCommand sends a {"command": [...]} object to the player.
func (c *IPCClient) SendCommand(cmd []interface{}) error {
	if c.conn == nil {
		return fmt.Errorf("not connected to player")
	}

	data, err := json.Marshal(map[string]interface{}{"command": cmd})
	if err != nil {
		return fmt.Errorf("failed to marshal command: %w", err)
	}

	data = append(data, '\n')
	if _, err := c.conn.Write(data); err != nil {
		return fmt.Errorf("failed to send command: %w", err)
	}

	return nil
}

// Keybind registers an in-player key that emits the given script-message
// signal when pressed.
func (c *IPCClient) Keybind(key, signal string) error {
	return c.SendCommand([]interface{}{"keybind", key, "script-message", signal})
}

// ObserveProperty subscribes to change notifications for an mpv property.
func (c *IPCClient) ObserveProperty(id int, name string) error {
	return c.SendCommand([]interface{}{"observe_property", id, name})
}

// ShowText displays a transient on-screen message in the player.
func (c *IPCClient) ShowText(text string) error {
	return c.SendCommand([]interface{}{"show-text", text})
}

// LoadFile replaces the currently playing media without restarting the
// player process.
func (c *IPCClient) LoadFile(url string) error {
	return c.SendCommand([]interface{}{"loadfile", url})
}

// SetTitle updates the player window title.
func (c *IPCClient) SetTitle(title string) error {
	return c.SendCommand([]interface{}{"set_property", "title", title})
}
