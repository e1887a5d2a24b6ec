package player

import (
	"bufio"
	"encoding/json"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEvent(t *testing.T) {
	t.Run("NextEpisodeSignal", func(t *testing.T) {
		event, ok := parseEvent([]byte(`{"event":"client-message","args":["next-episode"]}`))
		require.True(t, ok)
		assert.Equal(t, EventSignal, event.Kind)
		assert.Equal(t, ActionNext, event.Action)
	})

	t.Run("PreviousEpisodeSignal", func(t *testing.T) {
		event, ok := parseEvent([]byte(`{"event":"client-message","args":["previous-episode"]}`))
		require.True(t, ok)
		assert.Equal(t, EventSignal, event.Kind)
		assert.Equal(t, ActionPrevious, event.Action)
	})

	t.Run("UnknownClientMessage", func(t *testing.T) {
		_, ok := parseEvent([]byte(`{"event":"client-message","args":["screenshot"]}`))
		assert.False(t, ok)
	})

	t.Run("ClientMessageWithoutArgs", func(t *testing.T) {
		_, ok := parseEvent([]byte(`{"event":"client-message"}`))
		assert.False(t, ok)
	})

	t.Run("PositionUpdate", func(t *testing.T) {
		event, ok := parseEvent([]byte(`{"event":"property-change","name":"percent-pos","data":42.5}`))
		require.True(t, ok)
		assert.Equal(t, EventPosition, event.Kind)
		assert.InDelta(t, 42.5, event.Percent, 0.0001)
	})

	t.Run("PositionUpdateWithNullData", func(t *testing.T) {
		// mpv reports a null position while no file is loaded
		_, ok := parseEvent([]byte(`{"event":"property-change","name":"percent-pos","data":null}`))
		assert.False(t, ok)
	})

	t.Run("OtherPropertyChange", func(t *testing.T) {
		_, ok := parseEvent([]byte(`{"event":"property-change","name":"pause","data":true}`))
		assert.False(t, ok)
	})

	t.Run("CommandReply", func(t *testing.T) {
		_, ok := parseEvent([]byte(`{"error":"success","request_id":0}`))
		assert.False(t, ok)
	})

	t.Run("MalformedJSON", func(t *testing.T) {
		_, ok := parseEvent([]byte(`{not json`))
		assert.False(t, ok)
	})
}

// readCommand reads one newline-delimited command object from the server side
// of a piped connection.
func readCommand(t *testing.T, conn net.Conn) []interface{} {
	t.Helper()

	scanner := bufio.NewScanner(conn)
	require.True(t, scanner.Scan(), "expected a command line from the client")

	var msg struct {
		Command []interface{} `json:"command"`
	}
	require.NoError(t, json.Unmarshal(scanner.Bytes(), &msg))
	return msg.Command
}

func TestSendCommand(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	t.Cleanup(func() {
		clientConn.Close()
		serverConn.Close()
	})

	client := NewIPCClient("test")
	client.conn = clientConn

	t.Run("LoadFile", func(t *testing.T) {
		go func() {
			_ = client.LoadFile("https://example.com/episode-2.mp4")
		}()
		cmd := readCommand(t, serverConn)
		assert.Equal(t, []interface{}{"loadfile", "https://example.com/episode-2.mp4"}, cmd)
	})

	t.Run("Keybind", func(t *testing.T) {
		go func() {
			_ = client.Keybind("Shift+N", "next-episode")
		}()
		cmd := readCommand(t, serverConn)
		assert.Equal(t, []interface{}{"keybind", "Shift+N", "script-message", "next-episode"}, cmd)
	})

	t.Run("ObserveProperty", func(t *testing.T) {
		go func() {
			_ = client.ObserveProperty(1, "percent-pos")
		}()
		cmd := readCommand(t, serverConn)
		// JSON round-trips the id as a float64
		assert.Equal(t, []interface{}{"observe_property", float64(1), "percent-pos"}, cmd)
	})

	t.Run("SetTitle", func(t *testing.T) {
		go func() {
			_ = client.SetTitle("Cowboy Bebop - Episode 5")
		}()
		cmd := readCommand(t, serverConn)
		assert.Equal(t, []interface{}{"set_property", "title", "Cowboy Bebop - Episode 5"}, cmd)
	})

	t.Run("NotConnected", func(t *testing.T) {
		disconnected := NewIPCClient("test")
		assert.Error(t, disconnected.SendCommand([]interface{}{"loadfile", "x"}))
	})
}

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"Empty", "", nil},
		{"Single", "--mute", []string{"--mute"}},
		{"Multiple", "--mute --volume=50", []string{"--mute", "--volume=50"}},
		{"DoubleQuoted", `--title="My Show"`, []string{"--title=My Show"}},
		{"SingleQuoted", `--title='My Show'`, []string{"--title=My Show"}},
		{"MixedQuotes", `--msg="it's fine"`, []string{"--msg=it's fine"}},
		{"ExtraWhitespace", "  --mute   --fs  ", []string{"--mute", "--fs"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseArgs(tt.input))
		})
	}
}
