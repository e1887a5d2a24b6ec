//go:build windows

package player

import (
	"context"
	"fmt"

	"gopkg.in/natefinch/npipe.v2"
)

// Connect establishes the IPC connection over a Windows named pipe.
func (c *IPCClient) Connect(_ context.Context) error {
	conn, err := npipe.Dial(c.socketPath)
	if err != nil {
		return fmt.Errorf("failed to connect to player pipe: %w", err)
	}

	c.conn = conn
	go c.readEvents()
	return nil
}
