//go:build !windows

package player

import (
	"context"
	"fmt"
	"net"
)

// Connect establishes the IPC connection over a unix domain socket.
func (c *IPCClient) Connect(ctx context.Context) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return fmt.Errorf("failed to connect to player socket: %w", err)
	}

	c.conn = conn
	go c.readEvents()
	return nil
}
