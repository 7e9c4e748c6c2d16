package transport

import (
	"context"
	"fmt"
	"net"
)

// TCP creates a transport from an established connection.
func TCP(conn net.Conn) Transport {
	return &connTransport{Conn: conn}
}

// ListenTCP listens on addr and returns the first connection as a
// transport. The listener is closed once a client connects.
func ListenTCP(ctx context.Context, addr string) (Transport, error) {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listening on tcp %s: %w", addr, err)
	}
	conn, err := acceptOne(ctx, ln)
	if err != nil {
		return nil, err
	}
	return TCP(conn), nil
}
