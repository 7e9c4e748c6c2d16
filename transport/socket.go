package transport

import (
	"context"
	"fmt"
	"net"
	"os"
)

// ListenSocket listens on a Unix domain socket at path and returns the
// first connection as a transport. A stale socket file is replaced, and
// the file is removed again when the transport closes.
func ListenSocket(ctx context.Context, path string) (Transport, error) {
	_ = os.Remove(path)
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "unix", path)
	if err != nil {
		return nil, fmt.Errorf("listening on unix %s: %w", path, err)
	}
	conn, err := acceptOne(ctx, ln)
	if err != nil {
		_ = os.Remove(path)
		return nil, err
	}
	return &connTransport{Conn: conn, cleanup: func() { _ = os.Remove(path) }}, nil
}
