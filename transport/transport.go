// Package transport provides the byte streams a hilite server runs over:
// stdio, TCP, Unix domain sockets, WebSocket and an in-memory pipe.
package transport

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/url"
	"strings"
)

// Transport provides a bidirectional byte stream for JSON-RPC communication.
type Transport interface {
	io.ReadWriteCloser
}

// Open returns the transport named by target:
//
//	"" or "stdio"          standard input and output
//	"tcp://host:port"      first TCP client on the address
//	"unix:///path/to.sock" first client on a Unix domain socket
//	"ws://host:port/path"  first WebSocket client
//
// The listening variants block until a client connects or ctx is done.
func Open(ctx context.Context, target string) (Transport, error) {
	if target == "" || target == "stdio" {
		return Stdio(), nil
	}
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("parsing transport %q: %w", target, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "tcp":
		return ListenTCP(ctx, u.Host)
	case "unix":
		return ListenSocket(ctx, u.Path)
	case "ws":
		return ListenWebSocket(ctx, u.Host, u.Path)
	default:
		return nil, fmt.Errorf("unsupported transport scheme %q", u.Scheme)
	}
}

// acceptOne accepts a single connection from ln and closes the listener.
// Cancelling ctx unblocks the accept.
func acceptOne(ctx context.Context, ln net.Listener) (net.Conn, error) {
	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()
	defer ln.Close()

	conn, err := ln.Accept()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("accepting on %s: %w", ln.Addr(), err)
	}
	return conn, nil
}

// connTransport adapts a net.Conn. cleanup runs once after the conn closes.
type connTransport struct {
	net.Conn
	cleanup func()
}

func (c *connTransport) Close() error {
	err := c.Conn.Close()
	if c.cleanup != nil {
		c.cleanup()
		c.cleanup = nil
	}
	return err
}
