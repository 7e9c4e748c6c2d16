package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"golang.org/x/net/websocket"
)

// ListenWebSocket serves a WebSocket endpoint at path on addr and returns
// the first client as a transport. Each JSON-RPC frame travels as one
// binary or text message. The HTTP server stops when the transport closes.
func ListenWebSocket(ctx context.Context, addr, path string) (Transport, error) {
	if path == "" {
		path = "/"
	}
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listening on ws %s: %w", addr, err)
	}

	connCh := make(chan *wsTransport, 1)
	var once sync.Once
	mux := http.NewServeMux()
	mux.Handle(path, websocket.Handler(func(ws *websocket.Conn) {
		t := &wsTransport{conn: ws, done: make(chan struct{})}
		accepted := false
		once.Do(func() {
			accepted = true
			connCh <- t
		})
		if !accepted {
			ws.Close()
			return
		}
		// The connection lives as long as this handler does.
		<-t.done
	}))

	srv := &http.Server{Handler: mux}
	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case t := <-connCh:
		t.srv = srv
		return t, nil
	case err := <-serveErr:
		return nil, fmt.Errorf("serving websocket: %w", err)
	case <-ctx.Done():
		srv.Close()
		return nil, ctx.Err()
	}
}

type wsTransport struct {
	conn *websocket.Conn
	srv  *http.Server
	done chan struct{}

	mu   sync.Mutex
	rest []byte

	closeOnce sync.Once
}

// Read returns bytes from the current message, receiving the next one
// once the previous message has been consumed.
func (w *wsTransport) Read(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for len(w.rest) == 0 {
		var msg []byte
		if err := websocket.Message.Receive(w.conn, &msg); err != nil {
			return 0, err
		}
		w.rest = msg
	}
	n := copy(p, w.rest)
	w.rest = w.rest[n:]
	return n, nil
}

func (w *wsTransport) Write(p []byte) (int, error) {
	if err := websocket.Message.Send(w.conn, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *wsTransport) Close() error {
	var err error
	w.closeOnce.Do(func() {
		err = w.conn.Close()
		close(w.done)
		if w.srv != nil {
			w.srv.Close()
		}
	})
	return err
}
