// Package jsonrpc implements a bidirectional JSON-RPC 2.0 connection over
// Content-Length framed streams, as specified by the LSP base protocol.
package jsonrpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// Handler processes an incoming JSON-RPC request or notification.
type Handler func(ctx context.Context, method string, params RawMessage) (result any, err error)

// NotificationHandler processes an incoming JSON-RPC notification.
type NotificationHandler func(ctx context.Context, method string, params RawMessage)

// inboxSize is how many requests and notifications may wait behind the one
// being handled before the read loop blocks.
const inboxSize = 128

// ErrClosed is returned by Call when the connection shuts down before a
// response arrives.
var ErrClosed = errors.New("jsonrpc: connection closed")

// Conn is a bidirectional JSON-RPC 2.0 connection.
//
// Requests and notifications are dispatched one at a time, in arrival
// order, on a single worker goroutine. Responses to outgoing calls are
// delivered from the read loop, so a handler may Call the peer without
// deadlocking.
type Conn struct {
	codec   *Codec
	handler Handler
	notif   NotificationHandler

	inbox     chan Message
	pending   sync.Map // id -> chan *Response
	nextID    atomic.Int64
	closeOnce sync.Once
	done      chan struct{}
}

// NewConn creates a new JSON-RPC connection using the given codec, request
// handler, and notification handler.
func NewConn(codec *Codec, handler Handler, notif NotificationHandler) *Conn {
	return &Conn{
		codec:   codec,
		handler: handler,
		notif:   notif,
		inbox:   make(chan Message, inboxSize),
		done:    make(chan struct{}),
	}
}

// Run reads messages from the connection until it is closed or an error
// occurs. Messages already queued are handled before Run returns.
func (c *Conn) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.work(ctx)
	}()

	err := c.read(ctx)
	close(c.inbox)
	wg.Wait()
	c.Close()
	return err
}

func (c *Conn) read(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.done:
			return nil
		default:
		}

		data, err := c.codec.Read()
		if err != nil {
			select {
			case <-c.done:
				return nil
			default:
				return fmt.Errorf("reading message: %w", err)
			}
		}

		msg, err := DecodeMessage(data)
		if err != nil {
			c.reply(NewResponse(ID{}, nil, err))
			continue
		}

		if resp, ok := msg.(*Response); ok {
			c.handleResponse(resp)
			continue
		}
		select {
		case c.inbox <- msg:
		case <-ctx.Done():
			return ctx.Err()
		case <-c.done:
			return nil
		}
	}
}

func (c *Conn) work(ctx context.Context) {
	for msg := range c.inbox {
		switch m := msg.(type) {
		case *Request:
			c.handleRequest(ctx, m)
		case *Notification:
			c.handleNotification(ctx, m)
		}
	}
}

func (c *Conn) handleRequest(ctx context.Context, req *Request) {
	var (
		result any
		err    error
	)
	if c.handler != nil {
		result, err = c.handler(ctx, req.Method, req.Params)
	} else {
		err = Errorf(CodeMethodNotFound, "method not found: %s", req.Method)
	}
	c.reply(NewResponse(req.ID, result, err))
}

func (c *Conn) handleNotification(ctx context.Context, notif *Notification) {
	if c.notif != nil {
		c.notif(ctx, notif.Method, notif.Params)
	} else if c.handler != nil {
		_, _ = c.handler(ctx, notif.Method, notif.Params)
	}
}

func (c *Conn) handleResponse(resp *Response) {
	if ch, ok := c.pending.LoadAndDelete(resp.ID.String()); ok {
		ch.(chan *Response) <- resp
	}
}

func (c *Conn) reply(resp *Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	_ = c.codec.Write(data)
}

// Call sends a request and waits for a response.
func (c *Conn) Call(ctx context.Context, method string, params any) (*Response, error) {
	id := IntID(c.nextID.Add(1))
	paramsData, err := marshalParams(params)
	if err != nil {
		return nil, err
	}

	req := &Request{
		JSONRPC: Version,
		ID:      id,
		Method:  method,
		Params:  paramsData,
	}

	ch := make(chan *Response, 1)
	c.pending.Store(id.String(), ch)
	defer c.pending.Delete(id.String())

	data, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	if err := c.codec.Write(data); err != nil {
		return nil, err
	}

	select {
	case resp := <-ch:
		return resp, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.done:
		return nil, ErrClosed
	}
}

// Notify sends a notification (no response expected).
func (c *Conn) Notify(ctx context.Context, method string, params any) error {
	paramsData, err := marshalParams(params)
	if err != nil {
		return err
	}

	notif := &Notification{
		JSONRPC: Version,
		Method:  method,
		Params:  paramsData,
	}

	data, err := json.Marshal(notif)
	if err != nil {
		return err
	}
	return c.codec.Write(data)
}

// Close terminates the connection. The read loop stops at its next message.
func (c *Conn) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// Done is closed once the connection has been closed.
func (c *Conn) Done() <-chan struct{} { return c.done }

func marshalParams(v any) (RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}
