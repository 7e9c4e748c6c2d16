// Package hilitetest provides testing utilities for hilite servers. It
// includes an in-memory client that talks to a server without network I/O
// and keeps a mirror of the decorations each document is showing.
package hilitetest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/gossip-lsp/hilite"
	"github.com/gossip-lsp/hilite/bracket"
	"github.com/gossip-lsp/hilite/highlight"
	"github.com/gossip-lsp/hilite/jsonrpc"
	"github.com/gossip-lsp/hilite/protocol"
	"github.com/gossip-lsp/hilite/transport"
)

// Client is a test client connected to a server over an in-memory pipe.
// The server handles messages in arrival order, so a request sent after a
// notification always observes its effect.
type Client struct {
	t    testing.TB
	conn *jsonrpc.Conn
	done chan error

	mu            sync.Mutex
	notifications []notification
	mirrors       map[string]*highlight.Mirror
	versions      map[string]int32
}

type notification struct {
	Method string
	Params json.RawMessage
}

// NewClient starts s in the background, connects a client to it and
// initializes the session. The server is stopped when the test completes.
func NewClient(t testing.TB, s *hilite.Server) *Client {
	t.Helper()
	clientTransport, serverTransport := transport.MemoryPipe()
	ctx, cancel := context.WithCancel(context.Background())

	c := &Client{
		t:        t,
		done:     make(chan error, 1),
		mirrors:  make(map[string]*highlight.Mirror),
		versions: make(map[string]int32),
	}

	go func() {
		c.done <- hilite.Serve(s, hilite.WithTransport(serverTransport), hilite.WithContext(ctx))
	}()

	codec := jsonrpc.NewCodec(clientTransport, clientTransport)
	c.conn = jsonrpc.NewConn(codec, nil, func(_ context.Context, method string, params jsonrpc.RawMessage) {
		c.mu.Lock()
		c.notifications = append(c.notifications, notification{Method: method, Params: params})
		c.mu.Unlock()
	})
	go c.conn.Run(ctx)

	t.Cleanup(func() {
		cancel()
		c.conn.Close()
		clientTransport.Close()
	})

	c.Initialize(nil)
	return c
}

// Initialize sends initialize, with settings as initializationOptions, and
// the initialized notification.
func (c *Client) Initialize(settings any) *protocol.InitializeResult {
	c.t.Helper()
	params := &protocol.InitializeParams{}
	if settings != nil {
		raw, err := json.Marshal(settings)
		if err != nil {
			c.t.Fatalf("marshalling settings: %v", err)
		}
		params.InitializationOptions = raw
	}
	var result protocol.InitializeResult
	c.call(protocol.MethodInitialize, params, &result)
	c.notify(protocol.MethodInitialized, struct{}{})
	return &result
}

// Open sends textDocument/didOpen.
func (c *Client) Open(uri, languageID, text string) {
	c.t.Helper()
	c.mu.Lock()
	c.versions[uri] = 1
	delete(c.mirrors, uri)
	c.mu.Unlock()
	c.notify(protocol.MethodDidOpen, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:        protocol.DocumentURI(uri),
			LanguageID: languageID,
			Version:    1,
			Text:       text,
		},
	})
}

// Change replaces the whole text of uri.
func (c *Client) Change(uri, text string) {
	c.t.Helper()
	c.change(uri, protocol.TextDocumentContentChangeEvent{Text: text})
}

// ChangeIncremental replaces rng of uri with text.
func (c *Client) ChangeIncremental(uri string, rng protocol.Range, text string) {
	c.t.Helper()
	c.change(uri, protocol.TextDocumentContentChangeEvent{Range: &rng, Text: text})
}

func (c *Client) change(uri string, ev protocol.TextDocumentContentChangeEvent) {
	c.mu.Lock()
	c.versions[uri]++
	version := c.versions[uri]
	c.mu.Unlock()
	c.notify(protocol.MethodDidChange, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: protocol.DocumentURI(uri)},
			Version:                version,
		},
		ContentChanges: []protocol.TextDocumentContentChangeEvent{ev},
	})
}

// Close sends textDocument/didClose.
func (c *Client) Close(uri string) {
	c.t.Helper()
	c.mu.Lock()
	delete(c.mirrors, uri)
	delete(c.versions, uri)
	c.mu.Unlock()
	c.notify(protocol.MethodDidClose, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: protocol.DocumentURI(uri)},
	})
}

// Configure sends workspace/didChangeConfiguration with settings nested
// under the hilite section.
func (c *Client) Configure(settings any) {
	c.t.Helper()
	raw, err := json.Marshal(map[string]any{hilite.SettingsSection: settings})
	if err != nil {
		c.t.Fatalf("marshalling settings: %v", err)
	}
	c.notify(protocol.MethodDidChangeConfiguration, &protocol.DidChangeConfigurationParams{Settings: raw})
}

// BracketPairs sends hilite/bracketPairs.
func (c *Client) BracketPairs(text string) []bracket.Pair {
	c.t.Helper()
	var res protocol.BracketPairsResult
	c.call(protocol.MethodBracketPairs, &protocol.BracketPairsParams{Text: text}, &res)
	return res.Pairs
}

// Highlights sends hilite/highlights and applies the result to the
// document's mirror.
func (c *Client) Highlights(uri string, regionStart, cursor int) (*protocol.HighlightsResult, error) {
	c.t.Helper()
	var res protocol.HighlightsResult
	err := c.callErr(protocol.MethodHighlights, &protocol.HighlightsParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: protocol.DocumentURI(uri)},
		RegionStart:  regionStart,
		Cursor:       cursor,
	}, &res)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	m, ok := c.mirrors[uri]
	if !ok {
		m = highlight.NewMirror()
		c.mirrors[uri] = m
	}
	m.Apply(res.Changes)
	c.mu.Unlock()
	return &res, nil
}

// MustHighlights is Highlights that fails the test on error.
func (c *Client) MustHighlights(uri string, regionStart, cursor int) highlight.ChangeSet {
	c.t.Helper()
	res, err := c.Highlights(uri, regionStart, cursor)
	if err != nil {
		c.t.Fatalf("highlights %s: %v", uri, err)
	}
	return res.Changes
}

// Decorations returns the mirrored decorations of uri.
func (c *Client) Decorations(uri string) []highlight.Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	if m, ok := c.mirrors[uri]; ok {
		return m.Entries()
	}
	return nil
}

// EnclosingBracket sends hilite/enclosingBracket.
func (c *Client) EnclosingBracket(uri string, cursor int) (*bracket.Pair, error) {
	c.t.Helper()
	var res protocol.EnclosingBracketResult
	err := c.callErr(protocol.MethodEnclosingBracket, &protocol.EnclosingBracketParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: protocol.DocumentURI(uri)},
		Cursor:       cursor,
	}, &res)
	return res.Pair, err
}

// Reset sends hilite/reset and clears the mirror, as a host would.
func (c *Client) Reset(uri string) error {
	c.t.Helper()
	err := c.callErr(protocol.MethodReset, &protocol.ResetParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: protocol.DocumentURI(uri)},
	}, nil)
	if err == nil {
		c.mu.Lock()
		delete(c.mirrors, uri)
		c.mu.Unlock()
	}
	return err
}

// CodeBlocks sends hilite/codeBlocks.
func (c *Client) CodeBlocks(text string) []protocol.CodeBlock {
	c.t.Helper()
	var res protocol.CodeBlocksResult
	c.call(protocol.MethodCodeBlocks, &protocol.CodeBlocksParams{Text: text}, &res)
	return res.Blocks
}

// Stats sends hilite/stats.
func (c *Client) Stats() map[string]protocol.MethodStat {
	c.t.Helper()
	var res protocol.StatsResult
	c.call(protocol.MethodStats, nil, &res)
	return res.Methods
}

// Notifications returns the params of every notification received with
// the given method.
func (c *Client) Notifications(method string) []json.RawMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []json.RawMessage
	for _, n := range c.notifications {
		if n.Method == method {
			out = append(out, n.Params)
		}
	}
	return out
}

// Shutdown sends shutdown and exit and waits for Serve to return.
func (c *Client) Shutdown() error {
	c.t.Helper()
	c.call(protocol.MethodShutdown, nil, nil)
	c.notify(protocol.MethodExit, nil)
	select {
	case err := <-c.done:
		return err
	case <-time.After(5 * time.Second):
		c.t.Fatal("server did not exit")
		return nil
	}
}

// Call sends an arbitrary request and decodes its result into result.
func (c *Client) Call(method string, params, result any) error {
	c.t.Helper()
	return c.callErr(method, params, result)
}

func (c *Client) call(method string, params, result any) {
	c.t.Helper()
	if err := c.callErr(method, params, result); err != nil {
		c.t.Fatalf("call %s failed: %v", method, err)
	}
}

func (c *Client) callErr(method string, params, result any) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := c.conn.Call(ctx, method, params)
	if err != nil {
		return err
	}
	if resp.Error != nil {
		return resp.Error
	}
	if result != nil && resp.Result != nil {
		if err := json.Unmarshal(resp.Result, result); err != nil {
			return fmt.Errorf("unmarshalling result: %w", err)
		}
	}
	return nil
}

func (c *Client) notify(method string, params any) {
	c.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.conn.Notify(ctx, method, params); err != nil {
		c.t.Fatalf("notify %s failed: %v", method, err)
	}
}
