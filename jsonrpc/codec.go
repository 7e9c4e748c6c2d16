package jsonrpc

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
)

// DefaultMaxMessageSize bounds a single message body. Documents travel
// whole in didOpen, so the limit sits well above the default document cap.
const DefaultMaxMessageSize = 64 << 20

// ErrMessageTooLarge is returned by Read when a Content-Length exceeds the
// codec's limit. The stream is left unread past the header.
var ErrMessageTooLarge = errors.New("jsonrpc: message too large")

// Codec reads and writes Content-Length framed JSON-RPC messages
// as specified by the LSP base protocol.
type Codec struct {
	reader  *bufio.Reader
	writer  io.Writer
	wmu     sync.Mutex
	maxSize int
}

// NewCodec creates a new Content-Length framed codec over the given streams.
func NewCodec(r io.Reader, w io.Writer) *Codec {
	return &Codec{
		reader:  bufio.NewReaderSize(r, 64*1024),
		writer:  w,
		maxSize: DefaultMaxMessageSize,
	}
}

// SetMaxMessageSize changes the body limit. n <= 0 restores the default.
func (c *Codec) SetMaxMessageSize(n int) {
	if n <= 0 {
		n = DefaultMaxMessageSize
	}
	c.maxSize = n
}

// Read reads a single Content-Length framed message from the stream.
func (c *Codec) Read() ([]byte, error) {
	contentLen := -1
	for {
		line, err := c.reader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("reading header: %w", err)
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		key, val, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(key), "Content-Length") {
			val = strings.TrimSpace(val)
			n, err := strconv.Atoi(val)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("invalid Content-Length %q", val)
			}
			contentLen = n
		}
	}

	if contentLen < 0 {
		return nil, fmt.Errorf("missing Content-Length header")
	}
	if contentLen > c.maxSize {
		return nil, fmt.Errorf("%w: %d bytes (limit %d)", ErrMessageTooLarge, contentLen, c.maxSize)
	}

	body := make([]byte, contentLen)
	if _, err := io.ReadFull(c.reader, body); err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	return body, nil
}

// Write writes a Content-Length framed message to the stream.
func (c *Codec) Write(data []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Content-Length: %d\r\n\r\n", len(data))
	buf.Write(data)

	_, err := c.writer.Write(buf.Bytes())
	return err
}
