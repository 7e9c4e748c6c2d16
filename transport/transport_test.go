package transport

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

func TestMemoryPipe(t *testing.T) {
	client, server := MemoryPipe()
	defer client.Close()
	defer server.Close()

	go func() {
		_, _ = client.Write([]byte("ping"))
	}()
	buf := make([]byte, 4)
	if _, err := io.ReadFull(server, buf); err != nil {
		t.Fatal(err)
	}
	if string(buf) != "ping" {
		t.Errorf("read %q, want ping", buf)
	}
}

func TestMemoryPipeClose(t *testing.T) {
	client, server := MemoryPipe()
	client.Close()
	if _, err := server.Read(make([]byte, 1)); err == nil {
		t.Fatal("expected error reading from a closed pipe")
	}
}

func TestStreams(t *testing.T) {
	var out bytes.Buffer
	tr := Streams(strings.NewReader("in"), &out)
	b, err := io.ReadAll(tr)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "in" {
		t.Errorf("read %q", b)
	}
	if _, err := tr.Write([]byte("out")); err != nil {
		t.Fatal(err)
	}
	if out.String() != "out" {
		t.Errorf("wrote %q", out.String())
	}
	if err := tr.Close(); err != nil {
		t.Errorf("Close with no closers: %v", err)
	}
}

func TestOpenRejectsUnknownScheme(t *testing.T) {
	if _, err := Open(context.Background(), "carrier-pigeon://coop"); err == nil {
		t.Fatal("expected error for unknown scheme")
	}
}

func TestListenTCPCancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := ListenTCP(ctx, "127.0.0.1:0")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("ListenTCP error = %v, want deadline exceeded", err)
	}
}
