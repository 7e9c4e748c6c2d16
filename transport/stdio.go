package transport

import (
	"errors"
	"io"
	"os"
)

// Stdio returns a Transport backed by os.Stdin and os.Stdout.
func Stdio() Transport {
	return Streams(os.Stdin, os.Stdout)
}

// Streams joins a reader and a writer into a Transport. Close closes
// whichever of the two is an io.Closer.
func Streams(r io.Reader, w io.Writer) Transport {
	return &streams{Reader: r, Writer: w}
}

type streams struct {
	io.Reader
	io.Writer
}

func (s *streams) Close() error {
	var errs []error
	if c, ok := s.Reader.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	if c, ok := s.Writer.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
