package transport

import "net"

// MemoryPipe returns two connected in-memory transports. Writes on one side
// block until the other side reads them, so both ends need a reader.
func MemoryPipe() (client Transport, server Transport) {
	c, s := net.Pipe()
	return &connTransport{Conn: c}, &connTransport{Conn: s}
}
