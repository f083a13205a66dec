// {{{ Copyright (c) Paul R. Tagliamonte <paul@k3xec.com>, 2020-2021
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE. }}}

// Package sender implements the framed TCP egress described by the core
// pipeline's Sender contract: one connection per program run, a fixed
// 9-byte header ahead of every payload, and opportunistic, best-effort
// reconnection on write failure.
package sender

import (
	"encoding/binary"
	"fmt"
	"net"
)

// Sender ships one filtered output block per call over a TCP connection to
// a fixed host/port, framed with the 9-byte header encodeHeader produces.
// It is not safe for concurrent use; the pipeline invokes it serially from
// the device callback thread.
type Sender struct {
	host string
	port uint16

	fd fd

	// payload is a reused scratch buffer sized to the largest block the
	// pipeline can ever hand to Send, so that encoding a packet never
	// allocates on the steady-state path.
	payload []byte
}

// New resolves host as an IPv4 dotted-quad, opens a TCP connection to
// host:port, and returns a Sender ready to ship packets whose payload
// never exceeds maxSamples interleaved int16 values. Construction fails
// fatally, matching the original's constructor, if the initial connection
// cannot be established.
func New(host string, port uint16, maxSamples int) (*Sender, error) {
	if ip := net.ParseIP(host); ip == nil || ip.To4() == nil {
		return nil, fmt.Errorf("sender: %q is not an IPv4 dotted-quad", host)
	}
	s := &Sender{
		host:    host,
		port:    port,
		payload: make([]byte, 0, maxSamples*2),
	}
	if err := s.Reconnect(); err != nil {
		return nil, fmt.Errorf("sender: initial connection to %s:%d failed: %w", host, port, err)
	}
	return s, nil
}

// Send frames output as one packet (header then payload) and writes it to
// the current connection. If the Sender is currently disconnected, Send
// performs no I/O and returns (0, nil) — the caller is expected to have
// already requested, or to now request, a Reconnect.
//
// On any write error the connection is closed and marked disconnected;
// Send returns a non-positive count and the error.
func (s *Sender) Send(output []int16, saturation bool) (int, error) {
	if !s.fd.connected {
		return 0, nil
	}

	header := encodeHeader(len(output)*2, saturation)
	if _, err := s.fd.conn.Write(header[:]); err != nil {
		s.fd.Close()
		return -1, err
	}

	s.payload = s.payload[:0]
	for _, v := range output {
		s.payload = binary.LittleEndian.AppendUint16(s.payload, uint16(v))
	}

	n, err := s.fd.conn.Write(s.payload)
	if err != nil {
		s.fd.Close()
		return -1, err
	}
	return headerSize + n, nil
}

// Reconnect closes any existing connection and opens a fresh one. It is
// idempotent: calling it while already connected simply cycles the
// connection, and calling it while disconnected is the normal recovery
// path after a Send failure.
func (s *Sender) Reconnect() error {
	s.fd.Close()

	conn, err := net.Dial("tcp4", net.JoinHostPort(s.host, fmt.Sprintf("%d", s.port)))
	if err != nil {
		return err
	}
	s.fd.Reset(conn)
	return nil
}

// Close releases the underlying connection, if any.
func (s *Sender) Close() error {
	return s.fd.Close()
}

// vim: foldmethod=marker
