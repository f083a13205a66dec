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

package sender

import "net"

// fd is a scoped handle over exactly one net.Conn. It owns the connection:
// Reset closes whatever connection it currently holds (if any) before
// taking ownership of the new one, and Close releases it. There is no copy
// constructor; a zero-value fd is disconnected.
type fd struct {
	conn      net.Conn
	connected bool
}

// Reset closes the previously held connection, if any, and takes ownership
// of conn. This is the Go analogue of the original's move-assignment: the
// prior handle is always closed first, and the new one fully replaces it.
func (f *fd) Reset(conn net.Conn) {
	f.Close()
	f.conn = conn
	f.connected = conn != nil
}

// Close releases the held connection, if connected. It is idempotent.
func (f *fd) Close() error {
	if !f.connected {
		return nil
	}
	err := f.conn.Close()
	f.conn = nil
	f.connected = false
	return err
}

// vim: foldmethod=marker
