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

import "encoding/binary"

// headerSize is the length, in bytes, of the framing header prepended to
// every packet: an 8-byte little-endian payload length followed by a
// 1-byte flags field. It is emitted as a flat byte array rather than a
// Go struct, since struct field alignment would pad it past 9 bytes.
const headerSize = 9

// flagSaturation is bit 0 of the header's flags byte: set when the
// callback that produced this packet's payload detected saturation.
const flagSaturation = 1 << 0

// encodeHeader renders the 9-byte packet header for a payload of the given
// length, little-endian, with the saturation bit set as requested. Bits
// 1..7 of the flags byte are always zero.
func encodeHeader(payloadLen int, saturation bool) [headerSize]byte {
	var header [headerSize]byte
	binary.LittleEndian.PutUint64(header[0:8], uint64(payloadLen))
	if saturation {
		header[8] = flagSaturation
	}
	return header
}

// vim: foldmethod=marker
