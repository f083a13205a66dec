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

// Tests here cover only the parts of the contract that don't require a
// physical RSPduo: the session wiring in Start/Stop needs real hardware
// (or the sdrplay-go mock API, which this module does not depend on) to
// exercise end to end.
package rspduo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"hz.tools/rasseiver/rspduo"
)

func TestDeviceReportsContract(t *testing.T) {
	d := rspduo.Open(100e6, 2e6)
	assert.Equal(t, 1<<14, d.MaxValue())
	assert.Equal(t, 2*4096, d.BufferSize())
	assert.False(t, d.IsStreaming())
}

func TestSetGainReturnsNoError(t *testing.T) {
	d := rspduo.Open(100e6, 2e6)
	assert.NoError(t, d.SetGain(20))
}
