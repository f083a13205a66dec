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

package dummy_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hz.tools/rasseiver"
	"hz.tools/rasseiver/dummy"
)

type countingSender struct {
	n int32
}

func (c *countingSender) Send(output []int16, saturation bool) (int, error) {
	atomic.AddInt32(&c.n, 1)
	return len(output)*2 + 1, nil
}
func (c *countingSender) Reconnect() error { return nil }
func (c *countingSender) Close() error     { return nil }

func newTestPipeline(t *testing.T, sender rasseiver.Sender) *rasseiver.Pipeline {
	t.Helper()
	p, err := rasseiver.NewPipeline(dummy.BufferSize, []float64{1.0}, 1, rasseiver.SaturationThreshold(4096), sender)
	require.NoError(t, err)
	return p
}

func TestDummyDeviceReportsContract(t *testing.T) {
	d := dummy.New(-1)
	assert.Equal(t, dummy.BufferSize, d.BufferSize())
	assert.Equal(t, 4096, d.MaxValue())
	assert.False(t, d.IsStreaming())
	assert.NoError(t, d.SetGain(10))
}

func TestDummyDeviceStopsAfterCount(t *testing.T) {
	sender := &countingSender{}
	p := newTestPipeline(t, sender)

	d := dummy.New(3)
	require.NoError(t, d.Start(p))

	deadline := time.Now().Add(2 * time.Second)
	for d.IsStreaming() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	require.NoError(t, d.Stop())
	assert.False(t, d.IsStreaming())
	assert.Equal(t, int32(3), atomic.LoadInt32(&sender.n))
}

func TestDummyDeviceStopIsIdempotent(t *testing.T) {
	sender := &countingSender{}
	p := newTestPipeline(t, sender)

	d := dummy.New(-1)
	require.NoError(t, d.Start(p))
	time.Sleep(10 * time.Millisecond)

	require.NoError(t, d.Stop())
	require.NoError(t, d.Stop())
}

// vim: foldmethod=marker
