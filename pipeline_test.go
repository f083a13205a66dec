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

package rasseiver_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hz.tools/rasseiver"
)

// fakeSender is a minimal in-memory rasseiver.Sender used to observe what
// the Pipeline hands to egress without opening a real socket.
type fakeSender struct {
	sends       [][]int16
	saturations []bool
	sendErr     error
	reconnected int
	reconnectOK bool
}

func (f *fakeSender) Send(output []int16, saturation bool) (int, error) {
	if f.sendErr != nil {
		return -1, f.sendErr
	}
	cp := make([]int16, len(output))
	copy(cp, output)
	f.sends = append(f.sends, cp)
	f.saturations = append(f.saturations, saturation)
	return len(output)*2 + 1, nil
}

func (f *fakeSender) Reconnect() error {
	f.reconnected++
	if f.reconnectOK {
		f.sendErr = nil
		return nil
	}
	return fmt.Errorf("still down")
}

func (f *fakeSender) Close() error { return nil }

func TestPipelinePassThrough(t *testing.T) {
	sender := &fakeSender{}
	p, err := rasseiver.NewPipeline(8, []float64{1.0}, 1, math.MaxInt16, sender)
	require.NoError(t, err)

	p.Apply([]int16{1, 2, 3, 4, 5, 6, 7, 8}, 8)

	require.Len(t, sender.sends, 1)
	assert.Equal(t, []int16{1, 2, 3, 4, 5, 6, 7, 8}, sender.sends[0])
	assert.False(t, sender.saturations[0])
}

func TestPipelineSaturationFlagReachesSender(t *testing.T) {
	sender := &fakeSender{}
	p, err := rasseiver.NewPipeline(4, []float64{1.0}, 1, 5, sender)
	require.NoError(t, err)

	p.Apply([]int16{3, 4, 1, 1}, 4)

	require.Len(t, sender.saturations, 1)
	assert.True(t, sender.saturations[0])
}

func TestPipelineCarriesHistoryAcrossCallbacks(t *testing.T) {
	sender := &fakeSender{}
	p, err := rasseiver.NewPipeline(4, []float64{0.5, 0.5}, 1, math.MaxInt16, sender)
	require.NoError(t, err)

	p.Apply([]int16{0, 0, 0, 0}, 4)
	p.Apply([]int16{10, 20, 10, 20}, 4)

	require.Len(t, sender.sends, 2)
	assert.Equal(t, []int16{5, 10, 10, 20}, sender.sends[1])
}

func TestPipelineReconnectsOnSendFailure(t *testing.T) {
	sender := &fakeSender{sendErr: fmt.Errorf("broken pipe")}
	p, err := rasseiver.NewPipeline(4, []float64{1.0}, 1, math.MaxInt16, sender)
	require.NoError(t, err)

	p.Apply([]int16{1, 2, 3, 4}, 4)
	assert.Equal(t, 1, sender.reconnected)

	sender.reconnectOK = true
	sender.sendErr = fmt.Errorf("still broken")
	p.Apply([]int16{5, 6, 7, 8}, 4)
	assert.Equal(t, 2, sender.reconnected)

	p.Apply([]int16{9, 10, 11, 12}, 4)
	require.Len(t, sender.sends, 1)
	assert.Equal(t, 2, sender.reconnected)
}

func TestNewPipelineRejectsOversizedFilter(t *testing.T) {
	_, err := rasseiver.NewPipeline(2, []float64{1, 1, 1, 1}, 1, 1, &fakeSender{})
	assert.ErrorIs(t, err, rasseiver.ErrFilterTooLong)
}

func TestNewPipelineRejectsBadStep(t *testing.T) {
	_, err := rasseiver.NewPipeline(8, []float64{1.0}, 0, 1, &fakeSender{})
	assert.Error(t, err)
}

// vim: foldmethod=marker
