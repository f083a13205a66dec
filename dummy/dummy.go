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

// Package dummy implements a software-only rasseiver.Device used for
// testing the pipeline without real hardware. It generates synthetic
// interleaved int16 sample blocks on its own goroutine, on a fixed
// interval, and satisfies the Device contract exactly like a real radio.
package dummy

import (
	"sync"
	"sync/atomic"
	"time"

	"hz.tools/rasseiver"
)

// BufferSize is the number of interleaved int16 samples generated per
// callback.
const BufferSize = 65536

// interval is the spacing between synthetic callbacks.
const interval = 26 * time.Millisecond

// MaxValue is the dummy device's reported full-scale value.
const MaxValue = 4096

// Device is a software rasseiver.Device that fabricates sample blocks
// instead of reading from hardware.
type Device struct {
	// count is the number of blocks to generate before self-stopping.
	// A negative value means run until Stop is called.
	count int

	running  atomic.Bool
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
	wg       sync.WaitGroup
}

// New returns a dummy Device that will generate count synthetic blocks
// before self-stopping, or run forever if count is negative.
func New(count int) *Device {
	return &Device{count: count}
}

// Start implements rasseiver.Device. It launches the generator goroutine
// and returns immediately; streaming happens in the background.
func (d *Device) Start(p *rasseiver.Pipeline) error {
	d.stop = make(chan struct{})
	d.done = make(chan struct{})
	d.running.Store(true)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer close(d.done)
		defer d.running.Store(false)

		data := make([]int16, BufferSize)
		for i := range data {
			data[i] = int16(i)
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for n := 0; d.count < 0 || n < d.count; n++ {
			p.Apply(data, len(data))

			select {
			case <-d.stop:
				return
			case <-ticker.C:
			}
		}
	}()
	return nil
}

// Stop implements rasseiver.Device. It signals the generator goroutine and
// waits for it to exit; after Stop returns, no further callback occurs.
func (d *Device) Stop() error {
	if d.stop == nil {
		return nil
	}
	d.stopOnce.Do(func() { close(d.stop) })
	d.wg.Wait()
	return nil
}

// BufferSize implements rasseiver.Device.
func (d *Device) BufferSize() int {
	return BufferSize
}

// MaxValue implements rasseiver.Device.
func (d *Device) MaxValue() int {
	return MaxValue
}

// IsStreaming implements rasseiver.Device.
func (d *Device) IsStreaming() bool {
	return d.running.Load()
}

// SetGain implements rasseiver.GainSetter as a no-op, matching the
// original dummy device's set_gain, which ignores its argument.
func (d *Device) SetGain(int) error {
	return nil
}

// vim: foldmethod=marker
