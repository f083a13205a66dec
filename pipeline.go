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

package rasseiver

import (
	"fmt"
	"log"
	"os"
)

// ErrFilterTooLong is returned by NewPipeline when the coefficient vector
// is longer than the device's buffer size could ever supply as history.
var ErrFilterTooLong = fmt.Errorf("rasseiver: filter is longer than the reservoir's block size")

// Sender is the egress half of the Pipeline: it frames and ships one
// output block per callback, and recovers from transient disconnection on
// request. The sender package's Sender type satisfies this, but anything
// shaped the same way (a fake, in tests) may be used instead.
type Sender interface {
	// Send writes one framed output block, reporting saturation in the
	// packet's flags byte. It returns the number of bytes written. If the
	// connection is already down it writes nothing and returns 0 with a nil
	// error; if a write fails it returns a negative value and the error.
	Send(output []int16, saturation bool) (int, error)

	// Reconnect closes any existing connection and attempts to open a new
	// one. It is idempotent and safe to call whether or not a connection
	// is currently open.
	Reconnect() error

	// Close releases the sender's underlying connection.
	Close() error
}

// Pipeline glues ingest, the Reservoir, the FIR kernel and a Sender into a
// single callable that a Device invokes once per delivered sample block.
//
// A Pipeline is not safe for concurrent use; the Device contract guarantees
// Apply is only ever invoked serially, from one thread.
type Pipeline struct {
	reservoir    *Reservoir
	coefficients []float64
	cursor       int
	output       []int16
	threshold    float64
	step         int
	sender       Sender
	logger       *log.Logger
}

// NewPipeline constructs a Pipeline. bufferSize is the device's maximum
// per-callback sample count (used to size the Reservoir and output
// scratch buffer); coefficients is the (already-loaded) filter; step is
// the decimation factor; threshold is the saturation threshold in input
// units, ordinarily SaturationThreshold(device.MaxValue()); sender is the
// egress the filtered output is shipped to.
func NewPipeline(bufferSize int, coefficients []float64, step int, threshold float64, sender Sender) (*Pipeline, error) {
	if step < 1 {
		return nil, fmt.Errorf("rasseiver: decimation step must be >= 1, got %d", step)
	}
	if len(coefficients) > bufferSize {
		return nil, ErrFilterTooLong
	}
	return &Pipeline{
		reservoir:    NewReservoir(bufferSize),
		coefficients: coefficients,
		output:       make([]int16, 0, bufferSize),
		threshold:    threshold,
		step:         step,
		sender:       sender,
		logger:       log.New(os.Stderr, "rasseiver/pipeline: ", log.LstdFlags),
	}, nil
}

// Apply is the per-callback entry point: it swaps count samples of input
// into the Reservoir, runs the FIR kernel, and hands the filtered output to
// the Sender. A Sender write failure is recoverable: it triggers one
// best-effort Reconnect and is otherwise silently absorbed, exactly as the
// device-callback contract requires (Apply itself never fails).
func (p *Pipeline) Apply(input []int16, count int) {
	p.output = p.output[:0]
	p.reservoir.SwapIn(input, count)

	var saturated bool
	p.output, saturated = FIR(p.reservoir, p.coefficients, p.output, &p.cursor, p.step, p.threshold)

	if n := p.reservoir.Len(); n > 0 {
		p.cursor %= n
	}

	n, err := p.sender.Send(p.output, saturated)
	if err != nil || n <= 0 {
		if err != nil {
			p.logger.Printf("send failed, reconnecting: %s", err)
		}
		if rerr := p.sender.Reconnect(); rerr != nil {
			p.logger.Printf("reconnect failed: %s", rerr)
		}
	}
}

// vim: foldmethod=marker
