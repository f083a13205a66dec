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

// Reservoir is a double-buffered store of interleaved int16 I/Q samples.
// It exposes a "current" and a "previous" block so the FIR kernel can reach
// back across a callback boundary without copying the previous block every
// time a new one arrives.
//
// Both slots are preallocated once, to the device's buffer_size, and SwapIn
// never grows them on the steady-state path: it only ever swaps the two slot
// identities and then overwrites the first count elements of the new current.
type Reservoir struct {
	slots       [2][]int16
	currentIdx  int
	currentLen  int
	previousLen int
}

// NewReservoir allocates a Reservoir whose two slots each hold up to
// capacity interleaved int16 samples (i.e. capacity/2 I/Q pairs). capacity
// should be the device's buffer_size; SwapIn must never be called with more
// samples than this.
func NewReservoir(capacity int) *Reservoir {
	return &Reservoir{
		slots: [2][]int16{
			make([]int16, capacity),
			make([]int16, capacity),
		},
	}
}

// SwapIn exchanges the roles of the two slots, then copies count samples
// from newSamples into the new current slot. The slot that was current
// becomes previous, retaining its prior contents and length so the FIR
// kernel can still read them.
//
// count must not exceed the capacity the Reservoir was constructed with;
// SwapIn does not reallocate.
func (r *Reservoir) SwapIn(newSamples []int16, count int) {
	r.previousLen = r.currentLen
	r.currentIdx ^= 1
	r.currentLen = count
	copy(r.slots[r.currentIdx][:count], newSamples[:count])
}

// Current returns the most recently swapped-in block, sized to the count
// passed to the last SwapIn call. The returned slice must not be retained
// past the next call to SwapIn.
func (r *Reservoir) Current() []int16 {
	return r.slots[r.currentIdx][:r.currentLen]
}

// Previous returns the block that was current before the last SwapIn call.
// It is empty until the first swap has occurred. The returned slice must
// not be retained past the next call to SwapIn.
func (r *Reservoir) Previous() []int16 {
	return r.slots[r.currentIdx^1][:r.previousLen]
}

// Len returns the length of Current, in raw interleaved samples.
func (r *Reservoir) Len() int {
	return r.currentLen
}

// vim: foldmethod=marker
