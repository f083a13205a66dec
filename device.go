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

import "hz.tools/rf"

// Device is the contract every sample source (Airspy, SDRplay RSPduo, or
// the software dummy) must satisfy to drive a Pipeline. The core never
// reaches into a concrete device beyond this interface; opening, closing
// and configuring the hardware itself is the device's own business.
type Device interface {
	// Start begins delivering interleaved int16 I/Q sample blocks to the
	// Pipeline by invoking its Apply method, serially, on a thread owned
	// by the device. Start must not return until the device is actually
	// ready to stream; the Pipeline passed in must outlive every callback
	// the device may still issue, including any in flight when Stop is
	// called.
	Start(p *Pipeline) error

	// Stop ceases delivering callbacks. Once Stop returns, the device
	// guarantees no further call to Apply will occur.
	Stop() error

	// BufferSize is the maximum number of interleaved samples the device
	// may deliver in a single callback. The Pipeline sizes its Reservoir
	// to this value.
	BufferSize() int

	// MaxValue is the device's full-scale integer value.
	// SaturationThreshold multiplies this by the fixed 0.92 fraction to
	// obtain the threshold the Pipeline is built with; this is part of the
	// device/pipeline contract, not a tunable.
	MaxValue() int

	// IsStreaming reports whether the device is currently delivering
	// callbacks. The supervisor polls this once a second to detect a
	// silently stalled device.
	IsStreaming() bool
}

// GainSetter is an optional extension of Device. Concrete devices that
// support manual gain control implement it; the supervisor type-asserts
// for it when a "gain" configuration key is present, the same way
// hz.tools/sdr's Transmitter/Receiver extensions sit on top of its base
// Sdr interface.
type GainSetter interface {
	SetGain(int) error
}

// FrequencyReporter is an optional extension of Device for sources that
// were opened against a known center frequency and sample rate. It
// reports both using hz.tools/rf's Hz type, the same type hz.tools/sdr's
// Sdr interface uses for SetCenterFrequency/GetCenterFrequency, so a
// caller wiring this package alongside hz.tools/sdr tooling never has to
// convert units.
type FrequencyReporter interface {
	CenterFrequency() rf.Hz
	SampleRate() rf.Hz
}

// saturationFraction is the fixed fraction of a device's full-scale value
// used to derive the saturation threshold. It is part of the external
// device contract (see Device.MaxValue) and must not be reconfigured.
const saturationFraction = 0.92

// SaturationThreshold derives the pipeline's saturation threshold from a
// device's full-scale integer value, per the Device contract.
func SaturationThreshold(maxValue int) float64 {
	return float64(maxValue) * saturationFraction
}

// vim: foldmethod=marker
