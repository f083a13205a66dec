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

// Package rspduo implements the rasseiver.Device contract on top of an
// SDRplay RSPduo, running a single tuner in single-tuner mode through
// github.com/msiner/sdrplay-go's session package. It only drives the
// device contract spelled out by the core pipeline: open one tuner at a
// fixed frequency and sample rate, deliver interleaved int16 blocks to a
// Pipeline, and stop cleanly. The richer device configuration the
// session package exposes (antenna selection, dual-tuner modes, notch
// filters) is left at its library defaults.
package rspduo

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"

	"github.com/msiner/sdrplay-go/api"
	"github.com/msiner/sdrplay-go/helpers/callback"
	"github.com/msiner/sdrplay-go/session"

	"hz.tools/rasseiver"
	"hz.tools/rf"
)

// MaxValue is the full-scale value reported for an RSPduo sample as
// delivered by the session callback: 2**14, for the device's 14-bit ADC.
const MaxValue = 1 << 14

// Device implements rasseiver.Device and rasseiver.GainSetter against a
// single tuner of an SDRplay RSPduo.
type Device struct {
	frequencyHz  float64
	sampleRateHz float64

	logger *log.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running atomic.Bool
	gainSet atomic.Int32
	runErr  error
}

// Open returns a Device configured to tune the first available RSPduo
// tuner to frequencyHz at sampleRateHz. The device is not started until
// Start is called.
func Open(frequencyHz, sampleRateHz float64) *Device {
	d := &Device{
		frequencyHz:  frequencyHz,
		sampleRateHz: sampleRateHz,
		logger:       log.New(os.Stderr, "rasseiver/rspduo: ", log.LstdFlags),
	}
	d.gainSet.Store(40)
	return d
}

// CenterFrequency implements rasseiver.FrequencyReporter.
func (d *Device) CenterFrequency() rf.Hz {
	return rf.Hz(d.frequencyHz)
}

// SampleRate implements rasseiver.FrequencyReporter.
func (d *Device) SampleRate() rf.Hz {
	return rf.Hz(d.sampleRateHz)
}

// SetGain implements rasseiver.GainSetter. The value is applied as an
// IF gain reduction (dB) the next time the device is started; SDRplay's
// AGC-driven gain model has no notion of changing gain on a device that
// is already streaming without rebuilding the session.
func (d *Device) SetGain(gain int) error {
	d.gainSet.Store(int32(gain))
	return nil
}

// Start implements rasseiver.Device. It builds an sdrplay-go session for
// a single RSPduo tuner and runs it on a background goroutine until Stop
// cancels it or the device reports a fatal error.
func (d *Device) Start(p *rasseiver.Pipeline) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.done = make(chan struct{})
	d.running.Store(true)

	interleave := callback.NewInterleaveFn()
	dropDetect := callback.NewDropDetect()

	grdb := d.gainSet.Load()

	sess, err := session.NewSession(
		session.WithSelector(
			session.WithRSPduo(),
			session.WithDuoTunerEither(),
			session.WithDuoModeSingle(),
		),
		session.WithDeviceConfig(
			session.WithSingleChannelConfig(
				session.WithTuneFreq(d.frequencyHz),
				session.WithGainReduction(grdb),
				session.WithAGC(api.AGC_CTRL_EN, -30),
			),
		),
		session.WithStreamACallback(func(xi, xq []int16, params *api.StreamCbParamsT, reset bool) {
			if dropped := dropDetect(params, reset); dropped != 0 {
				d.logger.Printf("dropped %d samples", dropped)
			}
			samples := interleave(xi, xq)
			p.Apply(samples, len(samples))
		}),
		session.WithEventCallback(func(eventID api.EventT, tuner api.TunerSelectT, params *api.EventParamsT) {
			if eventID == api.DeviceRemoved {
				d.logger.Printf("device removed")
				cancel()
			}
		}),
	)
	if err != nil {
		cancel()
		d.running.Store(false)
		return fmt.Errorf("rspduo: session configuration failed: %w", err)
	}

	go func() {
		defer close(d.done)
		defer d.running.Store(false)
		if err := sess.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			d.mu.Lock()
			d.runErr = err
			d.mu.Unlock()
			d.logger.Printf("session run: %v", err)
		}
	}()

	return nil
}

// Stop implements rasseiver.Device. It cancels the running session and
// waits for its goroutine to exit.
func (d *Device) Stop() error {
	d.mu.Lock()
	cancel := d.cancel
	done := d.done
	d.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	if done != nil {
		<-done
	}

	d.mu.Lock()
	err := d.runErr
	d.runErr = nil
	d.mu.Unlock()
	return err
}

// BufferSize implements rasseiver.Device. sdrplay-go's stream callback
// delivers variably sized blocks, so this reports the library's default
// internal transfer size, used only to size the reservoir generously; the
// pipeline's Apply is driven by the actual slice length on every call.
func (d *Device) BufferSize() int {
	return 2 * 4096
}

// MaxValue implements rasseiver.Device.
func (d *Device) MaxValue() int {
	return MaxValue
}

// IsStreaming implements rasseiver.Device.
func (d *Device) IsStreaming() bool {
	return d.running.Load()
}

// vim: foldmethod=marker
