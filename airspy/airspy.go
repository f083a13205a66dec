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

// Package airspy implements the rasseiver.Device contract on top of
// libairspy via cgo, the same cgo-callback shape hz.tools/sdr's airspyhf
// package uses for its own Airspy HF+ binding.
package airspy

// #cgo pkg-config: libairspy
//
// #include <airspy.h>
//
// extern int airspyRxCallback(airspy_transfer_t*);
import "C"

import (
	"fmt"
	"log"
	"os"
	"unsafe"

	"github.com/mattn/go-pointer"

	"hz.tools/rasseiver"
	"hz.tools/rf"
)

// MaxValue is the device's reported full-scale integer value: 2**12.
const MaxValue = 4096

// bufferSize is 262144 bytes (libairspy's internal transfer size) divided
// by two IQ channels and by sizeof(int16), matching the original's
// derivation exactly.
const bufferSize = 262144 / 2 / 2

// syncBit is bit 4 of Airspy register 0; when clear, the device has lost
// clock sync with its Si5351C.
const syncBit = 0x10

// Device implements rasseiver.Device and rasseiver.GainSetter against a
// physical Airspy receiver.
type Device struct {
	handle *C.airspy_device_t
	logger *log.Logger
	state  unsafe.Pointer

	centerFrequency rf.Hz
	sampleRate      rf.Hz
}

// Open opens the first Airspy found on the system and configures it for
// interleaved int16 ("int") samples at the given centre frequency and
// sample rate.
func Open(frequencyHz, sampleRateHz uint32) (*Device, error) {
	return open(nil, frequencyHz, sampleRateHz)
}

// OpenBySerial opens the Airspy with the given serial number.
func OpenBySerial(serial uint64, frequencyHz, sampleRateHz uint32) (*Device, error) {
	return open(&serial, frequencyHz, sampleRateHz)
}

func open(serial *uint64, frequencyHz, sampleRateHz uint32) (*Device, error) {
	var handle *C.airspy_device_t

	var result C.int
	if serial == nil {
		result = C.airspy_open(&handle)
	} else {
		result = C.airspy_open_sn(&handle, C.uint64_t(*serial))
	}
	if result != C.AIRSPY_SUCCESS {
		return nil, fmt.Errorf("airspy: open failed: %s", C.GoString(C.airspy_error_name(int32(result))))
	}

	if C.airspy_set_freq(handle, C.uint32_t(frequencyHz)) != C.AIRSPY_SUCCESS {
		C.airspy_close(handle)
		return nil, fmt.Errorf("airspy: airspy_set_freq failed")
	}
	if C.airspy_set_samplerate(handle, C.uint32_t(sampleRateHz)) != C.AIRSPY_SUCCESS {
		C.airspy_close(handle)
		return nil, fmt.Errorf("airspy: airspy_set_samplerate failed")
	}
	if C.airspy_set_sample_type(handle, C.AIRSPY_SAMPLE_INT16_IQ) != C.AIRSPY_SUCCESS {
		C.airspy_close(handle)
		return nil, fmt.Errorf("airspy: airspy_set_sample_type failed")
	}

	if C.airspy_set_vga_gain(handle, 5) != C.AIRSPY_SUCCESS ||
		C.airspy_set_mixer_gain(handle, 5) != C.AIRSPY_SUCCESS ||
		C.airspy_set_lna_gain(handle, 1) != C.AIRSPY_SUCCESS {
		C.airspy_close(handle)
		return nil, fmt.Errorf("airspy: failed to set default gain stages")
	}

	return &Device{
		handle:          handle,
		logger:          log.New(os.Stderr, "rasseiver/airspy: ", log.LstdFlags),
		centerFrequency: rf.Hz(frequencyHz),
		sampleRate:      rf.Hz(sampleRateHz),
	}, nil
}

// CenterFrequency implements rasseiver.FrequencyReporter.
func (d *Device) CenterFrequency() rf.Hz {
	return d.centerFrequency
}

// SampleRate implements rasseiver.FrequencyReporter.
func (d *Device) SampleRate() rf.Hz {
	return d.sampleRate
}

// SetGain implements rasseiver.GainSetter by driving the VGA gain stage.
func (d *Device) SetGain(gain int) error {
	if C.airspy_set_vga_gain(d.handle, C.uint8_t(gain)) != C.AIRSPY_SUCCESS {
		return fmt.Errorf("airspy: airspy_set_vga_gain failed")
	}
	return nil
}

// Start implements rasseiver.Device.
func (d *Device) Start(p *rasseiver.Pipeline) error {
	cc := &callbackContext{pipeline: p, device: d}
	d.state = pointer.Save(cc)

	if C.airspy_start_rx(
		d.handle,
		C.airspy_sample_block_cb_fn(C.airspyRxCallback),
		d.state,
	) != C.AIRSPY_SUCCESS {
		pointer.Unref(d.state)
		return fmt.Errorf("airspy: airspy_start_rx failed")
	}
	return nil
}

// Stop implements rasseiver.Device.
func (d *Device) Stop() error {
	defer func() {
		if d.state != nil {
			pointer.Unref(d.state)
			d.state = nil
		}
	}()
	if C.airspy_stop_rx(d.handle) != C.AIRSPY_SUCCESS {
		return fmt.Errorf("airspy: airspy_stop_rx failed")
	}
	return nil
}

// Close releases the underlying libairspy device handle.
func (d *Device) Close() error {
	C.airspy_close(d.handle)
	return nil
}

// BufferSize implements rasseiver.Device.
func (d *Device) BufferSize() int {
	return bufferSize
}

// MaxValue implements rasseiver.Device.
func (d *Device) MaxValue() int {
	return MaxValue
}

// IsStreaming implements rasseiver.Device.
func (d *Device) IsStreaming() bool {
	return C.airspy_is_streaming(d.handle) == 1
}

type callbackContext struct {
	pipeline *rasseiver.Pipeline
	device   *Device
}

//export airspyRxCallback
func airspyRxCallback(transfer *C.airspy_transfer_t) C.int {
	cc := pointer.Restore(transfer.ctx).(*callbackContext)

	var reg C.uint8_t
	if C.airspy_si5351c_read(transfer.device, 0, &reg) != C.AIRSPY_SUCCESS {
		cc.device.logger.Printf("could not dump register 0")
	} else if reg&syncBit == 0 {
		cc.device.logger.Printf("warning: out of sync")
	}

	if transfer.dropped_samples > 0 {
		cc.device.logger.Printf("dropped %d samples", int64(transfer.dropped_samples))
	}

	samples := int16SliceFromPointer(unsafe.Pointer(transfer.samples), int(transfer.sample_count)*2)
	cc.pipeline.Apply(samples, len(samples))

	return 0
}

// int16SliceFromPointer builds a Go []int16 view over a C-owned buffer
// without copying, the same sliceHeader trick hz.tools/sdr's internal
// yikes package uses at its own cgo/unsafe I/O boundaries.
func int16SliceFromPointer(base unsafe.Pointer, length int) []int16 {
	var b = struct {
		base unsafe.Pointer
		len  int
		cap  int
	}{base, length, length}
	return *(*[]int16)(unsafe.Pointer(&b))
}

// vim: foldmethod=marker
