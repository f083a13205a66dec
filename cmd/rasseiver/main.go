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

// Command rasseiver reads interleaved I/Q samples from a configured
// receiver, band-pass filters and decimates them, and ships the result
// over TCP to a downstream consumer. See the rasseiver package for the
// pipeline itself; this command wires it to a concrete device and a
// configuration file, and supervises the run until a termination signal
// or a stalled device is observed.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"hz.tools/rasseiver"
	"hz.tools/rasseiver/airspy"
	"hz.tools/rasseiver/config"
	"hz.tools/rasseiver/dummy"
	"hz.tools/rasseiver/rspduo"
	"hz.tools/rasseiver/sender"
)

// healthCheckInterval is how often the supervisor polls Device.IsStreaming,
// standing in for the original's one-second SIGALRM.
const healthCheckInterval = time.Second

func main() {
	dumpConfig := flag.Bool("dump-config", false, "print the resolved configuration as YAML and exit")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [config-path]\n", os.Args[0])
	}
	flag.Parse()

	args := flag.Args()
	if len(args) > 1 {
		flag.Usage()
		os.Exit(1)
	}

	cfg := config.New()
	if len(args) == 1 {
		if err := cfg.ReadFile(args[0]); err != nil {
			log.Printf("warning: could not read configuration file %q: %s", args[0], err)
		}
	}

	if *dumpConfig {
		out, err := cfg.DumpYAML()
		if err != nil {
			fmt.Fprintf(os.Stderr, "rasseiver: could not render configuration: %s\n", err)
			os.Exit(1)
		}
		os.Stdout.Write(out)
		return
	}

	if err := run(cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	coefficients := []float64{1.0}
	if path, ok := cfg.String("filter"); ok && path != "" {
		loaded, err := rasseiver.LoadCoefficients(path)
		if err != nil {
			return fmt.Errorf("rasseiver: could not read filter file %q: %w", path, err)
		}
		coefficients = loaded
	}

	step, err := cfg.Int("decimation")
	if err != nil {
		return fmt.Errorf("rasseiver: %w", err)
	}

	dev, err := openDevice(cfg)
	if err != nil {
		return err
	}

	if gain, err := cfg.Int("gain"); err == nil {
		gs, ok := dev.(rasseiver.GainSetter)
		if !ok {
			log.Printf("warning: device does not support gain control, ignoring \"gain\" configuration key")
		} else if err := gs.SetGain(gain); err != nil {
			return fmt.Errorf("rasseiver: could not set gain: %w", err)
		}
	}

	host, _ := cfg.String("host")
	port, err := cfg.Uint("port")
	if err != nil {
		return fmt.Errorf("rasseiver: %w", err)
	}

	snd, err := sender.New(host, uint16(port), dev.BufferSize())
	if err != nil {
		return fmt.Errorf("rasseiver: could not connect to %s:%d: %w", host, port, err)
	}
	defer snd.Close()

	threshold := rasseiver.SaturationThreshold(dev.MaxValue())
	pipeline, err := rasseiver.NewPipeline(dev.BufferSize(), coefficients, step, threshold, snd)
	if err != nil {
		return fmt.Errorf("rasseiver: could not construct pipeline: %w", err)
	}

	if err := dev.Start(pipeline); err != nil {
		return fmt.Errorf("rasseiver: could not start device: %w", err)
	}

	return supervise(dev)
}

// supervise blocks until SIGINT/SIGTERM requests a clean shutdown, or the
// device is observed to have stopped streaming on a health-check tick,
// standing in for the original's sigwait loop over {SIGINT, SIGTERM,
// SIGALRM}. It always stops the device before returning.
func supervise(dev rasseiver.Device) error {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sig)

	ticker := time.NewTicker(healthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case s := <-sig:
			log.Printf("received %s, shutting down", s)
			return dev.Stop()
		case <-ticker.C:
			if !dev.IsStreaming() {
				dev.Stop()
				return fmt.Errorf("Device stopped streaming")
			}
		}
	}
}

func openDevice(cfg config.Config) (rasseiver.Device, error) {
	name, _ := cfg.String("device")
	switch name {
	case "dummy":
		count, err := cfg.Int("count")
		if err != nil {
			return nil, fmt.Errorf("rasseiver: %w", err)
		}
		return dummy.New(count), nil

	case "airspy":
		frequency, err := cfg.Hz("frequency")
		if err != nil {
			return nil, fmt.Errorf("rasseiver: %w", err)
		}
		sampleRate, err := cfg.Hz("sample_rate")
		if err != nil {
			return nil, fmt.Errorf("rasseiver: %w", err)
		}
		var dev *airspy.Device
		if serial, ok := cfg.String("serial_number"); ok && serial != "" {
			n, err := strconv.ParseUint(serial, 0, 64)
			if err != nil {
				return nil, fmt.Errorf("rasseiver: invalid serial_number %q: %w", serial, err)
			}
			dev, err = airspy.OpenBySerial(n, uint32(frequency), uint32(sampleRate))
			if err != nil {
				return nil, fmt.Errorf("rasseiver: could not open airspy %016x: %w", n, err)
			}
		} else {
			dev, err = airspy.Open(uint32(frequency), uint32(sampleRate))
			if err != nil {
				return nil, fmt.Errorf("rasseiver: could not open airspy: %w", err)
			}
		}
		return dev, nil

	case "rspduo":
		frequency, err := cfg.Hz("frequency")
		if err != nil {
			return nil, fmt.Errorf("rasseiver: %w", err)
		}
		sampleRate, err := cfg.Hz("sample_rate")
		if err != nil {
			return nil, fmt.Errorf("rasseiver: %w", err)
		}
		return rspduo.Open(float64(frequency), float64(sampleRate)), nil

	default:
		return nil, fmt.Errorf("rasseiver: unknown device type %q", name)
	}
}

// vim: foldmethod=marker
