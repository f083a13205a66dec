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
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// ErrEmptyCoefficients is returned by LoadCoefficients when a filter file
// contains no parseable coefficients.
var ErrEmptyCoefficients = fmt.Errorf("rasseiver: filter coefficient file contains no numeric lines")

// LoadCoefficients reads a newline-delimited filter-coefficient file: one
// double-precision real per line, in tap order (index 0 is the newest tap).
// Lines that do not parse as a number are silently skipped.
func LoadCoefficients(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var coefficients []float64
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		v, err := strconv.ParseFloat(line, 64)
		if err != nil {
			continue
		}
		coefficients = append(coefficients, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(coefficients) == 0 {
		return nil, ErrEmptyCoefficients
	}
	return coefficients, nil
}

// FIR runs the decimating dual-channel convolution over the reservoir,
// starting at *cursor (a raw, interleaved-sample offset into r.Current()),
// appending filtered I/Q output to output until the cursor reaches or
// passes the end of the current block.
//
// coefficients are walked oldest-tap-first; taps that reach behind sample 0
// of the current block are read from r.Previous(). *cursor is advanced by
// the caller-visible amount described in the package's Pipeline, landing in
// [r.Len(), r.Len()+step*2) on return. FIR reports true if the magnitude of
// any output sample reached or exceeded threshold.
func FIR(r *Reservoir, coefficients []float64, output []int16, cursor *int, step int, threshold float64) ([]int16, bool) {
	var (
		current     = r.Current()
		previous    = r.Previous()
		previousLen = len(previous)
		currentLen  = len(current)
		saturated   = false
		inc         = step * 2
		lastTap     = len(coefficients) - 1
	)

	i := *cursor
	for ; i < currentLen; i += inc {
		var valueI, valueQ float64

		j := lastTap
		k := i - j*2
		for j >= 0 {
			if k < 0 {
				pk := k + previousLen
				if pk < 0 {
					j--
					k += 2
					continue
				}
				valueI += float64(previous[pk]) * coefficients[j]
				valueQ += float64(previous[pk+1]) * coefficients[j]
			} else {
				valueI += float64(current[k]) * coefficients[j]
				valueQ += float64(current[k+1]) * coefficients[j]
			}
			j--
			k += 2
		}

		sI := int16(math.RoundToEven(valueI))
		sQ := int16(math.RoundToEven(valueQ))
		output = append(output, sI, sQ)

		if math.Sqrt(valueI*valueI+valueQ*valueQ) >= threshold {
			saturated = true
		}
	}

	*cursor = i
	return output, saturated
}

// vim: foldmethod=marker
