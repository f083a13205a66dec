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

// Package config implements the program's "key = value" configuration file
// format: blank lines and '#'-to-end-of-line comments are ignored, a
// backslash escapes the following byte literally (so a key or value may
// contain a literal '#' or '='), and leading/trailing whitespace around
// both key and value is trimmed. Later definitions of the same key replace
// earlier ones; unknown keys are kept, not rejected.
package config

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"hz.tools/rf"
)

// Default holds the program's built-in configuration, used when no config
// file is given on the command line.
var Default = map[string]string{
	"device":      "airspy",
	"frequency":   "111100000",
	"sample_rate": "2500000",
	"sample_type": "int",
	"decimation":  "60",
	"host":        "127.0.0.1",
	"port":        "10001",
	"count":       "-1",
}

// Config is a parsed configuration map. Values are always stored as the raw
// string found in the file (or the Default map); typed accessors parse on
// demand, matching ConfigValue's conversion operators in the original.
type Config map[string]string

// New returns a Config seeded with Default.
func New() Config {
	c := make(Config, len(Default))
	for k, v := range Default {
		c[k] = v
	}
	return c
}

// ReadFile parses a configuration file into c, overwriting any key the file
// redefines. It is not an error for file to be missing trailing newline,
// blank, or entirely absent of recognised keys.
func (c Config) ReadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		parseLine(scanner.Text(), c)
	}
	return scanner.Err()
}

// parseLine parses one configuration-file line, mutating c in place if the
// line has the "key = value" shape. Lines without an unescaped '=' are
// silently ignored.
func parseLine(line string, c Config) {
	var (
		key, value strings.Builder
		hasValue   bool
		escaped    bool
	)

	for _, ch := range line {
		switch {
		case escaped:
			if hasValue {
				value.WriteRune(ch)
			} else {
				key.WriteRune(ch)
			}
			escaped = false
		case ch == '\\':
			escaped = true
		case ch == '#':
			// Comment to end-of-line; whatever has been read so
			// far stands.
			goto done
		case ch == '=' && !hasValue:
			hasValue = true
		case hasValue:
			value.WriteRune(ch)
		default:
			key.WriteRune(ch)
		}
	}
done:

	if !hasValue {
		return
	}

	k := strings.TrimSpace(key.String())
	v := strings.TrimSpace(value.String())
	c[k] = v
}

// String returns the raw string value for key, and whether it was present.
func (c Config) String(key string) (string, bool) {
	v, ok := c[key]
	return v, ok
}

// Int parses key as a base-10 signed integer.
func (c Config) Int(key string) (int, error) {
	v, err := c.raw(key)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(v)
}

// Uint parses key as a base-10 unsigned integer.
func (c Config) Uint(key string) (uint, error) {
	v, err := c.raw(key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(v, 10, 64)
	return uint(n), err
}

// Float64 parses key as a double-precision real.
func (c Config) Float64(key string) (float64, error) {
	v, err := c.raw(key)
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(v, 64)
}

// Hz parses key as a double-precision real and returns it as an
// hz.tools/rf frequency, used to resolve the "frequency" and
// "sample_rate" keys into the same type the device contract reports.
func (c Config) Hz(key string) (rf.Hz, error) {
	v, err := c.Float64(key)
	if err != nil {
		return 0, err
	}
	return rf.Hz(v), nil
}

func (c Config) raw(key string) (string, error) {
	v, ok := c[key]
	if !ok {
		return "", &MissingKeyError{Key: key}
	}
	return v, nil
}

// MissingKeyError is returned by the typed accessors when a key has not
// been set either by Default or by a parsed config file.
type MissingKeyError struct {
	Key string
}

func (e *MissingKeyError) Error() string {
	return "config: key not set: " + e.Key
}

// DumpYAML renders the resolved configuration as YAML, for diagnostics.
func (c Config) DumpYAML() ([]byte, error) {
	return yaml.Marshal(map[string]string(c))
}

// vim: foldmethod=marker
