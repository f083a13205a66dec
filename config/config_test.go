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

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"hz.tools/rasseiver/config"
)

func writeTemp(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rasseiver.conf")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	c := config.New()
	v, ok := c.String("device")
	assert.True(t, ok)
	assert.Equal(t, "airspy", v)

	count, err := c.Int("count")
	require.NoError(t, err)
	assert.Equal(t, -1, count)
}

func TestReadFileOverridesDefaults(t *testing.T) {
	path := writeTemp(t, "host = 10.0.0.1\nport=9999\n")
	c := config.New()
	require.NoError(t, c.ReadFile(path))

	host, _ := c.String("host")
	assert.Equal(t, "10.0.0.1", host)

	port, err := c.Int("port")
	require.NoError(t, err)
	assert.Equal(t, 9999, port)
}

func TestCommentsAndBlankLinesIgnored(t *testing.T) {
	path := writeTemp(t, "# a comment\n\n   \nhost = 1.2.3.4 # trailing comment\n")
	c := config.New()
	require.NoError(t, c.ReadFile(path))

	host, _ := c.String("host")
	assert.Equal(t, "1.2.3.4", host)
}

func TestBackslashEscapesLiteralHash(t *testing.T) {
	path := writeTemp(t, `name = fo\#o` + "\n")
	c := config.New()
	require.NoError(t, c.ReadFile(path))

	v, ok := c.String("name")
	assert.True(t, ok)
	assert.Equal(t, "fo#o", v)
}

func TestLinesWithoutEqualsIgnored(t *testing.T) {
	path := writeTemp(t, "not a config line\nhost=5.5.5.5\n")
	c := config.New()
	require.NoError(t, c.ReadFile(path))

	host, _ := c.String("host")
	assert.Equal(t, "5.5.5.5", host)
}

func TestLastDefinitionWins(t *testing.T) {
	path := writeTemp(t, "port=1\nport=2\nport = 3\n")
	c := config.New()
	require.NoError(t, c.ReadFile(path))

	port, err := c.Int("port")
	require.NoError(t, err)
	assert.Equal(t, 3, port)
}

func TestUnknownKeysRetained(t *testing.T) {
	path := writeTemp(t, "custom_key = 42\n")
	c := config.New()
	require.NoError(t, c.ReadFile(path))

	v, ok := c.String("custom_key")
	assert.True(t, ok)
	assert.Equal(t, "42", v)
}

func TestMissingKeyError(t *testing.T) {
	c := make(config.Config)
	_, err := c.Int("nope")
	var missing *config.MissingKeyError
	assert.ErrorAs(t, err, &missing)
}

func TestDumpYAMLRoundTrips(t *testing.T) {
	c := config.New()
	out, err := c.DumpYAML()
	require.NoError(t, err)
	assert.Contains(t, string(out), "device: airspy")

	var back map[string]string
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, map[string]string(c), back)
}

// vim: foldmethod=marker
