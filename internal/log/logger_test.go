// SPDX-License-Identifier: MIT

package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconfigure_WritesServiceAndComponent(t *testing.T) {
	var buf bytes.Buffer
	Reconfigure(Config{Level: "debug", Output: &buf, Service: "romcfg-test"})
	t.Cleanup(func() { Reconfigure(Config{}) })

	l := WithComponent("cfgfile")
	l.Debug().Str(FieldEvent, "cfgfile.test").Msg("debug entry")

	line := strings.TrimSpace(buf.String())
	require.NotEmpty(t, line)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "romcfg-test", entry["service"])
	assert.Equal(t, "cfgfile", entry[FieldComponent])
	assert.Equal(t, "cfgfile.test", entry[FieldEvent])
	assert.Equal(t, "debug", entry["level"])
}

func TestDerive_NilBuilder(t *testing.T) {
	var buf bytes.Buffer
	Reconfigure(Config{Output: &buf})
	t.Cleanup(func() { Reconfigure(Config{}) })

	l := Derive(nil)
	l.Info().Msg("x")
	assert.Contains(t, buf.String(), `"service":"romcfg"`)
}
