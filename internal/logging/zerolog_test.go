package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologLogger_WritesFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerologLogger(zerolog.New(&buf).Level(zerolog.DebugLevel))

	log.With("module", "mail").Warn(context.Background(), "dispatch failed", "to", "bob@x.com", "err", errors.New("403"))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "dispatch failed", line["message"])
	assert.Equal(t, "mail", line["module"])
	assert.Equal(t, "bob@x.com", line["to"])
	assert.Equal(t, "403", line["err"])
}

func TestPairs_OddArgs(t *testing.T) {
	m := pairs([]any{"a", 1, 7, "seven", "dangling"})
	assert.Equal(t, 1, m["a"])
	assert.Equal(t, "seven", m["7"])
	assert.Equal(t, "dangling", m["!BADKEY"])
}
