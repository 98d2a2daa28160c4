package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("production skips debug", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&buf, false)
		logger.Debug("hidden")
		assert.Empty(t, buf.String())
	})

	t.Run("development emits debug as json", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&buf, true)
		logger.Debug("shown", Err(errors.New("boom")))

		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, "shown", line["msg"])
		assert.Equal(t, "boom", line["error"])
	})
}
