package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, "info", FormatJSON)
	require.NoError(t, err)

	l.Info().Str("transaction_id", "PMA170226-K3Z9").Msg("created")
	l.Debug().Msg("hidden")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "created", entry["message"])
	assert.Equal(t, "PMA170226-K3Z9", entry["transaction_id"])
	assert.Contains(t, entry, "time")
	assert.NotContains(t, buf.String(), "hidden")
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, "debug", FormatConsole)
	require.NoError(t, err)

	l.Debug().Msg("verbose")
	assert.Contains(t, buf.String(), "verbose")
}

func TestNew_Errors(t *testing.T) {
	var buf bytes.Buffer
	_, err := New(&buf, "loud", FormatJSON)
	assert.Error(t, err)

	_, err = New(&buf, "info", "xml")
	assert.Error(t, err)
}

func TestContext(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, "info", FormatJSON)
	require.NoError(t, err)

	ctx := WithContext(context.Background(), l)
	FromContext(ctx).Info().Msg("from context")
	assert.Contains(t, buf.String(), "from context")

	// No logger in context: must not panic and writes nothing.
	FromContext(context.Background()).Info().Msg("dropped")
	assert.NotContains(t, buf.String(), "dropped")
}
