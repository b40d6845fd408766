package log

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewWithWriter_StampsServiceAndInstance(t *testing.T) {
	req := require.New(t)
	var buf bytes.Buffer

	logger := NewWithWriter(Config{Level: "debug", ServiceName: "coordinator", InstanceID: "i-1"}, &buf)
	logger.Debug().Msg("hello")

	var entry map[string]interface{}
	req.NoError(json.Unmarshal(buf.Bytes(), &entry))
	req.Equal("coordinator", entry[FieldService])
	req.Equal("i-1", entry[FieldInstance])
	req.Equal("hello", entry["message"])
}

func TestNewWithWriter_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer

	logger := NewWithWriter(Config{Level: "warn"}, &buf)
	logger.Info().Msg("dropped")

	require.Empty(t, buf.String())
}

func TestWithFields_AttachesToContextLogger(t *testing.T) {
	req := require.New(t)
	var buf bytes.Buffer

	ctx := WithLogger(context.Background(), NewWithWriter(Config{}, &buf))
	ctx = WithFields(ctx, FieldConnID, "c-1", FieldStreamID, "s-1", "dangling")

	l := Ctx(ctx)
	l.Info().Msg("tagged")

	var entry map[string]interface{}
	req.NoError(json.Unmarshal(buf.Bytes(), &entry))
	req.Equal("c-1", entry[FieldConnID])
	req.Equal("s-1", entry[FieldStreamID])
	req.NotContains(entry, "dangling")
}
