package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_ContextAttrs(t *testing.T) {
	var buf bytes.Buffer
	lg := Logger(&buf, false, slog.LevelInfo)

	ctx := AppendCtx(context.Background(), slog.String("run", "abc123"))
	lg.InfoContext(ctx, "loaded", "instances", 4)

	out := buf.String()
	assert.Contains(t, out, "msg=loaded")
	assert.Contains(t, out, "instances=4")
	assert.Contains(t, out, "run=abc123")
}

func TestLogger_AppendCtxMerges(t *testing.T) {
	var buf bytes.Buffer
	lg := Logger(&buf, true, slog.LevelInfo)

	ctx := AppendCtx(context.Background(), slog.String("a", "1"))
	ctx = AppendCtx(ctx, slog.String("b", "2"))
	lg.InfoContext(ctx, "msg")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "1", rec["a"])
	assert.Equal(t, "2", rec["b"])
}

func TestLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	lg := Logger(&buf, false, slog.LevelWarn)

	lg.Info("dropped")
	lg.Warn("kept")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}

func TestLogger_WithAttrsKeepsContext(t *testing.T) {
	var buf bytes.Buffer
	lg := Logger(&buf, false, slog.LevelInfo).With("side", "reference")

	ctx := AppendCtx(context.Background(), slog.String("run", "abc123"))
	lg.InfoContext(ctx, "loaded")

	assert.Contains(t, buf.String(), "side=reference")
	assert.Contains(t, buf.String(), "run=abc123")
}
