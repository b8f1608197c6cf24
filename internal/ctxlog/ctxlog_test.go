package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromContext(t *testing.T) {
	t.Run("returns embedded logger", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))

		ctx := WithLogger(context.Background(), logger)
		FromContext(ctx).Info("hello", "event", "A")

		assert.Contains(t, buf.String(), "event=A")
	})

	t.Run("falls back to default", func(t *testing.T) {
		assert.Same(t, slog.Default(), FromContext(context.Background()))
	})

	t.Run("nil logger falls back to default", func(t *testing.T) {
		ctx := WithLogger(context.Background(), nil)
		assert.Same(t, slog.Default(), FromContext(ctx))
	})
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	base := WithLogger(context.Background(), slog.New(slog.NewTextHandler(&buf, nil)))

	ctx, logger := With(base, "composite", "IssueTriage")
	logger.Info("returned")
	FromContext(ctx).Info("stored", "event", "Assignment")
	FromContext(base).Info("parent")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if assert.Len(t, lines, 3) {
		assert.Contains(t, string(lines[0]), "composite=IssueTriage")
		assert.Contains(t, string(lines[1]), "composite=IssueTriage event=Assignment")
		assert.NotContains(t, string(lines[2]), "composite=")
	}
}
