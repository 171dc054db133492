package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestMultiHandlerFansOut(t *testing.T) {
	t.Parallel()

	var text, structured bytes.Buffer
	logger := slog.New(MultiHandler(
		slog.NewTextHandler(&text, nil),
		slog.NewJSONHandler(&structured, nil),
	))

	logger.Info("order deleted", "order_id", "abc")

	if !strings.Contains(text.String(), "order deleted") {
		t.Fatalf("text handler missed the record: %q", text.String())
	}
	if !strings.Contains(structured.String(), `"order_id":"abc"`) {
		t.Fatalf("json handler missed the record: %q", structured.String())
	}
}

func TestMultiHandlerRespectsLevels(t *testing.T) {
	t.Parallel()

	var quiet, chatty bytes.Buffer
	logger := slog.New(MultiHandler(
		slog.NewTextHandler(&quiet, &slog.HandlerOptions{Level: slog.LevelError}),
		slog.NewTextHandler(&chatty, &slog.HandlerOptions{Level: slog.LevelDebug}),
	))

	logger.Info("stock restocked")

	if quiet.Len() != 0 {
		t.Fatalf("error-level handler received an info record: %q", quiet.String())
	}
	if chatty.Len() == 0 {
		t.Fatalf("debug-level handler missed the record")
	}
}

func TestMultiHandlerNoHandlers(t *testing.T) {
	t.Parallel()

	logger := slog.New(MultiHandler(nil, nil))
	logger.Info("dropped")
}
