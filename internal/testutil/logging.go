package testutil

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/vk/modkit/internal/ctxlog"
)

// LogContext returns a context carrying a debug-level text logger that
// writes into the returned buffer. Set MODKIT_TEST_LOGS=true to dump the
// buffer when the test ends.
func LogContext(t *testing.T) (context.Context, *SafeBuffer) {
	t.Helper()

	buf := &SafeBuffer{}
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	t.Cleanup(func() {
		if os.Getenv("MODKIT_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), buf.String())
		}
	})

	return ctxlog.WithLogger(context.Background(), logger), buf
}
