package helpers

import (
	"context"

	"github.com/GregMSThompson/banking-backend/pkg/logger"
)

// TestCtx returns a context carrying a discarding logger. Debug is enabled so
// debug-only log paths still run under test.
func TestCtx() context.Context {
	return logger.ToContext(context.Background(), logger.New("debug", logger.NewTestHandler))
}
