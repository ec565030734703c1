package testutil

import (
	"context"
	"testing"
	"time"
)

// DefaultTimeout ограничивает тесты, которые ходят в PostgreSQL или MCP-сессию.
const DefaultTimeout = 60 * time.Second

// Context возвращает context, отменяемый по DefaultTimeout или по завершении теста.
func Context(tb testing.TB) context.Context {
	tb.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
	tb.Cleanup(cancel)
	return ctx
}
