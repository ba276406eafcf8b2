package logging

import (
	"log/slog"
	"os"
)

// Setup points the default slog logger at stdout with a JSON handler.
// Once the database is reachable, main replaces it with a MultiHandler
// that also persists error records.
func Setup() {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
}
