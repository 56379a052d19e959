package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/scopetrace/internal/config"
	"github.com/aretw0/scopetrace/internal/logging"
)

// CreateLogger configures the application logger from the log section.
// Quiet runs only log errors.
func CreateLogger(cfg *config.Config, quiet bool) (*slog.Logger, error) {
	if quiet && cfg.Log.Level != "debug" {
		return logging.NewFor(cfg.Log.Format, slog.LevelError)
	}
	return cfg.Logger()
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}
