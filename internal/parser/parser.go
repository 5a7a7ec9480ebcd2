// Package parser extracts summaries and transcripts from Claude Code
// session files. Consumers depend on the Engine interface; the production
// implementation is DuckDB-backed and initializes asynchronously, so every
// call made before initialization completes fails with ErrNotInitialized.
package parser

import (
	"context"
	"errors"

	"github.com/AlexNguyenz/history-hub/pkg/models"
)

// ErrNotInitialized is returned when the engine has not finished (or has
// failed) its background initialization.
var ErrNotInitialized = errors.New("parser not initialized")

// Engine is the session parsing contract. Both operations fail on
// malformed or unreadable files.
type Engine interface {
	// SessionSummary reads one session file and returns lightweight
	// metadata: message counts, timestamps, token totals and the recorded
	// working directory.
	SessionSummary(ctx context.Context, filePath string) (models.SessionSummary, error)

	// ParseSession reads one session file and returns the full transcript
	// of user and assistant messages in file order.
	ParseSession(ctx context.Context, filePath string) ([]models.Message, error)
}
