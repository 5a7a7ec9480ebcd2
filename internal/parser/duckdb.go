package parser

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/AlexNguyenz/history-hub/pkg/models"
)

// DuckDB is the production Engine. The embedded database is a native
// module that takes noticeable time to load its JSON extension, so
// initialization runs in the background after Init; until it completes
// every call fails with ErrNotInitialized.
type DuckDB struct {
	mu       sync.RWMutex
	db       *sql.DB
	initErr  error
	ready    bool
	done     chan struct{}
	initOnce sync.Once
}

// NewDuckDB creates an uninitialized engine. Call Init to start it.
func NewDuckDB() *DuckDB {
	return &DuckDB{done: make(chan struct{})}
}

// Init kicks off background initialization. Safe to call more than once.
func (e *DuckDB) Init() {
	e.initOnce.Do(func() { go e.initialize() })
}

func (e *DuckDB) initialize() {
	defer close(e.done)

	db, err := openDuckDB()

	e.mu.Lock()
	defer e.mu.Unlock()
	e.ready = true
	if err != nil {
		e.initErr = err
		return
	}
	e.db = db
}

func openDuckDB() (*sql.DB, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("failed to open DuckDB: %w", err)
	}

	// DuckDB works best with a single connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("INSTALL json"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to install JSON extension: %w", err)
	}
	if _, err := db.Exec("LOAD json"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load JSON extension: %w", err)
	}

	return db, nil
}

// WaitReady blocks until initialization finishes or ctx is cancelled.
// Returns the initialization error, if any.
func (e *DuckDB) WaitReady(ctx context.Context) error {
	select {
	case <-e.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	_, err := e.handle()
	return err
}

// Close releases the database handle.
func (e *DuckDB) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.db == nil {
		return nil
	}
	err := e.db.Close()
	e.db = nil
	return err
}

func (e *DuckDB) handle() (*sql.DB, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.ready {
		return nil, ErrNotInitialized
	}
	if e.initErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotInitialized, e.initErr)
	}
	return e.db, nil
}

// SessionSummary implements Engine.
func (e *DuckDB) SessionSummary(ctx context.Context, filePath string) (models.SessionSummary, error) {
	entries, err := e.readEntries(ctx, filePath)
	if err != nil {
		return models.SessionSummary{}, err
	}
	return summarize(filePath, entries), nil
}

// ParseSession implements Engine.
func (e *DuckDB) ParseSession(ctx context.Context, filePath string) ([]models.Message, error) {
	entries, err := e.readEntries(ctx, filePath)
	if err != nil {
		return nil, err
	}

	messages := make([]models.Message, 0, len(entries))
	for _, entry := range entries {
		if msg, ok := entryToMessage(entry); ok {
			messages = append(messages, msg)
		}
	}
	return messages, nil
}

// readEntries streams every line of a session file through read_json and
// decodes each row back into a rawEntry. Any malformed line fails the
// whole read; callers decide whether that is fatal.
func (e *DuckDB) readEntries(ctx context.Context, filePath string) ([]rawEntry, error) {
	db, err := e.handle()
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT to_json(t)
		FROM read_json('%s',
			format = 'newline_delimited',
			union_by_name = true
		) AS t
	`, strings.ReplaceAll(filePath, "'", "''"))

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to read session file %s: %w", filePath, err)
	}
	defer rows.Close()

	var entries []rawEntry
	for rows.Next() {
		var line sql.NullString
		if err := rows.Scan(&line); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		if !line.Valid || line.String == "" {
			continue
		}

		var entry rawEntry
		if err := json.Unmarshal([]byte(line.String), &entry); err != nil {
			return nil, fmt.Errorf("failed to decode session row: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read session file %s: %w", filePath, err)
	}

	return entries, nil
}

// summarize folds raw entries into a SessionSummary. Message counts cover
// user and assistant entries only; timestamps follow file order, so the
// first and last timestamped entries win.
func summarize(filePath string, entries []rawEntry) models.SessionSummary {
	sum := models.SessionSummary{
		SessionID: "unknown",
		FilePath:  filePath,
	}

	for _, entry := range entries {
		if entry.SessionID != "" {
			sum.SessionID = entry.SessionID
		}
		if sum.CWD == "" && entry.CWD != "" {
			sum.CWD = entry.CWD
		}

		switch entry.Type {
		case "user":
			sum.UserMessageCount++
			sum.MessageCount++
		case "assistant":
			sum.AssistantMessageCount++
			sum.MessageCount++
			if entry.Message != nil {
				if usage := entry.Message.Usage; usage != nil {
					sum.TotalInputTokens += usage.InputTokens
					sum.TotalOutputTokens += usage.OutputTokens
				}
				blocks := normalizeContent(entry.Message.Content)
				if hasBlockType(blocks, "thinking") {
					sum.HasThinking = true
				}
				if hasBlockType(blocks, "tool_use") {
					sum.HasToolUse = true
				}
			}
		}

		if ts := parseTimestamp(entry.Timestamp); !ts.IsZero() {
			t := ts
			if sum.FirstTimestamp == nil {
				sum.FirstTimestamp = &t
			}
			sum.LastTimestamp = &t
		}
	}

	return sum
}
