package models

import "time"

// Project represents a project directory under the Claude projects root
// with aggregated session information. Projects are recomputed on every
// scan and never persisted.
type Project struct {
	Name         string
	Path         string
	SessionCount int
	LastActivity time.Time
}

// SessionSummary is lightweight metadata for one session file, produced
// by the parser engine. Timestamps are nil when the file carries no
// timestamped entries.
type SessionSummary struct {
	SessionID             string
	FilePath              string
	MessageCount          int
	UserMessageCount      int
	AssistantMessageCount int
	FirstTimestamp        *time.Time
	LastTimestamp         *time.Time

	TotalInputTokens  int
	TotalOutputTokens int
	HasThinking       bool
	HasToolUse        bool

	CWD string // working directory recorded inside the session, if any
}

// Message is a single user or assistant turn extracted from a session
// transcript.
type Message struct {
	MessageID string
	SessionID string
	Role      string
	Content   string // merged text content
	Timestamp time.Time

	RawContent  string // normalized content blocks as JSON
	HasThinking bool
	HasToolUse  bool
	HasImages   bool

	ParentID   string
	Model      string
	StopReason string

	InputTokens         int
	OutputTokens        int
	CacheCreationTokens int
	CacheReadTokens     int

	IsSidechain bool
	UserType    string
}
