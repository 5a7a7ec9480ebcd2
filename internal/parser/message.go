package parser

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/AlexNguyenz/history-hub/pkg/models"
)

// rawEntry is one line of a JSONL session transcript.
type rawEntry struct {
	Type        string      `json:"type"`
	UUID        string      `json:"uuid"`
	ParentUUID  string      `json:"parentUuid"`
	SessionID   string      `json:"sessionId"`
	Timestamp   string      `json:"timestamp"`
	Message     *rawMessage `json:"message"`
	Summary     string      `json:"summary"`
	LeafUUID    string      `json:"leafUuid"`
	IsSidechain *bool       `json:"isSidechain"`
	UserType    string      `json:"userType"`
	CWD         string      `json:"cwd"`
	Version     string      `json:"version"`
}

type rawMessage struct {
	Role       string          `json:"role"`
	Content    json.RawMessage `json:"content"` // string for user prompts, array otherwise
	Model      string          `json:"model"`
	ID         string          `json:"id"`
	StopReason string          `json:"stop_reason"`
	Usage      *rawUsage       `json:"usage"`
}

type rawUsage struct {
	InputTokens              int `json:"input_tokens"`
	OutputTokens             int `json:"output_tokens"`
	CacheCreationInputTokens int `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     int `json:"cache_read_input_tokens"`
}

// contentBlock is a single item of a message content array.
type contentBlock struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	Thinking  string          `json:"thinking,omitempty"`
	Signature string          `json:"signature,omitempty"`
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	ToolUseID string          `json:"tool_use_id,omitempty"`
	Content   json.RawMessage `json:"content,omitempty"`
	IsError   *bool           `json:"is_error,omitempty"`
	Source    json.RawMessage `json:"source,omitempty"`
}

// normalizeContent accepts either form of the content field: a bare string
// (plain user prompts) becomes a single text block, an array is decoded
// as-is.
func normalizeContent(raw json.RawMessage) []contentBlock {
	if len(raw) == 0 {
		return nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return []contentBlock{{Type: "text", Text: s}}
	}

	var blocks []contentBlock
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return nil
	}
	return blocks
}

// mergedText flattens the displayable text of a content array. Thinking
// blocks are included with a marker so transcripts show the reasoning
// inline.
func mergedText(blocks []contentBlock) string {
	var parts []string
	for _, b := range blocks {
		switch b.Type {
		case "text":
			if b.Text != "" {
				parts = append(parts, b.Text)
			}
		case "thinking":
			if b.Thinking != "" {
				parts = append(parts, "[Thinking]\n"+b.Thinking)
			}
		}
	}
	return strings.Join(parts, "\n\n")
}

func hasBlockType(blocks []contentBlock, blockType string) bool {
	for _, b := range blocks {
		if b.Type == blockType {
			return true
		}
	}
	return false
}

// entryToMessage converts a raw transcript line into a Message. Only user
// and assistant entries carrying a message payload qualify.
func entryToMessage(entry rawEntry) (models.Message, bool) {
	if entry.Type != "user" && entry.Type != "assistant" {
		return models.Message{}, false
	}
	if entry.Message == nil {
		return models.Message{}, false
	}

	blocks := normalizeContent(entry.Message.Content)
	rawContent, _ := json.Marshal(blocks)

	msg := models.Message{
		MessageID:   entry.UUID,
		SessionID:   entry.SessionID,
		Role:        entry.Message.Role,
		Content:     mergedText(blocks),
		Timestamp:   parseTimestamp(entry.Timestamp),
		RawContent:  string(rawContent),
		HasThinking: hasBlockType(blocks, "thinking"),
		HasToolUse:  hasBlockType(blocks, "tool_use"),
		HasImages:   hasBlockType(blocks, "image"),
		ParentID:    entry.ParentUUID,
		Model:       entry.Message.Model,
		StopReason:  entry.Message.StopReason,
		UserType:    entry.UserType,
	}
	if msg.MessageID == "" {
		msg.MessageID = "unknown"
	}
	if msg.SessionID == "" {
		msg.SessionID = "unknown"
	}
	if entry.IsSidechain != nil {
		msg.IsSidechain = *entry.IsSidechain
	}
	if usage := entry.Message.Usage; usage != nil {
		msg.InputTokens = usage.InputTokens
		msg.OutputTokens = usage.OutputTokens
		msg.CacheCreationTokens = usage.CacheCreationInputTokens
		msg.CacheReadTokens = usage.CacheReadInputTokens
	}
	return msg, true
}

// timestampLayouts covers RFC3339 as written by the CLI and the bare
// form DuckDB renders TIMESTAMP values in.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func parseTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
