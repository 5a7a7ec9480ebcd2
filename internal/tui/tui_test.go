package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/AlexNguyenz/history-hub/pkg/models"
)

// TestModelInitialization tests the initial model setup
func TestModelInitialization(t *testing.T) {
	m := initialModel(nil, nil)

	if m.currentMode != projectView {
		t.Error("initial mode should be project view")
	}
	if m.transcriptCache == nil {
		t.Error("transcript cache should be initialized")
	}
	if m.loadingFiles == nil {
		t.Error("loading files map should be initialized")
	}
	if !m.loading {
		t.Error("model should start in loading state")
	}
}

// TestProjectsLoaded tests handling of the projects result
func TestProjectsLoaded(t *testing.T) {
	m := initialModel(nil, nil)
	m.width, m.height = 80, 24
	m.resize()

	updated, _ := m.Update(ProjectsLoadedMsg{
		Projects: []models.Project{
			{Name: "proj-a", Path: "/root/.claude/projects/-proj-a", SessionCount: 2},
		},
	})
	m = updated.(model)

	if m.loading {
		t.Error("loading should be cleared")
	}
	if len(m.projects) != 1 {
		t.Fatalf("expected 1 project, got %d", len(m.projects))
	}
	if !strings.Contains(m.viewport.View(), "proj-a") {
		t.Error("project name should be rendered")
	}
}

// TestProjectsLoadError tests that a load failure surfaces in the view
func TestProjectsLoadError(t *testing.T) {
	m := initialModel(nil, nil)
	m.width, m.height = 80, 24
	m.resize()

	updated, _ := m.Update(ProjectsLoadedMsg{Err: errors.New("parser not initialized")})
	m = updated.(model)

	if m.err == nil {
		t.Fatal("error should be recorded")
	}
	if !strings.Contains(m.View(), "parser not initialized") {
		t.Error("error should be rendered")
	}
	if !strings.Contains(m.View(), "r: retry") {
		t.Error("retry hint should be rendered")
	}
}

// TestTranscriptCaching tests that loaded transcripts are cached by file
func TestTranscriptCaching(t *testing.T) {
	m := initialModel(nil, nil)
	m.width, m.height = 80, 24
	m.resize()
	m.currentMode = sessionView
	m.sessions = []models.SessionSummary{
		{SessionID: "s1", FilePath: "/p/s1.jsonl"},
	}
	m.loadingFiles["/p/s1.jsonl"] = true

	updated, _ := m.Update(TranscriptLoadedMsg{
		FilePath: "/p/s1.jsonl",
		Messages: []models.Message{{Role: "user", Content: "hello there"}},
	})
	m = updated.(model)

	if m.loadingFiles["/p/s1.jsonl"] {
		t.Error("file should no longer be marked loading")
	}
	cached, ok := m.transcriptCache["/p/s1.jsonl"]
	if !ok || len(cached) != 1 {
		t.Fatalf("transcript should be cached, got %v", cached)
	}
	if !strings.Contains(m.rightViewport.View(), "hello there") {
		t.Error("transcript content should be rendered")
	}
}

// TestSessionNavigationSkipsCachedLoads tests that moving the cursor onto
// a cached session does not issue a new request
func TestSessionNavigationSkipsCachedLoads(t *testing.T) {
	m := initialModel(nil, nil)
	m.width, m.height = 80, 24
	m.resize()
	m.currentMode = sessionView
	m.sessions = []models.SessionSummary{
		{SessionID: "s1", FilePath: "/p/s1.jsonl"},
		{SessionID: "s2", FilePath: "/p/s2.jsonl"},
	}
	m.transcriptCache["/p/s2.jsonl"] = []models.Message{{Role: "user", Content: "cached"}}

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = updated.(model)

	if m.sessionCursor != 1 {
		t.Errorf("cursor = %d, want 1", m.sessionCursor)
	}
	if cmd != nil {
		t.Error("no load command expected for a cached transcript")
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("one two three four five", 9)
	for _, line := range lines {
		if len(line) > 9 {
			t.Errorf("line %q exceeds width", line)
		}
	}
	if strings.Join(lines, " ") != "one two three four five" {
		t.Errorf("wrapping lost words: %v", lines)
	}
}

func TestRoleLabelFlags(t *testing.T) {
	label := roleLabel(models.Message{Role: "assistant", HasToolUse: true})
	if !strings.Contains(label, "[Assistant]") || !strings.Contains(label, "tools") {
		t.Errorf("unexpected label %q", label)
	}
}
