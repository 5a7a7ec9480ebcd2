package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/AlexNguyenz/history-hub/internal/bridge"
	"github.com/AlexNguyenz/history-hub/pkg/models"
)

// Message types for async operations
type (
	// ProjectsLoadedMsg contains the result of get-all-projects
	ProjectsLoadedMsg struct {
		Projects []models.Project
		Err      error
	}

	// SessionsLoadedMsg contains the result of get-project-sessions
	SessionsLoadedMsg struct {
		ProjectPath string
		Sessions    []models.SessionSummary
		Err         error
	}

	// TranscriptLoadedMsg contains the result of parse-session
	TranscriptLoadedMsg struct {
		FilePath string
		Messages []models.Message
		Err      error
	}

	// RefreshMsg signals that session files changed on disk
	RefreshMsg struct{}

	// TickMsg is sent periodically for spinner animation
	TickMsg time.Time
)

// loadProjectsCmd requests all projects through the bridge
func loadProjectsCmd(ctx context.Context, b *bridge.Bridge) tea.Cmd {
	return func() tea.Msg {
		replies, _ := b.Submit(ctx, bridge.OpGetAllProjects, "")
		resp := <-replies
		return ProjectsLoadedMsg{
			Projects: resp.Projects,
			Err:      resp.Err,
		}
	}
}

// loadSessionsCmd requests the sessions of one project through the bridge
func loadSessionsCmd(ctx context.Context, b *bridge.Bridge, projectPath string) tea.Cmd {
	return func() tea.Msg {
		replies, _ := b.Submit(ctx, bridge.OpGetProjectSessions, projectPath)
		resp := <-replies
		return SessionsLoadedMsg{
			ProjectPath: projectPath,
			Sessions:    resp.Sessions,
			Err:         resp.Err,
		}
	}
}

// loadTranscriptCmd requests the full transcript of one session file
func loadTranscriptCmd(ctx context.Context, b *bridge.Bridge, filePath string) tea.Cmd {
	return func() tea.Msg {
		replies, _ := b.Submit(ctx, bridge.OpParseSession, filePath)
		resp := <-replies
		return TranscriptLoadedMsg{
			FilePath: filePath,
			Messages: resp.Messages,
			Err:      resp.Err,
		}
	}
}

// listenUpdatesCmd waits for the next filesystem change signal
func listenUpdatesCmd(updates <-chan struct{}) tea.Cmd {
	if updates == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-updates; !ok {
			return nil
		}
		return RefreshMsg{}
	}
}

// tickCmd creates a ticker for spinner animation
func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
