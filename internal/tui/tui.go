// Package tui is the interactive browser over the bridge operations:
// a project list, and a split view with sessions on the left and the
// selected session's transcript on the right.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/AlexNguyenz/history-hub/internal/bridge"
	"github.com/AlexNguyenz/history-hub/pkg/models"
)

type viewMode int

const (
	projectView viewMode = iota
	sessionView
)

type model struct {
	bridge  *bridge.Bridge
	updates <-chan struct{}

	projects        []models.Project
	currentMode     viewMode
	projectCursor   int
	sessionCursor   int
	selectedProject *models.Project
	sessions        []models.SessionSummary

	transcriptCache map[string][]models.Message // keyed by session file path
	loadingFiles    map[string]bool

	loading   bool
	indicator *LoadingIndicator

	viewport      viewport.Model
	leftViewport  viewport.Model
	rightViewport viewport.Model

	ready  bool
	err    error
	width  int
	height int
}

func initialModel(b *bridge.Bridge, updates <-chan struct{}) model {
	return model{
		bridge:          b,
		updates:         updates,
		currentMode:     projectView,
		transcriptCache: make(map[string][]models.Message),
		loadingFiles:    make(map[string]bool),
		loading:         true,
		indicator:       NewLoadingIndicator("Loading projects..."),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		loadProjectsCmd(context.Background(), m.bridge),
		listenUpdatesCmd(m.updates),
		tickCmd(),
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.updateViewport()

	case tea.KeyMsg:
		newModel, cmd, handled := m.handleKey(msg)
		if handled {
			return newModel, cmd
		}
		m = newModel

	case ProjectsLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.err = msg.Err
		} else {
			m.err = nil
			m.projects = msg.Projects
			if m.projectCursor >= len(m.projects) {
				m.projectCursor = 0
			}
		}
		m.updateViewport()

	case SessionsLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.err = msg.Err
			m.updateViewport()
			break
		}
		m.err = nil
		m.sessions = msg.Sessions
		m.currentMode = sessionView
		if m.sessionCursor >= len(m.sessions) {
			m.sessionCursor = 0
		}
		if cmd := m.requestTranscript(); cmd != nil {
			cmds = append(cmds, cmd)
		}
		m.updateViewport()

	case TranscriptLoadedMsg:
		delete(m.loadingFiles, msg.FilePath)
		if msg.Err != nil {
			m.transcriptCache[msg.FilePath] = []models.Message{{
				Role:    "system",
				Content: fmt.Sprintf("Error loading transcript: %v", msg.Err),
			}}
		} else {
			m.transcriptCache[msg.FilePath] = msg.Messages
		}
		m.updateViewport()

	case RefreshMsg:
		cmds = append(cmds, m.reloadCurrentView(), listenUpdatesCmd(m.updates))

	case TickMsg:
		if m.loading || len(m.loadingFiles) > 0 {
			m.indicator.Tick()
		}
		cmds = append(cmds, tickCmd())
	}

	if m.ready {
		if m.currentMode == projectView {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			cmds = append(cmds, cmd)
		} else {
			var leftCmd, rightCmd tea.Cmd
			m.leftViewport, leftCmd = m.leftViewport.Update(msg)
			m.rightViewport, rightCmd = m.rightViewport.Update(msg)
			cmds = append(cmds, leftCmd, rightCmd)
		}
	}

	return m, tea.Batch(cmds...)
}

// handleKey processes key presses. The third return value reports whether
// the key ended the update cycle (quit or a fresh load).
func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit, true

	case "up", "k":
		if m.currentMode == projectView {
			if m.projectCursor > 0 {
				m.projectCursor--
				m.updateViewport()
			}
		} else if m.sessionCursor > 0 {
			m.sessionCursor--
			cmd := m.requestTranscript()
			m.updateViewport()
			return m, cmd, cmd != nil
		}

	case "down", "j":
		if m.currentMode == projectView {
			if m.projectCursor < len(m.projects)-1 {
				m.projectCursor++
				m.updateViewport()
			}
		} else if m.sessionCursor < len(m.sessions)-1 {
			m.sessionCursor++
			cmd := m.requestTranscript()
			m.updateViewport()
			return m, cmd, cmd != nil
		}

	case "enter":
		if m.currentMode == projectView && m.projectCursor < len(m.projects) {
			project := m.projects[m.projectCursor]
			m.selectedProject = &project
			m.sessionCursor = 0
			m.loading = true
			m.indicator.SetMessage("Loading sessions...")
			return m, loadSessionsCmd(context.Background(), m.bridge, project.Path), true
		}

	case "esc", "backspace":
		if m.currentMode == sessionView {
			m.currentMode = projectView
			m.selectedProject = nil
			m.sessions = nil
			m.sessionCursor = 0
			m.err = nil
			m.updateViewport()
		}

	case "r":
		m.loading = true
		m.indicator.SetMessage("Refreshing...")
		return m, m.reloadCurrentView(), true
	}

	return m, nil, false
}

// reloadCurrentView re-issues the load for whichever view is active.
func (m *model) reloadCurrentView() tea.Cmd {
	if m.currentMode == sessionView && m.selectedProject != nil {
		return loadSessionsCmd(context.Background(), m.bridge, m.selectedProject.Path)
	}
	return loadProjectsCmd(context.Background(), m.bridge)
}

// requestTranscript loads the transcript for the session under the cursor
// unless it is cached or already in flight.
func (m *model) requestTranscript() tea.Cmd {
	path := m.currentSessionFile()
	if path == "" {
		return nil
	}
	if _, ok := m.transcriptCache[path]; ok {
		return nil
	}
	if m.loadingFiles[path] {
		return nil
	}
	m.loadingFiles[path] = true
	return loadTranscriptCmd(context.Background(), m.bridge, path)
}

func (m *model) currentSessionFile() string {
	if m.sessionCursor >= len(m.sessions) {
		return ""
	}
	return m.sessions[m.sessionCursor].FilePath
}

func (m *model) resize() {
	if !m.ready {
		m.viewport = viewport.New(m.width, m.height-3)
		leftWidth := m.width/2 - 1
		rightWidth := m.width - leftWidth - 1
		viewHeight := m.height - 3
		m.leftViewport = viewport.New(leftWidth, viewHeight)
		m.rightViewport = viewport.New(rightWidth, viewHeight)
		m.ready = true
		return
	}

	m.viewport.Width = m.width
	m.viewport.Height = m.height - 3
	leftWidth := m.width/2 - 1
	rightWidth := m.width - leftWidth - 1
	viewHeight := m.height - 3
	m.leftViewport.Width = leftWidth
	m.leftViewport.Height = viewHeight
	m.rightViewport.Width = rightWidth
	m.rightViewport.Height = viewHeight
}

func (m *model) updateViewport() {
	if !m.ready {
		return
	}
	if m.currentMode == projectView {
		m.viewport.SetContent(m.renderProjects())
	} else {
		m.leftViewport.SetContent(m.renderSessionsList())
		m.rightViewport.SetContent(m.renderTranscript())
	}
}

func (m model) renderProjects() string {
	if len(m.projects) == 0 {
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true).
			Render("No projects found under ~/.claude/projects")
	}

	var s strings.Builder
	for i, project := range m.projects {
		cursor := "  "
		if i == m.projectCursor {
			cursor = "> "
		}

		style := lipgloss.NewStyle()
		if i == m.projectCursor {
			style = style.Foreground(lipgloss.Color("212")).Bold(true)
		}

		line := fmt.Sprintf("%s%s (%d sessions)", cursor, project.Name, project.SessionCount)
		if !project.LastActivity.IsZero() {
			line += " - " + project.LastActivity.Format("2006-01-02 15:04")
		}

		s.WriteString(style.Render(line) + "\n")
	}
	return s.String()
}

func (m model) renderSessionsList() string {
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229"))

	var s strings.Builder
	s.WriteString(headerStyle.Render("Sessions") + "\n")
	s.WriteString(strings.Repeat("─", max(m.leftViewport.Width-2, 10)) + "\n\n")

	if len(m.sessions) == 0 {
		s.WriteString(lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true).
			Render("No sessions found"))
		return s.String()
	}

	for i, session := range m.sessions {
		cursor := "  "
		if i == m.sessionCursor {
			cursor = "> "
		}

		dateStyle := lipgloss.NewStyle()
		if i == m.sessionCursor {
			dateStyle = dateStyle.Foreground(lipgloss.Color("212")).Bold(true)
		} else {
			dateStyle = dateStyle.Foreground(lipgloss.Color("252"))
		}

		stamp := "unknown time"
		if session.LastTimestamp != nil {
			stamp = session.LastTimestamp.Local().Format("01-02 15:04")
		}
		s.WriteString(dateStyle.Render(fmt.Sprintf("%s%s", cursor, stamp)) + "\n")

		detailStyle := lipgloss.NewStyle()
		if i == m.sessionCursor {
			detailStyle = detailStyle.Foreground(lipgloss.Color("245"))
		} else {
			detailStyle = detailStyle.Foreground(lipgloss.Color("238"))
		}
		s.WriteString(detailStyle.Render(fmt.Sprintf("  %s · %d msgs",
			truncate(session.SessionID, 12), session.MessageCount)) + "\n")

		if i < len(m.sessions)-1 {
			s.WriteString("\n")
		}
	}
	return s.String()
}

func (m model) renderTranscript() string {
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229"))

	var s strings.Builder
	s.WriteString(headerStyle.Render("Transcript") + "\n")
	s.WriteString(strings.Repeat("─", max(m.rightViewport.Width-2, 10)) + "\n\n")

	path := m.currentSessionFile()
	if path == "" {
		return s.String()
	}
	if m.loadingFiles[path] {
		s.WriteString(m.indicator.View())
		return s.String()
	}

	messages, ok := m.transcriptCache[path]
	if !ok || len(messages) == 0 {
		s.WriteString(lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true).
			Render("No messages found"))
		return s.String()
	}

	roleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("243")).
		Bold(true)
	messageStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	wrapWidth := max(m.rightViewport.Width-5, 20)
	for i, msg := range messages {
		label := roleLabel(msg)
		s.WriteString(roleStyle.Render(label) + "\n")

		for _, line := range wrapText(msg.Content, wrapWidth) {
			s.WriteString(messageStyle.Render(line) + "\n")
		}
		if i < len(messages)-1 {
			s.WriteString("\n")
		}
	}
	return s.String()
}

// roleLabel names a message for display, flagging non-text payloads.
func roleLabel(msg models.Message) string {
	role := msg.Role
	if role == "" {
		role = "unknown"
	}
	label := "[" + strings.ToUpper(role[:1]) + role[1:] + "]"
	if !msg.Timestamp.IsZero() {
		label += " " + msg.Timestamp.Local().Format("15:04:05")
	}
	var flags []string
	if msg.HasToolUse {
		flags = append(flags, "tools")
	}
	if msg.HasImages {
		flags = append(flags, "images")
	}
	if len(flags) > 0 {
		label += " (" + strings.Join(flags, ", ") + ")"
	}
	return label
}

// wrapText wraps text to fit within the specified width
func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}

	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		currentLine := words[0]
		for _, word := range words[1:] {
			if len(currentLine)+1+len(word) > width {
				lines = append(lines, currentLine)
				currentLine = word
			} else {
				currentLine += " " + word
			}
		}
		lines = append(lines, currentLine)
	}
	return lines
}

func (m model) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}

	header := m.renderHeader()
	footer := m.renderFooter()

	if m.err != nil {
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
		hintStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
		body := fmt.Sprintf("\n  %s\n\n  %s",
			errStyle.Render(fmt.Sprintf("Error: %v", m.err)),
			hintStyle.Render("r: retry • q: quit"))
		return fmt.Sprintf("%s\n%s\n%s", header, body, footer)
	}

	if m.loading {
		return fmt.Sprintf("%s\n%s\n%s", header,
			LoadingOverlay(m.width, m.height-3, m.indicator), footer)
	}

	if m.currentMode == projectView {
		return fmt.Sprintf("%s\n%s\n%s", header, m.viewport.View(), footer)
	}
	return fmt.Sprintf("%s\n%s\n%s", header, m.renderSplitView(), footer)
}

func (m model) renderSplitView() string {
	leftStyle := lipgloss.NewStyle().
		Width(m.leftViewport.Width).
		Height(m.leftViewport.Height)

	rightStyle := lipgloss.NewStyle().
		Width(m.rightViewport.Width).
		Height(m.rightViewport.Height)

	dividerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("238")).
		Height(m.leftViewport.Height)

	divider := strings.Builder{}
	for i := 0; i < m.leftViewport.Height; i++ {
		divider.WriteString("│")
		if i < m.leftViewport.Height-1 {
			divider.WriteString("\n")
		}
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		leftStyle.Render(m.leftViewport.View()),
		dividerStyle.Render(divider.String()),
		rightStyle.Render(m.rightViewport.View()),
	)
}

func (m model) renderHeader() string {
	title := "History Hub - Projects"
	if m.currentMode == sessionView && m.selectedProject != nil {
		title = fmt.Sprintf("History Hub - %s", m.selectedProject.Name)
	}

	style := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("63"))

	return style.Render(title)
}

func (m model) renderFooter() string {
	info := "↑/↓: navigate • enter: open • r: refresh"
	if m.currentMode == sessionView {
		info += " • esc: back"
	}
	info += " • q: quit"

	style := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	return style.Render(info)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Run displays the TUI until the user quits. updates may be nil when no
// filesystem watcher is available.
func Run(b *bridge.Bridge, updates <-chan struct{}) error {
	p := tea.NewProgram(
		initialModel(b, updates),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
