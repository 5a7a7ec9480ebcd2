package commands

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/AlexNguyenz/history-hub/internal/history"
	"github.com/AlexNguyenz/history-hub/pkg/models"
)

var (
	headerColor    = color.New(color.FgCyan, color.Bold)
	labelColor     = color.New(color.FgHiBlack)
	userColor      = color.New(color.FgGreen, color.Bold)
	assistantColor = color.New(color.FgMagenta, color.Bold)
)

// NewShowCommand creates the show command
func NewShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [project] [session-id]",
		Short: "Show projects, sessions, or transcripts without TUI",
		Long: `Show projects, sessions, or transcripts in a non-interactive format.
Without arguments: lists all projects
With project name: lists all sessions in that project
With project name and session ID: prints the session transcript`,
		RunE: runShow,
	}
}

func runShow(cmd *cobra.Command, args []string) error {
	service, engine, err := newService()
	if err != nil {
		return err
	}
	defer engine.Close()
	if err := engine.WaitReady(cmd.Context()); err != nil {
		return err
	}

	switch len(args) {
	case 0:
		return showProjects(cmd, service)
	case 1:
		return showSessions(cmd, service, args[0])
	case 2:
		return showTranscript(cmd, service, args[0], args[1])
	default:
		return fmt.Errorf("too many arguments. Usage: history-hub show [project] [session-id]")
	}
}

func findProject(cmd *cobra.Command, service *history.Service, nameOrPath string) (*models.Project, error) {
	projects, err := service.ListProjects(cmd.Context())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch projects: %w", err)
	}
	for _, project := range projects {
		if project.Name == nameOrPath || project.Path == nameOrPath {
			p := project
			return &p, nil
		}
	}
	return nil, fmt.Errorf("project '%s' not found", nameOrPath)
}

func showProjects(cmd *cobra.Command, service *history.Service) error {
	projects, err := service.ListProjects(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to fetch projects: %w", err)
	}

	if len(projects) == 0 {
		fmt.Println("No projects found")
		return nil
	}

	headerColor.Println("Projects")
	headerColor.Println("========")
	for i, project := range projects {
		fmt.Printf("%d. %s\n", i+1, project.Name)
		labelColor.Printf("   Path: %s\n", project.Path)
		labelColor.Printf("   Sessions: %d\n", project.SessionCount)
		if !project.LastActivity.IsZero() {
			labelColor.Printf("   Last Activity: %s\n", project.LastActivity.Format("2006-01-02 15:04"))
		}
		fmt.Println()
	}
	return nil
}

func showSessions(cmd *cobra.Command, service *history.Service, projectName string) error {
	project, err := findProject(cmd, service, projectName)
	if err != nil {
		return err
	}

	sessions, err := service.ListSessions(cmd.Context(), project.Path)
	if err != nil {
		return fmt.Errorf("failed to fetch sessions: %w", err)
	}

	if len(sessions) == 0 {
		fmt.Printf("No sessions found for project '%s'\n", project.Name)
		return nil
	}

	headerColor.Printf("Sessions for project '%s'\n", project.Name)
	labelColor.Printf("Path: %s\n", project.Path)
	fmt.Println("===================================")

	for i, session := range sessions {
		fmt.Printf("%d. Session ID: %s\n", i+1, session.SessionID)
		if session.LastTimestamp != nil {
			labelColor.Printf("   Last Activity: %s\n", session.LastTimestamp.Local().Format("2006-01-02 15:04"))
		}
		labelColor.Printf("   Messages: %d (%d user, %d assistant)\n",
			session.MessageCount, session.UserMessageCount, session.AssistantMessageCount)
		if session.TotalInputTokens > 0 || session.TotalOutputTokens > 0 {
			labelColor.Printf("   Tokens: %d in / %d out\n", session.TotalInputTokens, session.TotalOutputTokens)
		}
		fmt.Println()
	}
	return nil
}

func showTranscript(cmd *cobra.Command, service *history.Service, projectName, sessionID string) error {
	project, err := findProject(cmd, service, projectName)
	if err != nil {
		return err
	}

	sessions, err := service.ListSessions(cmd.Context(), project.Path)
	if err != nil {
		return fmt.Errorf("failed to fetch sessions: %w", err)
	}

	var target *models.SessionSummary
	for _, session := range sessions {
		if session.SessionID == sessionID {
			s := session
			target = &s
			break
		}
	}
	if target == nil {
		fmt.Printf("Session '%s' not found in project '%s'\n", sessionID, project.Name)
		fmt.Println("\nAvailable sessions in this project:")
		for i, session := range sessions {
			if i >= 10 {
				fmt.Printf("... and %d more sessions\n", len(sessions)-10)
				break
			}
			fmt.Printf("  - %s\n", session.SessionID)
		}
		return nil
	}

	messages, err := service.ParseSession(cmd.Context(), target.FilePath)
	if err != nil {
		return fmt.Errorf("failed to parse session: %w", err)
	}

	if len(messages) == 0 {
		fmt.Printf("No messages found for session '%s'\n", sessionID)
		return nil
	}

	headerColor.Printf("Transcript of session '%s' (%s)\n", sessionID, project.Name)
	fmt.Println("================================================")
	for _, msg := range messages {
		roleColor := assistantColor
		if msg.Role == "user" {
			roleColor = userColor
		}
		stamp := ""
		if !msg.Timestamp.IsZero() {
			stamp = " " + msg.Timestamp.Local().Format("15:04:05")
		}
		roleColor.Printf("\n[%s]%s\n", msg.Role, stamp)

		content := msg.Content
		if content == "" && msg.HasToolUse {
			content = "(tool use)"
		}
		fmt.Println(strings.TrimSpace(content))
	}
	return nil
}
