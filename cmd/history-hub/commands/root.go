package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AlexNguyenz/history-hub/internal/bridge"
	"github.com/AlexNguyenz/history-hub/internal/claude"
	"github.com/AlexNguyenz/history-hub/internal/history"
	"github.com/AlexNguyenz/history-hub/internal/parser"
	"github.com/AlexNguyenz/history-hub/internal/tui"
	"github.com/AlexNguyenz/history-hub/internal/watch"
)

var debugMode bool

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "history-hub",
		Short: "Browse Claude Code conversation history",
		Long:  `history-hub is a TUI application for browsing the conversation logs the Claude Code CLI keeps under ~/.claude/projects.`,
		RunE:  runTUI,
	}

	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "List projects and sessions without the TUI")
	rootCmd.AddCommand(NewShowCommand())
	rootCmd.AddCommand(NewSummaryCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newService wires the parser engine and history service. The engine
// initializes in the background; callers that need it ready should
// WaitReady first.
func newService() (*history.Service, *parser.DuckDB, error) {
	root, err := claude.ProjectsRoot()
	if err != nil {
		return nil, nil, err
	}

	engine := parser.NewDuckDB()
	engine.Init()
	return history.NewService(root, engine), engine, nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	service, engine, err := newService()
	if err != nil {
		return err
	}
	defer engine.Close()

	if debugMode {
		if err := engine.WaitReady(cmd.Context()); err != nil {
			return err
		}
		return runDebugMode(cmd, service)
	}

	b := bridge.New(service)
	b.Start()
	defer b.Close()

	// Live refresh is best effort; the TUI works without it.
	var updates <-chan struct{}
	root, err := claude.ProjectsRoot()
	if err == nil {
		if watcher, werr := watch.New(root); werr == nil {
			defer watcher.Close()
			updates = watcher.Updates()
		}
	}

	if err := tui.Run(b, updates); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

func runDebugMode(cmd *cobra.Command, service *history.Service) error {
	ctx := cmd.Context()
	projects, err := service.ListProjects(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch projects: %w", err)
	}

	if len(projects) == 0 {
		fmt.Println("No projects found")
		return nil
	}

	fmt.Println("=== Debug Mode: Projects and Sessions ===")
	for i, project := range projects {
		fmt.Printf("\n%d. Project: %s\n", i+1, project.Name)
		fmt.Printf("   Path: %s\n", project.Path)
		fmt.Printf("   Sessions: %d\n", project.SessionCount)

		if i == 0 {
			sessions, err := service.ListSessions(ctx, project.Path)
			if err != nil {
				fmt.Printf("   Error loading sessions: %v\n", err)
				continue
			}
			fmt.Println("   Sample sessions:")
			for j, session := range sessions {
				if j >= 3 {
					break
				}
				stamp := "unknown time"
				if session.LastTimestamp != nil {
					stamp = session.LastTimestamp.Local().Format("2006-01-02 15:04")
				}
				fmt.Printf("   - %s (Session: %s, %d msgs)\n", stamp, session.SessionID, session.MessageCount)
			}
		}
	}
	return nil
}
