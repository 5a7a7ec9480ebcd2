package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewSummaryCommand creates the summary command
func NewSummaryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "summary <session-file>",
		Short: "Print summary statistics for a single session file",
		Args:  cobra.ExactArgs(1),
		RunE:  runSummary,
	}
}

func runSummary(cmd *cobra.Command, args []string) error {
	service, engine, err := newService()
	if err != nil {
		return err
	}
	defer engine.Close()
	if err := engine.WaitReady(cmd.Context()); err != nil {
		return err
	}

	summary, err := service.SessionSummary(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	headerColor.Printf("Session %s\n", summary.SessionID)
	labelColor.Printf("File: %s\n", summary.FilePath)
	fmt.Println()

	fmt.Printf("Messages:   %d (%d user, %d assistant)\n",
		summary.MessageCount, summary.UserMessageCount, summary.AssistantMessageCount)
	fmt.Printf("Tokens:     %d in / %d out\n", summary.TotalInputTokens, summary.TotalOutputTokens)
	fmt.Printf("Thinking:   %v\n", summary.HasThinking)
	fmt.Printf("Tool use:   %v\n", summary.HasToolUse)
	if summary.CWD != "" {
		fmt.Printf("Directory:  %s\n", summary.CWD)
	}
	if summary.FirstTimestamp != nil {
		fmt.Printf("Started:    %s\n", summary.FirstTimestamp.Local().Format("2006-01-02 15:04:05"))
	}
	if summary.LastTimestamp != nil {
		fmt.Printf("Ended:      %s\n", summary.LastTimestamp.Local().Format("2006-01-02 15:04:05"))
	}
	return nil
}
