package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var historyFullFlag bool

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the conversation stored on the server",
	Long: `Fetch the conversation history the server keeps for the current
login and print it oldest first. Long messages are shortened unless --full
is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := loadDependencies()
		if err != nil {
			return err
		}
		defer deps.close()
		return runHistory(cmd.Context(), deps)
	},
}

func init() {
	historyCmd.Flags().BoolVar(&historyFullFlag, "full", false, "Print messages without truncation")
}

func runHistory(ctx context.Context, deps *Dependencies) error {
	if ctx == nil {
		ctx = context.Background()
	}

	client, err := deps.client()
	if err != nil {
		return err
	}

	entries, err := client.FetchHistory(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch history: %w", err)
	}

	if len(entries) == 0 {
		fmt.Fprintln(deps.Out, "No history.")
		return nil
	}

	labelStyle := lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	for i, e := range entries {
		content := e.Content
		if !historyFullFlag {
			content = truncate(strings.ReplaceAll(content, "\n", " "), 200)
		}
		fmt.Fprintf(deps.Out, "%s %s\n", labelStyle.Render(fmt.Sprintf("%d. %s:", i+1, e.Role.DisplayName())), content)
	}
	return nil
}

// truncate shortens s to at most max runes, ending with "..."
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
