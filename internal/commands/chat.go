package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/diogo/bookrag/internal/render"
	"github.com/diogo/bookrag/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Start an interactive chat about your documents.

The session id is kept across questions so the server can use earlier turns
as context. Type /new or press Ctrl+N to start over with a fresh session.
Type /quit, /exit, or press Ctrl+C to leave.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := loadDependencies()
		if err != nil {
			return err
		}
		defer deps.close()
		return runChat(cmd.Context(), deps)
	},
}

func runChat(ctx context.Context, deps *Dependencies) error {
	if ctx == nil {
		ctx = context.Background()
	}

	c, err := deps.newChat()
	if err != nil {
		return err
	}

	deps.Log.Debug().Str("session_id", c.SessionID()).Msg("starting chat")

	return deps.TUI.RunChat(ctx, c, tui.Options{
		BaseURL: deps.Config.BaseURL,
		Render:  render.FromConfig(deps.Config.Markdown, 0),
	})
}
