package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Show the current session id",
	Long: `Show the session id sent with every question.

In persist mode the id is stored in ~/.bookrag/session.json and reused by
later runs, so the server keeps the conversation context.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := loadDependencies()
		if err != nil {
			return err
		}
		return runSessionShow(deps)
	},
}

var sessionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current session id",
}

var sessionResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Start a new session",
	Long:  `Replace the stored session id so the next question starts a fresh conversation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := loadDependencies()
		if err != nil {
			return err
		}
		return runSessionReset(deps)
	},
}

func init() {
	sessionShowCmd.RunE = sessionCmd.RunE
	sessionCmd.AddCommand(sessionShowCmd)
	sessionCmd.AddCommand(sessionResetCmd)
}

func runSessionShow(deps *Dependencies) error {
	sessions, err := deps.sessions()
	if err != nil {
		return err
	}
	fmt.Fprintf(deps.Out, "%s (%s)\n", sessions.Current(), deps.Config.SessionMode)
	return nil
}

func runSessionReset(deps *Dependencies) error {
	sessions, err := deps.sessions()
	if err != nil {
		return err
	}
	old := sessions.Current()
	id, err := sessions.Reset()
	if err != nil {
		return fmt.Errorf("failed to reset session: %w", err)
	}
	deps.Log.Info().Str("old", old).Str("new", id).Msg("session reset")
	fmt.Fprintf(deps.Out, "New session: %s\n", id)
	return nil
}
