// Package commands provides CLI commands for bookrag.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	baseURLFlag   string
	logLevelFlag  string
	verboseFlag   bool
	ephemeralFlag bool

	// Root command flags
	outputFlag string
	fileFlag   string
	rawFlag    bool

	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "bookrag [question]",
	Short: "Terminal client for the BookRAG document chat service",
	Long: `bookrag asks questions about your document collection and streams
the answers from a BookRAG server. It authenticates with the CSRF token and
session cookie issued by the server's web interface.

Examples:
  bookrag chat                              Start interactive chat
  bookrag import-cookies --browser auto     Import cookies from a browser
  bookrag "What does chapter 3 cover?"      Ask a single question
  bookrag -f question.md                    Read the question from a file
  cat question.md | bookrag                 Read the question from stdin
  bookrag "Summarize" -o answer.md          Save the answer to a file`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Fprintf(cmd.OutOrStdout(), "bookrag %s (built %s)\n", Version, BuildTime)
			return nil
		}

		question, err := readQuestion(args, os.Stdin)
		if err != nil {
			return err
		}
		if question == "" {
			return cmd.Help()
		}

		deps, err := loadDependencies()
		if err != nil {
			return err
		}
		defer deps.close()

		return runQuery(cmd.Context(), deps, question, rawFlag || !isStdoutTTY())
	},
}

// readQuestion takes the question from --file, then piped stdin, then the
// positional argument
func readQuestion(args []string, stdin *os.File) (string, error) {
	if fileFlag != "" {
		data, err := os.ReadFile(fileFlag)
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
		return string(data), nil
	}

	if stdin != nil {
		if stat, err := stdin.Stat(); err == nil && (stat.Mode()&os.ModeCharDevice) == 0 {
			data, err := io.ReadAll(stdin)
			if err != nil {
				return "", fmt.Errorf("failed to read stdin: %w", err)
			}
			if len(data) > 0 {
				return string(data), nil
			}
		}
	}

	if len(args) > 0 {
		return args[0], nil
	}
	return "", nil
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, formatErrorMessage(err, "Error"))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&baseURLFlag, "base-url", "", "BookRAG server URL (overrides config and BOOKRAG_BASE_URL)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error, disabled")
	rootCmd.PersistentFlags().BoolVar(&verboseFlag, "verbose", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&ephemeralFlag, "ephemeral", false, "Use a throwaway session id for this run")
	rootCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Save the answer to a file")
	rootCmd.Flags().StringVarP(&fileFlag, "file", "f", "", "Read the question from a file")
	rootCmd.Flags().BoolVar(&rawFlag, "raw", false, "Print the answer as plain text while it streams")
	rootCmd.Flags().BoolP("version", "v", false, "Show version and exit")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(importCookiesCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(sessionCmd)
}
