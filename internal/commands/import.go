package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/diogo/bookrag/internal/browser"
	"github.com/diogo/bookrag/internal/config"
)

var (
	importBrowserFlag string
	listBrowsersFlag  bool
)

// Replaced in tests
var (
	extractCredentials = browser.ExtractCredentials
	listBrowsers       = browser.ListAvailableBrowsers
)

var importCookiesCmd = &cobra.Command{
	Use:   "import-cookies [path]",
	Short: "Import the login cookies",
	Long: `Import the csrf_token and session cookies issued by the BookRAG web
interface.

Either pass a JSON file containing:
1. A list of objects: [{"name": "csrf_token", "value": "..."}]
2. A simple dictionary: {"csrf_token": "...", "session": "..."}

or use --browser to read the cookies for the configured base_url from an
installed browser (chrome, chromium, firefox, edge, opera, or auto).

Required cookie: csrf_token
Optional cookie: session`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if listBrowsersFlag {
			return runListBrowsers(cmd.OutOrStdout())
		}
		deps, err := loadDependencies()
		if err != nil {
			return err
		}
		path := ""
		if len(args) > 0 {
			path = args[0]
		}
		return runImportCookies(cmd.Context(), deps, path, importBrowserFlag)
	},
}

func init() {
	importCookiesCmd.Flags().BoolVar(&listBrowsersFlag, "list-browsers", false, "List browsers with a readable cookie store")
	importCookiesCmd.Flags().StringVarP(&importBrowserFlag, "browser", "b", "", "Read cookies from a browser instead of a file")
}

func runImportCookies(ctx context.Context, deps *Dependencies, sourcePath, browserName string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	switch {
	case sourcePath != "" && browserName != "":
		return fmt.Errorf("pass either a file path or --browser, not both")
	case sourcePath != "":
		if _, err := config.ImportCredentials(sourcePath); err != nil {
			return fmt.Errorf("failed to import cookies: %w", err)
		}
	case browserName != "":
		target, err := browser.ParseBrowser(browserName)
		if err != nil {
			return err
		}
		result, err := extractCredentials(ctx, target, deps.Config.BaseURL)
		if err != nil {
			return fmt.Errorf("failed to extract cookies: %w", err)
		}
		if err := config.SaveCredentials(result.Credentials); err != nil {
			return fmt.Errorf("failed to save cookies: %w", err)
		}
		deps.Log.Info().Str("browser", result.BrowserName).Str("host", result.Host).Msg("cookies extracted")
	default:
		return fmt.Errorf("pass a cookie file path or --browser")
	}

	credsPath, _ := config.GetCredentialsPath()
	fmt.Fprintf(deps.Out, "Cookies imported successfully to %s\n", credsPath)
	return nil
}

func runListBrowsers(out io.Writer) error {
	names := listBrowsers()
	if len(names) == 0 {
		fmt.Fprintln(out, "No browser cookie stores found.")
		return nil
	}
	for _, name := range names {
		fmt.Fprintln(out, name)
	}
	return nil
}
