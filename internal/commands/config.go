package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diogo/bookrag/internal/config"
	"github.com/diogo/bookrag/internal/render"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change settings",
	Long: `Show the effective configuration, including environment and flag
overrides. Use "config set" to change a value in ~/.bookrag/config.json.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := loadDependencies()
		if err != nil {
			return err
		}
		return runConfigShow(deps)
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := loadDependencies()
		if err != nil {
			return err
		}
		return runConfigSet(deps, args[0], args[1])
	},
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List the settings accepted by config set",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), strings.Join(config.Keys(), "\n"))
		return nil
	},
}

func init() {
	configShowCmd.RunE = configCmd.RunE
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configKeysCmd)
}

func runConfigShow(deps *Dependencies) error {
	data, err := json.MarshalIndent(deps.Config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	fmt.Fprintln(deps.Out, string(data))

	if path, err := config.GetConfigPath(); err == nil {
		fmt.Fprintf(deps.Out, "\nconfig:      %s\n", path)
	}
	if path, err := config.GetCredentialsPath(); err == nil {
		fmt.Fprintf(deps.Out, "credentials: %s\n", path)
	}
	if path, err := config.GetSessionPath(); err == nil {
		fmt.Fprintf(deps.Out, "session:     %s\n", path)
	}
	return nil
}

// runConfigSet edits the file-backed config, not the effective one, so
// environment overrides are never written to disk
func runConfigSet(deps *Dependencies, key, value string) error {
	cfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	if err := validateSetting(key, value); err != nil {
		return err
	}
	if err := cfg.Set(key, value); err != nil {
		return err
	}
	if err := config.SaveConfig(cfg); err != nil {
		return err
	}
	fmt.Fprintf(deps.Out, "%s = %s\n", key, value)
	return nil
}

// validateSetting checks values that name presentation resources
func validateSetting(key, value string) error {
	switch key {
	case "tui_theme":
		if _, ok := render.TUIThemeByName(value); !ok {
			return fmt.Errorf("unknown tui_theme %q (available: %s)", value, strings.Join(render.TUIThemeNames(), ", "))
		}
	case "markdown.style":
		if !render.ValidStyle(value) {
			return fmt.Errorf("unknown markdown.style %q (available: %s, or a path to a JSON style)", value, strings.Join(render.StyleNames(), ", "))
		}
	}
	return nil
}

// loadFileConfig is replaced in tests
var loadFileConfig = config.LoadFileConfig
