package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage settings",
	Long: `View and change reposcope settings.

Settings are stored in config.toml inside the config directory. A running
viewer picks up changes immediately.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Example: `  reposcope config set viewer.theme light
  reposcope config set viewer.max_file_size 5000000`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Restore a setting's default",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigUnset,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	r, err := loadRuntime()
	if err != nil {
		return err
	}
	if r.Settings == nil {
		return errors.New("settings service not configured")
	}

	values, err := r.Settings.Values()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	keys := r.Settings.Keys()
	sort.Strings(keys)
	width := 0
	for _, k := range keys {
		width = max(width, len(k))
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	for _, k := range keys {
		v := values[k]
		if v == "" {
			v = "(not set)"
		}
		cmd.Printf("  %-*s  %s\n", width, k, v)
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	r, err := loadRuntime()
	if err != nil {
		return err
	}
	if r.Settings == nil {
		return errors.New("settings service not configured")
	}
	if err := r.Settings.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("setting %s: %w", args[0], err)
	}
	cmd.Printf("✓ %s updated\n", args[0])
	return nil
}

func runConfigUnset(cmd *cobra.Command, args []string) error {
	r, err := loadRuntime()
	if err != nil {
		return err
	}
	if r.Settings == nil {
		return errors.New("settings service not configured")
	}
	if err := r.Settings.Reset(args[0]); err != nil {
		return fmt.Errorf("resetting %s: %w", args[0], err)
	}
	cmd.Printf("✓ %s reset to default\n", args[0])
	return nil
}
