package cli

import (
	"errors"
	"strconv"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Inspect and change configuration",
}

var settingsGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsGet,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Long: `Sets a configuration value and persists it immediately. Values that
parse as integers, floats or booleans are stored typed; everything else
is stored as a string.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	RunE:  runSettingsPath,
}

func init() {
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsPathCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsGet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	val, ok := configStore.Get(args[0])
	if !ok {
		cmd.Printf("%s is not set\n", args[0])
		return nil
	}
	cmd.Printf("%v\n", val)
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	key, raw := args[0], args[1]
	var value any = raw
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		value = i
	} else if f, err := strconv.ParseFloat(raw, 64); err == nil {
		value = f
	} else if b, err := strconv.ParseBool(raw); err == nil {
		value = b
	}

	if err := configStore.Set(key, value); err != nil {
		return err
	}
	cmd.Printf("%s = %v\n", key, value)
	return nil
}

func runSettingsPath(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}
	cmd.Println(configStore.Path())
	return nil
}
