package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"unicode"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// formatVersion adds 'v' prefix if version starts with a digit
func formatVersion(ver string) string {
	if len(ver) > 0 && unicode.IsDigit(rune(ver[0])) {
		return "v" + ver
	}
	return ver
}

// newRootCmd builds the command tree. Tests build a fresh tree per run.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "brewctl",
		Short: "Grainfather brewing appliance control over Bluetooth LE",
		Long: `Command-line client for the Grainfather brewing appliance:

- Send control commands (heat, pump, timers, target temperature, ...)
- Monitor live appliance state from its notification stream
- Upload mash recipes
- Record notification captures and decode them offline`,
		Version: formatVersion(version),
		// Silence Cobra's "Error:" prefix - main() prints clean errors
		SilenceErrors: true,
	}
	root.SetVersionTemplate(fmt.Sprintf("brewctl {{.Version}} (commit %s, built %s)\n", commit, date))

	root.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	root.PersistentFlags().Bool("verbose", false, "Debug logging; --log-level takes precedence")
	root.PersistentFlags().String("config", "", "YAML config file")
	root.PersistentFlags().String("adapter", "", "BLE adapter: goble or tinygo (overrides config)")
	root.Flags().BoolP("version", "v", false, "Show version information")

	root.AddCommand(
		newSendCmd(),
		newMonitorCmd(),
		newRecipeCmd(),
		newConsoleCmd(),
		newDecodeCmd(),
		newCommandsCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// Ctrl+C is a normal exit, not an error - exit silently
		if errors.Is(err, context.Canceled) {
			return
		}
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", FormatUserError(err))
		os.Exit(1)
	}
}
