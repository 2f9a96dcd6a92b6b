package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/graphstyle/cmd/graphstyle/commands"
	"github.com/teranos/graphstyle/errors"
	"github.com/teranos/graphstyle/logger"
)

var rootCmd = &cobra.Command{
	Use:   "graphstyle",
	Short: "graphstyle - style resolution for the graph view",
	Long: `graphstyle resolves the type catalog and the user's edge overrides into
the Style Map consumed by the graph view, and publishes it live.

Available commands:
  serve   - Start the style publication server
  styles  - Resolve the Style Map once and print it
  prefs   - Show and edit persisted edge overrides
  catalog - Create and inspect the type catalog
  am      - Show graphstyle configuration
  version - Show version information

Examples:
  graphstyle catalog init          # Write a starter types.toml
  graphstyle serve                 # Start the server
  graphstyle prefs set follows --color '#ff0000'
  graphstyle styles --format yaml  # Print the resolved stylesheet`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonLogs, _ := cmd.Flags().GetBool("json-logs")
		if err := logger.Initialize(jsonLogs, verbosity); err != nil {
			return errors.Wrap(err, "failed to initialize logger")
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	rootCmd.PersistentFlags().Bool("json-logs", false, "Emit logs as JSON")
	rootCmd.PersistentFlags().StringVar(&commands.ConfigPath, "config", "", "Config file (default: am.toml cascade)")

	rootCmd.AddCommand(commands.ServeCmd)
	rootCmd.AddCommand(commands.StylesCmd)
	rootCmd.AddCommand(commands.PrefsCmd)
	rootCmd.AddCommand(commands.CatalogCmd)
	rootCmd.AddCommand(commands.AmCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	err := rootCmd.Execute()
	logger.Cleanup()
	if err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

// printError writes err and every hint attached to it. Assertion failures
// are bugs, so they carry their stack for the report.
func printError(w io.Writer, err error) {
	if errors.IsAssertionFailure(err) {
		fmt.Fprintf(w, "internal error: %+v\n", err)
	} else {
		fmt.Fprintln(w, err)
	}
	for _, hint := range errors.GetAllHints(err) {
		fmt.Fprintf(w, "hint: %s\n", hint)
	}
}
