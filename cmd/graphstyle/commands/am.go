package commands

import (
	"encoding/json"
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teranos/graphstyle/am"
	"github.com/teranos/graphstyle/errors"
)

// AmCmd shows the graphstyle configuration
var AmCmd = &cobra.Command{
	Use:   "am",
	Short: "Show graphstyle configuration",
	Long: `Display graphstyle configuration.

Configuration sources (in order of precedence):
1. Command line flags
2. Environment variables (GRAPHSTYLE_* prefix)
3. Project config (./am.toml)
4. User config (~/.graphstyle/am.toml)
5. System config (/etc/graphstyle/am.toml)
6. Default values`,
}

var amShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runAmShow,
}

var amWhereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show which config file is in effect",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ConfigPath
		if path == "" {
			path = am.ActiveConfigFile()
		}
		if path == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "No config file found, using defaults and environment")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var amFormat string

func init() {
	amShowCmd.Flags().StringVar(&amFormat, "format", "toml", "Output format: toml, json, yaml")

	AmCmd.AddCommand(amShowCmd)
	AmCmd.AddCommand(amWhereCmd)
}

func runAmShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch amFormat {
	case "json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to JSON")
		}
		fmt.Fprintln(out, string(data))
	case "yaml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to YAML")
		}
		fmt.Fprintf(out, "# graphstyle configuration\n%s", string(data))
	case "toml":
		data, err := toml.Marshal(cfg)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to TOML")
		}
		fmt.Fprintf(out, "# graphstyle configuration\n%s", string(data))
	default:
		return errors.Newf("unsupported format: %s (supported: toml, json, yaml)", amFormat)
	}
	return nil
}
