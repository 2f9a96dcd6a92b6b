package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teranos/graphstyle/errors"
	"github.com/teranos/graphstyle/graph"
	"github.com/teranos/graphstyle/prefs"
)

// StylesCmd resolves the Style Map once and prints it
var StylesCmd = &cobra.Command{
	Use:   "styles",
	Short: "Resolve the Style Map once and print it",
	Long: `Resolve the type catalog and the persisted edge overrides into a Style
Map and print it as a stylesheet. Deferred edge labels are printed as
markers, since no live graph is attached.`,
	RunE: runStyles,
}

var (
	stylesFormat      string
	stylesCatalogPath string
	stylesNoPrefs     bool
	stylesTimeout     time.Duration
)

func init() {
	StylesCmd.Flags().StringVar(&stylesFormat, "format", "json", "Output format: json, yaml")
	StylesCmd.Flags().StringVar(&stylesCatalogPath, "catalog", "", "Type catalog file (overrides config)")
	StylesCmd.Flags().BoolVar(&stylesNoPrefs, "no-prefs", false, "Ignore persisted edge overrides")
	StylesCmd.Flags().DurationVar(&stylesTimeout, "timeout", 30*time.Second, "Resolution timeout")
}

func runStyles(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), stylesTimeout)
	defer cancel()

	var storage prefs.Storage = prefs.NewMemoryStorage()
	if !stylesNoPrefs {
		database, err := openDatabase(cfg, "")
		if err != nil {
			return err
		}
		defer database.Close()
		storage = prefs.NewSQLiteStorage(database)
	}
	store, err := openStore(ctx, cfg, storage)
	if err != nil {
		return err
	}
	defer store.Close()

	cat, err := openCatalog(cfg, stylesCatalogPath)
	if err != nil {
		return err
	}

	engine, err := newEngine(cfg, cat, store, graph.NewEdgeRegistry())
	if err != nil {
		return err
	}
	m, err := engine.Resolve(ctx, cat.Current(), store.Overrides())
	if err != nil {
		return errors.Wrap(err, "failed to resolve styles")
	}

	switch stylesFormat {
	case "json":
		data, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to marshal styles to JSON")
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
	case "yaml":
		data, err := yaml.Marshal(m)
		if err != nil {
			return errors.Wrap(err, "failed to marshal styles to YAML")
		}
		fmt.Fprint(cmd.OutOrStdout(), string(data))
	default:
		return errors.Newf("unsupported format: %s (supported: json, yaml)", stylesFormat)
	}
	return nil
}
