package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teranos/graphstyle/catalog"
	"github.com/teranos/graphstyle/errors"
	"github.com/teranos/graphstyle/graph"
)

// CatalogCmd manages the type catalog file
var CatalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Create and inspect the type catalog",
	Long: `The type catalog declares the display styling of every vertex and edge
type. It is a TOML file (styles.catalog_path, default types.toml) that the
server watches for edits.`,
}

var catalogInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a starter catalog",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCatalogInit,
}

var catalogShowCmd = &cobra.Command{
	Use:   "show [path]",
	Short: "Validate and print the catalog",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCatalogShow,
}

var (
	catalogForce  bool
	catalogFormat string
	catalogType   string
)

func init() {
	catalogInitCmd.Flags().BoolVar(&catalogForce, "force", false, "Overwrite an existing catalog (the old file is kept as a backup)")
	catalogShowCmd.Flags().StringVar(&catalogFormat, "format", "toml", "Output format: toml, json, yaml")
	catalogShowCmd.Flags().StringVar(&catalogType, "type", "", "Print only this vertex or edge type")

	CatalogCmd.AddCommand(catalogInitCmd)
	CatalogCmd.AddCommand(catalogShowCmd)
}

func catalogPathArg(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	cfg, err := loadConfig()
	if err != nil {
		return "", err
	}
	return cfg.GetCatalogPath(), nil
}

func runCatalogInit(cmd *cobra.Command, args []string) error {
	path, err := catalogPathArg(args)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil && !catalogForce {
		return errors.WithHint(errors.Newf("%s already exists", path), "pass --force to replace it")
	}
	if err := catalog.WriteFile(path, catalog.Sample()); err != nil {
		return err
	}
	pterm.Success.Printf("Wrote starter catalog to %s\n", path)
	return nil
}

func runCatalogShow(cmd *cobra.Command, args []string) error {
	path, err := catalogPathArg(args)
	if err != nil {
		return err
	}
	cat, err := catalog.ReadFile(path)
	if err != nil {
		return err
	}
	if catalogType != "" {
		if cat, err = selectType(cat, catalogType); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	switch catalogFormat {
	case "toml":
		data, err := catalog.Marshal(cat)
		if err != nil {
			return err
		}
		fmt.Fprint(out, string(data))
	case "json":
		data, err := json.MarshalIndent(cat, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to marshal catalog to JSON")
		}
		fmt.Fprintln(out, string(data))
	case "yaml":
		data, err := yaml.Marshal(cat)
		if err != nil {
			return errors.Wrap(err, "failed to marshal catalog to YAML")
		}
		fmt.Fprint(out, string(data))
	default:
		return errors.Newf("unsupported format: %s (supported: toml, json, yaml)", catalogFormat)
	}
	return nil
}

// selectType narrows cat to the vertex or edge type typeID
func selectType(cat catalog.Catalog, typeID string) (catalog.Catalog, error) {
	if v, ok := cat.VertexType(typeID); ok {
		return catalog.Catalog{Vertices: []graph.VertexTypeConfig{v}}, nil
	}
	if e, ok := cat.EdgeType(typeID); ok {
		return catalog.Catalog{Edges: []graph.EdgeTypeConfig{e}}, nil
	}
	return catalog.Catalog{}, errors.WithHint(
		errors.NewNotFoundError("type %q is not in the catalog", typeID),
		"run graphstyle catalog show to list every type")
}
