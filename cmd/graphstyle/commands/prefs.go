package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teranos/graphstyle/errors"
	"github.com/teranos/graphstyle/graph"
	"github.com/teranos/graphstyle/prefs"
)

// PrefsCmd manages the persisted edge overrides
var PrefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Show and edit persisted edge overrides",
	Long: `Show and edit the user's edge style overrides stored in the graphstyle
database. A running server picks up changes made here only on restart;
use the HTTP API to change a live server.

Examples:
  graphstyle prefs show
  graphstyle prefs set follows --line-color '#ff0000' --line-style dashed
  graphstyle prefs reset follows`,
}

var prefsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show all edge overrides",
	RunE:  runPrefsShow,
}

var prefsSetCmd = &cobra.Command{
	Use:   "set <edge-type>",
	Short: "Set override fields for an edge type",
	Long:  "Merge the given fields into the override for an edge type. Fields not given keep their current value.",
	Args:  cobra.ExactArgs(1),
	RunE:  runPrefsSet,
}

var prefsResetCmd = &cobra.Command{
	Use:   "reset <edge-type>",
	Short: "Remove the override for an edge type",
	Args:  cobra.ExactArgs(1),
	RunE:  runPrefsReset,
}

var prefsFormat string

func init() {
	prefsShowCmd.Flags().StringVar(&prefsFormat, "format", "table", "Output format: table, json, yaml")

	defineOverrideFlags(prefsSetCmd)

	PrefsCmd.AddCommand(prefsShowCmd)
	PrefsCmd.AddCommand(prefsSetCmd)
	PrefsCmd.AddCommand(prefsResetCmd)
}

// defineOverrideFlags adds one flag per override field
func defineOverrideFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("line-color", "", "Line color")
	f.Float64("line-thickness", 0, "Line thickness")
	f.String("line-style", "", "Line style: solid, dashed, dotted")
	f.String("source-arrow", "", "Source arrow head")
	f.String("target-arrow", "", "Target arrow head")
	f.String("label-color", "", "Label text color")
	f.Float64("label-background-opacity", 0, "Label background opacity (0..1)")
	f.String("label-border-color", "", "Label border color")
	f.String("label-border-style", "", "Label border style: solid, dashed, dotted")
	f.Float64("label-border-width", 0, "Label border width")
}

// withStore opens the persisted store, runs fn, then flushes
func withStore(fn func(*prefs.Store) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	database, err := openDatabase(cfg, "")
	if err != nil {
		return err
	}
	defer database.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := openStore(ctx, cfg, prefs.NewSQLiteStorage(database))
	if err != nil {
		return err
	}
	defer store.Close()

	if err := fn(store); err != nil {
		return err
	}
	return store.Flush(ctx)
}

func runPrefsShow(cmd *cobra.Command, args []string) error {
	return withStore(func(store *prefs.Store) error {
		snapshot := store.Snapshot()
		out := cmd.OutOrStdout()

		switch prefsFormat {
		case "json":
			data, err := json.MarshalIndent(snapshot, "", "  ")
			if err != nil {
				return errors.Wrap(err, "failed to marshal preferences to JSON")
			}
			fmt.Fprintln(out, string(data))
		case "yaml":
			data, err := yaml.Marshal(snapshot)
			if err != nil {
				return errors.Wrap(err, "failed to marshal preferences to YAML")
			}
			fmt.Fprint(out, string(data))
		case "table":
			if len(snapshot.Edges) == 0 {
				pterm.Info.Println("No edge overrides")
				return nil
			}
			rows := pterm.TableData{{"Edge type", "Overrides"}}
			for _, o := range snapshot.Edges {
				rows = append(rows, []string{o.Type, describeOverride(o)})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
		default:
			return errors.Newf("unsupported format: %s (supported: table, json, yaml)", prefsFormat)
		}
		return nil
	})
}

func runPrefsSet(cmd *cobra.Command, args []string) error {
	partial, err := overrideFromFlags(cmd)
	if err != nil {
		return err
	}
	return withStore(func(store *prefs.Store) error {
		merged, err := store.Upsert(args[0], partial)
		if err != nil {
			return err
		}
		pterm.Success.Printf("%s: %s\n", merged.Type, describeOverride(merged))
		return nil
	})
}

func runPrefsReset(cmd *cobra.Command, args []string) error {
	return withStore(func(store *prefs.Store) error {
		if _, ok := store.Get(args[0]); !ok {
			pterm.Info.Printf("No override for %s\n", args[0])
			return nil
		}
		store.Reset(args[0])
		pterm.Success.Printf("Removed override for %s\n", args[0])
		return nil
	})
}

// overrideFromFlags builds a partial override from the flags the user set
func overrideFromFlags(cmd *cobra.Command) (graph.EdgeOverride, error) {
	var o graph.EdgeOverride
	f := cmd.Flags()

	str := func(name string) *string {
		if !f.Changed(name) {
			return nil
		}
		v, _ := f.GetString(name)
		return &v
	}
	num := func(name string) *float64 {
		if !f.Changed(name) {
			return nil
		}
		v, _ := f.GetFloat64(name)
		return &v
	}

	o.LineColor = str("line-color")
	o.LineThickness = num("line-thickness")
	o.LabelColor = str("label-color")
	o.LabelBackgroundOpacity = num("label-background-opacity")
	o.LabelBorderColor = str("label-border-color")
	o.LabelBorderWidth = num("label-border-width")
	if v := str("line-style"); v != nil {
		s := graph.LineStyle(*v)
		o.LineStyle = &s
	}
	if v := str("label-border-style"); v != nil {
		s := graph.LineStyle(*v)
		o.LabelBorderStyle = &s
	}
	if v := str("source-arrow"); v != nil {
		a := graph.ArrowStyle(*v)
		o.SourceArrowStyle = &a
	}
	if v := str("target-arrow"); v != nil {
		a := graph.ArrowStyle(*v)
		o.TargetArrowStyle = &a
	}

	if o.IsEmpty() {
		return o, errors.WithHint(errors.New("no override fields given"), "see graphstyle prefs set --help")
	}
	return o, nil
}

func describeOverride(o graph.EdgeOverride) string {
	var parts []string
	add := func(name, value string) {
		parts = append(parts, name+"="+value)
	}
	num := func(v float64) string {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}

	if o.LineColor != nil {
		add("lineColor", *o.LineColor)
	}
	if o.LineThickness != nil {
		add("lineThickness", num(*o.LineThickness))
	}
	if o.LineStyle != nil {
		add("lineStyle", string(*o.LineStyle))
	}
	if o.SourceArrowStyle != nil {
		add("sourceArrow", string(*o.SourceArrowStyle))
	}
	if o.TargetArrowStyle != nil {
		add("targetArrow", string(*o.TargetArrowStyle))
	}
	if o.LabelColor != nil {
		add("labelColor", *o.LabelColor)
	}
	if o.LabelBackgroundOpacity != nil {
		add("labelBackgroundOpacity", num(*o.LabelBackgroundOpacity))
	}
	if o.LabelBorderColor != nil {
		add("labelBorderColor", *o.LabelBorderColor)
	}
	if o.LabelBorderStyle != nil {
		add("labelBorderStyle", string(*o.LabelBorderStyle))
	}
	if o.LabelBorderWidth != nil {
		add("labelBorderWidth", num(*o.LabelBorderWidth))
	}
	if len(parts) == 0 {
		return "(none)"
	}
	return strings.Join(parts, " ")
}
