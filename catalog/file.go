package catalog

import (
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/teranos/graphstyle/am"
	"github.com/teranos/graphstyle/errors"
	"github.com/teranos/graphstyle/graph"
	"github.com/teranos/graphstyle/internal/notify"
	"github.com/teranos/graphstyle/internal/util"
	"github.com/teranos/graphstyle/logger"
)

// catalogFile is the on-disk layout: [[vertex]] and [[edge]] tables.
// Pointer fields distinguish "absent, use the default" from zero.
type catalogFile struct {
	Vertices []vertexEntry `mapstructure:"vertex" toml:"vertex"`
	Edges    []edgeEntry   `mapstructure:"edge" toml:"edge"`
}

type vertexEntry struct {
	Type              string   `mapstructure:"type" toml:"type"`
	Color             *string  `mapstructure:"color" toml:"color,omitempty"`
	BackgroundOpacity *float64 `mapstructure:"background_opacity" toml:"background_opacity,omitempty"`
	BorderColor       *string  `mapstructure:"border_color" toml:"border_color,omitempty"`
	BorderWidth       *float64 `mapstructure:"border_width" toml:"border_width,omitempty"`
	BorderStyle       *string  `mapstructure:"border_style" toml:"border_style,omitempty"`
	Shape             *string  `mapstructure:"shape" toml:"shape,omitempty"`
}

type edgeEntry struct {
	Type                   string   `mapstructure:"type" toml:"type"`
	DisplayLabel           *string  `mapstructure:"display_label" toml:"display_label,omitempty"`
	LineColor              *string  `mapstructure:"line_color" toml:"line_color,omitempty"`
	LineStyle              *string  `mapstructure:"line_style" toml:"line_style,omitempty"`
	LineThickness          *float64 `mapstructure:"line_thickness" toml:"line_thickness,omitempty"`
	SourceArrowStyle       *string  `mapstructure:"source_arrow_style" toml:"source_arrow_style,omitempty"`
	TargetArrowStyle       *string  `mapstructure:"target_arrow_style" toml:"target_arrow_style,omitempty"`
	LabelColor             *string  `mapstructure:"label_color" toml:"label_color,omitempty"`
	LabelBackgroundOpacity *float64 `mapstructure:"label_background_opacity" toml:"label_background_opacity,omitempty"`
	LabelBorderWidth       *float64 `mapstructure:"label_border_width" toml:"label_border_width,omitempty"`
	LabelBorderColor       *string  `mapstructure:"label_border_color" toml:"label_border_color,omitempty"`
	LabelBorderStyle       *string  `mapstructure:"label_border_style" toml:"label_border_style,omitempty"`
}

func (e vertexEntry) config() graph.VertexTypeConfig {
	c := graph.DefaultVertexTypeConfig(e.Type)
	util.Assign(&c.Color, e.Color)
	util.Assign(&c.BackgroundOpacity, e.BackgroundOpacity)
	util.Assign(&c.BorderColor, e.BorderColor)
	util.Assign(&c.BorderWidth, e.BorderWidth)
	setAs(&c.BorderStyle, e.BorderStyle)
	setAs(&c.Shape, e.Shape)
	return c
}

func (e edgeEntry) config() graph.EdgeTypeConfig {
	c := graph.DefaultEdgeTypeConfig(e.Type)
	util.Assign(&c.DisplayLabel, e.DisplayLabel)
	util.Assign(&c.LineColor, e.LineColor)
	setAs(&c.LineStyle, e.LineStyle)
	util.Assign(&c.LineThickness, e.LineThickness)
	setAs(&c.SourceArrowStyle, e.SourceArrowStyle)
	setAs(&c.TargetArrowStyle, e.TargetArrowStyle)
	util.Assign(&c.LabelColor, e.LabelColor)
	util.Assign(&c.LabelBackgroundOpacity, e.LabelBackgroundOpacity)
	util.Assign(&c.LabelBorderWidth, e.LabelBorderWidth)
	util.Assign(&c.LabelBorderColor, e.LabelBorderColor)
	setAs(&c.LabelBorderStyle, e.LabelBorderStyle)
	return c
}

func setAs[T ~string](dst *T, src *string) {
	if src != nil {
		*dst = T(*src)
	}
}

func toFile(cat Catalog) catalogFile {
	f := catalogFile{}
	for _, v := range cat.Vertices {
		f.Vertices = append(f.Vertices, vertexEntry{
			Type:              v.Type,
			Color:             util.Ptr(v.Color),
			BackgroundOpacity: util.Ptr(v.BackgroundOpacity),
			BorderColor:       util.Ptr(v.BorderColor),
			BorderWidth:       util.Ptr(v.BorderWidth),
			BorderStyle:       util.Ptr(string(v.BorderStyle)),
			Shape:             util.Ptr(string(v.Shape)),
		})
	}
	for _, e := range cat.Edges {
		entry := edgeEntry{
			Type:                   e.Type,
			LineColor:              util.Ptr(e.LineColor),
			LineStyle:              util.Ptr(string(e.LineStyle)),
			LineThickness:          util.Ptr(e.LineThickness),
			SourceArrowStyle:       util.Ptr(string(e.SourceArrowStyle)),
			TargetArrowStyle:       util.Ptr(string(e.TargetArrowStyle)),
			LabelColor:             util.Ptr(e.LabelColor),
			LabelBackgroundOpacity: util.Ptr(e.LabelBackgroundOpacity),
			LabelBorderWidth:       util.Ptr(e.LabelBorderWidth),
			LabelBorderColor:       util.Ptr(e.LabelBorderColor),
			LabelBorderStyle:       util.Ptr(string(e.LabelBorderStyle)),
		}
		if e.DisplayLabel != "" {
			entry.DisplayLabel = util.Ptr(e.DisplayLabel)
		}
		f.Edges = append(f.Edges, entry)
	}
	return f
}

// ReadFile parses and validates a TOML catalog. Fields a table omits take
// the type defaults.
func ReadFile(path string) (Catalog, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Catalog{}, errors.WithHint(
			errors.NewNotFoundError("catalog file %s", path),
			"run 'graphstyle catalog init' to create one")
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return Catalog{}, errors.Wrapf(err, "failed to read catalog %s", path)
	}

	var f catalogFile
	if err := v.Unmarshal(&f); err != nil {
		return Catalog{}, errors.Wrapf(err, "failed to decode catalog %s", path)
	}

	cat := Catalog{}
	for _, e := range f.Vertices {
		cat.Vertices = append(cat.Vertices, e.config())
	}
	for _, e := range f.Edges {
		cat.Edges = append(cat.Edges, e.config())
	}

	if err := cat.Validate(); err != nil {
		return Catalog{}, errors.Wrapf(err, "invalid catalog %s", path)
	}
	return cat, nil
}

// Marshal encodes cat in the catalog file layout
func Marshal(cat Catalog) ([]byte, error) {
	data, err := toml.Marshal(toFile(cat))
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode catalog")
	}
	return data, nil
}

// WriteFile validates cat and writes it to path, keeping rotated backups
// of the previous file. The write is a rename so watchers see one event.
func WriteFile(path string, cat Catalog) error {
	if err := cat.Validate(); err != nil {
		return err
	}

	data, err := Marshal(cat)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), am.DefaultDirPermissions); err != nil {
		return errors.Wrapf(err, "failed to create directory for %s", path)
	}
	if err := am.RotateBackups(path); err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, am.DefaultFilePermissions); err != nil {
		return errors.Wrapf(err, "failed to write %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errors.Wrapf(err, "failed to replace %s", path)
	}
	return nil
}

// FileSource is a Source backed by a TOML file. After Watch, edits to the
// file are re-read and published; an invalid edit is logged and the previous
// catalog stays current.
type FileSource struct {
	path    string
	logger  *zap.SugaredLogger
	mu      sync.RWMutex
	current Catalog
	subs    notify.Subscribers[Catalog]
	watcher *am.Watcher
}

// NewFileSource reads path once. The file must exist and be valid.
func NewFileSource(path string, log *zap.SugaredLogger) (*FileSource, error) {
	if log == nil {
		log = logger.ComponentLogger("catalog.file")
	}

	cat, err := ReadFile(path)
	if err != nil {
		return nil, err
	}

	log.Infow("Catalog loaded",
		logger.FieldFile, path,
		"vertex_types", len(cat.Vertices),
		"edge_types", len(cat.Edges))

	return &FileSource{path: path, logger: log, current: cat}, nil
}

// Path returns the catalog file path
func (s *FileSource) Path() string {
	return s.path
}

// Current returns the current catalog
func (s *FileSource) Current() Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// Subscribe registers fn for future versions
func (s *FileSource) Subscribe(fn func(Catalog)) func() {
	return s.subs.Add(fn)
}

// Reload re-reads the file and publishes it if it changed
func (s *FileSource) Reload() error {
	cat, err := ReadFile(s.path)
	if err != nil {
		return err
	}
	s.publish(cat)
	return nil
}

// Save writes cat to the file and publishes it immediately
func (s *FileSource) Save(cat Catalog) error {
	if s.watcher != nil {
		s.watcher.MarkOwnWrite()
	}
	if err := WriteFile(s.path, cat); err != nil {
		return err
	}
	s.publish(cat)
	return nil
}

func (s *FileSource) publish(cat Catalog) {
	s.mu.Lock()
	if reflect.DeepEqual(s.current, cat) {
		s.mu.Unlock()
		s.logger.Debugw("Catalog unchanged, not publishing", logger.FieldFile, s.path)
		return
	}
	s.current = cat.Clone()
	s.mu.Unlock()

	s.logger.Infow("Catalog updated",
		logger.FieldFile, s.path,
		"vertex_types", len(cat.Vertices),
		"edge_types", len(cat.Edges))
	s.subs.Notify(cat.Clone())
}

// Watch starts following edits to the file. A debounce of 0 uses the
// watcher default.
func (s *FileSource) Watch(debounce time.Duration) error {
	w, err := am.NewWatcher(s.path, debounce, s.logger)
	if err != nil {
		return err
	}
	w.OnChange(func(string) {
		if err := s.Reload(); err != nil {
			s.logger.Warnw("Catalog reload failed, keeping previous catalog",
				logger.FieldFile, s.path,
				logger.FieldError, err)
		}
	})

	s.mu.Lock()
	s.watcher = w
	s.mu.Unlock()

	w.Start()
	return nil
}

// Close stops watching
func (s *FileSource) Close() error {
	s.mu.Lock()
	w := s.watcher
	s.watcher = nil
	s.mu.Unlock()

	if w == nil {
		return nil
	}
	return w.Stop()
}
