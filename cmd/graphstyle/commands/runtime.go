package commands

import (
	"context"
	"database/sql"

	"github.com/teranos/graphstyle/am"
	"github.com/teranos/graphstyle/catalog"
	"github.com/teranos/graphstyle/db"
	"github.com/teranos/graphstyle/errors"
	"github.com/teranos/graphstyle/graph"
	"github.com/teranos/graphstyle/icon"
	"github.com/teranos/graphstyle/logger"
	"github.com/teranos/graphstyle/prefs"
	"github.com/teranos/graphstyle/style"
)

// ConfigPath is set by the root --config flag
var ConfigPath string

func loadConfig() (*am.Config, error) {
	if ConfigPath != "" {
		return am.LoadFromFile(ConfigPath)
	}
	cfg, err := am.Load()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}
	return cfg, nil
}

// openDatabase opens and migrates the preference database. An empty
// dbPath uses the configured one.
func openDatabase(cfg *am.Config, dbPath string) (*sql.DB, error) {
	if dbPath == "" {
		dbPath = cfg.GetDatabasePath()
	}
	database, err := db.OpenWithMigrations(dbPath, logger.ComponentLogger("db"))
	if err != nil {
		return nil, errors.WithHintf(
			errors.Wrapf(err, "failed to open database at %s", dbPath),
			"set database.path in am.toml or GRAPHSTYLE_DATABASE_PATH")
	}
	return database, nil
}

// openStore opens the preference store and waits for its initial load
func openStore(ctx context.Context, cfg *am.Config, storage prefs.Storage) (*prefs.Store, error) {
	store := prefs.NewStore(storage, cfg.GetStorageKey(), nil)
	if err := store.Load(ctx); err != nil {
		return nil, err
	}
	select {
	case <-store.Ready():
		return store, nil
	case <-ctx.Done():
		store.Close()
		return nil, ctx.Err()
	}
}

// openCatalog reads the type catalog. An empty path uses the configured one.
func openCatalog(cfg *am.Config, path string) (*catalog.FileSource, error) {
	if path == "" {
		path = cfg.GetCatalogPath()
	}
	src, err := catalog.NewFileSource(path, nil)
	if err != nil {
		return nil, errors.WithHint(err, "run `graphstyle catalog init` to create a starter catalog")
	}
	return src, nil
}

// newEngine builds the resolution engine from configuration
func newEngine(cfg *am.Config, cat catalog.Source, store *prefs.Store, registry *graph.EdgeRegistry) (*style.Engine, error) {
	icons, err := icon.NewRenderer(cfg.GetIconCacheSize(), nil)
	if err != nil {
		return nil, err
	}
	return style.NewEngine(style.EngineConfig{
		Catalog:           cat,
		Overrides:         store,
		Renderer:          icons,
		Lookup:            registry,
		Debounce:          cfg.GetDebounce(),
		RenderConcurrency: cfg.GetRenderConcurrency(),
		DefaultLabelColor: cfg.GetDefaultLabelColor(),
		Policy:            style.PublishPolicy(cfg.GetPublishPolicy()),
	})
}
