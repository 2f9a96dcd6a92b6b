package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/graphstyle/errors"
	"github.com/teranos/graphstyle/graph"
	"github.com/teranos/graphstyle/logger"
	"github.com/teranos/graphstyle/prefs"
	"github.com/teranos/graphstyle/server"
)

// ServeCmd starts the style publication server
var ServeCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"server"},
	Short:   "Start the style publication server",
	Long: `Resolve the type catalog and the persisted edge overrides into the Style
Map and publish it over HTTP and WebSocket. Edits to the catalog file and
preference changes made through the API are republished live.`,
	RunE: runServe,
}

var (
	serveDBPath      string
	serveCatalogPath string
	servePort        int
	serveEphemeral   bool
)

func init() {
	ServeCmd.Flags().StringVar(&serveDBPath, "db-path", "", "Custom database path (overrides config)")
	ServeCmd.Flags().StringVar(&serveCatalogPath, "catalog", "", "Type catalog file (overrides config)")
	ServeCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Listen port (overrides config)")
	ServeCmd.Flags().BoolVar(&serveEphemeral, "ephemeral", false, "Keep preferences in memory only")
}

func runServe(cmd *cobra.Command, args []string) error {
	verbosity, _ := cmd.Flags().GetCount("verbose")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	port := cfg.GetServerPort()
	if servePort != 0 {
		port = servePort
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var storage prefs.Storage
	storageDesc := "memory (ephemeral)"
	if serveEphemeral {
		storage = prefs.NewMemoryStorage()
	} else {
		database, err := openDatabase(cfg, serveDBPath)
		if err != nil {
			return err
		}
		defer database.Close()
		storage = prefs.NewSQLiteStorage(database)
		storageDesc = cfg.GetDatabasePath()
		if serveDBPath != "" {
			storageDesc = serveDBPath
		}
	}

	store := prefs.NewStore(storage, cfg.GetStorageKey(), nil)
	defer store.Close()
	if err := store.Load(ctx); err != nil {
		return err
	}

	cat, err := openCatalog(cfg, serveCatalogPath)
	if err != nil {
		return err
	}
	defer cat.Close()
	if err := cat.Watch(cfg.GetDebounce()); err != nil {
		return errors.Wrap(err, "failed to watch catalog")
	}

	registry := graph.NewEdgeRegistry()
	engine, err := newEngine(cfg, cat, store, registry)
	if err != nil {
		return err
	}

	srv, err := server.New(server.Config{
		Engine:             engine,
		Store:              store,
		Registry:           registry,
		AllowedOrigins:     cfg.GetServerAllowedOrigins(),
		MutationsPerSecond: cfg.GetMutationsPerSecond(),
	})
	if err != nil {
		return errors.Wrap(err, "failed to create server")
	}

	printStartupBanner(verbosity, port, cat.Path(), storageDesc)

	engineDone := make(chan error, 1)
	go func() {
		engineDone <- engine.Run(ctx)
	}()

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start(fmt.Sprintf(":%d", port))
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errChan:
		cancel()
		<-engineDone
		return errors.Wrap(err, "server failed to start")
	case <-sigChan:
		pterm.Info.Println("\nShutting down gracefully (press Ctrl+C again to force)...")

		shutdownDone := make(chan error, 1)
		go func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), server.ShutdownTimeout)
			defer stopCancel()
			err := srv.Stop(stopCtx)
			cancel()
			<-engineDone
			if flushErr := store.Flush(stopCtx); flushErr != nil && !errors.Is(flushErr, prefs.ErrClosed) {
				logger.ComponentLogger("serve").Warnw("Final preference flush failed", logger.FieldError, flushErr)
			}
			shutdownDone <- err
		}()

		select {
		case err := <-shutdownDone:
			if err != nil {
				return errors.Wrap(err, "shutdown error")
			}
			pterm.Success.Println("Server stopped cleanly")
			return nil
		case <-sigChan:
			pterm.Warning.Println("\nForce shutdown - exiting immediately")
			os.Exit(1)
			return nil
		}
	}
}
