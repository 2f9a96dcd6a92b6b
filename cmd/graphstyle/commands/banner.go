package commands

import (
	"fmt"

	"github.com/pterm/pterm"

	"github.com/teranos/graphstyle/logger"
	"github.com/teranos/graphstyle/version"
)

// printStartupBanner prints the user-friendly startup message
func printStartupBanner(verbosity, port int, catalogPath, storage string) {
	info := version.Get()

	pterm.DefaultHeader.WithFullWidth().Println("graphstyle")
	pterm.DefaultSection.Println("Info")
	pterm.Printf("  Version:     %s (commit %s)\n", info.Version, info.Short())
	pterm.Printf("  Built:       %s\n", info.BuildTime)
	pterm.Printf("  Verbosity:   %s\n", logger.LevelName(verbosity))
	pterm.Printf("  Catalog:     %s\n", catalogPath)
	pterm.Printf("  Preferences: %s\n", storage)
	fmt.Println()
	pterm.Info.Printf("Style Map at http://localhost:%d/api/styles, live updates on ws://localhost:%d/ws\n", port, port)
	pterm.Info.Println("Press Ctrl+C to stop")
	fmt.Println()
}
