// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"gorm.io/gorm/logger"

	"github.com/daybook-io/daybook/internal/config"
	"github.com/daybook-io/daybook/internal/database"
	"github.com/daybook-io/daybook/internal/journal"
	"github.com/daybook-io/daybook/internal/locking"
	"github.com/daybook-io/daybook/internal/parser"
	"github.com/daybook-io/daybook/internal/pipeline"
	"github.com/daybook-io/daybook/internal/server"
	"github.com/daybook-io/daybook/internal/store"
	"github.com/daybook-io/daybook/internal/tools"
	"github.com/daybook-io/daybook/pkg/scheduler"
)

// Version is set at build time via ldflags (e.g. goreleaser -X main.Version={{.Version}}).
var Version string

func main() {
	// CRITICAL: MCP servers must ONLY output JSON-RPC to stdout
	// Redirect all logging to stderr
	log.SetOutput(os.Stderr)

	configPath := flag.String("config", "", "Path to config file")
	dbType := flag.String("db-type", "", "Database type (sqlite or postgres)")
	dbPath := flag.String("db-path", "", "Database path (for sqlite)")
	dbDSN := flag.String("db-dsn", "", "Database DSN (for postgres)")
	parserMode := flag.String("parser-mode", "", "Parser mode (local, hybrid, or llm)")
	journalPath := flag.String("journal-path", "", "Journal export directory (overrides config)")
	noSweep := flag.Bool("no-sweep", false, "Disable the background session sweeper")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Daybook MCP Server\n\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Starts the capture pipeline as an MCP server over stdio.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  %s    API key for the assisted parser (hybrid/llm modes)\n", config.APIKeyEnvVar)
	}

	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Flag overrides
	if *dbType != "" {
		cfg.Database.Type = *dbType
	}
	if *dbPath != "" {
		cfg.Database.SQLitePath = *dbPath
	}
	if *dbDSN != "" {
		cfg.Database.PostgresDSN = *dbDSN
	}
	if *parserMode != "" {
		cfg.Parser.Mode = *parserMode
	}
	if *journalPath != "" {
		cfg.Journal.Enabled = true
		cfg.Journal.Path = *journalPath
	}

	db, err := database.Connect(&database.Config{
		Type:        cfg.Database.Type,
		SQLitePath:  cfg.Database.SQLitePath,
		PostgresDSN: cfg.Database.PostgresDSN,
		LogLevel:    logger.Silent,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db) //nolint:errcheck

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	if err := locking.MigrateLocks(db); err != nil {
		log.Fatalf("Failed to migrate locks: %v", err)
	}

	st := store.NewStore(db)
	p := pipeline.New(st, parser.NewSelector(cfg.Parser))
	toolCtx := tools.NewToolContext(st, p).WithLocker(locking.NewLocker(db))

	if cfg.Journal.Enabled {
		j, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			log.Fatalf("Failed to open journal at %s: %v", cfg.Journal.Path, err)
		}
		toolCtx.WithJournal(j)
		log.Printf("Journal export enabled at %s", cfg.Journal.Path)
	}

	if !*noSweep {
		sweeper := scheduler.NewScheduler(st, cfg.Scheduler)
		sweeper.Start()
		defer sweeper.Stop()
		log.Printf("Session sweeper running every %d minute(s)", cfg.Scheduler.SweepInterval)
	}

	log.Printf("Daybook MCP server starting (parser mode: %s, database: %s)",
		cfg.Parser.Mode, cfg.Database.Type)

	srv := server.NewMCPServer(toolCtx)
	if err := srv.ServeStdio(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// loadConfig loads from an explicit path when given, else the default
// location (~/.daybook/configs/config.json).
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromPath(path)
	}
	return config.Load()
}
