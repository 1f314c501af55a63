// main is the entry point of the mcping tool.
// It parses the configuration, sets up logging, and dispatches to the
// requested mode: a one-shot ping/status/query against each address, or
// the long-running monitor loop.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/mcping/internal/config"
	"github.com/woozymasta/mcping/internal/fake"
	"github.com/woozymasta/mcping/internal/geoip"
	"github.com/woozymasta/mcping/internal/logger"
	"github.com/woozymasta/mcping/internal/monitor"
	"github.com/woozymasta/mcping/internal/storage"
	"github.com/woozymasta/mcping/internal/vars"
)

func main() {
	cfg := config.Parse()
	logger.Setup(cfg.Logger)

	// data generation for development
	if cfg.Storage.GenerateCount > 0 {
		store := openStore(cfg)
		defer closeStore(store)

		fake.GenerateData(store, cfg.Storage.GenerateCount)
		return
	}

	if cfg.Args.Mode == config.ModeMonitor {
		runMonitor(cfg)
		return
	}

	if cfg.Args.Mode == config.ModeHistory {
		runHistory(cfg)
		return
	}

	failed := false
	for _, addr := range cfg.Args.Addresses {
		if err := runOnce(cfg, addr); err != nil {
			log.Error().Err(err).Str("address", addr).Msg("Request failed")
			if cfg.Args.Mode == config.ModeQuery {
				fmt.Fprintln(os.Stderr,
					"The server did not respond to the query protocol."+
						"\nPlease ensure that the server has enable-query turned on, and that the"+
						"\nnecessary port (same as server-port unless query-port is set) is open.")
			}
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

// runMonitor starts the polling loop and blocks until interrupted.
func runMonitor(cfg *config.Config) {
	log.Info().Str("version", vars.Version).Str("commit", vars.CommitShort()).Msg("Starting mcping monitor...")

	var geoDB *geoip.DB
	if cfg.GeoIP.Path != "" {
		if err := geoip.EnsureDB(cfg.GeoIP.Path, cfg.GeoIP.URL, cfg.GeoIP.Interval); err != nil {
			log.Error().Err(err).Msg("Failed to download GeoIP database")
		}

		db, err := geoip.Open(cfg.GeoIP.Path)
		if err != nil {
			log.Error().Err(err).Msg("Failed to open GeoIP database, country detection disabled")
		} else {
			geoDB = db
			defer func() {
				if err := geoDB.Close(); err != nil {
					log.Error().Err(err).Msg("Error closing GeoIP database")
				}
			}()
		}
	}

	store := openStore(cfg)
	defer closeStore(store)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := monitor.New(cfg, store, geoDB).Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("Monitor failed")
	}

	log.Info().Msg("Monitor stopped")
}

// runHistory prints the most recent stored samples for each address.
func runHistory(cfg *config.Config) {
	store := openStore(cfg)
	defer closeStore(store)

	for _, addr := range cfg.Args.Addresses {
		samples, err := store.LastSamples(addr, cfg.Storage.Last)
		if err != nil {
			log.Fatal().Err(err).Str("address", addr).Msg("Failed to read history")
		}

		fmt.Printf("%s (%d samples)\n", addr, len(samples))
		for _, s := range samples {
			when := s.PolledAt.Format(time.RFC3339)
			if !s.Reachable {
				fmt.Printf("  %s  unreachable: %s\n", when, s.Error)
				continue
			}
			fmt.Printf("  %s  %d/%d players  %dms  v%s\n",
				when, s.Online, s.Max, s.LatencyMS, s.Version)
		}
	}
}

func openStore(cfg *config.Config) *storage.Repository {
	store, err := storage.New(cfg.Storage.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	return store
}

func closeStore(store *storage.Repository) {
	if err := store.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing database")
	}
}
