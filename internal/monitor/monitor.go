// Package monitor polls a set of Minecraft servers on an interval, records
// every sample in the history database, and optionally annotates samples
// with the server country.
package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/woozymasta/mcping/internal/config"
	"github.com/woozymasta/mcping/internal/geoip"
	"github.com/woozymasta/mcping/internal/models"
	"github.com/woozymasta/mcping/internal/storage"
	"github.com/woozymasta/mcping/pkg/address"
	"github.com/woozymasta/mcping/pkg/mcping"
)

// Monitor is the polling loop state.
type Monitor struct {
	cfg     *config.Config
	store   *storage.Repository
	geo     *geoip.DB // nil when country lookup is disabled
	lookup  *address.Lookup
	limiter *rate.Limiter
}

// New assembles a monitor. geo may be nil.
func New(cfg *config.Config, store *storage.Repository, geo *geoip.DB) *Monitor {
	return &Monitor{
		cfg:     cfg,
		store:   store,
		geo:     geo,
		lookup:  address.NewLookup(cfg.Query.Timeout),
		limiter: rate.NewLimiter(rate.Limit(cfg.Monitor.Rate), 1),
	}
}

// Run prunes old history, then polls all configured addresses once per
// interval until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	cutoff := time.Now().Add(-m.cfg.Monitor.Retention)
	if pruned, err := m.store.PruneBefore(cutoff); err != nil {
		log.Error().Err(err).Msg("Failed to prune old samples")
	} else if pruned > 0 {
		log.Info().Int64("pruned", pruned).Msg("Dropped samples past retention")
	}

	if count, err := m.store.CountSamples(); err == nil {
		log.Info().
			Int64("samples", count).
			Int("servers", len(m.cfg.Args.Addresses)).
			Dur("interval", m.cfg.Monitor.Interval).
			Msg("Monitor started")
	}

	ticker := time.NewTicker(m.cfg.Monitor.Interval)
	defer ticker.Stop()

	for {
		m.runCycle(ctx)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// runCycle polls every address once through a bounded worker pool, paced by
// the shared rate limiter.
func (m *Monitor) runCycle(ctx context.Context) {
	workers := m.cfg.Monitor.Workers
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan string, len(m.cfg.Args.Addresses))
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for addr := range jobs {
				if err := m.limiter.Wait(ctx); err != nil {
					return
				}
				m.pollOne(ctx, addr)
			}
		}()
	}

	for _, addr := range m.cfg.Args.Addresses {
		jobs <- addr
	}
	close(jobs)

	wg.Wait()
}

// pollOne queries one server and stores the outcome, reachable or not.
func (m *Monitor) pollOne(ctx context.Context, addr string) {
	logCtx := log.With().Str("address", addr).Logger()

	sample := m.poll(ctx, addr)
	if sample.Reachable {
		logCtx.Debug().
			Int("online", sample.Online).
			Int64("latency_ms", sample.LatencyMS).
			Msg("Server polled")
	} else {
		logCtx.Debug().Str("error", sample.Error).Msg("Server unreachable")
	}

	if err := m.store.InsertSample(sample); err != nil {
		logCtx.Error().Err(err).Msg("Failed to store sample")
	}
}

func (m *Monitor) poll(ctx context.Context, addr string) models.Sample {
	sample := models.Sample{
		PolledAt: time.Now(),
		Address:  addr,
		Edition:  models.EditionJava,
	}

	if m.cfg.Monitor.Bedrock {
		sample.Edition = models.EditionBedrock

		server, err := mcping.LookupBedrock(addr)
		if err != nil {
			sample.Error = err.Error()
			return sample
		}
		server.Timeout = m.cfg.Query.Timeout

		result, err := server.StatusContext(ctx)
		if err != nil {
			sample.Error = err.Error()
			return sample
		}

		sample.Reachable = true
		sample.Online = result.Players.Online
		sample.Max = result.Players.Max
		sample.Version = result.Version.Name
		sample.MOTD = result.MOTD
		sample.LatencyMS = result.Latency.Milliseconds()
		sample.Country = m.country(ctx, server.Addr.Host)
		return sample
	}

	server, err := mcping.LookupJavaContext(ctx, addr)
	if err != nil {
		sample.Error = err.Error()
		return sample
	}
	server.Timeout = m.cfg.Query.Timeout
	server.Version = m.cfg.Query.Protocol

	result, err := server.StatusContext(ctx)
	if err != nil {
		sample.Error = err.Error()
		return sample
	}

	sample.Reachable = true
	sample.Online = result.Players.Online
	sample.Max = result.Players.Max
	sample.Version = result.Version.Name
	sample.MOTD = result.MOTD
	sample.LatencyMS = result.Latency.Milliseconds()
	sample.Country = m.country(ctx, server.Addr.Host)
	return sample
}

// country resolves the host to its A record and looks the IP up in the
// GeoIP database. Empty when lookup is disabled or inconclusive.
func (m *Monitor) country(ctx context.Context, host string) string {
	if m.geo == nil {
		return ""
	}
	return m.geo.Country(m.lookup.QueryIP(ctx, host))
}
