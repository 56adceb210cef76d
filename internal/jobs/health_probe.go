package jobs

import (
	"context"
	"log"
	"time"

	"github.com/mahmoudBH/gestion-etudiant/internal/config"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type StatusReporter interface {
	SetServing(ok bool)
}

const probeTimeout = 5 * time.Second

// StartHealthProbeJob pings the store once immediately, then every
// HealthProbeInterval, until ctx is done.
func StartHealthProbeJob(ctx context.Context, cfg config.Config, store Pinger, reporter StatusReporter) {
	if store == nil || reporter == nil {
		log.Printf("health probe job disabled: store or reporter not configured")
		return
	}
	interval := cfg.HealthProbeInterval
	if interval <= 0 {
		interval = 15 * time.Second
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		healthy := probe(ctx, store, reporter, true)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				healthy = probe(ctx, store, reporter, healthy)
			}
		}
	}()
}

// probe reports the ping result and logs transitions only.
func probe(ctx context.Context, store Pinger, reporter StatusReporter, wasHealthy bool) bool {
	tickCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	err := store.Ping(tickCtx)
	cancel()

	healthy := err == nil
	reporter.SetServing(healthy)
	switch {
	case !healthy && wasHealthy:
		log.Printf("health probe: store unreachable: %v", err)
	case healthy && !wasHealthy:
		log.Printf("health probe: store reachable again")
	}
	return healthy
}
