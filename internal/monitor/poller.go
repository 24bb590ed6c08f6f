package monitor

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"bizintel/internal/platform/metrics"
)

// Poller drives the service on a fixed interval. At most one sweep runs at a
// time: if a tick fires while the previous sweep is still going, the tick is
// dropped and counted, never queued.
type Poller struct {
	service  *Service
	interval time.Duration
	metrics  *metrics.Metrics
	logger   *slog.Logger

	running atomic.Bool
}

func NewPoller(service *Service, interval time.Duration, m *metrics.Metrics, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{service: service, interval: interval, metrics: m, logger: logger}
}

// Run sweeps once immediately to baseline, then on every tick until the
// context is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("change monitor started", "interval", p.interval.String())
	p.sweep(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("change monitor stopped")
			return ctx.Err()
		case <-ticker.C:
			p.sweep(ctx)
		}
	}
}

func (p *Poller) sweep(ctx context.Context) {
	if !p.running.CompareAndSwap(false, true) {
		if p.metrics != nil {
			p.metrics.SweepsSkipped.Inc()
		}
		p.logger.Warn("sweep still running, tick skipped")
		return
	}

	go func() {
		defer p.running.Store(false)
		result, err := p.service.Sweep(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Error("sweep failed", "error", err)
			return
		}
		if result.Changes > 0 {
			p.logger.Info("sweep completed",
				"observed", result.Observed,
				"changes", result.Changes,
				"alerts", result.Alerts,
				"new", result.NewRecords,
				"removed", result.Removed)
		}
	}()
}
