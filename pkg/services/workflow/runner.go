// Package workflow runs background jobs that append derived observations
// to the security metric history.
package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/de-tools/posture-atlas/pkg/models/domain"
	"github.com/de-tools/posture-atlas/pkg/services/metric"
	"github.com/de-tools/posture-atlas/pkg/services/posture"
	"github.com/rs/zerolog"
)

// Runner periodically records the open vulnerability and active incident
// counts as vulnerability_count and incident_count metrics.
type Runner struct {
	aggregator posture.Aggregator
	metrics    metric.Service
	interval   time.Duration
	done       chan struct{}
}

func NewRunner(aggregator posture.Aggregator, metrics metric.Service, interval time.Duration) *Runner {
	return &Runner{
		aggregator: aggregator,
		metrics:    metrics,
		interval:   interval,
		done:       make(chan struct{}),
	}
}

func (r *Runner) Done() <-chan struct{} {
	return r.done
}

// Run blocks until ctx is cancelled. Failed snapshots are logged and retried
// on the next tick.
func (r *Runner) Run(ctx context.Context) {
	logger := zerolog.Ctx(ctx).With().Str("job", "posture_snapshot").Logger()
	defer close(r.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	logger.Info().Dur("interval", r.interval).Msg("snapshot job started")
	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("snapshot job stopped")
			return
		case <-ticker.C:
			if err := r.Snapshot(ctx); err != nil {
				logger.Error().Err(err).Msg("failed to record posture snapshot")
			}
		}
	}
}

func (r *Runner) Snapshot(ctx context.Context) error {
	p, err := r.aggregator.Posture(ctx)
	if err != nil {
		return fmt.Errorf("compute posture: %w", err)
	}

	observations := []domain.SecurityMetric{
		{
			Type:        domain.MetricTypeVulnerabilityCount,
			Value:       float64(p.OpenVulnerabilities),
			Category:    "snapshot",
			Description: "open and in-progress vulnerabilities",
		},
		{
			Type:        domain.MetricTypeIncidentCount,
			Value:       float64(p.ActiveIncidents),
			Category:    "snapshot",
			Description: "incidents not yet resolved",
		},
	}
	for _, m := range observations {
		if _, err := r.metrics.Record(ctx, m); err != nil {
			return fmt.Errorf("record %s: %w", m.Type, err)
		}
	}
	return nil
}
