package metric

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/de-tools/posture-atlas/pkg/models/domain"
	"github.com/de-tools/posture-atlas/pkg/store/duckdb/metric"
	"github.com/rs/zerolog"
)

type Service interface {
	Record(ctx context.Context, m domain.SecurityMetric) (*domain.SecurityMetric, error)
	List(ctx context.Context, filter domain.MetricFilter) ([]domain.SecurityMetric, error)
}

type service struct {
	store metric.Store
	now   func() time.Time
}

func NewService(store metric.Store) Service {
	return &service{
		store: store,
		now:   time.Now,
	}
}

// Record appends an observation. A zero RecordedAt means now.
func (s *service) Record(ctx context.Context, m domain.SecurityMetric) (*domain.SecurityMetric, error) {
	if math.IsNaN(m.Value) || math.IsInf(m.Value, 0) {
		return nil, fmt.Errorf("%w: metric value must be finite", domain.ErrInvalidValue)
	}

	now := s.now().UTC()
	if m.RecordedAt.IsZero() {
		m.RecordedAt = now
	}
	m.RecordedAt = m.RecordedAt.UTC()
	m.CreatedAt = now

	if err := s.store.Create(ctx, &m); err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Debug().
		Str("metric_type", string(m.Type)).
		Float64("value", m.Value).
		Time("recorded_at", m.RecordedAt).
		Msg("metric recorded")

	return &m, nil
}

func (s *service) List(ctx context.Context, filter domain.MetricFilter) ([]domain.SecurityMetric, error) {
	if filter.Limit < 0 || filter.Limit > domain.MaxPageLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", domain.ErrInvalidValue, domain.MaxPageLimit)
	}
	if filter.Limit == 0 {
		filter.Limit = domain.DefaultPageLimit
	}
	return s.store.List(ctx, filter)
}
