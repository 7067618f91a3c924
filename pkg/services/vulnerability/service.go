package vulnerability

import (
	"context"
	"fmt"
	"time"

	"github.com/de-tools/posture-atlas/pkg/models/domain"
	"github.com/de-tools/posture-atlas/pkg/store/duckdb"
	"github.com/de-tools/posture-atlas/pkg/store/duckdb/vulnerability"
	"github.com/rs/zerolog"
)

type Service interface {
	List(ctx context.Context, filter domain.VulnerabilityFilter) ([]domain.Vulnerability, error)
	Get(ctx context.Context, id int64) (*domain.Vulnerability, error)
	Create(ctx context.Context, v domain.Vulnerability) (*domain.Vulnerability, error)
	Update(ctx context.Context, id int64, upd domain.VulnerabilityUpdate) (*domain.Vulnerability, error)
	Delete(ctx context.Context, id int64) error
}

type service struct {
	store vulnerability.Store
	tx    duckdb.Transactor
	sla   domain.SLASettings
	now   func() time.Time
}

func NewService(store vulnerability.Store, tx duckdb.Transactor, sla domain.SLASettings) Service {
	return &service{
		store: store,
		tx:    tx,
		sla:   sla,
		now:   time.Now,
	}
}

func (s *service) List(ctx context.Context, filter domain.VulnerabilityFilter) ([]domain.Vulnerability, error) {
	if err := filter.Page.Validate(); err != nil {
		return nil, err
	}
	return s.store.List(ctx, filter)
}

func (s *service) Get(ctx context.Context, id int64) (*domain.Vulnerability, error) {
	return s.store.Get(ctx, id)
}

// Create opens a new finding. Status, discovery time and the SLA deadline are
// always set here; the deadline is skipped when the severity has no SLA.
func (s *service) Create(ctx context.Context, v domain.Vulnerability) (*domain.Vulnerability, error) {
	now := s.now().UTC()
	v.Status = domain.VulnerabilityStatusOpen
	v.DiscoveredAt = now
	v.CreatedAt = now
	v.UpdatedAt = now
	v.ResolvedAt = nil
	v.SLADeadline = s.sla.Deadline(v.Severity, now)

	if err := s.store.Create(ctx, &v); err != nil {
		return nil, fmt.Errorf("create vulnerability: %w", err)
	}

	zerolog.Ctx(ctx).Info().
		Int64("vulnerability_id", v.ID).
		Str("severity", string(v.Severity)).
		Msg("vulnerability created")

	return &v, nil
}

func (s *service) Update(ctx context.Context, id int64, upd domain.VulnerabilityUpdate) (*domain.Vulnerability, error) {
	var res *domain.Vulnerability
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		v, err := s.store.Get(ctx, id)
		if err != nil {
			return err
		}

		v.Apply(upd)
		v.UpdatedAt = s.now().UTC()

		if err := s.store.Update(ctx, v); err != nil {
			return err
		}
		res = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	return s.store.Delete(ctx, id)
}
