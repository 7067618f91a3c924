package incident

import (
	"context"
	"fmt"
	"time"

	"github.com/de-tools/posture-atlas/pkg/models/domain"
	"github.com/de-tools/posture-atlas/pkg/services/posture"
	"github.com/de-tools/posture-atlas/pkg/store/duckdb"
	"github.com/de-tools/posture-atlas/pkg/store/duckdb/incident"
	"github.com/rs/zerolog"
)

type Service interface {
	List(ctx context.Context, filter domain.IncidentFilter) ([]domain.Incident, error)
	Get(ctx context.Context, id int64) (*domain.Incident, error)
	Create(ctx context.Context, inc domain.Incident) (*domain.Incident, error)
	Update(ctx context.Context, id int64, upd domain.IncidentUpdate) (*domain.Incident, error)
	Delete(ctx context.Context, id int64) error
}

type service struct {
	store incident.Store
	tx    duckdb.Transactor
	now   func() time.Time
}

func NewService(store incident.Store, tx duckdb.Transactor) Service {
	return &service{
		store: store,
		tx:    tx,
		now:   time.Now,
	}
}

func (s *service) List(ctx context.Context, filter domain.IncidentFilter) ([]domain.Incident, error) {
	if err := filter.Page.Validate(); err != nil {
		return nil, err
	}
	return s.store.List(ctx, filter)
}

func (s *service) Get(ctx context.Context, id int64) (*domain.Incident, error) {
	return s.store.Get(ctx, id)
}

func (s *service) Create(ctx context.Context, inc domain.Incident) (*domain.Incident, error) {
	now := s.now().UTC()
	inc.Status = domain.IncidentStatusDetected
	inc.DetectedAt = &now
	inc.ContainedAt = nil
	inc.ResolvedAt = nil
	inc.ResponseTimeMinutes = nil
	inc.ResolutionTimeMinutes = nil
	inc.CreatedAt = now
	inc.UpdatedAt = now

	if err := s.store.Create(ctx, &inc); err != nil {
		return nil, fmt.Errorf("create incident: %w", err)
	}

	zerolog.Ctx(ctx).Info().
		Int64("incident_id", inc.ID).
		Str("type", string(inc.Type)).
		Str("severity", string(inc.Severity)).
		Msg("incident created")

	return &inc, nil
}

// Update applies the client fields and derives response and resolution times
// from whichever terminal timestamps the update carries.
func (s *service) Update(ctx context.Context, id int64, upd domain.IncidentUpdate) (*domain.Incident, error) {
	logger := zerolog.Ctx(ctx)

	var res *domain.Incident
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		inc, err := s.store.Get(ctx, id)
		if err != nil {
			return err
		}

		if upd.Status != nil {
			inc.Status = *upd.Status
		}
		if upd.RootCause != nil {
			inc.RootCause = *upd.RootCause
		}
		if upd.LessonsLearned != nil {
			inc.LessonsLearned = *upd.LessonsLearned
		}
		posture.ApplyIncidentTiming(inc, upd)
		inc.UpdatedAt = s.now().UTC()

		if err := s.store.Update(ctx, inc); err != nil {
			return err
		}
		res = inc
		return nil
	})
	if err != nil {
		return nil, err
	}

	if res.DetectedAt == nil && (upd.ContainedAt != nil || upd.ResolvedAt != nil) {
		logger.Warn().Int64("incident_id", id).Msg("incident has no detection time, timing not derived")
	}
	return res, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	return s.store.Delete(ctx, id)
}
