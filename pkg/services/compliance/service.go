package compliance

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/de-tools/posture-atlas/pkg/models/domain"
	"github.com/de-tools/posture-atlas/pkg/services/posture"
	"github.com/de-tools/posture-atlas/pkg/store/duckdb"
	"github.com/de-tools/posture-atlas/pkg/store/duckdb/compliance"
	"github.com/rs/zerolog"
)

type Service interface {
	ListFrameworks(ctx context.Context) ([]domain.ComplianceFramework, error)
	GetFramework(ctx context.Context, id int64) (*domain.ComplianceFramework, error)
	CreateFramework(ctx context.Context, f domain.ComplianceFramework) (*domain.ComplianceFramework, error)
	DeleteFramework(ctx context.Context, id int64) error

	ListControls(ctx context.Context, frameworkID int64) ([]domain.ComplianceControl, error)
	CreateControl(ctx context.Context, c domain.ComplianceControl) (*domain.ComplianceControl, error)
	UpdateControl(ctx context.Context, id int64, upd domain.ControlUpdate) (*domain.ComplianceControl, error)

	CreateAssessment(ctx context.Context, a domain.ComplianceAssessment) (*domain.ComplianceAssessment, error)
	ListAssessments(ctx context.Context, frameworkID int64) ([]domain.ComplianceAssessment, error)
	// AssessFramework snapshots the current control set of a framework as an assessment.
	AssessFramework(ctx context.Context, frameworkID int64, assessor, notes string) (*domain.ComplianceAssessment, error)
}

type service struct {
	store compliance.Store
	tx    duckdb.Transactor
	now   func() time.Time

	// mu serializes write transactions. Each of them rewrites the framework
	// row, and DuckDB aborts concurrent updates of one row with a conflict.
	mu sync.Mutex
}

func (s *service) withinWriteTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx.WithinTx(ctx, fn)
}

func NewService(store compliance.Store, tx duckdb.Transactor) Service {
	return &service{
		store: store,
		tx:    tx,
		now:   time.Now,
	}
}

func (s *service) ListFrameworks(ctx context.Context) ([]domain.ComplianceFramework, error) {
	frameworks, err := s.store.ListFrameworks(ctx)
	if err != nil {
		return nil, err
	}
	for i := range frameworks {
		controls, err := s.store.ListControls(ctx, frameworks[i].ID)
		if err != nil {
			return nil, err
		}
		frameworks[i].Controls = controls
	}
	return frameworks, nil
}

func (s *service) GetFramework(ctx context.Context, id int64) (*domain.ComplianceFramework, error) {
	f, err := s.store.GetFramework(ctx, id)
	if err != nil {
		return nil, err
	}
	controls, err := s.store.ListControls(ctx, id)
	if err != nil {
		return nil, err
	}
	f.Controls = controls
	return f, nil
}

func (s *service) CreateFramework(ctx context.Context, f domain.ComplianceFramework) (*domain.ComplianceFramework, error) {
	now := s.now().UTC()
	f.OverallScore = 0
	f.LastAssessedAt = nil
	f.CreatedAt = now
	f.UpdatedAt = now
	f.Controls = []domain.ComplianceControl{}

	if err := s.store.CreateFramework(ctx, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *service) DeleteFramework(ctx context.Context, id int64) error {
	return s.withinWriteTx(ctx, func(ctx context.Context) error {
		return s.store.DeleteFramework(ctx, id)
	})
}

func (s *service) ListControls(ctx context.Context, frameworkID int64) ([]domain.ComplianceControl, error) {
	if _, err := s.store.GetFramework(ctx, frameworkID); err != nil {
		return nil, err
	}
	return s.store.ListControls(ctx, frameworkID)
}

// CreateControl adds a control and rescores its framework in the same transaction.
func (s *service) CreateControl(ctx context.Context, c domain.ComplianceControl) (*domain.ComplianceControl, error) {
	now := s.now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	err := s.withinWriteTx(ctx, func(ctx context.Context) error {
		f, err := s.store.GetFramework(ctx, c.FrameworkID)
		if err != nil {
			return err
		}
		if err := s.store.CreateControl(ctx, &c); err != nil {
			return err
		}
		return s.rescore(ctx, f, now)
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// UpdateControl applies the update and then recomputes the owning framework's
// score from all of its controls before the transaction commits.
func (s *service) UpdateControl(ctx context.Context, id int64, upd domain.ControlUpdate) (*domain.ComplianceControl, error) {
	var res *domain.ComplianceControl
	err := s.withinWriteTx(ctx, func(ctx context.Context) error {
		c, err := s.store.GetControl(ctx, id)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		c.Apply(upd)
		c.UpdatedAt = now
		if err := s.store.UpdateControl(ctx, c); err != nil {
			return err
		}

		f, err := s.store.GetFramework(ctx, c.FrameworkID)
		if err != nil {
			return err
		}
		if err := s.rescore(ctx, f, now); err != nil {
			return err
		}
		res = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *service) rescore(ctx context.Context, f *domain.ComplianceFramework, now time.Time) error {
	controls, err := s.store.ListControls(ctx, f.ID)
	if err != nil {
		return err
	}
	if len(controls) == 0 {
		return nil
	}

	score := posture.RecomputeScore(f.OverallScore, controls)
	if err := s.store.UpdateFrameworkScore(ctx, f.ID, score, now); err != nil {
		return fmt.Errorf("rescore framework %d: %w", f.ID, err)
	}

	zerolog.Ctx(ctx).Info().
		Int64("framework_id", f.ID).
		Float64("previous_score", f.OverallScore).
		Float64("score", score).
		Int("controls", len(controls)).
		Msg("framework score recomputed")
	return nil
}

// CreateAssessment records a client supplied snapshot and makes its score the
// framework's current score.
func (s *service) CreateAssessment(ctx context.Context, a domain.ComplianceAssessment) (*domain.ComplianceAssessment, error) {
	now := s.now().UTC()
	a.AssessedAt = now
	a.CreatedAt = now

	err := s.withinWriteTx(ctx, func(ctx context.Context) error {
		if _, err := s.store.GetFramework(ctx, a.FrameworkID); err != nil {
			return err
		}
		return s.record(ctx, &a)
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *service) AssessFramework(ctx context.Context, frameworkID int64, assessor, notes string) (*domain.ComplianceAssessment, error) {
	now := s.now().UTC()
	var res *domain.ComplianceAssessment

	err := s.withinWriteTx(ctx, func(ctx context.Context) error {
		f, err := s.store.GetFramework(ctx, frameworkID)
		if err != nil {
			return err
		}
		controls, err := s.store.ListControls(ctx, frameworkID)
		if err != nil {
			return err
		}

		tally := posture.TallyControls(controls)
		a := domain.ComplianceAssessment{
			FrameworkID:          frameworkID,
			AssessedAt:           now,
			OverallScore:         posture.RecomputeScore(f.OverallScore, controls),
			CompliantControls:    tally.Compliant,
			NonCompliantControls: tally.NonCompliant,
			TotalControls:        tally.Total,
			AssessorName:         assessor,
			Notes:                notes,
			CreatedAt:            now,
		}
		if err := s.record(ctx, &a); err != nil {
			return err
		}
		res = &a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *service) record(ctx context.Context, a *domain.ComplianceAssessment) error {
	if err := s.store.CreateAssessment(ctx, a); err != nil {
		return err
	}
	if err := s.store.UpdateFrameworkAssessment(ctx, a.FrameworkID, a.OverallScore, a.AssessedAt); err != nil {
		return err
	}

	zerolog.Ctx(ctx).Info().
		Int64("framework_id", a.FrameworkID).
		Int64("assessment_id", a.ID).
		Float64("score", a.OverallScore).
		Msg("assessment recorded")
	return nil
}

func (s *service) ListAssessments(ctx context.Context, frameworkID int64) ([]domain.ComplianceAssessment, error) {
	if _, err := s.store.GetFramework(ctx, frameworkID); err != nil {
		return nil, err
	}
	return s.store.ListAssessments(ctx, frameworkID)
}
