package compliance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/de-tools/posture-atlas/pkg/adapters"
	"github.com/de-tools/posture-atlas/pkg/models/domain"
	"github.com/de-tools/posture-atlas/pkg/models/store"
	"github.com/de-tools/posture-atlas/pkg/store/duckdb"
	"github.com/rs/zerolog"
)

const (
	frameworkColumns = `id, name, framework_type, version, description, overall_score,
	last_assessed_at, created_at, updated_at`
	controlColumns = `id, framework_id, control_id, title, description, status,
	evidence, remediation_notes, created_at, updated_at`
	assessmentColumns = `id, framework_id, assessed_at, overall_score, compliant_controls,
	non_compliant_controls, total_controls, assessor_name, notes, created_at`
)

type Store interface {
	ListFrameworks(ctx context.Context) ([]domain.ComplianceFramework, error)
	GetFramework(ctx context.Context, id int64) (*domain.ComplianceFramework, error)
	CreateFramework(ctx context.Context, f *domain.ComplianceFramework) error
	// DeleteFramework removes the framework with its controls and assessments.
	// Callers run it inside a transaction.
	DeleteFramework(ctx context.Context, id int64) error
	UpdateFrameworkScore(ctx context.Context, id int64, score float64, updatedAt time.Time) error
	UpdateFrameworkAssessment(ctx context.Context, id int64, score float64, assessedAt time.Time) error
	// CountFrameworks counts frameworks, restricted to overall_score >= minScore when set.
	CountFrameworks(ctx context.Context, minScore *float64) (int64, error)

	ListControls(ctx context.Context, frameworkID int64) ([]domain.ComplianceControl, error)
	GetControl(ctx context.Context, id int64) (*domain.ComplianceControl, error)
	CreateControl(ctx context.Context, c *domain.ComplianceControl) error
	UpdateControl(ctx context.Context, c *domain.ComplianceControl) error

	CreateAssessment(ctx context.Context, a *domain.ComplianceAssessment) error
	ListAssessments(ctx context.Context, frameworkID int64) ([]domain.ComplianceAssessment, error)
}

type complianceStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &complianceStore{db: db}, nil
}

func (s *complianceStore) ListFrameworks(ctx context.Context) ([]domain.ComplianceFramework, error) {
	logger := zerolog.Ctx(ctx)

	rows, err := duckdb.Conn(ctx, s.db).QueryContext(ctx,
		"SELECT "+frameworkColumns+" FROM compliance_frameworks ORDER BY name, id")
	if err != nil {
		return nil, fmt.Errorf("list frameworks: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close framework rows")
		}
	}(rows)

	res := []domain.ComplianceFramework{}
	for rows.Next() {
		rec, err := scanFramework(rows)
		if err != nil {
			return nil, err
		}
		f, err := adapters.MapStoreFrameworkToDomain(rec)
		if err != nil {
			return nil, err
		}
		res = append(res, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate frameworks: %w", err)
	}
	return res, nil
}

func (s *complianceStore) GetFramework(ctx context.Context, id int64) (*domain.ComplianceFramework, error) {
	row := duckdb.Conn(ctx, s.db).QueryRowContext(ctx,
		"SELECT "+frameworkColumns+" FROM compliance_frameworks WHERE id = ?", id)

	rec, err := scanFramework(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("framework %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	f, err := adapters.MapStoreFrameworkToDomain(rec)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *complianceStore) CreateFramework(ctx context.Context, f *domain.ComplianceFramework) error {
	rec := adapters.MapDomainFrameworkToStore(*f)

	query := `
		INSERT INTO compliance_frameworks (
			name, framework_type, version, description, overall_score,
			created_at, updated_at
		) VALUES (
			?, ?, ?, ?, ?, ?, ?
		) RETURNING id`

	err := duckdb.Conn(ctx, s.db).QueryRowContext(ctx, query,
		rec.Name,
		rec.FrameworkType,
		duckdb.Arg(rec.Version),
		duckdb.Arg(rec.Description),
		rec.OverallScore,
		rec.CreatedAt,
		rec.UpdatedAt,
	).Scan(&f.ID)
	if isConstraintViolation(err) {
		return fmt.Errorf("framework %q: %w", f.Name, domain.ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("insert framework: %w", err)
	}
	return nil
}

func (s *complianceStore) DeleteFramework(ctx context.Context, id int64) error {
	conn := duckdb.Conn(ctx, s.db)

	for _, table := range []string{"compliance_controls", "compliance_assessments"} {
		if _, err := conn.ExecContext(ctx, "DELETE FROM "+table+" WHERE framework_id = ?", id); err != nil {
			return fmt.Errorf("delete %s of framework %d: %w", table, id, err)
		}
	}

	res, err := conn.ExecContext(ctx, "DELETE FROM compliance_frameworks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete framework %d: %w", id, err)
	}
	return expectAffected(res, "framework", id)
}

func (s *complianceStore) UpdateFrameworkScore(ctx context.Context, id int64, score float64, updatedAt time.Time) error {
	res, err := duckdb.Conn(ctx, s.db).ExecContext(ctx,
		"UPDATE compliance_frameworks SET overall_score = ?, updated_at = ? WHERE id = ?",
		score, updatedAt.UTC(), id)
	if err != nil {
		return fmt.Errorf("update score of framework %d: %w", id, err)
	}
	return expectAffected(res, "framework", id)
}

func (s *complianceStore) UpdateFrameworkAssessment(ctx context.Context, id int64, score float64, assessedAt time.Time) error {
	res, err := duckdb.Conn(ctx, s.db).ExecContext(ctx,
		`UPDATE compliance_frameworks
		SET overall_score = ?, last_assessed_at = ?, updated_at = ?
		WHERE id = ?`,
		score, assessedAt.UTC(), assessedAt.UTC(), id)
	if err != nil {
		return fmt.Errorf("update assessment of framework %d: %w", id, err)
	}
	return expectAffected(res, "framework", id)
}

func (s *complianceStore) CountFrameworks(ctx context.Context, minScore *float64) (int64, error) {
	where := &duckdb.Where{}
	if minScore != nil {
		where.Gte("overall_score", *minScore)
	}

	var count int64
	err := duckdb.Conn(ctx, s.db).
		QueryRowContext(ctx, "SELECT COUNT(*) FROM compliance_frameworks"+where.SQL(), where.Args()...).
		Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count frameworks: %w", err)
	}
	return count, nil
}

func (s *complianceStore) ListControls(ctx context.Context, frameworkID int64) ([]domain.ComplianceControl, error) {
	logger := zerolog.Ctx(ctx)

	rows, err := duckdb.Conn(ctx, s.db).QueryContext(ctx,
		"SELECT "+controlColumns+" FROM compliance_controls WHERE framework_id = ? ORDER BY control_id, id",
		frameworkID)
	if err != nil {
		return nil, fmt.Errorf("list controls of framework %d: %w", frameworkID, err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close control rows")
		}
	}(rows)

	res := []domain.ComplianceControl{}
	for rows.Next() {
		rec, err := scanControl(rows)
		if err != nil {
			return nil, err
		}
		c, err := adapters.MapStoreControlToDomain(rec)
		if err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate controls: %w", err)
	}
	return res, nil
}

func (s *complianceStore) GetControl(ctx context.Context, id int64) (*domain.ComplianceControl, error) {
	row := duckdb.Conn(ctx, s.db).QueryRowContext(ctx,
		"SELECT "+controlColumns+" FROM compliance_controls WHERE id = ?", id)

	rec, err := scanControl(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("control %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	c, err := adapters.MapStoreControlToDomain(rec)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *complianceStore) CreateControl(ctx context.Context, c *domain.ComplianceControl) error {
	rec := adapters.MapDomainControlToStore(*c)

	query := `
		INSERT INTO compliance_controls (
			framework_id, control_id, title, description, status, evidence,
			remediation_notes, created_at, updated_at
		) VALUES (
			?, ?, ?, ?, ?, ?, ?, ?, ?
		) RETURNING id`

	err := duckdb.Conn(ctx, s.db).QueryRowContext(ctx, query,
		rec.FrameworkID,
		rec.ControlID,
		rec.Title,
		duckdb.Arg(rec.Description),
		rec.Status,
		duckdb.Arg(rec.Evidence),
		duckdb.Arg(rec.RemediationNotes),
		rec.CreatedAt,
		rec.UpdatedAt,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("insert control: %w", err)
	}
	return nil
}

// UpdateControl never touches framework_id.
func (s *complianceStore) UpdateControl(ctx context.Context, c *domain.ComplianceControl) error {
	rec := adapters.MapDomainControlToStore(*c)

	res, err := duckdb.Conn(ctx, s.db).ExecContext(ctx, `
		UPDATE compliance_controls SET
			status = ?,
			evidence = ?,
			remediation_notes = ?,
			updated_at = ?
		WHERE id = ?`,
		rec.Status,
		duckdb.Arg(rec.Evidence),
		duckdb.Arg(rec.RemediationNotes),
		rec.UpdatedAt,
		rec.ID,
	)
	if err != nil {
		return fmt.Errorf("update control %d: %w", c.ID, err)
	}
	return expectAffected(res, "control", c.ID)
}

func (s *complianceStore) CreateAssessment(ctx context.Context, a *domain.ComplianceAssessment) error {
	rec := adapters.MapDomainAssessmentToStore(*a)

	query := `
		INSERT INTO compliance_assessments (
			framework_id, assessed_at, overall_score, compliant_controls,
			non_compliant_controls, total_controls, assessor_name, notes, created_at
		) VALUES (
			?, ?, ?, ?, ?, ?, ?, ?, ?
		) RETURNING id`

	err := duckdb.Conn(ctx, s.db).QueryRowContext(ctx, query,
		rec.FrameworkID,
		rec.AssessedAt,
		rec.OverallScore,
		rec.CompliantControls,
		rec.NonCompliantControls,
		rec.TotalControls,
		duckdb.Arg(rec.AssessorName),
		duckdb.Arg(rec.Notes),
		rec.CreatedAt,
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("insert assessment: %w", err)
	}
	return nil
}

func (s *complianceStore) ListAssessments(ctx context.Context, frameworkID int64) ([]domain.ComplianceAssessment, error) {
	logger := zerolog.Ctx(ctx)

	rows, err := duckdb.Conn(ctx, s.db).QueryContext(ctx,
		"SELECT "+assessmentColumns+" FROM compliance_assessments WHERE framework_id = ? ORDER BY assessed_at DESC, id DESC",
		frameworkID)
	if err != nil {
		return nil, fmt.Errorf("list assessments of framework %d: %w", frameworkID, err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close assessment rows")
		}
	}(rows)

	res := []domain.ComplianceAssessment{}
	for rows.Next() {
		var a store.ComplianceAssessment
		err := rows.Scan(
			&a.ID,
			&a.FrameworkID,
			&a.AssessedAt,
			&a.OverallScore,
			&a.CompliantControls,
			&a.NonCompliantControls,
			&a.TotalControls,
			&a.AssessorName,
			&a.Notes,
			&a.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		res = append(res, adapters.MapStoreAssessmentToDomain(a))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assessments: %w", err)
	}
	return res, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFramework(row scanner) (store.ComplianceFramework, error) {
	var f store.ComplianceFramework
	err := row.Scan(
		&f.ID,
		&f.Name,
		&f.FrameworkType,
		&f.Version,
		&f.Description,
		&f.OverallScore,
		&f.LastAssessedAt,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	return f, err
}

func scanControl(row scanner) (store.ComplianceControl, error) {
	var c store.ComplianceControl
	err := row.Scan(
		&c.ID,
		&c.FrameworkID,
		&c.ControlID,
		&c.Title,
		&c.Description,
		&c.Status,
		&c.Evidence,
		&c.RemediationNotes,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}

func expectAffected(res sql.Result, entity string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", entity, id, domain.ErrNotFound)
	}
	return nil
}

// DuckDB reports unique and primary key violations as "Constraint Error".
func isConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Constraint Error") || strings.Contains(msg, "Duplicate key")
}
