package incident

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/de-tools/posture-atlas/pkg/adapters"
	"github.com/de-tools/posture-atlas/pkg/models/domain"
	"github.com/de-tools/posture-atlas/pkg/models/store"
	"github.com/de-tools/posture-atlas/pkg/store/duckdb"
	"github.com/rs/zerolog"
)

const columns = `id, title, description, incident_type, status, severity,
	detected_at, contained_at, resolved_at, response_time_minutes,
	resolution_time_minutes, affected_assets, root_cause, lessons_learned,
	created_at, updated_at`

type Store interface {
	List(ctx context.Context, filter domain.IncidentFilter) ([]domain.Incident, error)
	Get(ctx context.Context, id int64) (*domain.Incident, error)
	Create(ctx context.Context, inc *domain.Incident) error
	Update(ctx context.Context, inc *domain.Incident) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context, criteria domain.IncidentCriteria) (int64, error)
}

type incidentStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &incidentStore{db: db}, nil
}

func (s *incidentStore) List(ctx context.Context, filter domain.IncidentFilter) ([]domain.Incident, error) {
	logger := zerolog.Ctx(ctx)

	where := &duckdb.Where{}
	if filter.Status != nil {
		where.Eq("status", string(*filter.Status))
	}
	if filter.Severity != nil {
		where.Eq("severity", string(*filter.Severity))
	}

	query := "SELECT " + columns + " FROM incidents" + where.SQL() +
		" ORDER BY detected_at DESC NULLS LAST, id DESC LIMIT ? OFFSET ?"
	args := append(where.Args(), filter.Limit, filter.Skip)

	rows, err := duckdb.Conn(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}
	defer func(rows *sql.Rows) {
		err := rows.Close()
		if err != nil {
			logger.Warn().Err(err).Msg("failed to close incident rows")
		}
	}(rows)

	res := []domain.Incident{}
	for rows.Next() {
		rec, err := scan(rows)
		if err != nil {
			return nil, err
		}
		inc, err := adapters.MapStoreIncidentToDomain(rec)
		if err != nil {
			return nil, err
		}
		res = append(res, inc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate incidents: %w", err)
	}
	return res, nil
}

func (s *incidentStore) Get(ctx context.Context, id int64) (*domain.Incident, error) {
	row := duckdb.Conn(ctx, s.db).QueryRowContext(ctx,
		"SELECT "+columns+" FROM incidents WHERE id = ?", id)

	rec, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("incident %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	inc, err := adapters.MapStoreIncidentToDomain(rec)
	if err != nil {
		return nil, err
	}
	return &inc, nil
}

func (s *incidentStore) Create(ctx context.Context, inc *domain.Incident) error {
	rec := adapters.MapDomainIncidentToStore(*inc)

	query := `
		INSERT INTO incidents (
			title, description, incident_type, status, severity, detected_at,
			affected_assets, created_at, updated_at
		) VALUES (
			?, ?, ?, ?, ?, ?, ?, ?, ?
		) RETURNING id`

	err := duckdb.Conn(ctx, s.db).QueryRowContext(ctx, query,
		rec.Title,
		duckdb.Arg(rec.Description),
		rec.IncidentType,
		rec.Status,
		rec.Severity,
		duckdb.Arg(rec.DetectedAt),
		duckdb.Arg(rec.AffectedAssets),
		rec.CreatedAt,
		rec.UpdatedAt,
	).Scan(&inc.ID)
	if err != nil {
		return fmt.Errorf("insert incident: %w", err)
	}
	return nil
}

// Update writes every mutable column; detected_at is never rewritten.
func (s *incidentStore) Update(ctx context.Context, inc *domain.Incident) error {
	rec := adapters.MapDomainIncidentToStore(*inc)

	query := `
		UPDATE incidents SET
			status = ?,
			contained_at = ?,
			resolved_at = ?,
			response_time_minutes = ?,
			resolution_time_minutes = ?,
			root_cause = ?,
			lessons_learned = ?,
			updated_at = ?
		WHERE id = ?`

	res, err := duckdb.Conn(ctx, s.db).ExecContext(ctx, query,
		rec.Status,
		duckdb.Arg(rec.ContainedAt),
		duckdb.Arg(rec.ResolvedAt),
		duckdb.Arg(rec.ResponseTimeMinutes),
		duckdb.Arg(rec.ResolutionTimeMinutes),
		duckdb.Arg(rec.RootCause),
		duckdb.Arg(rec.LessonsLearned),
		rec.UpdatedAt,
		rec.ID,
	)
	if err != nil {
		return fmt.Errorf("update incident %d: %w", inc.ID, err)
	}
	return expectAffected(res, inc.ID)
}

func (s *incidentStore) Delete(ctx context.Context, id int64) error {
	res, err := duckdb.Conn(ctx, s.db).ExecContext(ctx, "DELETE FROM incidents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete incident %d: %w", id, err)
	}
	return expectAffected(res, id)
}

func (s *incidentStore) Count(ctx context.Context, criteria domain.IncidentCriteria) (int64, error) {
	where := &duckdb.Where{}
	if criteria.Severity != nil {
		where.Eq("severity", string(*criteria.Severity))
	}
	excluded := make([]any, 0, len(criteria.ExcludeStatuses))
	for _, st := range criteria.ExcludeStatuses {
		excluded = append(excluded, string(st))
	}
	where.NotIn("status", excluded...)

	var count int64
	err := duckdb.Conn(ctx, s.db).
		QueryRowContext(ctx, "SELECT COUNT(*) FROM incidents"+where.SQL(), where.Args()...).
		Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count incidents: %w", err)
	}
	return count, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (store.Incident, error) {
	var i store.Incident
	err := row.Scan(
		&i.ID,
		&i.Title,
		&i.Description,
		&i.IncidentType,
		&i.Status,
		&i.Severity,
		&i.DetectedAt,
		&i.ContainedAt,
		&i.ResolvedAt,
		&i.ResponseTimeMinutes,
		&i.ResolutionTimeMinutes,
		&i.AffectedAssets,
		&i.RootCause,
		&i.LessonsLearned,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

func expectAffected(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("incident %d: %w", id, domain.ErrNotFound)
	}
	return nil
}
