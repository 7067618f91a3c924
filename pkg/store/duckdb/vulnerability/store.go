package vulnerability

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

const columns = `id, title, description, cve_id, cvss_score, severity, status,
	asset_name, asset_type, source, discovered_at, resolved_at, sla_deadline,
	remediation_notes, created_at, updated_at`

type Store interface {
	List(ctx context.Context, filter domain.VulnerabilityFilter) ([]domain.Vulnerability, error)
	Get(ctx context.Context, id int64) (*domain.Vulnerability, error)
	Create(ctx context.Context, v *domain.Vulnerability) error
	Update(ctx context.Context, v *domain.Vulnerability) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context, criteria domain.VulnerabilityCriteria) (int64, error)
}

type vulnerabilityStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &vulnerabilityStore{db: db}, nil
}

func (s *vulnerabilityStore) List(ctx context.Context, filter domain.VulnerabilityFilter) ([]domain.Vulnerability, error) {
	logger := zerolog.Ctx(ctx)

	where := &duckdb.Where{}
	if filter.Severity != nil {
		where.Eq("severity", string(*filter.Severity))
	}
	if filter.Status != nil {
		where.Eq("status", string(*filter.Status))
	}

	query := "SELECT " + columns + " FROM vulnerabilities" + where.SQL() +
		" ORDER BY discovered_at DESC, id DESC LIMIT ? OFFSET ?"
	args := append(where.Args(), filter.Limit, filter.Skip)

	rows, err := duckdb.Conn(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list vulnerabilities: %w", err)
	}
	defer func(rows *sql.Rows) {
		err := rows.Close()
		if err != nil {
			logger.Warn().Err(err).Msg("failed to close vulnerability rows")
		}
	}(rows)

	res := []domain.Vulnerability{}
	for rows.Next() {
		row, err := scan(rows)
		if err != nil {
			return nil, err
		}
		v, err := adapters.MapStoreVulnerabilityToDomain(row)
		if err != nil {
			return nil, err
		}
		res = append(res, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vulnerabilities: %w", err)
	}

	return res, nil
}

func (s *vulnerabilityStore) Get(ctx context.Context, id int64) (*domain.Vulnerability, error) {
	row := duckdb.Conn(ctx, s.db).QueryRowContext(ctx,
		"SELECT "+columns+" FROM vulnerabilities WHERE id = ?", id)

	rec, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("vulnerability %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	v, err := adapters.MapStoreVulnerabilityToDomain(rec)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *vulnerabilityStore) Create(ctx context.Context, v *domain.Vulnerability) error {
	rec := adapters.MapDomainVulnerabilityToStore(*v)

	query := `
		INSERT INTO vulnerabilities (
			title, description, cve_id, cvss_score, severity, status,
			asset_name, asset_type, source, discovered_at, resolved_at,
			sla_deadline, remediation_notes, created_at, updated_at
		) VALUES (
			?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?
		) RETURNING id`

	err := duckdb.Conn(ctx, s.db).QueryRowContext(ctx, query,
		rec.Title,
		duckdb.Arg(rec.Description),
		duckdb.Arg(rec.CVEID),
		duckdb.Arg(rec.CVSSScore),
		rec.Severity,
		rec.Status,
		duckdb.Arg(rec.AssetName),
		duckdb.Arg(rec.AssetType),
		duckdb.Arg(rec.Source),
		rec.DiscoveredAt,
		duckdb.Arg(rec.ResolvedAt),
		duckdb.Arg(rec.SLADeadline),
		duckdb.Arg(rec.RemediationNotes),
		rec.CreatedAt,
		rec.UpdatedAt,
	).Scan(&v.ID)
	if err != nil {
		return fmt.Errorf("insert vulnerability: %w", err)
	}
	return nil
}

func (s *vulnerabilityStore) Update(ctx context.Context, v *domain.Vulnerability) error {
	rec := adapters.MapDomainVulnerabilityToStore(*v)

	query := `
		UPDATE vulnerabilities SET
			status = ?,
			remediation_notes = ?,
			resolved_at = ?,
			sla_deadline = ?,
			updated_at = ?
		WHERE id = ?`

	res, err := duckdb.Conn(ctx, s.db).ExecContext(ctx, query,
		rec.Status,
		duckdb.Arg(rec.RemediationNotes),
		duckdb.Arg(rec.ResolvedAt),
		duckdb.Arg(rec.SLADeadline),
		rec.UpdatedAt,
		rec.ID,
	)
	if err != nil {
		return fmt.Errorf("update vulnerability %d: %w", v.ID, err)
	}
	return expectAffected(res, v.ID)
}

func (s *vulnerabilityStore) Delete(ctx context.Context, id int64) error {
	res, err := duckdb.Conn(ctx, s.db).ExecContext(ctx, "DELETE FROM vulnerabilities WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete vulnerability %d: %w", id, err)
	}
	return expectAffected(res, id)
}

func (s *vulnerabilityStore) Count(ctx context.Context, criteria domain.VulnerabilityCriteria) (int64, error) {
	where := &duckdb.Where{}
	if criteria.Severity != nil {
		where.Eq("severity", string(*criteria.Severity))
	}
	statuses := make([]any, 0, len(criteria.Statuses))
	for _, st := range criteria.Statuses {
		statuses = append(statuses, string(st))
	}
	where.In("status", statuses...)

	var count int64
	err := duckdb.Conn(ctx, s.db).
		QueryRowContext(ctx, "SELECT COUNT(*) FROM vulnerabilities"+where.SQL(), where.Args()...).
		Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count vulnerabilities: %w", err)
	}
	return count, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (store.Vulnerability, error) {
	var v store.Vulnerability
	err := row.Scan(
		&v.ID,
		&v.Title,
		&v.Description,
		&v.CVEID,
		&v.CVSSScore,
		&v.Severity,
		&v.Status,
		&v.AssetName,
		&v.AssetType,
		&v.Source,
		&v.DiscoveredAt,
		&v.ResolvedAt,
		&v.SLADeadline,
		&v.RemediationNotes,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	return v, err
}

func expectAffected(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("vulnerability %d: %w", id, domain.ErrNotFound)
	}
	return nil
}
