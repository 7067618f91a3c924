package metric

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/de-tools/posture-atlas/pkg/adapters"
	"github.com/de-tools/posture-atlas/pkg/models/domain"
	"github.com/de-tools/posture-atlas/pkg/models/store"
	"github.com/de-tools/posture-atlas/pkg/store/duckdb"
	"github.com/rs/zerolog"
)

const columns = `id, metric_type, value, category, description, recorded_at, created_at`

// Store is the append-only security_metrics series.
type Store interface {
	Create(ctx context.Context, m *domain.SecurityMetric) error
	// List returns the newest observations first.
	List(ctx context.Context, filter domain.MetricFilter) ([]domain.SecurityMetric, error)
	// Latest returns the most recent observation of metricType, or ErrNotFound.
	Latest(ctx context.Context, metricType domain.MetricType) (*domain.SecurityMetric, error)
	// ListSince returns observations recorded at or after since, oldest first.
	ListSince(ctx context.Context, metricType domain.MetricType, since time.Time) ([]domain.SecurityMetric, error)
}

type metricStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &metricStore{db: db}, nil
}

func (s *metricStore) Create(ctx context.Context, m *domain.SecurityMetric) error {
	rec := adapters.MapDomainMetricToStore(*m)

	query := `
		INSERT INTO security_metrics (
			metric_type, value, category, description, recorded_at, created_at
		) VALUES (
			?, ?, ?, ?, ?, ?
		) RETURNING id`

	err := duckdb.Conn(ctx, s.db).QueryRowContext(ctx, query,
		rec.MetricType,
		rec.Value,
		duckdb.Arg(rec.Category),
		duckdb.Arg(rec.Description),
		rec.RecordedAt,
		rec.CreatedAt,
	).Scan(&m.ID)
	if err != nil {
		return fmt.Errorf("insert metric: %w", err)
	}
	return nil
}

func (s *metricStore) List(ctx context.Context, filter domain.MetricFilter) ([]domain.SecurityMetric, error) {
	where := &duckdb.Where{}
	if filter.Type != nil {
		where.Eq("metric_type", string(*filter.Type))
	}
	if filter.Since != nil {
		where.Gte("recorded_at", filter.Since.UTC())
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = domain.DefaultPageLimit
	}

	query := "SELECT " + columns + " FROM security_metrics" + where.SQL() +
		" ORDER BY recorded_at DESC, id DESC LIMIT ?"
	return s.query(ctx, query, append(where.Args(), limit)...)
}

func (s *metricStore) Latest(ctx context.Context, metricType domain.MetricType) (*domain.SecurityMetric, error) {
	row := duckdb.Conn(ctx, s.db).QueryRowContext(ctx,
		"SELECT "+columns+" FROM security_metrics WHERE metric_type = ? ORDER BY recorded_at DESC, id DESC LIMIT 1",
		string(metricType))

	rec, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("metric %s: %w", metricType, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("latest %s metric: %w", metricType, err)
	}

	m, err := adapters.MapStoreMetricToDomain(rec)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *metricStore) ListSince(ctx context.Context, metricType domain.MetricType, since time.Time) ([]domain.SecurityMetric, error) {
	query := "SELECT " + columns + " FROM security_metrics WHERE metric_type = ? AND recorded_at >= ?" +
		" ORDER BY recorded_at ASC, id ASC"
	return s.query(ctx, query, string(metricType), since.UTC())
}

func (s *metricStore) query(ctx context.Context, query string, args ...any) ([]domain.SecurityMetric, error) {
	logger := zerolog.Ctx(ctx)

	rows, err := duckdb.Conn(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query metrics: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close metric rows")
		}
	}(rows)

	res := []domain.SecurityMetric{}
	for rows.Next() {
		rec, err := scan(rows)
		if err != nil {
			return nil, err
		}
		m, err := adapters.MapStoreMetricToDomain(rec)
		if err != nil {
			return nil, err
		}
		res = append(res, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate metrics: %w", err)
	}
	return res, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (store.SecurityMetric, error) {
	var m store.SecurityMetric
	err := row.Scan(
		&m.ID,
		&m.MetricType,
		&m.Value,
		&m.Category,
		&m.Description,
		&m.RecordedAt,
		&m.CreatedAt,
	)
	return m, err
}
