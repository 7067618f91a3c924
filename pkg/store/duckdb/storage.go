package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/marcboeker/go-duckdb/v2"
	"github.com/rs/zerolog"
)

var VulnerabilitiesSchema = []string{
	`CREATE SEQUENCE IF NOT EXISTS vulnerabilities_id_seq START 1`,
	`CREATE TABLE IF NOT EXISTS vulnerabilities (
		id BIGINT PRIMARY KEY DEFAULT nextval('vulnerabilities_id_seq'),
		title VARCHAR NOT NULL,
		description VARCHAR,
		cve_id VARCHAR,
		cvss_score DOUBLE,
		severity VARCHAR NOT NULL,
		status VARCHAR NOT NULL DEFAULT 'open',
		asset_name VARCHAR,
		asset_type VARCHAR,
		source VARCHAR,
		discovered_at TIMESTAMP NOT NULL,
		resolved_at TIMESTAMP NULL,
		sla_deadline TIMESTAMP NULL,
		remediation_notes VARCHAR,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

var IncidentsSchema = []string{
	`CREATE SEQUENCE IF NOT EXISTS incidents_id_seq START 1`,
	`CREATE TABLE IF NOT EXISTS incidents (
		id BIGINT PRIMARY KEY DEFAULT nextval('incidents_id_seq'),
		title VARCHAR NOT NULL,
		description VARCHAR,
		incident_type VARCHAR NOT NULL,
		status VARCHAR NOT NULL DEFAULT 'detected',
		severity VARCHAR NOT NULL,
		detected_at TIMESTAMP NULL,
		contained_at TIMESTAMP NULL,
		resolved_at TIMESTAMP NULL,
		response_time_minutes BIGINT NULL,
		resolution_time_minutes BIGINT NULL,
		affected_assets VARCHAR,
		root_cause VARCHAR,
		lessons_learned VARCHAR,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

// Controls and assessments reference frameworks by id only; the cascade on
// framework delete is done by the compliance store inside one transaction.
var ComplianceSchema = []string{
	`CREATE SEQUENCE IF NOT EXISTS compliance_frameworks_id_seq START 1`,
	`CREATE TABLE IF NOT EXISTS compliance_frameworks (
		id BIGINT PRIMARY KEY DEFAULT nextval('compliance_frameworks_id_seq'),
		name VARCHAR NOT NULL UNIQUE,
		framework_type VARCHAR NOT NULL,
		version VARCHAR,
		description VARCHAR,
		overall_score DOUBLE NOT NULL DEFAULT 0,
		last_assessed_at TIMESTAMP NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE SEQUENCE IF NOT EXISTS compliance_controls_id_seq START 1`,
	`CREATE TABLE IF NOT EXISTS compliance_controls (
		id BIGINT PRIMARY KEY DEFAULT nextval('compliance_controls_id_seq'),
		framework_id BIGINT NOT NULL,
		control_id VARCHAR NOT NULL,
		title VARCHAR NOT NULL,
		description VARCHAR,
		status VARCHAR NOT NULL DEFAULT 'not_assessed',
		evidence VARCHAR,
		remediation_notes VARCHAR,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE SEQUENCE IF NOT EXISTS compliance_assessments_id_seq START 1`,
	`CREATE TABLE IF NOT EXISTS compliance_assessments (
		id BIGINT PRIMARY KEY DEFAULT nextval('compliance_assessments_id_seq'),
		framework_id BIGINT NOT NULL,
		assessed_at TIMESTAMP NOT NULL,
		overall_score DOUBLE NOT NULL,
		compliant_controls BIGINT NOT NULL DEFAULT 0,
		non_compliant_controls BIGINT NOT NULL DEFAULT 0,
		total_controls BIGINT NOT NULL DEFAULT 0,
		assessor_name VARCHAR,
		notes VARCHAR,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

var SecurityMetricsSchema = []string{
	`CREATE SEQUENCE IF NOT EXISTS security_metrics_id_seq START 1`,
	`CREATE TABLE IF NOT EXISTS security_metrics (
		id BIGINT PRIMARY KEY DEFAULT nextval('security_metrics_id_seq'),
		metric_type VARCHAR NOT NULL,
		value DOUBLE NOT NULL,
		category VARCHAR,
		description VARCHAR,
		recorded_at TIMESTAMP NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_security_metrics_type_recorded
		ON security_metrics(metric_type, recorded_at)`,
}

var bootQueries = [][]string{
	VulnerabilitiesSchema,
	IncidentsSchema,
	ComplianceSchema,
	SecurityMetricsSchema,
}

type Settings struct {
	DbPath string
	// ConnectMaxElapsed bounds the retry loop of NewDB. Zero means one minute.
	ConnectMaxElapsed time.Duration
}

func NewDB(ctx context.Context, settings Settings) (*sql.DB, error) {
	logger := zerolog.Ctx(ctx)

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxInterval = 5 * time.Second
	bo.MaxElapsedTime = settings.ConnectMaxElapsed
	if bo.MaxElapsedTime <= 0 {
		bo.MaxElapsedTime = time.Minute
	}

	var db *sql.DB
	err := backoff.RetryNotify(func() error {
		conn, err := open(settings.DbPath)
		if err != nil {
			return err
		}
		if err := conn.PingContext(ctx); err != nil {
			_ = conn.Close()
			return err
		}
		db = conn
		return nil
	}, bo, func(err error, wait time.Duration) {
		logger.Warn().
			Err(err).
			Str("path", settings.DbPath).
			Dur("retry_in", wait).
			Msg("failed to open database, retrying")
	})
	if err != nil {
		return nil, fmt.Errorf("open duckdb %q: %w", settings.DbPath, err)
	}

	return db, nil
}

func open(path string) (*sql.DB, error) {
	c, err := duckdb.NewConnector(dsn(path), func(exec driver.ExecerContext) error {
		for _, group := range bootQueries {
			for _, query := range group {
				_, err := exec.ExecContext(context.Background(), query, nil)
				if err != nil {
					return err
				}
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return sql.OpenDB(c), nil
}

func dsn(path string) string {
	if path == "" || path == ":memory:" {
		return "?threads=4"
	}
	if strings.Contains(path, "?") {
		return path
	}
	return fmt.Sprintf("%s?threads=4", path)
}
