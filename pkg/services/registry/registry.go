// Package registry assembles the stores and services that share one database.
package registry

import (
	"database/sql"
	"fmt"

	"github.com/de-tools/posture-atlas/pkg/models/domain"
	"github.com/de-tools/posture-atlas/pkg/services/compliance"
	"github.com/de-tools/posture-atlas/pkg/services/incident"
	"github.com/de-tools/posture-atlas/pkg/services/metric"
	"github.com/de-tools/posture-atlas/pkg/services/posture"
	"github.com/de-tools/posture-atlas/pkg/services/vulnerability"
	"github.com/de-tools/posture-atlas/pkg/store/duckdb"
	duckdbcompliance "github.com/de-tools/posture-atlas/pkg/store/duckdb/compliance"
	duckdbincident "github.com/de-tools/posture-atlas/pkg/store/duckdb/incident"
	duckdbmetric "github.com/de-tools/posture-atlas/pkg/store/duckdb/metric"
	duckdbvulnerability "github.com/de-tools/posture-atlas/pkg/store/duckdb/vulnerability"
)

type Registry struct {
	Vulnerabilities vulnerability.Service
	Incidents       incident.Service
	Compliance      compliance.Service
	Metrics         metric.Service
	Aggregator      posture.Aggregator
}

func New(db *sql.DB, cfg domain.Config, opts ...posture.Option) (*Registry, error) {
	vulnStore, err := duckdbvulnerability.NewStore(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create vulnerability store: %w", err)
	}
	incidentStore, err := duckdbincident.NewStore(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create incident store: %w", err)
	}
	complianceStore, err := duckdbcompliance.NewStore(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create compliance store: %w", err)
	}
	metricStore, err := duckdbmetric.NewStore(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create metric store: %w", err)
	}

	tx := duckdb.NewTransactor(db)

	return &Registry{
		Vulnerabilities: vulnerability.NewService(vulnStore, tx, cfg.SLA),
		Incidents:       incident.NewService(incidentStore, tx),
		Compliance:      compliance.NewService(complianceStore, tx),
		Metrics:         metric.NewService(metricStore),
		Aggregator:      posture.NewAggregator(vulnStore, incidentStore, complianceStore, metricStore, cfg.Posture, opts...),
	}, nil
}
