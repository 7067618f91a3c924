package adapters

import (
	"fmt"

	"github.com/de-tools/posture-atlas/pkg/models/api"
	"github.com/de-tools/posture-atlas/pkg/models/domain"
	"github.com/de-tools/posture-atlas/pkg/models/store"
)

func MapStoreMetricToDomain(m store.SecurityMetric) (domain.SecurityMetric, error) {
	typ, err := domain.ParseMetricType(m.MetricType)
	if err != nil {
		return domain.SecurityMetric{}, fmt.Errorf("metric %d: %w", m.ID, err)
	}
	return domain.SecurityMetric{
		ID:          m.ID,
		Type:        typ,
		Value:       m.Value,
		Category:    m.Category.String,
		Description: m.Description.String,
		RecordedAt:  m.RecordedAt.UTC(),
		CreatedAt:   m.CreatedAt.UTC(),
	}, nil
}

func MapDomainMetricToStore(m domain.SecurityMetric) store.SecurityMetric {
	return store.SecurityMetric{
		ID:          m.ID,
		MetricType:  string(m.Type),
		Value:       m.Value,
		Category:    nullString(m.Category),
		Description: nullString(m.Description),
		RecordedAt:  m.RecordedAt.UTC(),
		CreatedAt:   m.CreatedAt.UTC(),
	}
}

func MapMetricDomainToApi(m domain.SecurityMetric) api.SecurityMetric {
	return api.SecurityMetric{
		ID:          m.ID,
		MetricType:  string(m.Type),
		Value:       m.Value,
		Category:    m.Category,
		Description: m.Description,
		RecordedAt:  m.RecordedAt,
	}
}

func MapMetricCreateApiToDomain(c api.SecurityMetricCreate) (domain.SecurityMetric, error) {
	typ, err := domain.ParseMetricType(c.MetricType)
	if err != nil {
		return domain.SecurityMetric{}, err
	}
	m := domain.SecurityMetric{
		Type:        typ,
		Value:       c.Value,
		Category:    c.Category,
		Description: c.Description,
	}
	if c.RecordedAt != nil {
		m.RecordedAt = c.RecordedAt.UTC()
	}
	return m, nil
}
