package api

import "time"

type SecurityMetric struct {
	ID          int64     `json:"id"`
	MetricType  string    `json:"metric_type"`
	Value       float64   `json:"value"`
	Category    string    `json:"category,omitempty"`
	Description string    `json:"description,omitempty"`
	RecordedAt  time.Time `json:"recorded_at"`
}

type SecurityMetricCreate struct {
	MetricType  string     `json:"metric_type"`
	Value       float64    `json:"value"`
	Category    string     `json:"category"`
	Description string     `json:"description"`
	RecordedAt  *time.Time `json:"recorded_at"`
}
