package store

import (
	"database/sql"
	"time"
)

type SecurityMetric struct {
	ID          int64
	MetricType  string
	Value       float64
	Category    sql.NullString
	Description sql.NullString
	RecordedAt  time.Time
	CreatedAt   time.Time
}
