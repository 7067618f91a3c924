package store

import (
	"database/sql"
	"time"
)

type Vulnerability struct {
	ID               int64
	Title            string
	Description      sql.NullString
	CVEID            sql.NullString
	CVSSScore        sql.NullFloat64
	Severity         string
	Status           string
	AssetName        sql.NullString
	AssetType        sql.NullString
	Source           sql.NullString
	DiscoveredAt     time.Time
	ResolvedAt       sql.NullTime
	SLADeadline      sql.NullTime
	RemediationNotes sql.NullString
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
