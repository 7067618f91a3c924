package incident

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/de-tools/posture-atlas/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cols = []string{
	"id", "title", "description", "incident_type", "status", "severity",
	"detected_at", "contained_at", "resolved_at", "response_time_minutes",
	"resolution_time_minutes", "affected_assets", "root_cause", "lessons_learned",
	"created_at", "updated_at",
}

func TestStore_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s, err := NewStore(db)
	require.NoError(t, err)

	detected := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	contained := detected.Add(90 * time.Minute)

	mock.ExpectQuery(`FROM incidents WHERE id = \?`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(
			int64(7), "ransomware on file server", nil, "malware", "contained", "critical",
			detected, contained, nil, int64(90),
			nil, "fs-01", nil, nil,
			detected, contained,
		))

	inc, err := s.Get(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, domain.IncidentTypeMalware, inc.Type)
	assert.Equal(t, domain.IncidentStatusContained, inc.Status)
	require.NotNil(t, inc.DetectedAt)
	assert.Equal(t, detected, *inc.DetectedAt)
	require.NotNil(t, inc.ResponseTimeMinutes)
	assert.Equal(t, int64(90), *inc.ResponseTimeMinutes)
	assert.Nil(t, inc.ResolutionTimeMinutes)
	assert.Equal(t, "fs-01", inc.AffectedAssets)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Get_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s, err := NewStore(db)
	require.NoError(t, err)

	mock.ExpectQuery(`FROM incidents WHERE id = \?`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(cols))

	_, err = s.Get(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Get_RejectsUnknownStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s, err := NewStore(db)
	require.NoError(t, err)

	now := time.Now().UTC()
	mock.ExpectQuery(`FROM incidents WHERE id = \?`).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(
			int64(2), "x", nil, "phishing", "escalated", "low",
			now, nil, nil, nil, nil, nil, nil, nil, now, now,
		))

	_, err = s.Get(context.Background(), 2)
	assert.ErrorIs(t, err, domain.ErrInvalidValue)
}

func TestStore_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s, err := NewStore(db)
	require.NoError(t, err)

	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM incidents WHERE status = \? AND severity = \? ORDER BY detected_at DESC NULLS LAST, id DESC LIMIT \? OFFSET \?`).
		WithArgs("investigating", "high", 10, 20).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(
			int64(3), "phish", nil, "phishing", "investigating", "high",
			now, nil, nil, nil, nil, nil, nil, nil, now, now,
		))

	st := domain.IncidentStatusInvestigating
	sev := domain.SeverityHigh
	res, err := s.List(context.Background(), domain.IncidentFilter{
		Page:     domain.Page{Skip: 20, Limit: 10},
		Status:   &st,
		Severity: &sev,
	})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, int64(3), res[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s, err := NewStore(db)
	require.NoError(t, err)

	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`INSERT INTO incidents`).
		WithArgs("ddos", nil, "ddos", "detected", "high", now, nil, now, now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))

	inc := &domain.Incident{
		Title:      "ddos",
		Type:       domain.IncidentTypeDDoS,
		Status:     domain.IncidentStatusDetected,
		Severity:   domain.SeverityHigh,
		DetectedAt: &now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, s.Create(context.Background(), inc))
	assert.Equal(t, int64(11), inc.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s, err := NewStore(db)
	require.NoError(t, err)

	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	resolved := now.Add(time.Hour)
	minutes := int64(60)

	mock.ExpectExec(`UPDATE incidents SET`).
		WithArgs("resolved", nil, resolved, nil, minutes, "misconfigured firewall", nil, resolved, int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE incidents SET`).
		WithArgs("resolved", nil, resolved, nil, minutes, "misconfigured firewall", nil, resolved, int64(6)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	inc := &domain.Incident{
		ID:                    5,
		Status:                domain.IncidentStatusResolved,
		DetectedAt:            &now,
		ResolvedAt:            &resolved,
		ResolutionTimeMinutes: &minutes,
		RootCause:             "misconfigured firewall",
		UpdatedAt:             resolved,
	}
	require.NoError(t, s.Update(context.Background(), inc))

	inc.ID = 6
	assert.ErrorIs(t, s.Update(context.Background(), inc), domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Count(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s, err := NewStore(db)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM incidents WHERE severity = \? AND status NOT IN \(\?\)`).
		WithArgs("critical", "resolved").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(4)))

	crit := domain.SeverityCritical
	n, err := s.Count(context.Background(), domain.IncidentCriteria{
		Severity:        &crit,
		ExcludeStatuses: []domain.IncidentStatus{domain.IncidentStatusResolved},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s, err := NewStore(db)
	require.NoError(t, err)

	mock.ExpectExec(`DELETE FROM incidents WHERE id = \?`).
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, s.Delete(context.Background(), 9), domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
