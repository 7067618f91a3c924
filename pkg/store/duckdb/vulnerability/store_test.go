package vulnerability

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/de-tools/posture-atlas/pkg/models/domain"
	"github.com/de-tools/posture-atlas/pkg/store/duckdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	db    *sql.DB
	store Store
}

func setupFixture(t *testing.T) *fixture {
	db, err := duckdb.NewDB(context.Background(), duckdb.Settings{DbPath: ":memory:"})
	require.NoError(t, err)

	store, err := NewStore(db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return &fixture{
		db:    db,
		store: store,
	}
}

func newVulnerability(title string, sev domain.Severity, status domain.VulnerabilityStatus, discovered time.Time) *domain.Vulnerability {
	return &domain.Vulnerability{
		Title:        title,
		Severity:     sev,
		Status:       status,
		DiscoveredAt: discovered,
		CreatedAt:    discovered,
		UpdatedAt:    discovered,
	}
}

func TestNewStore(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := setupFixture(t)
		assert.NotNil(t, f.store)
	})

	t.Run("nil db", func(t *testing.T) {
		store, err := NewStore(nil)
		assert.Error(t, err)
		assert.Nil(t, store)
	})
}

func TestStore_CreateAndGet(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	score := 9.8

	v := newVulnerability("log4shell", domain.SeverityCritical, domain.VulnerabilityStatusOpen, now)
	v.CVEID = "CVE-2021-44228"
	v.CVSSScore = &score
	v.AssetName = "payments-api"

	require.NoError(t, f.store.Create(ctx, v))
	assert.NotZero(t, v.ID)

	got, err := f.store.Get(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "log4shell", got.Title)
	assert.Equal(t, "CVE-2021-44228", got.CVEID)
	require.NotNil(t, got.CVSSScore)
	assert.Equal(t, 9.8, *got.CVSSScore)
	assert.Equal(t, domain.SeverityCritical, got.Severity)
	assert.Equal(t, domain.VulnerabilityStatusOpen, got.Status)
	assert.Equal(t, now, got.DiscoveredAt)
	assert.Nil(t, got.ResolvedAt)
	assert.Empty(t, got.Description)

	t.Run("not found", func(t *testing.T) {
		_, err := f.store.Get(ctx, 9999)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestStore_List(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, f.store.Create(ctx, newVulnerability("a", domain.SeverityCritical, domain.VulnerabilityStatusOpen, base)))
	require.NoError(t, f.store.Create(ctx, newVulnerability("b", domain.SeverityHigh, domain.VulnerabilityStatusResolved, base.Add(time.Hour))))
	require.NoError(t, f.store.Create(ctx, newVulnerability("c", domain.SeverityCritical, domain.VulnerabilityStatusInProgress, base.Add(2*time.Hour))))

	t.Run("newest first", func(t *testing.T) {
		res, err := f.store.List(ctx, domain.VulnerabilityFilter{Page: domain.DefaultPage()})
		require.NoError(t, err)
		require.Len(t, res, 3)
		assert.Equal(t, "c", res[0].Title)
		assert.Equal(t, "a", res[2].Title)
	})

	t.Run("filter by severity", func(t *testing.T) {
		sev := domain.SeverityCritical
		res, err := f.store.List(ctx, domain.VulnerabilityFilter{Page: domain.DefaultPage(), Severity: &sev})
		require.NoError(t, err)
		assert.Len(t, res, 2)
	})

	t.Run("filter by status", func(t *testing.T) {
		st := domain.VulnerabilityStatusResolved
		res, err := f.store.List(ctx, domain.VulnerabilityFilter{Page: domain.DefaultPage(), Status: &st})
		require.NoError(t, err)
		require.Len(t, res, 1)
		assert.Equal(t, "b", res[0].Title)
	})

	t.Run("skip and limit", func(t *testing.T) {
		res, err := f.store.List(ctx, domain.VulnerabilityFilter{Page: domain.Page{Skip: 1, Limit: 1}})
		require.NoError(t, err)
		require.Len(t, res, 1)
		assert.Equal(t, "b", res[0].Title)
	})
}

func TestStore_UpdateAndDelete(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	v := newVulnerability("weak tls", domain.SeverityMedium, domain.VulnerabilityStatusOpen, now)
	require.NoError(t, f.store.Create(ctx, v))

	resolved := now.Add(48 * time.Hour)
	v.Status = domain.VulnerabilityStatusResolved
	v.ResolvedAt = &resolved
	v.RemediationNotes = "rotated certificates"
	v.UpdatedAt = resolved
	require.NoError(t, f.store.Update(ctx, v))

	got, err := f.store.Get(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.VulnerabilityStatusResolved, got.Status)
	require.NotNil(t, got.ResolvedAt)
	assert.Equal(t, resolved, *got.ResolvedAt)
	assert.Equal(t, "rotated certificates", got.RemediationNotes)

	require.NoError(t, f.store.Delete(ctx, v.ID))
	_, err = f.store.Get(ctx, v.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, f.store.Delete(ctx, v.ID), domain.ErrNotFound)

	missing := newVulnerability("ghost", domain.SeverityLow, domain.VulnerabilityStatusOpen, now)
	missing.ID = 4242
	assert.ErrorIs(t, f.store.Update(ctx, missing), domain.ErrNotFound)
}

func TestStore_Count(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	for _, v := range []*domain.Vulnerability{
		newVulnerability("1", domain.SeverityCritical, domain.VulnerabilityStatusOpen, now),
		newVulnerability("2", domain.SeverityCritical, domain.VulnerabilityStatusInProgress, now),
		newVulnerability("3", domain.SeverityCritical, domain.VulnerabilityStatusResolved, now),
		newVulnerability("4", domain.SeverityLow, domain.VulnerabilityStatusOpen, now),
	} {
		require.NoError(t, f.store.Create(ctx, v))
	}

	total, err := f.store.Count(ctx, domain.VulnerabilityCriteria{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)

	crit := domain.SeverityCritical
	openCritical, err := f.store.Count(ctx, domain.VulnerabilityCriteria{
		Severity: &crit,
		Statuses: domain.OpenVulnerabilityStatuses,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), openCritical)

	open, err := f.store.Count(ctx, domain.VulnerabilityCriteria{Statuses: domain.OpenVulnerabilityStatuses})
	require.NoError(t, err)
	assert.Equal(t, int64(3), open)
}
