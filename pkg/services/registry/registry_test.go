package registry

import (
	"context"
	"testing"

	"github.com/de-tools/posture-atlas/pkg/models/domain"
	"github.com/de-tools/posture-atlas/pkg/store/duckdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_NilDatabase(t *testing.T) {
	_, err := New(nil, domain.Config{})
	assert.Error(t, err)
}

func TestNew_Wires(t *testing.T) {
	db, err := duckdb.NewDB(context.Background(), duckdb.Settings{DbPath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	reg, err := New(db, domain.Config{Posture: domain.DefaultPostureSettings()})
	require.NoError(t, err)

	p, err := reg.Aggregator.Posture(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 75.0, p.OverallScore)
	assert.Equal(t, domain.RiskLevelMedium, p.RiskLevel)
	assert.Equal(t, 0.0, p.ComplianceScore)
	assert.Empty(t, p.TrendData)
}
