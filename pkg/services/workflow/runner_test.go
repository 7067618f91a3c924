package workflow

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/de-tools/posture-atlas/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAggregator struct {
	mock.Mock
}

func (m *mockAggregator) Posture(ctx context.Context) (domain.SecurityPosture, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.SecurityPosture), args.Error(1)
}

func (m *mockAggregator) Stats(ctx context.Context) (domain.DashboardStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.DashboardStats), args.Error(1)
}

type mockMetrics struct {
	mock.Mock
}

func (m *mockMetrics) Record(ctx context.Context, metric domain.SecurityMetric) (*domain.SecurityMetric, error) {
	args := m.Called(ctx, metric)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SecurityMetric), args.Error(1)
}

func (m *mockMetrics) List(ctx context.Context, filter domain.MetricFilter) ([]domain.SecurityMetric, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.SecurityMetric), args.Error(1)
}

func isType(typ domain.MetricType, value float64) interface{} {
	return mock.MatchedBy(func(m domain.SecurityMetric) bool {
		return m.Type == typ && m.Value == value
	})
}

func TestRunner_Snapshot(t *testing.T) {
	agg := new(mockAggregator)
	agg.On("Posture", mock.Anything).Return(domain.SecurityPosture{OpenVulnerabilities: 7, ActiveIncidents: 2}, nil)

	metrics := new(mockMetrics)
	metrics.On("Record", mock.Anything, isType(domain.MetricTypeVulnerabilityCount, 7)).
		Return(&domain.SecurityMetric{ID: 1}, nil)
	metrics.On("Record", mock.Anything, isType(domain.MetricTypeIncidentCount, 2)).
		Return(&domain.SecurityMetric{ID: 2}, nil)

	require.NoError(t, NewRunner(agg, metrics, time.Hour).Snapshot(context.Background()))
	metrics.AssertExpectations(t)
}

func TestRunner_SnapshotErrors(t *testing.T) {
	t.Run("posture", func(t *testing.T) {
		agg := new(mockAggregator)
		agg.On("Posture", mock.Anything).Return(domain.SecurityPosture{}, assert.AnError)
		metrics := new(mockMetrics)

		err := NewRunner(agg, metrics, time.Hour).Snapshot(context.Background())
		assert.ErrorIs(t, err, assert.AnError)
		metrics.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
	})

	t.Run("record", func(t *testing.T) {
		agg := new(mockAggregator)
		agg.On("Posture", mock.Anything).Return(domain.SecurityPosture{}, nil)
		metrics := new(mockMetrics)
		metrics.On("Record", mock.Anything, mock.Anything).Return(nil, assert.AnError).Once()

		err := NewRunner(agg, metrics, time.Hour).Snapshot(context.Background())
		assert.ErrorIs(t, err, assert.AnError)
		metrics.AssertNumberOfCalls(t, "Record", 1)
	})
}

func TestRunner_RunStopsOnCancel(t *testing.T) {
	agg := new(mockAggregator)
	agg.On("Posture", mock.Anything).Return(domain.SecurityPosture{}, nil)
	metrics := new(mockMetrics)
	var recorded atomic.Int32
	metrics.On("Record", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { recorded.Add(1) }).
		Return(&domain.SecurityMetric{}, nil)

	r := NewRunner(agg, metrics, 5*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	go r.Run(ctx)

	require.Eventually(t, func() bool {
		return recorded.Load() >= 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-r.Done():
	case <-time.After(time.Second):
		t.Fatal("runner did not stop")
	}
}
