package metric

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/de-tools/posture-atlas/pkg/models/api"
	"github.com/de-tools/posture-atlas/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) Record(ctx context.Context, metric domain.SecurityMetric) (*domain.SecurityMetric, error) {
	args := m.Called(ctx, metric)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SecurityMetric), args.Error(1)
}

func (m *mockService) List(ctx context.Context, filter domain.MetricFilter) ([]domain.SecurityMetric, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SecurityMetric), args.Error(1)
}

var recorded = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func TestHandler_List(t *testing.T) {
	score := domain.MetricTypeSecurityScore

	tests := []struct {
		name           string
		query          string
		setupMock      func(*mockService)
		expectedStatus int
	}{
		{
			name:  "filtered",
			query: "?metric_type=security_score&since=2025-06-01T00:00:00Z&limit=5",
			setupMock: func(m *mockService) {
				m.On("List", mock.Anything, domain.MetricFilter{Type: &score, Since: &recorded, Limit: 5}).
					Return([]domain.SecurityMetric{{ID: 1, Type: score, Value: 80, RecordedAt: recorded}}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "unknown type",
			query:          "?metric_type=mood",
			setupMock:      func(m *mockService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad since",
			query:          "?since=yesterday",
			setupMock:      func(m *mockService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad limit",
			query:          "?limit=-4",
			setupMock:      func(m *mockService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockService)
			tt.setupMock(svc)

			rec := httptest.NewRecorder()
			NewHandler(svc).List(rec, httptest.NewRequest(http.MethodGet, "/api/metrics"+tt.query, nil))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestHandler_Record(t *testing.T) {
	svc := new(mockService)
	svc.On("Record", mock.Anything, domain.SecurityMetric{
		Type:     domain.MetricTypeSecurityScore,
		Value:    88,
		Category: "weekly",
	}).Return(&domain.SecurityMetric{
		ID:         3,
		Type:       domain.MetricTypeSecurityScore,
		Value:      88,
		Category:   "weekly",
		RecordedAt: recorded,
	}, nil)

	rec := httptest.NewRecorder()
	NewHandler(svc).Record(rec, httptest.NewRequest(http.MethodPost, "/api/metrics",
		strings.NewReader(`{"metric_type":"security_score","value":88,"category":"weekly"}`)))

	assert.Equal(t, http.StatusCreated, rec.Code)
	var response api.SecurityMetric
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.Equal(t, int64(3), response.ID)
	assert.Equal(t, "security_score", response.MetricType)
	svc.AssertExpectations(t)
}
