package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/de-tools/posture-atlas/pkg/models/api"
	"github.com/de-tools/posture-atlas/pkg/models/domain"
	"github.com/de-tools/posture-atlas/pkg/services/registry"
	"github.com/de-tools/posture-atlas/pkg/store/duckdb"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupServer(t *testing.T) *httptest.Server {
	t.Helper()

	db, err := duckdb.NewDB(context.Background(), duckdb.Settings{DbPath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	reg, err := registry.New(db, domain.Config{
		Posture: domain.DefaultPostureSettings(),
		SLA:     domain.SLASettings{CriticalDays: 7},
	})
	require.NoError(t, err)

	router, err := ConfigureRouter(Config{
		AppName:     "Security Posture Atlas",
		Version:     "1.0.0",
		CORSOrigins: []string{"http://localhost:3000"},
		Dependencies: Dependencies{
			Vulnerabilities: reg.Vulnerabilities,
			Incidents:       reg.Incidents,
			Compliance:      reg.Compliance,
			Metrics:         reg.Metrics,
			Aggregator:      reg.Aggregator,
			Logger:          zerolog.New(zerolog.NewTestWriter(t)),
		},
	})
	require.NoError(t, err)

	testServer := httptest.NewServer(router)
	t.Cleanup(testServer.Close)
	return testServer
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err, "Failed to send request")
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "Failed to read response body")
	return resp.StatusCode, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

func TestWebAPI_Root(t *testing.T) {
	srv := setupServer(t)

	tests := []struct {
		name     string
		path     string
		expected map[string]string
	}{
		{"health", "/health", map[string]string{"status": "healthy"}},
		{"root", "/", map[string]string{"message": "Security Posture Atlas", "version": "1.0.0"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, body := do(t, srv, http.MethodGet, tc.path, "")
			assert.Equal(t, http.StatusOK, status)
			assert.Equal(t, tc.expected, decode[map[string]string](t, body))
		})
	}
}

func TestWebAPI_ComplianceScoring(t *testing.T) {
	srv := setupServer(t)

	status, body := do(t, srv, http.MethodPost, "/api/compliance/frameworks",
		`{"name":"ISO 27001","framework_type":"iso_27001","version":"2022"}`)
	require.Equal(t, http.StatusCreated, status, string(body))
	fw := decode[api.ComplianceFramework](t, body)
	assert.Equal(t, 0.0, fw.OverallScore)

	status, _ = do(t, srv, http.MethodPost, "/api/compliance/frameworks",
		`{"name":"ISO 27001","framework_type":"iso_27001"}`)
	assert.Equal(t, http.StatusConflict, status)

	controlsPath := fmt.Sprintf("/api/compliance/frameworks/%d/controls", fw.ID)
	status, _ = do(t, srv, http.MethodPost, controlsPath, `{"control_id":"A.5.1.1","title":"Policies","status":"compliant"}`)
	require.Equal(t, http.StatusCreated, status)
	status, body = do(t, srv, http.MethodPost, controlsPath, `{"control_id":"A.5.1.2","title":"Review","status":"non_compliant"}`)
	require.Equal(t, http.StatusCreated, status)
	second := decode[api.ComplianceControl](t, body)

	status, body = do(t, srv, http.MethodGet, fmt.Sprintf("/api/compliance/frameworks/%d", fw.ID), "")
	require.Equal(t, http.StatusOK, status)
	fw = decode[api.ComplianceFramework](t, body)
	assert.Equal(t, 50.0, fw.OverallScore)
	assert.Len(t, fw.Controls, 2)

	status, body = do(t, srv, http.MethodPatch, fmt.Sprintf("/api/compliance/controls/%d", second.ID),
		`{"status":"compliant","evidence":"signed review"}`)
	require.Equal(t, http.StatusOK, status, string(body))
	updated := decode[api.ComplianceControl](t, body)
	assert.Equal(t, fw.ID, updated.FrameworkID)
	assert.Equal(t, "signed review", updated.Evidence)

	status, body = do(t, srv, http.MethodGet, fmt.Sprintf("/api/compliance/frameworks/%d", fw.ID), "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 100.0, decode[api.ComplianceFramework](t, body).OverallScore)

	status, body = do(t, srv, http.MethodPost, fmt.Sprintf("/api/compliance/frameworks/%d/assess", fw.ID), "")
	require.Equal(t, http.StatusCreated, status, string(body))
	assessment := decode[api.ComplianceAssessment](t, body)
	assert.Equal(t, 2, assessment.TotalControls)
	assert.Equal(t, 2, assessment.CompliantControls)

	status, body = do(t, srv, http.MethodGet, fmt.Sprintf("/api/compliance/frameworks/%d/assessments", fw.ID), "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]api.ComplianceAssessment](t, body), 1)

	status, _ = do(t, srv, http.MethodDelete, fmt.Sprintf("/api/compliance/frameworks/%d", fw.ID), "")
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = do(t, srv, http.MethodGet, controlsPath, "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestWebAPI_ConcurrentControlUpdates(t *testing.T) {
	srv := setupServer(t)

	status, body := do(t, srv, http.MethodPost, "/api/compliance/frameworks",
		`{"name":"PCI DSS","framework_type":"pci_dss","version":"4.0"}`)
	require.Equal(t, http.StatusCreated, status, string(body))
	fw := decode[api.ComplianceFramework](t, body)

	const n = 20
	ids := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		status, body = do(t, srv, http.MethodPost, fmt.Sprintf("/api/compliance/frameworks/%d/controls", fw.ID),
			fmt.Sprintf(`{"control_id":"REQ-%d","title":"Requirement %d","status":"non_compliant"}`, i, i))
		require.Equal(t, http.StatusCreated, status, string(body))
		ids = append(ids, decode[api.ComplianceControl](t, body).ID)
	}

	statuses := make([]int, n)
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id int64) {
			defer wg.Done()
			req, err := http.NewRequest(http.MethodPatch, fmt.Sprintf("%s/api/compliance/controls/%d", srv.URL, id),
				strings.NewReader(`{"status":"compliant"}`))
			if err != nil {
				return
			}
			req.Header.Set("Content-Type", "application/json")
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return
			}
			defer resp.Body.Close()
			_, _ = io.Copy(io.Discard, resp.Body)
			statuses[i] = resp.StatusCode
		}(i, id)
	}
	wg.Wait()

	for i, st := range statuses {
		assert.Equal(t, http.StatusOK, st, "control %d", ids[i])
	}

	status, body = do(t, srv, http.MethodGet, fmt.Sprintf("/api/compliance/frameworks/%d", fw.ID), "")
	require.Equal(t, http.StatusOK, status)
	fw = decode[api.ComplianceFramework](t, body)
	assert.Equal(t, 100.0, fw.OverallScore)
	for _, c := range fw.Controls {
		assert.Equal(t, "compliant", c.Status)
	}
}

func TestWebAPI_IncidentTiming(t *testing.T) {
	srv := setupServer(t)

	status, body := do(t, srv, http.MethodPost, "/api/incidents",
		`{"title":"ransomware on build host","incident_type":"malware","severity":"critical"}`)
	require.Equal(t, http.StatusCreated, status, string(body))
	inc := decode[api.Incident](t, body)
	require.NotNil(t, inc.DetectedAt)
	assert.Equal(t, "detected", inc.Status)

	contained := inc.DetectedAt.Add(90 * time.Minute).Format(time.RFC3339Nano)
	status, body = do(t, srv, http.MethodPatch, fmt.Sprintf("/api/incidents/%d", inc.ID),
		fmt.Sprintf(`{"status":"contained","contained_at":%q}`, contained))
	require.Equal(t, http.StatusOK, status, string(body))
	inc = decode[api.Incident](t, body)
	require.NotNil(t, inc.ResponseTimeMinutes)
	assert.Equal(t, int64(90), *inc.ResponseTimeMinutes)
	assert.Nil(t, inc.ResolutionTimeMinutes)

	status, body = do(t, srv, http.MethodGet, "/api/incidents?status=contained", "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]api.Incident](t, body), 1)

	status, _ = do(t, srv, http.MethodGet, "/api/incidents?status=archived", "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestWebAPI_Dashboard(t *testing.T) {
	srv := setupServer(t)

	status, body := do(t, srv, http.MethodGet, "/api/dashboard/posture", "")
	require.Equal(t, http.StatusOK, status)
	posture := decode[api.SecurityPosture](t, body)
	assert.Equal(t, 75.0, posture.OverallScore)
	assert.Equal(t, "medium", posture.RiskLevel)
	assert.Equal(t, int64(0), posture.CriticalAlerts)

	status, body = do(t, srv, http.MethodPost, "/api/vulnerabilities",
		`{"title":"OpenSSL RCE","cve_id":"CVE-2024-0001","cvss_score":9.8,"severity":"critical"}`)
	require.Equal(t, http.StatusCreated, status, string(body))
	vuln := decode[api.Vulnerability](t, body)
	assert.NotNil(t, vuln.SLADeadline)

	status, _ = do(t, srv, http.MethodPost, "/api/incidents",
		`{"title":"exfiltration","incident_type":"data_breach","severity":"critical"}`)
	require.Equal(t, http.StatusCreated, status)

	status, _ = do(t, srv, http.MethodPost, "/api/metrics", `{"metric_type":"security_score","value":91}`)
	require.Equal(t, http.StatusCreated, status)

	status, body = do(t, srv, http.MethodGet, "/api/dashboard/posture", "")
	require.Equal(t, http.StatusOK, status)
	posture = decode[api.SecurityPosture](t, body)
	assert.Equal(t, 91.0, posture.OverallScore)
	assert.Equal(t, "low", posture.RiskLevel)
	assert.Equal(t, int64(2), posture.CriticalAlerts)
	assert.Equal(t, int64(1), posture.OpenVulnerabilities)
	assert.Equal(t, int64(1), posture.ActiveIncidents)
	assert.Len(t, posture.TrendData, 1)

	status, body = do(t, srv, http.MethodGet, "/api/dashboard/stats", "")
	require.Equal(t, http.StatusOK, status)
	stats := decode[api.DashboardStats](t, body)
	assert.Equal(t, int64(1), stats.TotalVulnerabilities)
	assert.Equal(t, int64(1), stats.CriticalIncidents)

	status, body = do(t, srv, http.MethodPost, "/api/graphql", `{"query":"{ posture { risk_level critical_alerts } }"}`)
	require.Equal(t, http.StatusOK, status)
	gql := decode[struct {
		Data struct {
			Posture struct {
				RiskLevel      string `json:"risk_level"`
				CriticalAlerts int64  `json:"critical_alerts"`
			} `json:"posture"`
		} `json:"data"`
	}](t, body)
	assert.Equal(t, "low", gql.Data.Posture.RiskLevel)
	assert.Equal(t, int64(2), gql.Data.Posture.CriticalAlerts)
}

func TestWebAPI_ClosedIncidentCountsAsActive(t *testing.T) {
	srv := setupServer(t)

	status, body := do(t, srv, http.MethodPost, "/api/incidents",
		`{"title":"credential stuffing","incident_type":"unauthorized_access","severity":"critical"}`)
	require.Equal(t, http.StatusCreated, status, string(body))
	closed := decode[api.Incident](t, body)

	status, body = do(t, srv, http.MethodPatch, fmt.Sprintf("/api/incidents/%d", closed.ID), `{"status":"closed"}`)
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, "closed", decode[api.Incident](t, body).Status)

	status, body = do(t, srv, http.MethodPost, "/api/incidents",
		`{"title":"phishing wave","incident_type":"phishing","severity":"critical"}`)
	require.Equal(t, http.StatusCreated, status, string(body))
	resolved := decode[api.Incident](t, body)

	status, body = do(t, srv, http.MethodPatch, fmt.Sprintf("/api/incidents/%d", resolved.ID), `{"status":"resolved"}`)
	require.Equal(t, http.StatusOK, status, string(body))

	status, body = do(t, srv, http.MethodGet, "/api/dashboard/posture", "")
	require.Equal(t, http.StatusOK, status)
	posture := decode[api.SecurityPosture](t, body)
	assert.Equal(t, int64(1), posture.ActiveIncidents)
	assert.Equal(t, int64(1), posture.CriticalAlerts)

	status, body = do(t, srv, http.MethodGet, "/api/incidents?status_filter=closed", "")
	require.Equal(t, http.StatusOK, status)
	listed := decode[[]api.Incident](t, body)
	require.Len(t, listed, 1)
	assert.Equal(t, closed.ID, listed[0].ID)
}

func TestWebAPI_Errors(t *testing.T) {
	srv := setupServer(t)

	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		expectedStatus int
	}{
		{"missing vulnerability", http.MethodGet, "/api/vulnerabilities/999", "", http.StatusNotFound},
		{"bad id", http.MethodGet, "/api/vulnerabilities/abc", "", http.StatusBadRequest},
		{"bad json", http.MethodPost, "/api/incidents", "{", http.StatusBadRequest},
		{"limit too large", http.MethodGet, "/api/vulnerabilities?limit=5000", "", http.StatusBadRequest},
		{"negative skip", http.MethodGet, "/api/incidents?skip=-1", "", http.StatusBadRequest},
		{"cvss out of range", http.MethodPost, "/api/vulnerabilities", `{"title":"x","severity":"low","cvss_score":11}`, http.StatusBadRequest},
		{"assessment for missing framework", http.MethodPost, "/api/compliance/assessments", `{"framework_id":42,"overall_score":10}`, http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, body := do(t, srv, tc.method, tc.path, tc.body)
			assert.Equal(t, tc.expectedStatus, status)
			assert.NotEmpty(t, decode[api.ErrorResponse](t, body).Detail)
		})
	}
}

func TestWebAPI_CORS(t *testing.T) {
	srv := setupServer(t)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/metrics", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
}
