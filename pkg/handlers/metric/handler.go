package metric

import (
	"net/http"
	"strconv"
	"time"

	"github.com/de-tools/posture-atlas/pkg/adapters"
	"github.com/de-tools/posture-atlas/pkg/handlers/respond"
	"github.com/de-tools/posture-atlas/pkg/models/api"
	"github.com/de-tools/posture-atlas/pkg/models/domain"
	"github.com/de-tools/posture-atlas/pkg/services/metric"
)

type Handler struct {
	svc metric.Service
}

func NewHandler(svc metric.Service) *Handler {
	return &Handler{svc: svc}
}

// List accepts metric_type, since (RFC 3339) and limit.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filter domain.MetricFilter

	if raw := q.Get("metric_type"); raw != "" {
		typ, err := domain.ParseMetricType(raw)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		filter.Type = &typ
	}
	if raw := q.Get("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respond.JSON(w, r, http.StatusBadRequest, api.ErrorResponse{Detail: "since must be an RFC 3339 timestamp"})
			return
		}
		filter.Since = &since
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			respond.JSON(w, r, http.StatusBadRequest, api.ErrorResponse{Detail: "limit must be a positive integer"})
			return
		}
		filter.Limit = limit
	}

	metrics, err := h.svc.List(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	response := make([]api.SecurityMetric, 0, len(metrics))
	for _, m := range metrics {
		response = append(response, adapters.MapMetricDomainToApi(m))
	}
	respond.JSON(w, r, http.StatusOK, response)
}

func (h *Handler) Record(w http.ResponseWriter, r *http.Request) {
	var req api.SecurityMetricCreate
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	m, err := adapters.MapMetricCreateApiToDomain(req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	created, err := h.svc.Record(r.Context(), m)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusCreated, adapters.MapMetricDomainToApi(*created))
}
