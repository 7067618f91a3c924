package vulnerability

import (
	"net/http"

	"github.com/de-tools/posture-atlas/pkg/adapters"
	"github.com/de-tools/posture-atlas/pkg/handlers/respond"
	"github.com/de-tools/posture-atlas/pkg/models/api"
	"github.com/de-tools/posture-atlas/pkg/models/domain"
	"github.com/de-tools/posture-atlas/pkg/services/vulnerability"
)

type Handler struct {
	svc vulnerability.Service
}

func NewHandler(svc vulnerability.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	vulns, err := h.svc.List(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	response := make([]api.Vulnerability, 0, len(vulns))
	for _, v := range vulns {
		response = append(response, adapters.MapVulnerabilityDomainToApi(v))
	}
	respond.JSON(w, r, http.StatusOK, response)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	v, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, adapters.MapVulnerabilityDomainToApi(*v))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req api.VulnerabilityCreate
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	v, err := adapters.MapVulnerabilityCreateApiToDomain(req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	created, err := h.svc.Create(r.Context(), v)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusCreated, adapters.MapVulnerabilityDomainToApi(*created))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req api.VulnerabilityUpdate
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}
	upd, err := adapters.MapVulnerabilityUpdateApiToDomain(req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	v, err := h.svc.Update(r.Context(), id, upd)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, adapters.MapVulnerabilityDomainToApi(*v))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.NoContent(w)
}

func parseFilter(r *http.Request) (domain.VulnerabilityFilter, error) {
	page, err := respond.Page(r)
	if err != nil {
		return domain.VulnerabilityFilter{}, err
	}
	filter := domain.VulnerabilityFilter{Page: page}

	if filter.Severity, err = respond.Severity(r); err != nil {
		return domain.VulnerabilityFilter{}, err
	}
	if raw := respond.StatusParam(r); raw != "" {
		st, err := domain.ParseVulnerabilityStatus(raw)
		if err != nil {
			return domain.VulnerabilityFilter{}, err
		}
		filter.Status = &st
	}
	return filter, nil
}
