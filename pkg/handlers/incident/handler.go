package incident

import (
	"net/http"

	"github.com/de-tools/posture-atlas/pkg/adapters"
	"github.com/de-tools/posture-atlas/pkg/handlers/respond"
	"github.com/de-tools/posture-atlas/pkg/models/api"
	"github.com/de-tools/posture-atlas/pkg/models/domain"
	"github.com/de-tools/posture-atlas/pkg/services/incident"
)

type Handler struct {
	svc incident.Service
}

func NewHandler(svc incident.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	incidents, err := h.svc.List(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	response := make([]api.Incident, 0, len(incidents))
	for _, inc := range incidents {
		response = append(response, adapters.MapIncidentDomainToApi(inc))
	}
	respond.JSON(w, r, http.StatusOK, response)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	inc, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, adapters.MapIncidentDomainToApi(*inc))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req api.IncidentCreate
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	inc, err := adapters.MapIncidentCreateApiToDomain(req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	created, err := h.svc.Create(r.Context(), inc)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusCreated, adapters.MapIncidentDomainToApi(*created))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req api.IncidentUpdate
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}
	upd, err := adapters.MapIncidentUpdateApiToDomain(req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	inc, err := h.svc.Update(r.Context(), id, upd)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, adapters.MapIncidentDomainToApi(*inc))
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

func parseFilter(r *http.Request) (domain.IncidentFilter, error) {
	page, err := respond.Page(r)
	if err != nil {
		return domain.IncidentFilter{}, err
	}
	filter := domain.IncidentFilter{Page: page}

	if filter.Severity, err = respond.Severity(r); err != nil {
		return domain.IncidentFilter{}, err
	}
	if raw := respond.StatusParam(r); raw != "" {
		st, err := domain.ParseIncidentStatus(raw)
		if err != nil {
			return domain.IncidentFilter{}, err
		}
		filter.Status = &st
	}
	return filter, nil
}
