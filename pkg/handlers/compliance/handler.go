package compliance

import (
	"net/http"

	"github.com/de-tools/posture-atlas/pkg/adapters"
	"github.com/de-tools/posture-atlas/pkg/handlers/respond"
	"github.com/de-tools/posture-atlas/pkg/models/api"
	"github.com/de-tools/posture-atlas/pkg/services/compliance"
)

type Handler struct {
	svc compliance.Service
}

func NewHandler(svc compliance.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) ListFrameworks(w http.ResponseWriter, r *http.Request) {
	frameworks, err := h.svc.ListFrameworks(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	response := make([]api.ComplianceFramework, 0, len(frameworks))
	for _, f := range frameworks {
		response = append(response, adapters.MapFrameworkDomainToApi(f))
	}
	respond.JSON(w, r, http.StatusOK, response)
}

func (h *Handler) GetFramework(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	f, err := h.svc.GetFramework(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, adapters.MapFrameworkDomainToApi(*f))
}

func (h *Handler) CreateFramework(w http.ResponseWriter, r *http.Request) {
	var req api.ComplianceFrameworkCreate
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	f, err := adapters.MapFrameworkCreateApiToDomain(req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	created, err := h.svc.CreateFramework(r.Context(), f)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusCreated, adapters.MapFrameworkDomainToApi(*created))
}

func (h *Handler) DeleteFramework(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.svc.DeleteFramework(r.Context(), id); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.NoContent(w)
}

func (h *Handler) ListControls(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	controls, err := h.svc.ListControls(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, adapters.MapControlsDomainToApi(controls))
}

func (h *Handler) CreateControl(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req api.ComplianceControlCreate
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}
	c, err := adapters.MapControlCreateApiToDomain(id, req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	created, err := h.svc.CreateControl(r.Context(), c)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusCreated, adapters.MapControlDomainToApi(*created))
}

func (h *Handler) UpdateControl(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req api.ComplianceControlUpdate
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}
	upd, err := adapters.MapControlUpdateApiToDomain(req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	c, err := h.svc.UpdateControl(r.Context(), id, upd)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, adapters.MapControlDomainToApi(*c))
}

func (h *Handler) CreateAssessment(w http.ResponseWriter, r *http.Request) {
	var req api.ComplianceAssessmentCreate
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	a, err := adapters.MapAssessmentCreateApiToDomain(req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	created, err := h.svc.CreateAssessment(r.Context(), a)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusCreated, adapters.MapAssessmentDomainToApi(*created))
}

func (h *Handler) ListAssessments(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	assessments, err := h.svc.ListAssessments(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	response := make([]api.ComplianceAssessment, 0, len(assessments))
	for _, a := range assessments {
		response = append(response, adapters.MapAssessmentDomainToApi(a))
	}
	respond.JSON(w, r, http.StatusOK, response)
}

// Assess scores the framework from its current controls. The body is optional.
func (h *Handler) Assess(w http.ResponseWriter, r *http.Request) {
	id, err := respond.ID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req api.AssessRequest
	if r.ContentLength != 0 {
		if err := respond.Decode(r, &req); err != nil {
			respond.Error(w, r, err)
			return
		}
	}

	a, err := h.svc.AssessFramework(r.Context(), id, req.AssessorName, req.Notes)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusCreated, adapters.MapAssessmentDomainToApi(*a))
}
