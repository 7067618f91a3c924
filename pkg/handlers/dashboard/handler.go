package dashboard

import (
	"net/http"

	"github.com/de-tools/posture-atlas/pkg/adapters"
	"github.com/de-tools/posture-atlas/pkg/handlers/respond"
	"github.com/de-tools/posture-atlas/pkg/services/posture"
)

type Handler struct {
	aggregator posture.Aggregator
}

func NewHandler(aggregator posture.Aggregator) *Handler {
	return &Handler{aggregator: aggregator}
}

func (h *Handler) Posture(w http.ResponseWriter, r *http.Request) {
	p, err := h.aggregator.Posture(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, adapters.MapPostureDomainToApi(p))
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	s, err := h.aggregator.Stats(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, adapters.MapStatsDomainToApi(s))
}
