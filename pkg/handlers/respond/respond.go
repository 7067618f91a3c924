package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/de-tools/posture-atlas/pkg/models/api"
	"github.com/de-tools/posture-atlas/pkg/models/domain"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

func JSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Error().
			Err(err).
			Msg("failed to encode response")
	}
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error writes err as {"detail": ...} with a status derived from its sentinel.
// Unclassified errors are logged and reported without internals.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusOf(err)
	detail := err.Error()
	if status == http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().
			Err(err).
			Msg("request failed")
		detail = http.StatusText(status)
	}
	JSON(w, r, status, api.ErrorResponse{Detail: detail})
}

func StatusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidValue):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func Decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed request body: %v", domain.ErrInvalidValue, err)
	}
	return nil
}

func ID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s %q is not a valid id", domain.ErrInvalidValue, name, raw)
	}
	return id, nil
}

// Page reads skip and limit from the query string, defaulting to the first page.
func Page(r *http.Request) (domain.Page, error) {
	page := domain.DefaultPage()
	q := r.URL.Query()

	if raw := q.Get("skip"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return page, fmt.Errorf("%w: skip %q", domain.ErrInvalidValue, raw)
		}
		page.Skip = v
	}
	if raw := q.Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return page, fmt.Errorf("%w: limit %q", domain.ErrInvalidValue, raw)
		}
		page.Limit = v
	}
	return page, page.Validate()
}

// Severity parses the optional severity query parameter.
func Severity(r *http.Request) (*domain.Severity, error) {
	raw := r.URL.Query().Get("severity")
	if raw == "" {
		return nil, nil
	}
	sev, err := domain.ParseSeverity(raw)
	if err != nil {
		return nil, err
	}
	return &sev, nil
}

// StatusParam returns the raw status filter. status_filter is accepted as an
// alias of status; status wins when both are set.
func StatusParam(r *http.Request) string {
	q := r.URL.Query()
	if raw := q.Get("status"); raw != "" {
		return raw
	}
	return q.Get("status_filter")
}
