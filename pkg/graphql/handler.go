package graphql

import (
	"net/http"

	"github.com/de-tools/posture-atlas/pkg/handlers/respond"
	"github.com/de-tools/posture-atlas/pkg/models/api"
	"github.com/graphql-go/graphql"
	"github.com/rs/zerolog"
)

type Request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

type Handler struct {
	schema graphql.Schema
}

func NewHandler(schema graphql.Schema) *Handler {
	return &Handler{schema: schema}
}

// Query executes a GraphQL request. Resolver failures are reported in the
// result's errors list with status 200.
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := respond.Decode(r, &req); err != nil {
		respond.JSON(w, r, http.StatusBadRequest, api.ErrorResponse{Detail: "invalid request body"})
		return
	}

	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        r.Context(),
	})
	if result.HasErrors() {
		zerolog.Ctx(r.Context()).Warn().
			Str("operation", req.OperationName).
			Interface("errors", result.Errors).
			Msg("graphql query returned errors")
	}

	respond.JSON(w, r, http.StatusOK, result)
}
