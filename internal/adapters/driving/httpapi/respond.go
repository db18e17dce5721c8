package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/teamhub/internal/core/domain"
	"github.com/custodia-labs/teamhub/internal/logger"
)

// errorBody is the error half of the response envelope. Fields is present
// only for validation failures and lists every violated rule.
type errorBody struct {
	Kind    string              `json:"kind"`
	Message string              `json:"message"`
	Fields  []domain.FieldError `json:"fields,omitempty"`
}

// respond writes the success envelope.
func respond(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

// respondError maps a service error to its status and kind exactly once, at
// the boundary. Unrecognised errors are logged and reported as a generic
// service error so internals never leak to clients.
func respondError(c *gin.Context, err error) {
	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		writeError(c, http.StatusUnprocessableEntity, errorBody{
			Kind:    "invalid_input",
			Message: "validation failed",
			Fields:  vErr.Fields,
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(c, http.StatusBadRequest, errorBody{Kind: "invalid_input", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		writeError(c, http.StatusNotFound, errorBody{Kind: "not_found", Message: err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(c, http.StatusUnauthorized, errorBody{Kind: "unauthorized", Message: "authentication required"})
	case errors.Is(err, domain.ErrForbidden):
		writeError(c, http.StatusForbidden, errorBody{Kind: "forbidden", Message: "not allowed"})
	case errors.Is(err, domain.ErrAlreadyExists):
		writeError(c, http.StatusConflict, errorBody{Kind: "already_exists", Message: err.Error()})
	case errors.Is(err, domain.ErrServiceUnavailable):
		logger.Error("upstream failure", "path", c.FullPath(), "error", err)
		writeError(c, http.StatusBadGateway, errorBody{Kind: "service_error", Message: "upstream service failed"})
	default:
		logger.Error("request failed", "path", c.FullPath(), "error", err)
		writeError(c, http.StatusInternalServerError, errorBody{Kind: "service_error", Message: "internal error"})
	}
}

func writeError(c *gin.Context, status int, body errorBody) {
	c.JSON(status, gin.H{"success": false, "error": body})
}
