package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/simaogato/planwise-backend/internal/domain"
)

// writeError maps domain errors onto HTTP statuses.
// Storage and unexpected failures are logged and answered with a generic 500.
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		Error(c, http.StatusBadRequest, "invalid input", map[string]any{"errors": verr.Fields})
	case errors.Is(err, domain.ErrUnauthorized):
		Error(c, http.StatusUnauthorized, "unauthorized", nil)
	case errors.Is(err, domain.ErrPlanNotFound):
		Error(c, http.StatusNotFound, "plan not found", nil)
	default:
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		Error(c, http.StatusInternalServerError, "internal server error", nil)
	}
}
