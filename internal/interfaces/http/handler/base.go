package handler

import (
	"errors"
	"net/http"

	"github.com/erp/pricing/internal/domain/shared"
	"github.com/erp/pricing/internal/infrastructure/logger"
	"github.com/erp/pricing/internal/interfaces/http/dto"
	"github.com/erp/pricing/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BaseHandler writes the response envelope shared by every pricing endpoint
type BaseHandler struct{}

func getRequestID(c *gin.Context) string {
	return middleware.GetRequestID(c)
}

// Success answers 200 with data in the envelope
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// ValidationError answers 400 with per-field details
func (h *BaseHandler) ValidationError(c *gin.Context, details []dto.ValidationDetail) {
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse("Request validation failed", getRequestID(c), details))
}

// HandleError answers a failed service call. Domain errors keep their
// message and get the status of their normalized code; anything else is
// logged and hidden behind a generic 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)

	code, message := dto.ErrCodeInternal, "An unexpected error occurred"
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code, message = dto.NormalizeErrorCode(domainErr.Code), domainErr.Message
	} else {
		logger.GetGinLogger(c).Error("Unhandled error", zap.Error(err))
	}
	c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

var errNilUUID = errors.New("nil UUID is not a valid identifier")

// parseOptionalUUID parses an optional UUID query parameter. The nil UUID
// is rejected; it would otherwise read as "dimension not set".
func parseOptionalUUID(raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, err
	}
	if id == uuid.Nil {
		return nil, errNilUUID
	}
	return &id, nil
}
