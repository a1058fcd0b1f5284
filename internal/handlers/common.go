package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/norsk-prova/quiz-session-service/internal/services"
	"github.com/norsk-prova/quiz-session-service/internal/utils"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides common logging and error mapping for all handlers.
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) LogRequest(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := []interface{}{
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"remote_addr", c.ClientIP(),
	}
	fields = append(fields, additionalFields...)
	h.logger.Info(message, fields...)
}

func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	fields := []interface{}{
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	}
	fields = append(fields, additionalFields...)
	h.logger.LogError(err, message, fields...)
}

// handleServiceError maps service errors onto HTTP status codes.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	switch {
	case services.IsLoadError(err):
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Message: "Failed to load question set",
			Details: err.Error(),
			Code:    "load_error",
		})
	case errors.Is(err, services.ErrSetNotLoaded):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "No question set is loaded",
			Code:    "set_not_loaded",
		})
	case services.IsTerminal(err):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Session already finished",
			Code:    "session_finished",
		})
	case errors.Is(err, services.ErrFieldsIncomplete):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: "All sub-fields must be answered before continuing",
			Code:    "fields_incomplete",
		})
	case errors.Is(err, services.ErrUnknownQuestion):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Question not found in the loaded set",
			Code:    "unknown_question",
		})
	default:
		h.LogError(c, err, "Unhandled service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}

// HealthCheck responds to liveness probes.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
