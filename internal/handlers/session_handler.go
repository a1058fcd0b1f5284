package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/norsk-prova/quiz-session-service/internal/events"
	"github.com/norsk-prova/quiz-session-service/internal/models"
	"github.com/norsk-prova/quiz-session-service/internal/services"
	"github.com/norsk-prova/quiz-session-service/internal/utils"
)

// SessionHandler is the HTTP boundary the rendering collaborators talk to.
// It owns no quiz logic; every decision is delegated to the session store
// and the navigation controller.
type SessionHandler struct {
	BaseHandler
	session   services.SessionService
	nav       *services.NavigationController
	countdown *services.Countdown
	publisher events.EventPublisher
	validator *utils.Validator
}

func NewSessionHandler(
	session services.SessionService,
	nav *services.NavigationController,
	countdown *services.Countdown,
	publisher events.EventPublisher,
	validator *utils.Validator,
	logger utils.Logger,
) *SessionHandler {
	return &SessionHandler{
		BaseHandler: NewBaseHandler(logger),
		session:     session,
		nav:         nav,
		countdown:   countdown,
		publisher:   publisher,
		validator:   validator,
	}
}

// ===== REQUEST STRUCTURES =====

type LoadSetRequest struct {
	Mode string `json:"mode" validate:"omitempty,session_mode"`
}

type SubmitAnswerRequest struct {
	Identity     int    `json:"identity" validate:"required,min=1"`
	EncodedValue string `json:"encoded_value" validate:"required"`
}

type RegionClickAnswerRequest struct {
	Identity int                         `json:"identity" validate:"required,min=1"`
	Click    services.RegionClickRequest `json:"click" validate:"required"`
}

type SetPositionRequest struct {
	Position int `json:"position" validate:"required,min=1"`
}

type SetDeadlineRequest struct {
	// Deadline is unix milliseconds; zero disarms the countdown.
	Deadline int64 `json:"deadline" validate:"min=0"`
}

// ===== SET OPERATIONS =====

// ListSets returns the set catalog.
func (h *SessionHandler) ListSets(c *gin.Context) {
	c.JSON(http.StatusOK, SuccessResponse{Data: services.SetCatalog()})
}

// LoadSet fetches a question set by key and starts a fresh attempt.
func (h *SessionHandler) LoadSet(c *gin.Context) {
	key := c.Param("key")
	h.LogRequest(c, "Loading question set", "key", key)

	var req LoadSetRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid request payload",
				Details: err.Error(),
			})
			return
		}
		if err := h.validator.Validate(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Validation failed",
				Details: err.Error(),
			})
			return
		}
	}

	state, err := h.session.LoadSet(c.Request.Context(), key, models.SessionMode(req.Mode))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Question set loaded",
		Data: gin.H{
			"key":             state.SetKey,
			"mode":            state.Mode,
			"questions_count": len(state.Questions),
			"position":        state.Position,
		},
	})
}

// ===== SESSION READS =====

// GetSession returns the session snapshot plus the answered map for the
// question-overview grid.
func (h *SessionHandler) GetSession(c *gin.Context) {
	state := h.session.Snapshot()
	resp := gin.H{
		"key":             state.SetKey,
		"mode":            state.Mode,
		"phase":           state.Phase,
		"position":        state.Position,
		"questions_count": len(state.Questions),
		"correct_count":   state.CorrectCount,
		"incorrect_count": state.IncorrectCount,
		"deadline":        state.Deadline,
		"answered":        h.session.AnsweredMap(),
		"remaining_ms":    h.countdown.Remaining().Milliseconds(),
	}
	if loadErr := h.session.LoadErr(); loadErr != nil {
		resp["load_error"] = loadErr.Error()
	}
	c.JSON(http.StatusOK, SuccessResponse{Data: resp})
}

// GetCurrentQuestion returns the question at the current position and its
// recorded answer, if any.
func (h *SessionHandler) GetCurrentQuestion(c *gin.Context) {
	question, answer, err := h.session.Current()
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	state := h.session.Snapshot()
	c.JSON(http.StatusOK, SuccessResponse{
		Data: gin.H{
			"position": state.Position,
			"question": question,
			"answer":   answer,
		},
	})
}

// GetReview returns the review screen payload.
func (h *SessionHandler) GetReview(c *gin.Context) {
	review, err := h.session.Review()
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Data: review})
}

// ===== ANSWER EVENTS =====

// SubmitAnswer records a packed answer and applies the mode's advance
// policy.
func (h *SessionHandler) SubmitAnswer(c *gin.Context) {
	var req SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: err.Error(),
		})
		return
	}

	outcome, err := h.nav.SubmitAnswer(c.Request.Context(), req.Identity, req.EncodedValue)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Data: outcome})
}

// SubmitRegionClick records a click on a region-click question; the core
// decides correctness at click time.
func (h *SessionHandler) SubmitRegionClick(c *gin.Context) {
	var req RegionClickAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: err.Error(),
		})
		return
	}

	outcome, err := h.nav.SubmitRegionClick(c.Request.Context(), req.Identity, req.Click)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Data: outcome})
}

// ===== NAVIGATION =====

// Continue is the completeness-gated advance for multi-field questions.
func (h *SessionHandler) Continue(c *gin.Context) {
	outcome, err := h.nav.Continue(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Data: outcome})
}

func (h *SessionHandler) Next(c *gin.Context) {
	outcome, err := h.nav.Next(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Data: outcome})
}

func (h *SessionHandler) Previous(c *gin.Context) {
	position, err := h.nav.Previous(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Data: gin.H{"position": position}})
}

func (h *SessionHandler) SetPosition(c *gin.Context) {
	var req SetPositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	position, err := h.nav.JumpTo(c.Request.Context(), req.Position)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Data: gin.H{"position": position}})
}

// MediaEnded is the audio collaborator's ended signal, published on the bus
// so the navigation controller consumes it like any other input event.
func (h *SessionHandler) MediaEnded(c *gin.Context) {
	state := h.session.Snapshot()
	event := events.NewSessionEvent(events.EventMediaEnded)
	event.SetKey = state.SetKey
	event.Position = state.Position
	if err := h.publisher.PublishSessionEvent(c.Request.Context(), event); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, SuccessResponse{Message: "Media-ended signal accepted"})
}

// ===== LIFECYCLE =====

// SetDeadline arms or disarms the countdown.
func (h *SessionHandler) SetDeadline(c *gin.Context) {
	var req SetDeadlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	var deadline time.Time
	if req.Deadline > 0 {
		deadline = time.UnixMilli(req.Deadline)
	}
	if err := h.session.SetDeadline(c.Request.Context(), deadline); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Deadline updated"})
}

// Reset abandons the attempt and clears durable storage.
func (h *SessionHandler) Reset(c *gin.Context) {
	h.LogRequest(c, "Resetting session")
	if err := h.session.Reset(c.Request.Context()); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Session reset"})
}
