package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/norsk-prova/quiz-session-service/internal/events"
	"github.com/norsk-prova/quiz-session-service/internal/services"
	"github.com/norsk-prova/quiz-session-service/internal/utils"
)

type HandlerManager struct {
	sessionHandler *SessionHandler
}

func NewHandlerManager(
	session services.SessionService,
	nav *services.NavigationController,
	countdown *services.Countdown,
	publisher events.EventPublisher,
	validator *utils.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		sessionHandler: NewSessionHandler(session, nav, countdown, publisher, validator, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)

	v1 := router.Group("/api/v1")
	{
		sets := v1.Group("/sets")
		{
			sets.GET("", hm.sessionHandler.ListSets)
			sets.POST("/:key/load", hm.sessionHandler.LoadSet)
		}

		session := v1.Group("/session")
		{
			session.GET("", hm.sessionHandler.GetSession)
			session.GET("/question", hm.sessionHandler.GetCurrentQuestion)
			session.GET("/review", hm.sessionHandler.GetReview)
			session.DELETE("", hm.sessionHandler.Reset)

			session.POST("/answers", hm.sessionHandler.SubmitAnswer)
			session.POST("/answers/region-click", hm.sessionHandler.SubmitRegionClick)

			session.POST("/continue", hm.sessionHandler.Continue)
			session.POST("/next", hm.sessionHandler.Next)
			session.POST("/previous", hm.sessionHandler.Previous)
			session.PUT("/position", hm.sessionHandler.SetPosition)

			session.POST("/media-ended", hm.sessionHandler.MediaEnded)
			session.PUT("/deadline", hm.sessionHandler.SetDeadline)
		}
	}
}
