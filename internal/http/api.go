package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"finsite-server/internal/domain"
	"finsite-server/internal/mailer"
	"finsite-server/internal/service"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	auth   service.AuthService
	events service.EventService
	mail   mailer.Service
	logger *logrus.Logger
}

func NewHandler(auth service.AuthService, events service.EventService, mail mailer.Service, logger *logrus.Logger) *Handler {
	return &Handler{
		auth:   auth,
		events: events,
		mail:   mail,
		logger: logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	api := router.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", h.register)
			authGroup.POST("/login", h.login)
			authGroup.POST("/logout", h.logout)
		}

		api.POST("/contact", h.sendContactForm)

		events := api.Group("/events")
		{
			// literal routes first; numeric-id routes validate in the handler
			events.POST("/image", h.attachImage)
			events.GET("/image/:imageId/blob", h.getImageBlob)
			events.DELETE("/image/:imageId", h.deleteImage)

			events.GET("", h.listEvents)
			events.POST("", h.createEvent)
			events.GET("/:id", h.getEvent)
			events.PUT("/:id", h.updateEvent)
			events.DELETE("/:id", h.deleteEvent)
		}

		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Disposition")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

type EventResponse struct {
	ID          int64                `json:"id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	EventDate   *string              `json:"event_date,omitempty"`
	CreatedAt   string               `json:"created_at"`
	UpdatedAt   string               `json:"updated_at"`
	Images      []EventImageResponse `json:"images"`
}

type EventImageResponse struct {
	ID          int64  `json:"id"`
	EventID     int64  `json:"event_id"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

func eventToResponse(event domain.Event) EventResponse {
	resp := EventResponse{
		ID:          event.ID,
		Title:       event.Title,
		Description: event.Description,
		CreatedAt:   event.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   event.UpdatedAt.Format(time.RFC3339),
		Images:      make([]EventImageResponse, len(event.Images)),
	}
	if event.EventDate != nil {
		v := event.EventDate.Format(time.RFC3339)
		resp.EventDate = &v
	}
	for i := range event.Images {
		resp.Images[i] = imageToResponse(event.Images[i])
	}
	return resp
}

func imageToResponse(image domain.EventImage) EventImageResponse {
	return EventImageResponse{
		ID:          image.ID,
		EventID:     image.EventID,
		FileName:    image.FileName,
		ContentType: image.ContentType,
		Size:        image.Size,
	}
}
