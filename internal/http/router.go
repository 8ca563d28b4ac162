package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/fibrelink/backend/internal/auth"
	"github.com/fibrelink/backend/internal/config"
	"github.com/fibrelink/backend/internal/db"
	"github.com/fibrelink/backend/internal/http/handlers"
	"github.com/fibrelink/backend/internal/http/middleware"
	"github.com/fibrelink/backend/internal/service"

	_ "github.com/fibrelink/backend/docs"
)

func Router(cfg config.Config, store *db.Store, orders *service.OrderService, tickets *service.TicketService, chat *service.ChatService, verifier *auth.Verifier, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{cfg.CORSAllowed}
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		Store:     store,
		Plans:     store,
		Orders:    orders,
		Tickets:   tickets,
		Chat:      chat,
		Validator: validator.New(),
		Logger:    logger,
	}

	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	api.Use(middleware.Auth(verifier))
	{
		api.GET("/plans", h.PlansList)
		api.GET("/plans/:id", h.PlanGet)

		api.POST("/orders", h.OrderCreate)
		api.GET("/orders", h.OrdersList)
		api.GET("/orders/:id", h.OrderGet)
		api.PATCH("/orders/:id/status", h.OrderUpdateStatus)

		api.POST("/tickets", h.TicketCreate)
		api.GET("/tickets", h.TicketsList)
		api.GET("/tickets/:id", h.TicketGet)
		api.PATCH("/tickets/:id/status", h.TicketUpdateStatus)
		api.POST("/tickets/:id/assign", h.TicketAssign)
		api.POST("/tickets/:id/comments", h.TicketAddComment)

		api.POST("/chat/send", h.ChatSend)
		api.GET("/chat/history", h.ChatHistory)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
