package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"discord-giveaway-bot/internal/common/config"
	apperrors "discord-giveaway-bot/internal/common/errors"
	"discord-giveaway-bot/internal/common/logger"
	memberservice "discord-giveaway-bot/internal/features/member/service"
)

// Server is the keep-alive HTTP surface. Uptime monitors ping the root
// route; the stats API exposes the same member data the slash commands
// read.
type Server struct {
	httpServer *http.Server
	log        zerolog.Logger
}

func NewServer(cfg *config.Config, members memberservice.MemberService) *Server {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	log := logger.Component("web")

	router := gin.New()
	router.Use(RequestID())
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if cfg.Server.Origin != "" {
		corsConfig.AllowOrigins = []string{cfg.Server.Origin}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Accept"}
	router.Use(cors.New(corsConfig))

	setupRoutes(router, members, log)

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		log: log,
	}
}

// RequestID propagates an X-Request-ID header, minting one when absent.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

func setupRoutes(router *gin.Engine, members memberservice.MemberService, log zerolog.Logger) {
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Bot is alive!")
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   "discord-giveaway-bot",
		})
	})

	router.GET("/live", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	v1 := router.Group("/api/v1")
	{
		guilds := v1.Group("/guilds")
		{
			guilds.GET("/:id/stats", func(c *gin.Context) {
				stats, err := members.GuildStats(c.Request.Context(), c.Param("id"))
				if err != nil {
					sendError(c, err, log)
					return
				}
				c.JSON(http.StatusOK, gin.H{"success": true, "data": stats})
			})

			guilds.GET("/:id/members/:uid", func(c *gin.Context) {
				profile, err := members.GetProfile(c.Request.Context(), c.Param("id"), c.Param("uid"))
				if err != nil {
					sendError(c, err, log)
					return
				}
				c.JSON(http.StatusOK, gin.H{"success": true, "data": profile})
			})
		}
	}
}

func sendError(c *gin.Context, err error, log zerolog.Logger) {
	requestID, _ := c.Get("request_id")

	status := http.StatusInternalServerError
	appErr, ok := apperrors.AsAppError(err)
	if ok {
		switch {
		case appErr.IsNotFound():
			status = http.StatusNotFound
		case appErr.IsValidation():
			status = http.StatusBadRequest
		}
	} else {
		appErr = apperrors.Wrap(err, apperrors.ErrCodeInternal, "Internal server error")
	}

	if appErr.IsInternal() {
		log.Error().Err(err).
			Str("request_id", fmt.Sprint(requestID)).
			Str("path", c.Request.URL.Path).
			Msg("Request failed")
	}

	c.JSON(status, gin.H{
		"success":    false,
		"error":      appErr,
		"request_id": requestID,
	})
}

func (s *Server) Start() error {
	s.log.Info().Str("addr", s.httpServer.Addr).Msg("Starting HTTP server")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
