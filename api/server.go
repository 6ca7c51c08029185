// Package api exposes game sessions over HTTP and WebSocket.
package api

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/imjasonh/kingcapture/lobby"
)

type Server struct {
	app     *fiber.App
	manager *lobby.Manager
	logger  *log.Logger
}

func NewServer(manager *lobby.Manager, logger *log.Logger, allowedOrigins string) *Server {
	s := &Server{
		app: fiber.New(fiber.Config{
			AppName:               "kingcapture",
			DisableStartupMessage: true,
			ReadTimeout:           10 * time.Second,
			WriteTimeout:          10 * time.Second,
		}),
		manager: manager,
		logger:  logger,
	}
	s.routes(allowedOrigins)
	return s
}

func (s *Server) routes(allowedOrigins string) {
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, X-Player-ID",
		AllowMethods: "GET, POST, OPTIONS",
	}))
	s.app.Use(func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		s.logger.Debug("request", "method", c.Method(), "path", c.Path(), "status", c.Response().StatusCode(), "took", time.Since(start))
		return err
	})

	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	api := s.app.Group("/api")
	api.Post("/games", s.createGame)
	api.Get("/games/:id", s.getGame)
	api.Post("/games/:id/join", s.joinGame)
	api.Get("/games/:id/moves/:square", EnsurePlayerID(), s.destinations)
	api.Post("/games/:id/moves", EnsurePlayerID(), s.move)
	api.Post("/games/:id/reset", EnsurePlayerID(), s.reset)

	s.app.Use("/ws", WebSocketUpgrade())
	s.app.Get("/ws/games/:id", websocket.New(s.stream))
}

func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen(addr string) error {
	s.logger.Info("starting API server", "addr", addr)
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, lobby.ErrGameNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, lobby.ErrGameFull), errors.Is(err, lobby.ErrAlreadyQueued):
		return fiber.StatusConflict
	case errors.Is(err, lobby.ErrNotInGame):
		return fiber.StatusForbidden
	case errors.Is(err, lobby.ErrSessionClosed):
		return fiber.StatusGone
	}
	return fiber.StatusInternalServerError
}

func sendError(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{
		"error": err.Error(),
	})
}
