// Package server exposes the board over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/nhle/taskboard/internal/app"
	"github.com/nhle/taskboard/internal/board"
	"github.com/nhle/taskboard/internal/logger"
	"github.com/nhle/taskboard/internal/transfer"
)

// Server is the board API server.
type Server struct {
	svc  *app.Service
	echo *echo.Echo
	log  *logger.Logger
}

// New creates a server over svc.
func New(svc *app.Service, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Global()
	}
	s := &Server{svc: svc, log: log.WithFields(logger.F("component", "http"))}
	s.setupEcho()
	return s
}

func (s *Server) setupEcho() {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleError

	e.Use(s.requestLogger)
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORS())

	e.GET("/health", s.handleHealth)

	api := e.Group("/api/v1")

	api.GET("/tasks", s.handleListTasks)
	api.POST("/tasks", s.handleCreateTask)
	api.GET("/tasks/:id", s.handleGetTask)
	api.PUT("/tasks/:id", s.handleUpdateTask)
	api.DELETE("/tasks/:id", s.handleDeleteTask)
	api.POST("/tasks/:id/complete", s.handleCompleteTask)
	api.POST("/tasks/:id/status", s.handleChangeStatus)
	api.POST("/tasks/:id/archive", s.handleArchiveTask)
	api.POST("/tasks/:id/comments", s.handleAddComment)
	api.GET("/tasks/:id/blocking", s.handleBlocking)
	api.GET("/tasks/:id/attachments/:name", s.handleAttachment)

	api.GET("/archive", s.handleListArchived)
	api.GET("/archive/:id", s.handleGetArchived)
	api.DELETE("/archive/:id", s.handleDeleteArchived)

	api.GET("/categories", s.handleListCategories)
	api.POST("/categories", s.handleCreateCategory)
	api.PUT("/categories/:id", s.handleUpdateCategory)
	api.DELETE("/categories/:id", s.handleDeleteCategory)

	api.GET("/contacts", s.handleListContacts)
	api.POST("/contacts", s.handleCreateContact)
	api.PUT("/contacts/:id", s.handleUpdateContact)
	api.DELETE("/contacts/:id", s.handleDeleteContact)

	api.GET("/notes", s.handleListNotes)
	api.GET("/notes/:date", s.handleGetNote)
	api.PUT("/notes/:date", s.handleSetNote)

	api.GET("/dashboard", s.handleDashboard)
	api.GET("/kanban", s.handleKanban)
	api.GET("/calendar", s.handleCalendar)
	api.GET("/report", s.handleReport)

	api.GET("/export", s.handleExport)
	api.POST("/import", s.handleImport)
	api.POST("/sweep", s.handleSweep)

	api.GET("/notifications", s.handleListNotifications)
	api.POST("/notifications/:id/read", s.handleMarkRead)

	s.echo = e
}

// requestLogger logs every request with its outcome.
func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}

		req, res := c.Request(), c.Response()
		s.log.Info("HTTP request",
			logger.F("method", req.Method),
			logger.F("uri", req.RequestURI),
			logger.F("status", res.Status),
			logger.F("size", res.Size),
			logger.F("duration", time.Since(start).String()),
			logger.F("request_id", res.Header().Get(echo.HeaderXRequestID)))
		return nil
	}
}

// handleError maps domain errors to status codes.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := err.Error()
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		}
	case board.IsValidationError(err), errors.Is(err, transfer.ErrMalformed):
		code = http.StatusBadRequest
	case errors.Is(err, app.ErrBlocked):
		code = http.StatusConflict
	}
	if code >= http.StatusInternalServerError {
		s.log.Error("Request failed", logger.F("uri", c.Request().RequestURI), logger.Err(err))
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, map[string]string{"error": msg})
}

// Router returns the HTTP handler.
func (s *Server) Router() http.Handler {
	return s.echo
}

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.log.Info("HTTP server listening", logger.F("addr", addr))
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func notFound(kind, id string) error {
	return echo.NewHTTPError(http.StatusNotFound, kind+" "+id+" not found")
}

func badRequest(msg string) error {
	return echo.NewHTTPError(http.StatusBadRequest, msg)
}
