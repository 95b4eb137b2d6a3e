// Package server wires the HTTP surface of the service.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/rogally/allychat/ai/answer"
	"github.com/rogally/allychat/ai/retrieval"
	"github.com/rogally/allychat/internal/metrics"
	"github.com/rogally/allychat/internal/profile"
	apiv1 "github.com/rogally/allychat/server/router/api/v1"
	"github.com/rogally/allychat/server/router/frontend"
	"github.com/rogally/allychat/store"
)

// Server is the HTTP server of the service.
type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer *echo.Echo
}

// NewServer creates a new Server with all routes registered.
func NewServer(
	ctx context.Context,
	profile *profile.Profile,
	store *store.Store,
	retriever *retrieval.Retriever,
	composer *answer.Composer,
	exporter *metrics.Exporter,
) (*Server, error) {
	e := echo.New()
	e.Debug = profile.IsDev()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		Profile:    profile,
		Store:      store,
		echoServer: e,
	}

	e.GET("/healthz", s.healthz)
	if exporter != nil {
		e.GET("/metrics", echo.WrapHandler(exporter.Handler()))
	}

	apiService := apiv1.NewAPIV1Service(profile, retriever, composer, exporter)
	apiService.RegisterRoutes(e)

	frontendService := frontend.NewFrontendService(profile)
	frontendService.Serve(ctx, e)

	return s, nil
}

// Start begins listening in the background. Fatal listener errors other
// than a graceful close are logged.
func (s *Server) Start(_ context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	go func() {
		if err := s.echoServer.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to start echo server", "error", err)
		}
	}()
	return nil
}

// Shutdown gracefully drains in-flight requests and closes the store.
func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}

	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close database", "error", err)
	}

	slog.Info("server shutdown")
}

func (s *Server) healthz(c echo.Context) error {
	if err := s.Store.Ping(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, fmt.Sprintf("database unreachable: %v", err))
	}
	return c.String(http.StatusOK, "ok")
}

// errorHandler renders every failure as a structured {"detail": ...} body,
// so clients never see a malformed response.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	detail := err.Error()
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		code = httpErr.Code
		detail = fmt.Sprintf("%v", httpErr.Message)
	}

	if code >= http.StatusInternalServerError {
		slog.Error("request failed",
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"error", err,
		)
	}

	if err := c.JSON(code, map[string]string{"detail": detail}); err != nil {
		slog.Error("failed to write error response", "error", err)
	}
}
