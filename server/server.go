package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	perrors "github.com/jmgilman/go/errors"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonwraymond/discogstools/auth"
	"github.com/jonwraymond/discogstools/health"
	"github.com/jonwraymond/discogstools/observe"
)

// Default values.
const (
	DefaultAddr            = ":8080"
	DefaultShutdownTimeout = 10 * time.Second

	// MaxBodyBytes bounds a single JSON-RPC request body.
	MaxBodyBytes = 1 << 20
)

// Config configures the HTTP host.
type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	Info            Info
}

// Deps are the collaborators the server routes to. Tools is required; the
// rest are optional.
type Deps struct {
	Tools         ToolCaller
	Health        *health.Aggregator
	Authenticator auth.Authenticator
	Gatherer      prometheus.Gatherer
	Registerer    prometheus.Registerer
	Logger        observe.Logger
}

// Server is the HTTP tool host.
type Server struct {
	echo       *echo.Echo
	config     Config
	logger     observe.Logger
	dispatcher *dispatcher
}

// ErrNoTools is returned by New when Deps.Tools is nil.
var ErrNoTools = errors.New("server: tools are required")

// New builds the server and its routes.
func New(cfg Config, deps Deps) (*Server, error) {
	if deps.Tools == nil {
		return nil, ErrNoTools
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	logger := deps.Logger
	if logger == nil {
		logger = observe.NopLogger()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:       e,
		config:     cfg,
		logger:     logger,
		dispatcher: &dispatcher{tools: deps.Tools, info: cfg.Info},
	}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(s.requestLogging())
	if deps.Registerer != nil {
		m, err := newHTTPMetrics(deps.Registerer)
		if err != nil {
			return nil, err
		}
		e.Use(m.collect())
	}

	s.setupRoutes(deps)
	return s, nil
}

func (s *Server) setupRoutes(deps Deps) {
	var mw []echo.MiddlewareFunc
	if deps.Authenticator != nil {
		mw = append(mw, auth.Middleware(deps.Authenticator, s.logger))
	}
	s.echo.POST("/mcp", s.handleRPC, mw...)

	if deps.Health != nil {
		health.RegisterRoutes(s.echo, deps.Health)
	} else {
		s.echo.GET("/healthz", health.Liveness)
	}

	if deps.Gatherer != nil {
		s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}
}

func (s *Server) handleRPC(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, MaxBodyBytes+1))
	if err != nil {
		return c.JSON(http.StatusOK, errorResponse(nil, newError(CodeParseError, "parse error", err, perrors.CodeInvalidInput)))
	}
	if len(body) > MaxBodyBytes {
		return c.JSON(http.StatusRequestEntityTooLarge,
			errorResponse(nil, newError(CodeInvalidRequest, "request too large", errors.New("body exceeds limit"), perrors.CodeInvalidInput)))
	}

	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		return c.JSON(http.StatusOK, errorResponse(nil, newError(CodeParseError, "parse error", err, perrors.CodeInvalidInput)))
	}

	if p := auth.PrincipalFromContext(ctx); p != "" {
		s.logger.Debug(ctx, "rpc request",
			observe.Field{Key: "method", Value: req.Method},
			observe.Field{Key: "principal", Value: p},
		)
	}

	resp := s.dispatcher.handle(ctx, &req)
	if resp == nil {
		return c.NoContent(http.StatusAccepted)
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) requestLogging() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			req := c.Request()
			fields := []observe.Field{
				{Key: "method", Value: req.Method},
				{Key: "path", Value: req.URL.Path},
				{Key: "status", Value: c.Response().Status},
				{Key: "duration_ms", Value: float64(time.Since(start).Milliseconds())},
				{Key: "request_id", Value: c.Response().Header().Get(echo.HeaderXRequestID)},
			}
			if err != nil {
				fields = append(fields, observe.Err(err))
				s.logger.Warn(req.Context(), "http request failed", fields...)
				return err
			}
			s.logger.Debug(req.Context(), "http request", fields...)
			return nil
		}
	}
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves until ctx is done, then shuts down within the configured
// timeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "http server listening", observe.Field{Key: "addr", Value: s.config.Addr})
		errCh <- s.echo.Start(s.config.Addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.ShutdownTimeout)
	defer cancel()
	s.logger.Info(shutdownCtx, "http server shutting down")
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Addr returns the listener address once Run has bound it, or "".
func (s *Server) Addr() string {
	addr := s.echo.ListenerAddr()
	if addr == nil {
		return ""
	}
	return addr.String()
}
