package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/hookify/backend/internal/api/http"
	"github.com/GriffinCanCode/hookify/backend/internal/api/middleware"
	"github.com/GriffinCanCode/hookify/backend/internal/domain/preview"
	"github.com/GriffinCanCode/hookify/backend/internal/domain/templates"
	"github.com/GriffinCanCode/hookify/backend/internal/domain/workspace"
	"github.com/GriffinCanCode/hookify/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/hookify/backend/internal/infrastructure/kv"
	"github.com/GriffinCanCode/hookify/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/hookify/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/hookify/backend/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/hookify/backend/internal/sandbox/pipeline"
	"github.com/GriffinCanCode/hookify/backend/internal/sandbox/react"
	"github.com/GriffinCanCode/hookify/backend/internal/sandbox/runtime"
	"github.com/GriffinCanCode/hookify/backend/internal/api/ws"
)

const shutdownTimeout = 10 * time.Second

// Server wraps the HTTP server and dependencies
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	store      *workspace.Store
	prefs      *workspace.Preferences
	preview    *preview.Controller
	hub        *ws.Hub
	tracer     *tracing.Tracer
	logger     *logging.Logger
	config     *config.Config
	metrics    *monitoring.Metrics
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config) (*Server, error) {
	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		OutputPaths: []string{"stdout"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	logger.Info("Initializing Hookify server",
		zap.String("addr", cfg.Server.Addr()),
		zap.String("store", cfg.Store.Driver),
		zap.Duration("sandbox_timeout", cfg.Sandbox.Timeout),
	)

	// Metrics first, everything else records into them
	metrics := monitoring.NewMetrics()
	tracer := tracing.New("hookify", logger.Logger)

	reg, err := loadTemplates(cfg.Templates.Path)
	if err != nil {
		tracer.Close()
		return nil, err
	}

	kvStore, err := kv.Open(cfg.Store.Driver, cfg.Store.Path)
	if err != nil {
		tracer.Close()
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	prefs := workspace.NewPreferences(kvStore, logger)
	store := workspace.New(reg, prefs, logger)

	if dir := cfg.Templates.LessonsDir; dir != "" {
		res, err := workspace.LoadDir(store, dir)
		if err != nil {
			logger.Warn("Failed to load lessons", zap.String("dir", dir), zap.Error(err))
		} else {
			logger.Info("Lessons loaded",
				zap.String("dir", dir),
				zap.Strings("loaded", res.Loaded),
				zap.Any("skipped", res.Skipped),
			)
		}
	}

	pipe := pipeline.New(pipeline.Config{
		Runtime: runtime.Config{
			Timeout:          cfg.Sandbox.Timeout,
			MaxCallStackSize: cfg.Sandbox.MaxCallStackSize,
			EnableConsole:    cfg.Sandbox.Console,
		},
		Render: react.DefaultOptions(),
	}, logger).WithMetrics(metrics).WithTracer(tracer)

	ctrl := preview.NewController(store, pipeline.NewBoundary(pipe), logger).WithMetrics(metrics)
	hub := ws.NewHub(store, ctrl, logger).WithMetrics(metrics)

	s := &Server{
		store:   store,
		prefs:   prefs,
		preview: ctrl,
		hub:     hub,
		tracer:  tracer,
		logger:  logger,
		config:  cfg,
		metrics: metrics,
	}
	s.router = s.setupRouter()

	snap := ctrl.Start(context.Background())
	logger.Info("Server initialized successfully",
		zap.String("active_topic", string(snap.Topic)),
		zap.String("outcome", string(snap.Outcome.Kind)),
	)
	return s, nil
}

func loadTemplates(path string) (*templates.Registry, error) {
	if path == "" {
		return templates.Builtin()
	}
	reg, err := templates.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates from %s: %w", path, err)
	}
	return reg, nil
}

func (s *Server) setupRouter() *gin.Engine {
	cfg := s.config
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(s.tracer))
	router.Use(monitoring.Middleware(s.metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig().WithOrigins(cfg.Server.CORSOrigins)))
	if cfg.RateLimit.Enabled {
		s.logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		limits := middleware.DefaultRateLimitConfig()
		limits.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		limits.Burst = cfg.RateLimit.Burst
		router.Use(middleware.RateLimit(limits))
	}
	router.Use(middleware.Gzip(gzip.DefaultCompression, "/stream", "/metrics"))

	handlers := apihttp.NewHandlers(s.store, s.preview, s.prefs, s.metrics)

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)

	// Topics and their files
	router.GET("/topics", handlers.ListTopics)
	router.GET("/topics/:topic", handlers.GetTopic)
	router.PUT("/topics/:topic/files/:kind", handlers.UpdateFile)

	// Workspace
	router.GET("/workspace/active", handlers.GetActive)
	router.PUT("/workspace/active", handlers.SetActive)

	// Preview
	router.GET("/preview", handlers.Preview)
	router.GET("/preview/document", handlers.Document)
	router.POST("/preview/events", handlers.DispatchEvent)

	// WebSocket
	router.GET("/stream", s.hub.HandleConnection)

	// Metrics
	router.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	return router
}

// Router returns the HTTP handler
func (s *Server) Router() http.Handler {
	return s.router
}

// Preview returns the preview controller
func (s *Server) Preview() *preview.Controller {
	return s.preview
}

// Run serves HTTP until Shutdown is called
func (s *Server) Run() error {
	addr := s.config.Server.Addr()
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting HTTP server", zap.String("addr", addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close stops accepting requests, disconnects stream clients and releases
// the store
func (s *Server) Close() error {
	var errs []error
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
	}

	s.hub.Close()
	s.preview.Stop()
	if err := s.prefs.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}
	s.tracer.Close()

	s.logger.Info("Server stopped")
	s.logger.Sync()
	return errors.Join(errs...)
}
