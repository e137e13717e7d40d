// Package server exposes the scheduling engine over an HTTP JSON API backed
// by the board store.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/papapumpkin/closeboard/internal/board"
	"github.com/papapumpkin/closeboard/internal/engine"
	"github.com/papapumpkin/closeboard/internal/store"
	"github.com/papapumpkin/closeboard/internal/telemetry"
)

// BoardStore is the persistence the server needs. *store.SQLiteStore
// satisfies it.
type BoardStore interface {
	Create(ctx context.Context, b *board.Board) (*board.Board, error)
	Get(ctx context.Context, id string) (*board.Board, error)
	List(ctx context.Context) ([]store.Summary, error)
	Save(ctx context.Context, b *board.Board, expectedVersion int64) (*board.Board, error)
	Delete(ctx context.Context, id string) error
}

// Server provides HTTP handlers for closing boards.
type Server struct {
	engine     *gin.Engine
	store      BoardStore
	logger     *slog.Logger
	events     *telemetry.Emitter
	policy     engine.Policy
	classifier engine.Classifier
	newID      func() string
	now        func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithEmitter records board changes to the telemetry stream.
func WithEmitter(e *telemetry.Emitter) Option {
	return func(s *Server) { s.events = e }
}

// WithPolicy sets the transition guard policy.
func WithPolicy(p engine.Policy) Option {
	return func(s *Server) { s.policy = p }
}

// WithWarningDays sets the status warning window.
func WithWarningDays(days int) Option {
	return func(s *Server) { s.classifier = engine.Classifier{WarningDays: days} }
}

// WithIDGenerator replaces the UUIDv7 task and board id generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Server) { s.newID = fn }
}

// WithClock replaces time.Now for move stamps and status queries.
func WithClock(fn func() time.Time) Option {
	return func(s *Server) { s.now = fn }
}

// New constructs the HTTP server with routes and middleware configured.
func New(st BoardStore, opts ...Option) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	srv := &Server{
		engine:     router,
		store:      st,
		logger:     slog.Default(),
		classifier: engine.Classifier{WarningDays: engine.DefaultWarningDays},
		newID:      func() string { return uuid.Must(uuid.NewV7()).String() },
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(srv)
	}
	router.Use(srv.requestLogger())

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")
	{
		api.GET("/healthz", s.handleHealth)

		boards := api.Group("/boards")
		{
			boards.GET("", s.handleListBoards)
			boards.POST("", s.handleCreateBoard)
			boards.GET(":id", s.handleGetBoard)
			boards.DELETE(":id", s.handleDeleteBoard)
			boards.POST(":id/propagate", s.handlePropagate)
			boards.POST(":id/reschedule", s.handleReschedule)
			boards.GET(":id/sequence", s.handleSequence)
			boards.GET(":id/streams", s.handleStreams)
			boards.GET(":id/status", s.handleStatus)

			boards.POST(":id/tasks", s.handleCreateTask)
			boards.PATCH(":id/tasks/:task", s.handleUpdateTask)
			boards.DELETE(":id/tasks/:task", s.handleDeleteTask)
			boards.GET(":id/tasks/:task/schedule", s.handleSchedule)
			boards.GET(":id/tasks/:task/blocking", s.handleBlocking)
			boards.GET(":id/tasks/:task/dependency-check", s.handleDependencyCheck)
			boards.GET(":id/tasks/:task/available-dependencies", s.handleAvailableDependencies)
			boards.POST(":id/tasks/:task/dependencies", s.handleAddDependency)
			boards.POST(":id/tasks/:task/move", s.handleMove)
		}
	}
}

// requestLogger logs one line per request through slog.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("elapsed", time.Since(start)),
		)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, engine.ErrTaskNotFound),
		errors.Is(err, engine.ErrColumnNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrExists),
		errors.Is(err, store.ErrVersionConflict),
		errors.Is(err, engine.ErrBlockedTransition):
		return http.StatusConflict
	case errors.Is(err, engine.ErrCircularDependency),
		errors.Is(err, engine.ErrUnknownDependency),
		errors.Is(err, engine.ErrInvalidTask),
		errors.Is(err, engine.ErrMalformedGraph),
		errors.Is(err, engine.ErrNoClosingColumn),
		errors.Is(err, board.ErrMissingField):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs the error and returns a JSON payload.
func (s *Server) respondError(c *gin.Context, err error) {
	s.respondStatus(c, statusFor(err), err)
}

func (s *Server) respondStatus(c *gin.Context, status int, err error) {
	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	s.logger.Log(c.Request.Context(), level, "request failed",
		slog.String("path", c.FullPath()), slog.String("error", err.Error()))
	c.JSON(status, gin.H{"error": err.Error()})
}

// record emits a telemetry event, logging rather than failing on error.
func (s *Server) record(kind, boardID, taskID string, data any) {
	if err := s.events.Record(kind, boardID, taskID, data); err != nil {
		s.logger.Warn("telemetry", slog.String("kind", kind), slog.String("error", err.Error()))
	}
}

// loadBoard fetches the board named by the :id parameter, writing the error
// response itself when it fails.
func (s *Server) loadBoard(c *gin.Context) (*board.Board, bool) {
	b, err := s.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return nil, false
	}
	return b, true
}

// saveBoard stores next against the version of the loaded board.
func (s *Server) saveBoard(c *gin.Context, loaded, next *board.Board) (*board.Board, bool) {
	saved, err := s.store.Save(c.Request.Context(), next, loaded.Version)
	if err != nil {
		s.respondError(c, err)
		return nil, false
	}
	return saved, true
}
