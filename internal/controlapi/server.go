// Package controlapi serves the pilot's user operations over HTTP.
package controlapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"voxelpilot.ai/internal/agent"
	"voxelpilot.ai/internal/control"
	"voxelpilot.ai/internal/goal"
	"voxelpilot.ai/internal/session"
	"voxelpilot.ai/internal/waypoint"
)

// Controller is the agent surface the API drives.
type Controller interface {
	Pause() error
	Resume() error
	Paused() bool
	Cancel() error
	Proc() (agent.ProcStatus, error)
	Processes() control.Report
	ETA() (agent.ETA, error)

	SetGoal(g goal.Goal)
	Goal() goal.Goal
	Path() error
	Goto(g goal.Goal) error
	GotoPos(p goal.Pos) error
	GotoBlock(names []string) error
	FindBlocks(names []string) ([]goal.Pos, error)
	Blacklist() (goal.Pos, error)
	Come(entityID string) error
	Surface() error
	Mine(quantity int, names []string) error
	Follow(ids []string) error
	FollowType(typ string) error
	Explore(x, z int)
	ExploreHere() error
	Build(blueprintID string, anchor goal.Pos, rotation int) error

	SaveWaypoint(ctx context.Context, name string, tag waypoint.Tag, pos *goal.Pos) (waypoint.Waypoint, error)
	ListWaypoints(ctx context.Context, tag waypoint.Tag) ([]waypoint.Waypoint, error)
	Waypoint(ctx context.Context, ref string) (waypoint.Waypoint, error)
	DeleteWaypoint(ctx context.Context, id string) error
	ClearWaypoints(ctx context.Context, tag waypoint.Tag) (int, error)
	RestoreWaypoints(ctx context.Context, n int) ([]waypoint.Waypoint, error)
	GotoWaypoint(ctx context.Context, ref string) (waypoint.Waypoint, error)
	GoalWaypoint(ctx context.Context, ref string) (waypoint.Waypoint, error)
	SetHome(ctx context.Context) (waypoint.Waypoint, error)
	Home(ctx context.Context) (waypoint.Waypoint, error)
}

// SessionStatus reports the world connection. It may be nil.
type SessionStatus interface {
	Status() session.Status
}

type Config struct {
	Listen string
}

type Server struct {
	config    Config
	ctl       Controller
	sess      SessionStatus
	logger    zerolog.Logger
	server    *http.Server
	startedAt time.Time
}

func New(config Config, ctl Controller, sess SessionStatus, logger zerolog.Logger) *Server {
	return &Server{
		config:    config,
		ctl:       ctl,
		sess:      sess,
		logger:    logger.With().Str("component", "controlapi").Logger(),
		startedAt: time.Now(),
	}
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         s.config.Listen,
		Handler:      s.setupRoutes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info().Str("listen", s.config.Listen).Msg("control API starting")

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info().Msg("control API shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}
}

func (s *Server) setupRoutes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealthz)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/proc", s.handleProc)
		r.Get("/processes", s.handleProcesses)
		r.Get("/eta", s.handleETA)
		r.Get("/paused", s.handlePaused)
		r.Post("/pause", s.handlePause)
		r.Post("/resume", s.handleResume)
		r.Post("/cancel", s.handleCancel)

		r.Get("/goal", s.handleGetGoal)
		r.Post("/goal", s.handleSetGoal)
		r.Post("/path", s.handlePath)
		r.Post("/goto", s.handleGoto)
		r.Get("/find", s.handleFind)
		r.Post("/blacklist", s.handleBlacklist)
		r.Post("/come", s.handleCome)
		r.Post("/surface", s.handleSurface)
		r.Post("/mine", s.handleMine)
		r.Post("/follow", s.handleFollow)
		r.Post("/explore", s.handleExplore)
		r.Post("/build", s.handleBuild)

		r.Post("/sethome", s.handleSetHome)
		r.Post("/home", s.handleHome)
		r.Route("/waypoints", func(r chi.Router) {
			r.Get("/", s.handleListWaypoints)
			r.Post("/", s.handleSaveWaypoint)
			r.Post("/clear", s.handleClearWaypoints)
			r.Post("/restore", s.handleRestoreWaypoints)
			r.Get("/{ref}", s.handleGetWaypoint)
			r.Delete("/{ref}", s.handleDeleteWaypoint)
			r.Post("/{ref}/goto", s.handleGotoWaypoint)
			r.Post("/{ref}/goal", s.handleGoalWaypoint)
		})
	})

	return r
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("http request")
	})
}
