// Package web serves the refine endpoint and the local notes API over HTTP.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/YoshitsuguKoike/noterefiner/internal/application/port/input"
	"github.com/YoshitsuguKoike/noterefiner/internal/domain/mode"
	"github.com/YoshitsuguKoike/noterefiner/internal/domain/note"
)

const (
	maxBodySize     = 1 << 20 // 1MB
	shutdownTimeout = 10 * time.Second
)

// NoteStore is the part of the note history the server exposes
type NoteStore interface {
	Search(query string) []note.Note
	Get(id int64) (note.Note, bool)
	Create(ctx context.Context, original, refined, mode string) (note.Note, error)
	Delete(ctx context.Context, id int64) error
	Len() int
}

// Server is the noterefiner web server
type Server struct {
	refiner input.Refiner
	notes   NoteStore
	modes   *mode.Registry
	logger  *slog.Logger
	router  *gin.Engine
}

// NewServer creates a new web server. modes may be nil for the builtin set.
func NewServer(refiner input.Refiner, notes NoteStore, modes *mode.Registry, logger *slog.Logger) *Server {
	if modes == nil {
		modes = mode.Builtin()
	}
	if logger == nil {
		logger = slog.Default()
	}

	router := gin.New()
	s := &Server{
		refiner: refiner,
		notes:   notes,
		modes:   modes,
		logger:  logger,
		router:  router,
	}

	router.Use(gin.Recovery(), requestID(), s.accessLog(), limitBody(maxBodySize))

	router.GET("/healthz", s.handleHealth)

	api := router.Group("/api")
	{
		api.POST("/refine", s.handleRefine)
		api.GET("/modes", s.handleModes)
		api.GET("/notes", s.handleListNotes)
		api.GET("/notes/:id", s.handleGetNote)
		api.POST("/notes", s.handleCreateNote)
		api.DELETE("/notes/:id", s.handleDeleteNote)
	}

	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("http server shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	}
}
