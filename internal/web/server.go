// Package web hosts the blog over HTTP: the shell mounts whatever view the
// route table resolves for the request path.
package web

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Bitlatte/folio/internal/logger"
	"github.com/Bitlatte/folio/internal/post"
	"github.com/Bitlatte/folio/internal/render"
	"github.com/Bitlatte/folio/internal/route"
	"github.com/Bitlatte/folio/internal/view"
)

const defaultShutdownTimeout = 10 * time.Second

// Config is the server section of the application config.
type Config struct {
	Address         string        `mapstructure:"address"`
	ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
}

// Server serves the route table.
type Server struct {
	cfg      Config
	repo     post.Repository
	renderer *render.Renderer
	routes   route.Table
	log      logger.Logger
	router   chi.Router
}

// NewServer builds the router from routes. The table must be valid.
func NewServer(cfg Config, routes route.Table, repo post.Repository, renderer *render.Renderer, log logger.Logger) (*Server, error) {
	if err := routes.Validate(); err != nil {
		return nil, fmt.Errorf("invalid route table: %w", err)
	}
	if log == nil {
		log = logger.NewNop()
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	s := &Server{
		cfg:      cfg,
		repo:     repo,
		renderer: renderer,
		routes:   routes,
		log:      log,
	}
	s.router = s.buildRouter()
	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	for _, rt := range s.routes {
		switch {
		case rt.Path == route.CatchAll:
			r.NotFound(redirectTo(rt.RedirectTo))
		case rt.IsRedirect():
			r.Get(rt.Path, redirectTo(rt.RedirectTo))
		case rt.View == route.ViewPostList:
			r.Get(rt.Path, s.handleList(rt.Title))
		case rt.View == route.ViewPostDetail:
			r.Get(rt.Path, s.handleDetail)
		default:
			s.log.Warn("Route has no handler, skipping", logger.String("path", rt.Path), logger.String("view", rt.View))
		}
	}
	return r
}

func redirectTo(target string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target, http.StatusFound)
	}
}

func (s *Server) handleList(title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b := view.NewListBinding(r.Context(), s.repo, s.requestLog(r))
		b.Activate()
		state, err := b.Wait(r.Context())
		if err != nil {
			s.log.Debug("List request abandoned", logger.Error(err))
			return
		}

		status := http.StatusOK
		if state.Status == view.StatusUnavailable {
			status = http.StatusServiceUnavailable
		}
		s.write(w, status, func(buf *bytes.Buffer) error { return s.renderer.List(buf, title, state) })
	}
}

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	b := view.NewDetailBinding(r.Context(), s.repo, s.requestLog(r))
	defer b.Close()
	b.SetSlug(chi.URLParam(r, "slug"))
	state, err := b.Wait(r.Context())
	if err != nil {
		s.log.Debug("Detail request abandoned", logger.Error(err))
		return
	}

	status := http.StatusOK
	switch state.Status {
	case view.StatusNotFound:
		status = http.StatusNotFound
	case view.StatusUnavailable:
		status = http.StatusServiceUnavailable
	}
	s.write(w, status, func(buf *bytes.Buffer) error { return s.renderer.Detail(buf, state) })
}

// write renders into a buffer first so a template failure still yields a 500.
func (s *Server) write(w http.ResponseWriter, status int, fn func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		s.log.Error("Render failed", logger.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) requestLog(r *http.Request) logger.Logger {
	return s.log.With(logger.String("request_id", middleware.GetReqID(r.Context())))
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Address,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Serving blog", logger.String("address", s.cfg.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
