package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/centresolea/solea-events/internal/event"
	"github.com/centresolea/solea-events/internal/logger"
	"github.com/centresolea/solea-events/internal/scraper"
)

// Welcome is the body of GET /.
const Welcome = "Bienvenue sur l'API du Centre Soléa !"

// Source is what the API needs from the scraper.
type Source interface {
	Events(ctx context.Context, opts scraper.Options) ([]*event.Event, error)
	Courses(ctx context.Context) ([]string, error)
	Tariffs(ctx context.Context) ([]scraper.Tariff, error)
	Membership(ctx context.Context) (string, bool, error)
	Location() *time.Location
}

// Options tunes the server.
type Options struct {
	Metrics         *logger.Metrics
	EnrichPageLimit int      // default for ?pages
	AllowedOrigins  []string // CORS; empty allows any origin
	RequestTimeout  time.Duration
}

// Server routes API requests to a Source.
type Server struct {
	source  Source
	metrics *logger.Metrics
	val     *validation
	pages   int
	timeout time.Duration
	origins []string
	handler http.Handler
	srv     *http.Server

	// Now returns the reference instant for date ranges and calendar stamps.
	Now func() time.Time
}

// New creates a Server.
func New(source Source, opts Options) *Server {
	if opts.Metrics == nil {
		opts.Metrics = logger.DefaultMetrics()
	}
	if opts.EnrichPageLimit <= 0 {
		opts.EnrichPageLimit = scraper.DefaultEnrichPageLimit
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 60 * time.Second
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}

	s := &Server{
		source:  source,
		metrics: opts.Metrics,
		val:     newValidation(),
		pages:   opts.EnrichPageLimit,
		timeout: opts.RequestTimeout,
		origins: opts.AllowedOrigins,
		Now:     time.Now,
	}
	s.handler = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(chimw.RealIP)
	r.Use(accessLog(s.metrics))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(s.timeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/", s.handleWelcome)
	r.Get("/health", s.handleHealth)
	r.Get("/infos-cours", s.handleCourses)
	r.Get("/tarifs", s.handleTariffs)
	r.Get("/adhesion", s.handleMembership)
	r.Get("/evenements", s.handleEvents)
	r.Get("/evenements.ics", s.handleCalendar)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, ErrorBody{Error: "Route inconnue : " + r.URL.Path, Code: CodeNotFound})
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listening", logger.Fields{"addr": addr})
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("http shutting down", logger.Fields{"addr": addr})
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	}
}
