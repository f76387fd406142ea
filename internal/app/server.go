package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/markdave123-py/docquery/internal/api/handlers"
	appMiddleware "github.com/markdave123-py/docquery/internal/api/middlewares"
	"github.com/markdave123-py/docquery/internal/config"
	"github.com/markdave123-py/docquery/internal/metrics"
	"github.com/markdave123-py/docquery/internal/services"
)

const shutdownTimeout = 15 * time.Second

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
	log        *zap.Logger
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, log *zap.Logger, docs *services.DocumentService, comments *services.CommentService) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           NewRouter(cfg, log, docs, comments),
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: log,
	}
}

// NewRouter returns the HTTP handler tree.
func NewRouter(cfg *config.Config, log *zap.Logger, docs *services.DocumentService, comments *services.CommentService) http.Handler {
	docHandler := handlers.NewDocumentHandler(docs, cfg.MaxUploadBytes)
	chatHandler := handlers.NewChatHandler(docs)
	commentHandler := handlers.NewCommentHandler(comments)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(appMiddleware.RequestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware())

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Route("/documents", func(d chi.Router) {
			d.Get("/", docHandler.GetDocuments)
			d.Post("/", docHandler.UploadDocument)
			d.Get("/{id}", docHandler.GetDocument)
			d.Delete("/{id}", docHandler.DeleteDocument)
		})
		api.Route("/comments", func(c chi.Router) {
			c.Get("/", commentHandler.GetComments)
			c.Post("/", commentHandler.CreateComment)
			c.Delete("/{id}", commentHandler.DeleteComment)
		})
		api.Post("/ai/ask", chatHandler.Ask)
	})

	return r
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info("HTTP server listening", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
