package main

import (
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeongsedam/policy-cli/internal/export"
	"github.com/jeongsedam/policy-cli/internal/session"
	"github.com/jeongsedam/policy-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initMigratedStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		api := &apiServer{
			store:    st,
			session:  session.New(),
			exporter: export.New(st, cfg.Export),
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: api.routes(),
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// apiServer holds the shared state behind the HTTP handlers.
type apiServer struct {
	store    store.Store
	session  *session.Session
	exporter *export.Exporter
}

func (s *apiServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/policies", func(r chi.Router) {
			r.Post("/", s.handleCreatePolicy)
			r.Get("/", s.handleListPolicies)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetPolicy)
				r.Put("/status", s.handleUpdateStatus)
				r.Post("/analyze", s.handleAnalyze)
				r.Post("/images", s.handleGenerateImages)
				r.Post("/video-prompts", s.handleVideoPrompts)
				r.Get("/export.zip", s.handleExportZIP)
				r.Get("/export.pdf", s.handleExportPDF)
			})
		})

		r.Get("/categories", s.handleCategories)

		r.Route("/session", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Post("/reset", s.handleResetSession)
		})
	})

	return r
}
