package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/de-tools/posture-atlas/pkg/graphql"
	"github.com/de-tools/posture-atlas/pkg/handlers/compliance"
	"github.com/de-tools/posture-atlas/pkg/handlers/dashboard"
	"github.com/de-tools/posture-atlas/pkg/handlers/incident"
	"github.com/de-tools/posture-atlas/pkg/handlers/metric"
	"github.com/de-tools/posture-atlas/pkg/handlers/respond"
	"github.com/de-tools/posture-atlas/pkg/handlers/vulnerability"
	postureatlasmiddleware "github.com/de-tools/posture-atlas/pkg/server/middleware"
	compliancesvc "github.com/de-tools/posture-atlas/pkg/services/compliance"
	incidentsvc "github.com/de-tools/posture-atlas/pkg/services/incident"
	metricsvc "github.com/de-tools/posture-atlas/pkg/services/metric"
	"github.com/de-tools/posture-atlas/pkg/services/posture"
	vulnerabilitysvc "github.com/de-tools/posture-atlas/pkg/services/vulnerability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

const defaultShutdownTimeout = 10 * time.Second

type WebAPI struct {
	router          http.Handler
	logger          *zerolog.Logger
	server          *http.Server
	shutdownTimeout time.Duration
}

type Dependencies struct {
	Vulnerabilities vulnerabilitysvc.Service
	Incidents       incidentsvc.Service
	Compliance      compliancesvc.Service
	Metrics         metricsvc.Service
	Aggregator      posture.Aggregator
	Logger          zerolog.Logger
}

type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	CORSOrigins     []string
	AppName         string
	Version         string
	Dependencies    Dependencies
}

func ConfigureRouter(config Config) (http.Handler, error) {
	deps := config.Dependencies
	logger := deps.Logger

	schema, err := graphql.NewSchema(deps.Aggregator)
	if err != nil {
		return nil, err
	}

	vulnHandler := vulnerability.NewHandler(deps.Vulnerabilities)
	incidentHandler := incident.NewHandler(deps.Incidents)
	complianceHandler := compliance.NewHandler(deps.Compliance)
	metricHandler := metric.NewHandler(deps.Metrics)
	dashboardHandler := dashboard.NewHandler(deps.Aggregator)
	graphqlHandler := graphql.NewHandler(schema)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(postureatlasmiddleware.Logger(&logger))
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   config.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, r, http.StatusOK, map[string]string{
			"message": config.AppName,
			"version": config.Version,
		})
	})
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, r, http.StatusOK, map[string]string{"status": "healthy"})
	})

	router.Route("/api", func(r chi.Router) {
		r.Route("/vulnerabilities", func(r chi.Router) {
			r.Get("/", vulnHandler.List)
			r.Post("/", vulnHandler.Create)
			r.Get("/{id}", vulnHandler.Get)
			r.Patch("/{id}", vulnHandler.Update)
			r.Delete("/{id}", vulnHandler.Delete)
		})

		r.Route("/incidents", func(r chi.Router) {
			r.Get("/", incidentHandler.List)
			r.Post("/", incidentHandler.Create)
			r.Get("/{id}", incidentHandler.Get)
			r.Patch("/{id}", incidentHandler.Update)
			r.Delete("/{id}", incidentHandler.Delete)
		})

		r.Route("/compliance", func(r chi.Router) {
			r.Get("/frameworks", complianceHandler.ListFrameworks)
			r.Post("/frameworks", complianceHandler.CreateFramework)
			r.Get("/frameworks/{id}", complianceHandler.GetFramework)
			r.Delete("/frameworks/{id}", complianceHandler.DeleteFramework)
			r.Get("/frameworks/{id}/controls", complianceHandler.ListControls)
			r.Post("/frameworks/{id}/controls", complianceHandler.CreateControl)
			r.Get("/frameworks/{id}/assessments", complianceHandler.ListAssessments)
			r.Post("/frameworks/{id}/assess", complianceHandler.Assess)
			r.Patch("/controls/{id}", complianceHandler.UpdateControl)
			r.Post("/assessments", complianceHandler.CreateAssessment)
		})

		r.Get("/metrics", metricHandler.List)
		r.Post("/metrics", metricHandler.Record)

		r.Get("/dashboard/posture", dashboardHandler.Posture)
		r.Get("/dashboard/stats", dashboardHandler.Stats)

		r.Post("/graphql", graphqlHandler.Query)
	})

	return router, nil
}

func NewWebAPI(logger zerolog.Logger, config Config) (*WebAPI, error) {
	config.Dependencies.Logger = logger
	router, err := ConfigureRouter(config)
	if err != nil {
		return nil, err
	}

	timeout := config.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}

	return &WebAPI{
		router:          router,
		logger:          &logger,
		shutdownTimeout: timeout,
		server: &http.Server{
			Addr:              config.Addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

func (w *WebAPI) Start() error {
	serverErrors := make(chan error, 1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-shutdown:
		w.logger.Info().Msg("shutdown initiated")

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), w.shutdownTimeout)
		defer cancel()

		err := w.server.Shutdown(ctx)
		if err != nil {
			w.logger.Error().Err(err).Msg("graceful shutdown failed")
			err = w.server.Close()
		}

		if err != nil {
			return err
		}
	}

	return nil
}
