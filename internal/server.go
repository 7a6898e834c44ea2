package internal

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/visionlog/visionlog/internal/config"
	"github.com/visionlog/visionlog/internal/db"
	"github.com/visionlog/visionlog/internal/export"
	vlmetrics "github.com/visionlog/visionlog/internal/metrics"
	"github.com/visionlog/visionlog/internal/middleware"
	"github.com/visionlog/visionlog/internal/sessions"
	"github.com/visionlog/visionlog/internal/telemetry/metrics"
	"github.com/visionlog/visionlog/internal/telemetry/tracing"
	"github.com/visionlog/visionlog/pkg"
)

//go:embed templates/index.html
var templatesFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server

	config   *config.Config
	database *sql.DB

	// telemetry
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config         *config.Config
	TracingEnabled bool
}

func NewServer(ctx context.Context, params NewServerParams) (*Server, error) {
	database, err := db.Open(params.Config.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Setup(ctx, database); err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}
	log.Debugf("using sqlite db: [%s]", params.Config.DBPath)

	promRegistry := metrics.SetupPrometheus()
	metricsManager := metrics.NewManager("visionlog", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0) // set to 1 once serving

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.Setup(params.TracingEnabled, "visionlog-backend")
	if err != nil {
		return nil, err
	}

	return &Server{
		config:   params.Config,
		database: database,

		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	sessionsRepo := sessions.NewRepo(s.database)
	sessionsHandler := sessions.NewHandler(
		sessions.NewService(sessionsRepo),
		s.metricsManager,
	)
	r.HandleFunc("/api/sessions", sessionsHandler.HandleAdd).Methods("POST", "OPTIONS").Name("new-session")

	metricsRepo := vlmetrics.NewRepo(s.database)
	metricsHandler := vlmetrics.NewHandler(
		vlmetrics.NewService(metricsRepo),
		s.metricsManager,
	)
	r.HandleFunc("/api/metrics", metricsHandler.HandleAdd).Methods("POST", "OPTIONS").Name("new-metric")

	exportHandler := export.NewHandler(
		export.NewExporter(sessionsRepo, metricsRepo),
		s.metricsManager,
	)
	r.HandleFunc("/api/export.csv", exportHandler.HandleExportCSV).Methods("GET").Name("export-csv")

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		pkg.WriteResponse(w, pkg.ContentType.JSON, `{"ok":true}`, http.StatusOK)
	}).Methods("GET").Name("healthz")

	r.HandleFunc("/", s.handleIndex).Methods("GET").Name("index")

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "OPTIONS").Name("unknown")

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors())
	if s.config.TrustProxy {
		r.Use(middleware.TrustProxyHeaders())
	}
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", pkg.ContentType.HTML)
	if err := indexTemplate.Execute(w, struct {
		Now string
	}{
		Now: time.Now().Format("2006-01-02 15:04"),
	}); err != nil {
		log.Errorf("render index: %s", err)
	}
}

func (s *Server) Serve(host string, port int) {
	router := s.routerSetup()

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(
		s.promRegistry,
		promhttp.HandlerOpts{},
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.database != nil {
		if err := s.database.Close(); err != nil {
			log.Errorf("failed to close db: %s", err)
		}
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Error(" >>> failed to gracefully shutdown http server")
	}
	log.Warnln("server shut down")

	if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
		log.Error(" >>> failed to gracefully shutdown metrics http server")
	}
	log.Warnln("metrics server shut down")
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
