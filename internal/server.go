package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/multierr"

	"github.com/2beens/blogtracker/internal/auth"
	"github.com/2beens/blogtracker/internal/blog"
	"github.com/2beens/blogtracker/internal/config"
	"github.com/2beens/blogtracker/internal/db"
	"github.com/2beens/blogtracker/internal/middleware"
	"github.com/2beens/blogtracker/internal/misc"
	"github.com/2beens/blogtracker/internal/telemetry/metrics"
	"github.com/2beens/blogtracker/internal/telemetry/tracing"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config      *config.Config
	dbPool      *pgxpool.Pool
	mongoClient *mongo.Client
	blogService *blog.Service
	verifier    *auth.Verifier

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	VersionInfo             string
	HoneycombTracingEnabled bool
	// TokenVerifier replaces the firebase verifier when set (tests, local runs)
	TokenVerifier auth.TokenVerifier
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (_ *Server, err error) {
	cfg := params.Config
	s := &Server{
		config:      cfg,
		versionInfo: params.VersionInfo,
	}
	defer func() {
		if err != nil {
			_ = s.closeResources()
		}
	}()

	// use honeycomb distro to setup OpenTelemetry SDK
	s.otelShutdown, err = tracing.HoneycombSetup(params.HoneycombTracingEnabled, "blogtracker")
	if err != nil {
		return nil, fmt.Errorf("tracing setup: %w", err)
	}

	s.promRegistry = metrics.SetupPrometheus()
	s.metricsManager = metrics.NewManager("backend", "main", s.promRegistry)
	s.metricsManager.GaugeLifeSignal.Set(0)

	switch cfg.Storage {
	case config.StorageMongo:
		s.mongoClient, err = db.NewMongoClient(ctx, cfg.MongoURI)
		if err != nil {
			return nil, fmt.Errorf("new mongo client: %w", err)
		}
		s.blogService = blog.NewService(
			blog.NewMongoRepo(s.mongoClient, cfg.MongoDBName),
			s.metricsManager,
		)
	default:
		s.dbPool, err = db.NewDBPool(ctx, db.NewDBPoolParams{
			ConnString:     cfg.PostgresConnString(),
			TracingEnabled: params.HoneycombTracingEnabled,
		})
		if err != nil {
			return nil, fmt.Errorf("new db pool: %w", err)
		}

		if err := s.dbPool.Ping(ctx); err != nil {
			log.Warnf("failed to ping db: %s", err)
		} else {
			log.Debugln("postgres connected")
		}

		if cfg.MigrateOnStart {
			if err := db.Migrate(ctx, s.dbPool); err != nil {
				return nil, fmt.Errorf("migrate: %w", err)
			}
		}

		s.promRegistry.MustRegister(pgxpoolprometheus.NewCollector(
			s.dbPool,
			map[string]string{"db_name": cfg.PostgresDBName},
		))
		s.blogService = blog.NewService(
			blog.NewPsqlRepo(s.dbPool),
			s.metricsManager,
		)
	}

	tokenVerifier := params.TokenVerifier
	if tokenVerifier == nil {
		tokenVerifier, err = auth.NewFirebaseTokenVerifier(ctx, cfg.FirebaseKeyPath)
		if err != nil {
			return nil, fmt.Errorf("firebase token verifier: %w", err)
		}
	}
	s.verifier = auth.NewVerifier(tokenVerifier)

	return s, nil
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	miscHandler := misc.NewHandler(s.versionInfo)
	miscHandler.SetupRoutes(r)

	blogHandler := blog.NewHandler(s.blogService)
	blogHandler.SetupRoutes(r)

	authMiddleware := middleware.NewAuthMiddlewareHandler(
		s.verifier,
		s.metricsManager,
		[]string{
			misc.RouteRoot,
			misc.RouteVersion,
			blog.RoutePublicPosts,
		},
		[]string{
			blog.RouteGetPost,
		},
	)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.AllowedOrigins))
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

func (s *Server) Serve(host string, port int) {
	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      s.routerSetup(),
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	if s.config.PrometheusMetricsPort != "" {
		metricsRouter := mux.NewRouter()
		metricsRouter.Handle("/metrics", otelhttp.NewHandler(
			promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}),
			"metrics",
		))
		metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
		s.metricsHttpServer = &http.Server{
			Addr:              metricsAddr,
			Handler:           metricsRouter,
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			log.Debugf(" > metrics listening on: [%s]", metricsAddr)
			err := s.metricsHttpServer.ListenAndServe()
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatalf("metrics service, listen and serve: %s", err)
			}
		}()
	}

	s.metricsManager.GaugeLifeSignal.Set(1)
}

// GracefulShutdown stops accepting requests, waits for the running ones and
// then releases the storage and telemetry resources
func (s *Server) GracefulShutdown() error {
	log.Debug("graceful shutdown initiated ...")

	if s.metricsManager != nil {
		s.metricsManager.GaugeLifeSignal.Set(0)
	}

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	var err error
	if s.httpServer != nil {
		if shutdownErr := s.httpServer.Shutdown(ctx); shutdownErr != nil {
			log.Error(" >>> failed to gracefully shutdown http server")
			err = multierr.Append(err, fmt.Errorf("http server shutdown: %w", shutdownErr))
		}
		log.Warnln("server shut down")
	}

	if s.metricsHttpServer != nil {
		if shutdownErr := s.metricsHttpServer.Shutdown(ctx); shutdownErr != nil {
			log.Error(" >>> failed to gracefully shutdown metrics http server")
			err = multierr.Append(err, fmt.Errorf("metrics server shutdown: %w", shutdownErr))
		}
		log.Warnln("metrics server shut down")
	}

	err = multierr.Append(err, s.closeResources())

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	return err
}

func (s *Server) closeResources() error {
	var err error

	if s.mongoClient != nil {
		log.Debugln("disconnecting mongo client ...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if disconnectErr := s.mongoClient.Disconnect(ctx); disconnectErr != nil {
			log.Errorf("failed to disconnect mongo client: %s", disconnectErr)
			err = multierr.Append(err, fmt.Errorf("mongo disconnect: %w", disconnectErr))
		}
		cancel()
		s.mongoClient = nil
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		s.dbPool = nil
		log.Debugln("db pool closed")
	}

	if s.otelShutdown != nil {
		s.otelShutdown()
		s.otelShutdown = nil
		log.Trace("otel shut down ...")
	}

	return err
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed, http.StateHijacked:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
