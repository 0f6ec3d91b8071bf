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
	"github.com/go-redis/redis/extra/redisotel/v8"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/caminemosjuntos/counseling/internal/appointment"
	"github.com/caminemosjuntos/counseling/internal/auth"
	"github.com/caminemosjuntos/counseling/internal/blog"
	"github.com/caminemosjuntos/counseling/internal/config"
	"github.com/caminemosjuntos/counseling/internal/contact"
	"github.com/caminemosjuntos/counseling/internal/db"
	"github.com/caminemosjuntos/counseling/internal/email"
	"github.com/caminemosjuntos/counseling/internal/middleware"
	"github.com/caminemosjuntos/counseling/internal/pages"
	"github.com/caminemosjuntos/counseling/internal/telemetry/metrics"
	"github.com/caminemosjuntos/counseling/internal/telemetry/tracing"
	"github.com/caminemosjuntos/counseling/internal/user"
	"github.com/caminemosjuntos/counseling/internal/web"
	"github.com/caminemosjuntos/counseling/pkg"
)

const (
	csrfFieldName   = "csrf_token"
	healthzTimeout  = 2 * time.Second
	shutdownMaxWait = 15 * time.Second
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server

	config      *config.Config
	dbPool      *pgxpool.Pool
	redisClient *redis.Client
	authService *auth.Service
	cookies     *auth.SessionStore
	renderer    *web.Renderer
	emailClient *email.Client
	csrfKey     []byte

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config *config.Config
	// SessionKey signs the session cookie, CSRFKey the csrf cookie; both 32 bytes
	SessionKey              []byte
	CSRFKey                 []byte
	SMTPPassword            string
	RedisPassword           string
	PostgresPassword        string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	cfg := params.Config

	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         cfg.PostgresHost,
		DBPort:         cfg.PostgresPort,
		DBName:         cfg.PostgresDBName,
		DBUser:         cfg.PostgresUser,
		DBPassword:     params.PostgresPassword,
		TracingEnabled: params.HoneycombTracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	}
	if err := db.Migrate(ctx, dbPool); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("migrate db: %w", err)
	}

	pgxpoolCollector := pgxpoolprometheus.NewCollector(
		dbPool,
		map[string]string{"db_name": cfg.PostgresDBName},
	)
	promRegistry := metrics.SetupPrometheus(pgxpoolCollector)
	metricsManager := metrics.NewManager("caminemos_juntos", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
		Password: params.RedisPassword,
		DB:       0, // use default DB
	})
	if params.HoneycombTracingEnabled {
		rdb.AddHook(redisotel.NewTracingHook())
	}

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "caminemos-juntos")
	if err != nil {
		return nil, err
	}

	cookies := auth.NewSessionStore(params.SessionKey, cfg.SessionLifetime(), cfg.SecureCookies)
	renderer, err := web.NewRenderer(cookies, cfg.SiteName)
	if err != nil {
		return nil, fmt.Errorf("new renderer: %w", err)
	}

	emailClient, err := email.NewClient(email.ClientParams{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: params.SMTPPassword,
		From:     cfg.SiteEmail,
	})
	if err != nil {
		return nil, fmt.Errorf("new email client: %w", err)
	}

	return &Server{
		config:      cfg,
		dbPool:      dbPool,
		redisClient: rdb,
		authService: auth.NewAuthService(cfg.SessionLifetime(), rdb),
		cookies:     cookies,
		renderer:    renderer,
		emailClient: emailClient,
		csrfKey:     params.CSRFKey,

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func (s *Server) routerSetup() http.Handler {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	reqRateLimiter := redis_rate.NewLimiter(s.redisClient)
	userRepo := user.NewRepo(s.dbPool)

	userHandler := user.NewHandler(userRepo, s.authService, s.cookies, s.renderer, s.metricsManager)
	userHandler.SetupRoutes(r, reqRateLimiter, s.config.LoginRateLimitAllowedPerMin)

	blogHandler := blog.NewHandler(
		blog.NewCachedRepo(blog.NewRepo(s.dbPool)),
		s.cookies,
		s.renderer,
		s.metricsManager,
	)
	blogHandler.SetupRoutes(r)

	appointmentHandler := appointment.NewHandler(
		appointment.NewRepo(s.dbPool),
		s.emailClient,
		s.cookies,
		s.renderer,
		s.metricsManager,
		appointment.Rules{
			Location:  s.config.AppointmentsLocation(),
			FirstHour: s.config.AppointmentsFirstHour,
			LastHour:  s.config.AppointmentsLastHour,
		},
		s.config.SiteEmail,
	)
	appointmentHandler.SetupRoutes(r, reqRateLimiter, s.config.ContactRateLimitAllowedPerMin)

	contactHandler := contact.NewHandler(s.emailClient, s.renderer, s.metricsManager, s.config.SiteEmail)
	contactHandler.SetupRoutes(r, reqRateLimiter, s.config.ContactRateLimitAllowedPerMin)

	pages.NewHandler(s.renderer).SetupRoutes(r)

	r.HandleFunc("/healthz", s.handleHealthz).Methods("GET").Name("healthz")
	r.PathPrefix("/static/").Handler(web.StaticHandler()).Methods("GET").Name("static")

	middlewares := []mux.MiddlewareFunc{
		middleware.PanicRecovery(s.metricsManager),
		middleware.LogRequest(),
		middleware.RequestMetrics(s.metricsManager),
		middleware.CurrentUser(s.cookies, s.authService, userRepo, s.config.AdminUserID),
	}
	r.Use(middlewares...)

	// all the rest - unhandled paths; mux skips r.Use middlewares for these
	var notFound http.Handler = s.renderer.NotFoundHandler()
	for i := len(middlewares) - 1; i >= 0; i-- {
		notFound = middlewares[i](notFound)
	}
	r.NotFoundHandler = notFound

	// csrf runs before routing, so every handler can put the token field in its forms.
	// It parses form posts itself, hence the body limit goes around it.
	protect := csrf.Protect(
		s.csrfKey,
		csrf.Secure(s.config.SecureCookies),
		csrf.Path("/"),
		csrf.FieldName(csrfFieldName),
		csrf.ErrorHandler(s.renderer.ErrorHandler(http.StatusForbidden)),
	)
	return middleware.DrainAndCloseRequest(middleware.DefaultMaxBodyBytes)(protect(r))
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthzTimeout)
	defer cancel()

	if err := s.dbPool.Ping(ctx); err != nil {
		log.Errorf("healthz, ping db: %s", err)
		http.Error(w, "db unavailable", http.StatusServiceUnavailable)
		return
	}
	if err := s.redisClient.Ping(ctx).Err(); err != nil {
		log.Errorf("healthz, ping redis: %s", err)
		http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
		return
	}

	pkg.WriteTextResponseOK(w, "ok")
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

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.InstrumentMetricHandler(
		s.promRegistry,
		promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}),
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

	ctx, timeoutCancel := context.WithTimeout(context.Background(), shutdownMaxWait)
	defer timeoutCancel()

	// stop taking requests before closing what they use
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Errorf(" >>> failed to gracefully shutdown http server: %s", err)
		}
		log.Warnln("server shut down")
	}

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Errorf(" >>> failed to gracefully shutdown metrics http server: %s", err)
		}
		log.Warnln("metrics server shut down")
	}
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
