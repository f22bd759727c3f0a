package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	alertapp "gasbalance-cloud/internal/alerts/application"
	alerts "gasbalance-cloud/internal/alerts/domain"
	alertmemory "gasbalance-cloud/internal/alerts/infrastructure/memory"
	alertrepo "gasbalance-cloud/internal/alerts/infrastructure/postgres"
	alerthttp "gasbalance-cloud/internal/alerts/interfaces/http"
	alertnotify "gasbalance-cloud/internal/alerts/notify"
	analyticsapp "gasbalance-cloud/internal/analytics/application"
	analyticshttp "gasbalance-cloud/internal/analytics/interfaces/http"
	apihttp "gasbalance-cloud/internal/api/http"
	"gasbalance-cloud/internal/audit"
	"gasbalance-cloud/internal/auth"
	sessionmemory "gasbalance-cloud/internal/auth/infrastructure/memory"
	sessionredis "gasbalance-cloud/internal/auth/infrastructure/redis"
	"gasbalance-cloud/internal/backend"
	"gasbalance-cloud/internal/config"
	"gasbalance-cloud/internal/observability/metrics"
	"gasbalance-cloud/internal/reports"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags)
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config error: %v", err)
	}

	var db *sql.DB
	if cfg.DatabaseURL != "" {
		db, err = sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("db open error: %v", err)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			logger.Fatalf("db ping error: %v", err)
		}
	}
	metrics.Init(db, logger)

	var auditLogger audit.Logger
	if db != nil {
		auditLogger = audit.NewRepository(db)
	} else {
		writer, err := audit.NewLogWriter(logger)
		if err != nil {
			logger.Fatalf("audit writer error: %v", err)
		}
		auditLogger = writer
	}

	var sessionStore auth.SessionStore
	if cfg.RedisAddr != "" {
		store, err := sessionredis.NewSessionStore(cfg.RedisAddr)
		if err != nil {
			logger.Fatalf("redis session store error: %v", err)
		}
		defer store.Close()
		sessionStore = store
	} else {
		sessionStore = sessionmemory.NewSessionStore()
	}
	sessions, err := auth.NewSessionManager(sessionStore, auth.WithSessionTTL(cfg.SessionTTL))
	if err != nil {
		logger.Fatalf("session manager error: %v", err)
	}

	secret := []byte(cfg.JWTSecret)
	if len(secret) == 0 {
		// Tokens issued with a generated secret do not survive a restart.
		secret = []byte(uuid.NewString())
		logger.Printf("AUTH_JWT_SECRET not set, using an ephemeral secret")
	}

	var client *backend.Client
	if cfg.BackendBaseURL != "" {
		client, err = backend.NewClient(cfg.BackendBaseURL, cfg.BackendToken)
		if err != nil {
			logger.Fatalf("backend client error: %v", err)
		}
	}

	alertRepo, err := buildAlertRepository(cfg, db, client)
	if err != nil {
		logger.Fatalf("alert repository error: %v", err)
	}

	broker := alerthttp.NewSSEBroker()
	notifiers := []alertapp.AlertNotifier{broker}
	if cfg.Notify.WebhookURL != "" {
		channel, err := alertnotify.NewWebhookChannel(cfg.Notify.WebhookURL)
		if err != nil {
			logger.Fatalf("alert webhook error: %v", err)
		}
		tpl, err := alertnotify.NewTemplate(cfg.Notify.Template)
		if err != nil {
			logger.Fatalf("alert template error: %v", err)
		}
		webhook, err := alertnotify.NewNotifier(alertRepo, channel, tpl,
			alertnotify.WithEscalation(cfg.Notify.EscalateAfter),
			alertnotify.WithCooldown(cfg.Notify.Cooldown),
			alertnotify.WithDedupeWindow(cfg.Notify.DedupeWindow),
			alertnotify.WithRequestTimeout(cfg.Notify.RequestTimeout),
		)
		if err != nil {
			logger.Fatalf("alert notifier error: %v", err)
		}
		defer webhook.Close()
		notifiers = append(notifiers, webhook)
	}
	alertService, err := alertapp.NewService(alertRepo, alertapp.WithNotifier(alertnotify.NewMultiNotifier(notifiers...)))
	if err != nil {
		logger.Fatalf("alert service error: %v", err)
	}
	alertHandler, err := alerthttp.NewHandler(alertService, auditLogger)
	if err != nil {
		logger.Fatalf("alert handler error: %v", err)
	}

	calculator, err := cfg.HealthCalculator()
	if err != nil {
		logger.Fatalf("health calculator error: %v", err)
	}
	healthOpts := []analyticsapp.Option{}
	analyticsOpts := []analyticshttp.HandlerOption{}
	var balances reports.BalanceSource
	if client != nil {
		healthOpts = append(healthOpts, analyticsapp.WithSource(client))
		analyticsOpts = append(analyticsOpts,
			analyticshttp.WithScatterSource(client),
			analyticshttp.WithRankingSource(client),
		)
		balances = client
	}
	healthService, err := analyticsapp.NewHealthService(calculator, backend.NewTracker(), healthOpts...)
	if err != nil {
		logger.Fatalf("health service error: %v", err)
	}
	analyticsHandler, err := analyticshttp.NewHandler(healthService, logger, analyticsOpts...)
	if err != nil {
		logger.Fatalf("analytics handler error: %v", err)
	}

	reportHandler, err := reports.NewHandler(alertService, balances, alerthttp.FilterFromQuery, logger)
	if err != nil {
		logger.Fatalf("report handler error: %v", err)
	}

	authMiddleware := auth.NewMiddleware(secret, newAuthPolicy(), sessions)

	sessionHandler, err := apihttp.NewSessionHandler(sessions, authMiddleware, secret, auditLogger, logger)
	if err != nil {
		logger.Fatalf("session handler error: %v", err)
	}
	accessHandler := apihttp.NewAccessHandler()
	periodHandler := apihttp.NewPeriodHandler()

	mux := http.NewServeMux()
	mux.Handle("/api/v1/session", sessionHandler)
	mux.Handle("/api/v1/roles", accessHandler)
	mux.Handle("/api/v1/permissions", accessHandler)
	mux.Handle("/api/v1/navigation", accessHandler)
	mux.Handle("/api/v1/periods/", periodHandler)
	mux.Handle("/api/v1/alerts/stream", alerthttp.NewStreamHandler(broker))
	mux.Handle("/api/v1/alerts", alertHandler)
	mux.Handle("/api/v1/alerts/", alertHandler)
	mux.Handle("/api/v1/analytics/", analyticsHandler)
	mux.Handle("/api/v1/reports/", reportHandler)
	if client != nil {
		balancesHandler, err := apihttp.NewBalancesHandler(client, logger)
		if err != nil {
			logger.Fatalf("balances handler error: %v", err)
		}
		mux.Handle("/api/v1/balances/", balancesHandler)
	}
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				http.Error(w, "db unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           loggingMiddleware(authMiddleware.Wrap(mux), logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Printf("gasbalance listening on %s (alerts=%s backend=%t)", cfg.HTTPAddr, cfg.AlertsSource, client != nil)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("http server error: %v", err)
	}
}

// newAuthPolicy exempts probes and the session route itself, which resolves
// its caller on its own.
func newAuthPolicy() auth.Policy {
	return auth.NewDefaultPolicy([]string{"/healthz", "/metrics", "/api/v1/session"}, nil)
}

func buildAlertRepository(cfg config.Config, db *sql.DB, client *backend.Client) (alerts.Repository, error) {
	switch cfg.AlertsSource {
	case config.AlertsSourcePostgres:
		repo, err := alertrepo.NewAlertRepository(db)
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return repo, nil
	case config.AlertsSourceBackend:
		return backend.NewAlertRepository(client)
	default:
		var seed []alerts.Alert
		if cfg.SeedAlerts {
			seed = alertmemory.DefaultAlerts()
		}
		return alertmemory.NewAlertRepository(seed), nil
	}
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Flush keeps the alert stream working through the logging wrapper.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
