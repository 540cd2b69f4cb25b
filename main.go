package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	analyticsinterfaces "chargemap/internal/analytics/interfaces"
	"chargemap/internal/auth"
	"chargemap/internal/config"
	"chargemap/internal/observability/metrics"
	suggestionapp "chargemap/internal/suggestion/application"
	"chargemap/internal/suggestion/infrastructure/jsonfile"
	suggestionpostgres "chargemap/internal/suggestion/infrastructure/postgres"
	suggestioninterfaces "chargemap/internal/suggestion/interfaces"
	suggestionnotify "chargemap/internal/suggestion/notify"
	"chargemap/internal/tabular"
	"chargemap/internal/wiring"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags)
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config error: %v", err)
	}

	memo := tabular.NewMemo(cfg.CacheTTL)
	pipeline, err := wiring.NewDemandPipeline(cfg, memo, logger)
	if err != nil {
		logger.Fatalf("demand pipeline error: %v", err)
	}

	var (
		db    *sql.DB
		store suggestionapp.Store
	)
	switch cfg.Suggestions.Store {
	case config.StorePostgres:
		db, err = sql.Open("pgx", cfg.Suggestions.DatabaseURL)
		if err != nil {
			logger.Fatalf("db open error: %v", err)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			logger.Fatalf("db ping error: %v", err)
		}
		pgStore := suggestionpostgres.NewStore(db, suggestionpostgres.WithTable(cfg.Suggestions.Table))
		if err := pgStore.EnsureSchema(context.Background()); err != nil {
			logger.Fatalf("suggestion schema error: %v", err)
		}
		store = pgStore
	default:
		fileStore, err := jsonfile.NewStore(cfg.Suggestions.Path)
		if err != nil {
			logger.Fatalf("suggestion file error: %v", err)
		}
		store = fileStore
	}

	metrics.Init(db, logger, metrics.WithSuggestionsTable(cfg.Suggestions.Table))

	serviceOpts := []suggestionapp.Option{
		suggestionapp.WithRegion(cfg.Region.Region()),
		suggestionapp.WithLogger(logger),
	}
	if cfg.Suggestions.WebhookURL != "" {
		notifier, err := buildNotifier(cfg.Suggestions, logger)
		if err != nil {
			logger.Fatalf("suggestion notifier error: %v", err)
		}
		serviceOpts = append(serviceOpts, suggestionapp.WithNotifier(notifier))
	}
	suggestionService, err := suggestionapp.NewService(store, serviceOpts...)
	if err != nil {
		logger.Fatalf("suggestion service error: %v", err)
	}
	suggestionHandler, err := suggestioninterfaces.NewHandler(suggestionService, logger)
	if err != nil {
		logger.Fatalf("suggestion handler error: %v", err)
	}

	opts := analyticsinterfaces.Options{
		Thresholds:  cfg.Thresholds,
		ReportLimit: cfg.ReportLimit,
		Logger:      logger,
	}

	mux := http.NewServeMux()
	mux.Handle("/api/v1/demand", analyticsinterfaces.NewDemandHandler(pipeline, opts))
	mux.Handle("/api/v1/heatmap", analyticsinterfaces.NewHeatmapHandler(pipeline, opts))
	mux.Handle("/api/v1/layers/", analyticsinterfaces.NewLayerHandler(pipeline, opts))
	mux.Handle("/api/v1/report", analyticsinterfaces.NewReportHandler(pipeline, opts))
	mux.Handle("/api/v1/exports/", analyticsinterfaces.NewExportHandler(pipeline, opts))
	mux.Handle("/api/v1/suggestions", suggestionHandler)
	mux.Handle("/api/v1/suggestions/", suggestionHandler)
	if cfg.Auth.ReviewerPassword != "" {
		loginHandler, err := auth.NewLoginHandler(cfg.Auth.ReviewerPassword, []byte(cfg.Auth.JWTSecret),
			auth.WithTokenTTL(cfg.Auth.TokenTTL),
			auth.WithLoginLogger(logger),
		)
		if err != nil {
			logger.Fatalf("login handler error: %v", err)
		}
		mux.Handle("/api/v1/auth/login", loginHandler)
	} else {
		logger.Printf("REVIEWER_PASSWORD not set: suggestion review disabled")
	}
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.Auth.JWTSecret), policy)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           loggingMiddleware(authMiddleware.Wrap(mux), logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

func buildNotifier(cfg config.SuggestionConfig, logger *log.Logger) (*suggestionnotify.Notifier, error) {
	channel, err := suggestionnotify.NewWebhookChannel(cfg.WebhookURL)
	if err != nil {
		return nil, err
	}
	tpl, err := suggestionnotify.NewTemplate(cfg.Template)
	if err != nil {
		return nil, err
	}
	return suggestionnotify.NewNotifier(channel, tpl,
		suggestionnotify.WithEvents(cfg.Events...),
		suggestionnotify.WithReviewBaseURL(cfg.PublicURL),
		suggestionnotify.WithDedupeWindow(time.Minute),
		suggestionnotify.WithLogger(logger),
	)
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
