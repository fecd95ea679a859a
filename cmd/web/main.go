package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/fixlabtech/fixlab-technologies/internal/catalog"
	"github.com/fixlabtech/fixlab-technologies/internal/config"
	"github.com/fixlabtech/fixlab-technologies/internal/draftcache"
	"github.com/fixlabtech/fixlab-technologies/internal/handlers"
	"github.com/fixlabtech/fixlab-technologies/internal/metrics"
	mw "github.com/fixlabtech/fixlab-technologies/internal/middleware"
	"github.com/fixlabtech/fixlab-technologies/internal/observability"
	"github.com/fixlabtech/fixlab-technologies/internal/remote"
	"github.com/fixlabtech/fixlab-technologies/internal/workflow"
)

// app holds the dependencies shared by every handler.
type app struct {
	cfg        config.Config
	logger     *zap.Logger
	catalog    *catalog.Catalog
	blog       blogSource
	controller *workflow.Controller
	drafts     draftcache.Store
	sessions   *mw.Sessions
	templates  *templateSet
	analytics  handlers.Analytics
}

func main() {
	cfg, err := config.Load(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	baseLogger, err := observability.NewLogger(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()
	logger := baseLogger.Named("web")
	if cfg.Session.Ephemeral {
		logger.Warn("session keys not configured; using ephemeral keys")
	}

	ctx := context.Background()
	drafts, closeDrafts, err := newDraftStore(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to initialise draft store", zap.Error(err))
	}
	defer closeDrafts()

	client := remote.NewClient(cfg.API.BaseURL, remote.WithTimeout(cfg.API.Timeout))
	a, err := newApp(cfg, logger, client, drafts)
	if err != nil {
		logger.Fatal("failed to initialise web app", zap.Error(err))
	}

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           a.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("fixlab web listening",
			zap.String("env", cfg.Server.Environment),
			zap.String("api", cfg.API.BaseURL),
			zap.String("drafts", cfg.Drafts.Store),
			zap.Bool("reloadTemplates", cfg.UI.ReloadTemplates),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// newApp wires the controller, session codec and templates around the given
// remote client and draft store.
func newApp(cfg config.Config, logger *zap.Logger, client *remote.Client, drafts draftcache.Store) (*app, error) {
	cat, err := catalog.Load(cfg.Paths.CatalogPath)
	if err != nil {
		return nil, err
	}
	controller, err := workflow.NewController(workflow.Deps{
		Registry: client,
		Gateways: cat,
	})
	if err != nil {
		return nil, err
	}
	sessions, err := mw.NewSessions(mw.SessionOptions{
		HashKey:  cfg.Session.HashKey,
		BlockKey: cfg.Session.BlockKey,
		Secure:   cfg.Session.Secure,
	})
	if err != nil {
		return nil, err
	}
	templates, err := newTemplateSet(cfg.Paths.TemplatesDir, cfg.UI.ReloadTemplates)
	if err != nil {
		return nil, err
	}
	return &app{
		cfg:        cfg,
		logger:     logger,
		catalog:    cat,
		blog:       client,
		controller: controller,
		drafts:     drafts,
		sessions:   sessions,
		templates:  templates,
		analytics:  handlers.Analytics{GA4MeasurementID: cfg.UI.GAMeasurementID},
	}, nil
}

func newDraftStore(ctx context.Context, cfg config.Config) (draftcache.Store, func(), error) {
	dcfg := draftcache.Config{
		HashKey:  cfg.Session.HashKey,
		BlockKey: cfg.Session.BlockKey,
		TTL:      cfg.Drafts.TTL,
		Secure:   cfg.Session.Secure,
	}
	if cfg.Drafts.Store != config.DraftStoreRedis {
		store, err := draftcache.NewCookieStore(dcfg)
		return store, func() {}, err
	}
	client, err := draftcache.NewRedisClient(ctx, cfg.Drafts.RedisAddr, cfg.Drafts.RedisPassword, cfg.Drafts.RedisDB)
	if err != nil {
		return nil, nil, err
	}
	store, err := draftcache.NewRedisStore(client, dcfg)
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return store, func() { _ = client.Close() }, nil
}

func (a *app) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	// If deployed behind a trusted reverse proxy/load balancer, RealIP will use
	// X-Forwarded-For to determine the client IP.
	r.Use(middleware.RealIP)
	r.Use(mw.HTMX)
	r.Use(mw.Logger(a.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(middleware.Timeout(a.cfg.Server.RequestTimeout))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", metrics.Handler())

	// Static assets under /assets/
	r.Handle("/assets/*", mw.AssetsWithCache(filepath.Join(a.cfg.Paths.PublicDir, "assets"), "/assets"))

	limiter := mw.NewRateLimiter(a.cfg.RateLimit.PerMinute, a.cfg.RateLimit.Burst)
	r.Group(func(r chi.Router) {
		r.Use(a.sessions.Middleware)
		r.Use(mw.CSRF(a.sessions.Secure()))
		r.Use(limiter.Middleware)

		r.Get("/", a.HomeHandler)
		r.Get("/start", a.ChooserHandler)

		r.Get("/register", a.RegisterHandler)
		r.Post("/register", a.RegisterSubmitHandler)
		r.Get("/register/courses", a.CourseOptionsFrag)
		r.Get("/already-registered", a.AlreadyRegisteredHandler)
		r.Post("/already-registered", a.AlreadyRegisteredSubmitHandler)
		r.Post("/registration/confirm", a.ConfirmHandler)
		r.Post("/registration/cancel", a.CancelHandler)
		r.Get("/payment-success", a.PaymentSuccessHandler)

		r.Get("/blog", a.BlogHandler)
		r.Get("/blog/{id}", a.BlogPostHandler)
		r.Post("/blog/{id}/comments", a.CommentSubmitHandler)
		r.Post("/newsletter", a.NewsletterHandler)
		r.Post("/contact", a.ContactHandler)
	})
	r.NotFound(a.NotFoundHandler)
	return r
}
