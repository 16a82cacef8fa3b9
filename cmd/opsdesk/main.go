package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/opsdesk/opsdesk/modules/categories"
	"github.com/opsdesk/opsdesk/modules/dashboard"
	"github.com/opsdesk/opsdesk/modules/directory"
	"github.com/opsdesk/opsdesk/modules/notify"
	"github.com/opsdesk/opsdesk/modules/tickets"
	"github.com/opsdesk/opsdesk/pkg/config"
	"github.com/opsdesk/opsdesk/pkg/datastore"
	"github.com/opsdesk/opsdesk/pkg/email"
	"github.com/opsdesk/opsdesk/pkg/httpserver"
	"github.com/opsdesk/opsdesk/pkg/logger"
	"github.com/opsdesk/opsdesk/pkg/ratelimit"
	"github.com/opsdesk/opsdesk/pkg/rbac"
	"github.com/opsdesk/opsdesk/pkg/redis"
	"github.com/opsdesk/opsdesk/pkg/storage"
	"github.com/opsdesk/opsdesk/pkg/toast"
	"github.com/opsdesk/opsdesk/pkg/web"
)

type appConfig struct {
	Env string `env:"APP_ENV" envDefault:"development"`

	// memory, postgres or rest.
	DatastoreBackend string `env:"DATASTORE_BACKEND" envDefault:"memory"`

	// local or s3.
	StorageBackend  string `env:"STORAGE_BACKEND" envDefault:"local"`
	StorageLocalDir string `env:"STORAGE_LOCAL_DIR" envDefault:"./data/attachments"`
	StorageBaseURL  string `env:"STORAGE_LOCAL_BASE_URL" envDefault:"/files"`

	// memory or redis.
	RatelimitBackend string        `env:"RATELIMIT_BACKEND" envDefault:"memory"`
	FilingLimit      int           `env:"FILING_RATE_LIMIT" envDefault:"10"`
	FilingWindow     time.Duration `env:"FILING_RATE_WINDOW" envDefault:"1m"`

	RolesFile   string `env:"RBAC_ROLES_FILE"`
	DefaultRole string `env:"RBAC_DEFAULT_ROLE" envDefault:"user"`

	ToastMaxVisible  int           `env:"TOAST_MAX_VISIBLE" envDefault:"1"`
	ToastRemoveDelay time.Duration `env:"TOAST_REMOVE_DELAY" envDefault:"1000000ms"`
}

func main() {
	ctx := context.Background()

	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.New(logger.WithEnvironment(cfg.Env, "opsdesk"))
	logger.SetAsDefault(log)

	if err := run(ctx, cfg, log); err != nil {
		log.ErrorContext(ctx, "opsdesk exited", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	store, closeStore, err := newDatastore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	hub := toast.NewHub(
		toast.WithMaxVisible(cfg.ToastMaxVisible),
		toast.WithRemoveDelay(cfg.ToastRemoveDelay),
	)

	authz, err := newAuthorizer(ctx, cfg)
	if err != nil {
		return err
	}

	mailer := newMailer(log)

	blobs, err := newStorage(ctx, cfg)
	if err != nil {
		return err
	}

	filingLimit, readyChecks, err := newFilingLimit(ctx, cfg)
	if err != nil {
		return err
	}

	errHandler := web.NewErrorHandler[web.Context](log, hub)

	directorySvc := directory.NewService(store, authz,
		directory.WithToasts(hub),
		directory.WithLogger(log),
		directory.WithErrorHandler(errHandler))

	categorySvc := categories.NewService(store, authz,
		categories.WithToasts(hub),
		categories.WithLogger(log),
		categories.WithErrorHandler(errHandler))

	ticketSvc := tickets.NewService(store, authz,
		tickets.WithToasts(hub),
		tickets.WithMailer(mailer, directorySvc),
		tickets.WithStorage(blobs),
		tickets.WithCategories(categorySvc),
		tickets.WithLogger(log),
		tickets.WithErrorHandler(errHandler),
		tickets.WithFilingLimit(filingLimit))

	dashboardSvc := dashboard.NewService(authz, ticketSvc,
		dashboard.WithAdminSources(directorySvc, categorySvc),
		dashboard.WithLogger(log),
		dashboard.WithErrorHandler(errHandler))

	notifySvc := notify.NewService(hub,
		notify.WithLogger(log),
		notify.WithErrorHandler(errHandler))

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(web.SessionMiddleware)
	r.Use(web.ActorMiddleware)
	r.Use(rbac.Identify(authz, cfg.DefaultRole))

	r.Get("/healthz", httpserver.Healthcheck(log))
	r.Get("/readyz", httpserver.Healthcheck(log, readyChecks...))

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/dashboard", http.StatusSeeOther)
	})
	r.Mount("/dashboard", dashboardSvc.Handle())
	r.Mount("/tickets", ticketSvc.Handle())
	r.Mount("/categories", categorySvc.Handle())
	r.Mount("/users", directorySvc.Handle())
	r.Mount("/notifications", notifySvc.Handle())
	r.NotFound(web.NotFoundHandler())

	var srvCfg httpserver.Config
	config.MustLoad(&srvCfg)
	server := httpserver.NewFromConfig(srvCfg,
		httpserver.WithLogger(log),
		httpserver.WithStopHook(func(*slog.Logger) { hub.Close() }),
	)
	return server.Run(ctx, r)
}

func newDatastore(ctx context.Context, cfg appConfig) (datastore.Store, func(), error) {
	switch cfg.DatastoreBackend {
	case "postgres":
		var pgCfg datastore.PostgresConfig
		config.MustLoad(&pgCfg)
		pg, err := datastore.NewPostgres(ctx, pgCfg)
		if err != nil {
			return nil, nil, err
		}
		return pg, pg.Close, nil
	case "rest":
		var restCfg datastore.RESTConfig
		config.MustLoad(&restCfg)
		rest, err := datastore.NewREST(restCfg)
		if err != nil {
			return nil, nil, err
		}
		return rest, func() {}, nil
	default:
		return datastore.NewMemory(), func() {}, nil
	}
}

func newAuthorizer(ctx context.Context, cfg appConfig) (rbac.Authorizer, error) {
	source := rbac.NewMemorySource(rbac.DefaultRoles())
	if cfg.RolesFile != "" {
		source = rbac.NewYAMLSource(cfg.RolesFile)
	}
	return rbac.NewAuthorizer(ctx, source)
}

func newMailer(log *slog.Logger) email.Sender {
	var emailCfg email.Config
	config.MustLoad(&emailCfg)
	if emailCfg.PostmarkServerToken != "" {
		sender, err := email.NewPostmarkSender(emailCfg)
		if err == nil {
			return sender
		}
		log.Warn("postmark sender misconfigured, falling back to dev sender", logger.Error(err))
	}
	return email.NewDevSender(log)
}

func newStorage(ctx context.Context, cfg appConfig) (storage.Storage, error) {
	if cfg.StorageBackend == "s3" {
		var s3Cfg storage.S3Config
		config.MustLoad(&s3Cfg)
		return storage.NewS3(ctx, s3Cfg)
	}
	return storage.NewLocal(cfg.StorageLocalDir, cfg.StorageBaseURL)
}

// newFilingLimit builds the rate-limit middleware for ticket filing and
// returns any readiness checks the chosen backend needs.
func newFilingLimit(ctx context.Context, cfg appConfig) (func(http.Handler) http.Handler, []func(context.Context) error, error) {
	var (
		store  ratelimit.Store
		checks []func(context.Context) error
	)
	if cfg.RatelimitBackend == "redis" {
		var redisCfg redis.Config
		config.MustLoad(&redisCfg)
		client, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			return nil, nil, err
		}
		store = ratelimit.NewRedisStore(client, "opsdesk")
		checks = append(checks, redis.Healthcheck(client))
	} else {
		store = ratelimit.NewMemoryStore()
	}

	limiter, err := ratelimit.New(store, ratelimit.Config{
		Limit:  cfg.FilingLimit,
		Window: cfg.FilingWindow,
	})
	if err != nil {
		return nil, nil, err
	}
	return ratelimit.Middleware(limiter, ratelimit.BySession()), checks, nil
}
