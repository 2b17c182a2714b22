// Package server arma el grafo de dependencias del servicio a partir de
// config.Config y expone el http.Server listo para correr.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dropDatabas3/wahlbot/internal/chat"
	"github.com/dropDatabas3/wahlbot/internal/config"
	"github.com/dropDatabas3/wahlbot/internal/domain/repository"
	authctrl "github.com/dropDatabas3/wahlbot/internal/http/controllers/auth"
	chatctrl "github.com/dropDatabas3/wahlbot/internal/http/controllers/chat"
	healthctrl "github.com/dropDatabas3/wahlbot/internal/http/controllers/health"
	progctrl "github.com/dropDatabas3/wahlbot/internal/http/controllers/programs"
	"github.com/dropDatabas3/wahlbot/internal/http/helpers"
	"github.com/dropDatabas3/wahlbot/internal/http/router"
	svcauth "github.com/dropDatabas3/wahlbot/internal/http/services/auth"
	svcchat "github.com/dropDatabas3/wahlbot/internal/http/services/chat"
	svchealth "github.com/dropDatabas3/wahlbot/internal/http/services/health"
	svcprog "github.com/dropDatabas3/wahlbot/internal/http/services/programs"
	svctasks "github.com/dropDatabas3/wahlbot/internal/http/services/tasks"
	jwtx "github.com/dropDatabas3/wahlbot/internal/jwt"
	"github.com/dropDatabas3/wahlbot/internal/metrics"
	"github.com/dropDatabas3/wahlbot/internal/observability/logger"
	"github.com/dropDatabas3/wahlbot/internal/programs"
	"github.com/dropDatabas3/wahlbot/internal/rate"
	"github.com/dropDatabas3/wahlbot/internal/store/memory"
	"github.com/dropDatabas3/wahlbot/internal/store/pg"
	migrations "github.com/dropDatabas3/wahlbot/migrations/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
)

// App es el servicio armado. Close libera todo lo que Build abrió.
type App struct {
	Handler http.Handler
	Store   repository.Store
	Pool    *programs.Pool
	Metrics *metrics.Metrics

	cfg     *config.Config
	limiter interface{ Close() error }
}

// OpenStore abre el backend configurado. Con postgres reintenta el ping
// inicial según storage.init_retries.
func OpenStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	switch cfg.Storage.Driver {
	case "memory":
		logger.From(ctx).Warn("using in-memory storage, data is lost on restart")
		return memory.New(), nil
	case "postgres":
		return pg.Open(ctx, cfg.Storage.DSN, pg.PoolConfig{
			MaxOpenConns:    cfg.Storage.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Storage.Postgres.MaxIdleConns,
			ConnMaxLifetime: config.Duration(cfg.Storage.Postgres.ConnMaxLifetime, 0),
			InitRetries:     cfg.Storage.InitRetries,
			InitRetryDelay:  config.Duration(cfg.Storage.InitRetryDelay, 2*time.Second),
		})
	default:
		return nil, fmt.Errorf("server: unknown storage driver %q", cfg.Storage.Driver)
	}
}

// Migrate aplica las migraciones pendientes cuando el store es postgres.
func Migrate(ctx context.Context, st repository.Store) error {
	ps, ok := st.(*pg.Store)
	if !ok {
		return nil
	}
	return migrations.Up(ctx, ps.Pool())
}

// Build arma store, codec, limiter, pool de workers, services, controllers y router.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logger.From(ctx).With(logger.Component("wiring"))

	st, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app := &App{Store: st, cfg: cfg}
	fail := func(err error) (*App, error) {
		_ = app.Close(context.Background())
		return nil, err
	}

	if cfg.Storage.MigrateOnStart {
		if err := Migrate(ctx, st); err != nil {
			return fail(err)
		}
		log.Info("migrations applied")
	}

	codec, err := jwtx.NewCodec(jwtx.Options{
		Secret:     cfg.JWT.SecretKey,
		Algorithm:  cfg.JWT.Algorithm,
		AccessTTL:  cfg.AccessTTL(),
		RefreshTTL: cfg.RefreshTTL(),
	})
	if err != nil {
		return fail(err)
	}

	var poolFn func() *pgxpool.Pool
	if ps, ok := st.(*pg.Store); ok {
		poolFn = ps.Pool
	}
	m, err := metrics.New(metrics.Config{Namespace: "wahlbot", Pool: poolFn})
	if err != nil {
		return fail(err)
	}
	app.Metrics = m

	components := map[string]svchealth.Pinger{"db": st}
	limiter, err := buildLimiter(ctx, cfg)
	if err != nil {
		return fail(err)
	}
	if limiter != nil {
		app.limiter = limiter
		components["cache"] = limiter
	}

	files, err := programs.NewFileStore(cfg.Programs.Directory)
	if err != nil {
		return fail(err)
	}
	app.Pool = programs.NewPool(cfg.Programs.Workers, cfg.Programs.QueueSize)

	auth := svcauth.NewServices(svcauth.Deps{
		Principals: st.Principals(),
		Ledger:     st.Sessions(),
		Codec:      codec,
		Events:     m,
	})
	progs := svcprog.NewServices(svcprog.Deps{
		Programs: st.Programs(),
		Tasks:    st.Tasks(),
		Files:    files,
		Indexer:  programs.NewIndexer(st.Documents(), programs.TextExtractor{MaxBytes: cfg.Server.MaxUploadMB << 20}),
		Pool:     app.Pool,
		Metrics:  m,
	})
	chatSvc := svcchat.NewChatService(svcchat.Deps{
		Programs:  st.Programs(),
		Retriever: chat.NewDocumentRetriever(st.Documents()),
		Answerer: chat.NewClient(chat.ClientConfig{
			BaseURL:     cfg.Chat.BaseURL,
			APIKey:      cfg.Chat.APIKey,
			Model:       cfg.Chat.Model,
			Temperature: cfg.Chat.Temperature,
			Timeout:     config.Duration(cfg.Chat.Timeout, 60*time.Second),
		}),
		Metrics:        m,
		RetrievalLimit: cfg.Chat.RetrievalLimit,
		RewriteQuery:   true,
	})
	if cfg.Chat.APIKey == "" {
		log.Warn("chat api key not configured, /chat requests will fail")
	}

	app.Handler = router.New(router.Deps{
		RootPath:           cfg.Server.RootPath,
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
		Gate:               auth.Gate,
		Limiter:            limiterOrNil(limiter),
		Metrics:            m,
		Auth: authctrl.NewControllers(auth, authctrl.ControllerDeps{
			Cookie: helpers.CookieConfig{
				Name:     cfg.Auth.RefreshCookie.Name,
				Domain:   cfg.Auth.RefreshCookie.Domain,
				SameSite: cfg.Auth.RefreshCookie.SameSite,
			},
			RefreshTTL: cfg.RefreshTTL(),
		}),
		Programs: progctrl.NewControllers(progs, svctasks.NewTaskService(st.Tasks()), progctrl.ControllerDeps{
			SessionCookie: cfg.Programs.SessionCookie,
			MaxUploadMB:   cfg.Server.MaxUploadMB,
		}),
		Chat: chatctrl.NewControllers(chatSvc),
		Health: healthctrl.NewControllers(svchealth.NewHealthService(svchealth.Deps{
			Version:    cfg.App.Version,
			Components: components,
		})),
	})

	log.Info("service wired",
		logger.String("storage", cfg.Storage.Driver),
		logger.String("cache", cfg.Cache.Kind),
		logger.Bool("rate_limit", limiter != nil),
		logger.String("root_path", cfg.Server.RootPath),
	)
	return app, nil
}

type pingLimiter interface {
	rate.Limiter
	Ping(ctx context.Context) error
	Close() error
}

func buildLimiter(ctx context.Context, cfg *config.Config) (pingLimiter, error) {
	if cfg.Rate.Disabled {
		return nil, nil
	}
	rcfg := rate.Config{
		Prefix: cfg.Cache.Redis.Prefix + "rl:",
		Max:    cfg.Rate.MaxRequests,
		Window: config.Duration(cfg.Rate.Window, time.Minute),
	}
	switch cfg.Cache.Kind {
	case "redis":
		client, err := rate.NewRedisClient(ctx, cfg.Cache.Redis.Addr, cfg.Cache.Redis.Password, cfg.Cache.Redis.DB)
		if err != nil {
			return nil, err
		}
		return rate.NewRedisLimiter(client, rcfg), nil
	default:
		return rate.NewMemoryLimiter(rcfg, config.Duration(cfg.Cache.Memory.CleanupInterval, time.Minute)), nil
	}
}

// limiterOrNil evita pasar una interface no-nil con valor nil al router.
func limiterOrNil(l pingLimiter) rate.Limiter {
	if l == nil {
		return nil
	}
	return l
}

// HTTPServer construye el http.Server con los timeouts configurados.
func (a *App) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           a.Handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       config.Duration(a.cfg.Server.ReadTimeout, 15*time.Second),
		WriteTimeout:      config.Duration(a.cfg.Server.WriteTimeout, 120*time.Second),
		IdleTimeout:       90 * time.Second,
	}
}

// Close drena el pool de workers (hasta que ctx venza) y cierra limiter y store.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Pool != nil {
		if err := a.Pool.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("worker pool: %w", err))
		}
	}
	if a.limiter != nil {
		if err := a.limiter.Close(); err != nil {
			errs = append(errs, fmt.Errorf("rate limiter: %w", err))
		}
	}
	if a.Store != nil {
		a.Store.Close()
	}
	return errors.Join(errs...)
}
