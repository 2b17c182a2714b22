// Package router arma el árbol de rutas HTTP sobre chi.
package router

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	authctrl "github.com/dropDatabas3/wahlbot/internal/http/controllers/auth"
	chatctrl "github.com/dropDatabas3/wahlbot/internal/http/controllers/chat"
	healthctrl "github.com/dropDatabas3/wahlbot/internal/http/controllers/health"
	progctrl "github.com/dropDatabas3/wahlbot/internal/http/controllers/programs"
	httperrors "github.com/dropDatabas3/wahlbot/internal/http/errors"
	mw "github.com/dropDatabas3/wahlbot/internal/http/middlewares"
	svcauth "github.com/dropDatabas3/wahlbot/internal/http/services/auth"
	"github.com/dropDatabas3/wahlbot/internal/metrics"
	"github.com/dropDatabas3/wahlbot/internal/rate"
)

// Deps contiene todo lo que el router necesita. Limiter y Metrics son opcionales.
type Deps struct {
	RootPath           string
	CORSAllowedOrigins []string

	Gate    svcauth.Gate
	Limiter rate.Limiter
	Metrics *metrics.Metrics

	Auth     *authctrl.Controllers
	Programs *progctrl.Controllers
	Chat     *chatctrl.Controllers
	Health   *healthctrl.Controllers
}

// New devuelve el handler raíz. Las rutas se sirven en "/" y además bajo
// RootPath cuando está configurado.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(mw.Adapt(
		mw.WithRequestID(),
		mw.WithRecover(),
		mw.WithSecurityHeaders(),
		mw.WithCORS(deps.CORSAllowedOrigins),
		mw.WithLogging(),
	)...)
	r.Use(deps.Metrics.Middleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	api := apiRoutes(deps)
	if root := strings.TrimRight(deps.RootPath, "/"); root != "" {
		r.Mount(root, api)
	}
	r.Mount("/", api)
	return r
}

func apiRoutes(deps Deps) chi.Router {
	r := chi.NewRouter()
	requireUser := mw.RequireUser(deps.Gate)

	// GET /, /readyz, /metrics
	r.Get("/", deps.Health.Health.Root)
	r.Get("/readyz", deps.Health.Health.Readyz)
	r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())

	// /auth/*
	r.Route("/auth", func(r chi.Router) {
		r.Use(mw.WithNoStore())

		r.Post("/token", deps.Auth.Token.Login)
		r.Post("/refresh", deps.Auth.Refresh.Refresh)
		r.Post("/logout", deps.Auth.Logout.Logout)

		r.Group(func(r chi.Router) {
			r.Use(requireUser)
			r.Post("/logout-all", deps.Auth.Logout.LogoutAll)
			r.Get("/users/me", deps.Auth.Me.Me)
			r.Get("/users/me/", deps.Auth.Me.Me)
			r.Get("/users/me/sessions", deps.Auth.Sessions.List)
		})
	})

	// /program/*, /tasks/*
	r.Group(func(r chi.Router) {
		r.Use(requireUser)

		pc := deps.Programs.Program
		r.Post("/program/upload", pc.Upload)
		r.With(rateLimit(deps, "ingest")).Post("/program/ingest", pc.Ingest)
		r.Get("/program/list", pc.List)
		r.Delete("/program/delete/{program_name}", pc.Delete)

		r.Get("/tasks/{task_id}", deps.Programs.Task.Get)

		// POST /chat/{program_name}
		r.With(rateLimit(deps, "chat")).Post("/chat/{program_name}", deps.Chat.Chat.Chat)
	})

	return r
}

func rateLimit(deps Deps, scope string) func(http.Handler) http.Handler {
	rl := mw.RateLimitConfig{
		Limiter: deps.Limiter,
		Scope:   scope,
	}
	if deps.Metrics != nil {
		rl.Recorder = deps.Metrics
	}
	return mw.WithRateLimit(rl)
}
