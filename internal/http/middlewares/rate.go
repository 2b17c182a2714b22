package middlewares

import (
	"net/http"
	"strconv"
	"time"

	httperrors "github.com/dropDatabas3/wahlbot/internal/http/errors"
	"github.com/dropDatabas3/wahlbot/internal/http/helpers"
	"github.com/dropDatabas3/wahlbot/internal/observability/logger"
	"github.com/dropDatabas3/wahlbot/internal/rate"
)

// RateKeyFunc define cómo generar la clave de rate limiting.
type RateKeyFunc func(r *http.Request) string

// PrincipalRateKey usa el id del principal autenticado y si no hay, la IP.
// Incluye el nombre de la ruta para separar chat de ingesta.
func PrincipalRateKey(scope string) RateKeyFunc {
	return func(r *http.Request) string {
		if p := GetPrincipal(r.Context()); p != nil {
			return scope + "|u:" + strconv.FormatInt(p.ID, 10)
		}
		return scope + "|ip:" + helpers.ClientIP(r)
	}
}

// RateRejectRecorder recibe los rechazos (lo implementa *metrics.Metrics).
type RateRejectRecorder interface {
	RecordRateReject(scope string)
}

type RateLimitConfig struct {
	Limiter  rate.Limiter
	KeyFunc  RateKeyFunc
	Scope    string
	Recorder RateRejectRecorder
}

// WithRateLimit corta con 429 cuando el limiter rechaza. Si el limiter falla
// el request pasa (fail-open) y el error se loguea.
func WithRateLimit(cfg RateLimitConfig) Middleware {
	if cfg.Limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = PrincipalRateKey(cfg.Scope)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, err := cfg.Limiter.Allow(r.Context(), cfg.KeyFunc(r))
			if err != nil {
				logger.From(r.Context()).Warn("rate limiter unavailable",
					logger.Component("rate"), logger.Err(err))
				next.ServeHTTP(w, r)
				return
			}

			if res.WindowTTL > 0 {
				resetAt := time.Now().Add(res.WindowTTL).Unix()
				w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt, 10))
			}
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))

			if !res.Allowed {
				if res.RetryAfter > 0 {
					secs := int(res.RetryAfter.Round(time.Second) / time.Second)
					if secs < 1 {
						secs = 1
					}
					w.Header().Set("Retry-After", strconv.Itoa(secs))
				}
				if cfg.Recorder != nil {
					cfg.Recorder.RecordRateReject(cfg.Scope)
				}
				httperrors.WriteError(w, httperrors.ErrRateLimitExceeded)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
