// Package rate implementa rate limiting de ventana fija para las rutas de
// chat e ingesta. Hay dos backends: Redis (compartido entre réplicas) y
// memoria (go-cache, una sola instancia).
package rate

import (
	"context"
	"time"
)

type Result struct {
	Allowed     bool
	Remaining   int64
	RetryAfter  time.Duration
	WindowTTL   time.Duration
	CurrentHits int64
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// Config común a ambos backends.
type Config struct {
	Prefix string
	Max    int
	Window time.Duration
	Now    func() time.Time // nil = time.Now
}

func (c *Config) normalize() {
	if c.Prefix == "" {
		c.Prefix = "rl:"
	}
	if c.Max <= 0 {
		c.Max = 20
	}
	if c.Window <= 0 {
		c.Window = time.Minute
	}
	if c.Now == nil {
		c.Now = time.Now
	}
}

// result arma el Result a partir de los hits de la ventana actual.
func result(max, hits int64, ttl, window time.Duration) Result {
	if ttl <= 0 {
		ttl = window
	}
	remaining := max - hits
	if remaining < 0 {
		remaining = 0
	}
	res := Result{
		Allowed:     hits <= max,
		Remaining:   remaining,
		CurrentHits: hits,
		WindowTTL:   ttl,
	}
	if !res.Allowed {
		res.RetryAfter = ttl
	}
	return res
}
