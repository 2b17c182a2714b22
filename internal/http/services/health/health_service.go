// Package health contiene el service de readiness.
package health

import (
	"context"
	"sort"
	"time"

	dto "github.com/dropDatabas3/wahlbot/internal/http/dto/health"
	"github.com/dropDatabas3/wahlbot/internal/observability/logger"
)

// Pinger es cualquier dependencia que sabe verificar su conexión.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Version string
	// Components por nombre ("db", "cache").
	Components map[string]Pinger
	Timeout    time.Duration
}

type HealthService interface {
	Check(ctx context.Context) dto.ReadyzResponse
}

type healthService struct {
	deps  Deps
	names []string
}

func NewHealthService(d Deps) HealthService {
	if d.Timeout <= 0 {
		d.Timeout = 2 * time.Second
	}
	names := make([]string, 0, len(d.Components))
	for n := range d.Components {
		names = append(names, n)
	}
	sort.Strings(names)
	return &healthService{deps: d, names: names}
}

// Check hace ping a cada componente con timeout. Cualquier fallo deja el
// servicio en "unavailable".
func (s *healthService) Check(ctx context.Context) dto.ReadyzResponse {
	ctx, cancel := context.WithTimeout(ctx, s.deps.Timeout)
	defer cancel()

	resp := dto.ReadyzResponse{
		Status:     "ready",
		Version:    s.deps.Version,
		Components: make(map[string]string, len(s.names)),
	}
	for _, name := range s.names {
		if err := s.deps.Components[name].Ping(ctx); err != nil {
			logger.From(ctx).Warn("readiness check failed",
				logger.Component(name), logger.Err(err))
			resp.Components[name] = "error"
			resp.Status = "unavailable"
			continue
		}
		resp.Components[name] = "ok"
	}
	return resp
}
