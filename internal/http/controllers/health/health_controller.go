// Package health contiene los controllers de / y /readyz.
package health

import (
	"net/http"

	dto "github.com/dropDatabas3/wahlbot/internal/http/dto/health"
	"github.com/dropDatabas3/wahlbot/internal/http/helpers"
	svc "github.com/dropDatabas3/wahlbot/internal/http/services/health"
	"github.com/dropDatabas3/wahlbot/internal/observability/logger"
)

type Controllers struct {
	Health *HealthController
}

func NewControllers(s svc.HealthService) *Controllers {
	return &Controllers{Health: NewHealthController(s)}
}

// HealthController maneja las rutas de health check.
type HealthController struct {
	service svc.HealthService
}

func NewHealthController(service svc.HealthService) *HealthController {
	return &HealthController{service: service}
}

// Root maneja GET /
func (c *HealthController) Root(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, dto.RootResponse{Message: "Wahlbot Backend"})
}

// Readyz maneja GET /readyz
func (c *HealthController) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	res := c.service.Check(ctx)

	if res.Version != "" {
		w.Header().Set("X-Service-Version", res.Version)
	}
	status := http.StatusOK
	if res.Status == "unavailable" {
		status = http.StatusServiceUnavailable
	}
	logger.From(ctx).Debug("health check completed",
		logger.Op("HealthController.Readyz"),
		logger.String("status", res.Status),
		logger.Int("components_count", len(res.Components)),
	)
	helpers.WriteJSON(w, status, res)
}
