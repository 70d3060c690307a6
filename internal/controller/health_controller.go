package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// IHealthController serves the unversioned operational endpoints.
type IHealthController interface {
	RegisterRoutes(r fiber.Router)
}

type healthController struct {
	withMetrics bool
}

func NewHealthController(withMetrics bool) IHealthController {
	return &healthController{withMetrics: withMetrics}
}

func (c *healthController) RegisterRoutes(r fiber.Router) {
	r.Get("/healthz", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{"status": "ok"})
	})
	if c.withMetrics {
		r.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	}
}
