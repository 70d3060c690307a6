package handler

import (
	"gym-statistics/internal/pkg/logger"
	internalWS "gym-statistics/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// DashboardWSHandler upgrades dashboard pages to a websocket that is told
// whenever the snapshot is reloaded.
type DashboardWSHandler struct {
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewDashboardWSHandler(hub *internalWS.Hub, log logger.ILogger) *DashboardWSHandler {
	return &DashboardWSHandler{hub: hub, logger: log}
}

func (h *DashboardWSHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/ws/dashboard", h.ServeWs)
}

func (h *DashboardWSHandler) ServeWs(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	return websocket.New(func(conn *websocket.Conn) {
		remote := conn.RemoteAddr().String()
		h.logger.Info("DashboardWSHandler", "Starting WebSocket session", map[string]interface{}{"remote": remote})
		internalWS.ServeWs(h.hub, conn)
		h.logger.Info("DashboardWSHandler", "WebSocket session ended", map[string]interface{}{"remote": remote})
	})(c)
}
