package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/atlasbank/atlasbank/internal/accounts"
)

// RegisterAccountRoutes wires account lifecycle and history endpoints.
func RegisterAccountRoutes(r fiber.Router, h *accounts.Handler) {
	r.Post("/accounts", h.Open)
	r.Get("/accounts", h.List)
	r.Get("/accounts/:accountId", h.Get)
	r.Get("/accounts/:accountId/history", h.History)
	r.Delete("/accounts/:accountId", h.Close)
}
