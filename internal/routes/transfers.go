package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/atlasbank/atlasbank/internal/transfers"
)

// RegisterTransferRoutes wires the transfer endpoint.
func RegisterTransferRoutes(r fiber.Router, h *transfers.Handler, idem fiber.Handler) {
	handlers := []fiber.Handler{h.Execute}
	if idem != nil {
		handlers = append([]fiber.Handler{idem}, handlers...)
	}
	r.Post("/transfers", handlers...)
}
