package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/atlasbank/atlasbank/internal/teller"
)

// RegisterTellerRoutes wires cash deposit/withdrawal endpoints. When an
// idempotency middleware is supplied, replays return the stored response.
func RegisterTellerRoutes(r fiber.Router, h *teller.Handler, idem fiber.Handler) {
	deposit := []fiber.Handler{h.Deposit}
	withdraw := []fiber.Handler{h.Withdraw}
	if idem != nil {
		deposit = append([]fiber.Handler{idem}, deposit...)
		withdraw = append([]fiber.Handler{idem}, withdraw...)
	}
	r.Post("/accounts/:accountId/deposit", deposit...)
	r.Post("/accounts/:accountId/withdraw", withdraw...)
}
