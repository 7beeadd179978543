package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/atlasbank/atlasbank/internal/loans"
)

// RegisterLoanRoutes wires the customer-facing loan application endpoints.
func RegisterLoanRoutes(r fiber.Router, h *loans.Handler) {
	r.Post("/loans", h.Apply)
	r.Get("/loans", h.ListMine)
	r.Get("/loans/:loanId", h.Get)
}

// RegisterAdminLoanRoutes wires the back-office review queue and decisions.
// Decisions move money, so they run behind the idempotency middleware when
// one is available.
func RegisterAdminLoanRoutes(r fiber.Router, h *loans.Handler, idem fiber.Handler) {
	r.Get("/loans/pending", h.ListPending)

	approve := []fiber.Handler{h.Approve}
	reject := []fiber.Handler{h.Reject}
	if idem != nil {
		approve = append([]fiber.Handler{idem}, approve...)
		reject = append([]fiber.Handler{idem}, reject...)
	}
	r.Post("/loans/:loanId/approve", approve...)
	r.Post("/loans/:loanId/reject", reject...)
}
