package loans

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/atlasbank/atlasbank/internal/ledger"
	"github.com/atlasbank/atlasbank/internal/money"
)

// Handler exposes customer application and admin decision endpoints.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type applyRequest struct {
	AccountID   string `json:"account_id"`
	Principal   string `json:"principal"`
	RatePercent string `json:"rate_percent"`
	TermMonths  int    `json:"term_months"`
}

type loanResponse struct {
	ID          string     `json:"id"`
	CustomerID  string     `json:"customer_id"`
	AccountID   string     `json:"account_id"`
	Principal   string     `json:"principal"`
	RatePercent string     `json:"rate_percent"`
	TermMonths  int        `json:"term_months"`
	Status      string     `json:"status"`
	AppliedAt   time.Time  `json:"applied_at"`
	DecidedAt   *time.Time `json:"decided_at,omitempty"`
}

func toLoanResponse(loan Loan) loanResponse {
	return loanResponse{
		ID:          loan.ID,
		CustomerID:  loan.CustomerID,
		AccountID:   loan.AccountID,
		Principal:   money.Format(loan.Principal),
		RatePercent: loan.RatePercent.String(),
		TermMonths:  loan.TermMonths,
		Status:      string(loan.Status),
		AppliedAt:   loan.AppliedAt,
		DecidedAt:   loan.DecidedAt,
	}
}

// Apply records a pending loan application for the authenticated customer.
func (h *Handler) Apply(c *fiber.Ctx) error {
	var req applyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	principal, err := money.Parse(req.Principal)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "malformed principal")
	}
	rate, err := money.ParseRate(req.RatePercent)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "malformed rate")
	}
	customerID, _ := c.Locals("customer_id").(string)

	loan, err := h.service.Apply(c.UserContext(), ApplyInput{
		CustomerID:  customerID,
		AccountID:   req.AccountID,
		Principal:   principal,
		RatePercent: rate,
		TermMonths:  req.TermMonths,
	})
	if err != nil {
		return loanError(err)
	}
	return c.Status(http.StatusCreated).JSON(toLoanResponse(loan))
}

// ListMine returns the authenticated customer's loans, newest first.
func (h *Handler) ListMine(c *fiber.Ctx) error {
	customerID, _ := c.Locals("customer_id").(string)
	loans, err := h.service.ListForCustomer(c.UserContext(), customerID)
	if err != nil {
		return loanError(err)
	}
	out := make([]loanResponse, 0, len(loans))
	for _, loan := range loans {
		out = append(out, toLoanResponse(loan))
	}
	return c.Status(http.StatusOK).JSON(out)
}

// Get returns one of the authenticated customer's loans.
func (h *Handler) Get(c *fiber.Ctx) error {
	customerID, _ := c.Locals("customer_id").(string)
	loan, err := h.service.Get(c.UserContext(), c.Params("loanId"))
	if err != nil {
		return loanError(err)
	}
	if loan.CustomerID != customerID {
		return fiber.NewError(http.StatusForbidden, "loan not owned by customer")
	}
	return c.Status(http.StatusOK).JSON(toLoanResponse(loan))
}

// ListPending returns the admin review queue.
func (h *Handler) ListPending(c *fiber.Ctx) error {
	loans, err := h.service.ListPending(c.UserContext())
	if err != nil {
		return loanError(err)
	}
	out := make([]loanResponse, 0, len(loans))
	for _, loan := range loans {
		out = append(out, toLoanResponse(loan))
	}
	return c.Status(http.StatusOK).JSON(out)
}

type decisionResponse struct {
	Loan           loanResponse `json:"loan"`
	AccountBalance string       `json:"account_balance,omitempty"`
}

// Approve flips a pending loan to approved and disburses the principal.
func (h *Handler) Approve(c *fiber.Ctx) error {
	res, err := h.service.Approve(c.UserContext(), c.Params("loanId"))
	if err != nil {
		return loanError(err)
	}
	return c.Status(http.StatusOK).JSON(decisionResponse{
		Loan:           toLoanResponse(res.Loan),
		AccountBalance: money.Format(res.AccountBalance),
	})
}

// Reject flips a pending loan to rejected.
func (h *Handler) Reject(c *fiber.Ctx) error {
	loan, err := h.service.Reject(c.UserContext(), c.Params("loanId"))
	if err != nil {
		return loanError(err)
	}
	return c.Status(http.StatusOK).JSON(decisionResponse{Loan: toLoanResponse(loan)})
}

func loanError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidTerms):
		return fiber.NewError(http.StatusBadRequest, "invalid loan terms")
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(http.StatusNotFound, "loan not found")
	case errors.Is(err, ErrInvalidTransition):
		return fiber.NewError(http.StatusConflict, "loan already decided")
	case errors.Is(err, ledger.ErrAccountNotFound):
		return fiber.NewError(http.StatusNotFound, "account not found")
	case errors.Is(err, ledger.ErrNotOwned):
		return fiber.NewError(http.StatusForbidden, "account not owned by customer")
	case errors.Is(err, ledger.ErrBusy):
		return fiber.NewError(http.StatusServiceUnavailable, "ledger busy, try again")
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}
