package transfers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/atlasbank/atlasbank/internal/ledger"
	"github.com/atlasbank/atlasbank/internal/money"
)

// Handler exposes the transfer endpoint.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type transferRequest struct {
	SourceAccountID string `json:"source_account_id"`
	TargetNumber    string `json:"target_account_number"`
	Amount          string `json:"amount"`
	Description     string `json:"description"`
}

type transferResponse struct {
	DebitEntryID  string `json:"debit_entry_id"`
	CreditEntryID string `json:"credit_entry_id"`
	SourceBalance string `json:"source_balance"`
}

// Execute runs a transfer from the authenticated customer's account to the
// target account number.
func (h *Handler) Execute(c *fiber.Ctx) error {
	var req transferRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	amount, err := money.Parse(req.Amount)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "malformed amount")
	}
	customerID, _ := c.Locals("customer_id").(string)

	res, err := h.service.Execute(c.UserContext(), Input{
		SourceID:     req.SourceAccountID,
		CustomerID:   customerID,
		TargetNumber: req.TargetNumber,
		Amount:       amount,
		Description:  req.Description,
	})
	if err != nil {
		return transferError(err)
	}
	return c.Status(http.StatusOK).JSON(transferResponse{
		DebitEntryID:  res.DebitEntryID,
		CreditEntryID: res.CreditEntryID,
		SourceBalance: money.Format(res.SourceBalance),
	})
}

func transferError(err error) error {
	switch {
	case errors.Is(err, ledger.ErrInvalidAmount):
		return fiber.NewError(http.StatusBadRequest, "amount must be positive")
	case errors.Is(err, ledger.ErrSelfTransfer):
		return fiber.NewError(http.StatusBadRequest, "cannot transfer to the same account")
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return fiber.NewError(http.StatusUnprocessableEntity, "insufficient funds")
	case errors.Is(err, ledger.ErrTargetNotFound):
		return fiber.NewError(http.StatusNotFound, "target account not found")
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
