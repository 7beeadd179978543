package teller

import (
	"context"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/atlasbank/atlasbank/internal/ledger"
	"github.com/atlasbank/atlasbank/internal/money"
)

// Handler exposes cash deposit and withdrawal endpoints.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type movementRequest struct {
	Amount      string `json:"amount"`
	Description string `json:"description"`
}

type movementResponse struct {
	EntryID string `json:"entry_id"`
	Balance string `json:"balance"`
}

// Deposit credits the account named in the path by the requested amount.
func (h *Handler) Deposit(c *fiber.Ctx) error {
	return h.movement(c, h.service.Deposit)
}

// Withdraw debits the account named in the path by the requested amount.
func (h *Handler) Withdraw(c *fiber.Ctx) error {
	return h.movement(c, h.service.Withdraw)
}

func (h *Handler) movement(c *fiber.Ctx, post func(ctx context.Context, input MovementInput) (ledger.MovementResult, error)) error {
	var req movementRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	amount, err := money.Parse(req.Amount)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "malformed amount")
	}
	customerID, _ := c.Locals("customer_id").(string)

	res, err := post(c.UserContext(), MovementInput{
		AccountID:   c.Params("accountId"),
		CustomerID:  customerID,
		Amount:      amount,
		Description: req.Description,
	})
	if err != nil {
		return movementError(err)
	}
	return c.Status(http.StatusOK).JSON(movementResponse{
		EntryID: res.EntryID,
		Balance: money.Format(res.Balance),
	})
}

func movementError(err error) error {
	switch {
	case errors.Is(err, ledger.ErrInvalidAmount):
		return fiber.NewError(http.StatusBadRequest, "amount must be positive")
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return fiber.NewError(http.StatusUnprocessableEntity, "insufficient funds")
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
