package accounts

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/atlasbank/atlasbank/internal/ledger"
	"github.com/atlasbank/atlasbank/internal/money"
)

// Handler exposes account HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds an account HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type openRequest struct {
	Type string `json:"type"`
}

type accountResponse struct {
	ID        string    `json:"id"`
	Number    string    `json:"number"`
	Type      string    `json:"type"`
	Balance   string    `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
}

func toAccountResponse(acct ledger.Account) accountResponse {
	return accountResponse{
		ID:        acct.ID,
		Number:    acct.Number,
		Type:      acct.Type,
		Balance:   money.Format(acct.Balance),
		CreatedAt: acct.CreatedAt,
	}
}

// Open provisions an account for the authenticated customer.
func (h *Handler) Open(c *fiber.Ctx) error {
	var req openRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	customerID, _ := c.Locals("customer_id").(string)

	acct, err := h.service.Open(c.UserContext(), OpenInput{CustomerID: customerID, Type: req.Type})
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(toAccountResponse(acct))
}

// List returns the authenticated customer's accounts.
func (h *Handler) List(c *fiber.Ctx) error {
	customerID, _ := c.Locals("customer_id").(string)
	accts, err := h.service.ListMine(c.UserContext(), customerID)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	out := make([]accountResponse, 0, len(accts))
	for _, acct := range accts {
		out = append(out, toAccountResponse(acct))
	}
	return c.Status(http.StatusOK).JSON(out)
}

// Get returns a single account owned by the authenticated customer.
func (h *Handler) Get(c *fiber.Ctx) error {
	customerID, _ := c.Locals("customer_id").(string)
	acct, err := h.service.Get(c.UserContext(), c.Params("accountId"), customerID)
	if err != nil {
		return accountError(err)
	}
	return c.Status(http.StatusOK).JSON(toAccountResponse(acct))
}

type entryResponse struct {
	ID           string    `json:"id"`
	Kind         string    `json:"kind"`
	Amount       string    `json:"amount"`
	Description  string    `json:"description"`
	Counterparty string    `json:"counterparty_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// History returns the account's journal, newest first.
func (h *Handler) History(c *fiber.Ctx) error {
	customerID, _ := c.Locals("customer_id").(string)
	entries, err := h.service.History(c.UserContext(), c.Params("accountId"), customerID)
	if err != nil {
		return accountError(err)
	}
	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryResponse{
			ID:           e.ID,
			Kind:         string(e.Kind),
			Amount:       money.Format(e.Amount),
			Description:  e.Description,
			Counterparty: e.CounterpartyID,
			CreatedAt:    e.CreatedAt,
		})
	}
	return c.Status(http.StatusOK).JSON(out)
}

// Close deletes the account and its journal.
func (h *Handler) Close(c *fiber.Ctx) error {
	customerID, _ := c.Locals("customer_id").(string)
	if err := h.service.Close(c.UserContext(), c.Params("accountId"), customerID); err != nil {
		return accountError(err)
	}
	return c.SendStatus(http.StatusNoContent)
}

func accountError(err error) error {
	switch {
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
