package routes

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/atlasbank/atlasbank/internal/accounts"
	"github.com/atlasbank/atlasbank/internal/auth"
	"github.com/atlasbank/atlasbank/internal/customers"
)

// RegisterCustomerRoutes wires customer onboarding. Registration provisions a
// default savings account so a fresh customer can transact immediately.
func RegisterCustomerRoutes(r fiber.Router, svc *customers.Service, accountSvc *accounts.Service, authSvc *auth.Service, logger *slog.Logger) {
	r.Post("/customers/register", func(c *fiber.Ctx) error {
		var req struct {
			Name     string `json:"name"`
			Address  string `json:"address"`
			Contact  string `json:"contact"`
			Password string `json:"password"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		customer, err := svc.Register(c.UserContext(), customers.RegisterInput{
			Name:     req.Name,
			Address:  req.Address,
			Contact:  req.Contact,
			Password: req.Password,
		})
		if errors.Is(err, customers.ErrContactTaken) {
			return fiber.NewError(http.StatusConflict, "contact already registered")
		}
		if err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}

		acct, err := accountSvc.Open(c.UserContext(), accounts.OpenInput{CustomerID: customer.ID})
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		if logger != nil {
			logger.Info("customer registered",
				slog.String("customer_id", customer.ID),
				slog.String("account_id", acct.ID),
			)
		}
		return c.Status(http.StatusCreated).JSON(fiber.Map{
			"customer_id":    customer.ID,
			"name":           customer.Name,
			"contact":        customer.Contact,
			"account_id":     acct.ID,
			"account_number": acct.Number,
		})
	})
}

// RegisterProfileRoutes wires the authenticated customer's profile endpoints,
// including the full-cascade account closure.
func RegisterProfileRoutes(r fiber.Router, svc *customers.Service) {
	r.Get("/me", func(c *fiber.Ctx) error {
		customerID, _ := c.Locals("customer_id").(string)
		customer, err := svc.Get(c.UserContext(), customerID)
		if errors.Is(err, customers.ErrNotFound) {
			return fiber.NewError(http.StatusUnauthorized, "customer not found")
		}
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{
			"customer_id": customer.ID,
			"name":        customer.Name,
			"address":     customer.Address,
			"contact":     customer.Contact,
			"created_at":  customer.CreatedAt,
		})
	})

	r.Delete("/me", func(c *fiber.Ctx) error {
		customerID, _ := c.Locals("customer_id").(string)
		if err := svc.Delete(c.UserContext(), customerID); err != nil {
			if errors.Is(err, customers.ErrNotFound) {
				return fiber.NewError(http.StatusNotFound, "customer not found")
			}
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(http.StatusNoContent)
	})
}
