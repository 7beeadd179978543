package routes

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/atlasbank/atlasbank/internal/auth"
	"github.com/atlasbank/atlasbank/internal/customers"
)

// RegisterAuthRoutes wires customer and admin login plus token refresh.
func RegisterAuthRoutes(r fiber.Router, svc *customers.Service, authSvc *auth.Service, rateLimiter fiber.Handler) {
	r.Post("/auth/login", rateLimiter, func(c *fiber.Ctx) error {
		var req struct {
			Contact  string `json:"contact"`
			Password string `json:"password"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		customer, err := svc.Authenticate(c.UserContext(), req.Contact, req.Password)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid credentials")
		}
		pair, err := authSvc.IssueCustomer(customer.ID)
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		return c.Status(http.StatusOK).JSON(pair)
	})

	r.Post("/auth/admin/login", rateLimiter, func(c *fiber.Ctx) error {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		admin, err := svc.AuthenticateAdmin(c.UserContext(), req.Username, req.Password)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid credentials")
		}
		pair, err := authSvc.IssueAdmin(admin.ID)
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		return c.Status(http.StatusOK).JSON(pair)
	})

	r.Post("/auth/refresh", func(c *fiber.Ctx) error {
		var req struct {
			RefreshToken string `json:"refresh_token"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		access, expiresIn, err := authSvc.Refresh(req.RefreshToken)
		if errors.Is(err, auth.ErrInvalidToken) {
			return fiber.NewError(http.StatusUnauthorized, "invalid refresh token")
		}
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"access_token": access,
			"expires_in":   expiresIn,
		})
	})
}
