package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlasbank/atlasbank/internal/config"
	"github.com/atlasbank/atlasbank/internal/logging"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	cfg := config.Config{
		AppName:         "atlasbank-test",
		AppEnv:          "development",
		Port:            "0",
		JWTSecret:       "test-secret",
		RefreshSecret:   "test-refresh",
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
		AdminUsername:   "admin",
		AdminPassword:   "admin123",
	}
	app := fiber.New()
	require.NoError(t, Setup(app, Deps{Cfg: cfg, Logger: logging.Discard()}))
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]any
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp.StatusCode, decoded
}

func registerAndLogin(t *testing.T, app *fiber.App, contact string) (token, accountID string) {
	t.Helper()
	status, body := doJSON(t, app, fiber.MethodPost, "/api/v1/customers/register", "", fiber.Map{
		"name":     "Ada Customer",
		"address":  "1 Bank St",
		"contact":  contact,
		"password": "hunter22",
	})
	require.Equal(t, fiber.StatusCreated, status, "register: %v", body)
	accountID, _ = body["account_id"].(string)
	require.NotEmpty(t, accountID)

	status, body = doJSON(t, app, fiber.MethodPost, "/api/v1/auth/login", "", fiber.Map{
		"contact":  contact,
		"password": "hunter22",
	})
	require.Equal(t, fiber.StatusOK, status, "login: %v", body)
	token, _ = body["access_token"].(string)
	require.NotEmpty(t, token)
	return token, accountID
}

func adminLogin(t *testing.T, app *fiber.App) string {
	t.Helper()
	status, body := doJSON(t, app, fiber.MethodPost, "/api/v1/auth/admin/login", "", fiber.Map{
		"username": "admin",
		"password": "admin123",
	})
	require.Equal(t, fiber.StatusOK, status, "admin login: %v", body)
	token, _ := body["access_token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestRegisterLoginDepositWithdraw(t *testing.T) {
	app := newTestApp(t)
	token, accountID := registerAndLogin(t, app, "ada@example.com")

	status, body := doJSON(t, app, fiber.MethodPost, "/api/v1/accounts/"+accountID+"/deposit", token, fiber.Map{
		"amount": "150.00",
	})
	require.Equal(t, fiber.StatusOK, status, "deposit: %v", body)
	assert.Equal(t, "150.00", body["balance"])

	status, body = doJSON(t, app, fiber.MethodPost, "/api/v1/accounts/"+accountID+"/withdraw", token, fiber.Map{
		"amount": "40.25",
	})
	require.Equal(t, fiber.StatusOK, status, "withdraw: %v", body)
	assert.Equal(t, "109.75", body["balance"])

	status, body = doJSON(t, app, fiber.MethodPost, "/api/v1/accounts/"+accountID+"/withdraw", token, fiber.Map{
		"amount": "1000.00",
	})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status, "overdraft: %v", body)
}

func TestMoneyEndpointsRequireAuth(t *testing.T) {
	app := newTestApp(t)

	status, _ := doJSON(t, app, fiber.MethodPost, "/api/v1/transfers", "", fiber.Map{"amount": "1.00"})
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = doJSON(t, app, fiber.MethodGet, "/api/v1/accounts", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestTransferBetweenCustomers(t *testing.T) {
	app := newTestApp(t)
	srcToken, srcAccount := registerAndLogin(t, app, "src@example.com")
	_, tgtAccount := registerAndLogin(t, app, "tgt@example.com")

	status, body := doJSON(t, app, fiber.MethodGet, "/api/v1/accounts/"+tgtAccount, "", nil)
	require.Equal(t, fiber.StatusUnauthorized, status, "unauthenticated account read: %v", body)

	status, body = doJSON(t, app, fiber.MethodPost, "/api/v1/accounts/"+srcAccount+"/deposit", srcToken, fiber.Map{
		"amount": "500.00",
	})
	require.Equal(t, fiber.StatusOK, status, "seed deposit: %v", body)

	tgtToken := loginToken(t, app, "tgt@example.com")
	status, body = doJSON(t, app, fiber.MethodGet, "/api/v1/accounts/"+tgtAccount, tgtToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	tgtNumber, _ := body["number"].(string)
	require.NotEmpty(t, tgtNumber)

	status, body = doJSON(t, app, fiber.MethodPost, "/api/v1/transfers", srcToken, fiber.Map{
		"source_account_id":     srcAccount,
		"target_account_number": tgtNumber,
		"amount":                "123.45",
	})
	require.Equal(t, fiber.StatusOK, status, "transfer: %v", body)
	assert.Equal(t, "376.55", body["source_balance"])

	status, body = doJSON(t, app, fiber.MethodGet, "/api/v1/accounts/"+tgtAccount, tgtToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "123.45", body["balance"])
}

func loginToken(t *testing.T, app *fiber.App, contact string) string {
	t.Helper()
	status, body := doJSON(t, app, fiber.MethodPost, "/api/v1/auth/login", "", fiber.Map{
		"contact":  contact,
		"password": "hunter22",
	})
	require.Equal(t, fiber.StatusOK, status)
	token, _ := body["access_token"].(string)
	return token
}

func TestLoanLifecycleViaAPI(t *testing.T) {
	app := newTestApp(t)
	token, accountID := registerAndLogin(t, app, "borrower@example.com")
	adminToken := adminLogin(t, app)

	status, body := doJSON(t, app, fiber.MethodPost, "/api/v1/loans", token, fiber.Map{
		"account_id":   accountID,
		"principal":    "1000.00",
		"rate_percent": "5.5",
		"term_months":  12,
	})
	require.Equal(t, fiber.StatusCreated, status, "apply: %v", body)
	loanID, _ := body["id"].(string)
	require.NotEmpty(t, loanID)
	assert.Equal(t, "pending", body["status"])

	// Customers cannot reach the review queue.
	status, _ = doJSON(t, app, fiber.MethodGet, "/api/v1/admin/loans/pending", token, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, body = doJSON(t, app, fiber.MethodPost, "/api/v1/admin/loans/"+loanID+"/approve", adminToken, nil)
	require.Equal(t, fiber.StatusOK, status, "approve: %v", body)
	assert.Equal(t, "1000.00", body["account_balance"])

	// A second decision on the same loan conflicts.
	status, _ = doJSON(t, app, fiber.MethodPost, "/api/v1/admin/loans/"+loanID+"/reject", adminToken, nil)
	assert.Equal(t, fiber.StatusConflict, status)

	status, body = doJSON(t, app, fiber.MethodGet, "/api/v1/accounts/"+accountID, token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "1000.00", body["balance"])
}
