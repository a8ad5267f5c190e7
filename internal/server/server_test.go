package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"collegebank/internal/cache"
	"collegebank/internal/config"
	"collegebank/internal/logger"
	"collegebank/internal/middleware"
	"collegebank/internal/models"
	"collegebank/internal/testutil"
	"collegebank/internal/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
	config.Set(&config.Config{JWTSecret: "test-secret", JWTExpirationDur: time.Hour})
}

type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := testutil.SetupTestDB(t)
	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })

	router := NewRouter(db, Options{
		AllowOverdraft:   true,
		IdempotencyStore: store,
		IdempotencyTTL:   time.Hour,
	})
	return &testApp{DB: db, Router: router}
}

func (app *testApp) request(method, path, body, token string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result), "body: %s", rec.Body.String())
	return result
}

// registerUser registers a clerk and returns the access token.
func (app *testApp) registerUser(t *testing.T, username string) string {
	t.Helper()
	body := fmt.Sprintf(`{"username":%q,"email":"%s@college.test","password":"password123"}`, username, username)
	rec := app.request(http.MethodPost, "/api/v1/users/register", body, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return parseJSON(t, rec)["access_token"].(string)
}

func (app *testApp) createAccount(t *testing.T, token, number string) string {
	t.Helper()
	body := fmt.Sprintf(`{"account_name":"Tuition Fees","account_number":%q,"bank_name":"State Bank","name":"Main Campus","balance":"0"}`, number)
	rec := app.request(http.MethodPost, "/api/v1/accounts", body, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return parseJSON(t, rec)["id"].(string)
}

func (app *testApp) balance(t *testing.T, token, accountID string) string {
	t.Helper()
	rec := app.request(http.MethodGet, "/api/v1/accounts/"+accountID, "", token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return parseJSON(t, rec)["balance"].(string)
}

func TestHealth(t *testing.T) {
	app := setupApp(t)
	rec := app.request(http.MethodGet, "/api/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app := setupApp(t)
	rec := app.request(http.MethodGet, "/api/v1/accounts", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", parseJSON(t, rec)["code"])
}

func TestStatementFlow(t *testing.T) {
	app := setupApp(t)
	token := app.registerUser(t, "clerk")
	accountID := app.createAccount(t, token, "ACC-001")

	rec := app.request(http.MethodPost, "/api/v1/transactions",
		fmt.Sprintf(`{"account_id":%q,"transaction_type":"CREDIT","amount":"500","description":"Fees","transaction_date":"2024-01-10"}`, accountID), token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = app.request(http.MethodPost, "/api/v1/transactions",
		fmt.Sprintf(`{"account_id":%q,"transaction_type":"DEBIT","amount":"200","description":"Stationery","transaction_date":"2024-01-15"}`, accountID), token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = app.request(http.MethodGet,
		"/api/v1/transactions/statement?account_id="+accountID+"&start_date=2024-01-01&end_date=2024-01-31", "", token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	statement := parseJSON(t, rec)
	account := statement["account"].(map[string]interface{})
	assert.Equal(t, "300", account["balance"])

	txs := statement["transactions"].([]interface{})
	require.Len(t, txs, 2)
	assert.Equal(t, "CREDIT", txs[0].(map[string]interface{})["transaction_type"])
	assert.Equal(t, "DEBIT", txs[1].(map[string]interface{})["transaction_type"])
	assert.Equal(t, "500", statement["total_credits"])
	assert.Equal(t, "200", statement["total_debits"])

	t.Run("missing parameters", func(t *testing.T) {
		rec := app.request(http.MethodGet, "/api/v1/transactions/statement?account_id="+accountID, "", token)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "INVALID_INPUT", parseJSON(t, rec)["code"])
	})

	t.Run("unknown account", func(t *testing.T) {
		rec := app.request(http.MethodGet,
			"/api/v1/transactions/statement?account_id=0190d3a8-0000-7000-8000-000000000000&start_date=2024-01-01&end_date=2024-01-31", "", token)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "ACCOUNT_NOT_FOUND", parseJSON(t, rec)["code"])
	})
}

func TestPaymentFlow(t *testing.T) {
	app := setupApp(t)
	token := app.registerUser(t, "cashier")
	accountID := app.createAccount(t, token, "ACC-002")

	rec := app.request(http.MethodPost, "/api/v1/transactions",
		fmt.Sprintf(`{"account_id":%q,"transaction_type":"CREDIT","amount":"1000"}`, accountID), token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = app.request(http.MethodPost, "/api/v1/payments",
		fmt.Sprintf(`{"transaction":{"account_id":%q,"amount":"250","description":"Lab equipment"},"payee":"Acme Supplies","purpose":"Lab"}`, accountID), token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	payment := parseJSON(t, rec)
	tx := payment["transaction"].(map[string]interface{})
	assert.Equal(t, "DEBIT", tx["transaction_type"])
	assert.Equal(t, "250", tx["amount"])
	assert.Equal(t, "750", app.balance(t, token, accountID))

	rec = app.request(http.MethodGet, "/api/v1/payments/"+payment["id"].(string), "", token)
	assert.Equal(t, http.StatusOK, rec.Code)

	t.Run("missing transaction details", func(t *testing.T) {
		rec := app.request(http.MethodPost, "/api/v1/payments", `{"payee":"Acme Supplies"}`, token)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "750", app.balance(t, token, accountID))
	})
}

func TestIdempotentTransactionCreate(t *testing.T) {
	app := setupApp(t)
	token := app.registerUser(t, "auditor")
	accountID := app.createAccount(t, token, "ACC-003")
	body := fmt.Sprintf(`{"account_id":%q,"transaction_type":"CREDIT","amount":"40"}`, accountID)

	first := app.request(http.MethodPost, "/api/v1/transactions", body, token, middleware.IdempotencyKeyHeader, "key-1")
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())

	second := app.request(http.MethodPost, "/api/v1/transactions", body, token, middleware.IdempotencyKeyHeader, "key-1")
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get(middleware.ReplayedHeader))
	assert.JSONEq(t, first.Body.String(), second.Body.String())

	var count int64
	require.NoError(t, app.DB.Model(&models.Transaction{}).Where("account_id = ?", accountID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, "40", app.balance(t, token, accountID))

	t.Run("different body with same key", func(t *testing.T) {
		other := fmt.Sprintf(`{"account_id":%q,"transaction_type":"CREDIT","amount":"41"}`, accountID)
		rec := app.request(http.MethodPost, "/api/v1/transactions", other, token, middleware.IdempotencyKeyHeader, "key-1")
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "IDEMPOTENCY_CONFLICT", parseJSON(t, rec)["code"])
	})
}

func TestBackOfficeRecordFlow(t *testing.T) {
	app := setupApp(t)
	token := app.registerUser(t, "bursar")

	rec := app.request(http.MethodPost, "/api/v1/budgets",
		`{"name":"Physics Lab","fiscal_year":"2024-25","department":"Physics","allocated_amount":"10000"}`, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	budgetID := parseJSON(t, rec)["id"].(string)

	rec = app.request(http.MethodGet, "/api/v1/budgets", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), parseJSON(t, rec)["total_items"])

	rec = app.request(http.MethodDelete, "/api/v1/budgets/"+budgetID, "", token)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = app.request(http.MethodGet, "/api/v1/budgets/"+budgetID, "", token)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = app.request(http.MethodGet, "/api/v1/audit-logs?resource_type=budget&resource_id="+budgetID, "", token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	trail := parseJSON(t, rec)
	assert.Equal(t, float64(2), trail["total_items"])
	latest := trail["data"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "DELETE_BUDGET", latest["action"])
}
