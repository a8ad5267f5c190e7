package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"collegebank/internal/config"
	"collegebank/internal/middleware"
	"collegebank/internal/models"
	"collegebank/internal/pagination"
	"collegebank/internal/services"
	"collegebank/internal/validator"
)

const testUserID = "0190a0b0-0000-7000-8000-000000000001"

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
	config.Set(&config.Config{JWTSecret: "handler-test-secret", JWTExpirationDur: time.Hour})
}

// --- mock user service ---

type mockUserService struct {
	createUserFn      func(input services.CreateUserInput) (*models.User, error)
	getUserByIDFn     func(id string) (*models.User, error)
	attemptLoginFn    func(login, password string) (*models.User, error)
	refreshTokenHash  string
	storedTokenHashes []string
}

func (m *mockUserService) CreateUser(_ context.Context, input services.CreateUserInput) (*models.User, error) {
	if m.createUserFn != nil {
		return m.createUserFn(input)
	}
	return &models.User{Base: models.Base{ID: testUserID}, Username: input.Username, Email: input.Email}, nil
}

func (m *mockUserService) GetUserByID(_ context.Context, id string) (*models.User, error) {
	if m.getUserByIDFn != nil {
		return m.getUserByIDFn(id)
	}
	return &models.User{Base: models.Base{ID: id}, Username: "bursar"}, nil
}

func (m *mockUserService) AttemptLogin(_ context.Context, login, password string) (*models.User, error) {
	if m.attemptLoginFn != nil {
		return m.attemptLoginFn(login, password)
	}
	return &models.User{Base: models.Base{ID: testUserID}, Username: login}, nil
}

func (m *mockUserService) StoreRefreshTokenHash(_ context.Context, _, tokenHash string) error {
	m.refreshTokenHash = tokenHash
	m.storedTokenHashes = append(m.storedTokenHashes, tokenHash)
	return nil
}

func (m *mockUserService) GetRefreshTokenHash(_ context.Context, _ string) (string, error) {
	return m.refreshTokenHash, nil
}

// --- mock audit service ---

type auditCall struct {
	UserID, Action, ResourceType, ResourceID string
}

type mockAuditService struct {
	calls  []auditCall
	listFn func(filter services.AuditFilter, params services.ListParams) (*pagination.PageResponse[models.AuditLog], error)
}

func (m *mockAuditService) Record(_ context.Context, event services.AuditEvent) {
	m.calls = append(m.calls, auditCall{event.UserID, event.Action, event.ResourceType, event.ResourceID})
}

func (m *mockAuditService) ListAuditLogs(_ context.Context, filter services.AuditFilter, params services.ListParams) (*pagination.PageResponse[models.AuditLog], error) {
	if m.listFn != nil {
		return m.listFn(filter, params)
	}
	result := pagination.NewPageResponse([]models.AuditLog{}, 1, 20, 0)
	return &result, nil
}

// --- mock account service ---

type mockAccountService struct {
	createAccountFn func(input services.CreateAccountInput) (*models.BankAccount, error)
	getAccountFn    func(id string) (*models.BankAccount, error)
	listAccountsFn  func(params services.ListParams) (*pagination.PageResponse[models.BankAccount], error)
	updateAccountFn func(id string, input services.UpdateAccountInput) (*models.BankAccount, error)
	deleteAccountFn func(id string) error
}

func (m *mockAccountService) CreateAccount(_ context.Context, input services.CreateAccountInput) (*models.BankAccount, error) {
	if m.createAccountFn != nil {
		return m.createAccountFn(input)
	}
	return &models.BankAccount{}, nil
}

func (m *mockAccountService) GetAccountByID(_ context.Context, id string) (*models.BankAccount, error) {
	if m.getAccountFn != nil {
		return m.getAccountFn(id)
	}
	return &models.BankAccount{Base: models.Base{ID: id}}, nil
}

func (m *mockAccountService) ListAccounts(_ context.Context, params services.ListParams) (*pagination.PageResponse[models.BankAccount], error) {
	if m.listAccountsFn != nil {
		return m.listAccountsFn(params)
	}
	resp := pagination.NewPageResponse([]models.BankAccount{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockAccountService) UpdateAccount(_ context.Context, id string, input services.UpdateAccountInput) (*models.BankAccount, error) {
	if m.updateAccountFn != nil {
		return m.updateAccountFn(id, input)
	}
	return &models.BankAccount{Base: models.Base{ID: id}}, nil
}

func (m *mockAccountService) DeleteAccount(_ context.Context, id string) error {
	if m.deleteAccountFn != nil {
		return m.deleteAccountFn(id)
	}
	return nil
}

// --- mock transaction and statement services ---

type mockTransactionService struct {
	recordFn          func(input services.RecordInput) (*models.Transaction, error)
	getTransactionFn  func(id string) (*models.Transaction, error)
	listTransactionFn func(filter services.TransactionFilter, params services.ListParams) (*pagination.PageResponse[models.Transaction], error)
}

func (m *mockTransactionService) Record(_ context.Context, input services.RecordInput) (*models.Transaction, error) {
	if m.recordFn != nil {
		return m.recordFn(input)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) RecordWithTx(_ *gorm.DB, input services.RecordInput) (*models.Transaction, error) {
	return m.Record(context.Background(), input)
}

func (m *mockTransactionService) GetTransactionByID(_ context.Context, id string) (*models.Transaction, error) {
	if m.getTransactionFn != nil {
		return m.getTransactionFn(id)
	}
	return &models.Transaction{Base: models.Base{ID: id}}, nil
}

func (m *mockTransactionService) ListTransactions(_ context.Context, filter services.TransactionFilter, params services.ListParams) (*pagination.PageResponse[models.Transaction], error) {
	if m.listTransactionFn != nil {
		return m.listTransactionFn(filter, params)
	}
	resp := pagination.NewPageResponse([]models.Transaction{}, 1, 20, 0)
	return &resp, nil
}

type mockStatementService struct {
	generateFn func(req services.StatementRequest) (*services.Statement, error)
}

func (m *mockStatementService) GenerateStatement(_ context.Context, req services.StatementRequest) (*services.Statement, error) {
	if m.generateFn != nil {
		return m.generateFn(req)
	}
	return &services.Statement{Transactions: []models.Transaction{}}, nil
}

// --- mock payment service ---

type mockPaymentService struct {
	createPaymentFn func(input services.CreatePaymentInput) (*models.Payment, error)
	getPaymentFn    func(id string) (*models.Payment, error)
	listPaymentsFn  func(params services.ListParams) (*pagination.PageResponse[models.Payment], error)
}

func (m *mockPaymentService) CreatePayment(_ context.Context, input services.CreatePaymentInput) (*models.Payment, error) {
	if m.createPaymentFn != nil {
		return m.createPaymentFn(input)
	}
	return &models.Payment{}, nil
}

func (m *mockPaymentService) GetPaymentByID(_ context.Context, id string) (*models.Payment, error) {
	if m.getPaymentFn != nil {
		return m.getPaymentFn(id)
	}
	return &models.Payment{Base: models.Base{ID: id}}, nil
}

func (m *mockPaymentService) ListPayments(_ context.Context, params services.ListParams) (*pagination.PageResponse[models.Payment], error) {
	if m.listPaymentsFn != nil {
		return m.listPaymentsFn(params)
	}
	resp := pagination.NewPageResponse([]models.Payment{}, 1, 20, 0)
	return &resp, nil
}

// --- mock back-office services ---

type mockBudgetService struct {
	createBudgetFn func(input services.BudgetInput) (*models.Budget, error)
	listBudgetsFn  func(fiscalYear string, params services.ListParams) (*pagination.PageResponse[models.Budget], error)
	updateBudgetFn func(id string, input services.UpdateBudgetInput) (*models.Budget, error)
	deleteBudgetFn func(id string) error
}

func (m *mockBudgetService) CreateBudget(_ context.Context, input services.BudgetInput) (*models.Budget, error) {
	if m.createBudgetFn != nil {
		return m.createBudgetFn(input)
	}
	return &models.Budget{Name: input.Name}, nil
}

func (m *mockBudgetService) GetBudgetByID(_ context.Context, id string) (*models.Budget, error) {
	return &models.Budget{Base: models.Base{ID: id}}, nil
}

func (m *mockBudgetService) ListBudgets(_ context.Context, fiscalYear string, params services.ListParams) (*pagination.PageResponse[models.Budget], error) {
	if m.listBudgetsFn != nil {
		return m.listBudgetsFn(fiscalYear, params)
	}
	resp := pagination.NewPageResponse([]models.Budget{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockBudgetService) UpdateBudget(_ context.Context, id string, input services.UpdateBudgetInput) (*models.Budget, error) {
	if m.updateBudgetFn != nil {
		return m.updateBudgetFn(id, input)
	}
	return &models.Budget{Base: models.Base{ID: id}}, nil
}

func (m *mockBudgetService) DeleteBudget(_ context.Context, id string) error {
	if m.deleteBudgetFn != nil {
		return m.deleteBudgetFn(id)
	}
	return nil
}

type mockLedgerEntryService struct {
	createFn func(input services.LedgerEntryInput) (*models.LedgerEntry, error)
	updateFn func(id string, input services.UpdateLedgerEntryInput) (*models.LedgerEntry, error)
}

func (m *mockLedgerEntryService) CreateLedgerEntry(_ context.Context, input services.LedgerEntryInput) (*models.LedgerEntry, error) {
	if m.createFn != nil {
		return m.createFn(input)
	}
	return &models.LedgerEntry{}, nil
}

func (m *mockLedgerEntryService) GetLedgerEntryByID(_ context.Context, id string) (*models.LedgerEntry, error) {
	return &models.LedgerEntry{Base: models.Base{ID: id}}, nil
}

func (m *mockLedgerEntryService) ListLedgerEntries(_ context.Context, _ services.ListParams) (*pagination.PageResponse[models.LedgerEntry], error) {
	resp := pagination.NewPageResponse([]models.LedgerEntry{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockLedgerEntryService) UpdateLedgerEntry(_ context.Context, id string, input services.UpdateLedgerEntryInput) (*models.LedgerEntry, error) {
	if m.updateFn != nil {
		return m.updateFn(id, input)
	}
	return &models.LedgerEntry{Base: models.Base{ID: id}}, nil
}

func (m *mockLedgerEntryService) DeleteLedgerEntry(_ context.Context, _ string) error {
	return nil
}

type mockCashbookEntryService struct {
	createFn func(input services.CashbookEntryInput) (*models.CashbookEntry, error)
	listFn   func(entryType *models.CashbookEntryType, params services.ListParams) (*pagination.PageResponse[models.CashbookEntry], error)
}

func (m *mockCashbookEntryService) CreateCashbookEntry(_ context.Context, input services.CashbookEntryInput) (*models.CashbookEntry, error) {
	if m.createFn != nil {
		return m.createFn(input)
	}
	return &models.CashbookEntry{}, nil
}

func (m *mockCashbookEntryService) GetCashbookEntryByID(_ context.Context, id string) (*models.CashbookEntry, error) {
	return &models.CashbookEntry{Base: models.Base{ID: id}}, nil
}

func (m *mockCashbookEntryService) ListCashbookEntries(_ context.Context, entryType *models.CashbookEntryType, params services.ListParams) (*pagination.PageResponse[models.CashbookEntry], error) {
	if m.listFn != nil {
		return m.listFn(entryType, params)
	}
	resp := pagination.NewPageResponse([]models.CashbookEntry{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockCashbookEntryService) UpdateCashbookEntry(_ context.Context, id string, _ services.UpdateCashbookEntryInput) (*models.CashbookEntry, error) {
	return &models.CashbookEntry{Base: models.Base{ID: id}}, nil
}

func (m *mockCashbookEntryService) DeleteCashbookEntry(_ context.Context, _ string) error {
	return nil
}

type mockOrderService struct {
	createOrderFn func(input services.CreateOrderInput) (*models.AdministrativeOrder, error)
	getOrderFn    func(id string) (*models.AdministrativeOrder, error)
	updateOrderFn func(id string, input services.UpdateOrderInput) (*models.AdministrativeOrder, error)
}

func (m *mockOrderService) CreateOrder(_ context.Context, input services.CreateOrderInput) (*models.AdministrativeOrder, error) {
	if m.createOrderFn != nil {
		return m.createOrderFn(input)
	}
	return &models.AdministrativeOrder{}, nil
}

func (m *mockOrderService) GetOrderByID(_ context.Context, id string) (*models.AdministrativeOrder, error) {
	if m.getOrderFn != nil {
		return m.getOrderFn(id)
	}
	return &models.AdministrativeOrder{Base: models.Base{ID: id}}, nil
}

func (m *mockOrderService) ListOrders(_ context.Context, _ services.ListParams) (*pagination.PageResponse[models.AdministrativeOrder], error) {
	resp := pagination.NewPageResponse([]models.AdministrativeOrder{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockOrderService) UpdateOrder(_ context.Context, id string, input services.UpdateOrderInput) (*models.AdministrativeOrder, error) {
	if m.updateOrderFn != nil {
		return m.updateOrderFn(id, input)
	}
	return &models.AdministrativeOrder{Base: models.Base{ID: id}}, nil
}

func (m *mockOrderService) DeleteOrder(_ context.Context, _ string) error {
	return nil
}

// verify interface compliance
var (
	_ services.UserServicer                = (*mockUserService)(nil)
	_ services.AuditServicer               = (*mockAuditService)(nil)
	_ services.AccountServicer             = (*mockAccountService)(nil)
	_ services.TransactionServicer         = (*mockTransactionService)(nil)
	_ services.StatementServicer           = (*mockStatementService)(nil)
	_ services.PaymentServicer             = (*mockPaymentService)(nil)
	_ services.BudgetServicer              = (*mockBudgetService)(nil)
	_ services.LedgerEntryServicer         = (*mockLedgerEntryService)(nil)
	_ services.CashbookEntryServicer       = (*mockCashbookEntryService)(nil)
	_ services.AdministrativeOrderServicer = (*mockOrderService)(nil)
)

// --- test helpers ---

func injectUserID(uid string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, uid)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	if result["code"] != code {
		t.Errorf("expected error code %q, got %v", code, result["code"])
	}
	if _, ok := result["error"].(string); !ok {
		t.Errorf("expected error message, got %v", result["error"])
	}
}
