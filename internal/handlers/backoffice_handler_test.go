package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "collegebank/internal/errors"
	"collegebank/internal/models"
	"collegebank/internal/pagination"
	"collegebank/internal/services"
)

func TestBudgetHandler(t *testing.T) {
	var createdWith services.BudgetInput
	var listedYear string
	budgetSvc := &mockBudgetService{
		createBudgetFn: func(input services.BudgetInput) (*models.Budget, error) {
			createdWith = input
			return &models.Budget{Base: models.Base{ID: "b-1"}, Name: input.Name, FiscalYear: input.FiscalYear}, nil
		},
		listBudgetsFn: func(fiscalYear string, _ services.ListParams) (*pagination.PageResponse[models.Budget], error) {
			listedYear = fiscalYear
			resp := pagination.NewPageResponse([]models.Budget{}, 1, 20, 0)
			return &resp, nil
		},
		deleteBudgetFn: func(id string) error {
			if id == "missing" {
				return apperrors.ErrBudgetNotFound
			}
			return nil
		},
	}
	handler := NewBudgetHandler(budgetSvc, &mockAuditService{})
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/budgets", handler.CreateBudget)
	auth.GET("/budgets", handler.ListBudgets)
	auth.GET("/budgets/:id", handler.GetBudget)
	auth.PUT("/budgets/:id", handler.UpdateBudget)
	auth.DELETE("/budgets/:id", handler.DeleteBudget)

	t.Run("create returns 201", func(t *testing.T) {
		rec := doRequest(r, "POST", "/budgets", `{"name":"Library","fiscal_year":"2024-25","allocated_amount":"150000.00"}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if !createdWith.AllocatedAmount.Equal(decimal.NewFromInt(150000)) {
			t.Errorf("unexpected amount %s", createdWith.AllocatedAmount)
		}
	})

	t.Run("create returns 400 without fiscal year", func(t *testing.T) {
		rec := doRequest(r, "POST", "/budgets", `{"name":"Library"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("list passes fiscal year", func(t *testing.T) {
		rec := doRequest(r, "GET", "/budgets?fiscal_year=2024-25", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if listedYear != "2024-25" {
			t.Errorf("expected 2024-25, got %q", listedYear)
		}
	})

	t.Run("get returns 200", func(t *testing.T) {
		rec := doRequest(r, "GET", "/budgets/b-1", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("update returns 200", func(t *testing.T) {
		rec := doRequest(r, "PUT", "/budgets/b-1", `{"department":"Science"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("delete returns 404 for missing", func(t *testing.T) {
		rec := doRequest(r, "DELETE", "/budgets/missing", "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestLedgerEntryHandler(t *testing.T) {
	var createdWith services.LedgerEntryInput
	var updatedWith services.UpdateLedgerEntryInput
	ledgerSvc := &mockLedgerEntryService{
		createFn: func(input services.LedgerEntryInput) (*models.LedgerEntry, error) {
			createdWith = input
			return &models.LedgerEntry{Base: models.Base{ID: "le-1"}, Particulars: input.Particulars}, nil
		},
		updateFn: func(id string, input services.UpdateLedgerEntryInput) (*models.LedgerEntry, error) {
			updatedWith = input
			return &models.LedgerEntry{Base: models.Base{ID: id}}, nil
		},
	}
	handler := NewLedgerEntryHandler(ledgerSvc, &mockAuditService{})
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/ledger-entries", handler.CreateLedgerEntry)
	auth.GET("/ledger-entries", handler.ListLedgerEntries)
	auth.GET("/ledger-entries/:id", handler.GetLedgerEntry)
	auth.PUT("/ledger-entries/:id", handler.UpdateLedgerEntry)
	auth.DELETE("/ledger-entries/:id", handler.DeleteLedgerEntry)

	t.Run("create stamps the caller", func(t *testing.T) {
		rec := doRequest(r, "POST", "/ledger-entries", `{"entry_date":"2024-02-01","particulars":"Fee receipts","credit_amount":"250.00"}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if createdWith.CreatedBy != testUserID {
			t.Errorf("expected created_by %s, got %q", testUserID, createdWith.CreatedBy)
		}
		if !createdWith.EntryDate.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("unexpected entry date %s", createdWith.EntryDate)
		}
	})

	t.Run("create rejects negative debit", func(t *testing.T) {
		rec := doRequest(r, "POST", "/ledger-entries", `{"particulars":"x","debit_amount":"-1"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("update parses the date", func(t *testing.T) {
		rec := doRequest(r, "PUT", "/ledger-entries/le-1", `{"entry_date":"2024-03-05"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if updatedWith.EntryDate == nil || updatedWith.EntryDate.Day() != 5 {
			t.Errorf("expected parsed date, got %v", updatedWith.EntryDate)
		}
	})

	t.Run("update rejects blank date", func(t *testing.T) {
		rec := doRequest(r, "PUT", "/ledger-entries/le-1", `{"entry_date":""}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("delete returns 204", func(t *testing.T) {
		rec := doRequest(r, "DELETE", "/ledger-entries/le-1", "")
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}
	})
}

func TestCashbookEntryHandler(t *testing.T) {
	var listedType *models.CashbookEntryType
	cashSvc := &mockCashbookEntryService{
		listFn: func(entryType *models.CashbookEntryType, _ services.ListParams) (*pagination.PageResponse[models.CashbookEntry], error) {
			listedType = entryType
			resp := pagination.NewPageResponse([]models.CashbookEntry{}, 1, 20, 0)
			return &resp, nil
		},
	}
	handler := NewCashbookEntryHandler(cashSvc, &mockAuditService{})
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/cashbook-entries", handler.CreateCashbookEntry)
	auth.GET("/cashbook-entries", handler.ListCashbookEntries)
	auth.GET("/cashbook-entries/:id", handler.GetCashbookEntry)
	auth.PUT("/cashbook-entries/:id", handler.UpdateCashbookEntry)
	auth.DELETE("/cashbook-entries/:id", handler.DeleteCashbookEntry)

	t.Run("create returns 201", func(t *testing.T) {
		rec := doRequest(r, "POST", "/cashbook-entries", `{"particulars":"Canteen cash","entry_type":"RECEIPT","amount":"1200"}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("create rejects unknown entry type", func(t *testing.T) {
		rec := doRequest(r, "POST", "/cashbook-entries", `{"particulars":"x","entry_type":"TRANSFER","amount":"1"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("list filters by type", func(t *testing.T) {
		rec := doRequest(r, "GET", "/cashbook-entries?entry_type=payment", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if listedType == nil || *listedType != models.CashbookEntryPayment {
			t.Errorf("expected PAYMENT filter, got %v", listedType)
		}
	})

	t.Run("list rejects unknown type", func(t *testing.T) {
		rec := doRequest(r, "GET", "/cashbook-entries?entry_type=other", "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestAdministrativeOrderHandler(t *testing.T) {
	var createdWith services.CreateOrderInput
	var updatedWith services.UpdateOrderInput
	orderSvc := &mockOrderService{
		createOrderFn: func(input services.CreateOrderInput) (*models.AdministrativeOrder, error) {
			createdWith = input
			if input.RelatedTransactionID != nil && *input.RelatedTransactionID == "missing" {
				return nil, apperrors.ErrTransactionNotFound
			}
			return &models.AdministrativeOrder{Base: models.Base{ID: "o-1"}, OrderNumber: input.OrderNumber, RelatedTransactionID: input.RelatedTransactionID}, nil
		},
		updateOrderFn: func(id string, input services.UpdateOrderInput) (*models.AdministrativeOrder, error) {
			updatedWith = input
			return &models.AdministrativeOrder{Base: models.Base{ID: id}}, nil
		},
	}
	handler := NewAdministrativeOrderHandler(orderSvc, &mockAuditService{})
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/administrative-orders", handler.CreateOrder)
	auth.GET("/administrative-orders", handler.ListOrders)
	auth.GET("/administrative-orders/:id", handler.GetOrder)
	auth.PUT("/administrative-orders/:id", handler.UpdateOrder)
	auth.DELETE("/administrative-orders/:id", handler.DeleteOrder)

	t.Run("create without link", func(t *testing.T) {
		rec := doRequest(r, "POST", "/administrative-orders", `{"order_number":"AO-1","title":"Approve lab purchase","related_transaction_id":null}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if createdWith.RelatedTransactionID != nil {
			t.Errorf("expected no link, got %v", *createdWith.RelatedTransactionID)
		}
		if parseJSON(t, rec)["related_transaction_id"] != nil {
			t.Error("expected null related_transaction_id")
		}
	})

	t.Run("create with missing transaction returns 404", func(t *testing.T) {
		rec := doRequest(r, "POST", "/administrative-orders", `{"order_number":"AO-2","title":"t","related_transaction_id":"missing"}`)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "TRANSACTION_NOT_FOUND")
	})

	t.Run("create requires title", func(t *testing.T) {
		rec := doRequest(r, "POST", "/administrative-orders", `{"order_number":"AO-3"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("update with empty link clears it", func(t *testing.T) {
		rec := doRequest(r, "PUT", "/administrative-orders/o-1", `{"related_transaction_id":""}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if updatedWith.RelatedTransactionID == nil || *updatedWith.RelatedTransactionID != "" {
			t.Errorf("expected empty link, got %v", updatedWith.RelatedTransactionID)
		}
	})

	t.Run("get and delete", func(t *testing.T) {
		if rec := doRequest(r, "GET", "/administrative-orders/o-1", ""); rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if rec := doRequest(r, "DELETE", "/administrative-orders/o-1", ""); rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}
	})
}

func TestAuditLogHandler_ListAuditLogs(t *testing.T) {
	var got services.AuditFilter
	audit := &mockAuditService{
		listFn: func(filter services.AuditFilter, params services.ListParams) (*pagination.PageResponse[models.AuditLog], error) {
			got = filter
			if params.Ordering == "bogus!" {
				return nil, apperrors.ErrInternalServer
			}
			resp := pagination.NewPageResponse([]models.AuditLog{{ID: "a-1", Action: "CREATE_PAYMENT"}}, 1, 20, 1)
			return &resp, nil
		},
	}
	handler := NewAuditLogHandler(audit)
	r := gin.New()
	r.GET("/audit-logs", injectUserID(testUserID), handler.ListAuditLogs)

	result := doRequest(r, http.MethodGet, "/audit-logs?resource_type=payment&action=create_payment&resource_id=p-1", "")
	if result.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", result.Code, result.Body.String())
	}
	if got.ResourceType != "payment" || got.Action != "create_payment" || got.ResourceID != "p-1" {
		t.Errorf("filter not forwarded: %+v", got)
	}
	body := parseJSON(t, result)
	if body["total_items"].(float64) != 1 {
		t.Errorf("expected 1 item, got %v", body["total_items"])
	}

	result = doRequest(r, http.MethodGet, "/audit-logs?page=abc", "")
	if result.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad page, got %d", result.Code)
	}

	result = doRequest(r, http.MethodGet, "/audit-logs?ordering=bogus!", "")
	if result.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", result.Code)
	}
	assertErrorCode(t, parseJSON(t, result), "INTERNAL_ERROR")
}
