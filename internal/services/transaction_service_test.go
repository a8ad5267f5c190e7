package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"collegebank/internal/models"
	"collegebank/internal/pagination"
	"collegebank/internal/testutil"
	"collegebank/internal/uuid"
)

func TestRecord(t *testing.T) {
	t.Run("credit_increases_balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, true)
		account := testutil.CreateTestBankAccountWithBalance(t, db, "100.00")

		tx, err := svc.Record(ctx, RecordInput{
			AccountID: account.ID,
			Type:      models.TransactionTypeCredit,
			Amount:    dec("250.75"),
		})
		testutil.AssertNoError(t, err)

		if tx.ID == "" {
			t.Fatal("expected transaction ID")
		}
		if got := balanceOf(t, db, account.ID); got != "350.75" {
			t.Errorf("expected balance 350.75, got %s", got)
		}
		if tx.Account == nil {
			t.Fatal("expected returned account snapshot")
		}
		testutil.AssertAmount(t, "350.75", tx.Account.Balance)
	})

	t.Run("debit_decreases_balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, true)
		account := testutil.CreateTestBankAccountWithBalance(t, db, "100.00")

		_, err := svc.Record(ctx, RecordInput{
			AccountID: account.ID,
			Type:      models.TransactionTypeDebit,
			Amount:    dec("30"),
		})
		testutil.AssertNoError(t, err)

		if got := balanceOf(t, db, account.ID); got != "70.00" {
			t.Errorf("expected balance 70.00, got %s", got)
		}
	})

	t.Run("replay_applies_twice", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, true)
		account := testutil.CreateTestBankAccount(t, db)

		input := RecordInput{AccountID: account.ID, Type: models.TransactionTypeCredit, Amount: dec("10")}
		_, err := svc.Record(ctx, input)
		testutil.AssertNoError(t, err)
		_, err = svc.Record(ctx, input)
		testutil.AssertNoError(t, err)

		if got := balanceOf(t, db, account.ID); got != "20.00" {
			t.Errorf("expected balance 20.00, got %s", got)
		}
		if n := countRows(t, db, &models.Transaction{}); n != 2 {
			t.Errorf("expected 2 transactions, got %d", n)
		}
	})

	t.Run("non_positive_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, true)
		account := testutil.CreateTestBankAccountWithBalance(t, db, "100.00")

		for _, amount := range []string{"0", "-1", "-0.01"} {
			for _, txType := range []models.TransactionType{models.TransactionTypeCredit, models.TransactionTypeDebit} {
				_, err := svc.Record(ctx, RecordInput{AccountID: account.ID, Type: txType, Amount: dec(amount)})
				testutil.AssertAppError(t, err, "INVALID_INPUT")
			}
		}

		if got := balanceOf(t, db, account.ID); got != "100.00" {
			t.Errorf("expected balance unchanged at 100.00, got %s", got)
		}
		if n := countRows(t, db, &models.Transaction{}); n != 0 {
			t.Errorf("expected no transactions, got %d", n)
		}
	})

	t.Run("invalid_type", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, true)
		account := testutil.CreateTestBankAccount(t, db)

		_, err := svc.Record(ctx, RecordInput{AccountID: account.ID, Type: "TRANSFER", Amount: dec("1")})
		testutil.AssertAppError(t, err, "INVALID_TRANSACTION_TYPE")
	})

	t.Run("missing_account", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, true)

		_, err := svc.Record(ctx, RecordInput{Type: models.TransactionTypeCredit, Amount: dec("1")})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("unknown_account", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, true)

		_, err := svc.Record(ctx, RecordInput{AccountID: uuid.New(), Type: models.TransactionTypeCredit, Amount: dec("1")})
		testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")

		_, err = svc.Record(ctx, RecordInput{AccountID: "not-a-uuid", Type: models.TransactionTypeCredit, Amount: dec("1")})
		testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")
	})

	t.Run("date_defaults_to_today", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, true)
		account := testutil.CreateTestBankAccount(t, db)

		tx, err := svc.Record(ctx, RecordInput{AccountID: account.ID, Type: models.TransactionTypeCredit, Amount: dec("1")})
		testutil.AssertNoError(t, err)

		today := normalizeDate(time.Time{})
		if !tx.TransactionDate.Equal(today) {
			t.Errorf("expected transaction date %v, got %v", today, tx.TransactionDate)
		}
	})

	t.Run("date_is_normalized", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, true)
		account := testutil.CreateTestBankAccount(t, db)

		tx, err := svc.Record(ctx, RecordInput{
			AccountID:       account.ID,
			Type:            models.TransactionTypeCredit,
			Amount:          dec("1"),
			TransactionDate: time.Date(2024, time.January, 10, 15, 30, 0, 0, time.UTC),
		})
		testutil.AssertNoError(t, err)

		if !tx.TransactionDate.Equal(testutil.Date(2024, time.January, 10)) {
			t.Errorf("expected 2024-01-10 midnight, got %v", tx.TransactionDate)
		}
	})

	t.Run("overdraft_allowed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, true)
		account := testutil.CreateTestBankAccountWithBalance(t, db, "10.00")

		_, err := svc.Record(ctx, RecordInput{AccountID: account.ID, Type: models.TransactionTypeDebit, Amount: dec("25")})
		testutil.AssertNoError(t, err)

		if got := balanceOf(t, db, account.ID); got != "-15.00" {
			t.Errorf("expected balance -15.00, got %s", got)
		}
	})

	t.Run("overdraft_refused", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, false)
		account := testutil.CreateTestBankAccountWithBalance(t, db, "10.00")

		_, err := svc.Record(ctx, RecordInput{AccountID: account.ID, Type: models.TransactionTypeDebit, Amount: dec("25")})
		testutil.AssertAppError(t, err, "INSUFFICIENT_BALANCE")

		_, err = svc.Record(ctx, RecordInput{AccountID: account.ID, Type: models.TransactionTypeDebit, Amount: dec("10")})
		testutil.AssertNoError(t, err)

		if got := balanceOf(t, db, account.ID); got != "0.00" {
			t.Errorf("expected balance 0.00, got %s", got)
		}
	})

	t.Run("cancelled_context", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, true)
		account := testutil.CreateTestBankAccount(t, db)

		cancelled, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := svc.Record(cancelled, RecordInput{AccountID: account.ID, Type: models.TransactionTypeCredit, Amount: dec("5")})
		if err == nil {
			t.Fatal("expected error for cancelled context")
		}
		if got := balanceOf(t, db, account.ID); got != "0.00" {
			t.Errorf("expected balance 0.00, got %s", got)
		}
		if n := countRows(t, db, &models.Transaction{}); n != 0 {
			t.Errorf("expected no transactions, got %d", n)
		}
	})

	t.Run("balance_update_mismatch_rolls_back", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, true)
		account := testutil.CreateTestBankAccountWithBalance(t, db, "40.00")

		// Pretend the balance UPDATE matched no row.
		err := db.Callback().Raw().After("gorm:raw").Register("test:zero_rows", func(d *gorm.DB) {
			if strings.HasPrefix(d.Statement.SQL.String(), "UPDATE bank_accounts SET balance") {
				d.RowsAffected = 0
			}
		})
		testutil.AssertNoError(t, err)

		_, err = svc.Record(ctx, RecordInput{AccountID: account.ID, Type: models.TransactionTypeCredit, Amount: dec("5")})
		testutil.AssertAppError(t, err, "CONSISTENCY_ERROR")

		if got := balanceOf(t, db, account.ID); got != "40.00" {
			t.Errorf("expected balance 40.00 after rollback, got %s", got)
		}
		if n := countRows(t, db, &models.Transaction{}); n != 0 {
			t.Errorf("expected transaction insert rolled back, got %d rows", n)
		}
	})
}

func TestRecordWithTx(t *testing.T) {
	t.Run("caller_rollback_discards_both_writes", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, true)
		account := testutil.CreateTestBankAccount(t, db)

		errAbort := errors.New("abort")
		err := db.Transaction(func(tx *gorm.DB) error {
			if _, err := svc.RecordWithTx(tx, RecordInput{AccountID: account.ID, Type: models.TransactionTypeCredit, Amount: dec("99")}); err != nil {
				return err
			}
			return errAbort
		})
		if !errors.Is(err, errAbort) {
			t.Fatalf("expected abort error, got %v", err)
		}

		if got := balanceOf(t, db, account.ID); got != "0.00" {
			t.Errorf("expected balance 0.00, got %s", got)
		}
		if n := countRows(t, db, &models.Transaction{}); n != 0 {
			t.Errorf("expected no transactions, got %d", n)
		}
	})
}

func TestBalanceMatchesLedger(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTransactionService(db, true)
	account := testutil.CreateTestBankAccount(t, db)

	steps := []struct {
		txType models.TransactionType
		amount string
	}{
		{models.TransactionTypeCredit, "500"},
		{models.TransactionTypeDebit, "120.50"},
		{models.TransactionTypeCredit, "0.75"},
		{models.TransactionTypeDebit, "80.25"},
	}
	for _, step := range steps {
		_, err := svc.Record(ctx, RecordInput{AccountID: account.ID, Type: step.txType, Amount: dec(step.amount)})
		testutil.AssertNoError(t, err)
	}

	testutil.AssertBalanceMatchesTransactions(t, db, account.ID)
	if got := balanceOf(t, db, account.ID); got != "300.00" {
		t.Errorf("expected balance 300.00, got %s", got)
	}
}

func TestBalanceStaysExact(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTransactionService(db, true)
	account := testutil.CreateTestBankAccount(t, db)

	for _, amount := range []string{"0.10", "0.20"} {
		_, err := svc.Record(ctx, RecordInput{AccountID: account.ID, Type: models.TransactionTypeCredit, Amount: dec(amount)})
		testutil.AssertNoError(t, err)
	}

	var stored models.BankAccount
	if err := db.First(&stored, "id = ?", account.ID).Error; err != nil {
		t.Fatalf("failed to reload account: %v", err)
	}
	if !stored.Balance.Equal(dec("0.30")) {
		t.Errorf("expected balance exactly 0.30, got %s", stored.Balance.String())
	}
	testutil.AssertBalanceMatchesTransactions(t, db, account.ID)

	today := time.Now().UTC().Format("2006-01-02")
	statement, err := NewStatementService(db).GenerateStatement(ctx, StatementRequest{
		AccountID: account.ID,
		StartDate: today,
		EndDate:   today,
	})
	testutil.AssertNoError(t, err)
	if !statement.Account.Balance.Equal(dec("0.30")) {
		t.Errorf("statement balance = %s, want 0.30", statement.Account.Balance.String())
	}
}

func TestConcurrentWritesOnOneAccount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	// SQLite admits one writer at a time; queue goroutines in the pool
	// instead of failing with "database table is locked".
	sqlDB, err := db.DB()
	testutil.AssertNoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	recorder := NewTransactionService(db, true)
	payments := NewPaymentService(db, recorder)
	account := testutil.CreateTestBankAccount(t, db)

	const credits, debits = 20, 10
	var wg sync.WaitGroup
	errs := make(chan error, credits+debits)

	for i := 0; i < credits; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := recorder.Record(ctx, RecordInput{AccountID: account.ID, Type: models.TransactionTypeCredit, Amount: dec("2.50")})
			errs <- err
		}()
	}
	for i := 0; i < debits; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := payments.CreatePayment(ctx, CreatePaymentInput{
				Transaction: &PaymentTransactionInput{AccountID: account.ID, Amount: dec("1.25")},
				Payee:       "Canteen",
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		testutil.AssertNoError(t, err)
	}

	// 20 x 2.50 - 10 x 1.25
	if got := balanceOf(t, db, account.ID); got != "37.50" {
		t.Errorf("expected balance 37.50, got %s", got)
	}
	if n := countRows(t, db.Where("account_id = ?", account.ID), &models.Transaction{}); n != credits+debits {
		t.Errorf("expected %d transactions, got %d", credits+debits, n)
	}
	if n := countRows(t, db, &models.Payment{}); n != debits {
		t.Errorf("expected %d payments, got %d", debits, n)
	}
	testutil.AssertBalanceMatchesTransactions(t, db, account.ID)
}

func TestGetTransactionByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, true)
		account := testutil.CreateTestBankAccount(t, db)
		created := testutil.CreateTestTransaction(t, db, account.ID, models.TransactionTypeCredit, "12.00", testutil.Date(2024, time.May, 1))

		tx, err := svc.GetTransactionByID(ctx, created.ID)
		testutil.AssertNoError(t, err)
		if tx.Account == nil || tx.Account.ID != account.ID {
			t.Error("expected account to be preloaded")
		}
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db, true)

		_, err := svc.GetTransactionByID(ctx, uuid.New())
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})
}

func TestListTransactions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTransactionService(db, true)

	fees := testutil.CreateTestBankAccount(t, db)
	db.Model(fees).Update("account_name", "Tuition Fees")
	other := testutil.CreateTestBankAccount(t, db)

	testutil.CreateTestTransaction(t, db, fees.ID, models.TransactionTypeCredit, "300.00", testutil.Date(2024, time.January, 5))
	testutil.CreateTestTransaction(t, db, fees.ID, models.TransactionTypeDebit, "50.00", testutil.Date(2024, time.January, 6))
	testutil.CreateTestTransaction(t, db, other.ID, models.TransactionTypeCredit, "75.00", testutil.Date(2024, time.January, 7))

	t.Run("all_default_order", func(t *testing.T) {
		result, err := svc.ListTransactions(ctx, TransactionFilter{}, ListParams{})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 3 {
			t.Fatalf("expected 3 transactions, got %d", result.TotalItems)
		}
		if result.Data[0].AccountID != other.ID {
			t.Error("expected newest transaction date first")
		}
	})

	t.Run("filter_by_type", func(t *testing.T) {
		credit := models.TransactionTypeCredit
		result, err := svc.ListTransactions(ctx, TransactionFilter{Type: &credit}, ListParams{})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 2 {
			t.Errorf("expected 2 credits, got %d", result.TotalItems)
		}
	})

	t.Run("filter_by_account", func(t *testing.T) {
		result, err := svc.ListTransactions(ctx, TransactionFilter{AccountID: &fees.ID}, ListParams{})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 2 {
			t.Errorf("expected 2 transactions on fees account, got %d", result.TotalItems)
		}
	})

	t.Run("search_account_name", func(t *testing.T) {
		result, err := svc.ListTransactions(ctx, TransactionFilter{}, ListParams{Search: "tuition"})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 2 {
			t.Errorf("expected 2 matches, got %d", result.TotalItems)
		}
		for _, tx := range result.Data {
			if tx.Account == nil || tx.Account.ID != fees.ID {
				t.Errorf("unexpected match %+v", tx)
			}
		}
	})

	t.Run("order_by_amount", func(t *testing.T) {
		result, err := svc.ListTransactions(ctx, TransactionFilter{}, ListParams{Ordering: "amount"})
		testutil.AssertNoError(t, err)
		if !result.Data[0].Amount.Equal(dec("50")) {
			t.Errorf("expected smallest amount first, got %s", result.Data[0].Amount)
		}
	})

	t.Run("pagination", func(t *testing.T) {
		result, err := svc.ListTransactions(ctx, TransactionFilter{}, ListParams{Page: pagination.PageRequest{Page: 2, PageSize: 2}})
		testutil.AssertNoError(t, err)
		if len(result.Data) != 1 || result.TotalPages != 2 {
			t.Errorf("expected 1 item on page 2 of 2, got %d items, %d pages", len(result.Data), result.TotalPages)
		}
	})
}
