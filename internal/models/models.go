package models

// All lists every persisted model, in dependency order, for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{},
		&BankAccount{},
		&Transaction{},
		&Payment{},
		&LedgerEntry{},
		&CashbookEntry{},
		&Budget{},
		&AdministrativeOrder{},
		&AuditLog{},
	}
}
