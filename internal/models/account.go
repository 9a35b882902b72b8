package models

import "github.com/shopspring/decimal"

// AccountRole mirrors domain.AccountRole for DB storage.
type AccountRole string

// Account is the DB row for a balance-holding identity.
// Balance and WalletBalance are cached projections over transactions.
type Account struct {
	AccountID     string          `db:"account_id"`
	Name          string          `db:"name"`
	Role          AccountRole     `db:"role"`
	Balance       decimal.Decimal `db:"balance"`
	WalletBalance decimal.Decimal `db:"wallet_balance"`
	IsActive      bool            `db:"is_active"`
	AuditFields
}
