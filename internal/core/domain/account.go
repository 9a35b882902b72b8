package domain

import "github.com/shopspring/decimal"

// AccountRole identifies what kind of account holder this is.
type AccountRole string

const (
	RoleStudent AccountRole = "student"
	RoleTeacher AccountRole = "teacher"
	RoleAdmin   AccountRole = "admin"
)

// Account is a balance-holding identity. Identity and authentication live in
// the external directory; the core only owns the cached balance projections.
// Balance tracks money owed to/by the platform; WalletBalance is the teacher
// payout wallet and stays zero for students.
//
// Both balances are projections over the transaction log, not the source of
// truth: they can be rebuilt at any time from the ledger.
type Account struct {
	AccountID     string          `json:"accountID"`
	Name          string          `json:"name"`
	Role          AccountRole     `json:"role"`
	Balance       decimal.Decimal `json:"balance"`
	WalletBalance decimal.Decimal `json:"walletBalance"`
	IsActive      bool            `json:"isActive"`
	AuditFields
}

// IsTeacher reports whether the account carries a payout wallet.
func (a Account) IsTeacher() bool {
	return a.Role == RoleTeacher
}
