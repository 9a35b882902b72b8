package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind classifies a ledger entry.
type TransactionKind string

const (
	KindIncome        TransactionKind = "income"
	KindExpense       TransactionKind = "expense"
	KindDeposit       TransactionKind = "deposit"
	KindTeacherPayout TransactionKind = "teacher_payout"
	KindTeacherSalary TransactionKind = "teacher_salary"
)

// IsWalletKind reports whether the kind moves the teacher wallet rather than
// the student-facing balance.
func (k TransactionKind) IsWalletKind() bool {
	return k == KindTeacherPayout || k == KindTeacherSalary
}

// Sign returns +1 for kinds that increase the affected balance and -1 for
// kinds that decrease it. Wallet kinds always credit the wallet.
func (k TransactionKind) Sign() int {
	if k == KindExpense {
		return -1
	}
	return 1
}

// Transaction is an immutable, append-only ledger record. Transactions are
// never updated or deleted; balances are derived from them.
type Transaction struct {
	TransactionID string          `json:"transactionID"`
	AccountID     string          `json:"accountID"`
	Amount        decimal.Decimal `json:"amount"` // always positive; Kind carries direction
	Kind          TransactionKind `json:"kind"`
	Description   string          `json:"description"`
	LessonID      *string         `json:"lessonID,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	CreatedBy     string          `json:"createdBy"`
}
