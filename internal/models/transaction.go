package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind mirrors domain.TransactionKind for DB storage.
type TransactionKind string

// Transaction is the append-only ledger row. Rows are inserted once and never
// updated or deleted; a partial unique index on (account_id, lesson_id) where
// kind = 'expense' enforces at most one billing per student per lesson.
type Transaction struct {
	TransactionID string          `db:"transaction_id"`
	AccountID     string          `db:"account_id"`
	Amount        decimal.Decimal `db:"amount"`
	Kind          TransactionKind `db:"kind"`
	Description   string          `db:"description"`
	LessonID      *string         `db:"lesson_id"`
	CreatedAt     time.Time       `db:"created_at"`
	CreatedBy     string          `db:"created_by"`
}
