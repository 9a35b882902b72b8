package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/plusprogress/schoolcore/internal/apperrors"
	"github.com/plusprogress/schoolcore/internal/core/domain"
	portsrepo "github.com/plusprogress/schoolcore/internal/core/ports/repositories"
	"github.com/plusprogress/schoolcore/internal/models"
	"github.com/plusprogress/schoolcore/internal/utils/mapping"
	"github.com/plusprogress/schoolcore/internal/utils/pagination"
)

type PgxLedgerRepository struct {
	BaseRepository
	accountRepo portsrepo.AccountRepositoryFacade
}

// newPgxLedgerRepository creates a new repository for the transaction log.
func newPgxLedgerRepository(pool *pgxpool.Pool, accountRepo portsrepo.AccountRepositoryFacade) portsrepo.LedgerRepositoryFacade {
	return &PgxLedgerRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
	}
}

var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

const transactionColumns = `transaction_id, account_id, amount, kind, description, lesson_id, created_at, created_by`

func scanTransaction(row pgx.Row) (models.Transaction, error) {
	var m models.Transaction
	err := row.Scan(
		&m.TransactionID,
		&m.AccountID,
		&m.Amount,
		&m.Kind,
		&m.Description,
		&m.LessonID,
		&m.CreatedAt,
		&m.CreatedBy,
	)
	return m, err
}

// SaveTransaction appends a transaction and moves the cached balance in one
// database transaction. The account row is locked first so that the
// idempotency constraint check and the projection update are serialized
// against concurrent postings to the same account.
func (r *PgxLedgerRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	account, err := r.accountRepo.FindAccountByIDForUpdate(ctx, tx, txn.AccountID)
	if err != nil {
		return fmt.Errorf("failed to lock account %s for posting: %w", txn.AccountID, err)
	}

	m := mapping.ToModelTransaction(txn)
	insertQuery := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err = tx.Exec(ctx, insertQuery,
		m.TransactionID,
		m.AccountID,
		m.Amount,
		m.Kind,
		m.Description,
		m.LessonID,
		m.CreatedAt,
		m.CreatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			// The partial unique index on (account_id, lesson_id) for expenses
			// fired: this lesson was already billed to this account.
			return fmt.Errorf("%w: expense already posted for account %s lesson %v", apperrors.ErrDuplicate, m.AccountID, m.LessonID)
		}
		return apperrors.NewAppError(500, "failed to insert transaction "+m.TransactionID, err)
	}

	column := "balance"
	if txn.Kind.IsWalletKind() {
		column = "wallet_balance"
	}
	delta := txn.Amount
	if txn.Kind.Sign() < 0 {
		delta = delta.Neg()
	}
	updateQuery := `UPDATE accounts SET ` + column + ` = ` + column + ` + $2, last_updated_at = $3, last_updated_by = $4 WHERE account_id = $1;`
	if _, err := tx.Exec(ctx, updateQuery, account.AccountID, delta, txn.CreatedAt, txn.CreatedBy); err != nil {
		return apperrors.NewAppError(500, "failed to update cached balance for account "+account.AccountID, err)
	}

	return r.Commit(ctx, tx)
}

// HasExpenseForLesson reports whether an expense already exists for the
// (account, lesson) pair.
func (r *PgxLedgerRepository) HasExpenseForLesson(ctx context.Context, accountID, lessonID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM transactions WHERE account_id = $1 AND lesson_id = $2 AND kind = 'expense');`

	var exists bool
	if err := r.Pool.QueryRow(ctx, query, accountID, lessonID).Scan(&exists); err != nil {
		return false, apperrors.NewAppError(500, "failed to check expense existence", err)
	}
	return exists, nil
}

// FindExpenseForLesson retrieves the expense transaction for the pair.
func (r *PgxLedgerRepository) FindExpenseForLesson(ctx context.Context, accountID, lessonID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE account_id = $1 AND lesson_id = $2 AND kind = 'expense';`

	m, err := scanTransaction(r.Pool.QueryRow(ctx, query, accountID, lessonID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find expense transaction", err)
	}

	txn := mapping.ToDomainTransaction(m)
	return &txn, nil
}

// RecomputeBalances sums the transaction log for the account and returns the
// derived (balance, walletBalance) pair.
func (r *PgxLedgerRepository) RecomputeBalances(ctx context.Context, accountID string) (decimal.Decimal, decimal.Decimal, error) {
	query := `SELECT kind, COALESCE(SUM(amount), 0) FROM transactions WHERE account_id = $1 GROUP BY kind;`

	rows, err := r.Pool.Query(ctx, query, accountID)
	if err != nil {
		return decimal.Zero, decimal.Zero, apperrors.NewAppError(500, "failed to sum transactions for account "+accountID, err)
	}
	defer rows.Close()

	balance := decimal.Zero
	wallet := decimal.Zero
	for rows.Next() {
		var kind models.TransactionKind
		var sum decimal.Decimal
		if err := rows.Scan(&kind, &sum); err != nil {
			return decimal.Zero, decimal.Zero, apperrors.NewAppError(500, "failed to scan balance sum row", err)
		}
		switch domain.TransactionKind(kind) {
		case domain.KindIncome, domain.KindDeposit:
			balance = balance.Add(sum)
		case domain.KindExpense:
			balance = balance.Sub(sum)
		case domain.KindTeacherPayout, domain.KindTeacherSalary:
			wallet = wallet.Add(sum)
		}
	}
	if err := rows.Err(); err != nil {
		return decimal.Zero, decimal.Zero, apperrors.NewAppError(500, "error iterating balance sum rows", err)
	}
	return balance, wallet, nil
}

// ListTransactionsByAccountID retrieves a page of transactions, newest first,
// using keyset pagination on (created_at, transaction_id).
func (r *PgxLedgerRepository) ListTransactionsByAccountID(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE account_id = $1`
	args := []any{accountID}

	if nextToken != nil && *nextToken != "" {
		createdAt, id, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		query += ` AND (created_at, transaction_id) < ($2, $3)`
		args = append(args, createdAt, id)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC, transaction_id DESC LIMIT %d;`, limit+1)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to list transactions for account "+accountID, err)
	}
	defer rows.Close()

	transactions := []domain.Transaction{}
	for rows.Next() {
		m, err := scanTransaction(rows)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan transaction row", err)
		}
		transactions = append(transactions, mapping.ToDomainTransaction(m))
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating transaction rows", err)
	}

	var newNextToken *string
	if len(transactions) > limit {
		last := transactions[limit-1]
		token := pagination.EncodeToken(last.CreatedAt, last.TransactionID)
		newNextToken = &token
		transactions = transactions[:limit]
	}
	return transactions, newNextToken, nil
}

// FindUnbilledAttendances finds attended enrollments on completed lessons with
// no matching expense transaction, the drift signature of writes that bypassed
// billing. Attendance marked ahead of completion, or on lessons that were
// later cancelled, is not billable drift.
func (r *PgxLedgerRepository) FindUnbilledAttendances(ctx context.Context) ([]domain.Enrollment, error) {
	query := `
		SELECT ` + prefixedEnrollmentColumns("e") + `
		FROM enrollments e
		WHERE e.status = 'attended'
		  AND EXISTS (
			SELECT 1 FROM lessons l
			WHERE l.lesson_id = e.lesson_id
			  AND l.status = 'completed'
		  )
		  AND NOT EXISTS (
			SELECT 1 FROM transactions t
			WHERE t.account_id = e.student_id
			  AND t.lesson_id = e.lesson_id
			  AND t.kind = 'expense'
		  )
		ORDER BY e.created_at, e.enrollment_id;
	`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query unbilled attendances", err)
	}
	defer rows.Close()

	enrollments := []domain.Enrollment{}
	for rows.Next() {
		m, err := scanEnrollment(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan enrollment row", err)
		}
		enrollments = append(enrollments, mapping.ToDomainEnrollment(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating enrollment rows", err)
	}
	return enrollments, nil
}
