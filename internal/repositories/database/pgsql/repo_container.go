package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/plusprogress/schoolcore/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	accountRepo := newPgxAccountRepository(dbPool)
	ledgerRepo := newPgxLedgerRepository(dbPool, accountRepo)
	lessonRepo := newPgxLessonRepository(dbPool)
	templateRepo := newPgxScheduleTemplateRepository(dbPool)

	return portsrepo.RepositoryProvider{
		AccountRepo:  accountRepo,
		LedgerRepo:   ledgerRepo,
		LessonRepo:   lessonRepo,
		TemplateRepo: templateRepo,
	}
}
