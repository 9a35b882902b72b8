package services

import (
	"time"

	portsrepo "github.com/plusprogress/schoolcore/internal/core/ports/repositories"
	portssvc "github.com/plusprogress/schoolcore/internal/core/ports/services"
)

// NewServiceContainer wires every service with its repository dependencies.
// The ledger service is shared: account deposits, billing and reconciliation
// all post through the same instance.
func NewServiceContainer(repos portsrepo.RepositoryProvider, notifier portssvc.Notifier, sweepInterval time.Duration) *portssvc.ServiceContainer {
	ledgerSvc := NewLedgerService(repos.LedgerRepo, repos.AccountRepo)
	return &portssvc.ServiceContainer{
		Account:    NewAccountService(repos.AccountRepo, ledgerSvc),
		Ledger:     ledgerSvc,
		Billing:    NewBillingService(repos.LessonRepo, repos.AccountRepo, ledgerSvc, notifier),
		Recurrence: NewRecurrenceService(repos.TemplateRepo, repos.LessonRepo),
		Overdue:    NewOverdueService(repos.LessonRepo, sweepInterval),
		Reconcile:  NewReconcileService(repos.AccountRepo, repos.LedgerRepo, repos.LessonRepo, ledgerSvc),
	}
}
