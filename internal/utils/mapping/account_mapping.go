package mapping

import (
	"github.com/plusprogress/schoolcore/internal/core/domain"
	"github.com/plusprogress/schoolcore/internal/models"
)

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:     d.AccountID,
		Name:          d.Name,
		Role:          models.AccountRole(d.Role),
		Balance:       d.Balance,
		WalletBalance: d.WalletBalance,
		IsActive:      d.IsActive,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:     m.AccountID,
		Name:          m.Name,
		Role:          domain.AccountRole(m.Role),
		Balance:       m.Balance,
		WalletBalance: m.WalletBalance,
		IsActive:      m.IsActive,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}
