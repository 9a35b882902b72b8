package services_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/plusprogress/schoolcore/internal/apperrors"
	"github.com/plusprogress/schoolcore/internal/core/domain"
	portssvc "github.com/plusprogress/schoolcore/internal/core/ports/services"
	"github.com/plusprogress/schoolcore/internal/core/services"
	"github.com/plusprogress/schoolcore/internal/dto"
)

type LedgerServiceTestSuite struct {
	suite.Suite
	mockLedgerRepo  *MockLedgerRepository
	mockAccountRepo *MockAccountRepository
	service         portssvc.LedgerSvcFacade
	account         domain.Account
	actorID         string
}

func (suite *LedgerServiceTestSuite) SetupTest() {
	suite.mockLedgerRepo = new(MockLedgerRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.service = services.NewLedgerService(suite.mockLedgerRepo, suite.mockAccountRepo)

	suite.actorID = uuid.NewString()
	suite.account = domain.Account{
		AccountID: uuid.NewString(),
		Name:      "Test Student",
		Role:      domain.RoleStudent,
		Balance:   decimal.NewFromInt(100),
		IsActive:  true,
	}
}

func (suite *LedgerServiceTestSuite) TestPost_Success() {
	ctx := context.Background()
	req := dto.PostTransactionRequest{
		AccountID:   suite.account.AccountID,
		Amount:      decimal.NewFromInt(50),
		Kind:        string(domain.KindDeposit),
		Description: "top-up",
	}

	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.account.AccountID).Return(&suite.account, nil).Once()
	suite.mockLedgerRepo.On("SaveTransaction", ctx, mock.AnythingOfType("domain.Transaction")).Return(nil).Once()

	txn, err := suite.service.Post(ctx, req, suite.actorID)

	suite.Require().NoError(err)
	suite.Require().NotNil(txn)
	suite.NotEmpty(txn.TransactionID)
	suite.Equal(domain.KindDeposit, txn.Kind)
	suite.True(txn.Amount.Equal(decimal.NewFromInt(50)))
	suite.Equal(suite.actorID, txn.CreatedBy)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestPost_RejectsNonPositiveAmount() {
	ctx := context.Background()
	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-10)} {
		req := dto.PostTransactionRequest{
			AccountID:   suite.account.AccountID,
			Amount:      amount,
			Kind:        string(domain.KindIncome),
			Description: "bad",
		}

		_, err := suite.service.Post(ctx, req, suite.actorID)

		suite.Require().Error(err)
		suite.ErrorIs(err, apperrors.ErrInvalidAmount)
	}
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "SaveTransaction", mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestPost_ExpenseRequiresLesson() {
	ctx := context.Background()
	req := dto.PostTransactionRequest{
		AccountID:   suite.account.AccountID,
		Amount:      decimal.NewFromInt(10),
		Kind:        string(domain.KindExpense),
		Description: "lesson fee",
	}

	_, err := suite.service.Post(ctx, req, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "SaveTransaction", mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestPost_DuplicateExpenseReturnsExisting() {
	ctx := context.Background()
	lessonID := uuid.NewString()
	req := dto.PostTransactionRequest{
		AccountID:   suite.account.AccountID,
		Amount:      decimal.NewFromInt(10),
		Kind:        string(domain.KindExpense),
		Description: "lesson fee",
		LessonID:    &lessonID,
	}
	existing := &domain.Transaction{
		TransactionID: uuid.NewString(),
		AccountID:     suite.account.AccountID,
		Amount:        decimal.NewFromInt(10),
		Kind:          domain.KindExpense,
		LessonID:      &lessonID,
	}

	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.account.AccountID).Return(&suite.account, nil).Once()
	suite.mockLedgerRepo.On("SaveTransaction", ctx, mock.AnythingOfType("domain.Transaction")).
		Return(fmt.Errorf("%w: expense already posted", apperrors.ErrDuplicate)).Once()
	suite.mockLedgerRepo.On("FindExpenseForLesson", ctx, suite.account.AccountID, lessonID).Return(existing, nil).Once()

	txn, err := suite.service.Post(ctx, req, suite.actorID)

	suite.Require().NoError(err)
	suite.Equal(existing.TransactionID, txn.TransactionID)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestReconcileOne_NoDrift() {
	ctx := context.Background()

	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.account.AccountID).Return(&suite.account, nil).Once()
	suite.mockLedgerRepo.On("RecomputeBalances", ctx, suite.account.AccountID).
		Return(suite.account.Balance, decimal.Zero, nil).Once()

	result, err := suite.service.ReconcileOne(ctx, suite.account.AccountID, suite.actorID)

	suite.Require().NoError(err)
	suite.False(result.Corrected)
	suite.True(result.BalanceDrift.IsZero())
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "UpdateCachedBalance",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestReconcileOne_CorrectsDrift() {
	ctx := context.Background()
	recomputed := decimal.NewFromInt(70)

	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.account.AccountID).Return(&suite.account, nil).Once()
	suite.mockLedgerRepo.On("RecomputeBalances", ctx, suite.account.AccountID).
		Return(recomputed, decimal.Zero, nil).Once()
	suite.mockAccountRepo.On("UpdateCachedBalance", ctx, suite.account.AccountID, recomputed, false, suite.actorID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	result, err := suite.service.ReconcileOne(ctx, suite.account.AccountID, suite.actorID)

	suite.Require().NoError(err)
	suite.True(result.Corrected)
	suite.True(result.BalanceDrift.Equal(decimal.NewFromInt(-30)))
	suite.True(result.OldBalance.Equal(decimal.NewFromInt(100)))
	suite.True(result.NewBalance.Equal(recomputed))
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestReconcileOne_CorrectsWalletDrift() {
	ctx := context.Background()
	teacher := domain.Account{
		AccountID:     uuid.NewString(),
		Role:          domain.RoleTeacher,
		Balance:       decimal.Zero,
		WalletBalance: decimal.NewFromInt(10),
	}
	recomputedWallet := decimal.NewFromInt(700)

	suite.mockAccountRepo.On("FindAccountByID", ctx, teacher.AccountID).Return(&teacher, nil).Once()
	suite.mockLedgerRepo.On("RecomputeBalances", ctx, teacher.AccountID).
		Return(decimal.Zero, recomputedWallet, nil).Once()
	suite.mockAccountRepo.On("UpdateCachedBalance", ctx, teacher.AccountID, recomputedWallet, true, suite.actorID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	result, err := suite.service.ReconcileOne(ctx, teacher.AccountID, suite.actorID)

	suite.Require().NoError(err)
	suite.True(result.Corrected)
	suite.True(result.NewWallet.Equal(recomputedWallet))
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestListTransactions_DefaultLimit() {
	ctx := context.Background()

	suite.mockLedgerRepo.On("ListTransactionsByAccountID", ctx, suite.account.AccountID, 50, (*string)(nil)).
		Return([]domain.Transaction{}, nil, nil).Once()

	page, err := suite.service.ListTransactions(ctx, suite.account.AccountID, dto.ListTransactionsParams{})

	suite.Require().NoError(err)
	suite.Empty(page.Transactions)
	suite.Nil(page.NextToken)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func TestLedgerService(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}
