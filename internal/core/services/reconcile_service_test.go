package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/plusprogress/schoolcore/internal/core/domain"
	portssvc "github.com/plusprogress/schoolcore/internal/core/ports/services"
	"github.com/plusprogress/schoolcore/internal/core/services"
	"github.com/plusprogress/schoolcore/internal/dto"
)

type ReconcileServiceTestSuite struct {
	suite.Suite
	mockAccountRepo *MockAccountRepository
	mockLedgerRepo  *MockLedgerRepository
	mockLessonRepo  *MockLessonRepository
	mockLedgerSvc   *MockLedgerService
	service         portssvc.ReconcilerSvc
	actorID         string
}

func (suite *ReconcileServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockLedgerRepo = new(MockLedgerRepository)
	suite.mockLessonRepo = new(MockLessonRepository)
	suite.mockLedgerSvc = new(MockLedgerService)
	suite.service = services.NewReconcileService(suite.mockAccountRepo, suite.mockLedgerRepo, suite.mockLessonRepo, suite.mockLedgerSvc)
	suite.actorID = uuid.NewString()
}

func (suite *ReconcileServiceTestSuite) TestReconcileAll_BackfillsAndCorrects() {
	ctx := context.Background()
	lessonID := uuid.NewString()
	studentID := uuid.NewString()
	unbilled := domain.Enrollment{
		EnrollmentID: uuid.NewString(),
		LessonID:     lessonID,
		StudentID:    studentID,
		Cost:         decimal.NewFromInt(1000),
		Status:       domain.EnrollmentAttended,
	}
	accounts := []domain.Account{
		{AccountID: studentID, Role: domain.RoleStudent},
		{AccountID: uuid.NewString(), Role: domain.RoleTeacher},
	}

	suite.mockLedgerRepo.On("FindUnbilledAttendances", ctx).Return([]domain.Enrollment{unbilled}, nil).Once()
	suite.mockLessonRepo.On("FindLessonByID", ctx, lessonID).
		Return(&domain.Lesson{LessonID: lessonID, Status: domain.LessonCompleted}, nil).Once()
	suite.mockLedgerSvc.On("Post", ctx, mock.MatchedBy(func(req dto.PostTransactionRequest) bool {
		return req.Kind == string(domain.KindExpense) &&
			req.AccountID == studentID &&
			req.LessonID != nil && *req.LessonID == lessonID &&
			req.Amount.Equal(decimal.NewFromInt(1000))
	}), suite.actorID).Return(&domain.Transaction{TransactionID: uuid.NewString()}, nil).Once()

	suite.mockAccountRepo.On("ListAccounts", ctx, (*domain.AccountRole)(nil)).Return(accounts, nil).Once()
	suite.mockLedgerSvc.On("ReconcileOne", ctx, accounts[0].AccountID, suite.actorID).
		Return(&dto.ReconcileResult{
			AccountID:    accounts[0].AccountID,
			Corrected:    true,
			BalanceDrift: decimal.NewFromInt(-1000),
		}, nil).Once()
	suite.mockLedgerSvc.On("ReconcileOne", ctx, accounts[1].AccountID, suite.actorID).
		Return(&dto.ReconcileResult{AccountID: accounts[1].AccountID}, nil).Once()

	summary, err := suite.service.ReconcileAll(ctx, suite.actorID)

	suite.Require().NoError(err)
	suite.Equal(2, summary.AccountsChecked)
	suite.Equal(1, summary.MismatchesFound)
	suite.Equal(1, summary.MismatchesCorrected)
	suite.Equal(1, summary.ExpensesBackfilled)
	suite.mockLedgerSvc.AssertExpectations(suite.T())
}

func (suite *ReconcileServiceTestSuite) TestReconcileAll_SkipsNonCompletedLessons() {
	ctx := context.Background()
	scheduledLessonID := uuid.NewString()
	cancelledLessonID := uuid.NewString()
	unbilled := []domain.Enrollment{
		{
			EnrollmentID: uuid.NewString(),
			LessonID:     scheduledLessonID,
			StudentID:    uuid.NewString(),
			Cost:         decimal.NewFromInt(1000),
			Status:       domain.EnrollmentAttended,
		},
		{
			EnrollmentID: uuid.NewString(),
			LessonID:     cancelledLessonID,
			StudentID:    uuid.NewString(),
			Cost:         decimal.NewFromInt(1000),
			Status:       domain.EnrollmentAttended,
		},
	}

	suite.mockLedgerRepo.On("FindUnbilledAttendances", ctx).Return(unbilled, nil).Once()
	suite.mockLessonRepo.On("FindLessonByID", ctx, scheduledLessonID).
		Return(&domain.Lesson{LessonID: scheduledLessonID, Status: domain.LessonScheduled}, nil).Once()
	suite.mockLessonRepo.On("FindLessonByID", ctx, cancelledLessonID).
		Return(&domain.Lesson{LessonID: cancelledLessonID, Status: domain.LessonCancelled}, nil).Once()
	suite.mockAccountRepo.On("ListAccounts", ctx, (*domain.AccountRole)(nil)).Return([]domain.Account{}, nil).Once()

	summary, err := suite.service.ReconcileAll(ctx, suite.actorID)

	suite.Require().NoError(err)
	suite.Zero(summary.ExpensesBackfilled)
	suite.mockLedgerSvc.AssertNotCalled(suite.T(), "Post", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ReconcileServiceTestSuite) TestReconcileAll_CleanRun() {
	ctx := context.Background()
	accounts := []domain.Account{{AccountID: uuid.NewString()}}

	suite.mockLedgerRepo.On("FindUnbilledAttendances", ctx).Return([]domain.Enrollment{}, nil).Once()
	suite.mockAccountRepo.On("ListAccounts", ctx, (*domain.AccountRole)(nil)).Return(accounts, nil).Once()
	suite.mockLedgerSvc.On("ReconcileOne", ctx, accounts[0].AccountID, suite.actorID).
		Return(&dto.ReconcileResult{AccountID: accounts[0].AccountID}, nil).Once()

	summary, err := suite.service.ReconcileAll(ctx, suite.actorID)

	suite.Require().NoError(err)
	suite.Equal(1, summary.AccountsChecked)
	suite.Zero(summary.MismatchesFound)
	suite.Zero(summary.MismatchesCorrected)
	suite.Zero(summary.ExpensesBackfilled)
}

func (suite *ReconcileServiceTestSuite) TestReconcileAccount_Delegates() {
	ctx := context.Background()
	accountID := uuid.NewString()
	expected := &dto.ReconcileResult{AccountID: accountID}

	suite.mockLedgerSvc.On("ReconcileOne", ctx, accountID, suite.actorID).Return(expected, nil).Once()

	result, err := suite.service.ReconcileAccount(ctx, accountID, suite.actorID)

	suite.Require().NoError(err)
	suite.Equal(expected, result)
}

func TestReconcileService(t *testing.T) {
	suite.Run(t, new(ReconcileServiceTestSuite))
}
