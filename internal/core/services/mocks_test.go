package services_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/plusprogress/schoolcore/internal/core/domain"
	portsrepo "github.com/plusprogress/schoolcore/internal/core/ports/repositories"
	portssvc "github.com/plusprogress/schoolcore/internal/core/ports/services"
	"github.com/plusprogress/schoolcore/internal/dto"
)

// --- Mock AccountRepository ---

type MockAccountRepository struct {
	mock.Mock
}

var _ portsrepo.AccountRepositoryFacade = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, role *domain.AccountRole) ([]domain.Account, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountByIDForUpdate(ctx context.Context, tx pgx.Tx, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, tx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdateCachedBalance(ctx context.Context, accountID string, balance decimal.Decimal, wallet bool, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, accountID, balance, wallet, updatedBy, updatedAt)
	return args.Error(0)
}

// --- Mock LedgerRepository ---

type MockLedgerRepository struct {
	mock.Mock
}

var _ portsrepo.LedgerRepositoryFacade = (*MockLedgerRepository)(nil)

func (m *MockLedgerRepository) HasExpenseForLesson(ctx context.Context, accountID, lessonID string) (bool, error) {
	args := m.Called(ctx, accountID, lessonID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLedgerRepository) FindExpenseForLesson(ctx context.Context, accountID, lessonID string) (*domain.Transaction, error) {
	args := m.Called(ctx, accountID, lessonID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockLedgerRepository) RecomputeBalances(ctx context.Context, accountID string) (decimal.Decimal, decimal.Decimal, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(decimal.Decimal), args.Get(1).(decimal.Decimal), args.Error(2)
}

func (m *MockLedgerRepository) ListTransactionsByAccountID(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	args := m.Called(ctx, accountID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.Transaction), returnedNextToken, args.Error(2)
}

func (m *MockLedgerRepository) FindUnbilledAttendances(ctx context.Context) ([]domain.Enrollment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Enrollment), args.Error(1)
}

func (m *MockLedgerRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

// --- Mock LessonRepository ---

type MockLessonRepository struct {
	mock.Mock
}

var _ portsrepo.LessonRepositoryFacade = (*MockLessonRepository)(nil)

func (m *MockLessonRepository) FindLessonByID(ctx context.Context, lessonID string) (*domain.Lesson, error) {
	args := m.Called(ctx, lessonID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Lesson), args.Error(1)
}

func (m *MockLessonRepository) FindLessonsByTeacherAndRange(ctx context.Context, teacherID string, from, to time.Time) ([]domain.Lesson, error) {
	args := m.Called(ctx, teacherID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Lesson), args.Error(1)
}

func (m *MockLessonRepository) FindLessonsStartingBetween(ctx context.Context, from, to time.Time) ([]domain.Lesson, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Lesson), args.Error(1)
}

func (m *MockLessonRepository) CreateLessonWithEnrollments(ctx context.Context, lesson domain.Lesson, enrollments []domain.Enrollment) error {
	args := m.Called(ctx, lesson, enrollments)
	return args.Error(0)
}

func (m *MockLessonRepository) UpdateLessonStatus(ctx context.Context, lessonID string, from, to domain.LessonStatus, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, lessonID, from, to, updatedBy, updatedAt)
	return args.Error(0)
}

func (m *MockLessonRepository) MarkOverdueBefore(ctx context.Context, cutoff time.Time, updatedBy string) (int, error) {
	args := m.Called(ctx, cutoff, updatedBy)
	return args.Int(0), args.Error(1)
}

func (m *MockLessonRepository) FindEnrollmentsByLessonID(ctx context.Context, lessonID string) ([]domain.Enrollment, error) {
	args := m.Called(ctx, lessonID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Enrollment), args.Error(1)
}

func (m *MockLessonRepository) FindEnrollment(ctx context.Context, lessonID, studentID string) (*domain.Enrollment, error) {
	args := m.Called(ctx, lessonID, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Enrollment), args.Error(1)
}

func (m *MockLessonRepository) UpdateEnrollmentStatus(ctx context.Context, enrollmentID string, status domain.EnrollmentStatus, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, enrollmentID, status, updatedBy, updatedAt)
	return args.Error(0)
}

func (m *MockLessonRepository) UpdateEnrollmentPricing(ctx context.Context, enrollmentID string, enrollment domain.Enrollment) error {
	args := m.Called(ctx, enrollmentID, enrollment)
	return args.Error(0)
}

// --- Mock ScheduleTemplateRepository ---

type MockTemplateRepository struct {
	mock.Mock
}

var _ portsrepo.ScheduleTemplateRepositoryFacade = (*MockTemplateRepository)(nil)

func (m *MockTemplateRepository) FindTemplateByID(ctx context.Context, templateID string) (*domain.ScheduleTemplate, error) {
	args := m.Called(ctx, templateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ScheduleTemplate), args.Error(1)
}

func (m *MockTemplateRepository) ListActiveTemplates(ctx context.Context) ([]domain.ScheduleTemplate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ScheduleTemplate), args.Error(1)
}

func (m *MockTemplateRepository) SaveTemplate(ctx context.Context, template domain.ScheduleTemplate) error {
	args := m.Called(ctx, template)
	return args.Error(0)
}

func (m *MockTemplateRepository) DeactivateTemplate(ctx context.Context, templateID string, updatedBy string) error {
	args := m.Called(ctx, templateID, updatedBy)
	return args.Error(0)
}

// --- Mock LedgerService (as used by billing and reconcile) ---

type MockLedgerService struct {
	mock.Mock
}

var _ portssvc.LedgerSvcFacade = (*MockLedgerService)(nil)

func (m *MockLedgerService) Post(ctx context.Context, req dto.PostTransactionRequest, actorID string) (*domain.Transaction, error) {
	args := m.Called(ctx, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockLedgerService) HasExpenseFor(ctx context.Context, accountID, lessonID string) (bool, error) {
	args := m.Called(ctx, accountID, lessonID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLedgerService) Recompute(ctx context.Context, accountID string) (decimal.Decimal, decimal.Decimal, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(decimal.Decimal), args.Get(1).(decimal.Decimal), args.Error(2)
}

func (m *MockLedgerService) ListTransactions(ctx context.Context, accountID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	args := m.Called(ctx, accountID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListTransactionsResponse), args.Error(1)
}

func (m *MockLedgerService) ReconcileOne(ctx context.Context, accountID string, actorID string) (*dto.ReconcileResult, error) {
	args := m.Called(ctx, accountID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ReconcileResult), args.Error(1)
}

// --- Mock Notifier ---

type MockNotifier struct {
	mock.Mock
}

var _ portssvc.Notifier = (*MockNotifier)(nil)

func (m *MockNotifier) Notify(ctx context.Context, n domain.Notification) {
	m.Called(ctx, n)
}
