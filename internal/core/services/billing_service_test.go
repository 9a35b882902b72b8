package services_test

import (
	"context"
	"testing"
	"time"

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

type BillingServiceTestSuite struct {
	suite.Suite
	mockLessonRepo  *MockLessonRepository
	mockAccountRepo *MockAccountRepository
	mockLedgerSvc   *MockLedgerService
	mockNotifier    *MockNotifier
	service         portssvc.BillingSvcFacade

	actorID    string
	teacher    domain.Account
	student    domain.Account
	lesson     domain.Lesson
	enrollment domain.Enrollment
}

func (suite *BillingServiceTestSuite) SetupTest() {
	suite.mockLessonRepo = new(MockLessonRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockLedgerSvc = new(MockLedgerService)
	suite.mockNotifier = new(MockNotifier)
	suite.service = services.NewBillingService(suite.mockLessonRepo, suite.mockAccountRepo, suite.mockLedgerSvc, suite.mockNotifier)

	suite.actorID = uuid.NewString()
	suite.teacher = domain.Account{
		AccountID: uuid.NewString(),
		Name:      "Teacher",
		Role:      domain.RoleTeacher,
	}
	// Student who topped up 2000 ahead of the lesson.
	suite.student = domain.Account{
		AccountID: uuid.NewString(),
		Name:      "Student",
		Role:      domain.RoleStudent,
		Balance:   decimal.NewFromInt(2000),
	}
	suite.lesson = domain.Lesson{
		LessonID:           uuid.NewString(),
		TeacherID:          suite.teacher.AccountID,
		SubjectID:          uuid.NewString(),
		Date:               time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC),
		StartTime:          "10:00",
		EndTime:            "11:00",
		PriceType:          domain.PricePerStudent,
		BaseCost:           decimal.NewFromInt(1000),
		BaseTeacherPayment: decimal.NewFromInt(700),
		Status:             domain.LessonScheduled,
	}
	suite.enrollment = domain.Enrollment{
		EnrollmentID: uuid.NewString(),
		LessonID:     suite.lesson.LessonID,
		StudentID:    suite.student.AccountID,
		Cost:         decimal.NewFromInt(1000),
		TeacherShare: decimal.NewFromInt(700),
		Status:       domain.EnrollmentRegistered,
	}
}

func (suite *BillingServiceTestSuite) TestCompleteLesson_BillsAttendedStudent() {
	ctx := context.Background()
	lessonID := suite.lesson.LessonID

	suite.mockLessonRepo.On("FindLessonByID", ctx, lessonID).Return(&suite.lesson, nil).Once()
	suite.mockLessonRepo.On("FindEnrollmentsByLessonID", ctx, lessonID).
		Return([]domain.Enrollment{suite.enrollment}, nil).Once()
	suite.mockLessonRepo.On("UpdateEnrollmentStatus", ctx, suite.enrollment.EnrollmentID, domain.EnrollmentAttended, suite.actorID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()
	suite.mockLessonRepo.On("UpdateLessonStatus", ctx, lessonID, domain.LessonScheduled, domain.LessonCompleted, suite.actorID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, []string{suite.student.AccountID}).
		Return(map[string]domain.Account{suite.student.AccountID: suite.student}, nil).Once()

	expense := &domain.Transaction{TransactionID: uuid.NewString(), Kind: domain.KindExpense}
	suite.mockLedgerSvc.On("Post", ctx, mock.MatchedBy(func(req dto.PostTransactionRequest) bool {
		return req.Kind == string(domain.KindExpense) &&
			req.AccountID == suite.student.AccountID &&
			req.Amount.Equal(decimal.NewFromInt(1000))
	}), suite.actorID).Return(expense, nil).Once()

	payout := &domain.Transaction{TransactionID: uuid.NewString(), Kind: domain.KindTeacherPayout}
	suite.mockLedgerSvc.On("Post", ctx, mock.MatchedBy(func(req dto.PostTransactionRequest) bool {
		return req.Kind == string(domain.KindTeacherPayout) &&
			req.AccountID == suite.teacher.AccountID &&
			req.Amount.Equal(decimal.NewFromInt(700))
	}), suite.actorID).Return(payout, nil).Once()

	suite.mockNotifier.On("Notify", ctx, mock.MatchedBy(func(n domain.Notification) bool {
		return n.Kind == domain.NotifyLessonCompleted && n.AccountID == suite.teacher.AccountID
	})).Return().Once()

	result, err := suite.service.CompleteLesson(ctx, lessonID, dto.CompleteLessonRequest{
		AttendedStudentIDs: []string{suite.student.AccountID},
	}, suite.actorID)

	suite.Require().NoError(err)
	suite.False(result.AlreadyCompleted)
	suite.Equal([]string{suite.student.AccountID}, result.BilledStudents)
	suite.Empty(result.SoftDebtStudents)
	suite.True(result.TeacherPayout.Equal(decimal.NewFromInt(700)))
	suite.mockLessonRepo.AssertExpectations(suite.T())
	suite.mockLedgerSvc.AssertExpectations(suite.T())
	suite.mockNotifier.AssertExpectations(suite.T())
}

func (suite *BillingServiceTestSuite) TestCompleteLesson_ExactBalanceIsBilled() {
	ctx := context.Background()
	lessonID := suite.lesson.LessonID
	suite.student.Balance = decimal.NewFromInt(1000) // exactly the cost

	suite.mockLessonRepo.On("FindLessonByID", ctx, lessonID).Return(&suite.lesson, nil).Once()
	suite.mockLessonRepo.On("FindEnrollmentsByLessonID", ctx, lessonID).
		Return([]domain.Enrollment{suite.enrollment}, nil).Once()
	suite.mockLessonRepo.On("UpdateEnrollmentStatus", ctx, suite.enrollment.EnrollmentID, domain.EnrollmentAttended, suite.actorID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()
	suite.mockLessonRepo.On("UpdateLessonStatus", ctx, lessonID, domain.LessonScheduled, domain.LessonCompleted, suite.actorID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, []string{suite.student.AccountID}).
		Return(map[string]domain.Account{suite.student.AccountID: suite.student}, nil).Once()
	suite.mockLedgerSvc.On("Post", ctx, mock.AnythingOfType("dto.PostTransactionRequest"), suite.actorID).
		Return(&domain.Transaction{TransactionID: uuid.NewString()}, nil).Twice()
	suite.mockNotifier.On("Notify", ctx, mock.AnythingOfType("domain.Notification")).Return()

	result, err := suite.service.CompleteLesson(ctx, lessonID, dto.CompleteLessonRequest{
		AttendedStudentIDs: []string{suite.student.AccountID},
	}, suite.actorID)

	suite.Require().NoError(err)
	suite.Equal([]string{suite.student.AccountID}, result.BilledStudents)
	suite.Empty(result.SoftDebtStudents)
}

func (suite *BillingServiceTestSuite) TestCompleteLesson_SoftDebtStillPaysTeacher() {
	ctx := context.Background()
	lessonID := suite.lesson.LessonID
	suite.student.Balance = decimal.NewFromInt(999) // one short of the cost

	suite.mockLessonRepo.On("FindLessonByID", ctx, lessonID).Return(&suite.lesson, nil).Once()
	suite.mockLessonRepo.On("FindEnrollmentsByLessonID", ctx, lessonID).
		Return([]domain.Enrollment{suite.enrollment}, nil).Once()
	suite.mockLessonRepo.On("UpdateEnrollmentStatus", ctx, suite.enrollment.EnrollmentID, domain.EnrollmentAttended, suite.actorID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()
	suite.mockLessonRepo.On("UpdateLessonStatus", ctx, lessonID, domain.LessonScheduled, domain.LessonCompleted, suite.actorID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, []string{suite.student.AccountID}).
		Return(map[string]domain.Account{suite.student.AccountID: suite.student}, nil).Once()

	// Only the teacher payout is posted.
	payout := &domain.Transaction{TransactionID: uuid.NewString(), Kind: domain.KindTeacherPayout}
	suite.mockLedgerSvc.On("Post", ctx, mock.MatchedBy(func(req dto.PostTransactionRequest) bool {
		return req.Kind == string(domain.KindTeacherPayout) && req.Amount.Equal(decimal.NewFromInt(700))
	}), suite.actorID).Return(payout, nil).Once()

	suite.mockNotifier.On("Notify", ctx, mock.MatchedBy(func(n domain.Notification) bool {
		return n.Kind == domain.NotifyInsufficientFunds && n.AccountID == suite.student.AccountID
	})).Return().Once()
	suite.mockNotifier.On("Notify", ctx, mock.MatchedBy(func(n domain.Notification) bool {
		return n.Kind == domain.NotifyLessonCompleted
	})).Return().Once()

	result, err := suite.service.CompleteLesson(ctx, lessonID, dto.CompleteLessonRequest{
		AttendedStudentIDs: []string{suite.student.AccountID},
	}, suite.actorID)

	suite.Require().NoError(err)
	suite.Empty(result.BilledStudents)
	suite.Equal([]string{suite.student.AccountID}, result.SoftDebtStudents)
	suite.True(result.TeacherPayout.Equal(decimal.NewFromInt(700)))
	suite.mockLedgerSvc.AssertExpectations(suite.T())
	suite.mockNotifier.AssertExpectations(suite.T())
}

func (suite *BillingServiceTestSuite) TestCompleteLesson_AlreadyCompletedIsReadOnly() {
	ctx := context.Background()
	suite.lesson.Status = domain.LessonCompleted
	suite.enrollment.Status = domain.EnrollmentAttended

	suite.mockLessonRepo.On("FindLessonByID", ctx, suite.lesson.LessonID).Return(&suite.lesson, nil).Once()
	suite.mockLessonRepo.On("FindEnrollmentsByLessonID", ctx, suite.lesson.LessonID).
		Return([]domain.Enrollment{suite.enrollment}, nil).Once()
	suite.mockLedgerSvc.On("HasExpenseFor", ctx, suite.student.AccountID, suite.lesson.LessonID).Return(true, nil).Once()

	result, err := suite.service.CompleteLesson(ctx, suite.lesson.LessonID, dto.CompleteLessonRequest{}, suite.actorID)

	suite.Require().NoError(err)
	suite.True(result.AlreadyCompleted)
	suite.Equal([]string{suite.student.AccountID}, result.BilledStudents)
	suite.True(result.TeacherPayout.Equal(decimal.NewFromInt(700)))
	suite.mockLedgerSvc.AssertNotCalled(suite.T(), "Post", mock.Anything, mock.Anything, mock.Anything)
	suite.mockLessonRepo.AssertNotCalled(suite.T(), "UpdateLessonStatus",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *BillingServiceTestSuite) TestCompleteLesson_LostRaceReturnsExistingOutcome() {
	ctx := context.Background()
	lessonID := suite.lesson.LessonID
	completed := suite.lesson
	completed.Status = domain.LessonCompleted
	attended := suite.enrollment
	attended.Status = domain.EnrollmentAttended

	// First read sees scheduled, but a concurrent caller wins the status
	// transition; the loser must hand back the existing outcome, not a 404.
	suite.mockLessonRepo.On("FindLessonByID", ctx, lessonID).Return(&suite.lesson, nil).Once()
	suite.mockLessonRepo.On("FindEnrollmentsByLessonID", ctx, lessonID).
		Return([]domain.Enrollment{suite.enrollment}, nil).Once()
	suite.mockLessonRepo.On("UpdateEnrollmentStatus", ctx, suite.enrollment.EnrollmentID, domain.EnrollmentAttended, suite.actorID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()
	suite.mockLessonRepo.On("UpdateLessonStatus", ctx, lessonID, domain.LessonScheduled, domain.LessonCompleted, suite.actorID, mock.AnythingOfType("time.Time")).
		Return(apperrors.ErrDuplicate).Once()
	suite.mockLessonRepo.On("FindLessonByID", ctx, lessonID).Return(&completed, nil).Once()
	suite.mockLessonRepo.On("FindEnrollmentsByLessonID", ctx, lessonID).
		Return([]domain.Enrollment{attended}, nil).Once()
	suite.mockLedgerSvc.On("HasExpenseFor", ctx, suite.student.AccountID, lessonID).Return(true, nil).Once()

	result, err := suite.service.CompleteLesson(ctx, lessonID, dto.CompleteLessonRequest{
		AttendedStudentIDs: []string{suite.student.AccountID},
	}, suite.actorID)

	suite.Require().NoError(err)
	suite.True(result.AlreadyCompleted)
	suite.Equal([]string{suite.student.AccountID}, result.BilledStudents)
	suite.mockLedgerSvc.AssertNotCalled(suite.T(), "Post", mock.Anything, mock.Anything, mock.Anything)
	suite.mockLessonRepo.AssertExpectations(suite.T())
}

func (suite *BillingServiceTestSuite) TestCompleteLesson_CancelledIsRejected() {
	ctx := context.Background()
	suite.lesson.Status = domain.LessonCancelled

	suite.mockLessonRepo.On("FindLessonByID", ctx, suite.lesson.LessonID).Return(&suite.lesson, nil).Once()

	_, err := suite.service.CompleteLesson(ctx, suite.lesson.LessonID, dto.CompleteLessonRequest{}, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *BillingServiceTestSuite) TestCancelLesson_AfterCompleteIsRejected() {
	ctx := context.Background()
	suite.lesson.Status = domain.LessonCompleted

	suite.mockLessonRepo.On("FindLessonByID", ctx, suite.lesson.LessonID).Return(&suite.lesson, nil).Once()

	err := suite.service.CancelLesson(ctx, suite.lesson.LessonID, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockLessonRepo.AssertNotCalled(suite.T(), "UpdateLessonStatus",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *BillingServiceTestSuite) TestBookLesson_PricesFixedSplit() {
	ctx := context.Background()
	studentA := uuid.NewString()
	studentB := uuid.NewString()
	req := dto.BookLessonRequest{
		TeacherID:          suite.teacher.AccountID,
		SubjectID:          uuid.NewString(),
		Date:               time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		StartTime:          "09:00",
		EndTime:            "10:00",
		PriceType:          string(domain.PriceFixed),
		BaseCost:           decimal.NewFromInt(1000),
		BaseTeacherPayment: decimal.NewFromInt(700),
		Enrollments: []dto.BookEnrollmentRequest{
			{StudentID: studentA},
			{StudentID: studentB},
		},
	}

	var created []domain.Enrollment
	suite.mockLessonRepo.On("CreateLessonWithEnrollments", ctx, mock.AnythingOfType("domain.Lesson"), mock.AnythingOfType("[]domain.Enrollment")).
		Run(func(args mock.Arguments) {
			created = args.Get(2).([]domain.Enrollment)
		}).Return(nil).Once()
	suite.mockNotifier.On("Notify", ctx, mock.MatchedBy(func(n domain.Notification) bool {
		return n.Kind == domain.NotifyEnrollmentCreated
	})).Return().Twice()

	lesson, err := suite.service.BookLesson(ctx, req, suite.actorID)

	suite.Require().NoError(err)
	suite.Equal(domain.LessonScheduled, lesson.Status)
	suite.Require().Len(created, 2)
	for _, e := range created {
		suite.True(e.Cost.Equal(decimal.NewFromInt(500)), "fixed price splits evenly")
		suite.True(e.TeacherShare.Equal(decimal.NewFromInt(350)))
		suite.Equal(domain.EnrollmentRegistered, e.Status)
	}
	suite.mockLessonRepo.AssertExpectations(suite.T())
}

func (suite *BillingServiceTestSuite) TestBookLesson_SlotConflict() {
	ctx := context.Background()
	req := dto.BookLessonRequest{
		TeacherID:          suite.teacher.AccountID,
		SubjectID:          uuid.NewString(),
		Date:               time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		StartTime:          "09:00",
		EndTime:            "10:00",
		PriceType:          string(domain.PricePerStudent),
		BaseCost:           decimal.NewFromInt(1000),
		BaseTeacherPayment: decimal.NewFromInt(700),
		Enrollments:        []dto.BookEnrollmentRequest{{StudentID: uuid.NewString()}},
	}

	suite.mockLessonRepo.On("CreateLessonWithEnrollments", ctx, mock.AnythingOfType("domain.Lesson"), mock.AnythingOfType("[]domain.Enrollment")).
		Return(apperrors.ErrDuplicate).Once()

	_, err := suite.service.BookLesson(ctx, req, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
}

func (suite *BillingServiceTestSuite) TestRescheduleLesson_PreservesPricing() {
	ctx := context.Background()
	suite.enrollment.Status = domain.EnrollmentAttended // status resets on the new lesson

	suite.mockLessonRepo.On("FindLessonByID", ctx, suite.lesson.LessonID).Return(&suite.lesson, nil).Once()
	suite.mockLessonRepo.On("FindEnrollmentsByLessonID", ctx, suite.lesson.LessonID).
		Return([]domain.Enrollment{suite.enrollment}, nil).Once()

	var created []domain.Enrollment
	var createdLesson domain.Lesson
	suite.mockLessonRepo.On("CreateLessonWithEnrollments", ctx, mock.AnythingOfType("domain.Lesson"), mock.AnythingOfType("[]domain.Enrollment")).
		Run(func(args mock.Arguments) {
			createdLesson = args.Get(1).(domain.Lesson)
			created = args.Get(2).([]domain.Enrollment)
		}).Return(nil).Once()
	suite.mockLessonRepo.On("UpdateLessonStatus", ctx, suite.lesson.LessonID, domain.LessonScheduled, domain.LessonRescheduled, suite.actorID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	req := dto.RescheduleLessonRequest{
		Date:      time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC),
		StartTime: "12:00",
		EndTime:   "13:00",
	}
	replacement, err := suite.service.RescheduleLesson(ctx, suite.lesson.LessonID, req, suite.actorID)

	suite.Require().NoError(err)
	suite.NotEqual(suite.lesson.LessonID, replacement.LessonID)
	suite.Equal("12:00", replacement.StartTime)
	suite.True(createdLesson.BaseCost.Equal(suite.lesson.BaseCost))
	suite.Require().Len(created, 1)
	suite.True(created[0].Cost.Equal(suite.enrollment.Cost))
	suite.True(created[0].TeacherShare.Equal(suite.enrollment.TeacherShare))
	suite.Equal(domain.EnrollmentRegistered, created[0].Status)
	suite.mockLessonRepo.AssertExpectations(suite.T())
}

func (suite *BillingServiceTestSuite) TestSendLessonReminders() {
	ctx := context.Background()
	now := time.Date(2026, 2, 2, 8, 0, 0, 0, time.UTC)
	window := 24 * time.Hour

	suite.mockLessonRepo.On("FindLessonsStartingBetween", ctx, now, now.Add(window)).
		Return([]domain.Lesson{suite.lesson}, nil).Once()
	suite.mockLessonRepo.On("FindEnrollmentsByLessonID", ctx, suite.lesson.LessonID).
		Return([]domain.Enrollment{suite.enrollment}, nil).Once()

	// One reminder for the student, one for the teacher.
	suite.mockNotifier.On("Notify", ctx, mock.MatchedBy(func(n domain.Notification) bool {
		return n.Kind == domain.NotifyLessonReminder
	})).Return().Twice()

	count, err := suite.service.SendLessonReminders(ctx, now, window)

	suite.Require().NoError(err)
	suite.Equal(1, count)
	suite.mockNotifier.AssertExpectations(suite.T())
}

func TestBillingService(t *testing.T) {
	suite.Run(t, new(BillingServiceTestSuite))
}
