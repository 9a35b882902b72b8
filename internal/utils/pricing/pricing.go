package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/plusprogress/schoolcore/internal/core/domain"
)

var hundred = decimal.NewFromInt(100)

// defaultIndividualShare is the teacher cut applied when an individual-priced
// enrollment carries no explicit share.
var defaultIndividualShare = decimal.NewFromFloat(0.7)

// PriceEnrollment derives (cost, teacherShare) for one enrollment from the
// lesson pricing fields. Explicit values on the enrollment always win; zero
// values are treated as unset. headcount is the number of enrollments on the
// lesson and must be at least 1.
//
// fixed: base cost split evenly across enrollments.
// per_student: base cost charged verbatim to each enrollment.
// individual: the caller must supply the cost; the teacher share defaults to
// 70% of it.
//
// The discount percentage is applied to the derived cost, never to the
// teacher share.
func PriceEnrollment(lesson domain.Lesson, enrollment domain.Enrollment, headcount int) (decimal.Decimal, decimal.Decimal, error) {
	if headcount < 1 {
		return decimal.Zero, decimal.Zero, fmt.Errorf("enrollment count must be at least 1, got %d", headcount)
	}
	heads := decimal.NewFromInt(int64(headcount))

	cost := enrollment.Cost
	if cost.IsZero() {
		switch lesson.PriceType {
		case domain.PriceFixed:
			cost = lesson.BaseCost.DivRound(heads, 2)
		case domain.PricePerStudent:
			cost = lesson.BaseCost
		case domain.PriceIndividual:
			return decimal.Zero, decimal.Zero, fmt.Errorf("individual pricing requires an explicit cost for student %s", enrollment.StudentID)
		default:
			return decimal.Zero, decimal.Zero, fmt.Errorf("unknown price type %q on lesson %s", lesson.PriceType, lesson.LessonID)
		}
	}

	if enrollment.DiscountPct.IsPositive() {
		cost = cost.Sub(cost.Mul(enrollment.DiscountPct).DivRound(hundred, 2))
	}

	share := enrollment.TeacherShare
	if share.IsZero() {
		if lesson.PriceType == domain.PriceIndividual {
			share = cost.Mul(defaultIndividualShare).Round(2)
		} else {
			share = lesson.BaseTeacherPayment.DivRound(heads, 2)
		}
	}

	return cost, share, nil
}
