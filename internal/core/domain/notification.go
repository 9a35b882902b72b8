package domain

import "time"

// NotificationKind classifies a fire-and-forget fact handed to the
// notification sink. Delivery (e-mail, chat) is the collaborator's concern.
type NotificationKind string

const (
	NotifyInsufficientFunds NotificationKind = "insufficient_funds"
	NotifyLessonReminder    NotificationKind = "lesson_reminder"
	NotifyLessonCompleted   NotificationKind = "lesson_completed"
	NotifyEnrollmentCreated NotificationKind = "enrollment_created"
)

// Notification is an outbound event for one account. The core never blocks on
// or retries its delivery.
type Notification struct {
	AccountID string            `json:"accountID"`
	Kind      NotificationKind  `json:"kind"`
	Payload   map[string]string `json:"payload"`
	CreatedAt time.Time         `json:"createdAt"`
}
