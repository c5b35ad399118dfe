package core

import "time"

// NotificationEvent identifies a status-affecting change on an applicant record.
type NotificationEvent string

const (
	EventVerified   NotificationEvent = "verified"
	EventUnverified NotificationEvent = "unverified"
	EventRejected   NotificationEvent = "rejected"
	EventUnrejected NotificationEvent = "unrejected"
)

type Notification struct {
	ApplicantID   string            `json:"applicant_id"`
	PortalID      string            `json:"portal_id"`
	ApplicantName string            `json:"applicant_name"`
	Email         string            `json:"email"`
	Event         NotificationEvent `json:"event"`
	OccurredAt    time.Time         `json:"occurred_at"` // UTC
}

// NotificationDispatcher is any service that can notify applicants of
// status-affecting changes. Dispatch is best-effort: a failed delivery is
// logged by the implementation and never unwinds the state change that
// triggered it.
type NotificationDispatcher interface {
	Dispatch(notifications ...Notification)
}
