package trust

import "time"

const (
	SignalAppointmentCreated = "appointment_created"
	SignalContactSubmitted   = "contact_submitted"
)

// Signal is the at-least-once handoff from the booking/contact paths to the
// engine. Losing one only degrades abuse detection, so producers never block
// or fail on it.
type Signal struct {
	Kind string `json:"kind"`

	ClientID      uint      `json:"client_id,omitempty"`
	AppointmentID uint      `json:"appointment_id,omitempty"`
	ScheduledAt   time.Time `json:"scheduled_at,omitempty"`

	Email string `json:"email,omitempty"`

	OccurredAt time.Time `json:"occurred_at"`
}
