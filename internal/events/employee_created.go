package events

import "time"

const EmployeeCreatedTopic = "leave.employee.lifecycle.v1"

type EmployeeCreatedEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id,omitempty"`
	EmployeeID string    `json:"employee_id"`
	Email      string    `json:"email"`
	FullName   string    `json:"full_name"`
	OccurredAt time.Time `json:"occurred_at"`
}
