package events

import "time"

const (
	LeaveRequestSubmittedTopic = "leave.request.submitted.v1"
	LeaveApprovalPendingTopic  = "leave.approval.pending.v1"
	LeaveRequestApprovedTopic  = "leave.request.approved.v1"
	LeaveRequestRejectedTopic  = "leave.request.rejected.v1"
	LeaveRequestUpcomingTopic  = "leave.request.upcoming.v1"
)

// LeaveRequestEvent is the shared payload for request lifecycle topics.
// Employee and leave-type fields are denormalized so the notification
// consumer can compose emails without further lookups.
type LeaveRequestEvent struct {
	EventType      string    `json:"event_type"`
	RequestID      string    `json:"request_id"`
	EmployeeID     string    `json:"employee_id"`
	EmployeeName   string    `json:"employee_name"`
	EmployeeEmail  string    `json:"employee_email"`
	LeaveTypeCode  string    `json:"leave_type_code"`
	LeaveTypeName  string    `json:"leave_type_name"`
	StartDate      string    `json:"start_date"`
	EndDate        string    `json:"end_date"`
	TotalDays      int       `json:"total_days"`
	ManagerComment string    `json:"manager_comment,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// LeaveApprovalEvent notifies the next reviewer in the chain.
type LeaveApprovalEvent struct {
	EventType     string    `json:"event_type"`
	RequestID     string    `json:"request_id"`
	ApprovalID    string    `json:"approval_id"`
	Role          string    `json:"role"`
	Sequence      int       `json:"sequence"`
	ReviewerID    string    `json:"reviewer_id,omitempty"`
	ReviewerName  string    `json:"reviewer_name,omitempty"`
	ReviewerEmail string    `json:"reviewer_email,omitempty"`
	EmployeeName  string    `json:"employee_name"`
	LeaveTypeCode string    `json:"leave_type_code"`
	LeaveTypeName string    `json:"leave_type_name"`
	StartDate     string    `json:"start_date"`
	EndDate       string    `json:"end_date"`
	TotalDays     int       `json:"total_days"`
	OccurredAt    time.Time `json:"occurred_at"`
}
