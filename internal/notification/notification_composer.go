package notification

import (
	"fmt"

	"github.com/eman-cickusic/leave-management/internal/events"
)

// Email is a composed outbound message.
type Email struct {
	To      string
	Subject string
	Body    string
}

// ComposeRequestEmail renders the employee-facing message for a request
// lifecycle event. ok is false when the event carries no address or the
// topic is not a lifecycle topic.
func ComposeRequestEmail(topic string, ev events.LeaveRequestEvent) (Email, bool) {
	if ev.EmployeeEmail == "" {
		return Email{}, false
	}

	switch topic {
	case events.LeaveRequestSubmittedTopic:
		return Email{
			To:      ev.EmployeeEmail,
			Subject: fmt.Sprintf("Leave request submitted: %s", ev.LeaveTypeName),
			Body: fmt.Sprintf(
				"Hi %s,\n\nYou submitted a request for %s from %s to %s (%d day(s)).\nYour manager will review it shortly.",
				ev.EmployeeName, ev.LeaveTypeName, ev.StartDate, ev.EndDate, ev.TotalDays,
			),
		}, true

	case events.LeaveRequestApprovedTopic:
		return Email{
			To:      ev.EmployeeEmail,
			Subject: fmt.Sprintf("Leave approved: %s", ev.LeaveTypeName),
			Body: fmt.Sprintf(
				"Hi %s,\n\nYour %s request for %d day(s) (%s to %s) was approved.\nEnjoy your time off!",
				ev.EmployeeName, ev.LeaveTypeName, ev.TotalDays, ev.StartDate, ev.EndDate,
			),
		}, true

	case events.LeaveRequestRejectedTopic:
		comment := ev.ManagerComment
		if comment == "" {
			comment = "No comment provided."
		}
		return Email{
			To:      ev.EmployeeEmail,
			Subject: fmt.Sprintf("Leave decision: %s request declined", ev.LeaveTypeName),
			Body: fmt.Sprintf(
				"Hi %s,\n\nYour %s request for %d day(s) (%s to %s) was rejected.\nManager notes: %s",
				ev.EmployeeName, ev.LeaveTypeName, ev.TotalDays, ev.StartDate, ev.EndDate, comment,
			),
		}, true

	case events.LeaveRequestUpcomingTopic:
		return Email{
			To:      ev.EmployeeEmail,
			Subject: fmt.Sprintf("Reminder: Upcoming %s leave", ev.LeaveTypeName),
			Body: fmt.Sprintf(
				"Hi %s,\n\nThis is a reminder that your %s leave starts on %s and ends on %s.\nPlease ensure your tasks are handed over before you are away.",
				ev.EmployeeName, ev.LeaveTypeName, ev.StartDate, ev.EndDate,
			),
		}, true
	}

	return Email{}, false
}

// ComposeApprovalEmail renders the reviewer-facing nudge for a pending
// approval step.
func ComposeApprovalEmail(ev events.LeaveApprovalEvent) (Email, bool) {
	if ev.ReviewerEmail == "" {
		return Email{}, false
	}

	return Email{
		To:      ev.ReviewerEmail,
		Subject: fmt.Sprintf("Approval needed: %s %s", ev.EmployeeName, ev.LeaveTypeCode),
		Body: fmt.Sprintf(
			"Hi %s,\n\n%s requested %d day(s) of %s leave (%s to %s).\nPlease review the request in the leave management portal.",
			ev.ReviewerName, ev.EmployeeName, ev.TotalDays, ev.LeaveTypeName, ev.StartDate, ev.EndDate,
		),
	}, true
}
