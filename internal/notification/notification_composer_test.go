package notification

import (
	"testing"

	"github.com/eman-cickusic/leave-management/internal/events"

	"github.com/stretchr/testify/assert"
)

func requestEvent() events.LeaveRequestEvent {
	return events.LeaveRequestEvent{
		EmployeeName:  "Mira Chen",
		EmployeeEmail: "mira@example.com",
		LeaveTypeCode: "VAC",
		LeaveTypeName: "Vacation",
		StartDate:     "2026-09-07",
		EndDate:       "2026-09-09",
		TotalDays:     3,
	}
}

func TestComposeRequestEmail(t *testing.T) {
	t.Run("submitted", func(t *testing.T) {
		email, ok := ComposeRequestEmail(events.LeaveRequestSubmittedTopic, requestEvent())

		assert.True(t, ok)
		assert.Equal(t, "mira@example.com", email.To)
		assert.Equal(t, "Leave request submitted: Vacation", email.Subject)
		assert.Equal(t,
			"Hi Mira Chen,\n\nYou submitted a request for Vacation from 2026-09-07 to 2026-09-09 (3 day(s)).\nYour manager will review it shortly.",
			email.Body,
		)
	})

	t.Run("approved", func(t *testing.T) {
		email, ok := ComposeRequestEmail(events.LeaveRequestApprovedTopic, requestEvent())

		assert.True(t, ok)
		assert.Equal(t, "Leave approved: Vacation", email.Subject)
		assert.Contains(t, email.Body, "was approved.\nEnjoy your time off!")
	})

	t.Run("rejected with manager comment", func(t *testing.T) {
		ev := requestEvent()
		ev.ManagerComment = "Project deadline that week."

		email, ok := ComposeRequestEmail(events.LeaveRequestRejectedTopic, ev)

		assert.True(t, ok)
		assert.Equal(t, "Leave decision: Vacation request declined", email.Subject)
		assert.Contains(t, email.Body, "Manager notes: Project deadline that week.")
	})

	t.Run("rejected without comment falls back", func(t *testing.T) {
		email, ok := ComposeRequestEmail(events.LeaveRequestRejectedTopic, requestEvent())

		assert.True(t, ok)
		assert.Contains(t, email.Body, "Manager notes: No comment provided.")
	})

	t.Run("upcoming reminder", func(t *testing.T) {
		email, ok := ComposeRequestEmail(events.LeaveRequestUpcomingTopic, requestEvent())

		assert.True(t, ok)
		assert.Equal(t, "Reminder: Upcoming Vacation leave", email.Subject)
		assert.Contains(t, email.Body, "starts on 2026-09-07 and ends on 2026-09-09")
	})

	t.Run("no recipient", func(t *testing.T) {
		ev := requestEvent()
		ev.EmployeeEmail = ""

		_, ok := ComposeRequestEmail(events.LeaveRequestSubmittedTopic, ev)

		assert.False(t, ok)
	})

	t.Run("unknown topic", func(t *testing.T) {
		_, ok := ComposeRequestEmail("leave.something.else.v1", requestEvent())

		assert.False(t, ok)
	})
}

func TestComposeApprovalEmail(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		email, ok := ComposeApprovalEmail(events.LeaveApprovalEvent{
			EmployeeName:  "Mira Chen",
			ReviewerName:  "Lee Park",
			ReviewerEmail: "lee@example.com",
			LeaveTypeCode: "VAC",
			LeaveTypeName: "Vacation",
			StartDate:     "2026-09-07",
			EndDate:       "2026-09-09",
			TotalDays:     3,
		})

		assert.True(t, ok)
		assert.Equal(t, "lee@example.com", email.To)
		assert.Equal(t, "Approval needed: Mira Chen VAC", email.Subject)
		assert.Equal(t,
			"Hi Lee Park,\n\nMira Chen requested 3 day(s) of Vacation leave (2026-09-07 to 2026-09-09).\nPlease review the request in the leave management portal.",
			email.Body,
		)
	})

	t.Run("no reviewer email", func(t *testing.T) {
		_, ok := ComposeApprovalEmail(events.LeaveApprovalEvent{EmployeeName: "Mira Chen"})

		assert.False(t, ok)
	})
}
