package notification

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/eman-cickusic/leave-management/internal/employee"
	"github.com/eman-cickusic/leave-management/internal/events"
	"github.com/eman-cickusic/leave-management/internal/leave"
	"github.com/eman-cickusic/leave-management/internal/leavetype"
	"github.com/eman-cickusic/leave-management/internal/messaging/kafka"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeOutbox struct {
	createFn func(ctx context.Context, event kafka.OutboxEvent) error
	created  []kafka.OutboxEvent
}

func (f *fakeOutbox) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }

func (f *fakeOutbox) Create(ctx context.Context, event kafka.OutboxEvent) error {
	if f.createFn != nil {
		return f.createFn(ctx, event)
	}
	f.created = append(f.created, event)
	return nil
}

func (f *fakeOutbox) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}
func (f *fakeOutbox) MarkSent(ctx context.Context, id string) error                  { return nil }
func (f *fakeOutbox) MarkFailed(ctx context.Context, id string, reason string) error { return nil }

type fakeEmployeeLookup struct {
	findByIDFn func(ctx context.Context, id string) (*employee.Employee, error)
}

func (f *fakeEmployeeLookup) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeTypeLookup struct {
	findByIDFn func(ctx context.Context, id string) (*leavetype.LeaveType, error)
}

func (f *fakeTypeLookup) FindByID(ctx context.Context, id string) (*leavetype.LeaveType, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func sampleRequest() *leave.LeaveRequest {
	return &leave.LeaveRequest{
		ID:          uuid.New(),
		EmployeeID:  uuid.New(),
		LeaveTypeID: uuid.New(),
		StartDate:   time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2026, 9, 9, 0, 0, 0, 0, time.UTC),
		Status:      leave.StatusInReview,
	}
}

func TestOutboxNotifier_RequestSubmitted(t *testing.T) {
	ctx := context.Background()

	t.Run("success - enqueues a denormalized event", func(t *testing.T) {
		req := sampleRequest()
		outbox := &fakeOutbox{}
		employees := &fakeEmployeeLookup{
			findByIDFn: func(ctx context.Context, id string) (*employee.Employee, error) {
				assert.Equal(t, req.EmployeeID.String(), id)
				return &employee.Employee{ID: req.EmployeeID, FullName: "Mira Chen", Email: "mira@example.com"}, nil
			},
		}
		types := &fakeTypeLookup{
			findByIDFn: func(ctx context.Context, id string) (*leavetype.LeaveType, error) {
				return &leavetype.LeaveType{Code: "VAC", Name: "Vacation"}, nil
			},
		}
		notifier := NewOutboxNotifier(outbox, employees, types, zap.NewNop())

		notifier.RequestSubmitted(ctx, req)

		if assert.Len(t, outbox.created, 1) {
			row := outbox.created[0]
			assert.Equal(t, events.LeaveRequestSubmittedTopic, row.Topic)
			assert.Equal(t, kafka.OutboxStatusPending, row.Status)
			assert.Equal(t, req.ID.String(), row.AggregateID)

			var payload events.LeaveRequestEvent
			assert.NoError(t, json.Unmarshal(row.Payload, &payload))
			assert.Equal(t, "Mira Chen", payload.EmployeeName)
			assert.Equal(t, "mira@example.com", payload.EmployeeEmail)
			assert.Equal(t, "Vacation", payload.LeaveTypeName)
			assert.Equal(t, "2026-09-07", payload.StartDate)
			assert.Equal(t, "2026-09-09", payload.EndDate)
			assert.Equal(t, 3, payload.TotalDays)
		}
	})

	t.Run("lookup failure still enqueues", func(t *testing.T) {
		outbox := &fakeOutbox{}
		notifier := NewOutboxNotifier(outbox, &fakeEmployeeLookup{}, &fakeTypeLookup{}, zap.NewNop())

		notifier.RequestSubmitted(ctx, sampleRequest())

		if assert.Len(t, outbox.created, 1) {
			var payload events.LeaveRequestEvent
			assert.NoError(t, json.Unmarshal(outbox.created[0].Payload, &payload))
			assert.Empty(t, payload.EmployeeEmail)
			assert.Equal(t, 3, payload.TotalDays)
		}
	})

	t.Run("outbox failure is swallowed", func(t *testing.T) {
		outbox := &fakeOutbox{
			createFn: func(ctx context.Context, event kafka.OutboxEvent) error {
				return assert.AnError
			},
		}
		notifier := NewOutboxNotifier(outbox, &fakeEmployeeLookup{}, &fakeTypeLookup{}, zap.NewNop())

		assert.NotPanics(t, func() {
			notifier.RequestSubmitted(ctx, sampleRequest())
		})
	})
}

func TestOutboxNotifier_NextApprover(t *testing.T) {
	ctx := context.Background()

	t.Run("success - resolves the reviewer", func(t *testing.T) {
		req := sampleRequest()
		reviewerID := uuid.New()
		approval := &leave.LeaveApproval{
			ID:         uuid.New(),
			RequestID:  req.ID,
			Role:       "LEAD",
			Sequence:   1,
			Status:     leave.StatusPending,
			AssignedTo: &reviewerID,
		}

		outbox := &fakeOutbox{}
		employees := &fakeEmployeeLookup{
			findByIDFn: func(ctx context.Context, id string) (*employee.Employee, error) {
				if id == reviewerID.String() {
					return &employee.Employee{ID: reviewerID, FullName: "Lee Park", Email: "lee@example.com"}, nil
				}
				return &employee.Employee{ID: req.EmployeeID, FullName: "Mira Chen", Email: "mira@example.com"}, nil
			},
		}
		types := &fakeTypeLookup{
			findByIDFn: func(ctx context.Context, id string) (*leavetype.LeaveType, error) {
				return &leavetype.LeaveType{Code: "VAC", Name: "Vacation"}, nil
			},
		}
		notifier := NewOutboxNotifier(outbox, employees, types, zap.NewNop())

		notifier.NextApprover(ctx, req, approval)

		if assert.Len(t, outbox.created, 1) {
			assert.Equal(t, events.LeaveApprovalPendingTopic, outbox.created[0].Topic)

			var payload events.LeaveApprovalEvent
			assert.NoError(t, json.Unmarshal(outbox.created[0].Payload, &payload))
			assert.Equal(t, "Lee Park", payload.ReviewerName)
			assert.Equal(t, "lee@example.com", payload.ReviewerEmail)
			assert.Equal(t, "Mira Chen", payload.EmployeeName)
			assert.Equal(t, "LEAD", payload.Role)
			assert.Equal(t, 1, payload.Sequence)
		}
	})

	t.Run("unassigned seat produces no event", func(t *testing.T) {
		req := sampleRequest()
		outbox := &fakeOutbox{}
		notifier := NewOutboxNotifier(outbox, &fakeEmployeeLookup{}, &fakeTypeLookup{}, zap.NewNop())

		notifier.NextApprover(ctx, req, &leave.LeaveApproval{Role: "HR", Sequence: 2})

		assert.Empty(t, outbox.created)
	})
}
