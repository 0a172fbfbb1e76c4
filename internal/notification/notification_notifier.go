package notification

import (
	"context"
	"encoding/json"
	"time"

	"github.com/eman-cickusic/leave-management/internal/employee"
	"github.com/eman-cickusic/leave-management/internal/events"
	"github.com/eman-cickusic/leave-management/internal/leave"
	"github.com/eman-cickusic/leave-management/internal/leavetype"
	"github.com/eman-cickusic/leave-management/internal/messaging/kafka"
	"github.com/eman-cickusic/leave-management/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// EmployeeLookup resolves the names and addresses the events denormalize.
type EmployeeLookup interface {
	FindByID(ctx context.Context, id string) (*employee.Employee, error)
}

type TypeLookup interface {
	FindByID(ctx context.Context, id string) (*leavetype.LeaveType, error)
}

// OutboxNotifier turns workflow hooks into outbox rows. Events ride the
// worker's publish loop, so a decision never waits on the broker, and a
// failed enqueue is logged rather than surfaced.
type OutboxNotifier struct {
	outbox    kafka.OutboxRepository
	employees EmployeeLookup
	types     TypeLookup
	logger    *zap.Logger
}

func NewOutboxNotifier(outbox kafka.OutboxRepository, employees EmployeeLookup, types TypeLookup, logger ...*zap.Logger) *OutboxNotifier {
	l := zap.L().Named("notification.outbox")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	}
	return &OutboxNotifier{outbox: outbox, employees: employees, types: types, logger: l}
}

var _ leave.Notifier = (*OutboxNotifier)(nil)

func (n *OutboxNotifier) RequestSubmitted(ctx context.Context, req *leave.LeaveRequest) {
	n.enqueueRequestEvent(ctx, events.LeaveRequestSubmittedTopic, req)
}

func (n *OutboxNotifier) RequestApproved(ctx context.Context, req *leave.LeaveRequest) {
	n.enqueueRequestEvent(ctx, events.LeaveRequestApprovedTopic, req)
}

func (n *OutboxNotifier) RequestRejected(ctx context.Context, req *leave.LeaveRequest) {
	n.enqueueRequestEvent(ctx, events.LeaveRequestRejectedTopic, req)
}

func (n *OutboxNotifier) UpcomingLeave(ctx context.Context, req *leave.LeaveRequest) {
	n.enqueueRequestEvent(ctx, events.LeaveRequestUpcomingTopic, req)
}

func (n *OutboxNotifier) NextApprover(ctx context.Context, req *leave.LeaveRequest, approval *leave.LeaveApproval) {
	if approval == nil || approval.AssignedTo == nil {
		// Unassigned seats are picked up from the actionable queue instead.
		return
	}

	empl, lt := n.resolve(ctx, req)

	event := events.LeaveApprovalEvent{
		EventType:  events.LeaveApprovalPendingTopic,
		RequestID:  req.ID.String(),
		ApprovalID: approval.ID.String(),
		Role:       approval.Role,
		Sequence:   approval.Sequence,
		ReviewerID: approval.AssignedTo.String(),
		StartDate:  req.StartDate.Format(dateLayout),
		EndDate:    req.EndDate.Format(dateLayout),
		TotalDays:  req.TotalDays(),
		OccurredAt: time.Now().UTC(),
	}
	if empl != nil {
		event.EmployeeName = empl.FullName
	}
	if lt != nil {
		event.LeaveTypeCode = lt.Code
		event.LeaveTypeName = lt.Name
	}
	if reviewer, err := n.employees.FindByID(ctx, approval.AssignedTo.String()); err == nil {
		event.ReviewerName = reviewer.FullName
		event.ReviewerEmail = reviewer.Email
	}

	n.enqueue(ctx, events.LeaveApprovalPendingTopic, req.ID, event)
}

func (n *OutboxNotifier) enqueueRequestEvent(ctx context.Context, topic string, req *leave.LeaveRequest) {
	empl, lt := n.resolve(ctx, req)

	event := events.LeaveRequestEvent{
		EventType:      topic,
		RequestID:      req.ID.String(),
		EmployeeID:     req.EmployeeID.String(),
		StartDate:      req.StartDate.Format(dateLayout),
		EndDate:        req.EndDate.Format(dateLayout),
		TotalDays:      req.TotalDays(),
		ManagerComment: req.ManagerComment,
		OccurredAt:     time.Now().UTC(),
	}
	if empl != nil {
		event.EmployeeName = empl.FullName
		event.EmployeeEmail = empl.Email
	}
	if lt != nil {
		event.LeaveTypeCode = lt.Code
		event.LeaveTypeName = lt.Name
	}

	n.enqueue(ctx, topic, req.ID, event)
}

func (n *OutboxNotifier) resolve(ctx context.Context, req *leave.LeaveRequest) (*employee.Employee, *leavetype.LeaveType) {
	empl, err := n.employees.FindByID(ctx, req.EmployeeID.String())
	if err != nil {
		n.logger.Warn("notification employee lookup failed",
			zap.String("employee_id", req.EmployeeID.String()),
			zap.Error(err),
		)
		empl = nil
	}
	lt, err := n.types.FindByID(ctx, req.LeaveTypeID.String())
	if err != nil {
		n.logger.Warn("notification leave type lookup failed",
			zap.String("leave_type_id", req.LeaveTypeID.String()),
			zap.Error(err),
		)
		lt = nil
	}
	return empl, lt
}

func (n *OutboxNotifier) enqueue(ctx context.Context, topic string, requestID uuid.UUID, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		n.logger.Error("marshal notification event failed", zap.String("topic", topic), zap.Error(err))
		return
	}

	err = n.outbox.Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "leave_request",
		AggregateID:   requestID.String(),
		EventType:     topic,
		Topic:         topic,
		Payload:       body,
		Status:        kafka.OutboxStatusPending,
	})
	if err != nil {
		n.logger.Error("enqueue notification event failed",
			zap.String("topic", topic),
			zap.String("leave_request_id", requestID.String()),
			zap.Error(err),
		)
	}
}
