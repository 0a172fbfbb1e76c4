package leave

import "context"

// Notifier receives lifecycle hooks for a request. Implementations are
// best-effort: they must swallow delivery failures rather than surface them,
// so a broken mail pipe never blocks a decision.
type Notifier interface {
	RequestSubmitted(ctx context.Context, req *LeaveRequest)
	NextApprover(ctx context.Context, req *LeaveRequest, approval *LeaveApproval)
	RequestApproved(ctx context.Context, req *LeaveRequest)
	RequestRejected(ctx context.Context, req *LeaveRequest)
	UpcomingLeave(ctx context.Context, req *LeaveRequest)
}

// NopNotifier is used where no notification pipeline is wired.
type NopNotifier struct{}

func (NopNotifier) RequestSubmitted(context.Context, *LeaveRequest)             {}
func (NopNotifier) NextApprover(context.Context, *LeaveRequest, *LeaveApproval) {}
func (NopNotifier) RequestApproved(context.Context, *LeaveRequest)              {}
func (NopNotifier) RequestRejected(context.Context, *LeaveRequest)              {}
func (NopNotifier) UpcomingLeave(context.Context, *LeaveRequest)                {}
