package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/eman-cickusic/leave-management/internal/leave"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DedupNotifier suppresses repeat UpcomingLeave reminders for the same
// request across worker runs. Other hooks pass straight through. The redis
// key expires after the leave has started, so storage self-cleans.
type DedupNotifier struct {
	inner  leave.Notifier
	rdb    *redis.Client
	logger *zap.Logger
	now    func() time.Time
}

func NewDedupNotifier(inner leave.Notifier, rdb *redis.Client, logger ...*zap.Logger) *DedupNotifier {
	l := zap.L().Named("notification.dedup")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	}
	return &DedupNotifier{inner: inner, rdb: rdb, logger: l, now: time.Now}
}

var _ leave.Notifier = (*DedupNotifier)(nil)

func (d *DedupNotifier) RequestSubmitted(ctx context.Context, req *leave.LeaveRequest) {
	d.inner.RequestSubmitted(ctx, req)
}

func (d *DedupNotifier) NextApprover(ctx context.Context, req *leave.LeaveRequest, approval *leave.LeaveApproval) {
	d.inner.NextApprover(ctx, req, approval)
}

func (d *DedupNotifier) RequestApproved(ctx context.Context, req *leave.LeaveRequest) {
	d.inner.RequestApproved(ctx, req)
}

func (d *DedupNotifier) RequestRejected(ctx context.Context, req *leave.LeaveRequest) {
	d.inner.RequestRejected(ctx, req)
}

func (d *DedupNotifier) UpcomingLeave(ctx context.Context, req *leave.LeaveRequest) {
	key := fmt.Sprintf("reminder:%s:%s", req.ID, req.StartDate.Format("2006-01-02"))

	ttl := req.StartDate.AddDate(0, 0, 1).Sub(d.now())
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	isNew, err := d.rdb.SetNX(ctx, key, "sent", ttl).Result()
	if err != nil {
		// Redis being down should not silence reminders entirely.
		d.logger.Warn("reminder dedup check failed, sending anyway", zap.Error(err))
		d.inner.UpcomingLeave(ctx, req)
		return
	}
	if !isNew {
		return
	}

	d.inner.UpcomingLeave(ctx, req)
}
