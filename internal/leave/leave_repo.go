package leave

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, r *LeaveRequest) error
	CreateApprovals(ctx context.Context, approvals []LeaveApproval) error
	FindByID(ctx context.Context, id string) (*LeaveRequest, error)
	FindByEmployee(ctx context.Context, employeeID string) ([]LeaveRequest, error)
	FindAll(ctx context.Context) ([]LeaveRequest, error)
	FindActionableForReviewer(ctx context.Context, reviewerID string) ([]LeaveRequest, error)
	HasOverlapping(ctx context.Context, employeeID string, start, end time.Time, excludeID *string) (bool, error)
	SetStatus(ctx context.Context, requestID, status string) error
	UpdateDecision(ctx context.Context, r *LeaveRequest) error
	MarkApproval(ctx context.Context, approvalID, status string, reviewerID uuid.UUID, comment string) (bool, error)
	UpcomingApproved(ctx context.Context, from, to time.Time) ([]LeaveRequest, error)
}

type repository struct {
	db    *gorm.DB
	sqlDB *sql.DB
	tx    *sql.Tx
}

func NewRepository(db *gorm.DB, sqlDB *sql.DB) Repository {
	return &repository{db: db, sqlDB: sqlDB}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, sqlDB: r.sqlDB, tx: tx}
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *repository) execer() execer {
	if r.tx != nil {
		return r.tx
	}
	return r.sqlDB
}

func (r *repository) Create(ctx context.Context, req *LeaveRequest) error {
	query := `
        INSERT INTO leave_requests
            (id, employee_id, department_id, leave_type_id, start_date, end_date,
             reason, status, policy_notes, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
    `
	_, err := r.execer().ExecContext(ctx, query,
		req.ID, req.EmployeeID, req.DepartmentID, req.LeaveTypeID,
		req.StartDate, req.EndDate, req.Reason, req.Status, req.PolicyNotes,
	)
	return err
}

func (r *repository) CreateApprovals(ctx context.Context, approvals []LeaveApproval) error {
	query := `
        INSERT INTO leave_approvals
            (id, request_id, role, sequence, status, assigned_to, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
    `
	for _, a := range approvals {
		if _, err := r.execer().ExecContext(ctx, query,
			a.ID, a.RequestID, a.Role, a.Sequence, a.Status, a.AssignedTo,
		); err != nil {
			return err
		}
	}
	return nil
}

func (r *repository) FindByID(ctx context.Context, id string) (*LeaveRequest, error) {
	var req LeaveRequest
	err := r.db.WithContext(ctx).
		Preload("Approvals", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC")
		}).
		First(&req, "id = ?", id).Error
	return &req, err
}

func (r *repository) FindByEmployee(ctx context.Context, employeeID string) ([]LeaveRequest, error) {
	var reqs []LeaveRequest
	err := r.db.WithContext(ctx).
		Preload("Approvals").
		Where("employee_id = ?", employeeID).
		Order("created_at DESC").
		Find(&reqs).Error
	return reqs, err
}

func (r *repository) FindAll(ctx context.Context) ([]LeaveRequest, error) {
	var reqs []LeaveRequest
	err := r.db.WithContext(ctx).
		Preload("Approvals").
		Order("created_at DESC").
		Find(&reqs).Error
	return reqs, err
}

// FindActionableForReviewer lists in-flight requests whose current pending
// step is either assigned to the reviewer or unassigned with the reviewer
// holding the matching department seat.
func (r *repository) FindActionableForReviewer(ctx context.Context, reviewerID string) ([]LeaveRequest, error) {
	var reqs []LeaveRequest
	err := r.db.WithContext(ctx).
		Preload("Approvals").
		Distinct("leave_requests.*").
		Joins("JOIN leave_approvals la ON la.request_id = leave_requests.id AND la.status = ?", StatusPending).
		Joins("LEFT JOIN departments d ON d.id = leave_requests.department_id").
		Where("leave_requests.status IN ?", []string{StatusPending, StatusInReview}).
		Where(`la.assigned_to = @rid
            OR (la.assigned_to IS NULL AND la.role = 'LEAD' AND d.team_lead_id = @rid)
            OR (la.assigned_to IS NULL AND la.role = 'HR' AND d.hr_approver_id = @rid)`,
			sql.Named("rid", reviewerID)).
		Order("leave_requests.created_at DESC").
		Find(&reqs).Error
	return reqs, err
}

func (r *repository) HasOverlapping(ctx context.Context, employeeID string, start, end time.Time, excludeID *string) (bool, error) {
	q := r.db.WithContext(ctx).
		Model(&LeaveRequest{}).
		Where("employee_id = ?", employeeID).
		Where("start_date <= ? AND end_date >= ?", end, start).
		Where("status <> ?", StatusRejected)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) SetStatus(ctx context.Context, requestID, status string) error {
	query := `UPDATE leave_requests SET status = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.execer().ExecContext(ctx, query, requestID, status)
	return err
}

func (r *repository) UpdateDecision(ctx context.Context, req *LeaveRequest) error {
	query := `
        UPDATE leave_requests
        SET status = $2, reviewed_by = $3, manager_comment = $4, decision_date = $5, updated_at = NOW()
        WHERE id = $1
    `
	_, err := r.execer().ExecContext(ctx, query,
		req.ID, req.Status, req.ReviewedBy, req.ManagerComment, req.DecisionDate,
	)
	return err
}

// MarkApproval decides a step only while it is still pending. A false return
// means somebody else already decided it.
func (r *repository) MarkApproval(ctx context.Context, approvalID, status string, reviewerID uuid.UUID, comment string) (bool, error) {
	query := `
        UPDATE leave_approvals
        SET status = $2, reviewed_by = $3, comment = $4, decided_at = NOW(), updated_at = NOW()
        WHERE id = $1 AND status = 'PENDING'
    `
	res, err := r.execer().ExecContext(ctx, query, approvalID, status, reviewerID, comment)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *repository) UpcomingApproved(ctx context.Context, from, to time.Time) ([]LeaveRequest, error) {
	var reqs []LeaveRequest
	err := r.db.WithContext(ctx).
		Where("status = ?", StatusApproved).
		Where("start_date BETWEEN ? AND ?", from, to).
		Order("start_date ASC").
		Find(&reqs).Error
	return reqs, err
}
