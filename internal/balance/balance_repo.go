package balance

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, b *LeaveBalance) error
	FindByEmployee(ctx context.Context, employeeID string) (*LeaveBalance, error)
	SaveBalance(ctx context.Context, b *LeaveBalance) error
	CreateQuota(ctx context.Context, q *LeaveQuota) error
	FindQuota(ctx context.Context, balanceID, leaveTypeID string) (*LeaveQuota, error)
	FindQuotaByID(ctx context.Context, quotaID string) (*LeaveQuota, error)
	SaveQuotaEntitlement(ctx context.Context, q *LeaveQuota) error
	Deduct(ctx context.Context, quotaID string, days int) (bool, error)
	Refund(ctx context.Context, quotaID string, days int) error
	BackfillQuotas(ctx context.Context, leaveTypeID string, allocation int) error
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

func (r *repository) Create(ctx context.Context, b *LeaveBalance) error {
	query := `
        INSERT INTO leave_balances (id, employee_id, department_id, created_at, updated_at)
        VALUES ($1, $2, $3, NOW(), NOW())
    `
	_, err := r.execer().ExecContext(ctx, query, b.ID, b.EmployeeID, b.DepartmentID)
	return err
}

func (r *repository) FindByEmployee(ctx context.Context, employeeID string) (*LeaveBalance, error) {
	var b LeaveBalance
	err := r.db.WithContext(ctx).
		Preload("Quotas").
		First(&b, "employee_id = ?", employeeID).Error
	return &b, err
}

func (r *repository) SaveBalance(ctx context.Context, b *LeaveBalance) error {
	query := `
        UPDATE leave_balances
        SET department_id = $2, last_adjusted_by = $3, last_adjusted_at = $4, updated_at = NOW()
        WHERE id = $1
    `
	_, err := r.execer().ExecContext(ctx, query, b.ID, b.DepartmentID, b.LastAdjustedBy, b.LastAdjustedAt)
	return err
}

func (r *repository) CreateQuota(ctx context.Context, q *LeaveQuota) error {
	query := `
        INSERT INTO leave_quotas (
            id, balance_id, leave_type_id, allocation, carried_over, emergency_grant, used, created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
    `
	_, err := r.execer().ExecContext(
		ctx, query,
		q.ID, q.BalanceID, q.LeaveTypeID, q.Allocation, q.CarriedOver, q.EmergencyGrant, q.Used,
	)
	return err
}

func (r *repository) FindQuota(ctx context.Context, balanceID, leaveTypeID string) (*LeaveQuota, error) {
	var q LeaveQuota
	err := r.db.WithContext(ctx).
		Where("balance_id = ?", balanceID).
		First(&q, "leave_type_id = ?", leaveTypeID).Error
	return &q, err
}

func (r *repository) FindQuotaByID(ctx context.Context, quotaID string) (*LeaveQuota, error) {
	var q LeaveQuota
	err := r.db.WithContext(ctx).First(&q, "id = ?", quotaID).Error
	return &q, err
}

// SaveQuotaEntitlement writes the entitlement components only. Used is owned
// by Deduct and Refund and is never overwritten from an in-memory copy.
func (r *repository) SaveQuotaEntitlement(ctx context.Context, q *LeaveQuota) error {
	query := `
        UPDATE leave_quotas
        SET allocation = $2, carried_over = $3, emergency_grant = $4, updated_at = NOW()
        WHERE id = $1
    `
	_, err := r.execer().ExecContext(ctx, query, q.ID, q.Allocation, q.CarriedOver, q.EmergencyGrant)
	return err
}

// Deduct increments used against the stored row in a single conditional
// update, so two decisions finalizing concurrently against the same quota
// cannot both consume the last remaining days. Returns false when the quota
// has fewer than days remaining.
func (r *repository) Deduct(ctx context.Context, quotaID string, days int) (bool, error) {
	query := `
        UPDATE leave_quotas
        SET used = used + $2, updated_at = NOW()
        WHERE id = $1
          AND $2 <= (allocation + carried_over + emergency_grant - used)
    `
	res, err := r.execer().ExecContext(ctx, query, quotaID, days)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// Refund decrements used, clamped at zero.
func (r *repository) Refund(ctx context.Context, quotaID string, days int) error {
	query := `
        UPDATE leave_quotas
        SET used = GREATEST(used - $2, 0), updated_at = NOW()
        WHERE id = $1
    `
	_, err := r.execer().ExecContext(ctx, query, quotaID, days)
	return err
}

// BackfillQuotas seeds a quota for the given type on every balance that does
// not have one yet. Existing quotas are left untouched.
func (r *repository) BackfillQuotas(ctx context.Context, leaveTypeID string, allocation int) error {
	query := `
        INSERT INTO leave_quotas (
            id, balance_id, leave_type_id, allocation, carried_over, emergency_grant, used, created_at, updated_at
        )
        SELECT gen_random_uuid(), b.id, $1, $2, 0, 0, 0, NOW(), NOW()
        FROM leave_balances b
        ON CONFLICT (balance_id, leave_type_id) DO NOTHING
    `
	_, err := r.execer().ExecContext(ctx, query, leaveTypeID, allocation)
	return err
}

func (r *repository) execer() interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.sqlDB
}
