package leavetype

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, lt *LeaveType) error
	FindAll(ctx context.Context) ([]LeaveType, error)
	FindByID(ctx context.Context, id string) (*LeaveType, error)
	FindByCode(ctx context.Context, code string) (*LeaveType, error)
	Update(ctx context.Context, lt *LeaveType) error
	Count(ctx context.Context) (int64, error)
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

func (r *repository) Create(ctx context.Context, lt *LeaveType) error {
	query := `
        INSERT INTO leave_types (
            id, code, name, default_allocation, max_days_per_request,
            min_notice_days, requires_documentation, is_paid, created_at, updated_at
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
    `
	_, err := r.execer().ExecContext(ctx, query,
		lt.ID, lt.Code, lt.Name, lt.DefaultAllocation, lt.MaxDaysPerRequest,
		lt.MinNoticeDays, lt.RequiresDocumentation, lt.IsPaid,
	)
	return err
}

func (r *repository) FindAll(ctx context.Context) ([]LeaveType, error) {
	var types []LeaveType
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&types).Error
	return types, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*LeaveType, error) {
	var lt LeaveType
	err := r.db.WithContext(ctx).First(&lt, "id = ?", id).Error
	return &lt, err
}

func (r *repository) FindByCode(ctx context.Context, code string) (*LeaveType, error) {
	var lt LeaveType
	err := r.db.WithContext(ctx).First(&lt, "code = ?", code).Error
	return &lt, err
}

func (r *repository) Update(ctx context.Context, lt *LeaveType) error {
	query := `
        UPDATE leave_types
        SET name = $2, default_allocation = $3, max_days_per_request = $4,
            min_notice_days = $5, requires_documentation = $6, is_paid = $7,
            updated_at = NOW()
        WHERE id = $1
    `
	_, err := r.execer().ExecContext(ctx, query,
		lt.ID, lt.Name, lt.DefaultAllocation, lt.MaxDaysPerRequest,
		lt.MinNoticeDays, lt.RequiresDocumentation, lt.IsPaid,
	)
	return err
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&LeaveType{}).Count(&count).Error
	return count, err
}

func (r *repository) execer() interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.sqlDB
}
