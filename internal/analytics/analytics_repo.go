package analytics

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// ReportRow is one approved request joined with its employee and type.
type ReportRow struct {
	EmployeeName  string
	LeaveTypeCode string
	LeaveTypeName string
	StartDate     time.Time
	EndDate       time.Time
}

type Repository interface {
	ApprovedBetween(ctx context.Context, start, end time.Time) ([]ReportRow, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ApprovedBetween(ctx context.Context, start, end time.Time) ([]ReportRow, error) {
	var rows []ReportRow
	err := r.db.WithContext(ctx).
		Table("leave_requests").
		Select(`employees.full_name AS employee_name,
			leave_types.code AS leave_type_code,
			leave_types.name AS leave_type_name,
			leave_requests.start_date,
			leave_requests.end_date`).
		Joins("JOIN employees ON employees.id = leave_requests.employee_id").
		Joins("JOIN leave_types ON leave_types.id = leave_requests.leave_type_id").
		Where("leave_requests.status = ?", "APPROVED").
		Where("leave_requests.start_date <= ? AND leave_requests.end_date >= ?", end, start).
		Order("leave_requests.start_date").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
