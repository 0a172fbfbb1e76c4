package employee

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, empl *Employee) error
	FindAll(ctx context.Context) ([]Employee, error)
	FindByID(ctx context.Context, id string) (*Employee, error)
	FindByEmail(ctx context.Context, email string) (*Employee, error)
	Update(ctx context.Context, empl *Employee) error
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

func (r *repository) Create(ctx context.Context, empl *Employee) error {
	query := `
        INSERT INTO employees (id, department_id, full_name, email, is_staff, hire_date, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
    `
	_, err := r.execer().ExecContext(ctx, query,
		empl.ID, empl.DepartmentID, empl.FullName, empl.Email, empl.IsStaff, empl.HireDate,
	)
	return err
}

func (r *repository) FindAll(ctx context.Context) ([]Employee, error) {
	var empls []Employee
	err := r.db.WithContext(ctx).
		Order("full_name ASC").
		Find(&empls).Error
	return empls, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Employee, error) {
	var empl Employee
	err := r.db.WithContext(ctx).First(&empl, "id = ?", id).Error
	return &empl, err
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*Employee, error) {
	var empl Employee
	err := r.db.WithContext(ctx).First(&empl, "email = ?", email).Error
	return &empl, err
}

func (r *repository) Update(ctx context.Context, empl *Employee) error {
	query := `
        UPDATE employees
        SET department_id = $2, full_name = $3, is_staff = $4, updated_at = NOW()
        WHERE id = $1
    `
	_, err := r.execer().ExecContext(ctx, query, empl.ID, empl.DepartmentID, empl.FullName, empl.IsStaff)
	return err
}
