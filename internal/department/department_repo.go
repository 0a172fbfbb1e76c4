package department

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, dept *Department) error
	FindAll(ctx context.Context) ([]Department, error)
	FindByID(ctx context.Context, id string) (*Department, error)
	Update(ctx context.Context, dept *Department) error
	ReplaceRules(ctx context.Context, dept *Department, rules []ApprovalRule) error
	Delete(ctx context.Context, id string) error
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

func (r *repository) Create(ctx context.Context, dept *Department) error {
	query := `
        INSERT INTO departments (id, name, team_lead_id, hr_approver_id, created_at, updated_at)
        VALUES ($1, $2, $3, $4, NOW(), NOW())
    `
	if _, err := r.execer().ExecContext(ctx, query, dept.ID, dept.Name, dept.TeamLeadID, dept.HRApproverID); err != nil {
		return err
	}
	return r.insertRules(ctx, dept.ID.String(), dept.ApprovalRules)
}

func (r *repository) FindAll(ctx context.Context) ([]Department, error) {
	var depts []Department
	err := r.db.WithContext(ctx).
		Preload("ApprovalRules").
		Order("name ASC").
		Find(&depts).Error
	return depts, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Department, error) {
	var dept Department
	err := r.db.WithContext(ctx).
		Preload("ApprovalRules").
		First(&dept, "id = ?", id).Error
	return &dept, err
}

func (r *repository) Update(ctx context.Context, dept *Department) error {
	query := `
        UPDATE departments
        SET name = $2, team_lead_id = $3, hr_approver_id = $4, updated_at = NOW()
        WHERE id = $1 AND deleted_at IS NULL
    `
	_, err := r.execer().ExecContext(ctx, query, dept.ID, dept.Name, dept.TeamLeadID, dept.HRApproverID)
	return err
}

// ReplaceRules swaps the department's chain wholesale. Existing approval rows
// on in-flight requests are untouched; only future routing changes.
func (r *repository) ReplaceRules(ctx context.Context, dept *Department, rules []ApprovalRule) error {
	query := `DELETE FROM approval_rules WHERE department_id = $1`
	if _, err := r.execer().ExecContext(ctx, query, dept.ID); err != nil {
		return err
	}
	return r.insertRules(ctx, dept.ID.String(), rules)
}

func (r *repository) insertRules(ctx context.Context, departmentID string, rules []ApprovalRule) error {
	query := `
        INSERT INTO approval_rules (id, department_id, role, sequence, created_at, updated_at)
        VALUES ($1, $2, $3, $4, NOW(), NOW())
    `
	for _, rule := range rules {
		if _, err := r.execer().ExecContext(ctx, query, rule.ID, departmentID, rule.Role, rule.Sequence); err != nil {
			return err
		}
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	query := `UPDATE departments SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
	_, err := r.execer().ExecContext(ctx, query, id)
	return err
}
