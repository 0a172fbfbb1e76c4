package auth

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, user *User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	if err := r.resolveEmployeeFields(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var user User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	if err := r.resolveEmployeeFields(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// resolveEmployeeFields derives the effective role and display name from the
// linked employee row. Accounts without one act as plain employees.
func (r *repository) resolveEmployeeFields(ctx context.Context, user *User) error {
	user.Role = RoleEmployee
	if user.EmployeeID == nil || *user.EmployeeID == uuid.Nil {
		return nil
	}

	var row struct {
		FullName string
		IsStaff  bool
	}
	err := r.db.WithContext(ctx).
		Table("employees").
		Select("full_name, is_staff").
		Where("id = ?", *user.EmployeeID).
		Take(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		return err
	}

	user.FullName = row.FullName
	if row.IsStaff {
		user.Role = RoleStaff
	}
	return nil
}
