package auth

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role values mirrored into JWT claims. Staff standing is derived from the
// linked employee record, not stored on the user row.
const (
	RoleStaff    = "staff"
	RoleEmployee = "employee"
)

type User struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID *uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	Email      string     `gorm:"type:varchar(255);uniqueIndex;not null"`
	Password   string     `gorm:"type:varchar(255);not null"`
	IsActive   bool       `gorm:"default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  gorm.DeletedAt `gorm:"index"`

	// Resolved from the employee record on read.
	Role     string `gorm:"-"`
	FullName string `gorm:"-"`
}
