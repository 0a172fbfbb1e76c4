package employee

import (
	"time"

	"github.com/google/uuid"
)

type Employee struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	DepartmentID *uuid.UUID `gorm:"type:uuid"`
	FullName     string     `gorm:"size:255;not null"`
	Email        string     `gorm:"size:255;not null;uniqueIndex"`
	IsStaff      bool       `gorm:"not null;default:false"`
	HireDate     time.Time  `gorm:"type:date"`
	CreatedAt    time.Time  `gorm:"autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime"`
}
