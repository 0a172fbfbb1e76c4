package leavetype

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LeaveType struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code string    `gorm:"type:varchar(30);not null;uniqueIndex"`
	Name string    `gorm:"type:varchar(120);not null"`

	DefaultAllocation     int  `gorm:"type:int;not null;default:15"`
	MaxDaysPerRequest     int  `gorm:"type:int;not null;default:14"`
	MinNoticeDays         int  `gorm:"type:int;not null;default:0"`
	RequiresDocumentation bool `gorm:"not null;default:false"`
	IsPaid                bool `gorm:"not null;default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (LeaveType) TableName() string {
	return "leave_types"
}

// DefaultLeaveTypes are seeded on startup when the registry is empty.
type SeedType struct {
	Code                  string
	Name                  string
	DefaultAllocation     int
	MaxDaysPerRequest     int
	MinNoticeDays         int
	RequiresDocumentation bool
	IsPaid                bool
}

var DefaultLeaveTypes = []SeedType{
	{Code: "VAC", Name: "Vacation", DefaultAllocation: 20, MaxDaysPerRequest: 15, MinNoticeDays: 2, RequiresDocumentation: false, IsPaid: true},
	{Code: "SICK", Name: "Sick Leave", DefaultAllocation: 10, MaxDaysPerRequest: 7, MinNoticeDays: 0, RequiresDocumentation: true, IsPaid: true},
	{Code: "UNPAID", Name: "Unpaid Leave", DefaultAllocation: 999, MaxDaysPerRequest: 30, MinNoticeDays: 5, RequiresDocumentation: false, IsPaid: false},
}
