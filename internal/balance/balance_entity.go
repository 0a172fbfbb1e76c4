package balance

import (
	"time"

	"github.com/google/uuid"
)

// LeaveBalance is the one-per-employee ledger root. Quotas hang off it, one
// row per leave type.
type LeaveBalance struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex"`
	DepartmentID *uuid.UUID `gorm:"type:uuid"`

	LastAdjustedBy *uuid.UUID `gorm:"type:uuid"`
	LastAdjustedAt *time.Time

	Quotas []LeaveQuota `gorm:"foreignKey:BalanceID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (LeaveBalance) TableName() string {
	return "leave_balances"
}

type LeaveQuota struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BalanceID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_quota_balance_type"`
	LeaveTypeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_quota_balance_type"`

	Allocation     int `gorm:"type:int;not null;default:0"`
	CarriedOver    int `gorm:"type:int;not null;default:0"`
	EmergencyGrant int `gorm:"type:int;not null;default:0"`
	Used           int `gorm:"type:int;not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (LeaveQuota) TableName() string {
	return "leave_quotas"
}

func (q LeaveQuota) TotalAvailable() int {
	return q.Allocation + q.CarriedOver + q.EmergencyGrant
}

// RemainingDays floors at zero: an over-consumed quota reports nothing left
// rather than a negative entitlement.
func (q LeaveQuota) RemainingDays() int {
	remaining := q.TotalAvailable() - q.Used
	if remaining < 0 {
		return 0
	}
	return remaining
}
