package leave

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending  = "PENDING"
	StatusInReview = "IN_REVIEW"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

type LeaveRequest struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	EmployeeID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	DepartmentID *uuid.UUID `gorm:"type:uuid"`
	LeaveTypeID  uuid.UUID  `gorm:"type:uuid;not null"`
	StartDate    time.Time  `gorm:"type:date;not null"`
	EndDate      time.Time  `gorm:"type:date;not null"`
	Reason       string     `gorm:"type:text;not null"`
	Status       string     `gorm:"size:12;not null;default:PENDING"`
	PolicyNotes  string     `gorm:"type:text"`

	ManagerComment string     `gorm:"type:text"`
	ReviewedBy     *uuid.UUID `gorm:"type:uuid"`
	DecisionDate   *time.Time

	Approvals []LeaveApproval `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// LeaveApproval is one step of the request's approval chain. Steps are
// created once when the request enters review and never regenerated.
type LeaveApproval struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	RequestID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_approval_request_sequence"`
	Role      string    `gorm:"size:10;not null"`
	Sequence  int       `gorm:"not null;uniqueIndex:idx_approval_request_sequence"`
	Status    string    `gorm:"size:10;not null;default:PENDING"`

	AssignedTo *uuid.UUID `gorm:"type:uuid"`
	ReviewedBy *uuid.UUID `gorm:"type:uuid"`
	Comment    string     `gorm:"type:text"`
	DecidedAt  *time.Time

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TotalDays counts the inclusive date range.
func (r *LeaveRequest) TotalDays() int {
	return int(r.EndDate.Sub(r.StartDate).Hours()/24) + 1
}

func (r *LeaveRequest) IsPending() bool {
	return r.Status == StatusPending || r.Status == StatusInReview
}

// CurrentApproval returns the lowest-sequence step still pending, or nil
// when every step is resolved or none exist.
func (r *LeaveRequest) CurrentApproval() *LeaveApproval {
	var current *LeaveApproval
	for i := range r.Approvals {
		a := &r.Approvals[i]
		if a.Status != StatusPending {
			continue
		}
		if current == nil || a.Sequence < current.Sequence {
			current = a
		}
	}
	return current
}
