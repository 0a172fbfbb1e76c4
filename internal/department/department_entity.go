package department

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleTeamLead = "LEAD"
	RoleHR       = "HR"
)

type Department struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Name         string     `gorm:"size:255;not null;uniqueIndex"`
	TeamLeadID   *uuid.UUID `gorm:"type:uuid"`
	HRApproverID *uuid.UUID `gorm:"type:uuid"`

	ApprovalRules []ApprovalRule `gorm:"foreignKey:DepartmentID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// ApprovalRule is one ordered reviewer role in the department's chain.
type ApprovalRule struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	DepartmentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_rule_department_role"`
	Role         string    `gorm:"size:10;not null;uniqueIndex:idx_rule_department_role"`
	Sequence     int       `gorm:"not null"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// ApprovalSequence returns the routing steps ordered by sequence. Departments
// without explicit rules get the default two-step chain, synthesized at read
// time and never persisted.
func (d *Department) ApprovalSequence() []ApprovalRule {
	if len(d.ApprovalRules) > 0 {
		rules := make([]ApprovalRule, len(d.ApprovalRules))
		copy(rules, d.ApprovalRules)
		sort.Slice(rules, func(i, j int) bool { return rules[i].Sequence < rules[j].Sequence })
		return rules
	}
	return []ApprovalRule{
		{DepartmentID: d.ID, Role: RoleTeamLead, Sequence: 1},
		{DepartmentID: d.ID, Role: RoleHR, Sequence: 2},
	}
}

// ExpectedReviewer resolves a rule's role to the department member holding
// it. Nil when the seat is vacant.
func (d *Department) ExpectedReviewer(role string) *uuid.UUID {
	switch role {
	case RoleTeamLead:
		return d.TeamLeadID
	case RoleHR:
		return d.HRApproverID
	}
	return nil
}
