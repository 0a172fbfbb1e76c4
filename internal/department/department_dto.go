package department

type ApprovalRuleInput struct {
	Role     string `json:"role" binding:"required,oneof=LEAD HR"`
	Sequence int    `json:"sequence" binding:"required,min=1"`
}

type CreateDepartmentRequest struct {
	Name         string              `json:"name" binding:"required,max=255"`
	TeamLeadID   *string             `json:"team_lead_id" binding:"omitempty,uuid"`
	HRApproverID *string             `json:"hr_approver_id" binding:"omitempty,uuid"`
	Rules        []ApprovalRuleInput `json:"rules" binding:"omitempty,dive"`
}

type UpdateDepartmentRequest struct {
	Name         string              `json:"name" binding:"required,max=255"`
	TeamLeadID   *string             `json:"team_lead_id" binding:"omitempty,uuid"`
	HRApproverID *string             `json:"hr_approver_id" binding:"omitempty,uuid"`
	Rules        []ApprovalRuleInput `json:"rules" binding:"omitempty,dive"`
}

type ApprovalRuleResponse struct {
	Role     string `json:"role"`
	Sequence int    `json:"sequence"`
}

type DepartmentResponse struct {
	ID           string                 `json:"id"`
	Name         string                 `json:"name"`
	TeamLeadID   *string                `json:"team_lead_id,omitempty"`
	HRApproverID *string                `json:"hr_approver_id,omitempty"`
	Rules        []ApprovalRuleResponse `json:"rules"`
}
