package leave

type CreateLeaveRequestRequest struct {
	LeaveTypeID  string  `json:"leave_type_id" binding:"required,uuid"`
	DepartmentID *string `json:"department_id" binding:"omitempty,uuid"`
	StartDate    string  `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate      string  `json:"end_date" binding:"required,datetime=2006-01-02"`
	Reason       string  `json:"reason" binding:"required"`
}

type DecisionRequest struct {
	Decision string `json:"decision" binding:"required,oneof=APPROVED REJECTED"`
	Comment  string `json:"comment"`
}

type ApprovalResponse struct {
	ID         string  `json:"id"`
	Role       string  `json:"role"`
	Sequence   int     `json:"sequence"`
	Status     string  `json:"status"`
	AssignedTo *string `json:"assigned_to,omitempty"`
	ReviewedBy *string `json:"reviewed_by,omitempty"`
	Comment    string  `json:"comment,omitempty"`
	DecidedAt  *string `json:"decided_at,omitempty"`
}

type LeaveRequestResponse struct {
	ID             string             `json:"id"`
	EmployeeID     string             `json:"employee_id"`
	DepartmentID   *string            `json:"department_id,omitempty"`
	LeaveTypeID    string             `json:"leave_type_id"`
	StartDate      string             `json:"start_date"`
	EndDate        string             `json:"end_date"`
	TotalDays      int                `json:"total_days"`
	Reason         string             `json:"reason"`
	Status         string             `json:"status"`
	PolicyNotes    string             `json:"policy_notes,omitempty"`
	ManagerComment string             `json:"manager_comment,omitempty"`
	ReviewedBy     *string            `json:"reviewed_by,omitempty"`
	DecisionDate   *string            `json:"decision_date,omitempty"`
	Approvals      []ApprovalResponse `json:"approvals"`
}

type DecisionResponse struct {
	RequestID string `json:"request_id"`
	Status    string `json:"status"`
}
