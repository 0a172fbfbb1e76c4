package balance

type QuotaAdjustment struct {
	QuotaID        string `json:"quota_id" binding:"required,uuid"`
	Allocation     int    `json:"allocation"`
	CarriedOver    int    `json:"carried_over"`
	EmergencyGrant int    `json:"emergency_grant"`
}

type AdjustQuotasRequest struct {
	Adjustments []QuotaAdjustment `json:"adjustments" binding:"required,min=1,dive"`
}

type QuotaResponse struct {
	ID             string `json:"id"`
	LeaveTypeID    string `json:"leave_type_id"`
	Allocation     int    `json:"allocation"`
	CarriedOver    int    `json:"carried_over"`
	EmergencyGrant int    `json:"emergency_grant"`
	Used           int    `json:"used"`
	Remaining      int    `json:"remaining"`
}

type BalanceResponse struct {
	ID             string          `json:"id"`
	EmployeeID     string          `json:"employee_id"`
	DepartmentID   *string         `json:"department_id,omitempty"`
	Quotas         []QuotaResponse `json:"quotas"`
	TotalRemaining int             `json:"total_remaining"`
	LastAdjustedBy *string         `json:"last_adjusted_by,omitempty"`
	LastAdjustedAt *string         `json:"last_adjusted_at,omitempty"`
}
