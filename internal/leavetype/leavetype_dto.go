package leavetype

type CreateLeaveTypeRequest struct {
	Code                  string `json:"code" binding:"required,max=30"`
	Name                  string `json:"name" binding:"required,max=120"`
	DefaultAllocation     int    `json:"default_allocation" binding:"min=0"`
	MaxDaysPerRequest     int    `json:"max_days_per_request" binding:"min=0"`
	MinNoticeDays         int    `json:"min_notice_days" binding:"min=0"`
	RequiresDocumentation bool   `json:"requires_documentation"`
	IsPaid                bool   `json:"is_paid"`
}

type UpdateLeaveTypeRequest struct {
	Name                  string `json:"name" binding:"required,max=120"`
	DefaultAllocation     int    `json:"default_allocation" binding:"min=0"`
	MaxDaysPerRequest     int    `json:"max_days_per_request" binding:"min=0"`
	MinNoticeDays         int    `json:"min_notice_days" binding:"min=0"`
	RequiresDocumentation bool   `json:"requires_documentation"`
	IsPaid                bool   `json:"is_paid"`
}

type LeaveTypeResponse struct {
	ID                    string `json:"id"`
	Code                  string `json:"code"`
	Name                  string `json:"name"`
	DefaultAllocation     int    `json:"default_allocation"`
	MaxDaysPerRequest     int    `json:"max_days_per_request"`
	MinNoticeDays         int    `json:"min_notice_days"`
	RequiresDocumentation bool   `json:"requires_documentation"`
	IsPaid                bool   `json:"is_paid"`
}
