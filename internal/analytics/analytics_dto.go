package analytics

// Bucket is one aggregation row, keyed by type name, employee name or
// YYYY-MM month.
type Bucket struct {
	Label string `json:"label"`
	Days  int    `json:"days"`
}

type DetailRow struct {
	EmployeeName  string `json:"employee_name"`
	LeaveTypeCode string `json:"leave_type_code"`
	LeaveTypeName string `json:"leave_type_name"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	TotalDays     int    `json:"total_days"`
}

type SummaryResponse struct {
	PeriodStart string      `json:"period_start"`
	PeriodEnd   string      `json:"period_end"`
	TotalDays   int         `json:"total_days"`
	ByType      []Bucket    `json:"by_type"`
	ByEmployee  []Bucket    `json:"by_employee"`
	ByMonth     []Bucket    `json:"by_month"`
	Requests    []DetailRow `json:"requests"`
}
