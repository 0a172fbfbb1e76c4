package employee

type CreateEmployeeRequest struct {
	FullName     string  `json:"full_name" binding:"required,max=255"`
	Email        string  `json:"email" binding:"required,email"`
	DepartmentID *string `json:"department_id" binding:"omitempty,uuid"`
	IsStaff      bool    `json:"is_staff"`
	HireDate     string  `json:"hire_date" binding:"required"`
}

type UpdateEmployeeRequest struct {
	FullName     string  `json:"full_name" binding:"required,max=255"`
	DepartmentID *string `json:"department_id" binding:"omitempty,uuid"`
	IsStaff      bool    `json:"is_staff"`
}

type EmployeeResponse struct {
	ID           string  `json:"id"`
	FullName     string  `json:"full_name"`
	Email        string  `json:"email"`
	DepartmentID *string `json:"department_id,omitempty"`
	IsStaff      bool    `json:"is_staff"`
	HireDate     string  `json:"hire_date"`
}
