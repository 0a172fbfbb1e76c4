package departmenterrors

import (
	"net/http"

	"github.com/eman-cickusic/leave-management/internal/shared/apperror"
)

var (
	ErrInvalidDepartmentID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid department id",
		http.StatusBadRequest,
	)
	ErrDepartmentNotFound = apperror.New(
		apperror.CodeNotFound,
		"department not found",
		http.StatusNotFound,
	)
	ErrDuplicateName = apperror.New(
		apperror.CodeConflict,
		"department name already exists",
		http.StatusConflict,
	)
	ErrDuplicateRuleRole = apperror.New(
		apperror.CodeInvalidInput,
		"at most one approval rule per role",
		http.StatusBadRequest,
	)
	ErrInvalidRuleSequence = apperror.New(
		apperror.CodeInvalidInput,
		"rule sequence must be positive and unique",
		http.StatusBadRequest,
	)
)
