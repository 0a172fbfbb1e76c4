package leaveerrors

import (
	"fmt"
	"net/http"

	"github.com/eman-cickusic/leave-management/internal/shared/apperror"
)

var (
	ErrInvalidRequestID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid leave request id",
		http.StatusBadRequest,
	)
	ErrRequestNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave request not found",
		http.StatusNotFound,
	)
	ErrEndBeforeStart = apperror.New(
		apperror.CodeInvalidInput,
		"end date cannot be earlier than the start date",
		http.StatusBadRequest,
	)
	ErrStartInPast = apperror.New(
		apperror.CodeInvalidInput,
		"leave cannot start in the past",
		http.StatusBadRequest,
	)
	ErrOverlappingRequest = apperror.New(
		apperror.CodeConflict,
		"you already have a leave request covering those dates",
		http.StatusConflict,
	)
	ErrNoPendingApproval = apperror.New(
		apperror.CodeInvalidState,
		"there are no pending approvals for this request",
		http.StatusConflict,
	)
	ErrApprovalAlreadyDecided = apperror.New(
		apperror.CodeInvalidState,
		"this approval step has already been completed",
		http.StatusConflict,
	)
	ErrMissingDepartment = apperror.New(
		apperror.CodeInvalidState,
		"department must be set before submitting for approval",
		http.StatusConflict,
	)
	ErrNotEligible = apperror.New(
		apperror.CodeForbidden,
		"you are not eligible to decide this approval step",
		http.StatusForbidden,
	)
	ErrInvalidDecision = apperror.New(
		apperror.CodeInvalidInput,
		"decision must be APPROVED or REJECTED",
		http.StatusBadRequest,
	)
)

// MaxDurationExceeded names the offending type and its per-request cap.
func MaxDurationExceeded(typeName string, maxDays int) *apperror.AppError {
	return apperror.New(
		apperror.CodeInvalidInput,
		fmt.Sprintf("%s leave cannot exceed %d day(s) per request", typeName, maxDays),
		http.StatusBadRequest,
	)
}

func InsufficientNotice(typeName string, noticeDays int) *apperror.AppError {
	return apperror.New(
		apperror.CodeInvalidInput,
		fmt.Sprintf("%s leave must be requested at least %d day(s) in advance", typeName, noticeDays),
		http.StatusBadRequest,
	)
}

func InsufficientQuota(typeName string, requested, remaining int) *apperror.AppError {
	return apperror.New(
		apperror.CodeLedgerConflict,
		fmt.Sprintf("not enough %s remaining: requested %d day(s), %d left (short by %d)",
			typeName, requested, remaining, requested-remaining),
		http.StatusConflict,
	)
}
