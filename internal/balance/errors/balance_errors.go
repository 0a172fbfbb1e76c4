package balanceerrors

import (
	"net/http"

	"github.com/eman-cickusic/leave-management/internal/shared/apperror"
)

var (
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrBalanceNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave balance not found",
		http.StatusNotFound,
	)
	ErrQuotaNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave quota not found",
		http.StatusNotFound,
	)
	ErrNonPositiveDays = apperror.New(
		apperror.CodeLedgerConflict,
		"days must be positive",
		http.StatusConflict,
	)
	ErrInsufficientBalance = apperror.New(
		apperror.CodeLedgerConflict,
		"not enough leave remaining for this type",
		http.StatusConflict,
	)
	ErrNegativeAdjustment = apperror.New(
		apperror.CodeInvalidInput,
		"allocation components cannot be negative",
		http.StatusBadRequest,
	)
)
