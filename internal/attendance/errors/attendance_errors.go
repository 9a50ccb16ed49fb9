package attendanceerrors

import (
	"net/http"

	"github.com/techsonance-infotech/techsonance-nfc-attendance-sub001/internal/shared/apperror"
)

var (
	ErrInvalidTimestamp = apperror.New(
		apperror.CodeInvalidInput,
		"invalid or missing event timestamp",
		http.StatusBadRequest,
	)
	ErrMissingAction = apperror.New(
		apperror.CodeInvalidInput,
		"action is required, expected checkin|checkout",
		http.StatusBadRequest,
	)
	ErrInvalidAction = apperror.New(
		apperror.CodeInvalidInput,
		"invalid action, expected checkin|checkout",
		http.StatusBadRequest,
	)
	ErrNoActiveCheckIn = apperror.New(
		apperror.CodeInvalidState,
		"no active check-in to close",
		http.StatusConflict,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidClockFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid clock format, expected HH:MM:SS",
		http.StatusBadRequest,
	)
)
