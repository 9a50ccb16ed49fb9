package readererrors

import (
	"net/http"

	"github.com/techsonance-infotech/techsonance-nfc-attendance-sub001/internal/shared/apperror"
)

var (
	ErrReaderNotFound = apperror.New(
		apperror.CodeNotFound,
		"reader not found",
		http.StatusNotFound,
	)
	ErrReaderAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"reader id already registered",
		http.StatusConflict,
	)
	ErrInvalidAPIKey = apperror.New(
		apperror.CodeUnauthorized,
		"invalid reader credentials",
		http.StatusUnauthorized,
	)
)
