package tagerrors

import (
	"net/http"

	"github.com/techsonance-infotech/techsonance-nfc-attendance-sub001/internal/shared/apperror"
)

var (
	ErrTagNotFound = apperror.New(
		apperror.CodeNotFound,
		"tag is not enrolled",
		http.StatusNotFound,
	)
	ErrTagInactive = apperror.New(
		apperror.CodeInvalidState,
		"tag is not active",
		http.StatusConflict,
	)
	ErrTagUnassigned = apperror.New(
		apperror.CodeInvalidState,
		"tag is not assigned to an employee",
		http.StatusConflict,
	)
	ErrTagAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"tag is already enrolled",
		http.StatusConflict,
	)
	ErrInvalidTagStatus = apperror.New(
		apperror.CodeInvalidInput,
		"invalid tag status, expected active|inactive|lost|damaged",
		http.StatusBadRequest,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
)
