package domain

import (
	"fmt"
)

type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    e.Message,
		StatusCode: e.StatusCode,
		Err:        err,
	}
}

// Pre-defined errors. Token failures deliberately share one generic
// message: which check failed (signature, field binding, TTL) is logged
// server-side but never disclosed to the submitter.
var (
	ErrInternal = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		StatusCode: 500,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: 400,
	}

	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "Resource not found",
		StatusCode: 404,
	}

	ErrSessionNotFound = &AppError{
		Code:       "SESSION_NOT_FOUND",
		Message:    "Session not found",
		StatusCode: 404,
	}

	ErrInvalidLink = &AppError{
		Code:       "INVALID_LINK",
		Message:    "Invalid or expired scan link",
		StatusCode: 401,
	}

	ErrMissingFields = &AppError{
		Code:       "MISSING_FIELDS",
		Message:    "Enter name and roll number",
		StatusCode: 400,
	}

	ErrFaceTokenMissing = &AppError{
		Code:       "FACE_TOKEN_MISSING",
		Message:    "Face token missing. Verify your face and try again",
		StatusCode: 400,
	}

	ErrFaceTokenInvalid = &AppError{
		Code:       "FACE_TOKEN_INVALID",
		Message:    "Face verification is stale or invalid. Verify again",
		StatusCode: 401,
	}

	ErrLocationUnavailable = &AppError{
		Code:       "LOCATION_UNAVAILABLE",
		Message:    "Location not available. Enable GPS and retry",
		StatusCode: 400,
	}

	ErrInvalidImage = &AppError{
		Code:       "INVALID_IMAGE",
		Message:    "Invalid image format or corrupted file",
		StatusCode: 422,
	}

	ErrRecordNotFound = &AppError{
		Code:       "RECORD_NOT_FOUND",
		Message:    "Attendance record not found",
		StatusCode: 404,
	}

	ErrRateLimitExceeded = &AppError{
		Code:       "RATE_LIMIT_EXCEEDED",
		Message:    "Too many requests, slow down",
		StatusCode: 429,
	}
)
