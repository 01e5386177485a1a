package models

import (
	"errors"
	"fmt"
)

// Error kinds. Handlers map them to HTTP status codes.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
	ErrUploadFailed = errors.New("upload failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

var (
	ErrNoRecord           = errors.New("models: no matching record found")
	ErrInvalidCredentials = errors.New("models: invalid credentials")
	ErrStatusChanged      = errors.New("models: status changed concurrently")
)

// AppError is an error with a kind, a message safe to show to the caller
// and optional per-field validation messages.
type AppError struct {
	Kind    error
	Message string
	Fields  map[string]string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func NotFound(what string) *AppError {
	return &AppError{Kind: ErrNotFound, Message: what + " not found"}
}

func Conflict(message string) *AppError {
	return &AppError{Kind: ErrConflict, Message: message}
}

func InvalidInput(message string, fields map[string]string) *AppError {
	return &AppError{Kind: ErrInvalidInput, Message: message, Fields: fields}
}

func UploadFailed(err error) *AppError {
	return &AppError{Kind: ErrUploadFailed, Message: "failed to upload image", Err: err}
}

func Unauthorized(message string) *AppError {
	return &AppError{Kind: ErrUnauthorized, Message: message}
}

func Forbidden(message string) *AppError {
	return &AppError{Kind: ErrForbidden, Message: message}
}
