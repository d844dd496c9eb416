package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies an error category.
type Code int

const (
	Internal Code = iota + 1
	InvalidParams
	NotFound
	SizeLimitExceeded
	Conflict
)

type codeInfo struct {
	name   string
	status int
}

var codeMap = map[Code]codeInfo{
	Internal:          {"Internal", http.StatusInternalServerError},
	InvalidParams:     {"InvalidParams", http.StatusBadRequest},
	NotFound:          {"NotFound", http.StatusNotFound},
	SizeLimitExceeded: {"SizeLimitExceeded", http.StatusBadRequest},
	Conflict:          {"Conflict", http.StatusConflict},
}

// String returns the category name shown on the HTML result page.
func (c Code) String() string {
	if info, ok := codeMap[c]; ok {
		return info.name
	}
	return codeMap[Internal].name
}

// HTTPStatus returns the status the JSON API answers with.
func (c Code) HTTPStatus() int {
	if info, ok := codeMap[c]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

// AppError is an error with a category and a client-facing message.
type AppError struct {
	Code    Code
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates an AppError with the given code and message.
func New(code Code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap attaches a code and message to err. An AppError passes through unchanged.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{Code: code, Message: message, Err: err}
}

// CodeOf returns the category of err; plain errors are Internal.
func CodeOf(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return Internal
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// MessageOf returns the client-facing message of err.
func MessageOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
