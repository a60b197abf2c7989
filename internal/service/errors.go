package service

import (
	"errors"
	"strings"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidInput     = errors.New("invalid input")
	ErrAlreadyVoid      = errors.New("invoice is already void")
)

// ValidationError carries the full list of violations found by the VAT
// validator. The caller decides whether to block or warn.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "invoice failed validation: " + strings.Join(e.Errors, "; ")
}
