package requests

import (
	"errors"
	"fmt"
)

// ErrInvalidRequest sentinel untuk input request yang tidak valid.
// Request dengan error ini langsung FAILED tanpa retry.
var ErrInvalidRequest = errors.New("invalid analysis request")

// InvalidRequestError menjelaskan kenapa sebuah request ditolak
type InvalidRequestError struct {
	Reason string
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid analysis request: %s", e.Reason)
}

func (e *InvalidRequestError) Unwrap() error { return ErrInvalidRequest }

// ErrTerminalStatus penulisan status ditolak karena row sudah ada di
// CANCELLED/COMPLETED. Guard di level repository: pengecekan in-memory
// saja tidak cukup saat operator membatalkan request yang sedang jalan.
var ErrTerminalStatus = errors.New("request already in terminal status")

// InvalidTransitionError transisi status yang tidak diizinkan
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition %s -> %s", e.From, e.To)
}
