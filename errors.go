package biclique

import (
	"errors"
	"fmt"
)

var (
	// ErrNilCipher is returned when no cipher is configured.
	ErrNilCipher = errors.New("cipher must not be nil")

	// ErrNilBuilder is returned when no differential builder is configured.
	ErrNilBuilder = errors.New("differential builder must not be nil")

	// ErrInvalidThreads is returned when the worker count is not positive.
	ErrInvalidThreads = errors.New("threads must be positive")

	// ErrInvalidWindow is returned for a round window outside the cipher.
	ErrInvalidWindow = errors.New("invalid round window")

	// ErrInvalidBaseKey is returned when the base key does not match the key size.
	ErrInvalidBaseKey = errors.New("invalid base key")

	// ErrInsufficientMemory is returned when not a single trail fits into the
	// memory budget.
	ErrInsufficientMemory = errors.New("insufficient memory for a single trail")
)

// ErrInvalidDimension indicates a dimension that is negative or exceeds the
// key width.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrInvalidDimension struct {
	Dimension int
	NumBits   int
	cause     error
}

func (e *ErrInvalidDimension) Error() string {
	return fmt.Sprintf("invalid dimension: %d for a %d-bit key", e.Dimension, e.NumBits)
}

func (e *ErrInvalidDimension) Unwrap() error { return e.cause }

// WorkerError describes a worker that stopped early. Worker errors never fail
// a search; they are collected in Result.WorkerErrors.
type WorkerError struct {
	Worker int
	Phase  Phase
	Err    error
}

func (e *WorkerError) Error() string {
	return fmt.Sprintf("%s worker %d: %v", e.Phase, e.Worker, e.Err)
}

func (e *WorkerError) Unwrap() error { return e.Err }
