// Package errors classifies failures met by the engine's background work
// (Kafka forwarding, archive exports, forecast providers) and carries the
// validation errors returned to callers.
//
// A failure is either transient, worth another attempt after a backoff, or
// permanent. Validation errors are always permanent and are returned before
// any engine state changes. Retry runs a function under a RetryConfig and
// stops at the first permanent failure.
package errors

import (
	"context"
	"errors"
	"fmt"
)

// Category says whether retrying an operation can help.
type Category int

const (
	// CategoryTransient covers broker hiccups, timeouts and throttling.
	CategoryTransient Category = iota

	// CategoryPermanent covers bad input, closed stores and unknown ids.
	CategoryPermanent
)

func (c Category) String() string {
	switch c {
	case CategoryTransient:
		return "transient"
	case CategoryPermanent:
		return "permanent"
	default:
		return "unknown"
	}
}

// OpError records which operation failed, how the failure was classified
// and how many attempts were spent on it.
type OpError struct {
	Op       string
	Err      error
	Category Category
	Attempts int
}

func (e *OpError) Error() string {
	msg := e.Err.Error()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Attempts == 0 {
		return fmt.Sprintf("%s (%s)", msg, e.Category)
	}
	return fmt.Sprintf("%s (%s, %d attempts)", msg, e.Category, e.Attempts)
}

func (e *OpError) Unwrap() error { return e.Err }

// Transient marks err from op as worth retrying.
func Transient(err error, op string) error {
	return &OpError{Op: op, Err: err, Category: CategoryTransient}
}

// temporary is implemented by kafka-go protocol errors.
type temporary interface{ Temporary() bool }

// timeout is implemented by net.Error and kafka-go protocol errors.
type timeout interface{ Timeout() bool }

// Categorize classifies err. Anything it does not recognize is permanent.
func Categorize(err error) Category {
	if err == nil {
		return CategoryPermanent
	}

	var op *OpError
	if errors.As(err, &op) {
		return op.Category
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return CategoryPermanent
	}
	var te *TimeoutError
	if errors.As(err, &te) || errors.Is(err, context.DeadlineExceeded) {
		return CategoryTransient
	}
	if errors.Is(err, context.Canceled) {
		return CategoryPermanent
	}

	var tmp temporary
	if errors.As(err, &tmp) && tmp.Temporary() {
		return CategoryTransient
	}
	var to timeout
	if errors.As(err, &to) && to.Timeout() {
		return CategoryTransient
	}
	return CategoryPermanent
}

// IsRetryable reports whether err is transient.
func IsRetryable(err error) bool {
	return Categorize(err) == CategoryTransient
}
