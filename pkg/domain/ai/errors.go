package ai

import (
	"errors"
	"fmt"
)

// Backend failure sentinels. Every *BackendError matches exactly one.
var (
	// ErrBackendUnavailable indicates the backend could not be reached or answered 5xx.
	ErrBackendUnavailable = errors.New("backend unavailable")
	// ErrAuth indicates missing or rejected credentials.
	ErrAuth = errors.New("authentication failed")
	// ErrRateLimited indicates the backend throttled the call.
	ErrRateLimited = errors.New("rate limited")
	// ErrTimeout indicates the call exceeded its time budget.
	ErrTimeout = errors.New("backend call timed out")
	// ErrProtocol indicates an unexpected or undecodable response.
	ErrProtocol = errors.New("protocol error")
)

// ErrorKind classifies a backend failure.
type ErrorKind int

const (
	KindBackendUnavailable ErrorKind = iota
	KindAuth
	KindRateLimited
	KindTimeout
	KindProtocol
)

func (k ErrorKind) String() string {
	switch k {
	case KindBackendUnavailable:
		return "backend_unavailable"
	case KindAuth:
		return "auth_error"
	case KindRateLimited:
		return "rate_limited"
	case KindTimeout:
		return "timeout"
	case KindProtocol:
		return "protocol_error"
	default:
		return "unknown"
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindAuth:
		return ErrAuth
	case KindRateLimited:
		return ErrRateLimited
	case KindTimeout:
		return ErrTimeout
	case KindProtocol:
		return ErrProtocol
	default:
		return ErrBackendUnavailable
	}
}

// BackendError is the failure of one backend call.
type BackendError struct {
	Kind    ErrorKind
	Backend string
	Model   string
	Err     error
}

// NewBackendError builds a BackendError.
func NewBackendError(kind ErrorKind, backend, model string, err error) *BackendError {
	return &BackendError{Kind: kind, Backend: backend, Model: model, Err: err}
}

func (e *BackendError) Error() string {
	msg := fmt.Sprintf("%s (%s", e.Kind.sentinel(), e.Backend)
	if e.Model != "" {
		msg += " " + e.Model
	}
	msg += ")"
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// Is allows errors.Is to match the kind's sentinel.
func (e *BackendError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// KindOf returns the kind of the first BackendError in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var be *BackendError
	if errors.As(err, &be) {
		return be.Kind, true
	}
	return 0, false
}
