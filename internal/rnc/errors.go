package rnc

import (
	"errors"
	"net/http"
)

// Kind classifies a resolution failure.
type Kind int

const (
	// KindInternal is any unexpected failure; Detail carries the cause.
	KindInternal Kind = iota
	// KindServiceUnavailable means the upstream blocked or rate-limited us (HTTP 403).
	KindServiceUnavailable
	// KindUpstream is an unexpected non-200 status from the upstream form.
	KindUpstream
	// KindTokenExtraction means the form page lacked a required hidden field.
	KindTokenExtraction
	// KindNotFound means the upstream answered but rendered no match.
	KindNotFound
	// KindTimeout means the overall deadline expired.
	KindTimeout
	// KindConnection is a transport-level failure reaching the upstream.
	KindConnection
	// KindLoad means the dataset file could not be read.
	KindLoad
)

var kindNames = map[Kind]string{
	KindInternal:           "internal_error",
	KindServiceUnavailable: "service_unavailable",
	KindUpstream:           "upstream_error",
	KindTokenExtraction:    "token_extraction_failed",
	KindNotFound:           "not_found",
	KindTimeout:            "timeout",
	KindConnection:         "connection_failed",
	KindLoad:               "load_error",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Code is the error code placed in API envelopes.
func (k Kind) Code() string {
	switch k {
	case KindNotFound:
		return "RNC_NOT_FOUND"
	case KindServiceUnavailable:
		return "SERVICE_UNAVAILABLE"
	case KindUpstream:
		return "UPSTREAM_ERROR"
	case KindTokenExtraction:
		return "UPSTREAM_CONTRACT_CHANGED"
	case KindTimeout:
		return "TIMEOUT"
	case KindConnection:
		return "CONNECTION_FAILED"
	case KindLoad:
		return "LOAD_ERROR"
	default:
		return "INTERNAL_ERROR"
	}
}

// HTTPStatus is the transport status the API layer reports for k.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindServiceUnavailable, KindConnection:
		return http.StatusServiceUnavailable
	case KindUpstream, KindTokenExtraction:
		return http.StatusBadGateway
	case KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// Retryable reports whether the caller may reasonably try again later.
func (k Kind) Retryable() bool {
	switch k {
	case KindServiceUnavailable, KindTimeout, KindConnection:
		return true
	default:
		return false
	}
}

// ResolutionError is a classified failure returned as a value by the index,
// the form client, and the resolver.
type ResolutionError struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *ResolutionError) Error() string {
	if e.Detail == "" {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Detail
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// NewError builds a ResolutionError without an underlying cause.
func NewError(kind Kind, detail string) *ResolutionError {
	return &ResolutionError{Kind: kind, Detail: detail}
}

// WrapError builds a ResolutionError around err. InternalError always keeps
// the underlying message for diagnostics.
func WrapError(kind Kind, detail string, err error) *ResolutionError {
	if kind == KindInternal && err != nil {
		if detail == "" {
			detail = err.Error()
		} else {
			detail = detail + ": " + err.Error()
		}
	}
	return &ResolutionError{Kind: kind, Detail: detail, Err: err}
}

// KindOf returns the Kind of the first ResolutionError in err's chain, or
// KindInternal for any other non-nil error.
func KindOf(err error) Kind {
	var re *ResolutionError
	if errors.As(err, &re) {
		return re.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries a ResolutionError of the given kind.
func IsKind(err error, kind Kind) bool {
	var re *ResolutionError
	return errors.As(err, &re) && re.Kind == kind
}
