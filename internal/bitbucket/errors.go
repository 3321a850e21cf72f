package bitbucket

import (
	"errors"
	"fmt"
)

// Kind classifies an operation failure. Every error surfaced by this
// package carries exactly one kind.
type Kind string

const (
	// KindTransport means the server could not be reached at all: DNS,
	// connect, TLS or timeout. Distinct from any HTTP status.
	KindTransport Kind = "transport"
	// KindAuthFailure maps HTTP 401 on any endpoint.
	KindAuthFailure Kind = "auth_failure"
	// KindForbidden maps HTTP 403 on any endpoint.
	KindForbidden Kind = "forbidden"
	// KindRemoteRejected is any other non-success status whose body
	// carried a parseable error payload; the server's own message is
	// preserved verbatim.
	KindRemoteRejected Kind = "remote_rejected"
	// KindMalformedResponse is a non-success status whose body could not
	// be parsed.
	KindMalformedResponse Kind = "malformed_response"
	// KindNotFound means a required pull request could not be resolved.
	KindNotFound Kind = "not_found"
)

// OpError is the error taxonomy of the engine: a kind, a human message
// and, where the server answered, the remote HTTP status code.
type OpError struct {
	Kind    Kind
	Message string
	Status  int // remote HTTP status, 0 when not applicable

	// Existing is populated when a create-conflict payload embeds the
	// pull request already occupying the requested identity.
	Existing *ExistingPullRequest

	cause error
}

// ExistingPullRequest is the id/version pair a 409 create-conflict body
// reports for the conflicting pull request.
type ExistingPullRequest struct {
	ID      int
	Version int
}

func (e *OpError) Error() string {
	return e.Message
}

func (e *OpError) Unwrap() error {
	return e.cause
}

// Is allows errors.Is against a bare kind marker, e.g.
// errors.Is(err, &OpError{Kind: KindNotFound}).
func (e *OpError) Is(target error) bool {
	t, ok := target.(*OpError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// IsKind reports whether err (or anything it wraps) is an OpError of the
// given kind.
func IsKind(err error, kind Kind) bool {
	var opErr *OpError
	if !errors.As(err, &opErr) {
		return false
	}
	return opErr.Kind == kind
}

func transportError(err error) *OpError {
	return &OpError{
		Kind:    KindTransport,
		Message: fmt.Sprintf("request error: %v", err),
		cause:   err,
	}
}

func notFoundError(title string) *OpError {
	return &OpError{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("unable to find a PR that matches title <%s>", title),
	}
}
