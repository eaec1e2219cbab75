package errs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrRequestNotFound   error = errors.New("request not found")
	ErrRequestNotPending error = errors.New("request is not in PENDING status")
	ErrRequestTerminal   error = errors.New("request already reached a terminal status")

	ErrNonceMismatch error = errors.New("nonce does not match the one issued for this request")
	ErrNonceNotFound error = errors.New("no nonce issued for this operation")

	ErrNotRequestOwner error = errors.New("request is assigned to another agent")
	ErrProfileChanged  error = errors.New("profile changed after the request was created")
	ErrProfileNotFound error = errors.New("profile not found")
)

// ServiceError carries the service-error list attached by the queue to a
// request that completed with RES_ERROR. The request stays in the repository
// with the same details for later inspection.
type ServiceError struct {
	RequestID string
	Errors    []string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("request %s completed with service errors: %s", e.RequestID, strings.Join(e.Errors, "; "))
}

// DeferredError signals that a profile deferred the request for manual agent
// approval. Not a failure: callers translate it to PENDING.
type DeferredError struct {
	Reason string
}

func (e *DeferredError) Error() string {
	return fmt.Sprintf("request deferred: %s", e.Reason)
}

// RejectedError signals that a profile rejected the request outright.
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("request rejected: %s", e.Reason)
}
