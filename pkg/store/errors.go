package store

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("key not found")
	ErrTransactionRO = errors.New("transaction is read-only")

	// ErrStoreClosed is returned by every operation after Close
	ErrStoreClosed = errors.New("store is closed")

	// ErrTransactionClosed is returned by operations on a committed or cancelled transaction
	ErrTransactionClosed = errors.New("transaction is closed")

	// ErrConcurrency is returned by TryWriteTx while another write transaction is open
	ErrConcurrency = errors.New("write transaction already open")
)

// CommitError reports a commit that did not apply. The transaction is
// closed and none of its writes are visible.
//
// The underlying error can be accessed via errors.Unwrap.
type CommitError struct {
	Cause error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("commit failed: %v", e.Cause)
}

func (e *CommitError) Unwrap() error { return e.Cause }
