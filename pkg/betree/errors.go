package betree

import "fmt"

// TreeError is the common error type returned by package betree: a short
// machine-checkable Kind plus a free-form message, so callers can switch
// on Kind without string-matching.
type TreeError struct {
	Kind    ErrorKind
	Message string
}

// ErrorKind classifies a TreeError.
type ErrorKind int

const (
	// ErrIO covers failures reading or writing a node through a Store.
	ErrIO ErrorKind = iota
	// ErrCorruption covers a node buffer that fails to decode.
	ErrCorruption
	// ErrTxnState covers misuse of the transaction protocol.
	ErrTxnState
	// ErrConfig covers invalid Tree configuration.
	ErrConfig
)

func (e *TreeError) Error() string {
	return fmt.Sprintf("betree: %s", e.Message)
}

func newErr(kind ErrorKind, format string, args ...interface{}) *TreeError {
	return &TreeError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Sentinel transaction-state errors, returned by Tree.BeginTxn/EndTxn.
var (
	// ErrTxnAlreadyOpen is returned by BeginTxn when a transaction is
	// already open on the tree.
	ErrTxnAlreadyOpen = &TreeError{Kind: ErrTxnState, Message: "transaction already open"}
	// ErrTxnClosed is returned by EndTxn when no transaction is open.
	ErrTxnClosed = &TreeError{Kind: ErrTxnState, Message: "no transaction open"}
	// ErrTxnMismatch is returned when a Transaction handle does not
	// match the tree's currently open transaction.
	ErrTxnMismatch = &TreeError{Kind: ErrTxnState, Message: "transaction does not match tree's open transaction"}
)
