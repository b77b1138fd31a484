// Package common provides the shared error taxonomy and logging setup used
// across the ingestion pipeline.
package common

import (
	"errors"
	"fmt"
)

// Pipeline error taxonomy. The first two are fatal for the invocation that
// raised them; ErrNoTransactions is advisory: parsing succeeded structurally
// but produced zero valid records, and callers still receive a usable empty
// result alongside it.
var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrParseFailure        = errors.New("parse failure")
	ErrNoTransactions      = errors.New("no transactions found")
)

// UserError pairs an internal error with a message fit for end users, so
// the CLI and HTTP surfaces never leak raw parser internals.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError wraps err with a user-facing message.
func NewUserError(userMessage string, err error) error {
	return &UserError{UserMessage: userMessage, Err: err}
}

// UserMessage extracts the user-facing message from an error chain, falling
// back to the error text itself.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var ue *UserError
	if errors.As(err, &ue) {
		return ue.UserMessage
	}
	return err.Error()
}
