// Package apperr defines the failure kinds returned by the license and account
// operations. Every failure that leaves the core carries exactly one Kind, so the
// HTTP layer can map it to a status code without inspecting messages.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind int

const (
	// Storage is the zero value: anything unclassified is treated as a fault.
	Storage Kind = iota
	NotFound
	AlreadyUsed
	InvalidLicense
	DuplicateUsername
	InvalidCredentials
	Unauthorized
	AccountExpired
	InvalidInput
)

var kindNames = map[Kind]string{
	Storage:            "storage_error",
	NotFound:           "not_found",
	AlreadyUsed:        "already_used",
	InvalidLicense:     "invalid_license",
	DuplicateUsername:  "duplicate_username",
	InvalidCredentials: "invalid_credentials",
	Unauthorized:       "unauthorized",
	AccountExpired:     "account_expired",
	InvalidInput:       "invalid_input",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Sentinel errors, one per kind, for errors.Is checks.
var (
	ErrStorage            = &Error{Kind: Storage}
	ErrNotFound           = &Error{Kind: NotFound}
	ErrAlreadyUsed        = &Error{Kind: AlreadyUsed}
	ErrInvalidLicense     = &Error{Kind: InvalidLicense}
	ErrDuplicateUsername  = &Error{Kind: DuplicateUsername}
	ErrInvalidCredentials = &Error{Kind: InvalidCredentials}
	ErrUnauthorized       = &Error{Kind: Unauthorized}
	ErrAccountExpired     = &Error{Kind: AccountExpired}
	ErrInvalidInput       = &Error{Kind: InvalidInput}
)

// Error is a classified failure. Op names the operation that failed and Err is the
// optional underlying cause.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

// E builds an *Error.
func E(op string, kind Kind, err error) *Error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// Errorf builds an *Error whose cause is a formatted message.
func Errorf(op string, kind Kind, format string, args ...any) *Error {
	return &Error{Op: op, Kind: kind, Err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports a match when target is an *Error of the same kind. This lets callers
// write errors.Is(err, apperr.ErrNotFound) regardless of Op and cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the outermost *Error in err's chain, or Storage when
// the chain carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Storage
}

// IsBusiness reports whether err is an expected business-rule failure rather than
// a fault.
func IsBusiness(err error) bool {
	return err != nil && KindOf(err) != Storage
}
