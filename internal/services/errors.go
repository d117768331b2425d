package services

import (
	"errors"
	"fmt"
)

// ErrorKind classifies ledger failures so the API layer can map them without
// inspecting engine internals.
type ErrorKind int

const (
	KindStorage ErrorKind = iota
	KindValidation
	KindNotFound
	KindBusinessRule
	KindConflict
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindBusinessRule:
		return "business_rule"
	case KindConflict:
		return "conflict"
	default:
		return "storage"
	}
}

// Error is the single error type returned by the ledger services.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on Code so wrapped copies of a sentinel still satisfy errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Kind == t.Kind
}

var (
	ErrInvalidAmount    = &Error{Kind: KindValidation, Code: "invalid_amount", Message: "amount must be a positive number of minor units"}
	ErrSameAccount      = &Error{Kind: KindValidation, Code: "same_account", Message: "cannot transfer to the same account"}
	ErrInvalidCurrency  = &Error{Kind: KindValidation, Code: "invalid_currency", Message: "currency must be a 3-letter ISO 4217 code"}
	ErrCurrencyMismatch = &Error{Kind: KindValidation, Code: "currency_mismatch", Message: "accounts must share a currency"}
	ErrInvalidRequest   = &Error{Kind: KindValidation, Code: "invalid_request", Message: "invalid request"}

	ErrAccountNotFound = &Error{Kind: KindNotFound, Code: "account_not_found", Message: "account not found"}
	ErrOwnerNotFound   = &Error{Kind: KindNotFound, Code: "owner_not_found", Message: "account holder not found"}

	ErrInsufficientFunds = &Error{Kind: KindBusinessRule, Code: "insufficient_funds", Message: "insufficient funds"}

	ErrAccountNumberExhausted = &Error{Kind: KindConflict, Code: "account_number_exhausted", Message: "could not generate a unique account number"}
	ErrConcurrentUpdate       = &Error{Kind: KindConflict, Code: "concurrent_update", Message: "account was modified concurrently"}
)

// wrap returns a copy of sentinel carrying cause.
func wrap(sentinel *Error, cause error) *Error {
	e := *sentinel
	e.Err = cause
	return &e
}

func storageError(op string, err error) error {
	return &Error{Kind: KindStorage, Code: "storage_error", Message: op, Err: err}
}

// KindOf reports the classification of err. Unclassified errors are storage
// errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorage
}

// CodeOf returns the stable error code, or "internal_error" for unclassified
// errors.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return "internal_error"
}
