package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation     = errors.New("domain: validation failed")
	ErrAuth           = errors.New("domain: catalog authentication failed")
	ErrTransientFetch = errors.New("domain: catalog fetch failed")
	ErrNotFound       = errors.New("domain: not found")
	ErrForbidden      = errors.New("domain: forbidden")
	ErrDuplicateItem  = errors.New("domain: item already in list")
)

// ValidationError describes rejected input. Nothing was sent upstream.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid input: %s", e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// AuthError reports a failed token exchange with the catalog.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return ErrAuth.Error()
	}
	return fmt.Sprintf("catalog authentication failed: %v", e.Err)
}

func (e *AuthError) Is(target error) bool {
	return target == ErrAuth
}

func (e *AuthError) Unwrap() error { return e.Err }

// TransientFetchError reports a failed page request. Status is zero when
// no HTTP response was received.
type TransientFetchError struct {
	Status int
	Err    error
}

func (e *TransientFetchError) Error() string {
	switch {
	case e.Status != 0 && e.Err != nil:
		return fmt.Sprintf("catalog fetch failed with status %d: %v", e.Status, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("catalog fetch failed with status %d", e.Status)
	case e.Err != nil:
		return fmt.Sprintf("catalog fetch failed: %v", e.Err)
	}
	return ErrTransientFetch.Error()
}

func (e *TransientFetchError) Is(target error) bool {
	return target == ErrTransientFetch
}

func (e *TransientFetchError) Unwrap() error { return e.Err }
