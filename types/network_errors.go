package types

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

type SubmitErrorKind int

const (
	// The wallet provider refused or failed the submission (user rejected, insufficient funds, node
	// unavailable...).
	KindProvider SubmitErrorKind = iota
	// The transaction was mined but its execution failed on chain.
	KindReverted
	// A step that has to succeed before the submission (gas estimate, signature, backend args) failed.
	KindPrerequisite
	// The transaction options did not pass validation.
	KindInvalidOptions
)

func (k SubmitErrorKind) String() string {
	switch k {
	case KindProvider:
		return "provider"
	case KindReverted:
		return "reverted"
	case KindPrerequisite:
		return "prerequisite"
	case KindInvalidOptions:
		return "invalid-options"
	}

	return "unknown"
}

var (
	ErrReverted               = errors.New("reverted")
	ErrProviderRequired       = errors.New("provider required")
	ErrAuthenticationRequired = errors.New("authentication-required")
	ErrAlreadyPending         = errors.New("transaction is already being watched")
	ErrAlreadyCompleted       = errors.New("transaction has already completed")
	ErrNotConfirmed           = errors.New("transaction was not confirmed in time")
)

// SubmitError is returned by the submitter. The Kind lets callers tell a revert apart from a
// provider failure.
type SubmitError struct {
	Kind SubmitErrorKind
	Hash common.Hash
	Err  error
}

func NewSubmitError(kind SubmitErrorKind, hash common.Hash, err error) error {
	return &SubmitError{
		Kind: kind,
		Hash: hash,
		Err:  err,
	}
}

func (e *SubmitError) Error() string {
	if e.Hash != (common.Hash{}) {
		return fmt.Sprintf("submit %s (tx %s): %v", e.Kind, e.Hash.Hex(), e.Err)
	}

	return fmt.Sprintf("submit %s: %v", e.Kind, e.Err)
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

func (e *SubmitError) Is(target error) bool {
	return target == ErrReverted && e.Kind == KindReverted
}

// IsReverted returns true if err reports a transaction that was mined but reverted.
func IsReverted(err error) bool {
	var submitErr *SubmitError
	if errors.As(err, &submitErr) {
		return submitErr.Kind == KindReverted
	}

	return errors.Is(err, ErrReverted)
}

// ResponseError is returned when the marketplace backend answers with a non 2xx status.
type ResponseError struct {
	Status int
	Body   string
}

func NewResponseError(status int, body []byte) error {
	return &ResponseError{Status: status, Body: string(body)}
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Body)
}
