package escrow

import (
	"errors"
)

// common errors
var (
	ErrInvalidParameters   = errors.New("immutables do not match escrow")
	ErrInvalidSecret       = errors.New("invalid secret")
	ErrInvalidTime         = errors.New("call outside valid time window")
	ErrUnauthorized        = errors.New("unauthorized caller")
	ErrDuplicateSwap       = errors.New("escrow already created for swap")
	ErrInsufficientFunding = errors.New("insufficient escrow funding")
	ErrInvalidSchedule     = errors.New("invalid timelock schedule")
	ErrInvalidPartialFill  = errors.New("invalid partial fill")
	ErrTransferFailed      = errors.New("asset transfer failed")
	ErrAlreadyResolved     = errors.New("escrow already resolved")
	ErrEscrowNotFound      = errors.New("escrow not found")
	ErrFactoryPaused       = errors.New("factory is paused")
)

// IsRetryable returns true for errors an external coordinator should
// retry later instead of abandoning the swap.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrInvalidTime)
}

// IsFatal returns true for errors that indicate parameter tampering or
// an engine bug and should be escalated rather than retried.
func IsFatal(err error) bool {
	return errors.Is(err, ErrInvalidParameters)
}
