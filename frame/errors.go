package frame

import "errors"

var (
	// Client errors, answered with a 400 instead of a rendered step.
	ErrMalformedRequest     = errors.New("malformed client request")
	ErrInvalidDelegateInput = errors.New("invalid delegate address")

	ErrUnknownNetwork = errors.New("unknown network")

	ErrMissingAddress           = errors.New("missing address")
	ErrUserLookupFailed         = errors.New("user lookup failed")
	ErrMissingDelegate          = errors.New("missing delegate")
	ErrDelegateNotFound         = errors.New("delegate not found")
	ErrSameDelegate             = errors.New("same delegate")
	ErrChainReadFailure         = errors.New("chain read failure")
	ErrMissingTransaction       = errors.New("missing transaction")
	ErrTransactionReverted      = errors.New("transaction reverted")
	ErrTransactionStatusUnknown = errors.New("transaction status unknown")
	ErrMalformedContinuation    = errors.New("malformed continuation")
)

// IsClientError reports whether err should be answered with a client error
// status rather than a rendered step.
func IsClientError(err error) bool {
	return errors.Is(err, ErrMalformedRequest) || errors.Is(err, ErrInvalidDelegateInput)
}
