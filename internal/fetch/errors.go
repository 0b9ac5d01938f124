// File path: internal/fetch/errors.go
package fetch

import "errors"

// ErrStoreQueryFailed matches any *StoreQueryError.
var ErrStoreQueryFailed = errors.New("store query failed")

// StoreQueryError reports a failed lookup the fetch cannot proceed without.
// The message names the lookup only; the driver error stays reachable
// through Unwrap.
type StoreQueryError struct {
	Lookup string
	Err    error
}

func (e *StoreQueryError) Error() string {
	return ErrStoreQueryFailed.Error() + ": " + e.Lookup
}

func (e *StoreQueryError) Unwrap() error {
	return e.Err
}

func (e *StoreQueryError) Is(target error) bool {
	return target == ErrStoreQueryFailed
}
