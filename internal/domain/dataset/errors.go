package dataset

import "errors"

// Sentinel error kinds for this package.
var (
	ErrMalformedIndex = errors.New("malformed dataset index")
)
