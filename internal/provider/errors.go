package provider

import "errors"

// Sentinel errors returned by lookup providers. Callers should use
// errors.Is, since the values are usually wrapped with context.
var (
	// ErrInvalidIdentifier means the identifier could not be normalized to
	// an ISBN-13. No request is made.
	ErrInvalidIdentifier = errors.New("invalid identifier")

	// ErrNoResults means the service answered but had nothing usable:
	// a non-200 status, an empty body, or zero matches.
	ErrNoResults = errors.New("no results")

	// ErrTransport wraps failures below HTTP (DNS, refused connections,
	// timeouts, truncated bodies).
	ErrTransport = errors.New("transport failure")

	// ErrUnsupportedField is returned when a query lookup is asked to
	// search by a field it cannot serve.
	ErrUnsupportedField = errors.New("unsupported search field")

	// ErrMissingTitle is returned by the normalizer for a hit without a title.
	ErrMissingTitle = errors.New("entry has no title")
)
