package erp

import "errors"

// Error taxonomy for the ERP boundary. Handlers map these onto HTTP statuses;
// callers may retry ErrUpstream at a higher layer, never ErrAuth.
var (
	// ErrAuth means the ERP rejected the credentials or the login response
	// did not carry a recognizable success indicator.
	ErrAuth = errors.New("erp: authentication rejected")

	// ErrSession means the session token could not be extracted from the
	// redirect response by any strategy.
	ErrSession = errors.New("erp: session token not found")

	// ErrUpstream means the ERP answered with a non-success status, a
	// non-JSON body, or did not answer within the timeout.
	ErrUpstream = errors.New("erp: upstream failure")
)
