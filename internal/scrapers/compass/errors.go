package compass

import "errors"

var (
	// ErrNotAuthenticated is returned by any operation that needs a session
	// when Login has not succeeded yet.
	ErrNotAuthenticated = errors.New("compass: not authenticated, call Login first")
	// ErrLoginFailed wraps transport failures and unsuccessful responses during login.
	ErrLoginFailed = errors.New("compass: login failed")
	// ErrMetadataExtraction is returned when the user id could not be found in
	// either the login response or the home page.
	ErrMetadataExtraction = errors.New("compass: failed to extract session metadata")
	// ErrTransport wraps network failures, timeouts and non-2xx responses of
	// authenticated requests.
	ErrTransport = errors.New("compass: request failed")
	// ErrMalformedResponse is returned when the portal answers with a body
	// that is not valid JSON.
	ErrMalformedResponse = errors.New("compass: malformed response")
	// ErrInvalidDate is returned when a date argument is not formatted as YYYY-MM-DD.
	ErrInvalidDate = errors.New("compass: invalid date")
)
