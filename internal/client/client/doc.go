// Package client is the keygate API client used by the CLI.
//
// HTTPClient speaks the server's JSON API. Failures come back as *APIError
// carrying the HTTP status and the server's detail message; the common
// conditions also match the sentinel errors ErrUnauthorized, ErrForbidden
// and ErrUnavailable via errors.Is.
package client
