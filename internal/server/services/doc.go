// Package services contains server-side business logic: logging in and
// resolving sessions (AuthService), account management (UserService) and
// the shared array resource (ArrayService). Services return the sentinel
// errors from internal/common; the transport layer maps them to statuses.
package services
