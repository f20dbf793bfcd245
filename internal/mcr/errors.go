package mcr

import "errors"

// ErrSessionNotFound reports an operation against a session id that does
// not exist or has already been deleted.
var ErrSessionNotFound = errors.New("session not found")
