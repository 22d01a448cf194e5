package domain

import "errors"

// ErrNotFound is returned by store and service functions when the
// requested record does not exist in its partition. Callers should
// check with errors.Is; storage failures are returned as distinct,
// wrapped errors and must not be treated as "missing".
var ErrNotFound = errors.New("not found")

// ErrDuplicateUsername is returned by UserStore.Add when another user
// already holds the same username, compared case-insensitively.
var ErrDuplicateUsername = errors.New("username already taken")

// ErrInvalidCredentials is returned on login when the username is
// unknown or the password does not match. The two cases are deliberately
// indistinguishable to the caller.
var ErrInvalidCredentials = errors.New("invalid credentials")
