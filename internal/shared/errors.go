// Package shared defines the sentinel errors exchanged between the account
// workflows, the repositories, and the transport layer.
package shared

import "errors"

var (

	// repository-level errors
	ErrorNotFound          = errors.New("not found")
	ErrorDependencyFailure = errors.New("dependency failure")

	// registration errors
	ErrorWeakPassword  = errors.New("password does not satisfy the policy")
	ErrorUsernameTaken = errors.New("username already exists")
	ErrorEmailTaken    = errors.New("email already exists")

	// confirmation / login errors
	ErrorInvalidRequest     = errors.New("invalid request")
	ErrorUserNotFound       = errors.New("user not found")
	ErrorInvalidCredentials = errors.New("invalid username or password")
	ErrorEmailNotConfirmed  = errors.New("email address not confirmed")

	// admin elevation errors. ErrorAlreadyAdmin and ErrorRequestPending are
	// the two distinct RequestAdmin denial reasons; ErrorInvalidState covers
	// approve/reject on a target that has no pending request.
	ErrorAlreadyAdmin   = errors.New("account already has admin access")
	ErrorRequestPending = errors.New("admin request already pending")
	ErrorInvalidState   = errors.New("operation not valid in current state")
	ErrorUnauthorized   = errors.New("admin role required")

	// session errors
	ErrorInvalidToken = errors.New("invalid token")
)
