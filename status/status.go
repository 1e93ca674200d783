package status

import "errors"

var (
	ErrEventNotFound    = errors.New("event: event not found")
	ErrCustomerNotFound = errors.New("customer: customer not found")
	ErrUserNotFound     = errors.New("user: user not found")

	ErrAlreadyVerified = errors.New("verify: customer already verified")
	ErrAlreadyDeleted  = errors.New("verify: customer already deleted")
	ErrEventMismatch   = errors.New("verify: ticket not valid for this event")

	ErrCapacityReached = errors.New("register: event capacity reached")
	ErrInvalidInput    = errors.New("register: invalid registration input")

	ErrUserExists         = errors.New("auth: user already registered")
	ErrInvalidCredentials = errors.New("auth: invalid email or password")
)
