package paystack

import "errors"

var (
	// ErrInvalidConfig is returned when the client configuration is incomplete
	ErrInvalidConfig = errors.New("invalid paystack configuration")

	// ErrUnauthorized is returned when the secret key is rejected
	ErrUnauthorized = errors.New("unauthorized: invalid secret key")

	// ErrTransactionNotFound is returned when the reference is unknown to the gateway
	ErrTransactionNotFound = errors.New("transaction reference not found")

	// ErrVerificationFailed is returned when the gateway reports a non-success status
	ErrVerificationFailed = errors.New("transaction verification failed")

	// ErrNetworkError is returned on transport failures
	ErrNetworkError = errors.New("network error")
)
