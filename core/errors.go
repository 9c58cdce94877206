package core

import "errors"

var (
	// ErrMalformedMessage is returned when a challenge message fails structural parsing
	ErrMalformedMessage = errors.New("malformed challenge message")

	// ErrDomainRejected is returned when the message domain matches no allow-list pattern
	ErrDomainRejected = errors.New("domain not allowed")

	// ErrDomainMismatch is returned when the message domain differs from the expected domain
	ErrDomainMismatch = errors.New("domain mismatch")

	// ErrNonceMismatch is returned when the message nonce differs from the expected nonce
	ErrNonceMismatch = errors.New("nonce mismatch")

	// ErrMessageExpired is returned when the message expiration time has passed
	ErrMessageExpired = errors.New("message has expired")

	// ErrIssuedInFuture is returned when the message issue time is ahead of the clock
	ErrIssuedInFuture = errors.New("message issued in the future")

	// ErrKeyAddressMismatch is returned when the address derived from the public key
	// differs from the address claimed in the message
	ErrKeyAddressMismatch = errors.New("public key does not match address")

	// ErrInvalidSignature is returned when signature verification fails
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrInvalidOrExpiredNonce is returned when nonce consumption finds no live record
	ErrInvalidOrExpiredNonce = errors.New("invalid or expired nonce")

	// ErrConfigurationMissing is returned when the server secret or allow-list is absent
	ErrConfigurationMissing = errors.New("server configuration missing")

	// ErrIdentityStore is returned when the external identity store fails
	ErrIdentityStore = errors.New("identity store operation failed")

	// ErrStoreUnavailable is returned when the nonce store cannot be reached
	ErrStoreUnavailable = errors.New("nonce store unavailable")

	// ErrAlreadyExists is returned when a wallet mapping insert loses a uniqueness race
	ErrAlreadyExists = errors.New("wallet mapping already exists")
)
