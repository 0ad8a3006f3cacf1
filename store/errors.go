package store

import "errors"

var (
	// ErrPhoneExists is returned when a registration transaction is
	// cancelled because one of its record keys already exists. The lock
	// record key is the usual culprit (see mapTransactionError).
	ErrPhoneExists = errors.New("enroll: phone number already exists")

	// ErrNotFound is returned when no customer record exists at the
	// requested key.
	ErrNotFound = errors.New("enroll: customer not found")
)
