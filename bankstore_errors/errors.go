// Provides common bankstore error definitions.
package bankstore_errors

import "errors"

var (
	ErrAlreadyExists        = errors.New("bankstore: entity already exists")
	ErrNotFound             = errors.New("bankstore: entity not found")
	ErrDuplicateKey         = errors.New("bankstore: unique secondary key already taken")
	ErrPersistenceFailure   = errors.New("bankstore: backing store write failed")
	ErrSerializationFailure = errors.New("bankstore: entity could not be encoded")

	ErrImmutableKind    = errors.New("bankstore: reference kind accepts no updates or deletes")
	ErrImmutableContent = errors.New("bankstore: shared object content is frozen after creation")

	ErrRepeatedID      = errors.New("bankstore: id repeated within one batch")
	ErrVersionOverflow = errors.New("bankstore: entity version ceiling reached")

	ErrBadRow  = errors.New("bankstore: malformed persisted row")
	ErrClosed  = errors.New("bankstore: store is closed")
	ErrBadKind = errors.New("bankstore: unknown entity kind")
)
