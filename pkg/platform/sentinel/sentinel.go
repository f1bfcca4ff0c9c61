package sentinel

import "errors"

// Sentinel errors for storage-level facts. Stores return these (optionally
// wrapped) and the service layer translates them into domain errors with
// user-facing codes.
//
// These describe the state of a stored entity, not a validation failure:
// - ErrNotFound: list or item does not exist in the store
// - ErrAlreadyExists: an active entity with the same normalized name exists
// - ErrUnavailable: the underlying storage engine failed or is unreachable
//
// Validation of caller input (quantities, coordinates) happens in the service
// with pkg/domain-errors; it never reaches the store.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrUnavailable   = errors.New("storage unavailable")
)
