package shared

import "errors"

// Error kinds shared by every domain package. Domain errors wrap one of these
// so the HTTP layer can map them without knowing the domain.
var (
	// ErrNotFound indicates an unknown resource id.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates a missing or malformed field; state is unchanged.
	ErrValidation = errors.New("validation failed")
	// ErrConflict indicates an action attempted in the wrong state.
	ErrConflict = errors.New("conflict")
	// ErrForbidden indicates the actor may not perform the action.
	ErrForbidden = errors.New("forbidden")
)
