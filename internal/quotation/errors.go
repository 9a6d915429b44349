package quotation

import (
	"fmt"

	"github.com/interport-cargo/interport/internal/shared"
)

// Domain errors for the quotation lifecycle. Each wraps a shared kind.
var (
	// Lookup errors.
	ErrRequestNotFound = fmt.Errorf("%w: quotation request", shared.ErrNotFound)
	ErrDetailsNotFound = fmt.Errorf("%w: quotation details", shared.ErrNotFound)

	// Transition guards.
	ErrRequestNotPending  = fmt.Errorf("%w: request is not pending", shared.ErrConflict)
	ErrRequestNotAccepted = fmt.Errorf("%w: request is not accepted", shared.ErrConflict)
	ErrAlreadyPrepared    = fmt.Errorf("%w: a quotation has already been prepared for this request", shared.ErrConflict)
	ErrNotPrepared        = fmt.Errorf("%w: no quotation has been prepared for this request", shared.ErrConflict)
	ErrDetailsNotPending  = fmt.Errorf("%w: quotation has already been answered", shared.ErrConflict)
	ErrConcurrentUpdate   = fmt.Errorf("%w: request changed concurrently, reload and retry", shared.ErrConflict)

	// Validation errors.
	ErrMessageRequired = fmt.Errorf("%w: rejection message is required", shared.ErrValidation)
	ErrReasonRequired  = fmt.Errorf("%w: rejection reason is required", shared.ErrValidation)
	ErrScopeRequired   = fmt.Errorf("%w: scope is required", shared.ErrValidation)
	ErrTextTooLong     = fmt.Errorf("%w: text exceeds %d characters", shared.ErrValidation, maxTextLength)
)
