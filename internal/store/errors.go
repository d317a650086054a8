package store

import "errors"

// Error taxonomy for the ledger core. Callers classify with errors.Is;
// wrapped messages carry the specifics.
var (
	// ErrValidation marks malformed or out-of-range input: non-positive
	// amounts, missing required fields, unknown enum values.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a reference to an entity id that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidReference marks a referentially inconsistent request, such
	// as tagging an income transaction with an expense category.
	ErrInvalidReference = errors.New("invalid reference")

	// ErrAlreadyPaid guards the one-way paid transition of an obligation.
	ErrAlreadyPaid = errors.New("installment already paid")

	// ErrAlreadyProcessed guards per-month salary idempotency.
	ErrAlreadyProcessed = errors.New("salary already processed this month")

	// ErrInsufficientQuantity marks a sell exceeding the held quantity.
	ErrInsufficientQuantity = errors.New("insufficient quantity")

	// ErrExternalService marks a price-lookup failure. It is always
	// recoverable and never accompanies a ledger mutation.
	ErrExternalService = errors.New("external service failure")
)
