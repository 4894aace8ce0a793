package ledger

import "errors"

var (
	ErrNameRequired    = errors.New("a contributor name is required for non-anonymous contributions")
	ErrNameTooLong     = errors.New("the contributor name must not be longer than 200 characters")
	ErrNotesTooLong    = errors.New("the notes must not be longer than 1000 characters")
	ErrBudgetIDMissing = errors.New("the budget ID must be set")

	ErrAmountTooLarge       = errors.New("the contribution amount exceeds the maximum representable amount")
	ErrAmountRaisedOverflow = errors.New("recording this contribution would exceed the maximum representable budget total")

	ErrBudgetNotOpen      = errors.New("the budget does not accept contributions because it is not open")
	ErrDepartmentMismatch = errors.New("the contribution department does not match the department of the budget")

	// ErrStorage is returned when the underlying storage keeps failing
	// after all retries are exhausted. No contribution has been
	// recorded when a caller sees this error.
	ErrStorage = errors.New("the contribution could not be recorded due to a storage error, please try again")

	// errConcurrentUpdate is returned from a single attempt when the
	// guarded budget update matched no row while the budget is still
	// open. The attempt is rolled back and retried.
	errConcurrentUpdate = errors.New("the budget was changed by a concurrent transaction")
)
