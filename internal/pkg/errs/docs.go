// Package errs provides the error taxonomy of the dispatch service.
//
// Every command and query returns either a result or exactly one error whose class is one of:
//   - NotFound: ObjectNotFoundError, a referenced entity is absent
//   - Conflict: ConflictError, the persisted state does not allow the operation
//   - Validation: ValueIsInvalidError, ValueIsRequiredError, ValueIsOutOfRangeError
//   - Unavailable: UnavailableError, a store or transport failure that is safe to retry
//   - Internal: anything else
//
// Each error type follows the same pattern: a sentinel variable, a struct with the
// details, constructors with and without a cause, Error() and Unwrap(). Unwrap exposes both
// the sentinel and the cause so errors.Is works against either. KindOf maps any error onto
// its class, which is what transports use to pick a status code.
package errs
