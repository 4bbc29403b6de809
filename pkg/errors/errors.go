package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrCreditNotFound       = errors.New("credit not found")
	ErrScenarioNotFound     = errors.New("scenario not found")
	ErrInstrumentNotFound   = errors.New("instrument not found")
	ErrInvalidCredit        = errors.New("invalid credit")
	ErrInvalidSchedule      = errors.New("invalid payment schedule")
	ErrInvalidScenario      = errors.New("invalid rate scenario")
	ErrInvalidRate          = errors.New("invalid reference rate")
	ErrInvalidInstrument    = errors.New("invalid hedging instrument")
	ErrScheduleNotGenerated = errors.New("payment schedule could not be generated")
	ErrEditIndexOutOfRange  = errors.New("schedule entry index out of range")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
	Details interface{}
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeCreditNotFound       = "CREDIT_NOT_FOUND"
	ErrCodeScenarioNotFound     = "SCENARIO_NOT_FOUND"
	ErrCodeInstrumentNotFound   = "INSTRUMENT_NOT_FOUND"
	ErrCodeValidationFailed     = "VALIDATION_FAILED"
	ErrCodeInvalidSchedule      = "INVALID_SCHEDULE"
	ErrCodeInvalidInstrument    = "INVALID_INSTRUMENT"
	ErrCodeScheduleNotGenerated = "SCHEDULE_NOT_GENERATED"
	ErrCodeEditIndexOutOfRange  = "EDIT_INDEX_OUT_OF_RANGE"
	ErrCodeDatabaseError        = "DATABASE_ERROR"
	ErrCodeCacheError           = "CACHE_ERROR"
)

func WrapCreditNotFound(id int64) *BusinessError {
	return NewBusinessError(
		ErrCodeCreditNotFound,
		fmt.Sprintf("Credit with ID %d not found", id),
		ErrCreditNotFound,
	)
}

func WrapScenarioNotFound(id int64) *BusinessError {
	return NewBusinessError(
		ErrCodeScenarioNotFound,
		fmt.Sprintf("Scenario with ID %d not found", id),
		ErrScenarioNotFound,
	)
}

func WrapInstrumentNotFound(id int64) *BusinessError {
	return NewBusinessError(
		ErrCodeInstrumentNotFound,
		fmt.Sprintf("Instrument with ID %d not found", id),
		ErrInstrumentNotFound,
	)
}

// WrapValidationFailed carries the individual validation records in Details.
func WrapValidationFailed(sentinel error, details interface{}) *BusinessError {
	e := NewBusinessError(ErrCodeValidationFailed, "validation failed", sentinel)
	e.Details = details
	return e
}

func WrapInvalidSchedule(details interface{}) *BusinessError {
	e := NewBusinessError(ErrCodeInvalidSchedule, "payment schedule has errors", ErrInvalidSchedule)
	e.Details = details
	return e
}

func WrapInvalidInstrument(id int64, reason string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidInstrument,
		fmt.Sprintf("Instrument %d: %s", id, reason),
		ErrInvalidInstrument,
	)
}

func WrapScheduleNotGenerated(creditID int64) *BusinessError {
	return NewBusinessError(
		ErrCodeScheduleNotGenerated,
		fmt.Sprintf("Payment schedule for credit %d could not be generated", creditID),
		ErrScheduleNotGenerated,
	)
}

func WrapEditIndexOutOfRange(index, length int) *BusinessError {
	return NewBusinessError(
		ErrCodeEditIndexOutOfRange,
		fmt.Sprintf("Entry index %d outside schedule of %d entries", index, length),
		ErrEditIndexOutOfRange,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"Cache operation failed",
		err,
	)
}

// CodeOf returns the business code carried by err, or "" when there is none.
func CodeOf(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}
