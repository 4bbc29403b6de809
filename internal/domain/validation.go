package domain

import "fmt"

const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// ValidationError is a structured validation record. Index is the schedule
// entry position, or -1 when the record refers to a field.
type ValidationError struct {
	Field    string `json:"field,omitempty"`
	Index    int    `json:"entry_index"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

func (v ValidationError) Error() string {
	if v.Index >= 0 {
		return fmt.Sprintf("entry %d: %s", v.Index, v.Message)
	}
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

func FieldError(field, message string) ValidationError {
	return ValidationError{Field: field, Index: -1, Message: message, Severity: SeverityError}
}

func EntryError(index int, field, message string) ValidationError {
	return ValidationError{Field: field, Index: index, Message: message, Severity: SeverityError}
}

func EntryWarning(index int, field, message string) ValidationError {
	return ValidationError{Field: field, Index: index, Message: message, Severity: SeverityWarning}
}

// HasErrors reports whether any record has error severity.
func HasErrors(errs []ValidationError) bool {
	for _, e := range errs {
		if e.Severity == SeverityError {
			return true
		}
	}
	return false
}
