package core

// ValidationResult is the uniform outcome of every decode and validate operation.
// Empty strings stand for absent values. The struct is comparable, so two results
// computed from the same inputs compare equal with ==.
type ValidationResult struct {
	Valid             bool   `json:"valid" yaml:"valid"`
	Result            string `json:"result,omitempty" yaml:"result,omitempty"`
	ResultDescription string `json:"resultDescription,omitempty" yaml:"resultDescription,omitempty"`
	Message           string `json:"message,omitempty" yaml:"message,omitempty"`
}

// Accepted builds a valid result carrying a decoded value and its display text.
func Accepted(result, description string) ValidationResult {
	return ValidationResult{Valid: true, Result: result, ResultDescription: description}
}

// Rejected builds an invalid result with the given business message.
func Rejected(message string) ValidationResult {
	return ValidationResult{Valid: false, Message: message}
}

// RejectedWith builds an invalid result that still carries the decoded value for display.
func RejectedWith(result, description, message string) ValidationResult {
	return ValidationResult{Valid: false, Result: result, ResultDescription: description, Message: message}
}
