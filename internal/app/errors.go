package app

import "fmt"

// DomainError is an operation failure the client can act on: the Status
// becomes the HTTP status and Code/Message/Details the response body.
// Anything else that escapes the service maps to a plain 500.
type DomainError struct {
	Status  int
	Code    string
	Message string
	Details any
}

func (e *DomainError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func domainError(status int, code, message string, details any) *DomainError {
	return &DomainError{
		Status:  status,
		Code:    code,
		Message: message,
		Details: details,
	}
}
