package problemdetails

import (
	"fmt"
	"net/http"
)

const (
	TypeNotFound          = "not-found"
	TypeInternalError     = "internal-error"
	TypeValidationError   = "validation-error"
	TypeStoreUnavailable  = "store-unavailable"
	TypeBrokerUnavailable = "broker-unavailable"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ProblemDetail struct {
	Type   string       `json:"type"`
	Title  string       `json:"title"`
	Status int          `json:"status"`
	Detail string       `json:"detail"`
	Errors []FieldError `json:"errors,omitempty"`
}

func (p *ProblemDetail) Error() string {
	return fmt.Sprintf("%s: %s", p.Title, p.Detail)
}

func New(status int, problemType, title, detail string) *ProblemDetail {
	return &ProblemDetail{
		Type:   typeURI(problemType),
		Title:  title,
		Status: status,
		Detail: detail,
	}
}

func NewValidation(errors []FieldError) *ProblemDetail {
	return &ProblemDetail{
		Type:   typeURI(TypeValidationError),
		Title:  "Validation Failed",
		Status: http.StatusBadRequest,
		Detail: "Request validation failed",
		Errors: errors,
	}
}

// NewUnavailable reports a dependency the request could not reach.
func NewUnavailable(problemType, detail string) *ProblemDetail {
	return New(http.StatusServiceUnavailable, problemType, "Service Unavailable", detail)
}

func typeURI(problemType string) string {
	return fmt.Sprintf("https://linkhub.dev/problems/%s", problemType)
}
