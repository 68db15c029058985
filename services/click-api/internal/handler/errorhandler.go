package handler

import (
	"context"
	"errors"
	"net/http"

	"linkhub/pkg/problemdetails"
)

// ErrorHandler renders errors as RFC 7807 problem details. Errors that are
// not problem details come from request parsing.
func ErrorHandler(_ context.Context, err error) (int, any) {
	var problem *problemdetails.ProblemDetail
	if errors.As(err, &problem) {
		return problem.Status, problem
	}

	problem = problemdetails.New(
		http.StatusBadRequest,
		problemdetails.TypeValidationError,
		"Bad Request",
		err.Error(),
	)
	return problem.Status, problem
}
