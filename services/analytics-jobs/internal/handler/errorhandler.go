package handler

import (
	"context"
	"errors"
	"net/http"

	"linkhub/pkg/problemdetails"
	"linkhub/services/analytics-jobs/internal/logic"
)

// ErrorHandler renders logic errors as RFC 7807 problem details.
func ErrorHandler(_ context.Context, err error) (int, any) {
	var problem *problemdetails.ProblemDetail
	switch {
	case errors.Is(err, logic.ErrStoreUnavailable):
		problem = problemdetails.NewUnavailable(problemdetails.TypeStoreUnavailable, err.Error())
	default:
		problem = problemdetails.New(
			http.StatusInternalServerError,
			problemdetails.TypeInternalError,
			"Internal Server Error",
			err.Error(),
		)
	}
	return problem.Status, problem
}
