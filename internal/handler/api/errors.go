package api

import (
	"context"
	"errors"

	domrepo "FinDash/internal/domain/repository"
	"FinDash/internal/services/forecast"
	xhttp "FinDash/pkg/http"
)

// toAppError maps domain errors onto transport errors.
func toAppError(err error) *xhttp.AppError {
	switch {
	case errors.Is(err, forecast.ErrInvalidInput):
		return xhttp.UnprocessableError("revenue series cannot be fitted").WithError(err)
	case errors.Is(err, domrepo.ErrUnavailable):
		return xhttp.UnavailableError("dashboard data is not available yet").WithError(err)
	case errors.Is(err, context.DeadlineExceeded):
		return xhttp.UnavailableError("request timed out").WithError(err)
	default:
		return xhttp.InternalError("Something went wrong").WithError(err)
	}
}
