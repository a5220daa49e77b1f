package rest

import (
	"errors"
	"net/http"

	"pricewise/domain"
)

type ResponseError struct {
	Message string `json:"message"`
}

// statusForError maps domain error values onto HTTP statuses. Anything
// unrecognized is a 500.
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrPlanNotFound),
		errors.Is(err, domain.ErrTestNotFound),
		errors.Is(err, domain.ErrVariantNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrTestCompleted):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
