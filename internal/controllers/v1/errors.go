package v1

import (
	"errors"
	"net/http"

	"github.com/palacehub/backend/internal/ledger"
	"github.com/palacehub/backend/internal/models"
)

type httpError struct {
	Error string `json:"error" example:"the specified resource ID is not a valid UUID"`
}

// status returns the appropriate HTTP status for an error
func status(err error) int {
	if errors.Is(err, models.ErrGeneral) ||
		errors.Is(err, ledger.ErrStorage) ||
		errors.Is(err, ledger.ErrAmountRaisedOverflow) {
		return http.StatusInternalServerError
	}

	if errors.Is(err, models.ErrResourceNotFound) {
		return http.StatusNotFound
	}

	if errors.Is(err, ledger.ErrBudgetNotOpen) {
		return http.StatusConflict
	}

	return http.StatusBadRequest
}
