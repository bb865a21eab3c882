package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/bibkit/library-circulation-go/core"
	"github.com/bibkit/library-circulation-go/recordstore"
	"github.com/bibkit/library-circulation-go/shell"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (api *API) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if encodeErr := json.NewEncoder(w).Encode(body); encodeErr != nil && api.logger != nil {
		api.logger.Warn("failed to encode response body", "error", encodeErr.Error())
	}
}

// writeError maps the error taxonomy to HTTP status codes. Anything
// unrecognized is a 500 with a generic body; the detail goes to the log only.
func (api *API) writeError(w http.ResponseWriter, err error) {
	switch {
	case core.IsValidationError(err):
		api.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})

	case core.IsPreconditionError(err):
		api.writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})

	case errors.Is(err, recordstore.ErrNotFound):
		api.writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})

	case errors.Is(err, shell.ErrNoMetadataLookup):
		api.writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "no metadata lookup configured"})

	case shell.IsExternalFetchError(err):
		api.writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})

	case errors.Is(err, recordstore.ErrConcurrencyConflict):
		api.writeJSON(w, http.StatusConflict, errorResponse{Error: "concurrent modification, please retry"})

	default:
		if api.logger != nil {
			api.logger.Error("request failed", "error", err.Error())
		}

		api.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func (api *API) writeBadRequest(w http.ResponseWriter, reason string) {
	api.writeJSON(w, http.StatusBadRequest, errorResponse{Error: reason})
}

// pathUUID extracts and parses the named UUID path variable.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(mux.Vars(r)[name])
}

type loanResponse struct {
	ID            string     `json:"id"`
	ReferenceCode string     `json:"reference_code"`
	BookID        string     `json:"book_id"`
	BorrowerID    string     `json:"borrower_id"`
	LoanedAt      time.Time  `json:"loaned_at"`
	DueAt         time.Time  `json:"due_at"`
	ReturnedAt    *time.Time `json:"returned_at,omitempty"`
	State         string     `json:"state"`
	HasFine       bool       `json:"has_fine"`
	FineAmount    float64    `json:"fine_amount"`
	Notified      bool       `json:"notified"`
}

func loanToResponse(loan core.Loan) loanResponse {
	return loanResponse{
		ID:            loan.ID.String(),
		ReferenceCode: loan.ReferenceCode,
		BookID:        loan.BookID.String(),
		BorrowerID:    loan.BorrowerID.String(),
		LoanedAt:      loan.LoanedAt,
		DueAt:         loan.DueAt,
		ReturnedAt:    loan.ReturnedAt,
		State:         string(loan.State),
		HasFine:       loan.HasFine,
		FineAmount:    loan.FineAmount,
		Notified:      loan.Notified,
	}
}

type fineResponse struct {
	ID              string    `json:"id"`
	ReferenceCode   string    `json:"reference_code"`
	BorrowerID      string    `json:"borrower_id"`
	LoanID          string    `json:"loan_id"`
	Type            string    `json:"type"`
	Amount          float64   `json:"amount"`
	DelinquencyDays int       `json:"delinquency_days"`
	ExpiresAt       time.Time `json:"expires_at"`
	State           string    `json:"state"`
}

func fineToResponse(fine core.Fine) fineResponse {
	return fineResponse{
		ID:              fine.ID.String(),
		ReferenceCode:   fine.ReferenceCode,
		BorrowerID:      fine.BorrowerID.String(),
		LoanID:          fine.LoanID.String(),
		Type:            string(fine.Type),
		Amount:          fine.Amount,
		DelinquencyDays: fine.DelinquencyDays,
		ExpiresAt:       fine.ExpiresAt,
		State:           string(fine.State),
	}
}
