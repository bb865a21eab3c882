package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/bibkit/library-circulation-go/core"
	"github.com/bibkit/library-circulation-go/features/command/cancelfine"
	"github.com/bibkit/library-circulation-go/features/command/confirmloan"
	"github.com/bibkit/library-circulation-go/features/command/openloan"
	"github.com/bibkit/library-circulation-go/features/command/payfine"
	"github.com/bibkit/library-circulation-go/features/command/reportbookdamaged"
	"github.com/bibkit/library-circulation-go/features/command/reportbooklost"
	"github.com/bibkit/library-circulation-go/features/command/returnloan"
	"github.com/bibkit/library-circulation-go/features/command/sweepoverdueloans"
	"github.com/bibkit/library-circulation-go/features/query/borrowerstanding"
	"github.com/bibkit/library-circulation-go/features/query/overdueloans"
	"github.com/bibkit/library-circulation-go/recordstore"
	"github.com/bibkit/library-circulation-go/shell"
)

func (api *API) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

type registerBorrowerRequest struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	NationalID string `json:"national_id"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
}

type registerBorrowerResponse struct {
	ID         string `json:"id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	NationalID string `json:"national_id"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
}

func (api *API) handleRegisterBorrower(w http.ResponseWriter, r *http.Request) {
	var req registerBorrowerRequest
	if decodeErr := json.NewDecoder(r.Body).Decode(&req); decodeErr != nil {
		api.writeBadRequest(w, "invalid request body")
		return
	}

	if req.FirstName == "" || req.LastName == "" {
		api.writeError(w, core.NewValidationError("borrower name must not be empty"))
		return
	}

	if validationErr := shell.ValidateNationalID(req.NationalID); validationErr != nil {
		api.writeError(w, validationErr)
		return
	}

	borrower := core.Borrower{
		ID:         uuid.New(),
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		NationalID: req.NationalID,
		Email:      req.Email,
		Phone:      req.Phone,
	}

	txErr := api.store.WithinTx(r.Context(), func(ctx context.Context, access recordstore.Access) error {
		return access.InsertBorrower(ctx, borrower)
	})
	if txErr != nil {
		api.writeError(w, txErr)
		return
	}

	api.writeJSON(w, http.StatusCreated, registerBorrowerResponse{
		ID:         borrower.ID.String(),
		FirstName:  borrower.FirstName,
		LastName:   borrower.LastName,
		NationalID: borrower.NationalID,
		Email:      borrower.Email,
		Phone:      borrower.Phone,
	})
}

type openLoanRequest struct {
	BookID     string     `json:"book_id"`
	BorrowerID string     `json:"borrower_id"`
	LoanedAt   *time.Time `json:"loaned_at,omitempty"`
}

func (api *API) handleOpenLoan(w http.ResponseWriter, r *http.Request) {
	var req openLoanRequest
	if decodeErr := json.NewDecoder(r.Body).Decode(&req); decodeErr != nil {
		api.writeBadRequest(w, "invalid request body")
		return
	}

	bookID, parseErr := uuid.Parse(req.BookID)
	if parseErr != nil {
		api.writeBadRequest(w, "invalid book id")
		return
	}

	borrowerID, parseErr := uuid.Parse(req.BorrowerID)
	if parseErr != nil {
		api.writeBadRequest(w, "invalid borrower id")
		return
	}

	loanedAt := time.Time{}
	if req.LoanedAt != nil {
		loanedAt = *req.LoanedAt
	}

	loan, handleErr := api.openLoan.Handle(r.Context(), openloan.BuildCommand(bookID, borrowerID, loanedAt))
	if handleErr != nil {
		api.writeError(w, handleErr)
		return
	}

	api.writeJSON(w, http.StatusCreated, loanToResponse(loan))
}

func (api *API) handleConfirmLoan(w http.ResponseWriter, r *http.Request) {
	loanID, parseErr := pathUUID(r, "id")
	if parseErr != nil {
		api.writeBadRequest(w, "invalid loan id")
		return
	}

	loan, handleErr := api.confirmLoan.Handle(r.Context(), confirmloan.BuildCommand(loanID))
	if handleErr != nil {
		api.writeError(w, handleErr)
		return
	}

	api.writeJSON(w, http.StatusOK, loanToResponse(loan))
}

type returnLoanResponse struct {
	Loan loanResponse  `json:"loan"`
	Fine *fineResponse `json:"fine,omitempty"`
}

func (api *API) handleReturnLoan(w http.ResponseWriter, r *http.Request) {
	loanID, parseErr := pathUUID(r, "id")
	if parseErr != nil {
		api.writeBadRequest(w, "invalid loan id")
		return
	}

	result, handleErr := api.returnLoan.Handle(r.Context(), returnloan.BuildCommand(loanID))
	if handleErr != nil {
		api.writeError(w, handleErr)
		return
	}

	response := returnLoanResponse{Loan: loanToResponse(result.Loan)}
	if result.Fine != nil {
		fine := fineToResponse(*result.Fine)
		response.Fine = &fine
	}

	api.writeJSON(w, http.StatusOK, response)
}

type reportResponse struct {
	Loan loanResponse `json:"loan"`
	Fine fineResponse `json:"fine"`
}

func (api *API) handleReportDamaged(w http.ResponseWriter, r *http.Request) {
	loanID, parseErr := pathUUID(r, "id")
	if parseErr != nil {
		api.writeBadRequest(w, "invalid loan id")
		return
	}

	decision, handleErr := api.reportDamaged.Handle(r.Context(), reportbookdamaged.BuildCommand(loanID))
	if handleErr != nil {
		api.writeError(w, handleErr)
		return
	}

	api.writeJSON(w, http.StatusOK, reportResponse{
		Loan: loanToResponse(decision.Loan),
		Fine: fineToResponse(decision.Fine),
	})
}

func (api *API) handleReportLost(w http.ResponseWriter, r *http.Request) {
	loanID, parseErr := pathUUID(r, "id")
	if parseErr != nil {
		api.writeBadRequest(w, "invalid loan id")
		return
	}

	decision, handleErr := api.reportLost.Handle(r.Context(), reportbooklost.BuildCommand(loanID))
	if handleErr != nil {
		api.writeError(w, handleErr)
		return
	}

	api.writeJSON(w, http.StatusOK, reportResponse{
		Loan: loanToResponse(decision.Loan),
		Fine: fineToResponse(decision.Fine),
	})
}

func (api *API) handlePayFine(w http.ResponseWriter, r *http.Request) {
	fineID, parseErr := pathUUID(r, "id")
	if parseErr != nil {
		api.writeBadRequest(w, "invalid fine id")
		return
	}

	fine, handleErr := api.payFine.Handle(r.Context(), payfine.BuildCommand(fineID))
	if handleErr != nil {
		api.writeError(w, handleErr)
		return
	}

	api.writeJSON(w, http.StatusOK, fineToResponse(fine))
}

func (api *API) handleCancelFine(w http.ResponseWriter, r *http.Request) {
	fineID, parseErr := pathUUID(r, "id")
	if parseErr != nil {
		api.writeBadRequest(w, "invalid fine id")
		return
	}

	fine, handleErr := api.cancelFine.Handle(r.Context(), cancelfine.BuildCommand(fineID))
	if handleErr != nil {
		api.writeError(w, handleErr)
		return
	}

	api.writeJSON(w, http.StatusOK, fineToResponse(fine))
}

type sweepResponse struct {
	LoansExamined  int `json:"loans_examined"`
	LoansFined     int `json:"loans_fined"`
	LoansSkipped   int `json:"loans_skipped"`
	NotifyFailures int `json:"notify_failures"`
}

func (api *API) handleSweep(w http.ResponseWriter, r *http.Request) {
	result, handleErr := api.sweep.Handle(r.Context(), sweepoverdueloans.BuildCommand())
	if handleErr != nil {
		api.writeError(w, handleErr)
		return
	}

	api.writeJSON(w, http.StatusOK, sweepResponse{
		LoansExamined:  result.LoansExamined,
		LoansFined:     result.LoansFined,
		LoansSkipped:   result.LoansSkipped,
		NotifyFailures: result.NotifyFailures,
	})
}

type overdueLoanItem struct {
	LoanID          string    `json:"loan_id"`
	ReferenceCode   string    `json:"reference_code"`
	BookID          string    `json:"book_id"`
	BorrowerID      string    `json:"borrower_id"`
	DueAt           time.Time `json:"due_at"`
	DelinquencyDays int       `json:"delinquency_days"`
	Notified        bool      `json:"notified"`
}

type overdueLoansResponse struct {
	Loans []overdueLoanItem `json:"loans"`
	Count int               `json:"count"`
}

func (api *API) handleOverdueLoans(w http.ResponseWriter, r *http.Request) {
	result, handleErr := api.overdueLoans.Handle(r.Context(), overdueloans.BuildQuery())
	if handleErr != nil {
		api.writeError(w, handleErr)
		return
	}

	items := make([]overdueLoanItem, 0, len(result.Loans))
	for _, loan := range result.Loans {
		items = append(items, overdueLoanItem{
			LoanID:          loan.LoanID,
			ReferenceCode:   loan.ReferenceCode,
			BookID:          loan.BookID,
			BorrowerID:      loan.BorrowerID,
			DueAt:           loan.DueAt,
			DelinquencyDays: loan.DelinquencyDays,
			Notified:        loan.Notified,
		})
	}

	api.writeJSON(w, http.StatusOK, overdueLoansResponse{Loans: items, Count: result.Count})
}

type standingFineItem struct {
	FineID          string    `json:"fine_id"`
	ReferenceCode   string    `json:"reference_code"`
	LoanID          string    `json:"loan_id"`
	Type            string    `json:"type"`
	State           string    `json:"state"`
	Amount          float64   `json:"amount"`
	DelinquencyDays int       `json:"delinquency_days"`
	ExpiresAt       time.Time `json:"expires_at"`
}

type standingResponse struct {
	BorrowerID       string             `json:"borrower_id"`
	BorrowerName     string             `json:"borrower_name"`
	Fines            []standingFineItem `json:"fines"`
	PendingFineCount int                `json:"pending_fine_count"`
	PendingTotal     float64            `json:"pending_total"`
	BlockedForLoans  bool               `json:"blocked_for_loans"`
}

func (api *API) handleBorrowerStanding(w http.ResponseWriter, r *http.Request) {
	borrowerID, parseErr := pathUUID(r, "id")
	if parseErr != nil {
		api.writeBadRequest(w, "invalid borrower id")
		return
	}

	result, handleErr := api.standing.Handle(r.Context(), borrowerstanding.BuildQuery(borrowerID))
	if handleErr != nil {
		api.writeError(w, handleErr)
		return
	}

	fines := make([]standingFineItem, 0, len(result.Fines))
	for _, fine := range result.Fines {
		fines = append(fines, standingFineItem{
			FineID:          fine.FineID,
			ReferenceCode:   fine.ReferenceCode,
			LoanID:          fine.LoanID,
			Type:            string(fine.Type),
			State:           string(fine.State),
			Amount:          fine.Amount,
			DelinquencyDays: fine.DelinquencyDays,
			ExpiresAt:       fine.ExpiresAt,
		})
	}

	api.writeJSON(w, http.StatusOK, standingResponse{
		BorrowerID:       result.BorrowerID,
		BorrowerName:     result.BorrowerName,
		Fines:            fines,
		PendingFineCount: result.PendingFineCount,
		PendingTotal:     result.PendingTotal,
		BlockedForLoans:  result.BlockedForLoans,
	})
}

type catalogBookResponse struct {
	Title         string   `json:"title"`
	AuthorName    string   `json:"author_name"`
	PublisherName string   `json:"publisher_name"`
	ISBN          string   `json:"isbn"`
	Pages         int      `json:"pages"`
	PublishedYear int      `json:"published_year"`
	Description   string   `json:"description"`
	Genres        []string `json:"genres"`
}

func (api *API) handleCatalogByISBN(w http.ResponseWriter, r *http.Request) {
	if api.metadata == nil {
		api.writeError(w, shell.ErrNoMetadataLookup)
		return
	}

	isbn := mux.Vars(r)["isbn"]
	if isbn == "" {
		api.writeBadRequest(w, "missing isbn")
		return
	}

	record, fetchErr := api.metadata.FetchBookByISBN(r.Context(), isbn)
	if fetchErr != nil {
		api.writeError(w, fetchErr)
		return
	}

	api.writeJSON(w, http.StatusOK, catalogBookResponse{
		Title:         record.Title,
		AuthorName:    record.AuthorName,
		PublisherName: record.PublisherName,
		ISBN:          record.ISBN,
		Pages:         record.Pages,
		PublishedYear: record.PublishedYear,
		Description:   record.Description,
		Genres:        record.Genres,
	})
}
