package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/bibkit/library-circulation-go/core"
	"github.com/bibkit/library-circulation-go/httpapi"
	"github.com/bibkit/library-circulation-go/shell"
	"github.com/bibkit/library-circulation-go/testutil/doubles"
	"github.com/bibkit/library-circulation-go/testutil/memorystore"
)

func Test_API_Health(t *testing.T) {
	// arrange
	_, router := givenAPI(t)

	// act
	response := doRequest(t, router, http.MethodGet, "/healthz", nil)

	// assert
	assert.Equal(t, http.StatusOK, response.Code)
}

func Test_API_RegisterBorrower(t *testing.T) {
	// arrange
	_, router := givenAPI(t)

	body := map[string]string{
		"first_name":  "Ada",
		"last_name":   "Lovelace",
		"national_id": "1712345675",
		"email":       "ada@example.com",
	}

	// act
	response := doRequest(t, router, http.MethodPost, "/borrowers", body)

	// assert
	assert.Equal(t, http.StatusCreated, response.Code)

	var created map[string]any
	assert.NoError(t, json.Unmarshal(response.Body.Bytes(), &created))
	assert.NotEmpty(t, created["id"])
	assert.Equal(t, "Ada", created["first_name"])
}

func Test_API_RegisterBorrower_InvalidNationalID(t *testing.T) {
	// arrange
	_, router := givenAPI(t)

	body := map[string]string{
		"first_name":  "Ada",
		"last_name":   "Lovelace",
		"national_id": "1712345676",
	}

	// act
	response := doRequest(t, router, http.MethodPost, "/borrowers", body)

	// assert
	assert.Equal(t, http.StatusUnprocessableEntity, response.Code)
	assert.Contains(t, response.Body.String(), "invalid national ID")
}

func Test_API_LoanLifecycleOverHTTP(t *testing.T) {
	// arrange
	store, router := givenAPI(t)

	borrower := core.Borrower{ID: uuid.New(), FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}
	book := core.Book{ID: uuid.New(), Title: "Calculating Engines", AuthorID: uuid.New(), CopyCount: 1, Cost: 25.0}
	store.SeedBorrower(borrower)
	store.SeedBook(book)

	// act - open
	openBody := map[string]string{"book_id": book.ID.String(), "borrower_id": borrower.ID.String()}
	openResponse := doRequest(t, router, http.MethodPost, "/loans", openBody)

	// assert
	assert.Equal(t, http.StatusCreated, openResponse.Code)

	var opened map[string]any
	assert.NoError(t, json.Unmarshal(openResponse.Body.Bytes(), &opened))
	loanID := opened["id"].(string)
	assert.Equal(t, "draft", opened["state"])

	// act - confirm
	confirmResponse := doRequest(t, router, http.MethodPost, "/loans/"+loanID+"/confirm", nil)

	// assert
	assert.Equal(t, http.StatusOK, confirmResponse.Code)

	var confirmed map[string]any
	assert.NoError(t, json.Unmarshal(confirmResponse.Body.Bytes(), &confirmed))
	assert.Equal(t, "active", confirmed["state"])

	// act - return on time
	returnResponse := doRequest(t, router, http.MethodPost, "/loans/"+loanID+"/return", nil)

	// assert
	assert.Equal(t, http.StatusOK, returnResponse.Code)
	assert.Contains(t, returnResponse.Body.String(), "returned")
}

func Test_API_SecondConfirmOnSingleCopyBookRejected(t *testing.T) {
	// arrange
	store, router := givenAPI(t)

	borrower := core.Borrower{ID: uuid.New(), FirstName: "Ada", LastName: "Lovelace"}
	other := core.Borrower{ID: uuid.New(), FirstName: "Grace", LastName: "Hopper"}
	book := core.Book{ID: uuid.New(), Title: "Calculating Engines", AuthorID: uuid.New(), CopyCount: 1}
	store.SeedBorrower(borrower)
	store.SeedBorrower(other)
	store.SeedBook(book)

	// both drafts open while no copy is confirmed out yet
	firstID := openLoan(t, router, book.ID, borrower.ID)
	secondID := openLoan(t, router, book.ID, other.ID)

	firstConfirm := doRequest(t, router, http.MethodPost, "/loans/"+firstID+"/confirm", nil)
	assert.Equal(t, http.StatusOK, firstConfirm.Code)

	// act
	secondConfirm := doRequest(t, router, http.MethodPost, "/loans/"+secondID+"/confirm", nil)

	// assert - the only copy went out with the first confirmation
	assert.Equal(t, http.StatusUnprocessableEntity, secondConfirm.Code)
	assert.Contains(t, secondConfirm.Body.String(), "no copies available")
}

func Test_API_UnknownLoanAnswers404(t *testing.T) {
	// arrange
	_, router := givenAPI(t)

	// act
	response := doRequest(t, router, http.MethodPost, "/loans/"+uuid.NewString()+"/confirm", nil)

	// assert
	assert.Equal(t, http.StatusNotFound, response.Code)
}

func Test_API_CatalogWithoutLookupAnswers503(t *testing.T) {
	// arrange
	_, router := givenAPI(t)

	// act
	response := doRequest(t, router, http.MethodGet, "/catalog/isbn/9780262033848", nil)

	// assert
	assert.Equal(t, http.StatusServiceUnavailable, response.Code)
}

func Test_API_CatalogLookupFailureAnswers502(t *testing.T) {
	// arrange
	store := memorystore.New()
	api := httpapi.NewAPI(
		store,
		doubles.NewFixedClock(time.Now()),
		doubles.NewSequenceGeneratorStub(),
		doubles.NewNotificationSenderSpy(),
		doubles.NewLoggerSpy(),
		httpapi.WithMetadataLookup(failingLookup{}),
	)
	router := api.Router()

	// act
	response := doRequest(t, router, http.MethodGet, "/catalog/isbn/9780262033848", nil)

	// assert
	assert.Equal(t, http.StatusBadGateway, response.Code)
}

func Test_API_BorrowerStanding(t *testing.T) {
	// arrange
	store, router := givenAPI(t)

	borrower := core.Borrower{ID: uuid.New(), FirstName: "Ada", LastName: "Lovelace"}
	store.SeedBorrower(borrower)

	store.SeedFine(core.Fine{
		ID:         uuid.New(),
		BorrowerID: borrower.ID,
		LoanID:     uuid.New(),
		Type:       core.FineTypeDelay,
		Amount:     3.0,
		ExpiresAt:  time.Now().AddDate(0, 0, 30),
		State:      core.FineStatePending,
	})

	// act
	response := doRequest(t, router, http.MethodGet, "/borrowers/"+borrower.ID.String()+"/standing", nil)

	// assert
	assert.Equal(t, http.StatusOK, response.Code)

	var standing map[string]any
	assert.NoError(t, json.Unmarshal(response.Body.Bytes(), &standing))
	assert.Equal(t, true, standing["blocked_for_loans"])
	assert.Equal(t, float64(1), standing["pending_fine_count"])
}

// Test helper functions with t.Helper() for better error reporting

func givenAPI(t *testing.T) (*memorystore.Store, http.Handler) {
	t.Helper()

	store := memorystore.New()
	api := httpapi.NewAPI(
		store,
		doubles.NewFixedClock(time.Now()),
		doubles.NewSequenceGeneratorStub(),
		doubles.NewNotificationSenderSpy(),
		doubles.NewLoggerSpy(),
	)

	return store, api.Router()
}

func doRequest(t *testing.T, router http.Handler, method string, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		assert.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	request := httptest.NewRequest(method, path, &buf)
	request.Header.Set("Content-Type", "application/json")

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	return recorder
}

func openLoan(t *testing.T, router http.Handler, bookID, borrowerID uuid.UUID) string {
	t.Helper()

	openBody := map[string]string{"book_id": bookID.String(), "borrower_id": borrowerID.String()}
	openResponse := doRequest(t, router, http.MethodPost, "/loans", openBody)
	assert.Equal(t, http.StatusCreated, openResponse.Code)

	var opened map[string]any
	assert.NoError(t, json.Unmarshal(openResponse.Body.Bytes(), &opened))

	return opened["id"].(string)
}

type failingLookup struct{}

func (failingLookup) FetchBookByISBN(_ context.Context, _ string) (shell.BookRecord, error) {
	return shell.BookRecord{}, shell.NewExternalFetchError("metadata", errors.New("upstream timeout"))
}

func (failingLookup) FetchAuthorByName(_ context.Context, _ string) (shell.AuthorRecord, error) {
	return shell.AuthorRecord{}, shell.NewExternalFetchError("metadata", errors.New("upstream timeout"))
}
