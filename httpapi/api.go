package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

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

// API wires the feature handlers to HTTP routes.
type API struct {
	store recordstore.Store

	openLoan      openloan.CommandHandler
	confirmLoan   confirmloan.CommandHandler
	returnLoan    returnloan.CommandHandler
	reportDamaged reportbookdamaged.CommandHandler
	reportLost    reportbooklost.CommandHandler
	payFine       payfine.CommandHandler
	cancelFine    cancelfine.CommandHandler
	sweep         sweepoverdueloans.CommandHandler

	overdueLoans overdueloans.QueryHandler
	standing     borrowerstanding.QueryHandler

	metadata shell.MetadataLookup
	logger   shell.Logger
}

// Option configures an API.
type Option func(*API)

// WithMetadataLookup wires an external bibliographic lookup; without it the
// catalog routes answer 503.
func WithMetadataLookup(lookup shell.MetadataLookup) Option {
	return func(api *API) {
		api.metadata = lookup
	}
}

// NewAPI creates an API with all feature handlers constructed on the given
// collaborators.
func NewAPI(
	store recordstore.Store,
	clock shell.Clock,
	sequences shell.SequenceGenerator,
	notifier shell.NotificationSender,
	logger shell.Logger,
	options ...Option,
) *API {

	api := &API{
		store:         store,
		openLoan:      openloan.NewCommandHandler(store, clock, sequences),
		confirmLoan:   confirmloan.NewCommandHandler(store, clock),
		returnLoan:    returnloan.NewCommandHandler(store, clock, sequences),
		reportDamaged: reportbookdamaged.NewCommandHandler(store, clock, sequences),
		reportLost:    reportbooklost.NewCommandHandler(store, clock, sequences),
		payFine:       payfine.NewCommandHandler(store, clock),
		cancelFine:    cancelfine.NewCommandHandler(store, clock),
		sweep:         sweepoverdueloans.NewCommandHandler(store, clock, sequences, notifier, logger),
		overdueLoans:  overdueloans.NewQueryHandler(store, clock),
		standing:      borrowerstanding.NewQueryHandler(store),
		logger:        logger,
	}

	for _, option := range options {
		option(api)
	}

	return api
}

// Router builds the HTTP handler: all routes plus CORS.
func (api *API) Router() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/healthz", api.handleHealth).Methods(http.MethodGet)

	router.HandleFunc("/borrowers", api.handleRegisterBorrower).Methods(http.MethodPost)
	router.HandleFunc("/borrowers/{id}/standing", api.handleBorrowerStanding).Methods(http.MethodGet)

	router.HandleFunc("/loans", api.handleOpenLoan).Methods(http.MethodPost)
	router.HandleFunc("/loans/overdue", api.handleOverdueLoans).Methods(http.MethodGet)
	router.HandleFunc("/loans/{id}/confirm", api.handleConfirmLoan).Methods(http.MethodPost)
	router.HandleFunc("/loans/{id}/return", api.handleReturnLoan).Methods(http.MethodPost)
	router.HandleFunc("/loans/{id}/report-damaged", api.handleReportDamaged).Methods(http.MethodPost)
	router.HandleFunc("/loans/{id}/report-lost", api.handleReportLost).Methods(http.MethodPost)

	router.HandleFunc("/fines/{id}/pay", api.handlePayFine).Methods(http.MethodPost)
	router.HandleFunc("/fines/{id}/cancel", api.handleCancelFine).Methods(http.MethodPost)

	router.HandleFunc("/sweep", api.handleSweep).Methods(http.MethodPost)

	router.HandleFunc("/catalog/isbn/{isbn}", api.handleCatalogByISBN).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	return c.Handler(router)
}
