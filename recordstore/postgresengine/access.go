package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"github.com/bibkit/library-circulation-go/core"
	"github.com/bibkit/library-circulation-go/journal"
	"github.com/bibkit/library-circulation-go/recordstore"
	"github.com/bibkit/library-circulation-go/recordstore/postgresengine/internal/adapters"
)

const (
	colID                    = "id"
	colTitle                 = "title"
	colAuthorID              = "author_id"
	colCopyCount             = "copy_count"
	colCost                  = "cost"
	colBlockingFineID        = "blocking_fine_id"
	colFirstName             = "first_name"
	colLastName              = "last_name"
	colNationalID            = "national_id"
	colEmail                 = "email"
	colPhone                 = "phone"
	colReferenceCode         = "reference_code"
	colBookID                = "book_id"
	colBorrowerID            = "borrower_id"
	colLoanID                = "loan_id"
	colLoanedAt              = "loaned_at"
	colDueAt                 = "due_at"
	colReturnedAt            = "returned_at"
	colState                 = "state"
	colHasFine               = "has_fine"
	colFineAmount            = "fine_amount"
	colNotified              = "notified"
	colNotifiedAt            = "notified_at"
	colFineType              = "fine_type"
	colAmount                = "amount"
	colDelinquencyDays       = "delinquency_days"
	colExpiresAt             = "expires_at"
	colEntryType             = "entry_type"
	colOccurredAt            = "occurred_at"
	colPayload               = "payload"
	colLoanPeriodDays        = "loan_period_days"
	colNotificationGraceDays = "notification_grace_days"
	colFinePerDay            = "fine_per_day"
	colSenderAddress         = "sender_address"
)

// access implements recordstore.Access on one open transaction.
type access struct {
	tx     adapters.DBTx
	engine Store
}

// LoadConfiguration returns the configuration singleton, lazily inserting
// the defaults when the table is still empty.
func (a access) LoadConfiguration(ctx context.Context) (core.Configuration, error) {
	sqlQuery, buildErr := toSQL(
		goqu.Dialect(dialectPostgres).
			From(a.engine.configurationTable()).
			Select(colLoanPeriodDays, colNotificationGraceDays, colFinePerDay, colSenderAddress).
			Limit(1),
	)
	if buildErr != nil {
		return core.Configuration{}, a.buildFailed(buildErr)
	}

	var config core.Configuration

	findErr := a.queryOneRow(ctx, sqlQuery, func(rows adapters.DBRows) error {
		return rows.Scan(&config.LoanPeriodDays, &config.NotificationGraceDays, &config.FinePerDay, &config.SenderAddress)
	})

	switch {
	case findErr == nil:
		return config, nil

	case errors.Is(findErr, recordstore.ErrNotFound):
		return a.insertDefaultConfiguration(ctx)

	default:
		return core.Configuration{}, findErr
	}
}

func (a access) insertDefaultConfiguration(ctx context.Context) (core.Configuration, error) {
	defaults := core.DefaultConfiguration()

	sqlQuery, buildErr := toSQL(
		goqu.Dialect(dialectPostgres).
			Insert(a.engine.configurationTable()).
			Rows(goqu.Record{
				colLoanPeriodDays:        defaults.LoanPeriodDays,
				colNotificationGraceDays: defaults.NotificationGraceDays,
				colFinePerDay:            defaults.FinePerDay,
				colSenderAddress:         defaults.SenderAddress,
			}),
	)
	if buildErr != nil {
		return core.Configuration{}, a.buildFailed(buildErr)
	}

	if _, execErr := a.engine.executeStatement(ctx, a.tx, sqlQuery); execErr != nil {
		return core.Configuration{}, execErr
	}

	return defaults, nil
}

func (a access) GetBook(ctx context.Context, id uuid.UUID) (core.Book, error) {
	sqlQuery, buildErr := toSQL(
		goqu.Dialect(dialectPostgres).
			From(a.engine.booksTable()).
			Select(colID, colTitle, colAuthorID, colCopyCount, colCost, colBlockingFineID).
			Where(goqu.Ex{colID: id.String()}),
	)
	if buildErr != nil {
		return core.Book{}, a.buildFailed(buildErr)
	}

	var book core.Book
	var blockingFineID uuid.NullUUID

	findErr := a.queryOneRow(ctx, sqlQuery, func(rows adapters.DBRows) error {
		return rows.Scan(&book.ID, &book.Title, &book.AuthorID, &book.CopyCount, &book.Cost, &blockingFineID)
	})
	if findErr != nil {
		return core.Book{}, findErr
	}

	if blockingFineID.Valid {
		fineID := blockingFineID.UUID
		book.BlockingFineID = &fineID
	}

	return book, nil
}

// SetBookBlockingFine sets or clears (nil) the book's blocking fine reference.
func (a access) SetBookBlockingFine(ctx context.Context, bookID uuid.UUID, fineID *uuid.UUID) error {
	sqlQuery, buildErr := toSQL(
		goqu.Dialect(dialectPostgres).
			Update(a.engine.booksTable()).
			Set(goqu.Record{colBlockingFineID: uuidPtrValue(fineID)}).
			Where(goqu.Ex{colID: bookID.String()}),
	)
	if buildErr != nil {
		return a.buildFailed(buildErr)
	}

	rowsAffected, execErr := a.engine.executeStatement(ctx, a.tx, sqlQuery)
	if execErr != nil {
		return execErr
	}

	if rowsAffected == 0 {
		return recordstore.ErrNotFound
	}

	return nil
}

func (a access) GetBorrower(ctx context.Context, id uuid.UUID) (core.Borrower, error) {
	sqlQuery, buildErr := toSQL(
		goqu.Dialect(dialectPostgres).
			From(a.engine.borrowersTable()).
			Select(colID, colFirstName, colLastName, colNationalID, colEmail, colPhone).
			Where(goqu.Ex{colID: id.String()}),
	)
	if buildErr != nil {
		return core.Borrower{}, a.buildFailed(buildErr)
	}

	var borrower core.Borrower

	findErr := a.queryOneRow(ctx, sqlQuery, func(rows adapters.DBRows) error {
		return rows.Scan(&borrower.ID, &borrower.FirstName, &borrower.LastName, &borrower.NationalID, &borrower.Email, &borrower.Phone)
	})
	if findErr != nil {
		return core.Borrower{}, findErr
	}

	return borrower, nil
}

func (a access) InsertBorrower(ctx context.Context, borrower core.Borrower) error {
	sqlQuery, buildErr := toSQL(
		goqu.Dialect(dialectPostgres).
			Insert(a.engine.borrowersTable()).
			Rows(goqu.Record{
				colID:         borrower.ID.String(),
				colFirstName:  borrower.FirstName,
				colLastName:   borrower.LastName,
				colNationalID: borrower.NationalID,
				colEmail:      borrower.Email,
				colPhone:      borrower.Phone,
			}),
	)
	if buildErr != nil {
		return a.buildFailed(buildErr)
	}

	_, execErr := a.engine.executeStatement(ctx, a.tx, sqlQuery)

	return execErr
}

func (a access) GetLoan(ctx context.Context, id uuid.UUID) (core.Loan, error) {
	sqlQuery, buildErr := toSQL(
		a.selectLoans().Where(goqu.Ex{colID: id.String()}),
	)
	if buildErr != nil {
		return core.Loan{}, a.buildFailed(buildErr)
	}

	var loan core.Loan

	findErr := a.queryOneRow(ctx, sqlQuery, func(rows adapters.DBRows) error {
		var scanErr error
		loan, scanErr = scanLoan(rows)
		return scanErr
	})
	if findErr != nil {
		return core.Loan{}, findErr
	}

	return loan, nil
}

func (a access) InsertLoan(ctx context.Context, loan core.Loan) error {
	record := loanRecord(loan)
	record[colID] = loan.ID.String()

	sqlQuery, buildErr := toSQL(
		goqu.Dialect(dialectPostgres).
			Insert(a.engine.loansTable()).
			Rows(record),
	)
	if buildErr != nil {
		return a.buildFailed(buildErr)
	}

	_, execErr := a.engine.executeStatement(ctx, a.tx, sqlQuery)

	return execErr
}

// UpdateLoan writes the loan guarded by its expected current state, so a
// transition decided against a stale read can never overwrite a concurrent one.
func (a access) UpdateLoan(ctx context.Context, loan core.Loan, expectedState core.LoanState) error {
	sqlQuery, buildErr := toSQL(
		goqu.Dialect(dialectPostgres).
			Update(a.engine.loansTable()).
			Set(loanRecord(loan)).
			Where(goqu.Ex{
				colID:    loan.ID.String(),
				colState: string(expectedState),
			}),
	)
	if buildErr != nil {
		return a.buildFailed(buildErr)
	}

	return a.guardedUpdate(ctx, sqlQuery, a.engine.loansTable(), loan.ID, string(expectedState))
}

func (a access) CountActiveOrFinedLoansByBook(ctx context.Context, bookID uuid.UUID) (int, error) {
	sqlQuery, buildErr := toSQL(
		goqu.Dialect(dialectPostgres).
			From(a.engine.loansTable()).
			Select(goqu.COUNT(goqu.Star())).
			Where(goqu.Ex{
				colBookID: bookID.String(),
				colState:  []string{string(core.LoanStateActive), string(core.LoanStateFined)},
			}),
	)
	if buildErr != nil {
		return 0, a.buildFailed(buildErr)
	}

	return a.queryCount(ctx, sqlQuery)
}

// SelectLoansForSweep returns active loans past due that have not been
// notified yet, oldest due date first.
func (a access) SelectLoansForSweep(ctx context.Context, now time.Time) ([]core.Loan, error) {
	sqlQuery, buildErr := toSQL(
		a.selectLoans().
			Where(
				goqu.Ex{colState: string(core.LoanStateActive), colNotified: false},
				goqu.C(colDueAt).Lt(core.ToInstant(now)),
			).
			Order(goqu.I(colDueAt).Asc()),
	)
	if buildErr != nil {
		return nil, a.buildFailed(buildErr)
	}

	return a.queryLoans(ctx, sqlQuery)
}

// SelectOverdueLoans returns all active loans past due, notified or not.
func (a access) SelectOverdueLoans(ctx context.Context, now time.Time) ([]core.Loan, error) {
	sqlQuery, buildErr := toSQL(
		a.selectLoans().
			Where(
				goqu.Ex{colState: string(core.LoanStateActive)},
				goqu.C(colDueAt).Lt(core.ToInstant(now)),
			).
			Order(goqu.I(colDueAt).Asc()),
	)
	if buildErr != nil {
		return nil, a.buildFailed(buildErr)
	}

	return a.queryLoans(ctx, sqlQuery)
}

// MarkLoanNotified check-and-sets the notified flag. It reports false when
// the flag was already set, which is how overlapping sweeps detect that
// another run owns this loan.
func (a access) MarkLoanNotified(ctx context.Context, loanID uuid.UUID, at time.Time) (bool, error) {
	sqlQuery, buildErr := toSQL(
		goqu.Dialect(dialectPostgres).
			Update(a.engine.loansTable()).
			Set(goqu.Record{
				colNotified:   true,
				colNotifiedAt: core.ToInstant(at),
			}).
			Where(goqu.Ex{
				colID:       loanID.String(),
				colNotified: false,
			}),
	)
	if buildErr != nil {
		return false, a.buildFailed(buildErr)
	}

	rowsAffected, execErr := a.engine.executeStatement(ctx, a.tx, sqlQuery)
	if execErr != nil {
		return false, execErr
	}

	return rowsAffected == 1, nil
}

func (a access) GetFine(ctx context.Context, id uuid.UUID) (core.Fine, error) {
	sqlQuery, buildErr := toSQL(
		a.selectFines().Where(goqu.Ex{colID: id.String()}),
	)
	if buildErr != nil {
		return core.Fine{}, a.buildFailed(buildErr)
	}

	return a.queryOneFine(ctx, sqlQuery)
}

func (a access) InsertFine(ctx context.Context, fine core.Fine) error {
	record := fineRecord(fine)
	record[colID] = fine.ID.String()

	sqlQuery, buildErr := toSQL(
		goqu.Dialect(dialectPostgres).
			Insert(a.engine.finesTable()).
			Rows(record),
	)
	if buildErr != nil {
		return a.buildFailed(buildErr)
	}

	_, execErr := a.engine.executeStatement(ctx, a.tx, sqlQuery)

	return execErr
}

// UpdateFine writes the fine guarded by its expected current state.
func (a access) UpdateFine(ctx context.Context, fine core.Fine, expectedState core.FineState) error {
	sqlQuery, buildErr := toSQL(
		goqu.Dialect(dialectPostgres).
			Update(a.engine.finesTable()).
			Set(fineRecord(fine)).
			Where(goqu.Ex{
				colID:    fine.ID.String(),
				colState: string(expectedState),
			}),
	)
	if buildErr != nil {
		return a.buildFailed(buildErr)
	}

	return a.guardedUpdate(ctx, sqlQuery, a.engine.finesTable(), fine.ID, string(expectedState))
}

// FindPendingDelayFineByLoan returns the loan's single pending delay fine,
// or recordstore.ErrNotFound.
func (a access) FindPendingDelayFineByLoan(ctx context.Context, loanID uuid.UUID) (core.Fine, error) {
	sqlQuery, buildErr := toSQL(
		a.selectFines().Where(goqu.Ex{
			colLoanID:   loanID.String(),
			colFineType: string(core.FineTypeDelay),
			colState:    string(core.FineStatePending),
		}),
	)
	if buildErr != nil {
		return core.Fine{}, a.buildFailed(buildErr)
	}

	return a.queryOneFine(ctx, sqlQuery)
}

func (a access) CountPendingFinesByBorrower(ctx context.Context, borrowerID uuid.UUID) (int, error) {
	sqlQuery, buildErr := toSQL(
		goqu.Dialect(dialectPostgres).
			From(a.engine.finesTable()).
			Select(goqu.COUNT(goqu.Star())).
			Where(goqu.Ex{
				colBorrowerID: borrowerID.String(),
				colState:      string(core.FineStatePending),
			}),
	)
	if buildErr != nil {
		return 0, a.buildFailed(buildErr)
	}

	return a.queryCount(ctx, sqlQuery)
}

func (a access) ListFinesByBorrower(ctx context.Context, borrowerID uuid.UUID) ([]core.Fine, error) {
	sqlQuery, buildErr := toSQL(
		a.selectFines().
			Where(goqu.Ex{colBorrowerID: borrowerID.String()}).
			Order(goqu.I(colExpiresAt).Asc()),
	)
	if buildErr != nil {
		return nil, a.buildFailed(buildErr)
	}

	rows, _, queryErr := a.engine.executeQuery(ctx, a.tx, sqlQuery)
	if queryErr != nil {
		return nil, queryErr
	}
	defer a.engine.closeRows(rows)

	fines := make([]core.Fine, 0)

	for rows.Next() {
		fine, scanErr := scanFine(rows)
		if scanErr != nil {
			return nil, a.scanFailed(scanErr)
		}

		fines = append(fines, fine)
	}

	return fines, nil
}

// AppendJournal records one journal entry inside the open transaction.
func (a access) AppendJournal(ctx context.Context, entry journal.Entry) error {
	sqlQuery, buildErr := toSQL(
		goqu.Dialect(dialectPostgres).
			Insert(a.engine.journalTable()).
			Rows(goqu.Record{
				colID:         entry.ID.String(),
				colEntryType:  entry.EntryType,
				colOccurredAt: entry.OccurredAt,
				colPayload:    string(entry.PayloadJSON),
			}),
	)
	if buildErr != nil {
		return a.buildFailed(buildErr)
	}

	_, execErr := a.engine.executeStatement(ctx, a.tx, sqlQuery)

	return execErr
}

func (a access) selectLoans() *goqu.SelectDataset {
	return goqu.Dialect(dialectPostgres).
		From(a.engine.loansTable()).
		Select(
			colID, colReferenceCode, colBookID, colBorrowerID, colLoanedAt, colDueAt,
			colReturnedAt, colState, colHasFine, colFineAmount, colNotified, colNotifiedAt,
		)
}

func (a access) selectFines() *goqu.SelectDataset {
	return goqu.Dialect(dialectPostgres).
		From(a.engine.finesTable()).
		Select(
			colID, colReferenceCode, colBorrowerID, colLoanID, colFineType,
			colAmount, colDelinquencyDays, colExpiresAt, colState,
		)
}

// queryOneRow runs the query and applies scan to the first row, returning
// recordstore.ErrNotFound when the result set is empty.
func (a access) queryOneRow(ctx context.Context, sqlQuery string, scan func(rows adapters.DBRows) error) error {
	rows, _, queryErr := a.engine.executeQuery(ctx, a.tx, sqlQuery)
	if queryErr != nil {
		return queryErr
	}
	defer a.engine.closeRows(rows)

	if !rows.Next() {
		return recordstore.ErrNotFound
	}

	if scanErr := scan(rows); scanErr != nil {
		return a.scanFailed(scanErr)
	}

	return nil
}

func (a access) queryOneFine(ctx context.Context, sqlQuery string) (core.Fine, error) {
	var fine core.Fine

	findErr := a.queryOneRow(ctx, sqlQuery, func(rows adapters.DBRows) error {
		var scanErr error
		fine, scanErr = scanFine(rows)
		return scanErr
	})
	if findErr != nil {
		return core.Fine{}, findErr
	}

	return fine, nil
}

func (a access) queryLoans(ctx context.Context, sqlQuery string) ([]core.Loan, error) {
	rows, _, queryErr := a.engine.executeQuery(ctx, a.tx, sqlQuery)
	if queryErr != nil {
		return nil, queryErr
	}
	defer a.engine.closeRows(rows)

	loans := make([]core.Loan, 0)

	for rows.Next() {
		loan, scanErr := scanLoan(rows)
		if scanErr != nil {
			return nil, a.scanFailed(scanErr)
		}

		loans = append(loans, loan)
	}

	return loans, nil
}

func (a access) queryCount(ctx context.Context, sqlQuery string) (int, error) {
	count := 0

	findErr := a.queryOneRow(ctx, sqlQuery, func(rows adapters.DBRows) error {
		return rows.Scan(&count)
	})
	if findErr != nil {
		return 0, findErr
	}

	return count, nil
}

// guardedUpdate treats zero affected rows as a concurrency conflict: the
// record left its expected state between the read and this write.
func (a access) guardedUpdate(
	ctx context.Context,
	sqlQuery string,
	table string,
	recordID uuid.UUID,
	expectedState string,
) error {

	rowsAffected, execErr := a.engine.executeStatement(ctx, a.tx, sqlQuery)
	if execErr != nil {
		return execErr
	}

	if rowsAffected == 0 {
		a.engine.logOperation(
			logMsgConcurrencyConflict,
			logAttrTable, table,
			logAttrRecordID, recordID.String(),
			logAttrExpectedState, expectedState,
			logAttrRowsAffected, rowsAffected,
		)
		a.engine.recordConcurrencyConflictMetrics(table)

		return recordstore.ErrConcurrencyConflict
	}

	return nil
}

func (a access) buildFailed(buildErr error) error {
	if a.engine.logger != nil {
		a.engine.logger.Error(logMsgBuildQueryFailed, logAttrError, buildErr.Error())
	}

	return errors.Join(recordstore.ErrBuildingQueryFailed, buildErr)
}

func (a access) scanFailed(scanErr error) error {
	if a.engine.logger != nil {
		a.engine.logger.Error(logMsgScanRowFailed, logAttrError, scanErr.Error())
	}

	return errors.Join(recordstore.ErrScanningDBRowFailed, scanErr)
}

func loanRecord(loan core.Loan) goqu.Record {
	return goqu.Record{
		colReferenceCode: loan.ReferenceCode,
		colBookID:        loan.BookID.String(),
		colBorrowerID:    loan.BorrowerID.String(),
		colLoanedAt:      loan.LoanedAt,
		colDueAt:         loan.DueAt,
		colReturnedAt:    timePtrValue(loan.ReturnedAt),
		colState:         string(loan.State),
		colHasFine:       loan.HasFine,
		colFineAmount:    loan.FineAmount,
		colNotified:      loan.Notified,
		colNotifiedAt:    timePtrValue(loan.NotifiedAt),
	}
}

func fineRecord(fine core.Fine) goqu.Record {
	return goqu.Record{
		colReferenceCode:   fine.ReferenceCode,
		colBorrowerID:      fine.BorrowerID.String(),
		colLoanID:          fine.LoanID.String(),
		colFineType:        string(fine.Type),
		colAmount:          fine.Amount,
		colDelinquencyDays: fine.DelinquencyDays,
		colExpiresAt:       fine.ExpiresAt,
		colState:           string(fine.State),
	}
}

func scanLoan(rows adapters.DBRows) (core.Loan, error) {
	var loan core.Loan
	var state string
	var returnedAt, notifiedAt sql.NullTime

	scanErr := rows.Scan(
		&loan.ID, &loan.ReferenceCode, &loan.BookID, &loan.BorrowerID, &loan.LoanedAt, &loan.DueAt,
		&returnedAt, &state, &loan.HasFine, &loan.FineAmount, &loan.Notified, &notifiedAt,
	)
	if scanErr != nil {
		return core.Loan{}, scanErr
	}

	loan.State = core.LoanState(state)

	if returnedAt.Valid {
		at := returnedAt.Time
		loan.ReturnedAt = &at
	}

	if notifiedAt.Valid {
		at := notifiedAt.Time
		loan.NotifiedAt = &at
	}

	return loan, nil
}

func scanFine(rows adapters.DBRows) (core.Fine, error) {
	var fine core.Fine
	var fineType, state string

	scanErr := rows.Scan(
		&fine.ID, &fine.ReferenceCode, &fine.BorrowerID, &fine.LoanID, &fineType,
		&fine.Amount, &fine.DelinquencyDays, &fine.ExpiresAt, &state,
	)
	if scanErr != nil {
		return core.Fine{}, scanErr
	}

	fine.Type = core.FineType(fineType)
	fine.State = core.FineState(state)

	return fine, nil
}

func toSQL(stmt interface {
	ToSQL() (string, []interface{}, error)
}) (sqlQueryString, error) {

	sqlQuery, _, toSQLErr := stmt.ToSQL()
	if toSQLErr != nil {
		return "", toSQLErr
	}

	return sqlQuery, nil
}

func uuidPtrValue(id *uuid.UUID) any {
	if id == nil {
		return nil
	}

	return id.String()
}

func timePtrValue(at *time.Time) any {
	if at == nil {
		return nil
	}

	return *at
}
