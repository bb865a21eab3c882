package postgresengine

import (
	"context"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"

	"github.com/bibkit/library-circulation-go/recordstore"
)

const referenceSequenceSuffix = "_reference_seq"

// SequenceGenerator implements reference code generation on Postgres
// sequences. Each sequence code ("loan", "fine") maps to its own database
// sequence, so codes stay gap-tolerant but never collide, even across
// concurrent transactions.
//
// nextval is deliberately non-transactional: a rolled-back command burns a
// number instead of serializing all commands on the sequence row.
type SequenceGenerator struct {
	store Store
}

// NewSequenceGenerator creates a SequenceGenerator sharing the store's
// database connection and table prefix.
func NewSequenceGenerator(store Store) SequenceGenerator {
	return SequenceGenerator{store: store}
}

// Next reserves the next number of the named sequence and formats it as a
// reference code, for example "LOAN-000042".
func (g SequenceGenerator) Next(ctx context.Context, code string) (string, error) {
	if code == "" {
		return "", recordstore.ErrEmptySequenceCodeSupplied
	}

	sequenceName := g.store.tablePrefix + code + referenceSequenceSuffix

	sqlQuery, buildErr := toSQL(
		goqu.Dialect(dialectPostgres).
			Select(goqu.L("nextval(?)", sequenceName)),
	)
	if buildErr != nil {
		return "", buildErr
	}

	rows, queryErr := g.store.db.Query(ctx, sqlQuery)
	if queryErr != nil {
		if g.store.logger != nil {
			g.store.logger.Error(logMsgDBQueryFailed, logAttrError, queryErr.Error(), logAttrQuery, sqlQuery)
		}

		return "", fmt.Errorf("reserving next sequence number: %w", queryErr)
	}
	defer g.store.closeRows(rows)

	if !rows.Next() {
		return "", recordstore.ErrNotFound
	}

	var number int64
	if scanErr := rows.Scan(&number); scanErr != nil {
		if g.store.logger != nil {
			g.store.logger.Error(logMsgScanRowFailed, logAttrError, scanErr.Error())
		}

		return "", scanErr
	}

	return fmt.Sprintf("%s-%06d", strings.ToUpper(code), number), nil
}
