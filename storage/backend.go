// Package storage supplies the SQLite execution backend behind compiled
// queries: running rendered SQL, bootstrapping the operational schema, and
// seeding demo data for the CLI.
package storage

import (
	"context"
	"database/sql"

	"github.com/tessella/opsq/db"
	"github.com/tessella/opsq/errors"
	"github.com/tessella/opsq/logger"
	"github.com/tessella/opsq/nlq/types"
)

// SQLBackend executes rendered queries over database/sql.
type SQLBackend struct {
	db *sql.DB
}

// NewSQLBackend wraps an open database handle.
func NewSQLBackend(database *sql.DB) *SQLBackend {
	return &SQLBackend{db: database}
}

// Execute runs a rendered query and collects all rows with their column
// metadata. Values keep the driver's native types.
func (b *SQLBackend) Execute(ctx context.Context, query string, args []any) (*types.ResultSet, error) {
	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		if db.IsDatabaseClosed(err) {
			return nil, errors.Wrap(db.ErrDatabaseClosed, "execute query")
		}
		return nil, errors.Wrap(err, "execute query")
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(err, "read column metadata")
	}

	result := &types.ResultSet{Columns: columns}
	for rows.Next() {
		values := make([]any, len(columns))
		scanTargets := make([]any, len(columns))
		for i := range values {
			scanTargets[i] = &values[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return nil, errors.Wrap(err, "scan row")
		}
		result.Rows = append(result.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate rows")
	}

	logger.Logger.Debugw("query executed",
		logger.FieldCount, result.Len(),
	)
	return result, nil
}

// Bootstrap brings the operational schema up to date.
func (b *SQLBackend) Bootstrap(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "bootstrap cancelled")
	}
	return db.Migrate(b.db, logger.Logger)
}
