package db

import (
	"strings"

	"github.com/tessella/opsq/errors"
)

// ErrDatabaseClosed is returned when operations are attempted on a closed
// database, typically during shutdown.
var ErrDatabaseClosed = errors.New("database is closed")

// IsDatabaseClosed reports whether an error indicates a closed connection.
// The string fallback covers raw driver errors that cannot be wrapped at
// the source.
func IsDatabaseClosed(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDatabaseClosed) {
		return true
	}
	errMsg := err.Error()
	return strings.Contains(errMsg, "database is closed") ||
		strings.Contains(errMsg, "sql: database is closed")
}
