package db

import (
	"strings"

	"github.com/teranos/graphstyle/errors"
)

// ErrDatabaseClosed is returned when operations are attempted on a closed database.
// Typically seen during shutdown when the preference writer drains after Close.
var ErrDatabaseClosed = errors.New("database is closed")

// IsDatabaseClosed checks if an error indicates the database connection is closed.
// Handles both wrapped ErrDatabaseClosed and raw driver errors, which the
// sql package returns as plain strings.
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
