package database

import (
	"strings"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// postgres error codes
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

func sqliteCode(err error) (int, string, bool) {
	var sqlErr *sqlite.Error
	if errors.As(err, &sqlErr) {
		return sqlErr.Code(), sqlErr.Error(), true
	}
	return 0, "", false
}

// IsUniqueViolation reports whether err was caused by a UNIQUE (or PRIMARY KEY) constraint.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}
	if code, msg, ok := sqliteCode(err); ok {
		switch code {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		case sqlite3.SQLITE_CONSTRAINT:
			return strings.Contains(msg, "UNIQUE constraint failed")
		}
	}
	return false
}

// IsForeignKeyViolation reports whether err was caused by a FOREIGN KEY constraint.
func IsForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqForeignKeyViolation
	}
	if code, msg, ok := sqliteCode(err); ok {
		switch code {
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return true
		case sqlite3.SQLITE_CONSTRAINT:
			return strings.Contains(msg, "FOREIGN KEY constraint failed")
		}
	}
	return false
}
