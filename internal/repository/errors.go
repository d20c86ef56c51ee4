// Package repository implements store.Store on MySQL using database/sql.
// Each table has its own repo type; repos run against either the pool or a
// transaction through the querier interface.  Driver errors that carry
// business meaning are translated to the store sentinels here so that
// higher layers never inspect MySQL error numbers.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/hostel-management/internal/store"
)

// MySQL server error numbers the repositories translate.
const (
	errDupEntry        = 1062 // ER_DUP_ENTRY
	errRowIsReferenced = 1451 // ER_ROW_IS_REFERENCED_2
	errNoReferencedRow = 1452 // ER_NO_REFERENCED_ROW_2
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func mysqlErrNumber(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}

// translate maps driver errors onto store sentinels and passes anything
// else through unchanged.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	switch mysqlErrNumber(err) {
	case errDupEntry:
		return store.ErrDuplicate
	case errRowIsReferenced:
		return store.ErrInUse
	case errNoReferencedRow:
		return store.ErrNotFound
	}
	return err
}
