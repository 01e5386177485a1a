package handlers

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

const (
	mysqlDuplicateEntry    = 1062
	mysqlForeignKeyFailure = 1452
)

func mysqlErrorNumber(err error) uint16 {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number
	}
	return 0
}

func isDuplicateEntryError(err error) bool {
	return mysqlErrorNumber(err) == mysqlDuplicateEntry
}

// isForeignKeyConstraintError reports a reference to a row that does not exist.
func isForeignKeyConstraintError(err error) bool {
	return mysqlErrorNumber(err) == mysqlForeignKeyFailure
}
