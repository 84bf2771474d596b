package dberrors

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// MySQL server error numbers used by the repositories.
const (
	ErDupEntry         = 1062
	ErRowIsReferenced  = 1451
	ErNoReferencedRow  = 1452
	ErRowIsReferenced2 = 1217
	ErNoReferencedRow2 = 1216
)

func mysqlNumber(err error) (uint16, bool) {
	var myErr *mysql.MySQLError
	if !errors.As(err, &myErr) {
		return 0, false
	}
	return myErr.Number, true
}

// IsDuplicateEntry reports whether err is a MySQL unique key violation.
func IsDuplicateEntry(err error) bool {
	n, ok := mysqlNumber(err)
	return ok && n == ErDupEntry
}

// IsForeignKeyViolation reports whether a referenced row is missing (insert/update).
func IsForeignKeyViolation(err error) bool {
	n, ok := mysqlNumber(err)
	return ok && (n == ErNoReferencedRow || n == ErNoReferencedRow2)
}

// IsRowReferenced reports whether a delete/update is blocked by child rows.
func IsRowReferenced(err error) bool {
	n, ok := mysqlNumber(err)
	return ok && (n == ErRowIsReferenced || n == ErRowIsReferenced2)
}
