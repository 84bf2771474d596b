package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
)

func TestClassification(t *testing.T) {
	dup := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'M1' for key 'name'"}
	fk := &mysql.MySQLError{Number: 1452, Message: "Cannot add or update a child row"}
	ref := &mysql.MySQLError{Number: 1451, Message: "Cannot delete or update a parent row"}

	assert.True(t, IsDuplicateEntry(dup))
	assert.True(t, IsDuplicateEntry(fmt.Errorf("insert class: %w", dup)))
	assert.False(t, IsDuplicateEntry(fk))

	assert.True(t, IsForeignKeyViolation(fk))
	assert.False(t, IsForeignKeyViolation(ref))

	assert.True(t, IsRowReferenced(ref))
	assert.False(t, IsRowReferenced(errors.New("boom")))
}
