package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// lockableTables are the tables whose rows serialize registry writes
var lockableTables = map[string]bool{
	"family_cards": true,
	"rts":          true,
	"rws":          true,
}

// acquireRowLock takes the exclusive row lock on a live row with an update
// that changes nothing: deleted_at is already NULL for every row it matches.
// The lock lasts until the enclosing transaction ends. It returns the number
// of rows matched, 0 meaning the row is missing or archived.
func acquireRowLock(ctx context.Context, db *gorm.DB, table string, id uuid.UUID) (int64, error) {
	if !lockableTables[table] {
		panic("acquireRowLock: unexpected table " + table)
	}
	if !inTransaction(db) {
		return 0, ErrLockOutsideTransaction
	}

	res := db.WithContext(ctx).Exec("UPDATE "+table+" SET deleted_at = NULL WHERE id = ? AND deleted_at IS NULL", id)
	if res.Error != nil {
		return 0, translateError(res.Error, nil)
	}
	return res.RowsAffected, nil
}

// inTransaction reports whether db is bound to an open transaction
func inTransaction(db *gorm.DB) bool {
	if db == nil || db.Statement == nil {
		return false
	}
	_, ok := db.Statement.ConnPool.(gorm.TxCommitter)
	return ok
}
