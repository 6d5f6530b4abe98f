package database

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WithTransaction executes the provided fn within a transaction while propagating context.
// The transaction DB instance passed to fn already includes the context, so repository methods
// can use it directly. Every read and write of one engine operation goes through the same tx,
// so a failure anywhere rolls back the whole operation.
//
// Usage:
//
//	err := WithTransaction(ctx, db, func(tx *gorm.DB) error {
//	    if err := repo.Save(ctx, tx, entity); err != nil {
//	        return err // rollback
//	    }
//	    return nil // commit
//	})
func WithTransaction(ctx context.Context, db *gorm.DB, fn func(*gorm.DB) error) error {
	if fn == nil {
		return errors.New("database: transaction function is nil")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	return db.WithContext(ctx).Transaction(fn)
}

// ForUpdate adds a row lock (SELECT ... FOR UPDATE) to the query.
// SQLite has no row locks; its dialector drops the clause and the database-level write lock applies.
func ForUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// FindForUpdate loads the row with the given primary key into dest and locks it.
// First is avoided: its ORDER BY plus row limit renders as FETCH NEXT on Oracle,
// which rejects that in combination with FOR UPDATE.
// A missing row is reported as gorm.ErrRecordNotFound.
func FindForUpdate(db *gorm.DB, dest any, id any) error {
	result := lockByID(db, dest, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func lockByID(db *gorm.DB, dest any, id any) *gorm.DB {
	return ForUpdate(db).Where("id = ?", id).Find(dest)
}
