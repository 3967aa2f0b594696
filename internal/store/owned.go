package store

import (
	"context" // Request scope
	"errors"  // Error inspection
	"fmt"     // Error wrapping

	"gorm.io/gorm" // GORM ORM library
)

// OwnedBy restricts a query to rows of ownerID
func OwnedBy(ownerID uint) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where("user_id = ?", ownerID)
	}
}

// Owned loads the T with the given id only if it belongs to ownerID. It
// returns nil, nil when there is no such row, including when the id exists
// under another owner, so callers cannot tell the two apart.
//
// Every read, update and delete of a single category or expense goes
// through here first.
func Owned[T any](ctx context.Context, db *gorm.DB, id, ownerID uint) (*T, error) {
	var rec T
	err := db.WithContext(ctx).Scopes(OwnedBy(ownerID)).Where("id = ?", id).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load owned record %d: %w", id, err)
	}
	return &rec, nil
}
