package store

import (
	"context" // Request scope
	"errors"  // Error inspection
	"fmt"     // Error wrapping

	"finance_tracker/internal/apperr" // Error taxonomy
	"finance_tracker/internal/domain" // Domain models

	"gorm.io/gorm" // GORM ORM library
)

var errCategoryNotFound = apperr.New(apperr.NotFound, "Category not found")

// CreateCategory creates a category owned by ownerID
func CreateCategory(ctx context.Context, db *gorm.DB, ownerID uint, name string) (*domain.Category, error) {
	taken, err := categoryNameTaken(ctx, db, ownerID, name, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.New(apperr.Conflict, "Category with this name already exists")
	}
	category := domain.Category{Name: name, UserID: ownerID}
	if err := db.WithContext(ctx).Create(&category).Error; err != nil {
		if IsDuplicate(err) {
			return nil, apperr.Wrap(apperr.Conflict, "Category with this name already exists", err)
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	return &category, nil
}

// ListCategories returns the owner's categories sorted by name
func ListCategories(ctx context.Context, db *gorm.DB, ownerID uint) ([]domain.Category, error) {
	categories := []domain.Category{}
	if err := db.WithContext(ctx).Scopes(OwnedBy(ownerID)).Order("name asc").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// RenameCategory changes the name of one of the owner's categories
func RenameCategory(ctx context.Context, db *gorm.DB, ownerID, id uint, name string) (*domain.Category, error) {
	category, err := Owned[domain.Category](ctx, db, id, ownerID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, errCategoryNotFound
	}
	if category.Name == name {
		return category, nil
	}
	taken, err := categoryNameTaken(ctx, db, ownerID, name, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.New(apperr.Conflict, "Category with this name already exists")
	}
	err = db.WithContext(ctx).Model(category).Update("name", name).Error
	if err != nil {
		if IsDuplicate(err) {
			return nil, apperr.Wrap(apperr.Conflict, "Category with this name already exists", err)
		}
		return nil, fmt.Errorf("rename category %d: %w", id, err)
	}
	category.Name = name
	return category, nil
}

// DeleteCategory removes one of the owner's categories. The store rejects
// the delete while any expense links to it; that is reported as
// InvalidOperation and the category is left in place.
func DeleteCategory(ctx context.Context, db *gorm.DB, ownerID, id uint) error {
	category, err := Owned[domain.Category](ctx, db, id, ownerID)
	if err != nil {
		return err
	}
	if category == nil {
		return errCategoryNotFound
	}
	err = db.WithContext(ctx).Scopes(OwnedBy(ownerID)).Delete(&domain.Category{}, id).Error
	if err != nil {
		if IsForeignKeyViolation(err) {
			return apperr.Wrap(apperr.InvalidOperation, "Cannot delete category because it is used in existing expenses", err)
		}
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	return nil
}

// categoryNameTaken compares names case-insensitively, matching the MySQL
// column collation, so SQLite enforces the same rule
func categoryNameTaken(ctx context.Context, db *gorm.DB, ownerID uint, name string, exceptID uint) (bool, error) {
	var existing domain.Category
	err := db.WithContext(ctx).Scopes(OwnedBy(ownerID)).
		Where("LOWER(name) = LOWER(?) AND id <> ?", name, exceptID).
		Take(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check category name: %w", err)
	}
	return true, nil
}
