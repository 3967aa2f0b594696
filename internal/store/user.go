package store

import (
	"context" // Request scope
	"errors"  // Error inspection
	"fmt"     // Error wrapping

	"finance_tracker/internal/apperr" // Error taxonomy
	"finance_tracker/internal/domain" // Domain models

	"gorm.io/gorm" // GORM ORM library
)

// CreateUser inserts a user; an email already taken yields Conflict
func CreateUser(ctx context.Context, db *gorm.DB, email, passwordHash string, name *string) (*domain.User, error) {
	existing, err := FindUserByEmail(ctx, db, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.New(apperr.Conflict, "User already exists")
	}
	user := domain.User{Email: email, PasswordHash: passwordHash, Name: name}
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		// Lost a race with a concurrent registration
		if IsDuplicate(err) {
			return nil, apperr.Wrap(apperr.Conflict, "User already exists", err)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

// FindUserByEmail returns nil, nil when no user has that email
func FindUserByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.User, error) {
	var user domain.User
	err := db.WithContext(ctx).Where("email = ?", email).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

// CountUsers returns the number of registered users
func CountUsers(ctx context.Context, db *gorm.DB) (int64, error) {
	var count int64
	if err := db.WithContext(ctx).Model(&domain.User{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}
