package domain

import "time"

// User Model
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`                       // Primary key
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"` // Unique, lowercased email
	PasswordHash string    `gorm:"column:password;size:255;not null" json:"-"` // bcrypt hash, never serialized
	Name         *string   `gorm:"size:100" json:"name"`                       // Optional display name
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`            // Registration time
}
