package domain

// Category Model
type Category struct {
	ID     uint   `gorm:"primaryKey" json:"id"`                                               // Primary key
	Name   string `gorm:"size:100;not null;uniqueIndex:idx_categories_user_name" json:"name"` // Unique per owner
	UserID uint   `gorm:"not null;uniqueIndex:idx_categories_user_name" json:"userId"`        // Owner, foreign key to User
	User   *User  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`              // Owner relation
}
