package domain

import (
	"time"

	"github.com/shopspring/decimal" // Exact decimal amounts
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true // Render amounts as JSON numbers
}

// Expense Model
//
// Category is a free-text label and is not tied to the categories table.
// CategoryID optionally links the expense to one of the owner's categories;
// that link is what keeps a category from being deleted while in use.
type Expense struct {
	ID          uint            `gorm:"primaryKey" json:"id"`                                                         // Primary key
	Amount      decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`                                    // Strictly positive amount
	Description *string         `gorm:"size:500" json:"description"`                                                  // Optional description
	Date        time.Time       `gorm:"not null;index" json:"date"`                                                   // When the money was spent, UTC
	Category    *string         `gorm:"size:100;index" json:"category"`                                               // Optional free-text label
	CategoryID  *uint           `gorm:"index" json:"categoryId"`                                                      // Optional link to Category
	CategoryRef *Category       `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"` // Linked category relation
	UserID      uint            `gorm:"not null;index" json:"userId"`                                                 // Owner, foreign key to User
	User        *User           `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`                        // Owner relation
}
