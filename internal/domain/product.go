package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a single discounted/near-expiry item in the inventory.
// ExpirationDate is nil when no expiration is tracked for the item.
type Product struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	Name           string          `json:"name" db:"name"`
	OriginalPrice  decimal.Decimal `json:"originalPrice" db:"original_price"`
	DiscountPrice  decimal.Decimal `json:"discountPrice" db:"discount_price"`
	Image          string          `json:"image" db:"image"`
	Category       string          `json:"category" db:"category"`
	Quantity       int             `json:"quantity" db:"quantity"`
	ExpirationDate *time.Time      `json:"expirationDate,omitempty" db:"expiration_date"`
	Description    string          `json:"description" db:"description"`
	CreatedAt      time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time       `json:"updatedAt" db:"updated_at"`
}
