package review

import (
	"time"

	"github.com/google/uuid"
)

// Review is a completed product review. Records are immutable once stored.
type Review struct {
	ID            uuid.UUID `json:"id"`
	ContactNumber string    `json:"contact_number"`
	UserName      string    `json:"user_name"`
	ProductName   string    `json:"product_name"`
	Body          string    `json:"product_review"`
	CreatedAt     time.Time `json:"created_at"`
}
