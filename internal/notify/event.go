package notify

import (
	"time"

	"github.com/google/uuid"
)

// Event kinds published for product changes.
const (
	KindCreated      = "product.created"
	KindBackInStock  = "product.back_in_stock"
	KindOutOfStock   = "product.out_of_stock"
	KindChanged      = "product.changed"
	KindUnavailable  = "product.unavailable"
	KindAvailable    = "product.available"
	KindDiscontinued = "product.discontinued"
)

type Event struct {
	ID               string    `json:"id"`
	Kind             string    `json:"kind"`
	Product          string    `json:"product"`
	BecameInStock    bool      `json:"became_in_stock,omitempty"`
	BecameOutOfStock bool      `json:"became_out_of_stock,omitempty"`
	Changes          *string   `json:"changes,omitempty"`
	OccurredAt       time.Time `json:"occurred_at"`
}

func newEvent(kind, product string, now time.Time) Event {
	return Event{ID: uuid.NewString(), Kind: kind, Product: product, OccurredAt: now.UTC()}
}

// quantityKind maps a stock transition to an event kind; "" means nothing to send.
func quantityKind(becameInStock, becameOutOfStock bool) string {
	switch {
	case becameInStock:
		return KindBackInStock
	case becameOutOfStock:
		return KindOutOfStock
	}
	return ""
}
