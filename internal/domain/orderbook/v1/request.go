package orderbookv1

import "time"

// RequestType represents the kind of order request carried on the stream.
type RequestType string

const (
	// RequestTypePlace represents a request to place a new order.
	RequestTypePlace RequestType = "place"
	// RequestTypeCancel represents a request to cancel a resting order.
	RequestTypeCancel RequestType = "cancel"
)

// OrderRequest represents a request against a sticker book as read from the
// order stream. For a place request the submission collaborator has already
// validated the fields and assigned a fresh order id.
type OrderRequest struct {
	Type      RequestType `json:"type"`
	OrderID   string      `json:"orderID"`
	StickerID string      `json:"stickerID"`
	UserID    string      `json:"userID"`
	Side      Side        `json:"side"`
	Price     int64       `json:"price"`
	CreatedAt time.Time   `json:"createdAt"`
	Offset    int64       `json:"-"` // Offset of the request in the stream
}

// ToOrder builds the resting order for a place request. The order keeps the
// id and timestamp assigned upstream so replaying the stream rebuilds an
// identical book.
func (r *OrderRequest) ToOrder() *Order {
	createdAt := r.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	return &Order{
		ID:        r.OrderID,
		StickerID: r.StickerID,
		CreatorID: r.UserID,
		Price:     r.Price,
		Side:      r.Side,
		CreatedAt: createdAt,
	}
}
