package orderbookv1

import (
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	// ErrNilOrder is returned when a nil order is handed to the book.
	ErrNilOrder = errors.New("order cannot be nil")
	// ErrInvalidOrder is returned when an order is missing required fields.
	ErrInvalidOrder = errors.New("order is missing required fields")
	// ErrInvalidPrice is returned when an order carries a non-positive price.
	ErrInvalidPrice = errors.New("price must be positive")
	// ErrDuplicateOrderID is returned when an order id is already resting in the book.
	ErrDuplicateOrderID = errors.New("order id already exists in book")
	// ErrOrderNotFound is returned when a cancel names an order id the book does not hold.
	ErrOrderNotFound = errors.New("order not found in book")
)

// Side represents which side of the book an order rests on.
type Side string

const (
	// SideBid represents a buy order.
	SideBid Side = "bid"
	// SideAsk represents a sell order.
	SideAsk Side = "ask"
)

// Opposite returns the other side of the book.
func (s Side) Opposite() Side {
	if s == SideBid {
		return SideAsk
	}
	return SideBid
}

// Order represents a single resting order in a sticker book. Every order is
// an atomic single-lot unit; there is no quantity and no partial fill.
type Order struct {
	ID        string    `json:"id"`
	StickerID string    `json:"stickerID"`
	CreatorID string    `json:"creatorID"`
	FillerID  string    `json:"fillerID,omitempty"`
	IsFilled  bool      `json:"isFilled"`
	Price     int64     `json:"price"`
	Side      Side      `json:"side"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewOrder creates a new order with a fresh ULID and the current time.
func NewOrder(stickerID, creatorID string, price int64, side Side) *Order {
	return &Order{
		ID:        ulid.Make().String(),
		StickerID: stickerID,
		CreatorID: creatorID,
		Price:     price,
		Side:      side,
		CreatedAt: time.Now(),
	}
}

// IsBid checks if the order is a bid (buy) order.
func (o *Order) IsBid() bool {
	return o.Side == SideBid
}

// IsAsk checks if the order is an ask (sell) order.
func (o *Order) IsAsk() bool {
	return o.Side == SideAsk
}

// index derives the queue sort key for the order.
func (o *Order) index() OrderIndex {
	return OrderIndex{
		ID:        o.ID,
		Price:     o.Price,
		CreatedAt: o.CreatedAt,
		Side:      o.Side,
	}
}

// Summary returns the read-only view of the order handed to monitoring
// collaborators.
func (o *Order) Summary() OrderSummary {
	return OrderSummary{
		OrderID:   o.ID,
		StickerID: o.StickerID,
		Price:     o.Price,
		Side:      o.Side,
		CreatedAt: o.CreatedAt,
	}
}

// OrderIndex is the sort key carried inside a side queue. It is not the
// order itself; the authoritative order lives in the book's map, and an
// index entry may outlive its order under lazy deletion.
type OrderIndex struct {
	ID        string    `json:"id"`
	Price     int64     `json:"price"`
	CreatedAt time.Time `json:"createdAt"`
	Side      Side      `json:"side"`
}

// OrderSummary is a read-only projection of a resting order.
type OrderSummary struct {
	OrderID   string    `json:"orderID"`
	StickerID string    `json:"stickerID"`
	Price     int64     `json:"price"`
	Side      Side      `json:"side"`
	CreatedAt time.Time `json:"createdAt"`
}
