package snapshotv1

import "time"

// Snapshot represents the state of every sticker book at a specific point
// in time, together with the order stream offset it reflects.
type Snapshot struct {
	OrderOffset int64          `json:"orderOffset"`
	Books       []BookSnapshot `json:"books"`
}

// BookSnapshot represents the resting orders of one sticker book.
type BookSnapshot struct {
	StickerID string      `json:"stickerID"`
	Orders    []BookOrder `json:"orders"`
}

// BookOrder represents a resting order inside a snapshot.
type BookOrder struct {
	OrderID   string    `json:"orderID"`
	CreatorID string    `json:"creatorID"`
	Price     int64     `json:"price"`
	Bid       bool      `json:"bid"`
	CreatedAt time.Time `json:"createdAt"`
}
