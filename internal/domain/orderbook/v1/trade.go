package orderbookv1

import "time"

// Trade records a bid and an ask that crossed and fully satisfied each
// other. It is the data contract handed to the persistence and accounting
// collaborators.
type Trade struct {
	ID         string    `json:"id"`
	BidOrderID string    `json:"bidOrderID"`
	AskOrderID string    `json:"askOrderID"`
	StickerID  string    `json:"stickerID"`
	Price      int64     `json:"price"`
	MatchedAt  time.Time `json:"matchedAt"`
}
