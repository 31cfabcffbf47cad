package tradepublisherv1

import (
	"encoding/json"
	"time"

	orderbookv1 "github.com/kahshiuhtang/Sticker-Market/internal/domain/orderbook/v1"
)

// TradeEvent is the wire form of a trade handed to downstream consumers
// (persistence, accounting, market data).
type TradeEvent struct {
	TradeID    string    `json:"tradeID"`
	BidOrderID string    `json:"bidOrderID"`
	AskOrderID string    `json:"askOrderID"`
	StickerID  string    `json:"stickerID"`
	Price      int64     `json:"price"`
	MatchedAt  time.Time `json:"matchedAt"`
}

// CreateFromTrade creates a trade event from a trade.
func CreateFromTrade(trade orderbookv1.Trade) *TradeEvent {
	return &TradeEvent{
		TradeID:    trade.ID,
		BidOrderID: trade.BidOrderID,
		AskOrderID: trade.AskOrderID,
		StickerID:  trade.StickerID,
		Price:      trade.Price,
		MatchedAt:  trade.MatchedAt,
	}
}

// ToBytes converts the trade event to a byte array.
func ToBytes(event *TradeEvent) []byte {
	buf, err := json.Marshal(event)
	if err != nil {
		return nil
	}

	return buf
}

// FromBytes converts a byte array to a trade event.
func FromBytes(data []byte) *TradeEvent {
	var event TradeEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil
	}
	return &event
}
