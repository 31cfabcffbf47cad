package orderbookv1

import (
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// StickerBook holds the live orders for a single sticker: a map keyed by
// order id as the authoritative state, plus one priority queue per side as
// derived caches over the map.
//
// The book is not internally synchronized. Callers must serialize all
// operations against one book; the usecase layer holds one lock per
// sticker.
//
// Cancellation is lazy: CancelOrder only removes the order from the map,
// and PeekBest/PopBest discard queue entries whose order is gone. Queue
// entries may therefore transiently reference removed orders; the map is
// always the source of truth.
type StickerBook struct {
	stickerID string
	orders    map[string]*Order
	bids      *sideQueue
	asks      *sideQueue
}

// NewStickerBook creates an empty book for the given sticker.
func NewStickerBook(stickerID string) *StickerBook {
	return &StickerBook{
		stickerID: stickerID,
		orders:    make(map[string]*Order),
		bids:      newSideQueue(SideBid),
		asks:      newSideQueue(SideAsk),
	}
}

// StickerID returns the sticker this book trades.
func (b *StickerBook) StickerID() string {
	return b.stickerID
}

// Len returns the number of live orders in the book.
func (b *StickerBook) Len() int {
	return len(b.orders)
}

// SideLen returns the number of live orders resting on one side.
func (b *StickerBook) SideLen(side Side) int {
	n := 0
	for _, o := range b.orders {
		if o.Side == side {
			n++
		}
	}
	return n
}

// Resting returns the live orders in no particular order. The slice is a
// copy; the orders are the book's own.
func (b *StickerBook) Resting() []*Order {
	orders := make([]*Order, 0, len(b.orders))
	for _, o := range b.orders {
		orders = append(orders, o)
	}
	return orders
}

// AddOrder inserts an order into the map and pushes its index onto the
// queue for its side. A rejected order leaves the book unchanged.
func (b *StickerBook) AddOrder(order *Order) error {
	if order == nil {
		return ErrNilOrder
	}
	if order.Price <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidPrice, order.Price)
	}
	if order.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidOrder)
	}
	if _, exists := b.orders[order.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateOrderID, order.ID)
	}

	b.queueFor(order.Side).push(order.index())
	b.orders[order.ID] = order

	return nil
}

// CancelOrder removes the order from the map. Its queue entry stays behind
// and is discarded the next time it surfaces.
func (b *StickerBook) CancelOrder(orderID string) error {
	if _, exists := b.orders[orderID]; !exists {
		return fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}

	delete(b.orders, orderID)
	return nil
}

// PeekBest returns the highest-priority live order for the side without
// removing it, discarding stale queue entries along the way.
func (b *StickerBook) PeekBest(side Side) (*Order, bool) {
	q := b.queueFor(side)
	for {
		idx, ok := q.peek()
		if !ok {
			return nil, false
		}
		order, live := b.orders[idx.ID]
		if live {
			return order, true
		}
		// stale entry left behind by a cancel
		q.pop()
	}
}

// PopBest removes and returns the highest-priority live order for the side.
func (b *StickerBook) PopBest(side Side) (*Order, bool) {
	order, ok := b.PeekBest(side)
	if !ok {
		return nil, false
	}

	b.queueFor(side).pop()
	delete(b.orders, order.ID)
	return order, true
}

// Match runs the crossing loop until no cross remains and returns the
// trades produced. A cross exists while the best bid price is at least the
// best ask price. Orders carry no quantity, so each crossing pair fully
// satisfies each other: both are marked filled, each records the
// counterparty as its filler, and both leave the book.
//
// The execution price is the maker's: whichever of the pair rested earlier
// sets the price, so the taker receives any improvement. Each iteration
// removes two live orders, which bounds the loop.
func (b *StickerBook) Match() []Trade {
	var trades []Trade

	for {
		bestBid, ok := b.PeekBest(SideBid)
		if !ok {
			break
		}
		bestAsk, ok := b.PeekBest(SideAsk)
		if !ok {
			break
		}
		if bestBid.Price < bestAsk.Price {
			break
		}

		bid, _ := b.PopBest(SideBid)
		ask, _ := b.PopBest(SideAsk)

		bid.IsFilled = true
		ask.IsFilled = true
		bid.FillerID = ask.CreatorID
		ask.FillerID = bid.CreatorID

		price := ask.Price
		if bid.CreatedAt.Before(ask.CreatedAt) {
			price = bid.Price
		}

		trades = append(trades, Trade{
			ID:         ulid.Make().String(),
			BidOrderID: bid.ID,
			AskOrderID: ask.ID,
			StickerID:  b.stickerID,
			Price:      price,
			MatchedAt:  time.Now(),
		})
	}

	return trades
}

func (b *StickerBook) queueFor(side Side) *sideQueue {
	if side == SideBid {
		return b.bids
	}
	return b.asks
}
