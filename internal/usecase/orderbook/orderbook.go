package orderbook

import (
	"fmt"
	"sort"
	"sync"

	orderbookv1 "github.com/kahshiuhtang/Sticker-Market/internal/domain/orderbook/v1"
	snapshotv1 "github.com/kahshiuhtang/Sticker-Market/internal/domain/snapshot/v1"
)

// bookHandle pairs a sticker book with the lock that serializes it. Books
// are independent, so distinct stickers proceed concurrently while all
// operations against one book run one at a time.
type bookHandle struct {
	mu   sync.Mutex
	book *orderbookv1.StickerBook
}

// Orderbook is the top-level order book: it routes every order to the book
// owning its sticker, creating books on first use.
type Orderbook struct {
	mu    sync.RWMutex
	books map[string]*bookHandle
}

// NewOrderbook creates an empty registry.
func NewOrderbook() *Orderbook {
	return &Orderbook{
		books: make(map[string]*bookHandle),
	}
}

// handle returns the handle for a sticker, creating it on first use.
func (ob *Orderbook) handle(stickerID string) *bookHandle {
	ob.mu.RLock()
	h, exists := ob.books[stickerID]
	ob.mu.RUnlock()
	if exists {
		return h
	}

	ob.mu.Lock()
	defer ob.mu.Unlock()

	// another submitter may have created it between the locks
	if h, exists := ob.books[stickerID]; exists {
		return h
	}

	h = &bookHandle{book: orderbookv1.NewStickerBook(stickerID)}
	ob.books[stickerID] = h
	return h
}

// lookup returns the handle for a sticker if one exists.
func (ob *Orderbook) lookup(stickerID string) (*bookHandle, bool) {
	ob.mu.RLock()
	defer ob.mu.RUnlock()
	h, exists := ob.books[stickerID]
	return h, exists
}

// Submit admits a validated order into the book owning its sticker and
// immediately runs the crossing loop, returning any trades produced. A
// rejected order leaves the book unchanged.
func (ob *Orderbook) Submit(order *orderbookv1.Order) ([]orderbookv1.Trade, error) {
	if order == nil {
		return nil, orderbookv1.ErrNilOrder
	}
	if order.Price <= 0 {
		return nil, fmt.Errorf("%w: got %d", orderbookv1.ErrInvalidPrice, order.Price)
	}
	if order.ID == "" || order.StickerID == "" || order.CreatorID == "" {
		return nil, fmt.Errorf("%w: id, stickerID and creatorID are required", orderbookv1.ErrInvalidOrder)
	}
	if order.Side != orderbookv1.SideBid && order.Side != orderbookv1.SideAsk {
		return nil, fmt.Errorf("%w: unknown side %q", orderbookv1.ErrInvalidOrder, order.Side)
	}

	h := ob.handle(order.StickerID)
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.book.AddOrder(order); err != nil {
		return nil, err
	}

	return h.book.Match(), nil
}

// Cancel removes a resting order from the book owning the sticker.
func (ob *Orderbook) Cancel(stickerID, orderID string) error {
	h, exists := ob.lookup(stickerID)
	if !exists {
		return fmt.Errorf("%w: %s", orderbookv1.ErrOrderNotFound, orderID)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	return h.book.CancelOrder(orderID)
}

// Peek returns a read-only view of the highest-priority resting order on
// one side of a sticker's book.
func (ob *Orderbook) Peek(stickerID string, side orderbookv1.Side) (orderbookv1.OrderSummary, bool) {
	h, exists := ob.lookup(stickerID)
	if !exists {
		return orderbookv1.OrderSummary{}, false
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	order, ok := h.book.PeekBest(side)
	if !ok {
		return orderbookv1.OrderSummary{}, false
	}
	return order.Summary(), true
}

// Stickers returns the sticker ids with a live book, sorted.
func (ob *Orderbook) Stickers() []string {
	ob.mu.RLock()
	defer ob.mu.RUnlock()

	stickers := make([]string, 0, len(ob.books))
	for stickerID := range ob.books {
		stickers = append(stickers, stickerID)
	}
	sort.Strings(stickers)
	return stickers
}

// CreateSnapshot captures the resting orders of every book. Books and
// orders are sorted so equal book states serialize identically.
func (ob *Orderbook) CreateSnapshot() *snapshotv1.Snapshot {
	snapshot := &snapshotv1.Snapshot{}

	for _, stickerID := range ob.Stickers() {
		h, exists := ob.lookup(stickerID)
		if !exists {
			continue
		}

		h.mu.Lock()
		resting := h.book.Resting()
		h.mu.Unlock()

		sort.Slice(resting, func(i, j int) bool {
			return resting[i].ID < resting[j].ID
		})

		bookSnapshot := snapshotv1.BookSnapshot{StickerID: stickerID}
		for _, order := range resting {
			bookSnapshot.Orders = append(bookSnapshot.Orders, snapshotv1.BookOrder{
				OrderID:   order.ID,
				CreatorID: order.CreatorID,
				Price:     order.Price,
				Bid:       order.IsBid(),
				CreatedAt: order.CreatedAt,
			})
		}

		snapshot.Books = append(snapshot.Books, bookSnapshot)
	}

	return snapshot
}

// RestoreOrderbook replaces the registry state with the books recorded in
// a snapshot.
func (ob *Orderbook) RestoreOrderbook(snapshot *snapshotv1.Snapshot) error {
	if snapshot == nil {
		return fmt.Errorf("snapshot cannot be nil")
	}

	ob.mu.Lock()
	defer ob.mu.Unlock()

	books := make(map[string]*bookHandle, len(snapshot.Books))
	for _, bookSnapshot := range snapshot.Books {
		book := orderbookv1.NewStickerBook(bookSnapshot.StickerID)
		for _, bookOrder := range bookSnapshot.Orders {
			side := orderbookv1.SideAsk
			if bookOrder.Bid {
				side = orderbookv1.SideBid
			}

			order := &orderbookv1.Order{
				ID:        bookOrder.OrderID,
				StickerID: bookSnapshot.StickerID,
				CreatorID: bookOrder.CreatorID,
				Price:     bookOrder.Price,
				Side:      side,
				CreatedAt: bookOrder.CreatedAt,
			}
			if err := book.AddOrder(order); err != nil {
				return fmt.Errorf("failed to restore order %s: %w", bookOrder.OrderID, err)
			}
		}

		books[bookSnapshot.StickerID] = &bookHandle{book: book}
	}

	ob.books = books
	return nil
}
