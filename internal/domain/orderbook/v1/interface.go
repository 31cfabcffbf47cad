package orderbookv1

import snapshotv1 "github.com/kahshiuhtang/Sticker-Market/internal/domain/snapshot/v1"

// Registry defines the interface for the top-level order book: the entry
// point that routes orders to per-sticker books.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=orderbookv1_mock
type Registry interface {
	Submit(order *Order) ([]Trade, error)
	Cancel(stickerID, orderID string) error
	Peek(stickerID string, side Side) (OrderSummary, bool)
	Stickers() []string
	CreateSnapshot() *snapshotv1.Snapshot
	RestoreOrderbook(snapshot *snapshotv1.Snapshot) error
}
