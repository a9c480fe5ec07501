package store

import (
	"context"

	"github.com/wellywell/monopay/internal/types"
)

// Store holds the order index and the invoice index.
//
// Create populates both indexes at once. RegisterInvoice is for invoices that
// first become known through a webhook; a pair is never re-pointed.
type Store interface {
	CreateOrder(ctx context.Context, record types.OrderRecord) (*types.OrderRecord, error)
	GetOrder(ctx context.Context, orderID string) (*types.OrderRecord, error)
	ApplyStatus(ctx context.Context, orderID string, update types.StatusUpdate) (*types.OrderRecord, error)
	ListOrders(ctx context.Context, after string, limit int) ([]types.OrderRecord, error)

	RegisterInvoice(ctx context.Context, invoiceID string, orderID string) error
	ResolveInvoice(ctx context.Context, invoiceID string) (string, error)
}
