// Package reconcile merges invoice state coming from the processor's status
// endpoint and from its webhooks into one record per order.
package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"
	"github.com/wellywell/monopay/internal/mono"
	"github.com/wellywell/monopay/internal/signature"
	"github.com/wellywell/monopay/internal/store"
	"github.com/wellywell/monopay/internal/types"
	"github.com/wellywell/monopay/internal/validate"
)

const DefaultCurrency = 980 // UAH

type Processor interface {
	CreateInvoice(ctx context.Context, payload mono.CreateInvoiceRequest) (*mono.Invoice, error)
	GetInvoiceStatus(ctx context.Context, invoiceID string) (*mono.InvoiceStatus, error)
}

type Options struct {
	Currency    int
	WebhookURL  string
	RedirectURL string
}

type Service struct {
	store     store.Store
	processor Processor
	verifier  signature.Verifier
	opts      Options
}

type CreateInvoiceRequest struct {
	OrderID     string          `json:"orderId"`
	AmountUah   decimal.Decimal `json:"amountUah"`
	OrderDesc   string          `json:"orderDesc"`
	Destination string          `json:"destination"`
	// CallbackURL is used when no webhook URL is configured.
	CallbackURL string `json:"-"`
}

type OrderStatus struct {
	Order types.OrderRecord
	// Invoice is nil when the status was served from the store.
	Invoice *mono.InvoiceStatus
}

func NewService(st store.Store, processor Processor, verifier signature.Verifier, opts Options) *Service {
	if opts.Currency == 0 {
		opts.Currency = DefaultCurrency
	}
	if verifier == nil {
		verifier = signature.Noop{}
	}
	return &Service{
		store:     st,
		processor: processor,
		verifier:  verifier,
		opts:      opts,
	}
}

func (s *Service) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*mono.Invoice, error) {

	for _, f := range []struct{ name, value string }{
		{"orderId", req.OrderID},
		{"orderDesc", req.OrderDesc},
		{"destination", req.Destination},
	} {
		if err := validate.Required(f.name, f.value); err != nil {
			return nil, err
		}
	}
	amount, err := validate.ToMinorUnits("amountUah", req.AmountUah)
	if err != nil {
		return nil, err
	}

	// Reject before the processor creates an invoice nobody will own.
	_, err = s.store.GetOrder(ctx, req.OrderID)
	if err == nil {
		return nil, fmt.Errorf("%w", &store.OrderExistsError{OrderID: req.OrderID})
	}
	var notFound *store.OrderNotFoundError
	if !errors.As(err, &notFound) {
		return nil, err
	}

	webhookURL := s.opts.WebhookURL
	if webhookURL == "" {
		webhookURL = req.CallbackURL
	}

	invoice, err := s.processor.CreateInvoice(ctx, mono.CreateInvoiceRequest{
		Amount: amount,
		Ccy:    s.opts.Currency,
		MerchantPaymInfo: mono.MerchantPaymInfo{
			Reference:   req.OrderID,
			Destination: req.Destination,
			Comment:     req.OrderDesc,
		},
		WebHookURL:  webhookURL,
		RedirectURL: s.opts.RedirectURL,
	})
	if err != nil {
		return nil, err
	}

	_, err = s.store.CreateOrder(ctx, types.OrderRecord{
		OrderID:     req.OrderID,
		InvoiceID:   invoice.InvoiceID,
		Destination: req.Destination,
		Amount:      amount,
		Currency:    s.opts.Currency,
	})
	if err != nil {
		logger.WithFields(logger.Fields{"orderId": req.OrderID, "invoiceId": invoice.InvoiceID}).
			Errorf("Invoice created but not stored: %s", err)
		return nil, err
	}

	logger.Infof("Created invoice %s for order %s", invoice.InvoiceID, req.OrderID)
	return invoice, nil
}

// GetOrderStatus returns the stored record, refreshed from the processor when
// refresh is set. A failed refresh leaves the record untouched.
func (s *Service) GetOrderStatus(ctx context.Context, orderID string, refresh bool) (*OrderStatus, error) {
	if err := validate.Required("orderId", orderID); err != nil {
		return nil, err
	}

	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !refresh {
		return &OrderStatus{Order: *order}, nil
	}

	invoice, err := s.processor.GetInvoiceStatus(ctx, order.InvoiceID)
	if err != nil {
		return nil, err
	}

	merged, err := s.store.ApplyStatus(ctx, orderID, types.StatusUpdate{
		Status:       types.NormalizeStatus(invoice.Status),
		Source:       types.SourcePoll,
		ModifiedDate: invoice.ModifiedDate,
	})
	if err != nil {
		return nil, err
	}
	return &OrderStatus{Order: *merged, Invoice: invoice}, nil
}

func (s *Service) PollOrder(ctx context.Context, orderID string) (*OrderStatus, error) {
	return s.GetOrderStatus(ctx, orderID, true)
}

func (s *Service) GetInvoiceStatus(ctx context.Context, invoiceID string) (*mono.InvoiceStatus, error) {
	if err := validate.Required("invoiceId", invoiceID); err != nil {
		return nil, err
	}
	return s.processor.GetInvoiceStatus(ctx, invoiceID)
}

func (s *Service) ListOrders(ctx context.Context, after string, limit int) ([]types.OrderRecord, error) {
	return s.store.ListOrders(ctx, after, limit)
}
