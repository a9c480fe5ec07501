package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	logger "github.com/sirupsen/logrus"
	"github.com/wellywell/monopay/internal/store"
	"github.com/wellywell/monopay/internal/types"
)

// notification holds the top level of a webhook body and its optional data
// object. Fields are read one at a time so a key of an unexpected type does
// not hide the others.
type notification struct {
	fields map[string]json.RawMessage
	data   map[string]json.RawMessage
}

func stringField(fields map[string]json.RawMessage, key string) string {
	var v string
	if err := json.Unmarshal(fields[key], &v); err != nil {
		return ""
	}
	return v
}

// get reads key from the top level, then from data.
func (n *notification) get(key string) string {
	if v := stringField(n.fields, key); v != "" {
		return v
	}
	return stringField(n.data, key)
}

// WebhookResult describes what a notification did to the store.
type WebhookResult struct {
	InvoiceID string
	Reference string
	Status    types.Status
	OrderID   string
	Applied   bool
}

func parseNotification(raw []byte) *notification {
	n := &notification{}
	if err := json.Unmarshal(raw, &n.fields); err != nil {
		return n
	}
	if data, ok := n.fields["data"]; ok {
		if err := json.Unmarshal(data, &n.data); err != nil {
			n.data = nil
		}
	}
	return n
}

// HandleWebhook applies a processor notification. The only error it returns
// is a failed signature check; notifications that cannot be attributed to an
// order are acknowledged and dropped so the sender does not retry them.
func (s *Service) HandleWebhook(ctx context.Context, raw []byte, sig string) (*WebhookResult, error) {

	if err := s.verifier.Verify(raw, sig); err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	n := parseNotification(raw)
	res := &WebhookResult{
		InvoiceID: n.get("invoiceId"),
		Reference: n.get("reference"),
		Status:    types.NormalizeStatus(n.get("status")),
	}
	defer func() {
		logger.WithFields(logger.Fields{
			"invoiceId": res.InvoiceID,
			"reference": res.Reference,
			"status":    res.Status,
			"orderId":   res.OrderID,
			"applied":   res.Applied,
		}).Info("mono_webhook")
	}()

	orderID, indexed := s.resolveOrder(ctx, res.Reference, res.InvoiceID)
	if orderID == "" {
		return res, nil
	}
	res.OrderID = orderID

	update := types.StatusUpdate{
		Status:       res.Status,
		Source:       types.SourceWebhook,
		ModifiedDate: n.get("modifiedDate"),
	}
	if json.Valid(raw) {
		update.Payload = raw
	}

	// Check the order exists before touching the invoice index, so an
	// unknown reference leaves no trace.
	if _, err := s.store.GetOrder(ctx, orderID); err != nil {
		s.logLookupError(err, orderID)
		return res, nil
	}

	if res.InvoiceID != "" && !indexed {
		err := s.store.RegisterInvoice(ctx, res.InvoiceID, orderID)
		var conflict *store.InvoiceConflictError
		if errors.As(err, &conflict) {
			logger.Warningf("Webhook for order %s carries invoice %s owned by order %s", orderID, res.InvoiceID, conflict.OrderID)
		} else if err != nil {
			logger.Errorf("Could not register invoice %s: %s", res.InvoiceID, err)
		}
	}

	if _, err := s.store.ApplyStatus(ctx, orderID, update); err != nil {
		s.logLookupError(err, orderID)
		return res, nil
	}
	res.Applied = true
	return res, nil
}

// resolveOrder prefers the reference and falls back to the invoice index.
// indexed reports whether the invoice id was already known.
func (s *Service) resolveOrder(ctx context.Context, reference string, invoiceID string) (orderID string, indexed bool) {
	if invoiceID != "" {
		owner, err := s.store.ResolveInvoice(ctx, invoiceID)
		if err == nil {
			indexed = true
			orderID = owner
		} else {
			var notFound *store.InvoiceNotFoundError
			if !errors.As(err, &notFound) {
				logger.Errorf("Invoice lookup failed: %s", err)
			}
		}
	}
	if reference != "" {
		if indexed && orderID != reference {
			logger.Warningf("Webhook reference %s differs from indexed order %s for invoice %s", reference, orderID, invoiceID)
		}
		return reference, indexed
	}
	return orderID, indexed
}

func (s *Service) logLookupError(err error, orderID string) {
	var notFound *store.OrderNotFoundError
	if errors.As(err, &notFound) {
		logger.Infof("Webhook for unknown order %s ignored", orderID)
		return
	}
	logger.Errorf("Webhook for order %s not applied: %s", orderID, err)
}
