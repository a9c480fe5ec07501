package types

import (
	"encoding/json"
	"strings"
	"time"
)

// Status is the processor's invoice status. The vocabulary belongs to the
// processor, so values are passed through as opaque tokens.
type Status string

const (
	CreatedStatus Status = "created"
	UnknownStatus Status = "unknown"
)

// Source names the channel a status update arrived on.
type Source string

const (
	SourcePoll    Source = "poll"
	SourceWebhook Source = "webhook"
)

type OrderRecord struct {
	OrderID        string          `json:"orderId" db:"order_id"`
	InvoiceID      string          `json:"invoiceId" db:"invoice_id"`
	Destination    string          `json:"destination" db:"destination"`
	Amount         int64           `json:"amount" db:"amount"`
	Currency       int             `json:"ccy" db:"currency"`
	Status         Status          `json:"status" db:"status"`
	ModifiedDate   string          `json:"modifiedDate,omitempty" db:"modified_date"`
	CreatedAt      time.Time       `json:"createdAt" db:"created_at"`
	LastStatusAt   *time.Time      `json:"lastStatusAt,omitempty" db:"last_status_at"`
	LastWebhookAt  *time.Time      `json:"lastWebhookAt,omitempty" db:"last_webhook_at"`
	WebhookPayload json.RawMessage `json:"webhookPayload,omitempty" db:"webhook_payload"`
}

// StatusUpdate is a status observation from one of the channels.
type StatusUpdate struct {
	Status       Status
	Source       Source
	ModifiedDate string
	Payload      json.RawMessage
}

func NormalizeStatus(s string) Status {
	return Status(strings.ToLower(strings.TrimSpace(s)))
}

// MergeStatus picks the status to store when an update arrives. An empty
// update keeps what we already have, and a record that never had a status
// falls back to UnknownStatus.
func MergeStatus(current Status, update Status) Status {
	if update != "" {
		return update
	}
	if current != "" {
		return current
	}
	return UnknownStatus
}

// StatusSet is a set of statuses, used for configured final statuses.
type StatusSet map[Status]struct{}

func NewStatusSet(values []string) StatusSet {
	set := make(StatusSet, len(values))
	for _, v := range values {
		s := NormalizeStatus(v)
		if s == "" {
			continue
		}
		set[s] = struct{}{}
	}
	return set
}

func (s StatusSet) Contains(status Status) bool {
	_, ok := s[status]
	return ok
}

// Apply merges an update into the record in place.
func (r *OrderRecord) Apply(u StatusUpdate, now time.Time) {
	r.Status = MergeStatus(r.Status, u.Status)
	switch u.Source {
	case SourceWebhook:
		r.LastWebhookAt = &now
		if len(u.Payload) > 0 {
			r.WebhookPayload = append(json.RawMessage(nil), u.Payload...)
		}
	default:
		r.LastStatusAt = &now
	}
	if u.ModifiedDate != "" {
		r.ModifiedDate = u.ModifiedDate
	}
}

// Clone returns a deep copy safe to hand out of a store.
func (r OrderRecord) Clone() OrderRecord {
	c := r
	if r.LastStatusAt != nil {
		t := *r.LastStatusAt
		c.LastStatusAt = &t
	}
	if r.LastWebhookAt != nil {
		t := *r.LastWebhookAt
		c.LastWebhookAt = &t
	}
	if r.WebhookPayload != nil {
		c.WebhookPayload = append(json.RawMessage(nil), r.WebhookPayload...)
	}
	return c
}
