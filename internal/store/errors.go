package store

import (
	"fmt"
)

type OrderExistsError struct {
	OrderID string
}

func (e *OrderExistsError) Error() string {
	return fmt.Sprintf("order %s exists", e.OrderID)
}

type OrderNotFoundError struct {
	OrderID string
}

func (e *OrderNotFoundError) Error() string {
	return fmt.Sprintf("order %s not found", e.OrderID)
}

type InvoiceConflictError struct {
	InvoiceID string
	OrderID   string
}

func (e *InvoiceConflictError) Error() string {
	return fmt.Sprintf("invoice %s already registered to order %s", e.InvoiceID, e.OrderID)
}

type InvoiceNotFoundError struct {
	InvoiceID string
}

func (e *InvoiceNotFoundError) Error() string {
	return fmt.Sprintf("invoice %s not found", e.InvoiceID)
}
