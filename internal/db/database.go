package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wellywell/monopay/internal/store"
	"github.com/wellywell/monopay/internal/types"
)

const orderColumns = `order_id, invoice_id, destination, amount, currency, status, modified_date,
		created_at, last_status_at, last_webhook_at, webhook_payload`

type Database struct {
	pool *pgxpool.Pool
}

var _ store.Store = (*Database)(nil)

func NewDatabase(connString string) (*Database, error) {

	err := Migrate(connString)

	if err != nil {
		return nil, fmt.Errorf("failed to migrate %w", err)
	}

	ctx := context.Background()
	p, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}

	return &Database{
		pool: p,
	}, nil
}

func (d *Database) Close() {
	d.pool.Close()
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// registerInvoice inserts the pair unless the invoice is known and returns
// the order that owns the invoice afterwards.
func registerInvoice(ctx context.Context, q querier, invoiceID string, orderID string) (string, error) {
	query := `
	WITH inserted AS
		(INSERT INTO invoice_index (invoice_id, order_id)
		 VALUES ($1, $2)
		 ON CONFLICT(invoice_id) DO NOTHING
		 RETURNING order_id)
	SELECT COALESCE (
		(SELECT order_id FROM inserted),
		(SELECT order_id FROM invoice_index WHERE invoice_id = $1)
	)`

	var owner string
	if err := q.QueryRow(ctx, query, invoiceID, orderID).Scan(&owner); err != nil {
		return "", fmt.Errorf("%w", err)
	}
	return owner, nil
}

func collectOrder(rows pgx.Rows) (*types.OrderRecord, error) {
	record, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[types.OrderRecord])
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func payloadArg(payload json.RawMessage) any {
	if len(payload) == 0 {
		return nil
	}
	return string(payload)
}

func (d *Database) CreateOrder(ctx context.Context, record types.OrderRecord) (*types.OrderRecord, error) {

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO payment_order (order_id, invoice_id, destination, amount, currency, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + orderColumns

	rows, err := tx.Query(ctx, query, record.OrderID, record.InvoiceID, record.Destination,
		record.Amount, record.Currency, types.CreatedStatus)
	var created *types.OrderRecord
	if err == nil {
		created, err = collectOrder(rows)
	}
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) {
			return nil, fmt.Errorf("%w", &store.OrderExistsError{OrderID: record.OrderID})
		}
		return nil, fmt.Errorf("unexpected DB error %w", err)
	}

	owner, err := registerInvoice(ctx, tx, record.InvoiceID, record.OrderID)
	if err != nil {
		return nil, err
	}
	if owner != record.OrderID {
		return nil, fmt.Errorf("%w", &store.InvoiceConflictError{InvoiceID: record.InvoiceID, OrderID: owner})
	}

	err = tx.Commit(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	return created, nil
}

func (d *Database) GetOrder(ctx context.Context, orderID string) (*types.OrderRecord, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM payment_order
		WHERE order_id = $1`

	rows, err := d.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed collecting rows %w", err)
	}
	record, err := collectOrder(rows)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w", &store.OrderNotFoundError{OrderID: orderID})
		}
		return nil, fmt.Errorf("failed unpacking rows %w", err)
	}
	return record, nil
}

// ApplyStatus locks the row, merges the update the same way the in-memory
// store does and writes the result back.
func (d *Database) ApplyStatus(ctx context.Context, orderID string, update types.StatusUpdate) (*types.OrderRecord, error) {

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		SELECT ` + orderColumns + `, now() AS applied_at
		FROM payment_order
		WHERE order_id = $1
		FOR UPDATE`

	var record types.OrderRecord
	var payload []byte
	var appliedAt time.Time
	err = tx.QueryRow(ctx, query, orderID).Scan(
		&record.OrderID, &record.InvoiceID, &record.Destination, &record.Amount, &record.Currency,
		&record.Status, &record.ModifiedDate, &record.CreatedAt, &record.LastStatusAt,
		&record.LastWebhookAt, &payload, &appliedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w", &store.OrderNotFoundError{OrderID: orderID})
		}
		return nil, fmt.Errorf("unexpected DB error %w", err)
	}
	if payload != nil {
		record.WebhookPayload = payload
	}

	record.Apply(update, appliedAt)

	query = `
		UPDATE payment_order
		SET status = $2, modified_date = $3, last_status_at = $4,
		    last_webhook_at = $5, webhook_payload = $6::jsonb
		WHERE order_id = $1`
	_, err = tx.Exec(ctx, query, orderID, record.Status, record.ModifiedDate,
		record.LastStatusAt, record.LastWebhookAt, payloadArg(record.WebhookPayload))
	if err != nil {
		return nil, fmt.Errorf("unexpected DB error %w", err)
	}

	err = tx.Commit(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	return &record, nil
}

func (d *Database) ListOrders(ctx context.Context, after string, limit int) ([]types.OrderRecord, error) {
	var limitArg any
	if limit > 0 {
		limitArg = limit
	}
	query := `
		SELECT ` + orderColumns + `
		FROM payment_order
		WHERE order_id > $1
		ORDER BY order_id
		LIMIT $2`

	rows, err := d.pool.Query(ctx, query, after, limitArg)
	if err != nil {
		return nil, fmt.Errorf("failed collecting rows %w", err)
	}

	orders, err := pgx.CollectRows(rows, pgx.RowToStructByName[types.OrderRecord])
	if err != nil {
		return nil, fmt.Errorf("failed unpacking rows %w", err)
	}
	return orders, nil
}

func (d *Database) RegisterInvoice(ctx context.Context, invoiceID string, orderID string) error {
	owner, err := registerInvoice(ctx, d.pool, invoiceID, orderID)
	if err != nil {
		return err
	}
	if owner != orderID {
		return fmt.Errorf("%w", &store.InvoiceConflictError{InvoiceID: invoiceID, OrderID: owner})
	}
	return nil
}

func (d *Database) ResolveInvoice(ctx context.Context, invoiceID string) (string, error) {
	query := `
		SELECT order_id
		FROM invoice_index
		WHERE invoice_id = $1`

	var orderID string
	err := d.pool.QueryRow(ctx, query, invoiceID).Scan(&orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("%w", &store.InvoiceNotFoundError{InvoiceID: invoiceID})
		}
		return "", fmt.Errorf("unexpected DB error %w", err)
	}
	return orderID, nil
}
