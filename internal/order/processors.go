package order

import (
	"context"
	"errors"
	"time"

	logger "github.com/sirupsen/logrus"
	"github.com/wellywell/monopay/internal/mono"
	"github.com/wellywell/monopay/internal/reconcile"
	"github.com/wellywell/monopay/internal/store"
	"github.com/wellywell/monopay/internal/types"
)

const pageSize = 100

type Poller interface {
	PollOrder(ctx context.Context, orderID string) (*reconcile.OrderStatus, error)
}

type Lister interface {
	ListOrders(ctx context.Context, after string, limit int) ([]types.OrderRecord, error)
}

// GenerateStatusTasks sweeps the store every interval and emits orders whose
// status is not final.
func GenerateStatusTasks(ctx context.Context, lister Lister, final types.StatusSet, interval time.Duration) chan types.OrderRecord {

	tasks := make(chan types.OrderRecord)

	go func(ctx context.Context) {
		defer close(tasks)

		after := ""

		for {
			records, err := lister.ListOrders(ctx, after, pageSize)
			if err != nil {
				logger.Errorf("Listing orders failed: %s", err)
				records = nil
			}
			if len(records) == 0 {
				logger.Debug("All orders in store were checked")
				select {
				case <-ctx.Done():
					return
				case <-time.After(interval):
				}
				after = ""
				continue
			}
			for _, task := range records {
				after = task.OrderID
				if final.Contains(task.Status) {
					continue
				}
				select {
				case <-ctx.Done():
					return
				case tasks <- task:
				}
			}
		}
	}(ctx)

	return tasks
}

// RefreshOrders polls the processor for every task; polling applies the
// status to the store. Failures are logged and left for the next sweep. The
// returned channel is closed once tasks is drained or ctx is done.
func RefreshOrders(ctx context.Context, tasks <-chan types.OrderRecord, poller Poller) <-chan struct{} {

	done := make(chan struct{})

	go func(ctx context.Context) {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				logger.Info("Context cancel, stopping refresher")
				return
			case task, ok := <-tasks:
				if !ok {
					return
				}
				result, err := poller.PollOrder(ctx, task.OrderID)
				if err != nil {
					var upstream *mono.UpstreamError
					var notFound *store.OrderNotFoundError
					switch {
					case errors.As(err, &upstream):
						logger.Warningf("Status of order %s not refreshed: %s", task.OrderID, err)
					case errors.As(err, &notFound):
						logger.Infof("Order %s not found", task.OrderID)
					default:
						logger.Error(err)
					}
					continue
				}
				if result.Order.Status != task.Status {
					logger.Infof("Order %s status changed %s -> %s", task.OrderID, task.Status, result.Order.Status)
				}
			}
		}
	}(ctx)

	return done
}

// Run starts the refresher stages.
func Run(ctx context.Context, lister Lister, poller Poller, final types.StatusSet, interval time.Duration) {
	tasks := GenerateStatusTasks(ctx, lister, final, interval)
	RefreshOrders(ctx, tasks, poller)
}
