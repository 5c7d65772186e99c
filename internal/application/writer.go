package application

import (
	"context"
	"fmt"
	"time"

	"github.com/shopmetrics/ingest/internal/ports"

	"github.com/rs/zerolog"
)

// entityWriter is the single persistence path for external records. Polling
// sync and webhook ingestion both go through it, so an order arriving by
// webhook and the same order arriving by sync converge on identical writes.
type entityWriter struct {
	customers ports.CustomerRepository
	products  ports.ProductRepository
	orders    ports.OrderRepository
	logger    zerolog.Logger
}

func newEntityWriter(
	customers ports.CustomerRepository,
	products ports.ProductRepository,
	orders ports.OrderRepository,
	logger zerolog.Logger,
) *entityWriter {
	return &entityWriter{
		customers: customers,
		products:  products,
		orders:    orders,
		logger:    logger,
	}
}

func (w *entityWriter) writeCustomer(ctx context.Context, tenantID string, rec ports.CustomerRecord) error {
	customer, err := mapCustomer(tenantID, rec, time.Now().UTC())
	if err != nil {
		return err
	}
	if err := w.customers.Upsert(ctx, customer); err != nil {
		return fmt.Errorf("persist customer %d: %w", rec.ID, err)
	}
	return nil
}

func (w *entityWriter) writeProduct(ctx context.Context, tenantID string, rec ports.ProductRecord) error {
	product, err := mapProduct(tenantID, rec, time.Now().UTC())
	if err != nil {
		return err
	}
	if err := w.products.Upsert(ctx, product); err != nil {
		return fmt.Errorf("persist product %d: %w", rec.ID, err)
	}
	return nil
}

// writeOrder persists an order and its line items. The customer link resolves
// by (tenantId, external customer id) and stays nil when that customer has not
// been ingested yet. Line-item failures are counted and do not fail the order.
func (w *entityWriter) writeOrder(ctx context.Context, tenantID string, rec ports.OrderRecord) (itemErrors int, err error) {
	order, err := mapOrder(tenantID, rec, time.Now().UTC())
	if err != nil {
		return 0, err
	}

	if rec.Customer != nil {
		customer, err := w.customers.GetByShopifyID(ctx, tenantID, rec.Customer.ID)
		if err != nil {
			return 0, fmt.Errorf("resolve customer %d: %w", rec.Customer.ID, err)
		}
		if customer != nil {
			order.CustomerID = &customer.ID
		}
	}

	orderID, err := w.orders.Upsert(ctx, order)
	if err != nil {
		return 0, fmt.Errorf("persist order %d: %w", rec.ID, err)
	}

	for _, line := range rec.LineItems {
		item, err := mapOrderItem(tenantID, orderID, rec.CreatedAt, line)
		if err != nil {
			itemErrors++
			w.logger.Error().Err(err).
				Str("tenantId", tenantID).
				Int64("orderId", rec.ID).
				Int64("lineItemId", line.ID).
				Msg("failed to map line item")
			continue
		}
		if line.ProductID != nil {
			product, err := w.products.GetByShopifyID(ctx, tenantID, *line.ProductID)
			if err != nil {
				return itemErrors, fmt.Errorf("resolve product %d: %w", *line.ProductID, err)
			}
			if product != nil {
				item.ProductID = &product.ID
			}
		}
		if err := w.orders.UpsertItem(ctx, item); err != nil {
			itemErrors++
			w.logger.Error().Err(err).
				Str("tenantId", tenantID).
				Int64("orderId", rec.ID).
				Int64("lineItemId", line.ID).
				Msg("failed to persist line item")
		}
	}
	return itemErrors, nil
}
