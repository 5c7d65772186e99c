package application

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopmetrics/ingest/internal/domain"
	"github.com/shopmetrics/ingest/internal/ports"

	"github.com/shopspring/decimal"
)

// splitTags turns the platform's comma-joined tag string into an ordered
// list, dropping empty segments. Order is preserved.
func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	var tags []string
	for _, part := range strings.Split(raw, ",") {
		if t := strings.TrimSpace(part); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// parseAmount converts a wire money string to a decimal. Money fields must be
// non-negative; an empty string means the platform omitted the field and reads
// as zero.
func parseAmount(field, raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", field, raw, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("negative %s %q", field, raw)
	}
	return d, nil
}

func mapCustomer(tenantID string, rec ports.CustomerRecord, now time.Time) (*domain.Customer, error) {
	if rec.ID == 0 {
		return nil, &domain.MappingError{Entity: "customer", ExternalID: rec.ID, Cause: fmt.Errorf("missing external id")}
	}
	totalSpent, err := parseAmount("total_spent", rec.TotalSpent)
	if err != nil {
		return nil, &domain.MappingError{Entity: "customer", ExternalID: rec.ID, Cause: err}
	}
	state := domain.CustomerState(rec.State)
	if state == "" {
		state = domain.CustomerStateEnabled
	}
	return &domain.Customer{
		TenantID:         tenantID,
		ShopifyID:        rec.ID,
		Email:            rec.Email,
		FirstName:        rec.FirstName,
		LastName:         rec.LastName,
		Phone:            rec.Phone,
		AcceptsMarketing: rec.AcceptsMarketing,
		TotalSpent:       totalSpent,
		TotalOrders:      rec.OrdersCount,
		State:            state,
		Note:             rec.Note,
		VerifiedEmail:    rec.VerifiedEmail,
		Tags:             splitTags(rec.Tags),
		ShopifyCreatedAt: rec.CreatedAt,
		ShopifyUpdatedAt: rec.UpdatedAt,
		SyncedAt:         now,
	}, nil
}

// mapProduct flattens the first variant into the product's price, cost, sku
// and inventory, matching how the storefront reports simple products. The
// whole variant list is still carried through as an opaque blob.
func mapProduct(tenantID string, rec ports.ProductRecord, now time.Time) (*domain.Product, error) {
	if rec.ID == 0 {
		return nil, &domain.MappingError{Entity: "product", ExternalID: rec.ID, Cause: fmt.Errorf("missing external id")}
	}
	status := domain.ProductStatus(rec.Status)
	if status == "" {
		status = domain.ProductStatusActive
	}

	p := &domain.Product{
		TenantID:         tenantID,
		ShopifyID:        rec.ID,
		Title:            rec.Title,
		Vendor:           rec.Vendor,
		ProductType:      rec.ProductType,
		Status:           status,
		Tags:             splitTags(rec.Tags),
		ShopifyCreatedAt: rec.CreatedAt,
		ShopifyUpdatedAt: rec.UpdatedAt,
		SyncedAt:         now,
	}

	if len(rec.Variants) > 0 {
		first := rec.Variants[0]
		price, err := parseAmount("price", first.Price)
		if err != nil {
			return nil, &domain.MappingError{Entity: "product", ExternalID: rec.ID, Cause: err}
		}
		p.Price = price
		p.SKU = first.SKU
		p.InventoryQuantity = first.InventoryQuantity
		if first.CostPerItem != "" {
			cost, err := parseAmount("cost_per_item", first.CostPerItem)
			if err != nil {
				return nil, &domain.MappingError{Entity: "product", ExternalID: rec.ID, Cause: err}
			}
			p.Cost = &cost
		}
		variants := make([]map[string]any, 0, len(rec.Variants))
		for _, v := range rec.Variants {
			entry := map[string]any{
				"id":    v.ID,
				"title": v.Title,
				"sku":   v.SKU,
				"price": v.Price,
			}
			if v.InventoryQuantity != nil {
				entry["inventory_quantity"] = *v.InventoryQuantity
			}
			variants = append(variants, entry)
		}
		p.Variants = variants
	}
	return p, nil
}

func mapOrder(tenantID string, rec ports.OrderRecord, now time.Time) (*domain.Order, error) {
	if rec.ID == 0 {
		return nil, &domain.MappingError{Entity: "order", ExternalID: rec.ID, Cause: fmt.Errorf("missing external id")}
	}
	totalPrice, err := parseAmount("total_price", rec.TotalPrice)
	if err != nil {
		return nil, &domain.MappingError{Entity: "order", ExternalID: rec.ID, Cause: err}
	}
	subtotal, err := parseAmount("subtotal_price", rec.SubtotalPrice)
	if err != nil {
		return nil, &domain.MappingError{Entity: "order", ExternalID: rec.ID, Cause: err}
	}
	tax, err := parseAmount("total_tax", rec.TotalTax)
	if err != nil {
		return nil, &domain.MappingError{Entity: "order", ExternalID: rec.ID, Cause: err}
	}
	discounts, err := parseAmount("total_discounts", rec.TotalDiscounts)
	if err != nil {
		return nil, &domain.MappingError{Entity: "order", ExternalID: rec.ID, Cause: err}
	}
	financial := domain.FinancialStatus(rec.FinancialStatus)
	if financial == "" {
		financial = domain.FinancialStatusPending
	}
	return &domain.Order{
		TenantID:          tenantID,
		ShopifyID:         rec.ID,
		OrderNumber:       rec.OrderNumber,
		Email:             rec.Email,
		FinancialStatus:   financial,
		FulfillmentStatus: domain.FulfillmentStatus(rec.FulfillmentStatus),
		Currency:          rec.Currency,
		TotalPrice:        totalPrice,
		SubtotalPrice:     subtotal,
		TotalTax:          tax,
		TotalDiscounts:    discounts,
		ProcessedAt:       rec.ProcessedAt,
		CancelledAt:       rec.CancelledAt,
		Tags:              splitTags(rec.Tags),
		ShopifyCreatedAt:  rec.CreatedAt,
		ShopifyUpdatedAt:  rec.UpdatedAt,
		SyncedAt:          now,
	}, nil
}

func mapOrderItem(tenantID, orderID string, orderCreatedAt *time.Time, rec ports.LineItemRecord) (*domain.OrderItem, error) {
	if rec.ID == 0 {
		return nil, &domain.MappingError{Entity: "order_item", ExternalID: rec.ID, Cause: fmt.Errorf("missing external id")}
	}
	if rec.Quantity < 1 {
		return nil, &domain.MappingError{Entity: "order_item", ExternalID: rec.ID, Cause: fmt.Errorf("quantity %d below 1", rec.Quantity)}
	}
	price, err := parseAmount("price", rec.Price)
	if err != nil {
		return nil, &domain.MappingError{Entity: "order_item", ExternalID: rec.ID, Cause: err}
	}
	item := &domain.OrderItem{
		TenantID:          tenantID,
		OrderID:           orderID,
		ShopifyLineItemID: rec.ID,
		Title:             rec.Title,
		SKU:               rec.SKU,
		Quantity:          rec.Quantity,
		PriceAtTime:       price,
		TotalPrice:        price.Mul(decimal.NewFromInt(int64(rec.Quantity))),
		OrderCreatedAt:    orderCreatedAt,
	}
	if rec.ProductID != nil {
		item.ProductShopifyID = *rec.ProductID
	}
	return item, nil
}
