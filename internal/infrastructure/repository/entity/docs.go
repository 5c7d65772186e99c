// Package entity maps domain entities to their MongoDB document shapes.
// Money travels as decimal strings so nothing is lost to floating point;
// tag lists fold into delimited strings; derived fields are recomputed here
// so every write path shares one invariant.
package entity

import (
	"encoding/json"
	"time"

	"github.com/shopmetrics/ingest/internal/domain"

	"github.com/shopspring/decimal"
)

// TenantDoc is the persisted tenant shape.
type TenantDoc struct {
	ID          string     `bson:"_id,omitempty"`
	Name        string     `bson:"name"`
	Email       string     `bson:"email"`
	ShopDomain  string     `bson:"shopDomain"`
	AccessToken string     `bson:"accessToken"`
	APIKey      string     `bson:"apiKey,omitempty"`
	APISecret   string     `bson:"apiSecret,omitempty"`
	Active      bool       `bson:"active"`
	LastSyncAt  *time.Time `bson:"lastSyncAt,omitempty"`
	SyncStatus  string     `bson:"syncStatus"`
	CreatedAt   time.Time  `bson:"createdAt"`
	UpdatedAt   time.Time  `bson:"updatedAt"`
	DeletedAt   *time.Time `bson:"deletedAt,omitempty"`
}

func (d *TenantDoc) ToDomain() *domain.Tenant {
	return &domain.Tenant{
		ID:          d.ID,
		Name:        d.Name,
		Email:       d.Email,
		ShopDomain:  d.ShopDomain,
		AccessToken: d.AccessToken,
		APIKey:      d.APIKey,
		APISecret:   d.APISecret,
		Active:      d.Active,
		LastSyncAt:  d.LastSyncAt,
		SyncStatus:  domain.SyncStatus(d.SyncStatus),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
		DeletedAt:   d.DeletedAt,
	}
}

func TenantDocFromDomain(t *domain.Tenant) *TenantDoc {
	return &TenantDoc{
		ID:          t.ID,
		Name:        t.Name,
		Email:       t.Email,
		ShopDomain:  t.ShopDomain,
		AccessToken: t.AccessToken,
		APIKey:      t.APIKey,
		APISecret:   t.APISecret,
		Active:      t.Active,
		LastSyncAt:  t.LastSyncAt,
		SyncStatus:  string(t.SyncStatus),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		DeletedAt:   t.DeletedAt,
	}
}

// CustomerDoc is the persisted customer shape.
type CustomerDoc struct {
	ID               string     `bson:"_id,omitempty"`
	TenantID         string     `bson:"tenantId"`
	ShopifyID        int64      `bson:"shopifyId"`
	Email            string     `bson:"email,omitempty"`
	FirstName        string     `bson:"firstName,omitempty"`
	LastName         string     `bson:"lastName,omitempty"`
	Phone            string     `bson:"phone,omitempty"`
	AcceptsMarketing bool       `bson:"acceptsMarketing"`
	TotalSpent       string     `bson:"totalSpent"`
	TotalOrders      int        `bson:"totalOrders"`
	State            string     `bson:"state"`
	Note             string     `bson:"note,omitempty"`
	VerifiedEmail    bool       `bson:"verifiedEmail"`
	Tags             string     `bson:"tags,omitempty"`
	ShopifyCreatedAt *time.Time `bson:"shopifyCreatedAt,omitempty"`
	ShopifyUpdatedAt *time.Time `bson:"shopifyUpdatedAt,omitempty"`
	SyncedAt         time.Time  `bson:"syncedAt"`
	CreatedAt        time.Time  `bson:"createdAt"`
	UpdatedAt        time.Time  `bson:"updatedAt"`
}

func (d *CustomerDoc) ToDomain() *domain.Customer {
	return &domain.Customer{
		ID:               d.ID,
		TenantID:         d.TenantID,
		ShopifyID:        d.ShopifyID,
		Email:            d.Email,
		FirstName:        d.FirstName,
		LastName:         d.LastName,
		Phone:            d.Phone,
		AcceptsMarketing: d.AcceptsMarketing,
		TotalSpent:       parseMoney(d.TotalSpent),
		TotalOrders:      d.TotalOrders,
		State:            domain.CustomerState(d.State),
		Note:             d.Note,
		VerifiedEmail:    d.VerifiedEmail,
		Tags:             DecodeTags(d.Tags),
		ShopifyCreatedAt: d.ShopifyCreatedAt,
		ShopifyUpdatedAt: d.ShopifyUpdatedAt,
		SyncedAt:         d.SyncedAt,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

func CustomerDocFromDomain(c *domain.Customer) *CustomerDoc {
	return &CustomerDoc{
		ID:               c.ID,
		TenantID:         c.TenantID,
		ShopifyID:        c.ShopifyID,
		Email:            c.Email,
		FirstName:        c.FirstName,
		LastName:         c.LastName,
		Phone:            c.Phone,
		AcceptsMarketing: c.AcceptsMarketing,
		TotalSpent:       c.TotalSpent.String(),
		TotalOrders:      c.TotalOrders,
		State:            string(c.State),
		Note:             c.Note,
		VerifiedEmail:    c.VerifiedEmail,
		Tags:             EncodeTags(c.Tags),
		ShopifyCreatedAt: c.ShopifyCreatedAt,
		ShopifyUpdatedAt: c.ShopifyUpdatedAt,
		SyncedAt:         c.SyncedAt,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

// ProductDoc is the persisted product shape.
type ProductDoc struct {
	ID                string           `bson:"_id,omitempty"`
	TenantID          string           `bson:"tenantId"`
	ShopifyID         int64            `bson:"shopifyId"`
	Title             string           `bson:"title"`
	Vendor            string           `bson:"vendor,omitempty"`
	ProductType       string           `bson:"productType,omitempty"`
	Status            string           `bson:"status"`
	Price             string           `bson:"price"`
	Cost              *string          `bson:"cost,omitempty"`
	SKU               string           `bson:"sku,omitempty"`
	InventoryQuantity *int             `bson:"inventoryQuantity,omitempty"`
	Tags              string           `bson:"tags,omitempty"`
	Variants          []map[string]any `bson:"variants,omitempty"`
	ShopifyCreatedAt  *time.Time       `bson:"shopifyCreatedAt,omitempty"`
	ShopifyUpdatedAt  *time.Time       `bson:"shopifyUpdatedAt,omitempty"`
	SyncedAt          time.Time        `bson:"syncedAt"`
	CreatedAt         time.Time        `bson:"createdAt"`
	UpdatedAt         time.Time        `bson:"updatedAt"`
}

func (d *ProductDoc) ToDomain() *domain.Product {
	p := &domain.Product{
		ID:                d.ID,
		TenantID:          d.TenantID,
		ShopifyID:         d.ShopifyID,
		Title:             d.Title,
		Vendor:            d.Vendor,
		ProductType:       d.ProductType,
		Status:            domain.ProductStatus(d.Status),
		Price:             parseMoney(d.Price),
		SKU:               d.SKU,
		InventoryQuantity: d.InventoryQuantity,
		Tags:              DecodeTags(d.Tags),
		Variants:          d.Variants,
		ShopifyCreatedAt:  d.ShopifyCreatedAt,
		ShopifyUpdatedAt:  d.ShopifyUpdatedAt,
		SyncedAt:          d.SyncedAt,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
	if d.Cost != nil {
		cost := parseMoney(*d.Cost)
		p.Cost = &cost
	}
	return p
}

func ProductDocFromDomain(p *domain.Product) *ProductDoc {
	doc := &ProductDoc{
		ID:                p.ID,
		TenantID:          p.TenantID,
		ShopifyID:         p.ShopifyID,
		Title:             p.Title,
		Vendor:            p.Vendor,
		ProductType:       p.ProductType,
		Status:            string(p.Status),
		Price:             p.Price.String(),
		SKU:               p.SKU,
		InventoryQuantity: p.InventoryQuantity,
		Tags:              EncodeTags(p.Tags),
		Variants:          p.Variants,
		ShopifyCreatedAt:  p.ShopifyCreatedAt,
		ShopifyUpdatedAt:  p.ShopifyUpdatedAt,
		SyncedAt:          p.SyncedAt,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
	if p.Cost != nil {
		s := p.Cost.String()
		doc.Cost = &s
	}
	return doc
}

// OrderDoc is the persisted order shape. PlacedAt is the canonical order
// timestamp used by all date-range queries: the shop-side creation time when
// known, otherwise the local ingestion time.
type OrderDoc struct {
	ID                string     `bson:"_id,omitempty"`
	TenantID          string     `bson:"tenantId"`
	CustomerID        *string    `bson:"customerId,omitempty"`
	ShopifyID         int64      `bson:"shopifyId"`
	OrderNumber       int        `bson:"orderNumber,omitempty"`
	Email             string     `bson:"email,omitempty"`
	FinancialStatus   string     `bson:"financialStatus"`
	FulfillmentStatus string     `bson:"fulfillmentStatus,omitempty"`
	Currency          string     `bson:"currency"`
	TotalPrice        string     `bson:"totalPrice"`
	SubtotalPrice     string     `bson:"subtotalPrice"`
	TotalTax          string     `bson:"totalTax"`
	TotalDiscounts    string     `bson:"totalDiscounts"`
	PlacedAt          time.Time  `bson:"placedAt"`
	ProcessedAt       *time.Time `bson:"processedAt,omitempty"`
	CancelledAt       *time.Time `bson:"cancelledAt,omitempty"`
	Tags              string     `bson:"tags,omitempty"`
	ShopifyCreatedAt  *time.Time `bson:"shopifyCreatedAt,omitempty"`
	ShopifyUpdatedAt  *time.Time `bson:"shopifyUpdatedAt,omitempty"`
	SyncedAt          time.Time  `bson:"syncedAt"`
	CreatedAt         time.Time  `bson:"createdAt"`
	UpdatedAt         time.Time  `bson:"updatedAt"`
}

func (d *OrderDoc) ToDomain() *domain.Order {
	return &domain.Order{
		ID:                d.ID,
		TenantID:          d.TenantID,
		CustomerID:        d.CustomerID,
		ShopifyID:         d.ShopifyID,
		OrderNumber:       d.OrderNumber,
		Email:             d.Email,
		FinancialStatus:   domain.FinancialStatus(d.FinancialStatus),
		FulfillmentStatus: domain.FulfillmentStatus(d.FulfillmentStatus),
		Currency:          d.Currency,
		TotalPrice:        parseMoney(d.TotalPrice),
		SubtotalPrice:     parseMoney(d.SubtotalPrice),
		TotalTax:          parseMoney(d.TotalTax),
		TotalDiscounts:    parseMoney(d.TotalDiscounts),
		ProcessedAt:       d.ProcessedAt,
		CancelledAt:       d.CancelledAt,
		Tags:              DecodeTags(d.Tags),
		ShopifyCreatedAt:  d.ShopifyCreatedAt,
		ShopifyUpdatedAt:  d.ShopifyUpdatedAt,
		SyncedAt:          d.SyncedAt,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

func OrderDocFromDomain(o *domain.Order) *OrderDoc {
	return &OrderDoc{
		ID:                o.ID,
		TenantID:          o.TenantID,
		CustomerID:        o.CustomerID,
		ShopifyID:         o.ShopifyID,
		OrderNumber:       o.OrderNumber,
		Email:             o.Email,
		FinancialStatus:   string(o.FinancialStatus),
		FulfillmentStatus: string(o.FulfillmentStatus),
		Currency:          o.Currency,
		TotalPrice:        o.TotalPrice.String(),
		SubtotalPrice:     o.SubtotalPrice.String(),
		TotalTax:          o.TotalTax.String(),
		TotalDiscounts:    o.TotalDiscounts.String(),
		PlacedAt:          o.PlacedAt(),
		ProcessedAt:       o.ProcessedAt,
		CancelledAt:       o.CancelledAt,
		Tags:              EncodeTags(o.Tags),
		ShopifyCreatedAt:  o.ShopifyCreatedAt,
		ShopifyUpdatedAt:  o.ShopifyUpdatedAt,
		SyncedAt:          o.SyncedAt,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
}

// OrderItemDoc is the persisted line-item shape. TotalPrice is derived:
// FromDomain recomputes quantity x priceAtTime on every conversion, so no
// write path can persist a stale or forged line total.
type OrderItemDoc struct {
	ID                string     `bson:"_id,omitempty"`
	TenantID          string     `bson:"tenantId"`
	OrderID           string     `bson:"orderId"`
	ProductID         *string    `bson:"productId,omitempty"`
	ShopifyLineItemID int64      `bson:"shopifyLineItemId"`
	Title             string     `bson:"title"`
	SKU               string     `bson:"sku,omitempty"`
	Quantity          int        `bson:"quantity"`
	PriceAtTime       string     `bson:"priceAtTime"`
	TotalPrice        string     `bson:"totalPrice"`
	ProductShopifyID  int64      `bson:"productShopifyId,omitempty"`
	OrderPlacedAt     time.Time  `bson:"orderPlacedAt"`
	OrderCreatedAt    *time.Time `bson:"orderCreatedAt,omitempty"`
	CreatedAt         time.Time  `bson:"createdAt"`
	UpdatedAt         time.Time  `bson:"updatedAt"`
}

func (d *OrderItemDoc) ToDomain() *domain.OrderItem {
	return &domain.OrderItem{
		ID:                d.ID,
		TenantID:          d.TenantID,
		OrderID:           d.OrderID,
		ProductID:         d.ProductID,
		ShopifyLineItemID: d.ShopifyLineItemID,
		Title:             d.Title,
		SKU:               d.SKU,
		Quantity:          d.Quantity,
		PriceAtTime:       parseMoney(d.PriceAtTime),
		TotalPrice:        parseMoney(d.TotalPrice),
		ProductShopifyID:  d.ProductShopifyID,
		OrderCreatedAt:    d.OrderCreatedAt,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

func OrderItemDocFromDomain(i *domain.OrderItem) *OrderItemDoc {
	placedAt := i.CreatedAt
	if i.OrderCreatedAt != nil {
		placedAt = *i.OrderCreatedAt
	}
	total := i.PriceAtTime.Mul(decimal.NewFromInt(int64(i.Quantity)))
	return &OrderItemDoc{
		ID:                i.ID,
		TenantID:          i.TenantID,
		OrderID:           i.OrderID,
		ProductID:         i.ProductID,
		ShopifyLineItemID: i.ShopifyLineItemID,
		Title:             i.Title,
		SKU:               i.SKU,
		Quantity:          i.Quantity,
		PriceAtTime:       i.PriceAtTime.String(),
		TotalPrice:        total.String(),
		ProductShopifyID:  i.ProductShopifyID,
		OrderPlacedAt:     placedAt,
		OrderCreatedAt:    i.OrderCreatedAt,
		CreatedAt:         i.CreatedAt,
		UpdatedAt:         i.UpdatedAt,
	}
}

// EventDoc is the persisted funnel-signal shape.
type EventDoc struct {
	ID         string     `bson:"_id,omitempty"`
	TenantID   string     `bson:"tenantId"`
	ShopifyID  string     `bson:"shopifyId,omitempty"`
	Type       string     `bson:"type"`
	Payload    string     `bson:"payload,omitempty"`
	OccurredAt *time.Time `bson:"occurredAt,omitempty"`
	CreatedAt  time.Time  `bson:"createdAt"`
}

func (d *EventDoc) ToDomain() *domain.Event {
	e := &domain.Event{
		ID:         d.ID,
		TenantID:   d.TenantID,
		ShopifyID:  d.ShopifyID,
		Type:       domain.EventType(d.Type),
		OccurredAt: d.OccurredAt,
		CreatedAt:  d.CreatedAt,
	}
	if d.Payload != "" {
		e.Payload = json.RawMessage(d.Payload)
	}
	return e
}

func EventDocFromDomain(e *domain.Event) *EventDoc {
	return &EventDoc{
		ID:         e.ID,
		TenantID:   e.TenantID,
		ShopifyID:  e.ShopifyID,
		Type:       string(e.Type),
		Payload:    string(e.Payload),
		OccurredAt: e.OccurredAt,
		CreatedAt:  e.CreatedAt,
	}
}

// parseMoney restores a decimal persisted as a string. Stored values were
// produced by decimal.String, so a parse failure means corrupt data; zero is
// the safe read in that case.
func parseMoney(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
