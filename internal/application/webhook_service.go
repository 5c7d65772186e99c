package application

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/shopmetrics/ingest/internal/domain"
	"github.com/shopmetrics/ingest/internal/ports"

	"github.com/rs/zerolog"
)

// SignatureVerifier checks a webhook delivery against its signature header.
type SignatureVerifier interface {
	Verify(rawBody []byte, signatureHeader string) bool
}

// WebhookService ingests real-time store notifications. Entity topics reuse
// the sync write path, so a webhook and a poll for the same record converge on
// the same upsert. Checkout and cart topics become funnel events.
type WebhookService struct {
	verifier SignatureVerifier
	writer   *entityWriter
	events   ports.EventRepository
	cache    ports.Cache
	recorder Recorder
	logger   zerolog.Logger
}

// NewWebhookService creates the webhook ingestor. recorder may be nil.
func NewWebhookService(
	verifier SignatureVerifier,
	customers ports.CustomerRepository,
	products ports.ProductRepository,
	orders ports.OrderRepository,
	events ports.EventRepository,
	cache ports.Cache,
	recorder Recorder,
	logger zerolog.Logger,
) *WebhookService {
	return &WebhookService{
		verifier: verifier,
		writer:   newEntityWriter(customers, products, orders, logger),
		events:   events,
		cache:    cache,
		recorder: recorder,
		logger:   logger,
	}
}

// VerifySignature reports whether the raw body matches the signature header.
// Callers must reject the delivery before Handle when this returns false.
func (s *WebhookService) VerifySignature(rawBody []byte, signatureHeader string) bool {
	return s.verifier.Verify(rawBody, signatureHeader)
}

// checkoutPayload is the slice of a checkout or cart notification this
// service reads. Checkout and cart payloads identify themselves by token;
// entity payloads by numeric id.
type checkoutPayload struct {
	ID          int64      `json:"id"`
	Token       string     `json:"token"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   *time.Time `json:"created_at"`
}

func (p *checkoutPayload) externalID() string {
	if p.Token != "" {
		return p.Token
	}
	if p.ID != 0 {
		return strconv.FormatInt(p.ID, 10)
	}
	return ""
}

// Handle dispatches one verified delivery by topic. Unknown topics are logged
// and acknowledged without error so the platform does not redeliver them.
func (s *WebhookService) Handle(ctx context.Context, topic, tenantID string, payload []byte) error {
	var err error
	switch topic {
	case "customers/create", "customers/update":
		err = s.handleCustomer(ctx, tenantID, payload)
	case "products/create", "products/update":
		err = s.handleProduct(ctx, tenantID, payload)
	case "orders/create", "orders/updated", "orders/cancelled":
		err = s.handleOrder(ctx, tenantID, payload)
	case "checkouts/create":
		err = s.handleFunnel(ctx, tenantID, domain.EventCheckoutStarted, payload)
	case "checkouts/update":
		err = s.handleCheckoutUpdate(ctx, tenantID, payload)
	case "carts/update":
		err = s.handleFunnel(ctx, tenantID, domain.EventCartCreated, payload)
	default:
		s.logger.Warn().Str("topic", topic).Str("tenantId", tenantID).Msg("unhandled webhook topic")
		s.observe(topic, "unhandled")
		return nil
	}

	if err != nil {
		s.observe(topic, "error")
		return fmt.Errorf("handle webhook %s: %w", topic, err)
	}

	s.observe(topic, "ok")
	if cerr := s.cache.Delete(ctx, dashboardCacheKey(tenantID)); cerr != nil {
		s.logger.Warn().Err(cerr).Str("tenantId", tenantID).Msg("failed to invalidate dashboard cache")
	}
	return nil
}

func (s *WebhookService) handleCustomer(ctx context.Context, tenantID string, payload []byte) error {
	var rec ports.CustomerRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return fmt.Errorf("decode customer payload: %w", err)
	}
	return s.writer.writeCustomer(ctx, tenantID, rec)
}

func (s *WebhookService) handleProduct(ctx context.Context, tenantID string, payload []byte) error {
	var rec ports.ProductRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return fmt.Errorf("decode product payload: %w", err)
	}
	return s.writer.writeProduct(ctx, tenantID, rec)
}

func (s *WebhookService) handleOrder(ctx context.Context, tenantID string, payload []byte) error {
	var rec ports.OrderRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return fmt.Errorf("decode order payload: %w", err)
	}
	itemErrors, err := s.writer.writeOrder(ctx, tenantID, rec)
	if err != nil {
		return err
	}
	if itemErrors > 0 {
		s.logger.Warn().
			Str("tenantId", tenantID).
			Int64("orderId", rec.ID).
			Int("itemErrors", itemErrors).
			Msg("order webhook persisted with line item errors")
	}
	return nil
}

// handleCheckoutUpdate records checkout progress: a completed_at timestamp
// means the checkout converted, otherwise it is a refresh of the started
// signal.
func (s *WebhookService) handleCheckoutUpdate(ctx context.Context, tenantID string, payload []byte) error {
	var p checkoutPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("decode checkout payload: %w", err)
	}
	eventType := domain.EventCheckoutStarted
	if p.CompletedAt != nil {
		eventType = domain.EventCheckoutCompleted
	}
	return s.insertEvent(ctx, tenantID, eventType, &p, payload)
}

func (s *WebhookService) handleFunnel(ctx context.Context, tenantID string, eventType domain.EventType, payload []byte) error {
	var p checkoutPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("decode funnel payload: %w", err)
	}
	return s.insertEvent(ctx, tenantID, eventType, &p, payload)
}

func (s *WebhookService) insertEvent(ctx context.Context, tenantID string, eventType domain.EventType, p *checkoutPayload, payload []byte) error {
	event := &domain.Event{
		TenantID:   tenantID,
		ShopifyID:  p.externalID(),
		Type:       eventType,
		Payload:    json.RawMessage(payload),
		OccurredAt: p.CreatedAt,
	}
	if err := s.events.Insert(ctx, event); err != nil {
		return fmt.Errorf("persist %s event: %w", eventType, err)
	}
	return nil
}

func (s *WebhookService) observe(topic, outcome string) {
	if s.recorder != nil {
		s.recorder.ObserveWebhook(topic, outcome)
	}
}
