package product

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/Pesokrava/product_catalog/internal/pkg/logger"
)

// EventSubject is the NATS subject product lifecycle events are published to.
const EventSubject = "products.events"

// Product event types
const (
	EventProductCreated      = "product.created"
	EventProductUpdated      = "product.updated"
	EventProductStockUpdated = "product.stock_updated"
	EventProductDeleted      = "product.deleted"
)

// ProductEvent is the payload published after a successful command.
type ProductEvent struct {
	Type      string    `json:"type"`
	ProductID uuid.UUID `json:"product_id"`
	Sku       string    `json:"sku,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher is the port command handlers use to emit product events.
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// publishEvent emits a product event best-effort; a publish failure is
// logged but never fails the command that already committed.
func publishEvent(ctx context.Context, pub Publisher, log *logger.Logger, eventType string, productID uuid.UUID, sku string) {
	if pub == nil {
		return
	}

	event := ProductEvent{
		Type:      eventType,
		ProductID: productID,
		Sku:       sku,
		Timestamp: time.Now().UTC(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Error("Failed to marshal product event", err)
		return
	}

	if err := pub.Publish(ctx, EventSubject, data); err != nil {
		log.WithFields(map[string]interface{}{
			"event":      eventType,
			"product_id": productID,
		}).Error("Failed to publish product event", err)
	}
}
