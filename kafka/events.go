package kafka

import "time"

// CatalogEvent announces a catalog mutation so downstream caches and search
// indexes can react.
type CatalogEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	ProductID uint      `json:"product_id"`
	Category  string    `json:"category,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Event types
const (
	EventTypeProductCreated = "catalog.product.created"
	EventTypeProductUpdated = "catalog.product.updated"
	EventTypeProductDeleted = "catalog.product.deleted"
)

// Kafka topics
const (
	TopicCatalogEvents = "catalog-events"
)
