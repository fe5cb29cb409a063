package kafka

import (
	"encoding/json"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// Topics для Kafka.
const (
	// TopicOrderEvents читают лента активности дашборда и нотификации.
	TopicOrderEvents = "storefront.order.events"
)

// EventEnvelope — wire-формат сообщения в топике заказных событий.
// Payload несёт снимок заказа как в outbox, без перекодирования.
type EventEnvelope struct {
	ID            string           `json:"id"`
	AggregateType string           `json:"aggregate_type"`
	AggregateID   string           `json:"aggregate_id"`
	EventType     domain.EventType `json:"event_type"`
	Payload       json.RawMessage  `json:"payload"`
	PublishedAt   time.Time        `json:"published_at"`
}

// NewEventEnvelope заворачивает outbox-сообщение в wire-формат,
// фиксируя момент публикации.
func NewEventEnvelope(msg domain.OutboxMessage) EventEnvelope {
	return EventEnvelope{
		ID:            msg.ID,
		AggregateType: msg.AggregateType,
		AggregateID:   msg.AggregateID,
		EventType:     msg.EventType,
		Payload:       json.RawMessage(msg.Payload),
		PublishedAt:   time.Now().UTC(),
	}
}

// Key возвращает ключ партиционирования: события одного заказа должны
// попадать в одну партицию и читаться по порядку.
func (e EventEnvelope) Key() string {
	if e.AggregateID != "" {
		return e.AggregateID
	}
	return e.ID
}
