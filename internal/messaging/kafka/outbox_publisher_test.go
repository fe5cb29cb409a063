package kafka

import (
	"encoding/json"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

func TestOutboxPublisher_Publish(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	defer sp.Close()

	sp.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var envelope EventEnvelope
		if err := json.Unmarshal(val, &envelope); err != nil {
			return err
		}
		if envelope.EventType != domain.EventTypeOrderCreated {
			t.Errorf("unexpected event type %s", envelope.EventType)
		}
		if envelope.AggregateID != "68b1c0ffee0000000000aaaa" {
			t.Errorf("unexpected aggregate id %s", envelope.AggregateID)
		}
		if string(envelope.Payload) != `{"status":"pending"}` {
			t.Errorf("payload was re-encoded: %s", envelope.Payload)
		}
		return nil
	})

	publisher := NewOutboxPublisher(newTestProducer(sp), TopicOrderEvents)
	err := publisher.Publish(domain.OutboxMessage{
		ID:            "msg-1",
		AggregateType: domain.AggregateOrder,
		AggregateID:   "68b1c0ffee0000000000aaaa",
		EventType:     domain.EventTypeOrderCreated,
		Payload:       []byte(`{"status":"pending"}`),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestOutboxPublisher_PublishError(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	defer sp.Close()

	sp.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	publisher := NewOutboxPublisher(newTestProducer(sp), TopicOrderEvents)
	err := publisher.Publish(domain.OutboxMessage{
		ID:        "msg-1",
		EventType: domain.EventTypeOrderCreated,
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestOutboxPublisher_NotInitialized(t *testing.T) {
	publisher := &OutboxTopicPublisher{}
	if err := publisher.Publish(domain.OutboxMessage{EventType: domain.EventTypeOrderCreated}); err == nil {
		t.Fatal("expected error for uninitialized publisher")
	}
}
