package integration

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/service/order"
	"github.com/vladislavdragonenkov/storefront/internal/service/outbox"
	"github.com/vladislavdragonenkov/storefront/internal/service/ratelimit"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
)

// capturePublisher собирает опубликованные outbox-сообщения вместо Kafka.
type capturePublisher struct {
	published []domain.OutboxMessage
}

func (p *capturePublisher) Publish(event domain.OutboxMessage) error {
	p.published = append(p.published, event)
	return nil
}

// OrderLifecycleTestSuite тестирует полный жизненный цикл заказов.
type OrderLifecycleTestSuite struct {
	suite.Suite
	service   *order.Service
	repo      domain.OrderRepository
	outbox    domain.OutboxRepository
	limiter   *ratelimit.Limiter
	publisher *capturePublisher
}

func (suite *OrderLifecycleTestSuite) SetupTest() {
	baseLogger := log.New()
	baseLogger.SetLevel(log.WarnLevel) // Уменьшаем шум в тестах
	logger := baseLogger.WithField("component", "integration-test")

	suite.repo = memory.NewOrderRepository()
	suite.outbox = memory.NewOutboxRepository()
	suite.publisher = &capturePublisher{}
	suite.limiter = ratelimit.NewLimiter(memory.NewRateLimitStore(), ratelimit.DefaultConfig(),
		ratelimit.WithLogger(logger))

	suite.service = order.NewService(suite.repo, suite.limiter,
		order.WithOutbox(suite.outbox),
		order.WithLogger(logger),
	)
}

func (suite *OrderLifecycleTestSuite) createOrder() domain.Order {
	created, err := suite.service.Create(order.CreateInput{
		CustomerName:   "Ivan Petrov",
		PhoneNumberOne: "+15550100",
		Address:        "12 Harbor Lane",
		City:           "Springfield",
		Items: []order.ItemInput{
			{ProductID: "sku-1", Quantity: 2, PriceMinor: 500},
		},
		DeliveryFeeMinor: 100,
	}, "admin", true)
	require.NoError(suite.T(), err)
	return created
}

func (suite *OrderLifecycleTestSuite) TestFullLifecycle() {
	created := suite.createOrder()
	require.Equal(suite.T(), domain.OrderStatusPending, created.Status)

	for _, next := range []domain.OrderStatus{
		domain.OrderStatusConfirmed,
		domain.OrderStatusShipped,
		domain.OrderStatusDelivered,
	} {
		updated, err := suite.service.ChangeStatus(created.ID, next)
		require.NoError(suite.T(), err)
		require.Equal(suite.T(), next, updated.Status)
		require.False(suite.T(), updated.UpdatedAt.Before(created.UpdatedAt))
	}

	_, err := suite.service.Cancel(created.ID)
	require.ErrorIs(suite.T(), err, domain.ErrOrderDelivered)

	_, err = suite.service.ChangeStatus(created.ID, domain.OrderStatusShipped)
	require.ErrorIs(suite.T(), err, domain.ErrOrderDelivered)
}

func (suite *OrderLifecycleTestSuite) TestEventsReachPublisherThroughOutbox() {
	created := suite.createOrder()

	_, err := suite.service.ChangeStatus(created.ID, domain.OrderStatusConfirmed)
	require.NoError(suite.T(), err)
	_, err = suite.service.Cancel(created.ID)
	require.NoError(suite.T(), err)

	worker := outbox.NewWorker(suite.outbox, suite.publisher)
	worker.ProcessOnce(context.Background())

	require.Len(suite.T(), suite.publisher.published, 3)
	require.Equal(suite.T(), domain.EventTypeOrderCreated, suite.publisher.published[0].EventType)
	require.Equal(suite.T(), domain.EventTypeOrderStatusChanged, suite.publisher.published[1].EventType)
	require.Equal(suite.T(), domain.EventTypeOrderCancelled, suite.publisher.published[2].EventType)

	var payload struct {
		OrderID string `json:"order_id"`
		Status  string `json:"status"`
	}
	require.NoError(suite.T(), json.Unmarshal(suite.publisher.published[2].Payload, &payload))
	require.Equal(suite.T(), created.ID, payload.OrderID)
	require.Equal(suite.T(), "cancelled", payload.Status)

	stats, err := suite.outbox.Stats()
	require.NoError(suite.T(), err)
	require.Zero(suite.T(), stats.PendingCount)
}

func (suite *OrderLifecycleTestSuite) TestBulkExportWorkflow() {
	first := suite.createOrder()
	second := suite.createOrder()
	delivered := suite.createOrder()

	_, err := suite.service.ChangeStatus(delivered.ID, domain.OrderStatusDelivered)
	require.NoError(suite.T(), err)

	modified, err := suite.service.BulkConfirm([]string{first.ID, second.ID, delivered.ID})
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), int64(2), modified)

	got, err := suite.service.Get(delivered.ID)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), domain.OrderStatusDelivered, got.Status)
}

func (suite *OrderLifecycleTestSuite) TestRateLimitAndUnblock() {
	input := order.CreateInput{
		CustomerName:   "Anna Sidorova",
		PhoneNumberOne: "+15550101",
		Address:        "3 Main Street",
		City:           "Springfield",
		Items: []order.ItemInput{
			{ProductID: "sku-2", Quantity: 1, PriceMinor: 700},
		},
	}

	for i := 0; i < 10; i++ {
		_, err := suite.service.Create(input, "shopper-1", false)
		require.NoError(suite.T(), err, "attempt %d", i+1)
	}

	_, err := suite.service.Create(input, "shopper-1", false)
	require.ErrorIs(suite.T(), err, domain.ErrRateLimited)

	removed, err := suite.service.Unblock("shopper-1")
	require.NoError(suite.T(), err)
	require.True(suite.T(), removed)

	_, err = suite.service.Create(input, "shopper-1", false)
	require.NoError(suite.T(), err)
}

func (suite *OrderLifecycleTestSuite) TestDeleteIsFinal() {
	created := suite.createOrder()

	require.NoError(suite.T(), suite.service.Delete(created.ID))

	_, err := suite.service.Get(created.ID)
	require.ErrorIs(suite.T(), err, domain.ErrOrderNotFound)

	err = suite.service.Delete(created.ID)
	require.ErrorIs(suite.T(), err, domain.ErrOrderNotFound)
}

func (suite *OrderLifecycleTestSuite) TestTimestampsMonotonic() {
	created := suite.createOrder()
	require.False(suite.T(), created.UpdatedAt.Before(created.CreatedAt))

	time.Sleep(time.Millisecond)
	comment := "call before delivery"
	updated, err := suite.service.Update(created.ID, order.UpdatePatch{Comment: &comment})
	require.NoError(suite.T(), err)
	require.True(suite.T(), updated.UpdatedAt.After(created.UpdatedAt))
	require.Equal(suite.T(), created.CreatedAt, updated.CreatedAt)
}

func TestOrderLifecycleTestSuite(t *testing.T) {
	suite.Run(t, new(OrderLifecycleTestSuite))
}
