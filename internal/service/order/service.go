package order

import (
	"encoding/json"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/metrics"
	"github.com/vladislavdragonenkov/storefront/internal/service/ratelimit"
)

// Service — единая точка входа заказной подсистемы: связывает лимитер,
// state machine статусов, инварианты заказа и репозиторий.
type Service struct {
	repo    domain.OrderRepository
	limiter *ratelimit.Limiter
	outbox  domain.OutboxRepository
	metrics *metrics.OrderMetrics
	logger  *log.Entry
	now     func() time.Time
}

// Option настраивает Service.
type Option func(*Service)

// WithOutbox включает публикацию событий жизненного цикла через outbox.
func WithOutbox(outbox domain.OutboxRepository) Option {
	return func(s *Service) {
		s.outbox = outbox
	}
}

// WithMetrics подключает счётчики заказной подсистемы.
func WithMetrics(m *metrics.OrderMetrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithLogger задаёт logger сервиса.
func WithLogger(logger *log.Entry) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithClock подменяет источник времени (для тестов).
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService конструирует сервис заказов.
func NewService(repo domain.OrderRepository, limiter *ratelimit.Limiter, options ...Option) *Service {
	s := &Service{
		repo:    repo,
		limiter: limiter,
		now:     time.Now,
	}
	for _, option := range options {
		option(s)
	}
	if s.logger == nil {
		s.logger = log.WithField("component", "order-service")
	}
	return s
}

// Create проверяет квоту идентичности, валидирует вход и сохраняет заказ
// в статусе pending. Администраторы лимитер не проходят вовсе. Решение
// лимитера фиксируется до записи: сбой между "разрешено" и "сохранено"
// теряет заказ, но не даёт обойти квоту повторной попыткой.
func (s *Service) Create(input CreateInput, identity string, isAdmin bool) (domain.Order, error) {
	if !isAdmin {
		if s.limiter.CheckAndRecord(identity) == ratelimit.DecisionBlocked {
			s.logger.WithField("identity", identity).Warn("order submission blocked by rate limiter")
			if s.metrics != nil {
				s.metrics.RecordRateLimited()
			}
			return domain.Order{}, domain.ErrRateLimited
		}
	}

	now := s.now().UTC()
	orderRef := input.OrderRef
	if orderRef == "" {
		orderRef = domain.NewOrderRef(now)
	}

	order := domain.Order{
		OrderRef:         orderRef,
		CustomerName:     input.CustomerName,
		Email:            input.Email,
		PhoneNumberOne:   input.PhoneNumberOne,
		PhoneNumberTwo:   input.PhoneNumberTwo,
		Address:          input.Address,
		City:             input.City,
		State:            input.State,
		Comment:          input.Comment,
		Items:            toDomainItems(input.Items),
		DeliveryFeeMinor: input.DeliveryFeeMinor,
		Status:           domain.OrderStatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	// Итог всегда пересчитывается сервером; клиентское значение — только сверка.
	order.TotalMinor = order.ComputeTotalMinor()
	if input.TotalMinor != nil && *input.TotalMinor != order.TotalMinor {
		return domain.Order{}, &ValidationError{Errs: []error{domain.ErrTotalMismatch}}
	}

	if errs := order.ValidateInvariants(); len(errs) > 0 {
		return domain.Order{}, &ValidationError{Errs: errs}
	}

	stored, err := s.repo.Create(order)
	if err != nil {
		if errors.Is(err, domain.ErrOrderRefTaken) {
			return domain.Order{}, &ValidationError{Errs: []error{domain.ErrOrderRefTaken}}
		}
		s.logger.WithError(err).Error("failed to create order")
		return domain.Order{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordCreated()
	}
	s.enqueueOrderEvent(domain.EventTypeOrderCreated, stored)
	return stored, nil
}

// Get возвращает заказ по идентификатору документа.
func (s *Service) Get(id string) (domain.Order, error) {
	return s.loadOrder(id, "Get")
}

// GetByRef возвращает заказ по человекочитаемому номеру.
func (s *Service) GetByRef(orderRef string) (domain.Order, error) {
	order, err := s.repo.GetByRef(orderRef)
	if err != nil {
		if !errors.Is(err, domain.ErrOrderNotFound) {
			s.logger.WithError(err).WithField("order_ref", orderRef).Error("failed to load order by ref")
		}
		return domain.Order{}, err
	}
	return order, nil
}

// List возвращает заказы от новых к старым; хвост этого списка читает
// лента недавней активности дашборда.
func (s *Service) List(limit int) ([]domain.Order, error) {
	orders, err := s.repo.List(limit)
	if err != nil {
		s.logger.WithError(err).Error("failed to list orders")
		return nil, err
	}
	return orders, nil
}

// Update применяет частичное обновление: меняются только заполненные поля
// патча, остальные сохраняют прежние значения. Изменение позиций или
// доставки пересчитывает итог.
func (s *Service) Update(id string, patch UpdatePatch) (domain.Order, error) {
	order, err := s.loadOrder(id, "Update")
	if err != nil {
		return domain.Order{}, err
	}

	if patch.CustomerName != nil {
		order.CustomerName = *patch.CustomerName
	}
	if patch.Email != nil {
		order.Email = *patch.Email
	}
	if patch.PhoneNumberOne != nil {
		order.PhoneNumberOne = *patch.PhoneNumberOne
	}
	if patch.PhoneNumberTwo != nil {
		order.PhoneNumberTwo = *patch.PhoneNumberTwo
	}
	if patch.Address != nil {
		order.Address = *patch.Address
	}
	if patch.City != nil {
		order.City = *patch.City
	}
	if patch.State != nil {
		order.State = *patch.State
	}
	if patch.Comment != nil {
		order.Comment = *patch.Comment
	}
	if patch.Items != nil {
		order.Items = toDomainItems(*patch.Items)
	}
	if patch.DeliveryFeeMinor != nil {
		order.DeliveryFeeMinor = *patch.DeliveryFeeMinor
	}

	order.TotalMinor = order.ComputeTotalMinor()
	order.UpdatedAt = s.now().UTC()

	if errs := order.ValidateInvariants(); len(errs) > 0 {
		return domain.Order{}, &ValidationError{Errs: errs}
	}

	if err := s.saveOrder(order, "Update"); err != nil {
		return domain.Order{}, err
	}
	s.enqueueOrderEvent(domain.EventTypeOrderUpdated, order)
	return order, nil
}

// ChangeStatus применяет явный переход статуса с проверкой state machine.
func (s *Service) ChangeStatus(id string, next domain.OrderStatus) (domain.Order, error) {
	order, err := s.loadOrder(id, "ChangeStatus")
	if err != nil {
		return domain.Order{}, err
	}

	if err := order.CanChangeTo(next); err != nil {
		s.logger.WithFields(log.Fields{
			"order_id": id,
			"from":     order.Status,
			"to":       next,
		}).Warn("status transition rejected")
		return domain.Order{}, err
	}

	order.Status = next
	order.UpdatedAt = s.now().UTC()
	if err := s.saveOrder(order, "ChangeStatus"); err != nil {
		return domain.Order{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordStatusChange(string(next))
	}
	s.enqueueOrderEvent(domain.EventTypeOrderStatusChanged, order)
	return order, nil
}

// Cancel переводит заказ в cancelled из любого статуса, кроме delivered.
func (s *Service) Cancel(id string) (domain.Order, error) {
	order, err := s.loadOrder(id, "Cancel")
	if err != nil {
		return domain.Order{}, err
	}

	if err := order.CanCancel(); err != nil {
		return domain.Order{}, err
	}

	order.Status = domain.OrderStatusCancelled
	order.UpdatedAt = s.now().UTC()
	if err := s.saveOrder(order, "Cancel"); err != nil {
		return domain.Order{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordStatusChange(string(domain.OrderStatusCancelled))
	}
	s.enqueueOrderEvent(domain.EventTypeOrderCancelled, order)
	return order, nil
}

// Delete безвозвратно удаляет заказ. Восстановление невозможно; событие
// удаления публикуется, чтобы потребители хотя бы увидели факт удаления.
func (s *Service) Delete(id string) error {
	order, err := s.loadOrder(id, "Delete")
	if err != nil {
		return err
	}

	if err := s.repo.Delete(id); err != nil {
		if !errors.Is(err, domain.ErrOrderNotFound) {
			s.logger.WithError(err).WithField("order_id", id).Error("failed to delete order")
		}
		return err
	}
	s.enqueueOrderEvent(domain.EventTypeOrderDeleted, order)
	return nil
}

// BulkConfirm массово подтверждает заказы, пропуская доставленные.
// Нулевое число изменённых — ошибка: экспортный workflow считает пустое
// подтверждение признаком неверной выборки.
func (s *Service) BulkConfirm(ids []string) (int64, error) {
	if err := validateIDs(ids); err != nil {
		return 0, err
	}

	modified, err := s.repo.UpdateStatusMany(
		ids,
		domain.OrderStatusConfirmed,
		[]domain.OrderStatus{domain.OrderStatusDelivered},
	)
	if err != nil {
		s.logger.WithError(err).Error("bulk confirm failed")
		return 0, err
	}
	if modified == 0 {
		return 0, domain.ErrNoOrdersUpdated
	}

	s.recordBulk("confirm", modified)
	return modified, nil
}

// BulkCancel массово отменяет заказы, пропуская доставленные и уже
// отменённые. Ноль изменённых — валидный пустой результат.
func (s *Service) BulkCancel(ids []string) (int64, error) {
	if err := validateIDs(ids); err != nil {
		return 0, err
	}

	modified, err := s.repo.UpdateStatusMany(
		ids,
		domain.OrderStatusCancelled,
		[]domain.OrderStatus{domain.OrderStatusDelivered, domain.OrderStatusCancelled},
	)
	if err != nil {
		s.logger.WithError(err).Error("bulk cancel failed")
		return 0, err
	}

	s.recordBulk("cancel", modified)
	return modified, nil
}

// BulkChangeStatus безусловно переводит все перечисленные заказы в status —
// самый разрешительный массовый путь, дисциплина на вызывающем.
func (s *Service) BulkChangeStatus(ids []string, status domain.OrderStatus) (int64, error) {
	if !status.Valid() {
		return 0, domain.ErrStatusUnknown
	}
	if err := validateIDs(ids); err != nil {
		return 0, err
	}

	modified, err := s.repo.UpdateStatusMany(ids, status, nil)
	if err != nil {
		s.logger.WithError(err).Error("bulk status change failed")
		return 0, err
	}

	s.recordBulk("status_change", modified)
	return modified, nil
}

// BulkDelete безвозвратно удаляет перечисленные заказы.
func (s *Service) BulkDelete(ids []string) (int64, error) {
	if err := validateIDs(ids); err != nil {
		return 0, err
	}

	removed, err := s.repo.DeleteMany(ids)
	if err != nil {
		s.logger.WithError(err).Error("bulk delete failed")
		return 0, err
	}

	s.recordBulk("delete", removed)
	return removed, nil
}

// Unblock сбрасывает лимитерную запись одной идентичности.
func (s *Service) Unblock(identity string) (bool, error) {
	return s.limiter.Unblock(identity)
}

// UnblockAll очищает состояние лимитера целиком.
func (s *Service) UnblockAll() error {
	return s.limiter.UnblockAll()
}

// validateIDs проверяет форму всех идентификаторов до обращения к
// хранилищу: один некорректный id отклоняет батч целиком.
func validateIDs(ids []string) error {
	var malformed []string
	for _, id := range ids {
		if !domain.IsWellFormedOrderID(id) {
			malformed = append(malformed, id)
		}
	}
	if len(malformed) > 0 {
		return &MalformedIDsError{IDs: malformed}
	}
	return nil
}

func (s *Service) loadOrder(orderID, operation string) (domain.Order, error) {
	order, err := s.repo.Get(orderID)
	if err == nil {
		return order, nil
	}

	if !errors.Is(err, domain.ErrOrderNotFound) {
		s.logger.WithError(err).WithFields(log.Fields{
			"operation": operation,
			"order_id":  orderID,
		}).Error("failed to load order")
	}
	return domain.Order{}, err
}

func (s *Service) saveOrder(order domain.Order, operation string) error {
	if err := s.repo.Update(order); err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"operation": operation,
			"order_id":  order.ID,
		}).Error("failed to save order")
		return err
	}
	return nil
}

func (s *Service) recordBulk(operation string, modified int64) {
	if s.metrics != nil {
		s.metrics.RecordBulkOperation(operation, modified)
	}
}

// enqueueOrderEvent кладёт событие жизненного цикла в outbox. Сбой
// постановки не откатывает основную операцию — лента событий здесь
// best-effort, источником истины остаётся репозиторий.
func (s *Service) enqueueOrderEvent(eventType domain.EventType, order domain.Order) {
	if s.outbox == nil {
		return
	}

	payload, err := json.Marshal(struct {
		OrderID  string             `json:"order_id"`
		OrderRef string             `json:"order_ref"`
		Status   domain.OrderStatus `json:"status"`
		Total    int64              `json:"total_minor"`
		At       time.Time          `json:"at"`
	}{
		OrderID:  order.ID,
		OrderRef: order.OrderRef,
		Status:   order.Status,
		Total:    order.TotalMinor,
		At:       s.now().UTC(),
	})
	if err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Warn("failed to encode order event")
		return
	}

	if _, err := s.outbox.Enqueue(domain.OutboxMessage{
		AggregateType: domain.AggregateOrder,
		AggregateID:   order.ID,
		EventType:     eventType,
		Payload:       payload,
	}); err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"order_id": order.ID,
			"event":    eventType,
		}).Warn("failed to enqueue order event")
	}
}
