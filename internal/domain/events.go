package domain

// EventType определяет тип события жизненного цикла заказа. Значения
// попадают в outbox и дальше на шину как есть, менять их нельзя.
type EventType string

const (
	// EventTypeOrderCreated — заказ принят и сохранён в статусе pending.
	EventTypeOrderCreated EventType = "order.created"
	// EventTypeOrderUpdated — админ изменил поля заказа.
	EventTypeOrderUpdated EventType = "order.updated"
	// EventTypeOrderStatusChanged — явный переход статуса.
	EventTypeOrderStatusChanged EventType = "order.status_changed"
	// EventTypeOrderCancelled — заказ отменён.
	EventTypeOrderCancelled EventType = "order.cancelled"
	// EventTypeOrderDeleted — заказ безвозвратно удалён.
	EventTypeOrderDeleted EventType = "order.deleted"
)

// AggregateOrder — тип агрегата заказных событий в outbox.
const AggregateOrder = "order"
