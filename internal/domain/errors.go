package domain

import "errors"

var (
	// Ошибка отсутствующего имени покупателя.
	ErrCustomerNameRequired = errors.New("customer name is required")
	// Ошибка, если не указан ни один контактный телефон.
	ErrPhoneRequired = errors.New("at least one phone number is required")
	// Ошибка отсутствующего адреса доставки.
	ErrAddressRequired = errors.New("address is required")
	// Ошибка отсутствующего города.
	ErrCityRequired = errors.New("city is required")
	// Ошибка отсутствия хотя бы одной позиции в заказе.
	ErrItemsRequired = errors.New("order must contain at least one item")
	// Ошибка позиции без идентификатора товара.
	ErrItemProductRequired = errors.New("item product id is required")
	// Ошибка при некорректном количестве товара (<= 0).
	ErrItemQtyInvalid = errors.New("item quantity must be greater than zero")
	// Ошибка, если цена позиции отрицательная.
	ErrItemPriceInvalid = errors.New("item price must be non-negative")
	// Ошибка отрицательной стоимости доставки.
	ErrDeliveryFeeNegative = errors.New("delivery fee must be non-negative")
	// Ошибка несоответствия итога сумме позиций и доставки.
	ErrTotalMismatch = errors.New("order total does not match items sum plus delivery fee")
	// Ошибка неизвестного статуса заказа.
	ErrStatusUnknown = errors.New("unknown order status")
	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderRefTaken сигнализирует о коллизии уникального orderRef при создании.
	ErrOrderRefTaken = errors.New("order reference is already taken")
	// ErrOrderDelivered — попытка перехода над доставленным заказом.
	ErrOrderDelivered = errors.New("delivered order can not be modified")
	// ErrMalformedOrderID — идентификатор не соответствует формату документа.
	ErrMalformedOrderID = errors.New("malformed order id")
	// ErrNoOrdersUpdated — массовое подтверждение не изменило ни одного заказа.
	ErrNoOrdersUpdated = errors.New("no orders were updated")
	// ErrRateLimited — идентичность исчерпала квоту на создание заказов.
	ErrRateLimited = errors.New("order submission rate limit exceeded")
	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// IsInvalidTransition проверяет, является ли ошибка отказом state machine
// над существующим заказом. Неизвестный целевой статус сюда не входит:
// это ошибка входных данных, а не конфликт состояния.
func IsInvalidTransition(err error) bool {
	return errors.Is(err, ErrOrderDelivered)
}
