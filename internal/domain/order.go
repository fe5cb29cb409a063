package domain

import "time"

// OrderStatus описывает жизненный цикл заказа в витрине магазина.
type OrderStatus string

const (
	// OrderStatusPending — заказ принят от покупателя, но ещё не подтверждён админом.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusConfirmed — заказ подтверждён и передан в сборку/экспорт.
	OrderStatusConfirmed OrderStatus = "confirmed"
	// OrderStatusShipped — заказ отгружен службе доставки.
	OrderStatusShipped OrderStatus = "shipped"
	// OrderStatusDelivered — заказ доставлен покупателю; дальнейшие переходы запрещены.
	OrderStatusDelivered OrderStatus = "delivered"
	// OrderStatusCancelled — заказ отменён до доставки.
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Valid проверяет, что статус относится к поддерживаемым значениям.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// Assignable проверяет, что статус можно назначить явной сменой статуса.
// pending устанавливается только при создании заказа.
func (s OrderStatus) Assignable() bool {
	return s.Valid() && s != OrderStatusPending
}

// OrderItem представляет одну позицию заказа.
type OrderItem struct {
	// ProductID — внешний идентификатор товара в каталоге.
	ProductID string
	// Quantity — количество единиц товара.
	Quantity int32
	// PriceMinor — снимок цены за единицу на момент оформления, в минимальных
	// денежных единицах. Пересчёт каталога не меняет исторические заказы.
	PriceMinor int64
}

// Order агрегирует данные покупателя, позиции и статус заказа.
type Order struct {
	ID               string
	OrderRef         string
	CustomerName     string
	Email            string
	PhoneNumberOne   string
	PhoneNumberTwo   string
	Address          string
	City             string
	State            string
	Comment          string
	Items            []OrderItem
	DeliveryFeeMinor int64
	TotalMinor       int64
	Status           OrderStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ItemsTotalMinor возвращает сумму позиций без стоимости доставки.
func (o *Order) ItemsTotalMinor() int64 {
	var sum int64
	for _, item := range o.Items {
		sum += int64(item.Quantity) * item.PriceMinor
	}
	return sum
}

// ComputeTotalMinor возвращает выводимую сумму заказа: позиции плюс доставка.
func (o *Order) ComputeTotalMinor() int64 {
	return o.ItemsTotalMinor() + o.DeliveryFeeMinor
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.CustomerName == "" {
		errs = append(errs, ErrCustomerNameRequired)
	}
	if o.PhoneNumberOne == "" && o.PhoneNumberTwo == "" {
		errs = append(errs, ErrPhoneRequired)
	}
	if o.Address == "" {
		errs = append(errs, ErrAddressRequired)
	}
	if o.City == "" {
		errs = append(errs, ErrCityRequired)
	}
	if len(o.Items) == 0 {
		errs = append(errs, ErrItemsRequired)
	}
	if o.DeliveryFeeMinor < 0 {
		errs = append(errs, ErrDeliveryFeeNegative)
	}
	if !o.Status.Valid() {
		errs = append(errs, ErrStatusUnknown)
	}

	for _, item := range o.Items {
		if item.ProductID == "" {
			errs = append(errs, ErrItemProductRequired)
		}
		if item.Quantity <= 0 {
			errs = append(errs, ErrItemQtyInvalid)
		}
		if item.PriceMinor < 0 {
			errs = append(errs, ErrItemPriceInvalid)
		}
	}

	// Сверяем итог с выводимой суммой: позиции + доставка.
	if o.TotalMinor != o.ComputeTotalMinor() {
		errs = append(errs, ErrTotalMismatch)
	}

	return errs
}

// CanChangeTo проверяет правило явной смены статуса: доставленный заказ
// больше не изменяется, целевой статус должен быть назначаемым.
// Перевод заказа в его текущий статус — разрешённый no-op.
func (o *Order) CanChangeTo(next OrderStatus) error {
	if !next.Assignable() {
		return ErrStatusUnknown
	}
	if o.Status == OrderStatusDelivered {
		return ErrOrderDelivered
	}
	return nil
}

// CanCancel проверяет, допустима ли отмена; отменять можно из любого
// статуса кроме delivered.
func (o *Order) CanCancel() error {
	if o.Status == OrderStatusDelivered {
		return ErrOrderDelivered
	}
	return nil
}

// CanConfirm проверяет допустимость подтверждения. Подтверждение — контрольная
// точка экспортного workflow, поэтому повторное подтверждение уже
// подтверждённого или даже отгруженного заказа разрешено.
func (o *Order) CanConfirm() error {
	if o.Status == OrderStatusDelivered {
		return ErrOrderDelivered
	}
	return nil
}
