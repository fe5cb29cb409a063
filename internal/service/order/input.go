package order

import (
	"strings"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// ItemInput — позиция заказа на границе сервиса.
type ItemInput struct {
	ProductID  string
	Quantity   int32
	PriceMinor int64
}

// CreateInput — типизированный вход операции создания. Внешние
// payload'ы разбираются в эту структуру до попадания в логику сервиса.
type CreateInput struct {
	CustomerName   string
	Email          string
	PhoneNumberOne string
	PhoneNumberTwo string
	Address        string
	City           string
	State          string
	Comment        string
	// OrderRef задаётся клиентом опционально; пустой генерируется сервером.
	OrderRef         string
	Items            []ItemInput
	DeliveryFeeMinor int64
	// TotalMinor — клиентский итог, используется только для сверки
	// с пересчитанной сервером суммой.
	TotalMinor *int64
}

// UpdatePatch описывает частичное обновление заказа: меняются только
// заполненные поля. Статуса здесь нет намеренно — смена статуса идёт
// исключительно через ChangeStatus/Cancel и массовые операции, чтобы
// правила переходов нельзя было обойти общим обновлением.
type UpdatePatch struct {
	CustomerName     *string
	Email            *string
	PhoneNumberOne   *string
	PhoneNumberTwo   *string
	Address          *string
	City             *string
	State            *string
	Comment          *string
	Items            *[]ItemInput
	DeliveryFeeMinor *int64
}

// ValidationError агрегирует нарушения инвариантов заказа.
type ValidationError struct {
	Errs []error
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errs))
	for _, err := range e.Errs {
		parts = append(parts, err.Error())
	}
	return strings.Join(parts, "; ")
}

// Unwrap отдаёт вложенные ошибки для errors.Is.
func (e *ValidationError) Unwrap() []error {
	return e.Errs
}

// MalformedIDsError перечисляет идентификаторы, из-за которых массовая
// операция отклонена целиком ещё до обращения к хранилищу.
type MalformedIDsError struct {
	IDs []string
}

func (e *MalformedIDsError) Error() string {
	return "malformed order ids: " + strings.Join(e.IDs, ", ")
}

func (e *MalformedIDsError) Unwrap() error {
	return domain.ErrMalformedOrderID
}

func toDomainItems(items []ItemInput) []domain.OrderItem {
	result := make([]domain.OrderItem, 0, len(items))
	for _, item := range items {
		result = append(result, domain.OrderItem{
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			PriceMinor: item.PriceMinor,
		})
	}
	return result
}
