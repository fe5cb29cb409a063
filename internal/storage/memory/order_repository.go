package memory

import (
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// orderRepositoryInMemory — простая in-memory реализация OrderRepository
// для локальной разработки и тестов.
type orderRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Order
	byRef map[string]string
}

// NewOrderRepository возвращает in-memory репозиторий заказов.
func NewOrderRepository() domain.OrderRepository {
	return &orderRepositoryInMemory{
		items: make(map[string]domain.Order),
		byRef: make(map[string]string),
	}
}

// Create назначает заказу идентификатор документа и сохраняет его,
// проверяя уникальность orderRef.
func (r *orderRepositoryInMemory) Create(order domain.Order) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byRef[order.OrderRef]; taken {
		return domain.Order{}, domain.ErrOrderRefTaken
	}
	if order.ID == "" {
		order.ID = domain.NewOrderID()
	}

	// Сохраняем копию позиций, чтобы избежать мутаций извне.
	items := make([]domain.OrderItem, len(order.Items))
	copy(items, order.Items)
	order.Items = items

	r.items[order.ID] = order
	r.byRef[order.OrderRef] = order.ID
	return order, nil
}

// Get возвращает заказ или ErrOrderNotFound, если его нет.
func (r *orderRepositoryInMemory) Get(id string) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.items[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return order, nil
}

// GetByRef возвращает заказ по человекочитаемому номеру.
func (r *orderRepositoryInMemory) GetByRef(orderRef string) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byRef[orderRef]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return r.items[id], nil
}

// List возвращает заказы по createdAt по убыванию, ограничивая выборку limit (если >0).
func (r *orderRepositoryInMemory) List(limit int) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Order, 0, len(r.items))
	for _, order := range r.items {
		result = append(result, order)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

// Update перезаписывает заказ по id.
func (r *orderRepositoryInMemory) Update(order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[order.ID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	// orderRef неизменяем; индекс ссылок остаётся прежним.
	order.OrderRef = current.OrderRef
	r.items[order.ID] = order
	return nil
}

// Delete безвозвратно удаляет заказ.
func (r *orderRepositoryInMemory) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.items[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	delete(r.items, id)
	delete(r.byRef, order.OrderRef)
	return nil
}

// UpdateStatusMany переводит подходящие заказы в status и возвращает число изменённых.
func (r *orderRepositoryInMemory) UpdateStatusMany(ids []string, status domain.OrderStatus, exclude []domain.OrderStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	excluded := make(map[domain.OrderStatus]struct{}, len(exclude))
	for _, s := range exclude {
		excluded[s] = struct{}{}
	}

	var modified int64
	for _, id := range ids {
		order, ok := r.items[id]
		if !ok {
			continue
		}
		if _, skip := excluded[order.Status]; skip {
			continue
		}
		if order.Status == status {
			// Документ уже в целевом статусе: хранилище не считает его изменённым.
			continue
		}
		order.Status = status
		order.UpdatedAt = nowUTC()
		r.items[id] = order
		modified++
	}
	return modified, nil
}

// DeleteMany удаляет перечисленные заказы и возвращает число удалённых.
func (r *orderRepositoryInMemory) DeleteMany(ids []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed int64
	for _, id := range ids {
		order, ok := r.items[id]
		if !ok {
			continue
		}
		delete(r.items, id)
		delete(r.byRef, order.OrderRef)
		removed++
	}
	return removed, nil
}

var _ domain.OrderRepository = (*orderRepositoryInMemory)(nil)
