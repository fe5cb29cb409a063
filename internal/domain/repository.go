package domain

// OrderRepository описывает требования к хранилищу заказов.
type OrderRepository interface {
	// Create сохраняет новый заказ, назначая идентификатор документа.
	// Возвращает ErrOrderRefTaken при коллизии orderRef.
	Create(order Order) (Order, error)
	// Get возвращает заказ по идентификатору или ErrOrderNotFound, если его нет.
	Get(id string) (Order, error)
	// GetByRef возвращает заказ по человекочитаемому номеру.
	GetByRef(orderRef string) (Order, error)
	// List возвращает заказы, отсортированные по createdAt по убыванию,
	// с опциональным ограничением на количество. Хвост этого списка читает
	// лента недавней активности дашборда.
	List(limit int) ([]Order, error)
	// Update перезаписывает заказ по id или возвращает ErrOrderNotFound.
	Update(order Order) error
	// Delete безвозвратно удаляет заказ.
	Delete(id string) error
	// UpdateStatusMany одной операцией хранилища переводит заказы из ids в
	// status, пропуская заказы в статусах из exclude, и возвращает число
	// фактически изменённых документов.
	UpdateStatusMany(ids []string, status OrderStatus, exclude []OrderStatus) (int64, error)
	// DeleteMany одной операцией хранилища удаляет заказы и возвращает
	// число удалённых документов.
	DeleteMany(ids []string) (int64, error)
}
