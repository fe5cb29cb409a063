package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NewOrderID возвращает новый идентификатор документа заказа.
// Формат совпадает с ObjectID хранилища, чтобы in-memory и document-store
// репозитории выдавали совместимые идентификаторы.
func NewOrderID() string {
	return primitive.NewObjectID().Hex()
}

// IsWellFormedOrderID проверяет, что строка имеет форму идентификатора
// документа (24 hex-символа). Массовые операции отклоняют батч целиком,
// если хотя бы один id не проходит эту проверку.
func IsWellFormedOrderID(id string) bool {
	_, err := primitive.ObjectIDFromHex(id)
	return err == nil
}

// NewOrderRef генерирует человекочитаемый номер заказа вида
// ORD-<unix-ms>-<суффикс>. Уникальность гарантирует репозиторий.
func NewOrderRef(now time.Time) string {
	suffix := strings.ToUpper(uuid.NewString()[:8])
	return fmt.Sprintf("ORD-%d-%s", now.UnixMilli(), suffix)
}
