package http

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"
)

// Identity — кто выполняет запрос с точки зрения заказной подсистемы.
// Subject попадает в лимитер как ключ квоты.
type Identity struct {
	Subject string
	Admin   bool
}

// IdentityResolver извлекает идентичность из запроса. Аутентификация
// как таковая вне зоны ответственности сервиса: резолвер подменяется
// на интеграционный слой той инсталляции, где сервис живёт.
type IdentityResolver interface {
	Resolve(c *gin.Context) Identity
}

// HeaderIdentityResolver — резолвер по умолчанию: идентичность берётся
// из заголовка X-User-ID с fallback на client IP, админский статус
// определяется bearer-токеном из конфигурации.
type HeaderIdentityResolver struct {
	AdminToken string
}

func (r *HeaderIdentityResolver) Resolve(c *gin.Context) Identity {
	subject := strings.TrimSpace(c.GetHeader("X-User-ID"))
	if subject == "" {
		subject = c.ClientIP()
	}

	admin := false
	if r.AdminToken != "" {
		auth := c.GetHeader("Authorization")
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
			admin = subtle.ConstantTimeCompare([]byte(token), []byte(r.AdminToken)) == 1
		}
	}

	return Identity{Subject: subject, Admin: admin}
}

var _ IdentityResolver = (*HeaderIdentityResolver)(nil)
