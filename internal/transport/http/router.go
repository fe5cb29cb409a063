package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const identityKey = "storefront.identity"

// NewRouter собирает gin-маршрутизатор заказной подсистемы.
// Админские ручки закрыты guard'ом поверх резолвера идентичности.
func NewRouter(h *Handler, resolver IdentityResolver, logger *log.Entry) *gin.Engine {
	if logger == nil {
		logger = log.WithField("component", "http")
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))
	router.Use(resolveIdentity(resolver))

	orders := router.Group("/orders")
	{
		orders.POST("/create", h.CreateOrder)
		orders.GET("/reference/:orderRef", h.GetOrderByRef)

		admin := orders.Group("")
		admin.Use(requireAdmin())
		{
			admin.GET("", h.ListOrders)
			admin.GET("/:id", h.GetOrder)
			admin.PUT("/:id", h.UpdateOrder)
			admin.PUT("/status/:id", h.ChangeStatus)
			admin.PUT("/cancel/:id", h.CancelOrder)
			admin.DELETE("/:id", h.DeleteOrder)

			admin.PUT("/confirm-multiple", h.ConfirmMultiple)
			admin.PUT("/cancel-multiple", h.CancelMultiple)
			admin.PUT("/status-multiple", h.ChangeStatusMultiple)
			admin.POST("/delete-multiple", h.DeleteMultiple)

			admin.POST("/unblock", h.Unblock)
			admin.POST("/unblock-all", h.UnblockAll)
		}
	}

	return router
}

// resolveIdentity кладёт идентичность запроса в контекст gin.
func resolveIdentity(resolver IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(identityKey, resolver.Resolve(c))
		c.Next()
	}
}

func identityFrom(c *gin.Context) Identity {
	if value, ok := c.Get(identityKey); ok {
		if identity, ok := value.(Identity); ok {
			return identity
		}
	}
	return Identity{Subject: c.ClientIP()}
}

func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !identityFrom(c).Admin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

// requestLogger пишет результат каждого запроса в структурированный лог.
func requestLogger(logger *log.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := log.Fields{
			"method":      c.Request.Method,
			"path":        c.FullPath(),
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.WithFields(fields).Error("request completed")
			return
		}
		logger.WithFields(fields).Info("request completed")
	}
}
