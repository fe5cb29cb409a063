package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/service/order"
)

const defaultListLimit = 100

// Handler связывает REST-поверхность с сервисом заказов.
type Handler struct {
	svc    *order.Service
	logger *log.Entry
}

// NewHandler создаёт HTTP-обработчики заказной подсистемы.
func NewHandler(svc *order.Service, logger *log.Entry) *Handler {
	if logger == nil {
		logger = log.WithField("component", "http")
	}
	return &Handler{svc: svc, logger: logger}
}

// CreateOrder — единственная публичная мутация: приём заказа с витрины.
func (h *Handler) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	identity := identityFrom(c)
	created, err := h.svc.Create(order.CreateInput{
		CustomerName:     req.CustomerName,
		Email:            req.Email,
		PhoneNumberOne:   req.PhoneNumberOne,
		PhoneNumberTwo:   req.PhoneNumberTwo,
		Address:          req.Address,
		City:             req.City,
		State:            req.State,
		Comment:          req.Comment,
		OrderRef:         req.OrderRef,
		Items:            toItemInputs(req.Items),
		DeliveryFeeMinor: req.DeliveryFeeMinor,
		TotalMinor:       req.TotalMinor,
	}, identity.Subject, identity.Admin)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toOrderResponse(created))
}

func (h *Handler) ListOrders(c *gin.Context) {
	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = parsed
	}

	orders, err := h.svc.List(limit)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": toOrderResponses(orders), "count": len(orders)})
}

func (h *Handler) GetOrder(c *gin.Context) {
	found, err := h.svc.Get(c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(found))
}

// GetOrderByRef — публичная точка отслеживания заказа по его номеру.
func (h *Handler) GetOrderByRef(c *gin.Context) {
	found, err := h.svc.GetByRef(c.Param("orderRef"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(found))
}

func (h *Handler) UpdateOrder(c *gin.Context) {
	var req updateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patch := order.UpdatePatch{
		CustomerName:     req.CustomerName,
		Email:            req.Email,
		PhoneNumberOne:   req.PhoneNumberOne,
		PhoneNumberTwo:   req.PhoneNumberTwo,
		Address:          req.Address,
		City:             req.City,
		State:            req.State,
		Comment:          req.Comment,
		DeliveryFeeMinor: req.DeliveryFeeMinor,
	}
	if req.Items != nil {
		items := toItemInputs(*req.Items)
		patch.Items = &items
	}

	updated, err := h.svc.Update(c.Param("id"), patch)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(updated))
}

func (h *Handler) ChangeStatus(c *gin.Context) {
	var req changeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.svc.ChangeStatus(c.Param("id"), domain.OrderStatus(req.Status))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(updated))
}

func (h *Handler) CancelOrder(c *gin.Context) {
	cancelled, err := h.svc.Cancel(c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(cancelled))
}

func (h *Handler) DeleteOrder(c *gin.Context) {
	if err := h.svc.Delete(c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "order deleted"})
}

func (h *Handler) ConfirmMultiple(c *gin.Context) {
	var req bulkIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	modified, err := h.svc.BulkConfirm(req.OrderIDs)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, bulkResponse{ModifiedCount: modified})
}

func (h *Handler) CancelMultiple(c *gin.Context) {
	var req bulkIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	modified, err := h.svc.BulkCancel(req.OrderIDs)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, bulkResponse{ModifiedCount: modified})
}

func (h *Handler) ChangeStatusMultiple(c *gin.Context) {
	var req bulkStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	modified, err := h.svc.BulkChangeStatus(req.OrderIDs, domain.OrderStatus(req.Status))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, bulkResponse{ModifiedCount: modified})
}

func (h *Handler) DeleteMultiple(c *gin.Context) {
	var req bulkIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	removed, err := h.svc.BulkDelete(req.OrderIDs)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, bulkResponse{ModifiedCount: removed})
}

// Unblock снимает лимитерную блокировку с одной идентичности.
func (h *Handler) Unblock(c *gin.Context) {
	var req unblockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key is required"})
		return
	}

	removed, err := h.svc.Unblock(req.Key)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

func (h *Handler) UnblockAll(c *gin.Context) {
	if err := h.svc.UnblockAll(); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "rate limit state cleared"})
}

// writeError переводит ошибки сервиса в HTTP-статусы. Порядок веток
// значим: специализированные типы разбираются раньше сентинелов.
func (h *Handler) writeError(c *gin.Context, err error) {
	var malformed *order.MalformedIDsError
	var validation *order.ValidationError

	switch {
	case errors.Is(err, domain.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{
			"message": "order submission limit exceeded, try again later",
			"blocked": true,
		})
	case errors.As(err, &malformed):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "malformed order ids",
			"invalidIds": malformed.IDs,
		})
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Error()})
	case errors.Is(err, domain.ErrStatusUnknown):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNoOrdersUpdated):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
	case domain.IsInvalidTransition(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logger.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
