package http

import (
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/service/order"
)

type itemPayload struct {
	ProductID  string `json:"productId"`
	Quantity   int32  `json:"quantity"`
	PriceMinor int64  `json:"priceMinor"`
}

type createOrderRequest struct {
	CustomerName     string        `json:"customerName"`
	Email            string        `json:"email"`
	PhoneNumberOne   string        `json:"phoneNumberOne"`
	PhoneNumberTwo   string        `json:"phoneNumberTwo"`
	Address          string        `json:"address"`
	City             string        `json:"city"`
	State            string        `json:"state"`
	Comment          string        `json:"comment"`
	OrderRef         string        `json:"orderRef"`
	Items            []itemPayload `json:"items"`
	DeliveryFeeMinor int64         `json:"deliveryFeeMinor"`
	TotalMinor       *int64        `json:"totalMinor"`
}

type updateOrderRequest struct {
	CustomerName     *string        `json:"customerName"`
	Email            *string        `json:"email"`
	PhoneNumberOne   *string        `json:"phoneNumberOne"`
	PhoneNumberTwo   *string        `json:"phoneNumberTwo"`
	Address          *string        `json:"address"`
	City             *string        `json:"city"`
	State            *string        `json:"state"`
	Comment          *string        `json:"comment"`
	Items            *[]itemPayload `json:"items"`
	DeliveryFeeMinor *int64         `json:"deliveryFeeMinor"`
}

type changeStatusRequest struct {
	Status string `json:"status"`
}

type bulkIDsRequest struct {
	OrderIDs []string `json:"orderIds"`
}

type bulkStatusRequest struct {
	OrderIDs []string `json:"orderIds"`
	Status   string   `json:"status"`
}

type unblockRequest struct {
	Key string `json:"key"`
}

type bulkResponse struct {
	ModifiedCount int64 `json:"modifiedCount"`
}

type orderResponse struct {
	ID               string        `json:"id"`
	OrderRef         string        `json:"orderRef"`
	CustomerName     string        `json:"customerName"`
	Email            string        `json:"email,omitempty"`
	PhoneNumberOne   string        `json:"phoneNumberOne"`
	PhoneNumberTwo   string        `json:"phoneNumberTwo,omitempty"`
	Address          string        `json:"address"`
	City             string        `json:"city"`
	State            string        `json:"state,omitempty"`
	Comment          string        `json:"comment,omitempty"`
	Items            []itemPayload `json:"items"`
	DeliveryFeeMinor int64         `json:"deliveryFeeMinor"`
	TotalMinor       int64         `json:"totalMinor"`
	Status           string        `json:"status"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
}

func toItemInputs(items []itemPayload) []order.ItemInput {
	inputs := make([]order.ItemInput, 0, len(items))
	for _, item := range items {
		inputs = append(inputs, order.ItemInput{
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			PriceMinor: item.PriceMinor,
		})
	}
	return inputs
}

func toOrderResponse(o domain.Order) orderResponse {
	items := make([]itemPayload, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, itemPayload{
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			PriceMinor: item.PriceMinor,
		})
	}

	return orderResponse{
		ID:               o.ID,
		OrderRef:         o.OrderRef,
		CustomerName:     o.CustomerName,
		Email:            o.Email,
		PhoneNumberOne:   o.PhoneNumberOne,
		PhoneNumberTwo:   o.PhoneNumberTwo,
		Address:          o.Address,
		City:             o.City,
		State:            o.State,
		Comment:          o.Comment,
		Items:            items,
		DeliveryFeeMinor: o.DeliveryFeeMinor,
		TotalMinor:       o.TotalMinor,
		Status:           string(o.Status),
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}

func toOrderResponses(orders []domain.Order) []orderResponse {
	responses := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		responses = append(responses, toOrderResponse(o))
	}
	return responses
}
