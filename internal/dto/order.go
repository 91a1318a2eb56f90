package dto

import (
	"time"

	"storefront/internal/models"
)

// MaxItemQuantity bounds the quantity of one product on an order, after lines
// for the same product are merged. Keep the quantity tag in sync.
const MaxItemQuantity = 10000

type OrderItemDTO struct {
	ProductID int64   `json:"productId" validate:"required,gt=0"`
	Name      string  `json:"name,omitempty"`
	Price     float64 `json:"price,omitempty"`
	Quantity  int     `json:"quantity" validate:"required,gt=0,lte=10000"`
	SubTotal  float64 `json:"subTotal,omitempty"`
}

type OrderDTO struct {
	ID       int64          `json:"id"`
	Moment   time.Time      `json:"moment"`
	Status   string         `json:"status"`
	ClientID int64          `json:"clientId"`
	Items    []OrderItemDTO `json:"items" validate:"required,min=1,dive"`
	Total    float64        `json:"total"`
}

// NewOrderDTO expects the items to have their products loaded.
func NewOrderDTO(o *models.Order) OrderDTO {
	d := OrderDTO{
		ID:       o.ID,
		Moment:   o.Moment,
		Status:   string(o.Status),
		ClientID: o.ClientID,
		Items:    make([]OrderItemDTO, 0, len(o.Items)),
		Total:    o.Total(),
	}
	for _, item := range o.Items {
		d.Items = append(d.Items, OrderItemDTO{
			ProductID: item.ProductID,
			Name:      item.Product.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
			SubTotal:  item.SubTotal(),
		})
	}
	return d
}
