package models

import "time"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusWaitingPayment OrderStatus = "WAITING_PAYMENT"
	OrderStatusPaid           OrderStatus = "PAID"
	OrderStatusShipped        OrderStatus = "SHIPPED"
	OrderStatusDelivered      OrderStatus = "DELIVERED"
	OrderStatusCanceled       OrderStatus = "CANCELED"
)

// Order represents a customer order.
type Order struct {
	ID       int64       `gorm:"primaryKey"`
	Moment   time.Time   `gorm:"not null"`
	Status   OrderStatus `gorm:"type:varchar(20);not null"`
	ClientID int64       `gorm:"not null;index"`
	Client   User        `gorm:"foreignKey:ClientID"`
	Items    []OrderItem `gorm:"foreignKey:OrderID"`
}

// Total sums the sub totals of every item.
func (o *Order) Total() float64 {
	var total float64
	for _, item := range o.Items {
		total += item.SubTotal()
	}
	return total
}

// OrderItem is keyed by (order, product): a product appears at most once per order.
// Price is the product's unit price at the moment the order was placed.
type OrderItem struct {
	OrderID   int64   `gorm:"primaryKey;autoIncrement:false"`
	ProductID int64   `gorm:"primaryKey;autoIncrement:false"`
	Order     *Order  `gorm:"foreignKey:OrderID"`
	Product   Product `gorm:"foreignKey:ProductID"`
	Quantity  int     `gorm:"not null"`
	Price     float64 `gorm:"not null"`
}

func (i OrderItem) SubTotal() float64 {
	return i.Price * float64(i.Quantity)
}
