package models

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusPicked    OrderStatus = "picked"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPreparing, OrderStatusReady,
		OrderStatusPicked, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether an order in this status no longer needs
// staff attention; the new-order marker is removed on these transitions.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

type PaymentType string

const (
	PaymentTypeCash PaymentType = "cash"
	PaymentTypeCard PaymentType = "card"
)

func (t PaymentType) IsValid() bool {
	return t == PaymentTypeCash || t == PaymentTypeCard
}

// CanSetOrderStatus is the status-update authorization rule. It is
// intentionally asymmetric: customers may only cancel their own orders,
// staff and superadmins may set anything except cancelled.
func CanSetOrderStatus(elevated, owner bool, target OrderStatus) bool {
	if elevated {
		return target != OrderStatusCancelled
	}
	if !owner {
		return false
	}
	return target == OrderStatusCancelled
}

type Cart struct {
	ID     uuid.UUID `db:"id" json:"id"`
	UserID uuid.UUID `db:"user_id" json:"user_id"`
}

type CartItem struct {
	ID       uuid.UUID `db:"id" json:"id"`
	CartID   uuid.UUID `db:"cart_id" json:"cart_id"`
	FoodID   uuid.UUID `db:"food_id" json:"food_id"`
	Quantity int       `db:"quantity" json:"quantity"`
}

type Order struct {
	ID            uuid.UUID     `db:"id" json:"id"`
	UserID        uuid.UUID     `db:"user_id" json:"user_id"`
	OrderDate     time.Time     `db:"order_date" json:"order_date"`
	TotalAmount   float64       `db:"total_amount" json:"total_amount"`
	OrderStatus   OrderStatus   `db:"order_status" json:"order_status"`
	PaymentStatus PaymentStatus `db:"payment_status" json:"payment_status"`
}

type OrderItem struct {
	ID       uuid.UUID `db:"id" json:"id"`
	OrderID  uuid.UUID `db:"order_id" json:"order_id"`
	FoodID   uuid.UUID `db:"food_id" json:"food_id"`
	Quantity int       `db:"quantity" json:"quantity"`
}

// NewOrder flags an order still awaiting staff action.
type NewOrder struct {
	ID      uuid.UUID `db:"id" json:"id"`
	OrderID uuid.UUID `db:"order_id" json:"order_id"`
}

type Payment struct {
	ID          uuid.UUID   `db:"id" json:"id"`
	UserID      uuid.UUID   `db:"user_id" json:"user_id"`
	OrderID     uuid.UUID   `db:"order_id" json:"order_id"`
	PaymentType PaymentType `db:"payment_type" json:"payment_type"`
	PaymentDate time.Time   `db:"payment_date" json:"payment_date"`
}
