package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Identity identifies the author of audited mutations and vault commits.
type Identity struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserStatus is the lifecycle status of a user account.
type UserStatus string

const (
	UserActive    UserStatus = "active"
	UserInactive  UserStatus = "inactive"
	UserSuspended UserStatus = "suspended"
)

// UserStatuses lists every valid user status.
var UserStatuses = []UserStatus{UserActive, UserInactive, UserSuspended}

type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Status       UserStatus `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
}

type Product struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	CreatedAt time.Time       `json:"created_at"`
}

// OrderStatus is the lifecycle status of an order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

// OrderStatuses lists every valid order status.
var OrderStatuses = []OrderStatus{OrderPending, OrderCompleted, OrderCancelled}

type Order struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"user_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	OrderDate   time.Time       `json:"order_date"`
	Status      OrderStatus     `json:"status"`
}

// OrderItem captures a product at the price it had when the order was
// placed. The captured price never changes, even if the product's
// current price does.
type OrderItem struct {
	ID        int64           `json:"id"`
	OrderID   int64           `json:"order_id"`
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// LineItem is a single product/quantity request within an order.
type LineItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// AuditEntry is an append-only record of a tracked mutation.
type AuditEntry struct {
	ID        int64     `json:"id"`
	TableName string    `json:"table_name"`
	Action    string    `json:"action"`
	UserID    *int64    `json:"user_id,omitempty"`
	LoggedAt  time.Time `json:"logged_at"`
	Details   string    `json:"details,omitempty"`
}
