package orders

import "time"

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusExpired   = "expired"
)

// IsTerminal reports whether no further status transition is permitted.
func IsTerminal(status string) bool {
	switch status {
	case StatusCompleted, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

// IsValidStatus reports whether status belongs to the order status vocabulary.
func IsValidStatus(status string) bool {
	return status == StatusPending || IsTerminal(status)
}

type Order struct {
	OrderID          string  `gorm:"type:varchar(128);primaryKey"`
	AmountPaise      int64   `gorm:"not null"`
	Currency         string  `gorm:"type:char(3);not null"`
	CustomerID       string  `gorm:"type:varchar(64);not null"`
	CustomerName     string  `gorm:"type:varchar(128);not null"`
	CustomerEmail    string  `gorm:"type:varchar(255);not null"`
	CustomerPhone    string  `gorm:"type:varchar(32);not null;index:ix_orders_customer_phone"`
	PaymentSessionID *string `gorm:"type:varchar(255)"`
	Status           string  `gorm:"type:varchar(32);not null;index:ix_orders_status"`
	OriginalOrderID  *string `gorm:"type:varchar(128);index:ix_orders_original_order_id"`

	CreatedAt time.Time `gorm:"type:datetime(3);not null"`
	UpdatedAt time.Time `gorm:"type:datetime(3);not null"`
}

func (Order) TableName() string { return "orders" }

// SessionID returns the stored session token, or "" when none has been attached yet.
func (o Order) SessionID() string {
	if o.PaymentSessionID == nil {
		return ""
	}
	return *o.PaymentSessionID
}
