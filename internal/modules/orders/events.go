package orders

import (
	"time"

	"gorm.io/datatypes"
)

// GatewayEvent is an audit row for every status signal accepted from the
// gateway, one per (source, event_id). The unique index is what dedupes
// redelivered webhooks.
type GatewayEvent struct {
	ID            string         `gorm:"type:char(36);primaryKey"`
	Source        string         `gorm:"type:varchar(32);not null;uniqueIndex:ux_gateway_events_source_event,priority:1"`
	EventID       string         `gorm:"type:varchar(128);not null;uniqueIndex:ux_gateway_events_source_event,priority:2"`
	OrderID       string         `gorm:"type:varchar(128);not null;index:ix_gateway_events_order_id"`
	GatewayStatus string         `gorm:"type:varchar(64);not null"`
	PayloadJSON   datatypes.JSON `gorm:"type:json"`

	ReceivedAt   time.Time  `gorm:"type:datetime(3);not null"`
	ProcessedAt  *time.Time `gorm:"type:datetime(3)"`
	ProcessError *string    `gorm:"type:varchar(255)"`
}

func (GatewayEvent) TableName() string { return "gateway_events" }
