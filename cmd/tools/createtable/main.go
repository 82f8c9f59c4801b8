package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN environment variable is required")
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get DB: %v", err)
	}

	sql := `
	CREATE TABLE IF NOT EXISTS orders (
	  order_id VARCHAR(128) NOT NULL,
	  amount_paise BIGINT NOT NULL,
	  currency CHAR(3) NOT NULL DEFAULT 'INR',
	  customer_id VARCHAR(64) NOT NULL,
	  customer_name VARCHAR(128) NOT NULL,
	  customer_email VARCHAR(255) NOT NULL,
	  customer_phone VARCHAR(32) NOT NULL,
	  payment_session_id VARCHAR(255) NULL,
	  status VARCHAR(32) NOT NULL DEFAULT 'pending',
	  original_order_id VARCHAR(128) NULL,
	  created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  updated_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  PRIMARY KEY (order_id),
	  KEY ix_orders_customer_phone (customer_phone),
	  KEY ix_orders_status (status),
	  KEY ix_orders_original_order_id (original_order_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

	CREATE TABLE IF NOT EXISTS gateway_events (
	  id CHAR(36) NOT NULL,
	  source VARCHAR(32) NOT NULL,
	  event_id VARCHAR(128) NOT NULL,
	  order_id VARCHAR(128) NOT NULL,
	  gateway_status VARCHAR(64) NOT NULL,
	  payload_json JSON NULL,
	  received_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  processed_at DATETIME(3) NULL,
	  process_error VARCHAR(255) NULL,
	  PRIMARY KEY (id),
	  UNIQUE KEY ux_gateway_events_source_event (source, event_id),
	  KEY ix_gateway_events_order_id (order_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
	`

	if _, err := sqlDB.Exec(sql); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	log.Println("✓ orders table created successfully")
	log.Println("✓ gateway_events table created successfully")
}
