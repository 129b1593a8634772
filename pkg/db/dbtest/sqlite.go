// Package dbtest opens throwaway sqlite databases carrying the storefront schema.
package dbtest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// schema mirrors pkg/migrate/migrations with sqlite column types. Index names
// match the Postgres ones.
var schema = []string{
	`CREATE TABLE users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  contact_number TEXT NOT NULL DEFAULT '',
  company_name TEXT NOT NULL DEFAULT '',
  website TEXT,
  business_description TEXT,
  business_type TEXT NOT NULL DEFAULT 'shop',
  number_of_stores INTEGER NOT NULL DEFAULT 1,
  billing_address TEXT NOT NULL DEFAULT '{}',
  dispatch_address TEXT NOT NULL DEFAULT '{}',
  contact_preferences TEXT NOT NULL DEFAULT '{}',
  role TEXT NOT NULL DEFAULT 'user',
  is_active BOOLEAN NOT NULL DEFAULT 1,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
)`,
	`CREATE UNIQUE INDEX uq_users_email ON users (email)`,
	`CREATE TABLE shipping_structures (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT,
  rules TEXT NOT NULL DEFAULT '[]',
  is_default BOOLEAN NOT NULL DEFAULT 0,
  is_active BOOLEAN NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
)`,
	`CREATE UNIQUE INDEX uq_shipping_structures_name ON shipping_structures (name)`,
	`CREATE TABLE products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  brand TEXT NOT NULL,
  category TEXT NOT NULL,
  subcategory TEXT,
  gender TEXT,
  on_sale BOOLEAN NOT NULL DEFAULT 0,
  sku TEXT NOT NULL,
  image_url TEXT,
  unit_price_cents INTEGER NOT NULL,
  description TEXT,
  variants TEXT NOT NULL DEFAULT '[]',
  pack TEXT NOT NULL DEFAULT '{}',
  tax_percentage NUMERIC NOT NULL DEFAULT 0,
  shipping_structure_id TEXT,
  is_active BOOLEAN NOT NULL DEFAULT 1,
  average_rating NUMERIC NOT NULL DEFAULT 0,
  review_count INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
)`,
	`CREATE UNIQUE INDEX uq_products_sku ON products (sku)`,
	`CREATE TABLE carts (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  items TEXT NOT NULL DEFAULT '[]',
  total_cents INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
)`,
	`CREATE UNIQUE INDEX uq_carts_user_id ON carts (user_id)`,
	`CREATE TABLE orders (
  id TEXT PRIMARY KEY,
  order_number TEXT NOT NULL,
  sequence INTEGER NOT NULL,
  user_id TEXT NOT NULL,
  items TEXT NOT NULL DEFAULT '[]',
  shipping_address TEXT NOT NULL DEFAULT '{}',
  payment_method TEXT NOT NULL,
  payment_status TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  subtotal_cents INTEGER NOT NULL,
  tax_cents INTEGER NOT NULL DEFAULT 0,
  shipping_cost_cents INTEGER NOT NULL DEFAULT 0,
  total_cents INTEGER NOT NULL,
  customer_notes TEXT,
  admin_notes TEXT,
  tracking_number TEXT,
  status_history TEXT NOT NULL DEFAULT '[]',
  stripe_payment_intent_id TEXT,
  stripe_session_id TEXT,
  created_at DATETIME,
  updated_at DATETIME,
  CHECK (total_cents = subtotal_cents + tax_cents + shipping_cost_cents)
)`,
	`CREATE UNIQUE INDEX uq_orders_order_number ON orders (order_number)`,
	`CREATE UNIQUE INDEX uq_orders_sequence ON orders (sequence)`,
	`CREATE UNIQUE INDEX uq_orders_stripe_payment_intent ON orders (stripe_payment_intent_id)`,
	`CREATE UNIQUE INDEX uq_orders_stripe_session ON orders (stripe_session_id)`,
	`CREATE TABLE reviews (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  rating INTEGER NOT NULL,
  comment TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
)`,
	`CREATE UNIQUE INDEX uq_reviews_user_product ON reviews (user_id, product_id)`,
	`CREATE TABLE return_requests (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  order_number TEXT NOT NULL,
  reason TEXT NOT NULL,
  message TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  admin_response TEXT,
  created_at DATETIME,
  updated_at DATETIME
)`,
	`CREATE TABLE outbox_events (
  id TEXT PRIMARY KEY,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
)`,
}

// Open returns a private in-memory database with every table created.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=off", name)
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, stmt := range schema {
		require.NoError(t, conn.Exec(stmt).Error, stmt)
	}
	return conn
}
