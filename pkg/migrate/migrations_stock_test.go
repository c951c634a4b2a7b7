package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStockTransactionsMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_stock_transactions.sql")

	checks := []string{
		"CREATE TYPE transaction_type AS ENUM ('in', 'out', 'adjustment', 'return')",
		"CREATE TABLE IF NOT EXISTS stock_transactions",
		"signed_delta     INTEGER NOT NULL",
		"REFERENCES products(id) ON DELETE CASCADE",
		"CHECK (quantity >= 0)",
		"idx_stock_transactions_product_created",
		"DROP TABLE IF EXISTS stock_transactions",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestProductsMigrationContainsStockGuard(t *testing.T) {
	content := readMigration(t, "*_create_products.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS products",
		"CHECK (current_stock >= 0)",
		"CHECK (min_stock >= 0)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_products_sku",
		"REFERENCES suppliers(id) ON DELETE SET NULL",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestNotificationsMigrationContainsEnums(t *testing.T) {
	content := readMigration(t, "*_create_notifications_and_orders.sql")

	checks := []string{
		"CREATE TYPE notification_type AS ENUM ('low_stock', 'out_of_stock', 'order_placed', 'order_delivered', 'system')",
		"CREATE TYPE purchase_order_status AS ENUM ('pending', 'confirmed', 'shipped', 'delivered', 'cancelled')",
		"WHERE read_at IS NULL",
		"CHECK (quantity > 0)",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()

	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration file matching %q", pattern)
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}
