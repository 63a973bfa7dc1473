package store

import (
	"context"
	"fmt"
)

// TableNames lists the showcase tables in dependency order: parents
// before children. Dumps insert in this order and wipe in reverse.
var TableNames = []string{"users", "products", "orders", "order_items", "audit_log", "user_roles"}

// sequences maps each table with a generated primary key to the
// sequence feeding its id column.
var sequences = map[string]string{
	"users":       "seq_users",
	"products":    "seq_products",
	"orders":      "seq_orders",
	"order_items": "seq_order_items",
	"audit_log":   "seq_audit_log",
}

// SequenceFor returns the id sequence for a table, or "" if the table
// has no generated key.
func SequenceFor(table string) string {
	return sequences[table]
}

// createTableStatements returns the canonical DDL for every table, in
// dependency order. DuckDB has no AUTOINCREMENT, so generated keys
// default to nextval on a per-table sequence.
func createTableStatements() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY DEFAULT nextval('seq_users'),
			username VARCHAR NOT NULL UNIQUE,
			email VARCHAR NOT NULL UNIQUE,
			password_hash VARCHAR NOT NULL,
			status VARCHAR NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'inactive', 'suspended')),
			created_at TIMESTAMP NOT NULL DEFAULT current_timestamp
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			id INTEGER PRIMARY KEY DEFAULT nextval('seq_products'),
			name VARCHAR NOT NULL,
			category VARCHAR NOT NULL,
			price DOUBLE NOT NULL CHECK (price >= 0),
			stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
			created_at TIMESTAMP NOT NULL DEFAULT current_timestamp
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id INTEGER PRIMARY KEY DEFAULT nextval('seq_orders'),
			user_id INTEGER NOT NULL REFERENCES users (id),
			total_amount DOUBLE NOT NULL,
			order_date TIMESTAMP NOT NULL DEFAULT current_timestamp,
			status VARCHAR NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'completed', 'cancelled'))
		)`,
		`CREATE TABLE IF NOT EXISTS order_items (
			id INTEGER PRIMARY KEY DEFAULT nextval('seq_order_items'),
			order_id INTEGER NOT NULL REFERENCES orders (id),
			product_id INTEGER NOT NULL REFERENCES products (id),
			quantity INTEGER NOT NULL CHECK (quantity > 0),
			price DOUBLE NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS audit_log (
			id INTEGER PRIMARY KEY DEFAULT nextval('seq_audit_log'),
			table_name VARCHAR NOT NULL,
			action VARCHAR NOT NULL,
			user_id INTEGER,
			logged_at TIMESTAMP NOT NULL DEFAULT current_timestamp,
			details VARCHAR
		)`,
		`CREATE TABLE IF NOT EXISTS user_roles (
			user_id INTEGER NOT NULL REFERENCES users (id),
			role VARCHAR NOT NULL CHECK (role IN ('admin', 'user', 'guest'))
		)`,
	}
}

// createIndexStatements returns the indexes on foreign keys and
// frequently filtered columns.
func createIndexStatements() []string {
	return []string{
		`CREATE INDEX IF NOT EXISTS idx_users_email ON users (email)`,
		`CREATE INDEX IF NOT EXISTS idx_users_username ON users (username)`,
		`CREATE INDEX IF NOT EXISTS idx_products_category ON products (category)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders (user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_date ON orders (order_date)`,
		`CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items (order_id)`,
		`CREATE INDEX IF NOT EXISTS idx_order_items_product ON order_items (product_id)`,
	}
}

// createViewStatements returns the derived views: active users joined
// to their orders, and a row-level-security style projection of a
// user's own orders.
func createViewStatements() []string {
	return []string{
		`CREATE OR REPLACE VIEW active_user_orders AS
			SELECT u.username, u.email, o.id AS order_id, o.total_amount, o.order_date, o.status
			FROM users u
			JOIN orders o ON u.id = o.user_id
			WHERE u.status = 'active'`,
		`CREATE OR REPLACE VIEW user_own_orders AS
			SELECT o.*
			FROM orders o
			WHERE o.user_id = (SELECT id FROM users WHERE username = 'current_user')`,
	}
}

// SchemaStatements returns every DDL statement needed to rebuild an
// empty showcase schema, sequences first. Dumps embed these so a
// restore works against a fresh database.
func SchemaStatements() []string {
	stmts := make([]string, 0, 16)
	for _, table := range TableNames {
		if seq := sequences[table]; seq != "" {
			stmts = append(stmts, fmt.Sprintf("CREATE SEQUENCE IF NOT EXISTS %s START 1", seq))
		}
	}
	stmts = append(stmts, createTableStatements()...)
	stmts = append(stmts, createIndexStatements()...)
	stmts = append(stmts, createViewStatements()...)
	return stmts
}

// DropStatements returns statements that remove every showcase object,
// children before parents. Used by restores replaying into a non-empty
// database.
func DropStatements() []string {
	stmts := []string{
		`DROP VIEW IF EXISTS active_user_orders`,
		`DROP VIEW IF EXISTS user_own_orders`,
		`DROP TABLE IF EXISTS order_items`,
		`DROP TABLE IF EXISTS user_roles`,
		`DROP TABLE IF EXISTS orders`,
		`DROP TABLE IF EXISTS audit_log`,
		`DROP TABLE IF EXISTS products`,
		`DROP TABLE IF EXISTS users`,
	}
	for _, table := range TableNames {
		if seq := sequences[table]; seq != "" {
			stmts = append(stmts, fmt.Sprintf("DROP SEQUENCE IF EXISTS %s", seq))
		}
	}
	return stmts
}

// Setup initializes the complete showcase schema. It is idempotent:
// every statement either creates a missing object or is a no-op.
func (s *Store) Setup(ctx context.Context) error {
	if err := s.ensureInitialized(); err != nil {
		return err
	}
	for _, stmt := range SchemaStatements() {
		if err := s.execTolerant(ctx, stmt); err != nil {
			return fmt.Errorf("setup schema: %w", err)
		}
	}
	return nil
}

// ModifySchema applies the structural changes the showcase layers onto
// the base schema after initial creation: a last_login column on users.
// Re-running it is a no-op.
func (s *Store) ModifySchema(ctx context.Context) error {
	if err := s.ensureInitialized(); err != nil {
		return err
	}
	if err := s.execTolerant(ctx, `ALTER TABLE users ADD COLUMN last_login TIMESTAMP`); err != nil {
		return fmt.Errorf("modify schema: %w", err)
	}
	return nil
}

// Optimize applies the engine-side access optimizations: statistics
// refresh, space reclamation, and a covering index for the common
// user/status/total query pattern.
func (s *Store) Optimize(ctx context.Context) error {
	if err := s.ensureInitialized(); err != nil {
		return err
	}
	for _, stmt := range []string{
		`ANALYZE`,
		`VACUUM`,
		`CREATE INDEX IF NOT EXISTS idx_orders_user_status ON orders (user_id, status, total_amount)`,
	} {
		if err := s.execTolerant(ctx, stmt); err != nil {
			return fmt.Errorf("optimize: %w", err)
		}
	}
	return nil
}

// ExplainQuery returns the engine's plan for a query, one line per
// plan row.
func (s *Store) ExplainQuery(ctx context.Context, query string) ([]string, error) {
	if err := s.ensureInitialized(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, "EXPLAIN "+query)
	if err != nil {
		return nil, fmt.Errorf("explain query: %w", err)
	}
	defer rows.Close()

	var plan []string
	for rows.Next() {
		var planType, planLine string
		if err := rows.Scan(&planType, &planLine); err != nil {
			return nil, err
		}
		plan = append(plan, planLine)
	}
	return plan, rows.Err()
}
