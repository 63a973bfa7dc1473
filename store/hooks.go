package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nickyhof/ShowcaseDB/core"
)

var (
	// ErrOrderHasItems rejects deletion of an order that still has
	// line items.
	ErrOrderHasItems = errors.New("cannot delete order with items")

	// ErrStockUnavailable signals a decrement that would take stock
	// negative.
	ErrStockUnavailable = errors.New("insufficient stock")
)

// Session is the subset of database/sql shared by *sql.DB and *sql.Tx.
// Hooks take a Session so they run inside the caller's transaction.
type Session interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Hook describes an application-level trigger: an invariant enforced in
// Go at the same logical point a database trigger would fire.
type Hook struct {
	Name    string
	Table   string
	Event   string
	Purpose string
}

// Hooks returns the registered mutation hooks. The documentation export
// lists these where an engine with stored procedures would list
// triggers.
func Hooks() []Hook {
	return []Hook{
		{
			Name:    "audit_user_changes",
			Table:   "users",
			Event:   "AFTER UPDATE",
			Purpose: "append an audit_log row recording the old and new status",
		},
		{
			Name:    "update_product_stock",
			Table:   "order_items",
			Event:   "AFTER INSERT",
			Purpose: "decrement product stock by the inserted quantity, never below zero",
		},
		{
			Name:    "prevent_order_deletion",
			Table:   "orders",
			Event:   "BEFORE DELETE",
			Purpose: "reject deletion while the order still has line items",
		},
	}
}

// AuditUserChange appends the audit entry for a user status update.
// Runs in the same transaction as the update itself.
func AuditUserChange(ctx context.Context, sess Session, userID int64, oldStatus, newStatus core.UserStatus) error {
	details, err := json.Marshal(map[string]string{
		"old_status": string(oldStatus),
		"new_status": string(newStatus),
	})
	if err != nil {
		return err
	}

	_, err = sess.ExecContext(ctx,
		`INSERT INTO audit_log (table_name, action, user_id, details) VALUES ('users', 'UPDATE', ?, ?)`,
		userID, string(details))
	if err != nil {
		return fmt.Errorf("audit user change: %w", err)
	}
	return nil
}

// AuditOrderCreated appends the audit entry for a placed order.
func AuditOrderCreated(ctx context.Context, sess Session, userID, orderID int64, total string) error {
	details, err := json.Marshal(map[string]any{
		"order_id": orderID,
		"total":    total,
	})
	if err != nil {
		return err
	}

	_, err = sess.ExecContext(ctx,
		`INSERT INTO audit_log (table_name, action, user_id, details) VALUES ('orders', 'CREATE', ?, ?)`,
		userID, string(details))
	if err != nil {
		return fmt.Errorf("audit order creation: %w", err)
	}
	return nil
}

// DecrementStock is the single stock-decrement mechanism. The guarded
// UPDATE never takes stock negative; a zero-row update means the
// product vanished or stock ran out between validation and write.
func DecrementStock(ctx context.Context, sess Session, productID int64, quantity int) error {
	res, err := sess.ExecContext(ctx,
		`UPDATE products SET stock = stock - ? WHERE id = ? AND stock >= ?`,
		quantity, productID, quantity)
	if err != nil {
		return fmt.Errorf("decrement stock for product %d: %w", productID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("product %d: %w", productID, ErrStockUnavailable)
	}
	return nil
}

// GuardOrderDelete rejects deleting an order that still has line items.
func GuardOrderDelete(ctx context.Context, sess Session, orderID int64) error {
	var items int
	err := sess.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM order_items WHERE order_id = ?`, orderID).Scan(&items)
	if err != nil {
		return fmt.Errorf("count items for order %d: %w", orderID, err)
	}
	if items > 0 {
		return fmt.Errorf("order %d has %d item(s): %w", orderID, items, ErrOrderHasItems)
	}
	return nil
}
