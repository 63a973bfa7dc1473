package op

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/nickyhof/ShowcaseDB/core"
	"github.com/nickyhof/ShowcaseDB/store"
)

// Orders runs order lifecycle operations against a store.
type Orders struct {
	Store *store.Store
}

func NewOrders(st *store.Store) *Orders {
	return &Orders{Store: st}
}

// Place runs the atomic order transaction. Every requested line item is
// validated (product exists, stock covers the quantity) before any row
// is written; the first failing item aborts the whole call with a
// *ValidationError and no partial writes. On success one pending order,
// one item row per line at the price captured now, the stock
// decrements, and one audit entry are committed together.
func (o *Orders) Place(ctx context.Context, userID int64, items []core.LineItem) (*core.Order, error) {
	if len(items) == 0 {
		return nil, &ValidationError{Reason: "order has no line items"}
	}
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, &ValidationError{ProductID: item.ProductID, Reason: "quantity must be positive"}
		}
	}

	tx, err := o.Store.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin order transaction: %w", err)
	}
	defer tx.Rollback()

	// Validation pass: price and stock for every line, before any write.
	type pricedLine struct {
		core.LineItem
		price decimal.Decimal
	}
	total := decimal.Zero
	lines := make([]pricedLine, 0, len(items))
	for _, item := range items {
		var price float64
		var stock int
		err := tx.QueryRowContext(ctx,
			`SELECT price, stock FROM products WHERE id = ?`, item.ProductID).Scan(&price, &stock)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &ValidationError{ProductID: item.ProductID, Reason: "product does not exist"}
		}
		if err != nil {
			return nil, fmt.Errorf("look up product %d: %w", item.ProductID, err)
		}
		if stock < item.Quantity {
			return nil, &ValidationError{
				ProductID: item.ProductID,
				Reason:    fmt.Sprintf("insufficient stock: have %d, want %d", stock, item.Quantity),
			}
		}

		unit := decimal.NewFromFloat(price)
		total = total.Add(unit.Mul(decimal.NewFromInt(int64(item.Quantity))))
		lines = append(lines, pricedLine{LineItem: item, price: unit})
	}

	// Write pass.
	var orderID int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO orders (user_id, total_amount, status) VALUES (?, ?, ?) RETURNING id`,
		userID, total.InexactFloat64(), string(core.OrderPending)).Scan(&orderID)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	for _, line := range lines {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO order_items (order_id, product_id, quantity, price) VALUES (?, ?, ?, ?)`,
			orderID, line.ProductID, line.Quantity, line.price.InexactFloat64())
		if err != nil {
			return nil, fmt.Errorf("insert order item for product %d: %w", line.ProductID, err)
		}

		if err := store.DecrementStock(ctx, tx, line.ProductID, line.Quantity); err != nil {
			if errors.Is(err, store.ErrStockUnavailable) {
				return nil, &ValidationError{ProductID: line.ProductID, Reason: "insufficient stock"}
			}
			return nil, err
		}
	}

	if err := store.AuditOrderCreated(ctx, tx, userID, orderID, total.StringFixed(2)); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit order transaction: %w", err)
	}

	return &core.Order{
		ID:          orderID,
		UserID:      userID,
		TotalAmount: total,
		Status:      core.OrderPending,
	}, nil
}

// UpdateStatus moves an order to a new lifecycle status. Transitions
// are not validated beyond the storage constraint; pending orders are
// completed or cancelled by callers outside the placement routine.
func (o *Orders) UpdateStatus(ctx context.Context, orderID int64, status core.OrderStatus) error {
	res, err := o.Store.DB().ExecContext(ctx,
		`UPDATE orders SET status = ? WHERE id = ?`, string(status), orderID)
	if err != nil {
		return fmt.Errorf("update order %d status: %w", orderID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("order %d not found", orderID)
	}
	return nil
}

// Delete removes an order, enforcing the deletion guard: an order that
// still has line items is rejected with store.ErrOrderHasItems and
// left untouched.
func (o *Orders) Delete(ctx context.Context, orderID int64) error {
	tx, err := o.Store.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete transaction: %w", err)
	}
	defer tx.Rollback()

	if err := store.GuardOrderDelete(ctx, tx, orderID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, orderID); err != nil {
		return fmt.Errorf("delete order %d: %w", orderID, err)
	}

	return tx.Commit()
}

// Purge removes an order together with its line items. This is the
// only sanctioned way past the deletion guard. The two deletes commit
// separately: the engine rejects deleting a referenced row in the
// same transaction as the rows referencing it, so an interrupted
// purge can leave an empty order behind, which a later Delete passes
// the guard and removes.
func (o *Orders) Purge(ctx context.Context, orderID int64) error {
	if _, err := o.Store.DB().ExecContext(ctx, `DELETE FROM order_items WHERE order_id = ?`, orderID); err != nil {
		return fmt.Errorf("delete items for order %d: %w", orderID, err)
	}
	if _, err := o.Store.DB().ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, orderID); err != nil {
		return fmt.Errorf("delete order %d: %w", orderID, err)
	}
	return nil
}

// Get fetches a single order.
func (o *Orders) Get(ctx context.Context, orderID int64) (*core.Order, error) {
	var order core.Order
	var total float64
	var status string
	err := o.Store.DB().QueryRowContext(ctx,
		`SELECT id, user_id, total_amount, order_date, status FROM orders WHERE id = ?`,
		orderID).Scan(&order.ID, &order.UserID, &total, &order.OrderDate, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order %d not found", orderID)
	}
	if err != nil {
		return nil, fmt.Errorf("get order %d: %w", orderID, err)
	}
	order.TotalAmount = decimal.NewFromFloat(total)
	order.Status = core.OrderStatus(status)
	return &order, nil
}

// Items fetches the line items of an order.
func (o *Orders) Items(ctx context.Context, orderID int64) ([]core.OrderItem, error) {
	rows, err := o.Store.DB().QueryContext(ctx,
		`SELECT id, order_id, product_id, quantity, price FROM order_items WHERE order_id = ? ORDER BY id`,
		orderID)
	if err != nil {
		return nil, fmt.Errorf("list items for order %d: %w", orderID, err)
	}
	defer rows.Close()

	var items []core.OrderItem
	for rows.Next() {
		var item core.OrderItem
		var price float64
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &price); err != nil {
			return nil, err
		}
		item.Price = decimal.NewFromFloat(price)
		items = append(items, item)
	}
	return items, rows.Err()
}
