package op

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nickyhof/ShowcaseDB/store"
)

// Reports runs the read-only analytical queries over the seeded
// schema. All money aggregates come back as decimals.
type Reports struct {
	Store *store.Store
}

func NewReports(st *store.Store) *Reports {
	return &Reports{Store: st}
}

// ActiveUser is one row of the active-user listing.
type ActiveUser struct {
	ID        int64
	Username  string
	Email     string
	CreatedAt time.Time
}

// ActiveUsers lists up to limit active users, newest first.
func (r *Reports) ActiveUsers(ctx context.Context, limit int) ([]ActiveUser, error) {
	rows, err := r.Store.DB().QueryContext(ctx, `
		SELECT id, username, email, created_at
		FROM users
		WHERE status = 'active'
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query active users: %w", err)
	}
	defer rows.Close()

	var users []ActiveUser
	for rows.Next() {
		var u ActiveUser
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CategoryStats aggregates the product catalog for one category.
type CategoryStats struct {
	Category     string
	ProductCount int64
	AveragePrice decimal.Decimal
	TotalStock   int64
}

// ProductsByCategory groups the catalog by category with per-category
// count, average price and summed stock.
func (r *Reports) ProductsByCategory(ctx context.Context) ([]CategoryStats, error) {
	rows, err := r.Store.DB().QueryContext(ctx, `
		SELECT category, COUNT(*), AVG(price), SUM(stock)
		FROM products
		GROUP BY category
		ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("query products by category: %w", err)
	}
	defer rows.Close()

	var stats []CategoryStats
	for rows.Next() {
		var s CategoryStats
		var avg float64
		if err := rows.Scan(&s.Category, &s.ProductCount, &avg, &s.TotalStock); err != nil {
			return nil, err
		}
		s.AveragePrice = decimal.NewFromFloat(avg).Round(2)
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// SalesStats summarizes the whole orders table. Aggregates are zero,
// not null, when the table is empty.
type SalesStats struct {
	OrderCount    int64
	TotalRevenue  decimal.Decimal
	AverageOrder  decimal.Decimal
	LargestOrder  decimal.Decimal
	SmallestOrder decimal.Decimal
	ByStatus      map[string]int64
}

// SalesStatistics computes order count, revenue, average, extremes and
// a per-status breakdown.
func (r *Reports) SalesStatistics(ctx context.Context) (*SalesStats, error) {
	stats := &SalesStats{ByStatus: make(map[string]int64)}

	var total, avg, max, min float64
	err := r.Store.DB().QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(total_amount), 0),
		       COALESCE(AVG(total_amount), 0),
		       COALESCE(MAX(total_amount), 0),
		       COALESCE(MIN(total_amount), 0)
		FROM orders`).Scan(&stats.OrderCount, &total, &avg, &max, &min)
	if err != nil {
		return nil, fmt.Errorf("query sales statistics: %w", err)
	}
	stats.TotalRevenue = decimal.NewFromFloat(total).Round(2)
	stats.AverageOrder = decimal.NewFromFloat(avg).Round(2)
	stats.LargestOrder = decimal.NewFromFloat(max).Round(2)
	stats.SmallestOrder = decimal.NewFromFloat(min).Round(2)

	rows, err := r.Store.DB().QueryContext(ctx, `
		SELECT status, COUNT(*)
		FROM orders
		GROUP BY status
		ORDER BY status`)
	if err != nil {
		return nil, fmt.Errorf("query order statuses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats.ByStatus[status] = count
	}
	return stats, rows.Err()
}

// UserOrders is one row of the per-user order summary.
type UserOrders struct {
	Username   string
	Status     string
	OrderCount int64
	TotalSpent decimal.Decimal
	ItemCount  int64
}

// UserOrderSummary joins users to their orders and items in a single
// query. Users without orders still appear, with zeroed aggregates.
func (r *Reports) UserOrderSummary(ctx context.Context, limit int) ([]UserOrders, error) {
	rows, err := r.Store.DB().QueryContext(ctx, `
		SELECT u.username,
		       u.status,
		       COUNT(DISTINCT o.id),
		       COALESCE(SUM(o.total_amount), 0),
		       COALESCE(SUM(oi.quantity), 0)
		FROM users u
		LEFT JOIN orders o ON o.user_id = u.id
		LEFT JOIN order_items oi ON oi.order_id = o.id
		GROUP BY u.username, u.status
		ORDER BY COALESCE(SUM(o.total_amount), 0) DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query user order summary: %w", err)
	}
	defer rows.Close()

	var summaries []UserOrders
	for rows.Next() {
		var s UserOrders
		var spent float64
		if err := rows.Scan(&s.Username, &s.Status, &s.OrderCount, &spent, &s.ItemCount); err != nil {
			return nil, err
		}
		s.TotalSpent = decimal.NewFromFloat(spent).Round(2)
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// TopCustomer is one row of the completed-order spending ranking.
type TopCustomer struct {
	Username     string
	Email        string
	OrderCount   int64
	TotalSpent   decimal.Decimal
	AverageOrder decimal.Decimal
}

// TopCustomers ranks active users by completed-order spending using a
// customer_stats CTE, highest spender first.
func (r *Reports) TopCustomers(ctx context.Context, limit int) ([]TopCustomer, error) {
	rows, err := r.Store.DB().QueryContext(ctx, `
		WITH customer_stats AS (
			SELECT u.username,
			       u.email,
			       COUNT(o.id) AS order_count,
			       SUM(o.total_amount) AS total_spent,
			       AVG(o.total_amount) AS avg_order
			FROM users u
			JOIN orders o ON o.user_id = u.id
			WHERE o.status = 'completed' AND u.status = 'active'
			GROUP BY u.username, u.email
		)
		SELECT username, email, order_count, total_spent, avg_order
		FROM customer_stats
		ORDER BY total_spent DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query top customers: %w", err)
	}
	defer rows.Close()

	var customers []TopCustomer
	for rows.Next() {
		var c TopCustomer
		var spent, avg float64
		if err := rows.Scan(&c.Username, &c.Email, &c.OrderCount, &spent, &avg); err != nil {
			return nil, err
		}
		c.TotalSpent = decimal.NewFromFloat(spent).Round(2)
		c.AverageOrder = decimal.NewFromFloat(avg).Round(2)
		customers = append(customers, c)
	}
	return customers, rows.Err()
}
