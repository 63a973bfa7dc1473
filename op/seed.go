package op

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nickyhof/ShowcaseDB/auth"
	"github.com/nickyhof/ShowcaseDB/core"
	"github.com/nickyhof/ShowcaseDB/store"
)

// ErrNoActiveUsers is returned when order generation starts and no
// seeded user drew the active status. Requires numUsers >= 1; with the
// uniform status draw the probability shrinks as (2/3)^n.
var ErrNoActiveUsers = errors.New("no active users to own generated orders")

// seedOrderCount is the fixed number of generated orders.
const seedOrderCount = 200

// seedCategories is the fixed product category set.
var seedCategories = []string{"Electronics", "Clothing", "Books", "Home", "Sports"}

// Seeder repopulates the schema with randomized but referentially
// consistent fixture data. A fixed seed makes generation reproducible.
type Seeder struct {
	Store *store.Store
	rng   *rand.Rand
}

func NewSeeder(st *store.Store, seed int64) *Seeder {
	return &Seeder{Store: st, rng: rand.New(rand.NewSource(seed))}
}

// Generate wipes the primary tables (children first) and repopulates
// them: numUsers users, numProducts products, and exactly
// seedOrderCount orders owned by active users only. Each order gets
// 1-5 line items and a stored total that is the exact sum of its
// items; order dates are backdated up to a year.
//
// Generated stock is not decremented by generated orders: fixture
// orders are historical, and the stock-decrement hook belongs to the
// live order transaction alone.
func (s *Seeder) Generate(ctx context.Context, numUsers, numProducts int) error {
	if numUsers < 1 {
		return errors.New("at least one user required")
	}
	if numProducts < 1 {
		return errors.New("at least one product required")
	}

	// Wipe in dependency order, each delete committed on its own: the
	// engine rejects deleting a referenced row in the same transaction
	// as the rows referencing it. A wipe failure leaves a partially
	// cleared database rather than rolling back. user_roles comes out
	// too: a stale role row would block deleting its user.
	for _, table := range []string{"order_items", "orders", "user_roles", "products", "users"} {
		if _, err := s.Store.DB().ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("wipe %s: %w", table, err)
		}
	}

	tx, err := s.Store.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	// Users: synthesized unique username/email pairs, hashed placeholder
	// passwords, uniform status draw.
	for i := 0; i < numUsers; i++ {
		username := fmt.Sprintf("user_%d_%s", i, s.randString(5))
		status := core.UserStatuses[s.rng.Intn(len(core.UserStatuses))]
		_, err := tx.ExecContext(ctx,
			`INSERT INTO users (username, email, password_hash, status) VALUES (?, ?, ?, ?)`,
			username, username+"@example.com", auth.HashPassword(fmt.Sprintf("password%d", i)), string(status))
		if err != nil {
			return fmt.Errorf("seed user %d: %w", i, err)
		}
	}

	// Products: fixed category set, price U[10,1000] rounded to cents,
	// stock U[0,500].
	for i := 0; i < numProducts; i++ {
		name := fmt.Sprintf("Product_%d_%s", i, s.randString(4))
		category := seedCategories[s.rng.Intn(len(seedCategories))]
		price := math.Round((10+s.rng.Float64()*990)*100) / 100
		stock := s.rng.Intn(501)
		_, err := tx.ExecContext(ctx,
			`INSERT INTO products (name, category, price, stock) VALUES (?, ?, ?, ?)`,
			name, category, price, stock)
		if err != nil {
			return fmt.Errorf("seed product %d: %w", i, err)
		}
	}

	activeIDs, err := collectIDs(ctx, tx, `SELECT id FROM users WHERE status = 'active' ORDER BY id`)
	if err != nil {
		return fmt.Errorf("collect active users: %w", err)
	}
	if len(activeIDs) == 0 {
		return ErrNoActiveUsers
	}

	type seedProduct struct {
		id    int64
		price decimal.Decimal
	}
	var products []seedProduct
	rows, err := tx.QueryContext(ctx, `SELECT id, price FROM products ORDER BY id`)
	if err != nil {
		return fmt.Errorf("collect products: %w", err)
	}
	for rows.Next() {
		var p seedProduct
		var price float64
		if err := rows.Scan(&p.id, &price); err != nil {
			rows.Close()
			return err
		}
		p.price = decimal.NewFromFloat(price)
		products = append(products, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	// Orders: active owners only, 1-5 items each, total = exact item
	// sum, dates backdated up to a year.
	now := time.Now()
	for i := 0; i < seedOrderCount; i++ {
		userID := activeIDs[s.rng.Intn(len(activeIDs))]
		orderDate := now.AddDate(0, 0, -s.rng.Intn(366))
		status := core.OrderStatuses[s.rng.Intn(len(core.OrderStatuses))]

		type seedLine struct {
			product  seedProduct
			quantity int
		}
		lineCount := 1 + s.rng.Intn(5)
		total := decimal.Zero
		lines := make([]seedLine, 0, lineCount)
		for j := 0; j < lineCount; j++ {
			product := products[s.rng.Intn(len(products))]
			quantity := 1 + s.rng.Intn(5)
			total = total.Add(product.price.Mul(decimal.NewFromInt(int64(quantity))))
			lines = append(lines, seedLine{product: product, quantity: quantity})
		}

		var orderID int64
		err := tx.QueryRowContext(ctx,
			`INSERT INTO orders (user_id, total_amount, order_date, status) VALUES (?, ?, ?, ?) RETURNING id`,
			userID, total.InexactFloat64(), orderDate, string(status)).Scan(&orderID)
		if err != nil {
			return fmt.Errorf("seed order %d: %w", i, err)
		}

		for _, line := range lines {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO order_items (order_id, product_id, quantity, price) VALUES (?, ?, ?, ?)`,
				orderID, line.product.id, line.quantity, line.product.price.InexactFloat64())
			if err != nil {
				return fmt.Errorf("seed items for order %d: %w", orderID, err)
			}
		}
	}

	return tx.Commit()
}

func (s *Seeder) randString(length int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	b := make([]byte, length)
	for i := range b {
		b[i] = letters[s.rng.Intn(len(letters))]
	}
	return string(b)
}

func collectIDs(ctx context.Context, sess store.Session, query string) ([]int64, error) {
	rows, err := sess.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
