// Package op provides high-level operations over a ShowcaseDB store.
//
// The op package sits between callers and the persistence layer
// (store/), wrapping the showcase's multi-step routines in scoped
// sessions and transactions.
//
// # Seeder
//
// Seeder wipes and repopulates the schema with randomized,
// referentially consistent fixture data:
//
//	seeder := op.NewSeeder(st, 42)
//	err := seeder.Generate(ctx, 50, 100)
//
// # Orders
//
// Orders.Place runs the atomic order transaction: validate stock,
// compute the total, insert the order and its items, decrement stock,
// and append one audit entry, committing all of it or none of it.
// Validation failures roll back cleanly and surface as
// *ValidationError; engine failures propagate as wrapped errors.
//
//	order, err := orders.Place(ctx, userID, []core.LineItem{{ProductID: 1, Quantity: 2}})
//	if op.IsValidation(err) {
//	    // rejected, nothing was written
//	}
//
// # Users
//
// Users creates accounts with hashed credentials, applies audited
// status changes, and authenticates against the stored hash, minting a
// session token on success.
//
// # Reports
//
// Reports answers the showcase's query suite: active users, per-category
// product statistics, sales aggregates, a joined per-user order summary,
// and a CTE-based top-customer ranking.
package op
