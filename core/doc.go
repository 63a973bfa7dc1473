// Package core provides core types used throughout ShowcaseDB.
//
// The package defines the retail domain entities (User, Product, Order,
// OrderItem, AuditEntry), their status enumerations, and the Identity
// type used to attribute audited mutations and backup vault commits.
//
// # Identity
//
// Identity identifies the author of audited operations and vault commits:
//
//	identity := core.Identity{
//	    Name:  "John Doe",
//	    Email: "john@example.com",
//	}
//
// # Money
//
// Monetary amounts (product prices, order totals, captured line-item
// prices) are decimal.Decimal values. The store persists them as DOUBLE
// columns and converts at the boundary; all arithmetic on totals happens
// in decimal space so that a stored order total is the exact sum of its
// line items.
package core
