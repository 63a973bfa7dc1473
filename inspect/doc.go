// Package inspect reads the database's own catalog to document the
// schema: tables with their columns and row counts, views, indexes,
// and the application-level write hooks. The collected documentation
// renders as plain text tables.
package inspect
