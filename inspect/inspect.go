package inspect

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/nickyhof/ShowcaseDB/store"
)

// ColumnDoc describes one column of a table, as reported by the
// engine's table_info pragma.
type ColumnDoc struct {
	Position   int64
	Name       string
	Type       string
	NotNull    bool
	Default    string // empty when the column has no default
	PrimaryKey bool
}

// IndexDoc describes one index.
type IndexDoc struct {
	Name   string
	Table  string
	Unique bool
}

// TableDoc describes one table with its columns and row count.
type TableDoc struct {
	Name     string
	Columns  []ColumnDoc
	RowCount int64
}

// Documentation is the full catalog snapshot of a database.
type Documentation struct {
	Database    string
	GeneratedAt time.Time
	Tables      []TableDoc
	Views       []string
	Indexes     []IndexDoc
	Hooks       []store.Hook
}

// Collect reads the catalog and assembles documentation for every
// table, view and index, plus the application-level write hooks that
// stand in for triggers.
func Collect(ctx context.Context, st *store.Store) (*Documentation, error) {
	doc := &Documentation{
		Database:    st.Name(),
		GeneratedAt: time.Now(),
		Hooks:       store.Hooks(),
	}

	tables, views, err := listRelations(ctx, st)
	if err != nil {
		return nil, err
	}
	doc.Views = views

	for _, table := range tables {
		columns, err := tableColumns(ctx, st, table)
		if err != nil {
			return nil, err
		}

		var count int64
		err = st.DB().QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&count)
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}

		doc.Tables = append(doc.Tables, TableDoc{
			Name:     table,
			Columns:  columns,
			RowCount: count,
		})
	}

	indexes, err := listIndexes(ctx, st)
	if err != nil {
		return nil, err
	}
	doc.Indexes = indexes

	return doc, nil
}

// listRelations returns base table names and view names from the
// information schema.
func listRelations(ctx context.Context, st *store.Store) (tables, views []string, err error) {
	rows, err := st.DB().QueryContext(ctx, `
		SELECT table_name, table_type
		FROM information_schema.tables
		WHERE table_schema = 'main'
		ORDER BY table_name`)
	if err != nil {
		return nil, nil, fmt.Errorf("list relations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name, kind string
		if err := rows.Scan(&name, &kind); err != nil {
			return nil, nil, err
		}
		if kind == "VIEW" {
			views = append(views, name)
		} else {
			tables = append(tables, name)
		}
	}
	return tables, views, rows.Err()
}

// tableColumns reads column metadata via the table_info pragma.
func tableColumns(ctx context.Context, st *store.Store, table string) ([]ColumnDoc, error) {
	rows, err := st.DB().QueryContext(ctx, fmt.Sprintf("PRAGMA table_info('%s')", table))
	if err != nil {
		return nil, fmt.Errorf("table info for %s: %w", table, err)
	}
	defer rows.Close()

	var columns []ColumnDoc
	for rows.Next() {
		var c ColumnDoc
		var dflt sql.NullString
		if err := rows.Scan(&c.Position, &c.Name, &c.Type, &c.NotNull, &dflt, &c.PrimaryKey); err != nil {
			return nil, err
		}
		c.Default = dflt.String
		columns = append(columns, c)
	}
	return columns, rows.Err()
}

// listIndexes reads the engine's index catalog.
func listIndexes(ctx context.Context, st *store.Store) ([]IndexDoc, error) {
	rows, err := st.DB().QueryContext(ctx, `
		SELECT index_name, table_name, is_unique
		FROM duckdb_indexes()
		ORDER BY table_name, index_name`)
	if err != nil {
		return nil, fmt.Errorf("list indexes: %w", err)
	}
	defer rows.Close()

	var indexes []IndexDoc
	for rows.Next() {
		var idx IndexDoc
		if err := rows.Scan(&idx.Name, &idx.Table, &idx.Unique); err != nil {
			return nil, err
		}
		indexes = append(indexes, idx)
	}
	return indexes, rows.Err()
}
