package dump

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nickyhof/ShowcaseDB/store"
)

// timestampLayout is the literal format for TIMESTAMP values in dumps.
const timestampLayout = "2006-01-02 15:04:05"

// Dumper serializes a database to a SQL script and replays scripts
// back in. A dump is self-contained: it drops the schema, recreates
// it with sequences advanced past the highest used ids, and inserts
// every row, so it restores into a fresh or an existing database.
type Dumper struct {
	Store *store.Store
	S3    *S3Config // optional, for s3:// targets
}

func NewDumper(st *store.Store) *Dumper {
	return &Dumper{Store: st}
}

// Dump writes the full SQL script for the current database state to w.
func (d *Dumper) Dump(ctx context.Context, w io.Writer) error {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("-- ShowcaseDB dump %s\n", uuid.NewString()))
	b.WriteString(fmt.Sprintf("-- Generated: %s\n", time.Now().Format(time.RFC3339)))
	b.WriteString(fmt.Sprintf("-- Database: %s\n\n", d.Store.Name()))

	for _, stmt := range store.DropStatements() {
		b.WriteString(stmt)
		b.WriteString(";\n")
	}
	b.WriteString("\n")

	// Sequences come first with explicit starts; the IF NOT EXISTS
	// variants inside the canonical DDL then skip them.
	for _, table := range store.TableNames {
		seq := store.SequenceFor(table)
		if seq == "" {
			continue
		}
		var next int64
		err := d.Store.DB().QueryRowContext(ctx,
			fmt.Sprintf("SELECT COALESCE(MAX(id), 0) + 1 FROM %s", table)).Scan(&next)
		if err != nil {
			return fmt.Errorf("next id for %s: %w", table, err)
		}
		b.WriteString(fmt.Sprintf("CREATE SEQUENCE %s START %d;\n", seq, next))
	}
	b.WriteString("\n")

	for _, stmt := range store.SchemaStatements() {
		b.WriteString(stmt)
		b.WriteString(";\n")
	}
	b.WriteString("\n")

	for _, table := range store.TableNames {
		if err := d.dumpTable(ctx, &b, table); err != nil {
			return err
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func (d *Dumper) dumpTable(ctx context.Context, b *strings.Builder, table string) error {
	rows, err := d.Store.DB().QueryContext(ctx, "SELECT * FROM "+table+" ORDER BY 1")
	if err != nil {
		return fmt.Errorf("read %s: %w", table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return err
	}

	// Columns added after initial creation are recreated here so the
	// inserts below line up.
	for _, col := range columns {
		if table == "users" && col == "last_login" {
			b.WriteString("ALTER TABLE users ADD COLUMN last_login TIMESTAMP;\n")
		}
	}

	prefix := fmt.Sprintf("INSERT INTO %s (%s) VALUES ", table, strings.Join(columns, ", "))

	values := make([]any, len(columns))
	scanTargets := make([]any, len(columns))
	for i := range values {
		scanTargets[i] = &values[i]
	}

	count := 0
	for rows.Next() {
		if err := rows.Scan(scanTargets...); err != nil {
			return err
		}

		literals := make([]string, len(values))
		for i, v := range values {
			literals[i] = sqlLiteral(v)
		}

		b.WriteString(prefix)
		b.WriteString("(" + strings.Join(literals, ", ") + ");\n")
		count++
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if count > 0 {
		b.WriteString("\n")
	}
	return nil
}

// sqlLiteral renders a scanned value as a SQL literal. Strings get
// their single quotes doubled; timestamps use the engine's literal
// layout.
func sqlLiteral(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		return "'" + strings.ReplaceAll(val, "'", "''") + "'"
	case []byte:
		return "'" + strings.ReplaceAll(string(val), "'", "''") + "'"
	case time.Time:
		return "'" + val.Format(timestampLayout) + "'"
	case bool:
		if val {
			return "TRUE"
		}
		return "FALSE"
	case int:
		return strconv.FormatInt(int64(val), 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// Restore replays a dump from r into the store. All statements run in
// a single transaction, so a broken dump leaves the database intact.
func (d *Dumper) Restore(ctx context.Context, r io.Reader) (int, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("read dump: %w", err)
	}

	statements := SplitStatements(string(content))
	if len(statements) == 0 {
		return 0, fmt.Errorf("dump contains no statements")
	}

	tx, err := d.Store.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin restore: %w", err)
	}
	defer tx.Rollback()

	applied := 0
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return applied, fmt.Errorf("restore statement %q: %w", truncate(stmt, 60), err)
		}
		applied++
	}

	if err := tx.Commit(); err != nil {
		return applied, fmt.Errorf("commit restore: %w", err)
	}
	return applied, nil
}

// DumpTo writes a dump to a local path, file://, or s3:// target.
func (d *Dumper) DumpTo(ctx context.Context, target string) error {
	w, err := CreateTarget(target, d.S3)
	if err != nil {
		return err
	}

	if err := d.Dump(ctx, w); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// RestoreFrom replays a dump from a local path, file://, http(s)://,
// or s3:// target.
func (d *Dumper) RestoreFrom(ctx context.Context, target string) (int, error) {
	r, err := OpenTarget(target, d.S3)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	return d.Restore(ctx, r)
}

// SplitStatements splits a dump script into individual statements on
// semicolons, respecting string literals and line comments. Quotes
// inside literals are escaped by doubling, the only form Dump emits.
func SplitStatements(content string) []string {
	var statements []string
	var current strings.Builder
	var quote byte

	for i := 0; i < len(content); i++ {
		ch := content[i]

		if quote != 0 {
			if ch == quote {
				if i+1 < len(content) && content[i+1] == quote {
					// Doubled quote, still inside the literal.
					current.WriteByte(ch)
					current.WriteByte(ch)
					i++
					continue
				}
				quote = 0
			}
			current.WriteByte(ch)
			continue
		}

		switch {
		case ch == '\'' || ch == '"':
			quote = ch
			current.WriteByte(ch)
		case ch == '-' && i+1 < len(content) && content[i+1] == '-':
			for i < len(content) && content[i] != '\n' {
				i++
			}
		case ch == ';':
			if stmt := strings.TrimSpace(current.String()); stmt != "" {
				statements = append(statements, stmt)
			}
			current.Reset()
		default:
			current.WriteByte(ch)
		}
	}

	if stmt := strings.TrimSpace(current.String()); stmt != "" {
		statements = append(statements, stmt)
	}

	return statements
}

// truncate shortens a string to max length with ellipsis
func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\t", " ")
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
