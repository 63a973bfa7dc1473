package inspect

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/nickyhof/ShowcaseDB/store"
)

func setupStore(t *testing.T) *store.Store {
	t.Helper()

	st, err := store.NewMemoryStore()
	if err != nil {
		t.Fatalf("Failed to open memory store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	if err := st.Setup(context.Background()); err != nil {
		t.Fatalf("Failed to set up schema: %v", err)
	}

	return st
}

func TestCollect(t *testing.T) {
	st := setupStore(t)

	doc, err := Collect(context.Background(), st)
	if err != nil {
		t.Fatalf("Failed to collect documentation: %v", err)
	}

	if doc.Database != "memory" {
		t.Errorf("Expected database 'memory', got %q", doc.Database)
	}

	tables := make(map[string]TableDoc)
	for _, table := range doc.Tables {
		tables[table.Name] = table
	}
	for _, expected := range store.TableNames {
		if _, ok := tables[expected]; !ok {
			t.Errorf("Missing table %s", expected)
		}
	}

	users := tables["users"]
	columns := make(map[string]ColumnDoc)
	for _, col := range users.Columns {
		columns[col.Name] = col
	}
	if col, ok := columns["id"]; !ok || !col.PrimaryKey {
		t.Errorf("Expected users.id to be the primary key: %+v", col)
	}
	if col, ok := columns["username"]; !ok || !col.NotNull {
		t.Errorf("Expected users.username to be NOT NULL: %+v", col)
	}
	if col, ok := columns["status"]; !ok || !strings.Contains(col.Default, "active") {
		t.Errorf("Expected users.status default 'active': %+v", col)
	}

	views := make(map[string]bool)
	for _, view := range doc.Views {
		views[view] = true
	}
	if !views["active_user_orders"] || !views["user_own_orders"] {
		t.Errorf("Missing views, got %v", doc.Views)
	}

	if len(doc.Indexes) < 7 {
		t.Errorf("Expected at least 7 indexes, got %d", len(doc.Indexes))
	}
	if len(doc.Hooks) != 3 {
		t.Errorf("Expected 3 hooks, got %d", len(doc.Hooks))
	}
}

func TestCollectRowCounts(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()

	_, err := st.DB().ExecContext(ctx, `
		INSERT INTO users (username, email, password_hash) VALUES
			('a', 'a@example.com', 'x'),
			('b', 'b@example.com', 'x')`)
	if err != nil {
		t.Fatal(err)
	}

	doc, err := Collect(ctx, st)
	if err != nil {
		t.Fatal(err)
	}

	for _, table := range doc.Tables {
		if table.Name == "users" && table.RowCount != 2 {
			t.Errorf("Expected 2 user rows, got %d", table.RowCount)
		}
	}
}

func TestRender(t *testing.T) {
	st := setupStore(t)

	doc, err := Collect(context.Background(), st)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	doc.Render(&buf)
	output := buf.String()

	for _, expected := range []string{
		"Database: memory",
		"Table users",
		"Views",
		"Indexes",
		"Write hooks",
		"audit_user_changes",
		"idx_orders_user_id",
	} {
		if !strings.Contains(output, expected) {
			t.Errorf("Rendered output missing %q", expected)
		}
	}
}

func TestSimpleTable(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf)
	table.Header([]string{"Name", "Value"})
	table.Row([]string{"first", "1"})
	table.Bulk([][]string{{"second", "2"}, {"third", "3"}})
	table.Render()

	output := buf.String()
	if !strings.Contains(output, "| Name") || !strings.Contains(output, "| second") {
		t.Errorf("Unexpected table output:\n%s", output)
	}
	if !strings.HasPrefix(output, "+") {
		t.Errorf("Expected separator line first:\n%s", output)
	}
}

func TestSimpleTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	NewTable(&buf).Render()
	if buf.Len() != 0 {
		t.Errorf("Expected no output for empty table, got %q", buf.String())
	}
}
