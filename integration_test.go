package ShowcaseDB

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/nickyhof/ShowcaseDB/auth"
	"github.com/nickyhof/ShowcaseDB/core"
	"github.com/nickyhof/ShowcaseDB/dump"
	"github.com/nickyhof/ShowcaseDB/op"
	"github.com/nickyhof/ShowcaseDB/store"
)

// TestFunc is the signature for test functions that work with any store
type TestFunc func(t *testing.T, instance *Instance)

// runWithBothStores runs a test function with both memory and file databases
func runWithBothStores(t *testing.T, testFunc TestFunc) {
	t.Run("Memory", func(t *testing.T) {
		st, err := store.NewMemoryStore()
		if err != nil {
			t.Fatalf("Failed to open memory store: %v", err)
		}
		defer st.Close()

		if err := st.Setup(context.Background()); err != nil {
			t.Fatalf("Failed to set up schema: %v", err)
		}
		testFunc(t, Open(st))
	})

	t.Run("File", func(t *testing.T) {
		st, err := store.NewFileStore(filepath.Join(t.TempDir(), "showcase.db"))
		if err != nil {
			t.Fatalf("Failed to open file store: %v", err)
		}
		defer st.Close()

		if err := st.Setup(context.Background()); err != nil {
			t.Fatalf("Failed to set up schema: %v", err)
		}
		testFunc(t, Open(st))
	})
}

// TestIntegrationWorkflow runs the full showcase cycle: seed, place an
// order, report, dump, restore, document.
func TestIntegrationWorkflow(t *testing.T) {
	runWithBothStores(t, func(t *testing.T, instance *Instance) {
		ctx := context.Background()

		if err := instance.Store.ModifySchema(ctx); err != nil {
			t.Fatalf("Failed to modify schema: %v", err)
		}
		if err := instance.Seeder(42).Generate(ctx, 30, 40); err != nil {
			t.Fatalf("Failed to seed: %v", err)
		}

		// Account lifecycle
		tokens := &auth.TokenIssuer{Secret: "integration-secret", Issuer: "showcase"}
		users := instance.Users(tokens)
		userID, err := users.Create(ctx, "workflow_user", "workflow@example.com", "pw123")
		if err != nil {
			t.Fatalf("Failed to create user: %v", err)
		}
		token, err := users.Authenticate(ctx, "workflow_user", "pw123")
		if err != nil {
			t.Fatalf("Failed to authenticate: %v", err)
		}
		if _, err := tokens.Validate(token); err != nil {
			t.Fatalf("Token validation failed: %v", err)
		}

		// Order transaction
		var productID int64
		err = instance.Store.DB().QueryRowContext(ctx,
			`SELECT id FROM products WHERE stock >= 2 ORDER BY id LIMIT 1`).Scan(&productID)
		if err != nil {
			t.Fatalf("Failed to pick product: %v", err)
		}
		order, err := instance.Orders().Place(ctx, userID, []core.LineItem{
			{ProductID: productID, Quantity: 2},
		})
		if err != nil {
			t.Fatalf("Failed to place order: %v", err)
		}

		// Reports see the new order
		stats, err := instance.Reports().SalesStatistics(ctx)
		if err != nil {
			t.Fatalf("Failed to compute statistics: %v", err)
		}
		if stats.OrderCount != 201 {
			t.Errorf("Expected 201 orders, got %d", stats.OrderCount)
		}

		// Dump, mutate, restore, verify
		var buf bytes.Buffer
		dumper := instance.Dumper()
		if err := dumper.Dump(ctx, &buf); err != nil {
			t.Fatalf("Failed to dump: %v", err)
		}
		if err := instance.Orders().Purge(ctx, order.ID); err != nil {
			t.Fatalf("Failed to purge order: %v", err)
		}
		if _, err := dumper.Restore(ctx, bytes.NewReader(buf.Bytes())); err != nil {
			t.Fatalf("Failed to restore: %v", err)
		}
		restored, err := instance.Reports().SalesStatistics(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if restored.OrderCount != 201 {
			t.Errorf("Expected 201 orders after restore, got %d", restored.OrderCount)
		}
		if !restored.TotalRevenue.Equal(stats.TotalRevenue) {
			t.Errorf("Revenue changed across restore: %s vs %s",
				stats.TotalRevenue, restored.TotalRevenue)
		}

		// Documentation reflects the live catalog
		doc, err := instance.Documentation(ctx)
		if err != nil {
			t.Fatalf("Failed to collect documentation: %v", err)
		}
		if len(doc.Tables) < len(store.TableNames) {
			t.Errorf("Expected at least %d tables documented, got %d",
				len(store.TableNames), len(doc.Tables))
		}
	})
}

// TestIntegrationVaultedBackup stores a dump in the vault, tags it, and
// recovers it after a bad backup lands on top.
func TestIntegrationVaultedBackup(t *testing.T) {
	st, err := store.NewMemoryStore()
	if err != nil {
		t.Fatalf("Failed to open memory store: %v", err)
	}
	defer st.Close()
	ctx := context.Background()

	if err := st.Setup(ctx); err != nil {
		t.Fatalf("Failed to set up schema: %v", err)
	}

	instance := Open(st)
	if err := instance.Seeder(7).Generate(ctx, 30, 20); err != nil {
		t.Fatalf("Failed to seed: %v", err)
	}

	var buf bytes.Buffer
	if err := instance.Dumper().Dump(ctx, &buf); err != nil {
		t.Fatalf("Failed to dump: %v", err)
	}

	vault, err := dump.NewMemoryVault()
	if err != nil {
		t.Fatalf("Failed to create vault: %v", err)
	}
	identity := core.Identity{Name: "Backup Bot", Email: "backups@example.com"}

	if _, err := vault.Save("nightly.sql", buf.Bytes(), identity, "Nightly backup"); err != nil {
		t.Fatalf("Failed to save backup: %v", err)
	}
	if err := vault.Snapshot("known-good"); err != nil {
		t.Fatalf("Failed to snapshot: %v", err)
	}

	// A corrupted backup overwrites the good one
	if _, err := vault.Save("nightly.sql", []byte("garbage"), identity, "Bad backup"); err != nil {
		t.Fatal(err)
	}
	if err := vault.Recover("known-good"); err != nil {
		t.Fatalf("Failed to recover snapshot: %v", err)
	}

	saved, err := vault.Retrieve("nightly.sql")
	if err != nil {
		t.Fatalf("Failed to retrieve backup: %v", err)
	}
	if _, err := instance.Dumper().Restore(ctx, bytes.NewReader(saved)); err != nil {
		t.Fatalf("Failed to restore recovered backup: %v", err)
	}

	stats, err := instance.Reports().SalesStatistics(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.OrderCount != 200 {
		t.Errorf("Expected 200 orders after vault round trip, got %d", stats.OrderCount)
	}
}

// TestIntegrationRollbackLeavesNoTrace verifies a failed order never
// surfaces in reports or stock levels.
func TestIntegrationRollbackLeavesNoTrace(t *testing.T) {
	runWithBothStores(t, func(t *testing.T, instance *Instance) {
		ctx := context.Background()

		users := instance.Users(nil)
		userID, err := users.Create(ctx, "rollback_user", "rb@example.com", "pw")
		if err != nil {
			t.Fatal(err)
		}

		var productID int64
		err = instance.Store.DB().QueryRowContext(ctx,
			`INSERT INTO products (name, category, price, stock) VALUES ('rare', 'Books', 50.0, 1) RETURNING id`).Scan(&productID)
		if err != nil {
			t.Fatal(err)
		}

		_, err = instance.Orders().Place(ctx, userID, []core.LineItem{
			{ProductID: productID, Quantity: 10},
		})
		if !op.IsValidation(err) {
			t.Fatalf("Expected validation failure, got %v", err)
		}

		stats, err := instance.Reports().SalesStatistics(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if stats.OrderCount != 0 {
			t.Errorf("Expected no orders after rollback, got %d", stats.OrderCount)
		}

		var stock int
		err = instance.Store.DB().QueryRowContext(ctx,
			`SELECT stock FROM products WHERE id = ?`, productID).Scan(&stock)
		if err != nil {
			t.Fatal(err)
		}
		if stock != 1 {
			t.Errorf("Expected stock 1 after rollback, got %d", stock)
		}
	})
}
