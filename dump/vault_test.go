package dump

import (
	"bytes"
	"testing"

	"github.com/nickyhof/ShowcaseDB/core"
)

var testIdentity = core.Identity{Name: "Backup Bot", Email: "backups@example.com"}

func setupVault(t *testing.T, mode string) *Vault {
	t.Helper()

	var vault *Vault
	var err error
	switch mode {
	case "memory":
		vault, err = NewMemoryVault()
	case "file":
		vault, err = NewFileVault(t.TempDir())
	default:
		t.Fatalf("Unknown vault mode %s", mode)
	}
	if err != nil {
		t.Fatalf("Failed to create %s vault: %v", mode, err)
	}
	return vault
}

func TestVaultSaveAndRetrieve(t *testing.T) {
	for _, mode := range []string{"memory", "file"} {
		t.Run(mode, func(t *testing.T) {
			vault := setupVault(t, mode)

			data := []byte("-- dump contents\nSELECT 1;\n")
			rev, err := vault.Save("backup.sql", data, testIdentity, "First backup")
			if err != nil {
				t.Fatalf("Failed to save: %v", err)
			}
			if rev.Id == "" {
				t.Error("Expected a commit id")
			}
			if rev.Author != "Backup Bot <backups@example.com>" {
				t.Errorf("Unexpected author: %s", rev.Author)
			}

			got, err := vault.Retrieve("backup.sql")
			if err != nil {
				t.Fatalf("Failed to retrieve: %v", err)
			}
			if !bytes.Equal(got, data) {
				t.Errorf("Retrieved data differs: %q", got)
			}
		})
	}
}

func TestVaultLatest(t *testing.T) {
	vault := setupVault(t, "memory")

	if latest := vault.Latest(); latest.Id != "" {
		t.Errorf("Expected zero revision before any save, got %+v", latest)
	}

	rev, err := vault.Save("backup.sql", []byte("v1"), testIdentity, "Backup")
	if err != nil {
		t.Fatal(err)
	}

	latest := vault.Latest()
	if latest.Id != rev.Id {
		t.Errorf("Expected latest %s, got %s", rev.Id, latest.Id)
	}
}

func TestVaultHistory(t *testing.T) {
	vault := setupVault(t, "memory")

	first, err := vault.Save("backup.sql", []byte("v1"), testIdentity, "First")
	if err != nil {
		t.Fatal(err)
	}
	second, err := vault.Save("backup.sql", []byte("v2"), testIdentity, "Second")
	if err != nil {
		t.Fatal(err)
	}

	history, err := vault.History()
	if err != nil {
		t.Fatalf("Failed to read history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("Expected 2 revisions, got %d", len(history))
	}
	// Newest first
	if history[0].Id != second.Id || history[1].Id != first.Id {
		t.Errorf("Unexpected order: %v", history)
	}
}

func TestVaultSnapshotAndRecover(t *testing.T) {
	for _, mode := range []string{"memory", "file"} {
		t.Run(mode, func(t *testing.T) {
			vault := setupVault(t, mode)

			if _, err := vault.Save("backup.sql", []byte("good state"), testIdentity, "Known good"); err != nil {
				t.Fatal(err)
			}
			if err := vault.Snapshot("stable"); err != nil {
				t.Fatalf("Failed to snapshot: %v", err)
			}

			if _, err := vault.Save("backup.sql", []byte("bad state"), testIdentity, "Regression"); err != nil {
				t.Fatal(err)
			}

			if err := vault.Recover("stable"); err != nil {
				t.Fatalf("Failed to recover: %v", err)
			}

			got, err := vault.Retrieve("backup.sql")
			if err != nil {
				t.Fatal(err)
			}
			if string(got) != "good state" {
				t.Errorf("Expected snapshot contents, got %q", got)
			}
		})
	}
}

func TestVaultRecoverUnknownSnapshot(t *testing.T) {
	vault := setupVault(t, "memory")

	if _, err := vault.Save("backup.sql", []byte("x"), testIdentity, "Backup"); err != nil {
		t.Fatal(err)
	}
	if err := vault.Recover("missing"); err == nil {
		t.Error("Expected error for unknown snapshot")
	}
}

func TestVaultSnapshotWithoutCommits(t *testing.T) {
	vault := setupVault(t, "memory")

	if err := vault.Snapshot("empty"); err == nil {
		t.Error("Expected error snapshotting an empty vault")
	}
}

func TestVaultNotInitialized(t *testing.T) {
	var vault *Vault

	if vault.IsInitialized() {
		t.Error("Expected nil vault to report uninitialized")
	}
	if _, err := vault.Save("x", nil, testIdentity, "m"); err != ErrVaultNotInitialized {
		t.Errorf("Expected ErrVaultNotInitialized, got %v", err)
	}
	if latest := vault.Latest(); latest.Id != "" {
		t.Errorf("Expected zero revision from uninitialized vault, got %+v", latest)
	}
}

func TestFileVaultReopens(t *testing.T) {
	dir := t.TempDir()

	vault, err := NewFileVault(dir)
	if err != nil {
		t.Fatalf("Failed to create vault: %v", err)
	}
	rev, err := vault.Save("backup.sql", []byte("persisted"), testIdentity, "Backup")
	if err != nil {
		t.Fatal(err)
	}

	reopened, err := NewFileVault(dir)
	if err != nil {
		t.Fatalf("Failed to reopen vault: %v", err)
	}

	if latest := reopened.Latest(); latest.Id != rev.Id {
		t.Errorf("Expected latest %s after reopen, got %s", rev.Id, latest.Id)
	}
	got, err := reopened.Retrieve("backup.sql")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "persisted" {
		t.Errorf("Expected persisted contents, got %q", got)
	}
}
