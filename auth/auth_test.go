package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/nickyhof/ShowcaseDB/core"
)

func TestHashPassword(t *testing.T) {
	hash := HashPassword("secret123")

	if len(hash) != 64 {
		t.Errorf("Expected 64 hex chars, got %d", len(hash))
	}
	if hash != HashPassword("secret123") {
		t.Error("Expected hashing to be deterministic")
	}
	if hash == HashPassword("secret124") {
		t.Error("Expected different passwords to hash differently")
	}
}

func TestVerifyPassword(t *testing.T) {
	hash := HashPassword("correct horse")

	if !VerifyPassword("correct horse", hash) {
		t.Error("Expected matching password to verify")
	}
	if VerifyPassword("wrong horse", hash) {
		t.Error("Expected wrong password to fail")
	}
	if VerifyPassword("correct horse", "") {
		t.Error("Expected empty stored hash to fail")
	}
}

func TestIssueAndValidate(t *testing.T) {
	issuer := &TokenIssuer{Secret: "test-secret", Issuer: "showcase"}
	identity := core.Identity{Name: "alice", Email: "alice@example.com"}

	token, err := issuer.Issue(identity)
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Errorf("Expected a three-part JWT, got %q", token)
	}

	got, err := issuer.Validate(token)
	if err != nil {
		t.Fatalf("Failed to validate token: %v", err)
	}
	if got != identity {
		t.Errorf("Expected identity %+v, got %+v", identity, got)
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	issuer := &TokenIssuer{Secret: "secret-a"}
	token, err := issuer.Issue(core.Identity{Name: "bob", Email: "bob@example.com"})
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}

	other := &TokenIssuer{Secret: "secret-b"}
	if _, err := other.Validate(token); err == nil {
		t.Error("Expected validation to fail with a different secret")
	}
}

func TestValidateRejectsWrongIssuer(t *testing.T) {
	issuer := &TokenIssuer{Secret: "s", Issuer: "service-a"}
	token, err := issuer.Issue(core.Identity{Name: "bob", Email: "bob@example.com"})
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}

	other := &TokenIssuer{Secret: "s", Issuer: "service-b"}
	if _, err := other.Validate(token); err == nil {
		t.Error("Expected validation to fail with a different issuer")
	}
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	issuer := &TokenIssuer{Secret: "s", TTL: -time.Minute}
	token, err := issuer.Issue(core.Identity{Name: "bob", Email: "bob@example.com"})
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}

	if _, err := issuer.Validate(token); err == nil {
		t.Error("Expected validation to fail for an expired token")
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	issuer := &TokenIssuer{Secret: "s"}
	if _, err := issuer.Validate("not.a.token"); err == nil {
		t.Error("Expected validation to fail for garbage input")
	}
}

func TestIssueRequiresSecret(t *testing.T) {
	issuer := &TokenIssuer{}
	if _, err := issuer.Issue(core.Identity{Name: "x"}); err == nil {
		t.Error("Expected issue to fail without a secret")
	}
}
