package op

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nickyhof/ShowcaseDB/auth"
	"github.com/nickyhof/ShowcaseDB/core"
	"github.com/nickyhof/ShowcaseDB/store"
)

// ErrBadCredentials is returned for unknown users, wrong passwords,
// and non-active accounts alike.
var ErrBadCredentials = errors.New("invalid credentials")

// Users runs account operations against a store.
type Users struct {
	Store  *store.Store
	Tokens *auth.TokenIssuer // nil disables Authenticate
}

func NewUsers(st *store.Store, tokens *auth.TokenIssuer) *Users {
	return &Users{Store: st, Tokens: tokens}
}

// Create inserts an active user with a hashed credential. The plaintext
// password is never stored.
func (u *Users) Create(ctx context.Context, username, email, password string) (int64, error) {
	var id int64
	err := u.Store.DB().QueryRowContext(ctx,
		`INSERT INTO users (username, email, password_hash) VALUES (?, ?, ?) RETURNING id`,
		username, email, auth.HashPassword(password)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create user %s: %w", username, err)
	}
	return id, nil
}

// UpdateStatus changes a user's lifecycle status and, in the same
// transaction, appends the audit entry the audit_user_changes hook
// demands.
func (u *Users) UpdateStatus(ctx context.Context, userID int64, status core.UserStatus) error {
	tx, err := u.Store.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin status update: %w", err)
	}
	defer tx.Rollback()

	var oldStatus string
	err = tx.QueryRowContext(ctx, `SELECT status FROM users WHERE id = ?`, userID).Scan(&oldStatus)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("user %d not found", userID)
	}
	if err != nil {
		return fmt.Errorf("look up user %d: %w", userID, err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET status = ? WHERE id = ?`, string(status), userID); err != nil {
		return fmt.Errorf("update user %d status: %w", userID, err)
	}

	if err := store.AuditUserChange(ctx, tx, userID, core.UserStatus(oldStatus), status); err != nil {
		return err
	}

	return tx.Commit()
}

// Get fetches a single user.
func (u *Users) Get(ctx context.Context, userID int64) (*core.User, error) {
	var user core.User
	var status string
	err := u.Store.DB().QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, status, created_at FROM users WHERE id = ?`,
		userID).Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &status, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %d not found", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", userID, err)
	}
	user.Status = core.UserStatus(status)
	return &user, nil
}

// Authenticate verifies a password against the stored hash and mints a
// session token for the account. Only active accounts authenticate;
// every failure mode reports ErrBadCredentials so callers can't probe
// which part failed.
func (u *Users) Authenticate(ctx context.Context, username, password string) (string, error) {
	if u.Tokens == nil {
		return "", errors.New("no token issuer configured")
	}

	var email, storedHash, status string
	err := u.Store.DB().QueryRowContext(ctx,
		`SELECT email, password_hash, status FROM users WHERE username = ?`,
		username).Scan(&email, &storedHash, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrBadCredentials
	}
	if err != nil {
		return "", fmt.Errorf("look up user %s: %w", username, err)
	}

	if !auth.VerifyPassword(password, storedHash) {
		return "", ErrBadCredentials
	}
	if core.UserStatus(status) != core.UserActive {
		return "", ErrBadCredentials
	}

	return u.Tokens.Issue(core.Identity{Name: username, Email: email})
}

// RecordLogin stamps the last_login column added by ModifySchema.
func (u *Users) RecordLogin(ctx context.Context, userID int64) error {
	_, err := u.Store.DB().ExecContext(ctx,
		`UPDATE users SET last_login = current_timestamp WHERE id = ?`, userID)
	if err != nil {
		return fmt.Errorf("record login for user %d: %w", userID, err)
	}
	return nil
}
