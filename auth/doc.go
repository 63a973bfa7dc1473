// Package auth provides credential hashing and session tokens for
// ShowcaseDB.
//
// Passwords are stored as one-way SHA-256 hashes, never as plaintext.
// Hashing is deterministic: the same password always produces the same
// stored value, and verification re-hashes and compares.
//
// Successful authentication mints an HS256 JWT carrying the user's
// name and email claims:
//
//	issuer := &auth.TokenIssuer{Secret: "shared-secret", Issuer: "showcasedb", TTL: time.Hour}
//	token, err := issuer.Issue(core.Identity{Name: "alice", Email: "alice@example.com"})
//	identity, err := issuer.Validate(token)
package auth
