package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/nickyhof/ShowcaseDB/core"
)

// HashPassword returns the hex-encoded SHA-256 digest of a password.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// VerifyPassword compares a candidate password against a stored hash
// in constant time.
func VerifyPassword(password, storedHash string) bool {
	candidate := HashPassword(password)
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(storedHash)) == 1
}

// TokenIssuer mints and validates HS256 session tokens.
type TokenIssuer struct {
	// Secret is the shared secret for HS256 signing and validation.
	Secret string

	// Issuer is the "iss" claim stamped on issued tokens and required
	// during validation when non-empty.
	Issuer string

	// TTL is the token lifetime. Zero means one hour.
	TTL time.Duration
}

const defaultTTL = time.Hour

// Issue returns a signed token carrying the identity's name and email
// claims.
func (ti *TokenIssuer) Issue(identity core.Identity) (string, error) {
	if ti.Secret == "" {
		return "", errors.New("no token secret configured")
	}

	ttl := ti.TTL
	if ttl == 0 {
		ttl = defaultTTL
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"name":  identity.Name,
		"email": identity.Email,
		"iat":   jwt.NewNumericDate(now),
		"exp":   jwt.NewNumericDate(now.Add(ttl)),
	}
	if ti.Issuer != "" {
		claims["iss"] = ti.Issuer
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(ti.Secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate parses a token, enforcing the signing method, expiry, and
// configured issuer, and extracts the identity claims.
func (ti *TokenIssuer) Validate(tokenString string) (core.Identity, error) {
	if ti.Secret == "" {
		return core.Identity{}, errors.New("no token secret configured")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(ti.Secret), nil
	}, jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))
	if err != nil {
		return core.Identity{}, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return core.Identity{}, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return core.Identity{}, errors.New("invalid token claims")
	}

	if ti.Issuer != "" {
		issuer, _ := claims.GetIssuer()
		if issuer != ti.Issuer {
			return core.Identity{}, fmt.Errorf("invalid issuer: expected %s, got %s", ti.Issuer, issuer)
		}
	}

	name, _ := claims["name"].(string)
	email, _ := claims["email"].(string)
	if name == "" && email == "" {
		return core.Identity{}, errors.New("token missing identity claims (name or email)")
	}

	return core.Identity{Name: name, Email: email}, nil
}
