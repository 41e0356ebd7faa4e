// Copyright (c) 2026 Tomeswap. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the user identity and session management layer.

It handles member registration, credential verification, and the refresh
token lifecycle. Accounts and session audit rows live in Postgres; live
refresh tokens live in Redis with a TTL so revocation is immediate.
*/
package auth

import (
	"time"

	"github.com/taibuivan/tomeswap/internal/platform/sec"
)

// # Domain Entities

// User represents a registered member of the Tomeswap platform.
type User struct {
	ID           string       `json:"id"`
	Username     string       `json:"username"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"` // Explicitly omitted from JSON for security.
	DisplayName  string       `json:"display_name"`
	Role         sec.UserRole `json:"role"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// Session is the audit record of one refresh-token session.
//
// The live token itself is a Redis key; this row survives revocation
// for after-the-fact review.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	TokenHash string    `json:"-"` // Hashed value of the refresh token. Omitted for security.
	UserAgent string    `json:"user_agent"`
	IPAddress string    `json:"ip_address"`
	ExpiresAt time.Time `json:"expires_at"`
	IsRevoked bool      `json:"is_revoked"`
	CreatedAt time.Time `json:"created_at"`
}

// # Field Identifiers

const (
	FieldUsername    = "username"
	FieldEmail       = "email"
	FieldPassword    = "password"
	FieldDisplayName = "display_name"
	FieldLogin       = "login"
	FieldAccessToken = "access_token"
	FieldExpiresIn   = "expires_in"
	FieldUser        = "user"
)

// RefreshTokenLength is the entropy, in bytes, of a refresh token.
const RefreshTokenLength = 32
