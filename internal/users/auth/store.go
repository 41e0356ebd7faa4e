// Copyright (c) 2026 Tomeswap. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"time"
)

// # Identity Data Access

// UserRepository defines the data access contract for member accounts.
type UserRepository interface {

	/*
		FindByID retrieves an account by its UUID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *User: Hydrated account
		  - error: apperr.NotFound if missing
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByEmail retrieves an account by its unique email.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *User: Hydrated account
		  - error: apperr.NotFound if missing
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		FindByUsername retrieves an account by its unique username.

		Parameters:
		  - context: context.Context
		  - username: string

		Returns:
		  - *User: Hydrated account
		  - error: apperr.NotFound if missing
	*/
	FindByUsername(context context.Context, username string) (*User, error)

	/*
		Create persists a new account.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: apperr.Conflict on duplicate email or username
	*/
	Create(context context.Context, user *User) error
}

// SessionRepository records session audit rows.
type SessionRepository interface {

	/*
		Create persists a new session audit record.

		Parameters:
		  - context: context.Context
		  - session: *Session

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, session *Session) error

	/*
		Revoke marks a session revoked by its token hash.

		Parameters:
		  - context: context.Context
		  - tokenHash: string

		Returns:
		  - error: Persistence failures
	*/
	Revoke(context context.Context, tokenHash string) error
}

// RefreshTokenStore holds live refresh tokens keyed by digest.
//
// Expiry is enforced by the store's TTL; deleting the key is an
// immediate, global revocation.
type RefreshTokenStore interface {

	/*
		Set binds a token digest to a member for the given TTL.

		Parameters:
		  - context: context.Context
		  - tokenHash, userID: string
		  - ttl: time.Duration

		Returns:
		  - error: Store failures
	*/
	Set(context context.Context, tokenHash, userID string, ttl time.Duration) error

	/*
		Get resolves a token digest to its member.

		Parameters:
		  - context: context.Context
		  - tokenHash: string

		Returns:
		  - string: Member UUID
		  - error: apperr.NotFound if absent or expired
	*/
	Get(context context.Context, tokenHash string) (string, error)

	/*
		Delete revokes a live token.

		Parameters:
		  - context: context.Context
		  - tokenHash: string

		Returns:
		  - error: Store failures
	*/
	Delete(context context.Context, tokenHash string) error
}
