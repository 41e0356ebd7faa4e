// Copyright (c) 2026 Tomeswap. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package book manages the user-book catalog: the physical copies members
list for swapping.

It handles the lifecycle of a listed copy, from creation and cover upload
to its participation in swaps and eventual retirement.

# Core Responsibility

  - Listing: Defines the [UserBook] entity and its metadata.
  - Ownership: Every copy belongs to exactly one member; only the owner mutates it.
  - Page Bound: PageCount is the hard upper bound for swap reading progress.

The swap domain consumes this package through a narrow read port; it never
mutates catalog data.
*/
package book

import "time"

// # Book Enums

// Condition describes the physical state of a listed copy.
type Condition string

const (
	ConditionPoor       Condition = "poor"
	ConditionAcceptable Condition = "acceptable"
	ConditionGood       Condition = "good"
	ConditionLikeNew    Condition = "like_new"
)

// Status tracks whether a copy is free to be offered in a new swap.
type Status string

const (
	// StatusAvailable means the copy can be offered or requested.
	StatusAvailable Status = "available"

	// StatusSwapping means the copy is committed to an active swap.
	StatusSwapping Status = "swapping"
)

// # Core Entities

// UserBook represents one physical copy listed by a member.
type UserBook struct {
	ID           string     `json:"id"` // UUIDv7
	OwnerID      string     `json:"owner_id"`
	Title        string     `json:"title"`
	Author       string     `json:"author"`
	Slug         string     `json:"slug"`
	PageCount    int        `json:"page_count"`
	Condition    Condition  `json:"condition"`
	CoverURL     *string    `json:"cover_url,omitempty"`
	ThumbnailURL *string    `json:"thumbnail_url,omitempty"`
	Status       Status     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"-"`
}

// IsOwnedBy reports whether the copy belongs to the given user.
func (userBook *UserBook) IsOwnedBy(userID string) bool {
	return userBook.OwnerID == userID
}

// # Search & Filtering

// Filter holds parameters for searching and listing copies.
type Filter struct {
	Query   string  `json:"q"`
	OwnerID string  `json:"owner_id"`
	Status  *Status `json:"status"`
}

// # Field Identifiers

const (
	FieldTitle     = "title"
	FieldAuthor    = "author"
	FieldPageCount = "page_count"
	FieldCondition = "condition"
	FieldCoverURL  = "cover_url"
)
