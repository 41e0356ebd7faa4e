// Copyright (c) 2026 Tomeswap. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package swap

import (
	"time"

	"github.com/taibuivan/tomeswap/internal/platform/constants"
	"github.com/taibuivan/tomeswap/internal/platform/validate"
	"github.com/taibuivan/tomeswap/pkg/uuid"
)

// # Issue Entity

// Issue is an open dispute raised by a participant against the swap.
// At most one active issue per SubSwap.
type Issue struct {
	ID          string    `json:"id"` // UUIDv7
	SubSwapID   string    `json:"subswap_id"`
	UserID      string    `json:"user_id"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

/*
NewIssue validates and builds a dispute.

Parameters:
  - subSwapID, userID: string (Disputed side and the raising participant)
  - description: string (1 to 1000 characters)

Returns:
  - *Issue: The dispute, timestamped now
  - error: Validation failures
*/
func NewIssue(subSwapID, userID, description string) (*Issue, error) {
	validator := &validate.Validator{}
	validator.Required("description", description).
		MaxLen("description", description, constants.MaxIssueDescriptionLen)

	if err := validator.Err(); err != nil {
		return nil, err
	}

	return &Issue{
		ID:          uuid.New(),
		SubSwapID:   subSwapID,
		UserID:      userID,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}, nil
}
