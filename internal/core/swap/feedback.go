// Copyright (c) 2026 Tomeswap. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package swap

import (
	"github.com/taibuivan/tomeswap/internal/platform/validate"
	"github.com/taibuivan/tomeswap/pkg/uuid"
)

// # Feedback Enums

// LengthOpinion rates how the book's length felt to the reader.
type LengthOpinion string

const (
	LengthTooShort  LengthOpinion = "too_short"
	LengthJustRight LengthOpinion = "just_right"
	LengthTooLong   LengthOpinion = "too_long"
)

// ConditionOpinion rates the received copy against its listing.
type ConditionOpinion string

const (
	ConditionWorse       ConditionOpinion = "worse"
	ConditionAsDescribed ConditionOpinion = "as_described"
	ConditionBetter      ConditionOpinion = "better"
)

// CommunicationOpinion rates the counterpart's responsiveness.
type CommunicationOpinion string

const (
	CommunicationPoor    CommunicationOpinion = "poor"
	CommunicationOkay    CommunicationOpinion = "okay"
	CommunicationPerfect CommunicationOpinion = "perfect"
)

// # Feedback Entity

// Feedback is one participant's post-completion rating of the exchange.
// At most one per SubSwap.
type Feedback struct {
	ID            string               `json:"id"` // UUIDv7
	SubSwapID     string               `json:"subswap_id"`
	UserID        string               `json:"user_id"`
	Stars         int                  `json:"stars"`
	Recommend     bool                 `json:"recommend"`
	Length        LengthOpinion        `json:"length"`
	Condition     ConditionOpinion     `json:"condition"`
	Communication CommunicationOpinion `json:"communication"`
}

/*
NewFeedback validates and builds a rating.

Parameters:
  - subSwapID, userID: string (Rated side and the rating participant)
  - stars: int (1 to 5)
  - recommend: bool
  - length, condition, communication: opinion enums

Returns:
  - *Feedback: The rating
  - error: Validation failures
*/
func NewFeedback(subSwapID, userID string, stars int, recommend bool, length LengthOpinion, condition ConditionOpinion, communication CommunicationOpinion) (*Feedback, error) {
	validator := &validate.Validator{}
	validator.Range("stars", stars, 1, 5)
	validator.OneOf("length", string(length),
		string(LengthTooShort), string(LengthJustRight), string(LengthTooLong))
	validator.OneOf("condition", string(condition),
		string(ConditionWorse), string(ConditionAsDescribed), string(ConditionBetter))
	validator.OneOf("communication", string(communication),
		string(CommunicationPoor), string(CommunicationOkay), string(CommunicationPerfect))

	if err := validator.Err(); err != nil {
		return nil, err
	}

	return &Feedback{
		ID:            uuid.New(),
		SubSwapID:     subSwapID,
		UserID:        userID,
		Stars:         stars,
		Recommend:     recommend,
		Length:        length,
		Condition:     condition,
		Communication: communication,
	}, nil
}
