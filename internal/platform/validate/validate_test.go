// Copyright (c) 2026 Tomeswap. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/tomeswap/internal/platform/apperr"
	"github.com/taibuivan/tomeswap/internal/platform/validate"
)

/*
TestValidator_Required tests the mandatory field validation logic.
*/
func TestValidator_Required(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		value    string
		hasError bool
	}{
		{"valid_string", "title", "Tomeswap", false},
		{"empty_string", "title", "", true},
		{"whitespace_only", "title", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Required(tt.field, tt.value)

			if tt.hasError {
				assert.True(t, v.HasErrors())
				err := v.Err()
				require.NotNil(t, err)

				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, "VALIDATION_ERROR", ae.Code)
				assert.Equal(t, tt.field, ae.Details[0].Field)
			} else {
				assert.False(t, v.HasErrors())
				assert.Nil(t, v.Err())
			}
		})
	}
}

/*
TestValidator_Range covers the inclusive integer range rule used for stars
and reading progress.
*/
func TestValidator_Range(t *testing.T) {
	tests := []struct {
		name    string
		value   int
		min     int
		max     int
		isValid bool
	}{
		{"lower_bound", 1, 1, 5, true},
		{"upper_bound", 5, 1, 5, true},
		{"below", 0, 1, 5, false},
		{"above", 6, 1, 5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Range("stars", tt.value, tt.min, tt.max)

			assert.Equal(t, !tt.isValid, v.HasErrors())
		})
	}
}

/*
TestValidator_Coordinates checks the geographic bounds rules used by meetups.
*/
func TestValidator_Coordinates(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lon     float64
		isValid bool
	}{
		{"origin", 0, 0, true},
		{"extremes", 90, -180, true},
		{"lat_too_high", 90.01, 0, false},
		{"lat_too_low", -91, 0, false},
		{"lon_too_high", 0, 180.5, false},
		{"lon_too_low", 0, -181, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Latitude("latitude", tt.lat).Longitude("longitude", tt.lon)

			assert.Equal(t, !tt.isValid, v.HasErrors())
		})
	}
}

/*
TestValidator_OneOf checks the enum membership rule.
*/
func TestValidator_OneOf(t *testing.T) {
	v := &validate.Validator{}
	v.OneOf("condition", "as_described", "worse", "as_described", "better")
	assert.False(t, v.HasErrors())

	v2 := &validate.Validator{}
	v2.OneOf("condition", "pristine", "worse", "as_described", "better")
	assert.True(t, v2.HasErrors())
}

/*
TestValidator_ChainCollectsAllErrors verifies that a chain reports every
failed rule, not just the first one.
*/
func TestValidator_ChainCollectsAllErrors(t *testing.T) {
	v := &validate.Validator{}
	v.Required("description", "").
		Range("stars", 9, 1, 5).
		Latitude("latitude", 120)

	err := v.Err()
	require.NotNil(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Len(t, ae.Details, 3)
}
