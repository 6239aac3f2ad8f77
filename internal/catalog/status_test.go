package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonical(t *testing.T) {
	tests := []struct {
		raw      string
		expected CanonicalStatus
	}{
		{"damaged", StatusDamaged},
		{"broken", StatusDamaged},
		{"with pro", StatusAvailable},
		{"with_pro", StatusAvailable},
		{"withpro", StatusAvailable},
		{"available", StatusAvailable},
		{"unsold", StatusUnsold},
		{"not sold", StatusUnsold},
		{"un sold", StatusUnsold},
		{"notsold", StatusUnsold},
		{"not confirmed", StatusUnsold},
		{"approved", StatusConfirmed},
		{"confirmed", StatusConfirmed},
		{"left", StatusLeft},
		{"", StatusUnknown},
		{"   ", StatusUnknown},
		{"DAMAGED", StatusDamaged},
		{"Something Else", CanonicalStatus("SOMETHING ELSE")},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.expected, Canonical(tt.raw))
		})
	}
}

func TestCanonical_SameNormalizationSameValue(t *testing.T) {
	// Two raw strings that normalize identically must map identically.
	assert.Equal(t, Canonical("Not Sold"), Canonical("not sold"))
	assert.Equal(t, Canonical("LEFT"), Canonical("left"))
}

func TestEditable(t *testing.T) {
	tests := []struct {
		raw      string
		expected CanonicalStatus
	}{
		{"left", StatusAvailable},
		{"confirmed", StatusAvailable},
		{"approved", StatusConfirmed},
		{"with pro", StatusAvailable},
		{"with_pro", StatusAvailable},
		{"broken", StatusDamaged},
		{"not sold", StatusUnsold},
		{"un sold", StatusUnsold},
		{"", StatusUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.expected, Editable(tt.raw))
		})
	}
}

func TestAssignable(t *testing.T) {
	assert.False(t, Assignable(StatusLeft))
	assert.False(t, Assignable(StatusConfirmed))
	assert.True(t, Assignable(StatusAvailable))
	assert.True(t, Assignable(StatusDamaged))
	assert.True(t, Assignable(StatusUnsold))
	assert.True(t, Assignable(StatusUnknown))
}
