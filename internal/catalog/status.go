package catalog

import "strings"

// CanonicalStatus is one fixed enumerated application state.
type CanonicalStatus string

const (
	StatusAvailable CanonicalStatus = "AVAILABLE"
	StatusDamaged   CanonicalStatus = "DAMAGED"
	StatusUnsold    CanonicalStatus = "UNSOLD"
	StatusConfirmed CanonicalStatus = "CONFIRMED"
	StatusLeft      CanonicalStatus = "LEFT"
	StatusUnknown   CanonicalStatus = "UNKNOWN"
)

// reverseStatusMap folds known backend spellings and synonyms into the
// canonical set. Raw strings that normalize identically map identically.
var reverseStatusMap = map[string]CanonicalStatus{
	"damaged":       StatusDamaged,
	"broken":        StatusDamaged,
	"withpro":       StatusAvailable,
	"with pro":      StatusAvailable,
	"with_pro":      StatusAvailable,
	"available":     StatusAvailable,
	"unsold":        StatusUnsold,
	"not sold":      StatusUnsold,
	"notsold":       StatusUnsold,
	"un sold":       StatusUnsold,
	"not confirmed": StatusUnsold,
	"approved":      StatusConfirmed,
	"confirmed":     StatusConfirmed,
	"left":          StatusLeft,
}

// Canonical maps an arbitrary backend status string to its canonical value.
// Unknown non-empty values fall back to the upper-cased raw string; empty
// input maps to UNKNOWN.
func Canonical(raw string) CanonicalStatus {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	if lowered == "" {
		return StatusUnknown
	}
	if mapped, ok := reverseStatusMap[lowered]; ok {
		return mapped
	}
	return CanonicalStatus(strings.ToUpper(lowered))
}

// Editable maps a backend status for the editable status field. Records in
// "left" or "confirmed" state are presented to the user as available for
// resale; everything else maps canonically.
func Editable(raw string) CanonicalStatus {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	if lowered == "left" || lowered == "confirmed" {
		return StatusAvailable
	}
	return Canonical(raw)
}

// Assignable reports whether a canonical status may be offered as a target
// status in the assignable-status dropdown. LEFT and CONFIRMED may never be
// selected by a user.
func Assignable(status CanonicalStatus) bool {
	return status != StatusLeft && status != StatusConfirmed
}
