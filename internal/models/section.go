package models

// SectionKey names one step of the multi-step form.
type SectionKey string

const (
	SectionPersonal    SectionKey = "personalInfo"
	SectionOrientation SectionKey = "orientationInfo"
	SectionAddress     SectionKey = "addressInfo"
	SectionPayment     SectionKey = "paymentInfo"
)

// SectionOrder is the canonical ordering used when flattening sections into
// one aggregated record; later sections overwrite earlier ones on collision.
var SectionOrder = []SectionKey{
	SectionPersonal,
	SectionOrientation,
	SectionAddress,
	SectionPayment,
}

// SectionStatus is the per-section submission lifecycle.
type SectionStatus string

const (
	SectionIdle       SectionStatus = "idle"
	SectionSubmitting SectionStatus = "submitting"
	SectionSuccess    SectionStatus = "success"
	SectionError      SectionStatus = "error"
)

// SectionRecord holds one section's final values. It is replaced wholesale on
// the section's submit/continue action, never partially merged.
type SectionRecord struct {
	Values map[string]interface{} `json:"values"`
	Status SectionStatus          `json:"status"`
}

// AggregatedRecord is the flattened union of all section records plus
// submission metadata. Derived on demand, never mutated in place.
type AggregatedRecord map[string]interface{}
