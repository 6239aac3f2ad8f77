package models

// CategoryKey names one dropdown option category.
type CategoryKey string

const (
	CategoryZoneName            CategoryKey = "zoneName"
	CategoryCampusName          CategoryKey = "campusName"
	CategoryProName             CategoryKey = "proName"
	CategoryDgmName             CategoryKey = "dgmName"
	CategoryStatus              CategoryKey = "status"
	CategoryQuota               CategoryKey = "quotaOptions"
	CategoryAdmissionReferredBy CategoryKey = "admissionReferredByOptions"
	CategoryAdmissionType       CategoryKey = "admissionTypeOptions"
	CategoryGender              CategoryKey = "genderOptions"
	CategoryAuthorizedBy        CategoryKey = "authorizedByOptions"
	CategoryClass               CategoryKey = "classOptions"
	CategoryOrientation         CategoryKey = "orientationOptions"
)

// Option is one selectable (label, identifier) pair. Selectable options
// always have a non-empty label and a non-nil identifier; anything else is
// filtered out before display.
type Option struct {
	Label      string      `json:"label"`
	Identifier interface{} `json:"value"`
}

// Usable reports whether the option may be shown for selection.
func (o Option) Usable() bool {
	return o.Label != "" && o.Identifier != nil
}

// OptionList is an ordered option sequence. Order is insertion order from the
// source fetch and matters only for display.
type OptionList []Option

// Labels returns the display labels in list order.
func (l OptionList) Labels() []string {
	out := make([]string, len(l))
	for i, o := range l {
		out[i] = o.Label
	}
	return out
}
