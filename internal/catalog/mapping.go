package catalog

import (
	"strings"

	"admissions-intake/internal/models"
)

// FieldMapping lists the identifier and label key names a catalog's raw
// records may carry. The first non-empty match wins, replacing the per-field
// fallback chains the backend responses would otherwise force on every call
// site.
type FieldMapping struct {
	IDKeys    []string
	LabelKeys []string
	Fallback  string
}

// CategoryMappings is the declarative per-category field-mapping table.
var CategoryMappings = map[models.CategoryKey]FieldMapping{
	models.CategoryZoneName: {
		IDKeys:    []string{"zoneId", "id"},
		LabelKeys: []string{"zoneName", "name"},
		Fallback:  "Unknown Zone",
	},
	models.CategoryCampusName: {
		IDKeys:    []string{"id", "campusId"},
		LabelKeys: []string{"name", "campusName"},
		Fallback:  "Unknown Campus",
	},
	models.CategoryProName: {
		IDKeys:    []string{"empId", "emp_id", "id"},
		LabelKeys: []string{"empName", "emp_name", "name", "employeeName"},
		Fallback:  "Unknown PRO",
	},
	models.CategoryDgmName: {
		IDKeys:    []string{"empId", "emp_id", "id"},
		LabelKeys: []string{"empName", "emp_name", "name", "employeeName"},
		Fallback:  "Unknown DGM",
	},
	models.CategoryStatus: {
		IDKeys:    []string{"status_id", "id"},
		LabelKeys: []string{"status", "status_type", "name"},
		Fallback:  "Unknown",
	},
	models.CategoryQuota: {
		IDKeys:    []string{"quota_id", "id"},
		LabelKeys: []string{"quota_name", "name", "quotaName", "title"},
		Fallback:  "Unknown",
	},
	models.CategoryAdmissionReferredBy: {
		IDKeys:    []string{"emp_id", "id"},
		LabelKeys: []string{"emp_name", "name", "employeeName", "title"},
		Fallback:  "Unknown",
	},
	models.CategoryAdmissionType: {
		IDKeys:    []string{"adms_type_id", "id"},
		LabelKeys: []string{"adms_type_name", "name", "typeName", "title"},
		Fallback:  "Unknown",
	},
	models.CategoryGender: {
		IDKeys:    []string{"gender_id", "id"},
		LabelKeys: []string{"gender_name", "name", "genderName", "title"},
		Fallback:  "Unknown",
	},
	models.CategoryAuthorizedBy: {
		IDKeys:    []string{"emp_id", "id"},
		LabelKeys: []string{"emp_name", "name", "employeeName", "title"},
		Fallback:  "Unknown",
	},
	models.CategoryClass: {
		IDKeys:    []string{"classId", "class_id", "id"},
		LabelKeys: []string{"className", "class_name", "name"},
		Fallback:  "Unknown Class",
	},
	models.CategoryOrientation: {
		IDKeys:    []string{"orientationId", "orientation_id", "id"},
		LabelKeys: []string{"orientationName", "orientation_name", "name"},
		Fallback:  "Unknown Orientation",
	},
}

// MappingFor returns the field mapping for a category, falling back to the
// generic id/name pair for categories the table does not know.
func MappingFor(category models.CategoryKey) FieldMapping {
	if m, ok := CategoryMappings[category]; ok {
		return m
	}
	return FieldMapping{IDKeys: []string{"id"}, LabelKeys: []string{"name"}, Fallback: "Unknown"}
}

// ExtractOption maps one raw record through a field mapping. A record whose
// label keys are all empty gets the fallback label; an unusable identifier
// leaves Identifier nil so the option is dropped downstream.
func ExtractOption(item map[string]interface{}, mapping FieldMapping) models.Option {
	opt := models.Option{}

	for _, key := range mapping.LabelKeys {
		if v, ok := item[key]; ok {
			if s, ok := v.(string); ok {
				if trimmed := strings.TrimSpace(s); trimmed != "" {
					opt.Label = trimmed
					break
				}
			}
		}
	}
	if opt.Label == "" {
		opt.Label = mapping.Fallback
	}

	for _, key := range mapping.IDKeys {
		if v, ok := item[key]; ok && usableIdentifier(v) {
			opt.Identifier = v
			break
		}
	}

	return opt
}

// MapOptions maps raw remote records to a fresh option list, dropping any
// option whose label or identifier is unusable.
func MapOptions(items []map[string]interface{}, mapping FieldMapping) models.OptionList {
	out := make(models.OptionList, 0, len(items))
	for _, item := range items {
		opt := ExtractOption(item, mapping)
		if opt.Usable() {
			out = append(out, opt)
		}
	}
	return out
}

func usableIdentifier(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(val) != ""
	case float64:
		return val != 0
	case int:
		return val != 0
	case int64:
		return val != 0
	default:
		return true
	}
}
