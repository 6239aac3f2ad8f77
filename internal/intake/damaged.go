package intake

import (
	"strconv"

	"admissions-intake/internal/catalog"
	"admissions-intake/internal/common/errors"
	"admissions-intake/internal/common/logger"
	"admissions-intake/internal/models"
)

// DamagedSubmission is the backend-shaped payload for the damaged-application
// status update: identifiers and canonical status, not display labels.
type DamagedSubmission struct {
	ApplicationNo string      `json:"applicationNo"`
	StatusID      interface{} `json:"statusId"`
	Status        string      `json:"status"`
	ZoneID        interface{} `json:"zoneId"`
	CampusID      interface{} `json:"campusId"`
	ProID         interface{} `json:"proId"`
	DgmEmpID      interface{} `json:"dgmEmpId"`
	Reason        string      `json:"reason"`
}

// BuildDamagedSubmission converts the edited form labels back into the
// identifiers and canonical status the backend expects. Every identifier the
// backend requires must resolve; absent ones are collected into a single
// missing-identifiers error that blocks submission. The status, zone and
// campus identifiers must additionally be numeric.
func BuildDamagedSubmission(cat *catalog.Catalog, values map[string]interface{}, log logger.Logger) (*DamagedSubmission, *errors.StandardError) {
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	status := catalog.Canonical(stringValue(values["status"]))

	resolve := func(category models.CategoryKey, label string) interface{} {
		id, diag := cat.FindIdentifier(category, label)
		if diag != nil {
			return nil
		}
		return id
	}

	sub := &DamagedSubmission{
		ApplicationNo: stringValue(values["applicationNo"]),
		Status:        string(status),
		StatusID:      resolve(models.CategoryStatus, string(status)),
		ZoneID:        resolve(models.CategoryZoneName, stringValue(values["zoneName"])),
		CampusID:      resolve(models.CategoryCampusName, stringValue(values["campusName"])),
		ProID:         resolve(models.CategoryProName, stringValue(values["proName"])),
		DgmEmpID:      resolve(models.CategoryDgmName, stringValue(values["dgmName"])),
		Reason:        stringValue(values["reason"]),
	}

	var missingIDs []string
	if !isNumeric(sub.StatusID) {
		missingIDs = append(missingIDs, "statusId")
	}
	if !isNumeric(sub.CampusID) {
		missingIDs = append(missingIDs, "campusId")
	}
	if sub.ProID == nil {
		missingIDs = append(missingIDs, "proId")
	}
	if !isNumeric(sub.ZoneID) {
		missingIDs = append(missingIDs, "zoneId")
	}
	if sub.DgmEmpID == nil {
		missingIDs = append(missingIDs, "dgmEmpId")
	}

	if len(missingIDs) > 0 {
		log.Warn("Damaged-status submission blocked: identifiers unresolved", map[string]interface{}{
			"applicationNo": sub.ApplicationNo,
			"missingIds":    missingIDs,
		})
		return nil, errors.NewMissingIdentifiersError(missingIDs)
	}

	return sub, nil
}

func stringValue(v interface{}) string {
	s, _ := v.(string)
	return s
}

// isNumeric accepts numbers and numeric strings; nil and everything else is
// rejected.
func isNumeric(v interface{}) bool {
	switch val := v.(type) {
	case float64, float32, int, int32, int64:
		return true
	case string:
		_, err := strconv.ParseFloat(val, 64)
		return err == nil
	default:
		return false
	}
}
