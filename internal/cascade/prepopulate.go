package cascade

import (
	"context"
	"fmt"

	"admissions-intake/internal/catalog"
	"admissions-intake/internal/models"
)

// Prefill carries the form values and resolved identifiers derived from an
// existing application's detail record.
type Prefill struct {
	Values         map[string]interface{}
	ZoneID         interface{}
	CampusID       interface{}
	ProID          interface{}
	DgmEmpID       interface{}
	StatusID       interface{}
	PendingDgmName string
	Missing        []string // fields whose label could not be resolved yet
}

// prefillFieldNames is every form field owned by the pre-population contract,
// in clearing order.
var prefillFieldNames = []string{
	"zoneName", "campusName", "proName", "dgmName", "status", "reason",
	"applicationNo", "zoneId", "campusId", "proId", "dgmEmpId", "statusId",
}

// ApplyApplicationDetail resolves an application's labels back to option
// identifiers and triggers the cascades those identifiers imply. Must only be
// called once the initial options are loaded. Labels whose categories have
// not been fetched yet resolve to nil and are reported in Missing; the DGM
// name is additionally kept pending so it can be re-resolved once its
// zone-dependent catalog arrives.
func (r *Resolver) ApplyApplicationDetail(ctx context.Context, detail *models.ApplicationDetail) (*Prefill, error) {
	if !r.OptionsLoaded() {
		return nil, fmt.Errorf("initial options not loaded")
	}

	editable := catalog.Editable(detail.Status)

	prefill := &Prefill{
		Values: map[string]interface{}{
			"zoneName":      detail.ZoneName,
			"campusName":    detail.CampusName,
			"proName":       detail.ProName,
			"dgmName":       detail.DgmEmpName,
			"status":        string(editable),
			"reason":        detail.Reason,
			"applicationNo": detail.ApplicationNo,
		},
		PendingDgmName: detail.DgmEmpName,
	}

	resolve := func(category models.CategoryKey, label, field string) interface{} {
		if label == "" {
			return nil
		}
		id, diag := r.catalog.FindIdentifier(category, label)
		if diag != nil {
			prefill.Missing = append(prefill.Missing, field)
			return nil
		}
		return id
	}

	prefill.ZoneID = resolve(models.CategoryZoneName, detail.ZoneName, "zoneId")
	prefill.CampusID = resolve(models.CategoryCampusName, detail.CampusName, "campusId")
	prefill.ProID = resolve(models.CategoryProName, detail.ProName, "proId")
	prefill.DgmEmpID = resolve(models.CategoryDgmName, detail.DgmEmpName, "dgmEmpId")
	prefill.StatusID = resolve(models.CategoryStatus, string(editable), "statusId")

	prefill.Values["zoneId"] = orEmpty(prefill.ZoneID)
	prefill.Values["campusId"] = orEmpty(prefill.CampusID)
	prefill.Values["proId"] = orEmpty(prefill.ProID)
	prefill.Values["dgmEmpId"] = orEmpty(prefill.DgmEmpID)
	prefill.Values["statusId"] = orEmpty(prefill.StatusID)

	// A resolved zone repopulates its dependent campus and DGM lists; a
	// resolved campus repopulates its PRO list.
	if prefill.ZoneID != nil {
		r.OnUpstreamChange(ctx, string(models.CategoryZoneName), identifierString(prefill.ZoneID))
	}
	if prefill.CampusID != nil {
		r.OnUpstreamChange(ctx, string(models.CategoryCampusName), identifierString(prefill.CampusID))
	}

	return prefill, nil
}

// ClearApplication resets every pre-population field and all cascade-derived
// state to empty in one atomic step, returning the cleared field values.
func (r *Resolver) ClearApplication() map[string]interface{} {
	r.Reset()

	cleared := make(map[string]interface{}, len(prefillFieldNames))
	for _, name := range prefillFieldNames {
		cleared[name] = ""
	}
	return cleared
}

func orEmpty(v interface{}) interface{} {
	if v == nil {
		return ""
	}
	return v
}

func identifierString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return fmt.Sprintf("%.0f", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
