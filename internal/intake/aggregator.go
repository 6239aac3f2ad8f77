package intake

import (
	"sync"
	"time"

	"admissions-intake/internal/common/errors"
	"admissions-intake/internal/common/logger"
	"admissions-intake/internal/models"
)

// Aggregator holds one record per form section and flattens them into the
// aggregated submission record on demand.
type Aggregator struct {
	mu          sync.RWMutex
	sections    map[models.SectionKey]*models.SectionRecord
	formVersion string
	logger      logger.Logger
	now         func() time.Time
}

func NewAggregator(formVersion string, log logger.Logger) *Aggregator {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Aggregator{
		sections:    make(map[models.SectionKey]*models.SectionRecord),
		formVersion: formVersion,
		logger:      log,
		now:         time.Now,
	}
}

// UpdateSection stores a section's final values, replacing any prior record
// for that section wholesale. There is no partial merge.
func (a *Aggregator) UpdateSection(section models.SectionKey, values map[string]interface{}) {
	copied := make(map[string]interface{}, len(values))
	for k, v := range values {
		copied[k] = v
	}

	a.mu.Lock()
	a.sections[section] = &models.SectionRecord{
		Values: copied,
		Status: models.SectionSuccess,
	}
	a.mu.Unlock()

	a.logger.Debug("Section stored", map[string]interface{}{
		"section": section,
		"fields":  len(copied),
	})
}

// SetSectionStatus updates one section's lifecycle status without touching
// its values.
func (a *Aggregator) SetSectionStatus(section models.SectionKey, status models.SectionStatus) {
	a.mu.Lock()
	defer a.mu.Unlock()
	rec, ok := a.sections[section]
	if !ok {
		rec = &models.SectionRecord{Values: map[string]interface{}{}}
		a.sections[section] = rec
	}
	rec.Status = status
}

// Section returns a copy of one section's record, or nil when the section has
// not been stored yet.
func (a *Aggregator) Section(section models.SectionKey) *models.SectionRecord {
	a.mu.RLock()
	defer a.mu.RUnlock()
	rec, ok := a.sections[section]
	if !ok {
		return nil
	}
	values := make(map[string]interface{}, len(rec.Values))
	for k, v := range rec.Values {
		values[k] = v
	}
	return &models.SectionRecord{Values: values, Status: rec.Status}
}

// CollectAll flattens every stored section in canonical order into one
// aggregated record. Later sections overwrite earlier ones on key collision.
// Submission metadata is appended last. The result is derived fresh on every
// call; callers never mutate stored section state through it.
func (a *Aggregator) CollectAll() models.AggregatedRecord {
	a.mu.RLock()
	defer a.mu.RUnlock()

	record := make(models.AggregatedRecord)
	for _, section := range models.SectionOrder {
		rec, ok := a.sections[section]
		if !ok {
			continue
		}
		for k, v := range rec.Values {
			record[k] = v
		}
	}

	record["submissionTimestamp"] = a.now().UTC().Format(time.RFC3339)
	record["formVersion"] = a.formVersion
	return record
}

// ValidateAll enforces the required-field contract. Missing sections are
// reported first; only when every required section is present are the
// collected fields checked. Validation is all-or-nothing.
func (a *Aggregator) ValidateAll(requiredSections []models.SectionKey, requiredFields []string) *errors.StandardError {
	a.mu.RLock()
	var missingSections []string
	for _, section := range requiredSections {
		if _, ok := a.sections[section]; !ok {
			missingSections = append(missingSections, string(section))
		}
	}
	a.mu.RUnlock()

	if len(missingSections) > 0 {
		a.logger.Warn("Submission blocked: sections missing", map[string]interface{}{
			"missingSections": missingSections,
		})
		return errors.NewMissingSectionsError(missingSections)
	}

	record := a.CollectAll()
	var missingFields []string
	for _, field := range requiredFields {
		if isAbsent(record[field]) {
			missingFields = append(missingFields, field)
		}
	}

	if len(missingFields) > 0 {
		a.logger.Warn("Submission blocked: fields missing", map[string]interface{}{
			"missingFields": missingFields,
		})
		return errors.NewMissingFieldsError(missingFields)
	}
	return nil
}

// Reset drops every stored section.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sections = make(map[models.SectionKey]*models.SectionRecord)
}

// isAbsent treats missing, nil, empty-string and zero-number values as not
// provided.
func isAbsent(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case float64:
		return val == 0
	case int:
		return val == 0
	case bool:
		return !val
	default:
		return false
	}
}
