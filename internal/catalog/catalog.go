// Package catalog holds the per-category option lists and resolves
// human-readable labels back to backend identifiers.
package catalog

import (
	"sync"

	"admissions-intake/internal/common/errors"
	"admissions-intake/internal/common/logger"
	"admissions-intake/internal/common/metrics"
	"admissions-intake/internal/models"
)

// Catalog is the session-scoped store of selectable options per category.
// Writers replace a category's list wholesale; there is no merging.
type Catalog struct {
	mu      sync.RWMutex
	options map[models.CategoryKey]models.OptionList
	logger  logger.Logger
}

func New(log logger.Logger) *Catalog {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Catalog{
		options: make(map[models.CategoryKey]models.OptionList),
		logger:  log,
	}
}

// SetOptions maps raw remote records through the category's field mapping and
// replaces the category's option list. Records with unusable labels get the
// mapping's fallback label; options with unusable identifiers are dropped.
func (c *Catalog) SetOptions(category models.CategoryKey, rawItems []map[string]interface{}) models.OptionList {
	mapped := MapOptions(rawItems, MappingFor(category))
	c.Replace(category, mapped)
	return mapped
}

// SetStatusOptions maps raw status records into the assignable-status option
// list: each raw status is canonicalized and LEFT/CONFIRMED are excluded
// regardless of what the backend supplies.
func (c *Catalog) SetStatusOptions(rawItems []map[string]interface{}) models.OptionList {
	mapping := MappingFor(models.CategoryStatus)
	out := make(models.OptionList, 0, len(rawItems))
	for _, item := range rawItems {
		opt := ExtractOption(item, mapping)
		status := Canonical(opt.Label)
		if !Assignable(status) {
			continue
		}
		opt.Label = string(status)
		if opt.Usable() {
			out = append(out, opt)
		}
	}
	c.Replace(models.CategoryStatus, out)
	return out
}

// Replace installs a pre-built option list for a category.
func (c *Catalog) Replace(category models.CategoryKey, opts models.OptionList) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.options[category] = opts
}

// Clear empties a category's option list.
func (c *Catalog) Clear(category models.CategoryKey) {
	c.Replace(category, models.OptionList{})
}

// Reset drops every category at once.
func (c *Catalog) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.options = make(map[models.CategoryKey]models.OptionList)
}

// Options returns the current option list for a category.
func (c *Catalog) Options(category models.CategoryKey) models.OptionList {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.options[category]
}

// FindIdentifier resolves a label to its backend identifier by exact match
// after normalization, first match winning on duplicates. A miss is not an
// error: it returns nil plus a diagnostic record, and the caller surfaces it
// as a missing-field condition.
func (c *Catalog) FindIdentifier(category models.CategoryKey, label string) (interface{}, *errors.StandardError) {
	c.mu.RLock()
	opts := c.options[category]
	c.mu.RUnlock()

	if len(opts) == 0 || label == "" {
		diag := errors.NewLookupNotFoundError(string(category), label, Normalize(label), opts.Labels())
		c.logger.Warn("No valid label or options for lookup", map[string]interface{}{
			"category": category,
			"label":    label,
			"options":  len(opts),
		})
		metrics.LookupMisses.WithLabelValues(string(category)).Inc()
		return nil, diag
	}

	normalized := Normalize(label)
	for _, opt := range opts {
		if Normalize(opt.Label) == normalized {
			return opt.Identifier, nil
		}
	}

	diag := errors.NewLookupNotFoundError(string(category), label, normalized, opts.Labels())
	c.logger.Warn("No exact match for label", map[string]interface{}{
		"category":        category,
		"label":           label,
		"normalized":      normalized,
		"availableLabels": opts.Labels(),
	})
	metrics.LookupMisses.WithLabelValues(string(category)).Inc()
	return nil, diag
}
