// Package cascade keeps dependent option categories consistent with upstream
// selections. The resolver owns all shared option state; only its own
// completion handlers mutate it.
package cascade

import (
	"context"
	"fmt"
	"sync"

	"admissions-intake/internal/catalog"
	"admissions-intake/internal/common/errors"
	"admissions-intake/internal/common/logger"
	"admissions-intake/internal/common/metrics"
	"admissions-intake/internal/lookup"
	"admissions-intake/internal/models"
)

// upstreamNoun maps dependency-edge upstream keys to the words used in
// user-facing advisory messages.
var upstreamNoun = map[string]string{
	string(models.CategoryZoneName):   "zone",
	string(models.CategoryCampusName): "campus",
	"branch":                          "campus",
	"joiningClass":                    "class",
}

var downstreamNoun = map[models.CategoryKey]string{
	models.CategoryCampusName:  "campuses",
	models.CategoryDgmName:     "DGM employees",
	models.CategoryProName:     "PRO employees",
	models.CategoryClass:       "classes",
	models.CategoryOrientation: "orientations",
}

type Resolver struct {
	catalog *catalog.Catalog
	svc     lookup.Service
	logger  logger.Logger

	mu            sync.Mutex
	edges         map[string][]Edge
	loading       map[models.CategoryKey]bool
	currentKey    map[models.CategoryKey]string // upstream identifier each category was last fetched for
	optionsLoaded bool
	message       string // latest advisory or error text, empty when clear

	inflight sync.WaitGroup
}

type ResolverDependencies struct {
	Catalog *catalog.Catalog
	Service lookup.Service
	Logger  logger.Logger
	Edges   []Edge // defaults to DefaultEdges(Service)
}

func NewResolver(deps ResolverDependencies) (*Resolver, error) {
	if deps.Catalog == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	if deps.Service == nil {
		return nil, fmt.Errorf("lookup service is required")
	}
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	edges := deps.Edges
	if edges == nil {
		edges = DefaultEdges(deps.Service)
	}
	if err := ValidateEdges(edges); err != nil {
		return nil, err
	}

	byUpstream := make(map[string][]Edge)
	for _, e := range edges {
		byUpstream[e.Upstream] = append(byUpstream[e.Upstream], e)
	}

	return &Resolver{
		catalog:    deps.Catalog,
		svc:        deps.Service,
		logger:     log,
		edges:      byUpstream,
		loading:    make(map[models.CategoryKey]bool),
		currentKey: make(map[models.CategoryKey]string),
	}, nil
}

// LoadInitialOptions fetches the independent categories (zones, statuses) in
// parallel and joins both before the dependent pipeline is allowed to start.
func (r *Resolver) LoadInitialOptions(ctx context.Context) error {
	var wg sync.WaitGroup
	var zoneErr, statusErr error
	var zones, statuses []map[string]interface{}

	wg.Add(2)
	go func() {
		defer wg.Done()
		zones, zoneErr = r.svc.GetZones(ctx)
	}()
	go func() {
		defer wg.Done()
		statuses, statusErr = r.svc.GetStatuses(ctx)
	}()
	wg.Wait()

	if zoneErr != nil || statusErr != nil {
		err := zoneErr
		if err == nil {
			err = statusErr
		}
		r.mu.Lock()
		r.message = "Failed to load initial data. Please refresh the page."
		r.mu.Unlock()
		r.logger.Error("Initial options fetch failed", map[string]interface{}{
			"error": err.Error(),
		})
		return errors.NewFetchFailedError("initial options", err)
	}

	r.catalog.SetOptions(models.CategoryZoneName, zones)
	r.catalog.SetStatusOptions(statuses)

	r.mu.Lock()
	r.optionsLoaded = true
	r.message = ""
	r.mu.Unlock()

	r.logger.Info("Initial options loaded", map[string]interface{}{
		"zones":    len(zones),
		"statuses": len(statuses),
	})
	return nil
}

// LoadSaleCatalogs fetches the independent sale-form catalogs fan-out. Each
// call fails in isolation: a failing catalog yields an empty option list, not
// a failed form.
func (r *Resolver) LoadSaleCatalogs(ctx context.Context) {
	calls := []struct {
		category models.CategoryKey
		fetch    func(context.Context) ([]map[string]interface{}, error)
	}{
		{models.CategoryQuota, r.svc.GetQuotas},
		{models.CategoryAdmissionReferredBy, r.svc.GetAdmissionReferredBy},
		{models.CategoryAdmissionType, r.svc.GetAdmissionTypes},
		{models.CategoryGender, r.svc.GetGenders},
		{models.CategoryAuthorizedBy, r.svc.GetAuthorizedBy},
	}

	var wg sync.WaitGroup
	for _, call := range calls {
		wg.Add(1)
		go func(category models.CategoryKey, fetch func(context.Context) ([]map[string]interface{}, error)) {
			defer wg.Done()
			items, err := fetch(ctx)
			if err != nil {
				r.logger.Warn("Sale catalog fetch failed, continuing with empty list", map[string]interface{}{
					"category": category,
					"error":    err.Error(),
				})
				r.catalog.Clear(category)
				return
			}
			r.catalog.SetOptions(category, items)
		}(call.category, call.fetch)
	}
	wg.Wait()
}

// OptionsLoaded reports whether the initial fetch completed successfully.
func (r *Resolver) OptionsLoaded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.optionsLoaded
}

// Loading reports the per-category loading flag.
func (r *Resolver) Loading(category models.CategoryKey) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loading[category]
}

// Message returns the latest advisory or error text, empty when clear.
func (r *Resolver) Message() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.message
}

// OnUpstreamChange walks every dependency edge rooted at the changed field.
// An empty upstream identifier clears each downstream category immediately;
// otherwise the downstream fetch is issued keyed by the identifier. Only the
// result of the most recent fetch per category is ever applied: a result
// arriving for a superseded upstream value is discarded on arrival.
func (r *Resolver) OnUpstreamChange(ctx context.Context, upstream, upstreamID string) {
	edges := r.edges[upstream]
	if len(edges) == 0 {
		return
	}

	r.mu.Lock()
	if !r.optionsLoaded {
		r.mu.Unlock()
		r.logger.Debug("Cascade suppressed before initial options load", map[string]interface{}{
			"upstream": upstream,
		})
		return
	}

	for _, edge := range edges {
		if upstreamID == "" {
			r.currentKey[edge.Downstream] = ""
			r.loading[edge.Downstream] = false
			r.catalog.Clear(edge.Downstream)
			continue
		}

		r.currentKey[edge.Downstream] = upstreamID
		r.loading[edge.Downstream] = true
		r.inflight.Add(1)
		go r.runFetch(ctx, edge, upstreamID)
	}
	r.mu.Unlock()
}

func (r *Resolver) runFetch(ctx context.Context, edge Edge, upstreamID string) {
	defer r.inflight.Done()

	items, err := edge.Fetch(ctx, upstreamID)

	r.mu.Lock()
	defer r.mu.Unlock()

	// Last write wins by upstream value, not completion time.
	if r.currentKey[edge.Downstream] != upstreamID {
		metrics.StaleResultsDiscarded.WithLabelValues(string(edge.Downstream)).Inc()
		r.logger.Debug("Discarding stale cascade result", map[string]interface{}{
			"category":   edge.Downstream,
			"fetchedFor": upstreamID,
			"currentFor": r.currentKey[edge.Downstream],
		})
		return
	}

	r.loading[edge.Downstream] = false

	if err != nil {
		r.catalog.Clear(edge.Downstream)
		r.message = errors.NewFetchFailedError(downstreamNoun[edge.Downstream], err).Message
		r.logger.Error("Cascade fetch failed", map[string]interface{}{
			"category":   edge.Downstream,
			"upstreamId": upstreamID,
			"error":      err.Error(),
		})
		return
	}

	mapped := r.catalog.SetOptions(edge.Downstream, items)
	if len(mapped) == 0 {
		r.message = errors.NewNoResultsAdvisory(downstreamNoun[edge.Downstream], upstreamNoun[edge.Upstream]).Message
		return
	}
	r.message = ""
}

// Wait blocks until every in-flight cascade fetch has completed or been
// discarded. Used by tests and graceful shutdown.
func (r *Resolver) Wait() {
	r.inflight.Wait()
}

// Reset clears every cascade-derived category, loading flag and message in
// one atomic step. Initial categories (zones, statuses) stay loaded.
func (r *Resolver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, edges := range r.edges {
		for _, edge := range edges {
			r.currentKey[edge.Downstream] = ""
			r.loading[edge.Downstream] = false
			r.catalog.Clear(edge.Downstream)
		}
	}
	r.message = ""
}
