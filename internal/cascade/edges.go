package cascade

import (
	"context"
	"fmt"

	"admissions-intake/internal/lookup"
	"admissions-intake/internal/models"
)

// FetchFunc loads a downstream category's raw records keyed by the upstream
// identifier.
type FetchFunc func(ctx context.Context, upstreamID string) ([]map[string]interface{}, error)

// Edge is one directed dependency rule: on change of Upstream, refetch
// Downstream keyed by the new upstream identifier. The edge set forms a DAG;
// a downstream list is valid only while its upstream identifier is unchanged
// since the last fetch.
type Edge struct {
	Upstream   string
	Downstream models.CategoryKey
	Fetch      FetchFunc
}

// DefaultEdges builds the dependency table for the admission forms.
func DefaultEdges(svc lookup.Service) []Edge {
	return []Edge{
		{
			Upstream:   string(models.CategoryZoneName),
			Downstream: models.CategoryCampusName,
			Fetch:      svc.GetCampusesByZone,
		},
		{
			Upstream:   string(models.CategoryZoneName),
			Downstream: models.CategoryDgmName,
			Fetch:      svc.GetDgmEmployeesByZone,
		},
		{
			Upstream:   string(models.CategoryCampusName),
			Downstream: models.CategoryProName,
			Fetch:      svc.GetProEmployeesByCampus,
		},
		{
			Upstream:   "branch",
			Downstream: models.CategoryClass,
			Fetch:      svc.GetClassesByCampus,
		},
		{
			Upstream:   "joiningClass",
			Downstream: models.CategoryOrientation,
			Fetch:      svc.GetOrientationsByClass,
		},
	}
}

// ValidateEdges rejects edge sets with cycles. Each downstream category may
// itself appear as an upstream, so the whole table must stay a DAG.
func ValidateEdges(edges []Edge) error {
	adjacent := make(map[string][]string)
	for _, e := range edges {
		adjacent[e.Upstream] = append(adjacent[e.Upstream], string(e.Downstream))
	}

	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int)

	var visit func(node string) error
	visit = func(node string) error {
		switch state[node] {
		case visiting:
			return fmt.Errorf("dependency cycle through %q", node)
		case done:
			return nil
		}
		state[node] = visiting
		for _, next := range adjacent[node] {
			if err := visit(next); err != nil {
				return err
			}
		}
		state[node] = done
		return nil
	}

	for upstream := range adjacent {
		if err := visit(upstream); err != nil {
			return err
		}
	}
	return nil
}
