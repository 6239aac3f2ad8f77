package cascade

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admissions-intake/internal/catalog"
	"admissions-intake/internal/common/logger"
	"admissions-intake/internal/models"
)

// ==========================
// Test Helpers
// ==========================

// stubService implements lookup.Service with overridable hooks. Unset hooks
// return empty lists.
type stubService struct {
	zones      func(ctx context.Context) ([]map[string]interface{}, error)
	statuses   func(ctx context.Context) ([]map[string]interface{}, error)
	campuses   func(ctx context.Context, zoneID string) ([]map[string]interface{}, error)
	dgms       func(ctx context.Context, zoneID string) ([]map[string]interface{}, error)
	pros       func(ctx context.Context, campusID string) ([]map[string]interface{}, error)
	classes    func(ctx context.Context, campusID string) ([]map[string]interface{}, error)
	orients    func(ctx context.Context, classID string) ([]map[string]interface{}, error)
	appDetails func(ctx context.Context, applicationNo string) (*models.ApplicationDetail, error)
}

func empty(ctx context.Context) ([]map[string]interface{}, error) {
	return []map[string]interface{}{}, nil
}

func emptyKeyed(ctx context.Context, _ string) ([]map[string]interface{}, error) {
	return []map[string]interface{}{}, nil
}

func (s *stubService) GetZones(ctx context.Context) ([]map[string]interface{}, error) {
	if s.zones != nil {
		return s.zones(ctx)
	}
	return empty(ctx)
}

func (s *stubService) GetStatuses(ctx context.Context) ([]map[string]interface{}, error) {
	if s.statuses != nil {
		return s.statuses(ctx)
	}
	return empty(ctx)
}

func (s *stubService) GetCampusesByZone(ctx context.Context, zoneID string) ([]map[string]interface{}, error) {
	if s.campuses != nil {
		return s.campuses(ctx, zoneID)
	}
	return emptyKeyed(ctx, zoneID)
}

func (s *stubService) GetDgmEmployeesByZone(ctx context.Context, zoneID string) ([]map[string]interface{}, error) {
	if s.dgms != nil {
		return s.dgms(ctx, zoneID)
	}
	return emptyKeyed(ctx, zoneID)
}

func (s *stubService) GetProEmployeesByCampus(ctx context.Context, campusID string) ([]map[string]interface{}, error) {
	if s.pros != nil {
		return s.pros(ctx, campusID)
	}
	return emptyKeyed(ctx, campusID)
}

func (s *stubService) GetClassesByCampus(ctx context.Context, campusID string) ([]map[string]interface{}, error) {
	if s.classes != nil {
		return s.classes(ctx, campusID)
	}
	return emptyKeyed(ctx, campusID)
}

func (s *stubService) GetOrientationsByClass(ctx context.Context, classID string) ([]map[string]interface{}, error) {
	if s.orients != nil {
		return s.orients(ctx, classID)
	}
	return emptyKeyed(ctx, classID)
}

func (s *stubService) GetQuotas(ctx context.Context) ([]map[string]interface{}, error) {
	return empty(ctx)
}

func (s *stubService) GetAdmissionTypes(ctx context.Context) ([]map[string]interface{}, error) {
	return empty(ctx)
}

func (s *stubService) GetAdmissionReferredBy(ctx context.Context) ([]map[string]interface{}, error) {
	return empty(ctx)
}

func (s *stubService) GetGenders(ctx context.Context) ([]map[string]interface{}, error) {
	return empty(ctx)
}

func (s *stubService) GetAuthorizedBy(ctx context.Context) ([]map[string]interface{}, error) {
	return empty(ctx)
}

func (s *stubService) GetApplicationDetails(ctx context.Context, applicationNo string) (*models.ApplicationDetail, error) {
	if s.appDetails != nil {
		return s.appDetails(ctx, applicationNo)
	}
	return nil, fmt.Errorf("application %s not found", applicationNo)
}

func defaultZones(ctx context.Context) ([]map[string]interface{}, error) {
	return []map[string]interface{}{
		{"zoneId": float64(1), "zoneName": "North"},
		{"zoneId": float64(2), "zoneName": "South"},
	}, nil
}

func defaultStatuses(ctx context.Context) ([]map[string]interface{}, error) {
	return []map[string]interface{}{
		{"status_id": float64(1), "status": "with pro"},
		{"status_id": float64(2), "status": "Damaged"},
		{"status_id": float64(3), "status": "unsold"},
		{"status_id": float64(4), "status": "left"},
		{"status_id": float64(5), "status": "confirmed"},
	}, nil
}

func newTestResolver(t *testing.T, svc *stubService) (*Resolver, *catalog.Catalog) {
	t.Helper()
	cat := catalog.New(logger.NewTestLogger(t))
	r, err := NewResolver(ResolverDependencies{
		Catalog: cat,
		Service: svc,
		Logger:  logger.NewTestLogger(t),
	})
	require.NoError(t, err)
	return r, cat
}

func loadedResolver(t *testing.T, svc *stubService) (*Resolver, *catalog.Catalog) {
	t.Helper()
	if svc.zones == nil {
		svc.zones = defaultZones
	}
	if svc.statuses == nil {
		svc.statuses = defaultStatuses
	}
	r, cat := newTestResolver(t, svc)
	require.NoError(t, r.LoadInitialOptions(context.Background()))
	return r, cat
}

// ==========================
// Initial Load
// ==========================

func TestLoadInitialOptions_PopulatesZonesAndAssignableStatuses(t *testing.T) {
	r, cat := loadedResolver(t, &stubService{})

	assert.True(t, r.OptionsLoaded())
	assert.Empty(t, r.Message())
	assert.Equal(t, []string{"North", "South"}, cat.Options(models.CategoryZoneName).Labels())

	statusLabels := cat.Options(models.CategoryStatus).Labels()
	assert.ElementsMatch(t, []string{"AVAILABLE", "DAMAGED", "UNSOLD"}, statusLabels)
	assert.NotContains(t, statusLabels, "LEFT")
	assert.NotContains(t, statusLabels, "CONFIRMED")
}

func TestLoadInitialOptions_FailureBlocksPipeline(t *testing.T) {
	svc := &stubService{
		zones: func(ctx context.Context) ([]map[string]interface{}, error) {
			return nil, fmt.Errorf("connection refused")
		},
		statuses: defaultStatuses,
	}
	r, cat := newTestResolver(t, svc)

	err := r.LoadInitialOptions(context.Background())
	require.Error(t, err)
	assert.False(t, r.OptionsLoaded())
	assert.Equal(t, "Failed to load initial data. Please refresh the page.", r.Message())

	// Dependent fetches stay suppressed until the initial load succeeds.
	r.OnUpstreamChange(context.Background(), string(models.CategoryZoneName), "1")
	r.Wait()
	assert.Empty(t, cat.Options(models.CategoryCampusName))
}

// ==========================
// Cascade Behavior
// ==========================

func TestOnUpstreamChange_FetchesDownstream(t *testing.T) {
	svc := &stubService{
		campuses: func(ctx context.Context, zoneID string) ([]map[string]interface{}, error) {
			assert.Equal(t, "1", zoneID)
			return []map[string]interface{}{
				{"id": float64(10), "name": "Hyderabad Central"},
				{"id": float64(11), "name": "Vizag East"},
			}, nil
		},
		dgms: func(ctx context.Context, zoneID string) ([]map[string]interface{}, error) {
			return []map[string]interface{}{
				{"empId": float64(7), "empName": "K. Prasad"},
			}, nil
		},
	}
	r, cat := loadedResolver(t, svc)

	r.OnUpstreamChange(context.Background(), string(models.CategoryZoneName), "1")
	r.Wait()

	assert.Equal(t, []string{"Hyderabad Central", "Vizag East"}, cat.Options(models.CategoryCampusName).Labels())
	assert.Equal(t, []string{"K. Prasad"}, cat.Options(models.CategoryDgmName).Labels())
	assert.False(t, r.Loading(models.CategoryCampusName))
	assert.Empty(t, r.Message())
}

func TestOnUpstreamChange_EmptyUpstreamClearsDownstream(t *testing.T) {
	svc := &stubService{
		campuses: func(ctx context.Context, zoneID string) ([]map[string]interface{}, error) {
			return []map[string]interface{}{{"id": float64(10), "name": "Hyderabad Central"}}, nil
		},
	}
	r, cat := loadedResolver(t, svc)

	r.OnUpstreamChange(context.Background(), string(models.CategoryZoneName), "1")
	r.Wait()
	require.NotEmpty(t, cat.Options(models.CategoryCampusName))

	// Clearing the zone empties its dependents without any fetch.
	r.OnUpstreamChange(context.Background(), string(models.CategoryZoneName), "")
	assert.Empty(t, cat.Options(models.CategoryCampusName))
	assert.Empty(t, cat.Options(models.CategoryDgmName))
	assert.False(t, r.Loading(models.CategoryCampusName))
}

func TestOnUpstreamChange_StaleResultDiscarded(t *testing.T) {
	releaseA := make(chan struct{})
	fetchingA := make(chan struct{})

	svc := &stubService{
		campuses: func(ctx context.Context, zoneID string) ([]map[string]interface{}, error) {
			if zoneID == "1" {
				close(fetchingA)
				<-releaseA // hold zone 1's response until zone 2 has applied
				return []map[string]interface{}{{"id": float64(10), "name": "Zone One Campus"}}, nil
			}
			return []map[string]interface{}{{"id": float64(20), "name": "Zone Two Campus"}}, nil
		},
		dgms: emptyKeyed,
	}
	r, cat := loadedResolver(t, svc)
	ctx := context.Background()

	r.OnUpstreamChange(ctx, string(models.CategoryZoneName), "1")
	<-fetchingA
	r.OnUpstreamChange(ctx, string(models.CategoryZoneName), "2")

	close(releaseA)
	r.Wait()

	// Zone 1's late result must never overwrite zone 2's list.
	assert.Equal(t, []string{"Zone Two Campus"}, cat.Options(models.CategoryCampusName).Labels())
}

func TestRunFetch_ZeroOptionsYieldsAdvisory(t *testing.T) {
	r, cat := loadedResolver(t, &stubService{})

	r.OnUpstreamChange(context.Background(), string(models.CategoryCampusName), "10")
	r.Wait()

	assert.Empty(t, cat.Options(models.CategoryProName))
	assert.Equal(t, "No PRO employees found for the selected campus; choose another campus.", r.Message())
}

func TestRunFetch_ErrorClearsDownstream(t *testing.T) {
	svc := &stubService{
		campuses: func(ctx context.Context, zoneID string) ([]map[string]interface{}, error) {
			return []map[string]interface{}{{"id": float64(10), "name": "Hyderabad Central"}}, nil
		},
	}
	r, cat := loadedResolver(t, svc)
	ctx := context.Background()

	r.OnUpstreamChange(ctx, string(models.CategoryZoneName), "1")
	r.Wait()
	require.NotEmpty(t, cat.Options(models.CategoryCampusName))

	svc.campuses = func(ctx context.Context, zoneID string) ([]map[string]interface{}, error) {
		return nil, fmt.Errorf("upstream timeout")
	}
	r.OnUpstreamChange(ctx, string(models.CategoryZoneName), "2")
	r.Wait()

	assert.Empty(t, cat.Options(models.CategoryCampusName))
	assert.NotEmpty(t, r.Message())
}

// ==========================
// Pre-population
// ==========================

func campusAndDgmStub() *stubService {
	return &stubService{
		campuses: func(ctx context.Context, zoneID string) ([]map[string]interface{}, error) {
			return []map[string]interface{}{{"id": float64(10), "name": "Hyderabad Central"}}, nil
		},
		dgms: func(ctx context.Context, zoneID string) ([]map[string]interface{}, error) {
			return []map[string]interface{}{{"empId": float64(7), "empName": "K. Prasad"}}, nil
		},
	}
}

func TestApplyApplicationDetail_ResolvesLabelsAndCascades(t *testing.T) {
	r, cat := loadedResolver(t, campusAndDgmStub())

	// Seed campus options the way a prior zone selection would have.
	r.OnUpstreamChange(context.Background(), string(models.CategoryZoneName), "1")
	r.Wait()

	prefill, err := r.ApplyApplicationDetail(context.Background(), &models.ApplicationDetail{
		ApplicationNo: "2041",
		ZoneName:      "North",
		CampusName:    "Hyderabad Central",
		DgmEmpName:    "K. Prasad",
		Status:        "with pro",
	})
	require.NoError(t, err)
	r.Wait()

	assert.Equal(t, float64(1), prefill.ZoneID)
	assert.Equal(t, float64(10), prefill.CampusID)
	assert.Equal(t, float64(7), prefill.DgmEmpID)
	assert.Equal(t, "AVAILABLE", prefill.Values["status"])
	assert.Empty(t, prefill.Missing)
	assert.NotEmpty(t, cat.Options(models.CategoryCampusName))
}

func TestApplyApplicationDetail_LeftStatusFoldsToAvailable(t *testing.T) {
	r, _ := loadedResolver(t, campusAndDgmStub())

	prefill, err := r.ApplyApplicationDetail(context.Background(), &models.ApplicationDetail{
		ApplicationNo: "1023",
		ZoneName:      "North",
		CampusName:    "Unknown Campus",
		ProName:       "J. Rao",
		DgmEmpName:    "",
		Status:        "left",
		Reason:        "torn cover",
	})
	require.NoError(t, err)
	r.Wait()

	// Raw "left" folds to AVAILABLE for editing, and resolves against the
	// assignable status list.
	assert.Equal(t, "AVAILABLE", prefill.Values["status"])
	assert.Equal(t, float64(1), prefill.StatusID)
	assert.Equal(t, "torn cover", prefill.Values["reason"])

	// The campus label has no match yet and the PRO list is not loaded:
	// both are reported, neither fails the flow.
	assert.Contains(t, prefill.Missing, "campusId")
	assert.Contains(t, prefill.Missing, "proId")
	assert.Equal(t, "", prefill.Values["campusId"])
	assert.Empty(t, prefill.PendingDgmName)
}

func TestApplyApplicationDetail_RequiresInitialLoad(t *testing.T) {
	r, _ := newTestResolver(t, &stubService{})

	_, err := r.ApplyApplicationDetail(context.Background(), &models.ApplicationDetail{ApplicationNo: "1023"})
	require.Error(t, err)
}

func TestClearApplication_ResetsEverything(t *testing.T) {
	r, cat := loadedResolver(t, campusAndDgmStub())
	ctx := context.Background()

	r.OnUpstreamChange(ctx, string(models.CategoryZoneName), "1")
	r.Wait()
	require.NotEmpty(t, cat.Options(models.CategoryCampusName))

	cleared := r.ClearApplication()

	assert.Empty(t, cat.Options(models.CategoryCampusName))
	assert.Empty(t, cat.Options(models.CategoryDgmName))
	assert.Empty(t, r.Message())
	// Initial categories survive the reset.
	assert.NotEmpty(t, cat.Options(models.CategoryZoneName))
	assert.NotEmpty(t, cat.Options(models.CategoryStatus))

	for _, field := range []string{"zoneName", "campusName", "status", "reason", "applicationNo", "statusId"} {
		assert.Equal(t, "", cleared[field])
	}
}

func TestValidateEdges_RejectsCycle(t *testing.T) {
	edges := []Edge{
		{Upstream: "a", Downstream: models.CategoryKey("b"), Fetch: emptyKeyed},
		{Upstream: "b", Downstream: models.CategoryKey("a"), Fetch: emptyKeyed},
	}
	assert.Error(t, ValidateEdges(edges))
}
