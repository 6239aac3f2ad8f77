// Package lookup is the client for the remote catalog/lookup service. Every
// fetch returns an ordered sequence of raw records; a category with no data
// yields an empty sequence, not an error.
package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"admissions-intake/internal/common/httpclient"
	"admissions-intake/internal/common/logger"
	"admissions-intake/internal/common/metrics"
	"admissions-intake/internal/models"
)

// Service is the catalog surface consumed by the cascade resolver and the
// session orchestration. Implemented by Client; stubbed in tests.
type Service interface {
	GetZones(ctx context.Context) ([]map[string]interface{}, error)
	GetStatuses(ctx context.Context) ([]map[string]interface{}, error)
	GetCampusesByZone(ctx context.Context, zoneID string) ([]map[string]interface{}, error)
	GetDgmEmployeesByZone(ctx context.Context, zoneID string) ([]map[string]interface{}, error)
	GetProEmployeesByCampus(ctx context.Context, campusID string) ([]map[string]interface{}, error)
	GetClassesByCampus(ctx context.Context, campusID string) ([]map[string]interface{}, error)
	GetOrientationsByClass(ctx context.Context, classID string) ([]map[string]interface{}, error)
	GetQuotas(ctx context.Context) ([]map[string]interface{}, error)
	GetAdmissionTypes(ctx context.Context) ([]map[string]interface{}, error)
	GetAdmissionReferredBy(ctx context.Context) ([]map[string]interface{}, error)
	GetGenders(ctx context.Context) ([]map[string]interface{}, error)
	GetAuthorizedBy(ctx context.Context) ([]map[string]interface{}, error)
	GetApplicationDetails(ctx context.Context, applicationNo string) (*models.ApplicationDetail, error)
}

type Client struct {
	baseURL    string
	httpClient *httpclient.Client
	logger     logger.Logger
	cache      *Cache // nil disables caching
}

type ClientOptions struct {
	BaseURL string
	Timeout time.Duration
	Logger  logger.Logger
	Cache   *Cache
}

func NewClient(opts ClientOptions) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Client{
		baseURL:    opts.BaseURL,
		httpClient: httpclient.NewClient(timeout),
		logger:     log,
		cache:      opts.Cache,
	}
}

// fetchList is the single generic fetch routine behind every category call.
func (c *Client) fetchList(ctx context.Context, category, path string, query url.Values) ([]map[string]interface{}, error) {
	cacheKey := cacheKeyFor(path, query)
	if c.cache != nil {
		if items, ok := c.cache.Get(ctx, cacheKey); ok {
			return items, nil
		}
	}

	start := time.Now()
	body, err := c.getJSON(ctx, path, query)
	metrics.CatalogFetchDuration.WithLabelValues(category).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.CatalogFetchesTotal.WithLabelValues(category, "error").Inc()
		return nil, err
	}
	metrics.CatalogFetchesTotal.WithLabelValues(category, "success").Inc()

	items := []map[string]interface{}{}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &items); err != nil {
			// Some endpoints return a single object instead of an array.
			var single map[string]interface{}
			if err2 := json.Unmarshal(body, &single); err2 != nil {
				return nil, fmt.Errorf("failed to decode %s response: %w", category, err)
			}
			items = []map[string]interface{}{single}
		}
	}

	if c.cache != nil {
		c.cache.Set(ctx, cacheKey, items)
	}
	return items, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog request failed (status %d): %s", resp.StatusCode, string(body))
	}

	return body, nil
}

func cacheKeyFor(path string, query url.Values) string {
	if len(query) == 0 {
		return "catalog:" + path
	}
	return "catalog:" + path + "?" + query.Encode()
}

// --- Independent initial categories ---

func (c *Client) GetZones(ctx context.Context) ([]map[string]interface{}, error) {
	return c.fetchList(ctx, "zones", "/zones", nil)
}

func (c *Client) GetStatuses(ctx context.Context) ([]map[string]interface{}, error) {
	return c.fetchList(ctx, "statuses", "/statuses", nil)
}

// --- Dependent categories, keyed by upstream identifier ---

func (c *Client) GetCampusesByZone(ctx context.Context, zoneID string) ([]map[string]interface{}, error) {
	return c.fetchList(ctx, "campuses", "/campuses", url.Values{"zoneId": {zoneID}})
}

func (c *Client) GetDgmEmployeesByZone(ctx context.Context, zoneID string) ([]map[string]interface{}, error) {
	return c.fetchList(ctx, "dgmEmployees", "/employees/dgm", url.Values{"zoneId": {zoneID}})
}

func (c *Client) GetProEmployeesByCampus(ctx context.Context, campusID string) ([]map[string]interface{}, error) {
	return c.fetchList(ctx, "proEmployees", "/employees/pro", url.Values{"campusId": {campusID}})
}

func (c *Client) GetClassesByCampus(ctx context.Context, campusID string) ([]map[string]interface{}, error) {
	return c.fetchList(ctx, "classes", "/classes", url.Values{"campusId": {campusID}})
}

func (c *Client) GetOrientationsByClass(ctx context.Context, classID string) ([]map[string]interface{}, error) {
	return c.fetchList(ctx, "orientations", "/orientations", url.Values{"classId": {classID}})
}

// --- Sale-form catalogs ---

func (c *Client) GetQuotas(ctx context.Context) ([]map[string]interface{}, error) {
	return c.fetchList(ctx, "quotas", "/student-admissions-sale/quotas", nil)
}

func (c *Client) GetAdmissionTypes(ctx context.Context) ([]map[string]interface{}, error) {
	return c.fetchList(ctx, "admissionTypes", "/student-admissions-sale/admission-types", nil)
}

func (c *Client) GetAdmissionReferredBy(ctx context.Context) ([]map[string]interface{}, error) {
	return c.fetchList(ctx, "admissionReferredBy", "/student-admissions-sale/admission-referred-by", nil)
}

func (c *Client) GetGenders(ctx context.Context) ([]map[string]interface{}, error) {
	return c.fetchList(ctx, "genders", "/student-admissions-sale/genders", nil)
}

func (c *Client) GetAuthorizedBy(ctx context.Context) ([]map[string]interface{}, error) {
	return c.fetchList(ctx, "authorizedBy", "/student-admissions-sale/authorizedBy/all", nil)
}

// --- Application detail ---

// GetApplicationDetails fetches the detail record for one application number.
// Detail records are never cached; they are mutable on the backend.
func (c *Client) GetApplicationDetails(ctx context.Context, applicationNo string) (*models.ApplicationDetail, error) {
	body, err := c.getJSON(ctx, "/application-status/details/"+url.PathEscape(applicationNo), nil)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("application %s not found", applicationNo)
	}

	var detail models.ApplicationDetail
	if err := json.Unmarshal(body, &detail); err != nil {
		return nil, fmt.Errorf("failed to decode application details: %w", err)
	}
	if detail.ApplicationNo == "" {
		detail.ApplicationNo = applicationNo
	}
	return &detail, nil
}
