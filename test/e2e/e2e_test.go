// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admissions-intake/internal/common/logger"
	"admissions-intake/internal/lookup"
	"admissions-intake/internal/models"
	"admissions-intake/internal/session"
	"admissions-intake/internal/submit"
)

// catalogBackend fakes the remote catalog/lookup service.
func catalogBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	write := func(w http.ResponseWriter, v interface{}) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}

	mux.HandleFunc("/zones", func(w http.ResponseWriter, r *http.Request) {
		write(w, []map[string]interface{}{
			{"zoneId": 1, "zoneName": "North"},
			{"zoneId": 2, "zoneName": "South"},
		})
	})
	mux.HandleFunc("/statuses", func(w http.ResponseWriter, r *http.Request) {
		write(w, []map[string]interface{}{
			{"status_id": 1, "status": "with pro"},
			{"status_id": 2, "status": "Damaged"},
			{"status_id": 3, "status": "un sold"},
			{"status_id": 4, "status": "left"},
			{"status_id": 5, "status": "confirmed"},
		})
	})
	mux.HandleFunc("/campuses", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("zoneId") == "1" {
			write(w, []map[string]interface{}{
				{"id": 10, "name": "Hyderabad Central"},
			})
			return
		}
		write(w, []map[string]interface{}{})
	})
	mux.HandleFunc("/employees/dgm", func(w http.ResponseWriter, r *http.Request) {
		write(w, []map[string]interface{}{
			{"empId": 7, "empName": "K. Prasad"},
		})
	})
	mux.HandleFunc("/employees/pro", func(w http.ResponseWriter, r *http.Request) {
		write(w, []map[string]interface{}{
			{"empId": 55, "empName": "J. Rao"},
		})
	})
	mux.HandleFunc("/student-admissions-sale/quotas", func(w http.ResponseWriter, r *http.Request) {
		write(w, []map[string]interface{}{{"id": 1, "name": "Management"}})
	})
	mux.HandleFunc("/application-status/details/1023", func(w http.ResponseWriter, r *http.Request) {
		write(w, map[string]interface{}{
			"applicationNo": "1023",
			"zoneName":      "North",
			"campusName":    "Unknown",
			"proName":       "J. Rao",
			"dgmEmpName":    "",
			"status":        "left",
			"reason":        "torn cover",
		})
	})
	// Everything else is an empty catalog.
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		write(w, []map[string]interface{}{})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// submissionBackend fakes the remote submission service.
func submissionBackend(t *testing.T, accepted *int64) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/admissions", func(w http.ResponseWriter, r *http.Request) {
		var record map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
			http.Error(w, "bad payload", http.StatusBadRequest)
			return
		}
		if record["firstName"] == nil || record["submissionTimestamp"] == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnprocessableEntity)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "incomplete record"})
			return
		}
		atomic.AddInt64(accepted, 1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"applicationNo": "APP-2041"})
	})
	mux.HandleFunc("/application-status/update", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newSession(t *testing.T) (*session.Session, *int64) {
	t.Helper()
	catalogSrv := catalogBackend(t)
	var accepted int64
	submitSrv := submissionBackend(t, &accepted)

	lookupClient := lookup.NewClient(lookup.ClientOptions{
		BaseURL: catalogSrv.URL,
		Timeout: 2 * time.Second,
		Logger:  logger.NewTestLogger(t),
	})
	submitClient := submit.NewClient(submit.ClientOptions{
		BaseURL: submitSrv.URL,
		Timeout: 2 * time.Second,
		Logger:  logger.NewTestLogger(t),
	})

	sess, err := session.New(session.Options{
		ID:          "e2e",
		Context:     models.SessionContext{CampusName: "Hyderabad Central", AcademicYear: "2026-27"},
		Lookup:      lookupClient,
		Submitter:   submitClient,
		Damaged:     submitClient,
		Logger:      logger.NewTestLogger(t),
		FormVersion: "v2",
		RequiredSections: []models.SectionKey{
			models.SectionPersonal,
			models.SectionOrientation,
			models.SectionAddress,
			models.SectionPayment,
		},
		RequiredFields: []string{"firstName", "amount"},
	})
	require.NoError(t, err)
	require.NoError(t, sess.Start(context.Background()))
	return sess, &accepted
}

func TestE2E_SaleFlow(t *testing.T) {
	sess, accepted := newSession(t)
	ctx := context.Background()

	// Zones and assignable statuses loaded up front; LEFT/CONFIRMED excluded.
	assert.Equal(t, []string{"North", "South"}, sess.Catalog().Options(models.CategoryZoneName).Labels())
	assert.ElementsMatch(t, []string{"AVAILABLE", "DAMAGED", "UNSOLD"},
		sess.Catalog().Options(models.CategoryStatus).Labels())

	// Selecting a zone cascades into its campus list.
	_, diag := sess.OnFieldChange(ctx, string(models.CategoryZoneName), models.CategoryZoneName, "North")
	require.Nil(t, diag)
	sess.Wait()
	assert.Equal(t, []string{"Hyderabad Central"}, sess.Catalog().Options(models.CategoryCampusName).Labels())

	// A submit before all sections are present never reaches the backend.
	_, serr := sess.Submit(ctx)
	require.NotNil(t, serr)
	assert.Equal(t, int64(0), atomic.LoadInt64(accepted))

	sess.CompleteSection(models.SectionPersonal, map[string]interface{}{"firstName": "Anil"})
	sess.CompleteSection(models.SectionOrientation, map[string]interface{}{"branch": "Hyderabad Central"})
	sess.CompleteSection(models.SectionAddress, map[string]interface{}{"city": "Hyderabad"})
	sess.CompleteSection(models.SectionPayment, map[string]interface{}{"amount": float64(5000), "paymentMode": "Cash"})

	ref, serr := sess.Submit(ctx)
	require.Nil(t, serr)
	assert.Equal(t, "APP-2041", ref)
	assert.Equal(t, int64(1), atomic.LoadInt64(accepted))
}

func TestE2E_DamagedFlow1023(t *testing.T) {
	sess, _ := newSession(t)
	ctx := context.Background()

	prefill, serr := sess.LoadApplication(ctx, "1023")
	require.Nil(t, serr)
	sess.Wait()

	assert.Equal(t, "AVAILABLE", prefill.Values["status"])
	assert.Equal(t, "", prefill.Values["dgmName"])
	assert.Contains(t, prefill.Missing, "campusId")

	// The zone cascade delivered the campus and DGM lists; picking the
	// campus fetches its PRO employees.
	_, diag := sess.OnFieldChange(ctx, string(models.CategoryCampusName), models.CategoryCampusName, "Hyderabad Central")
	require.Nil(t, diag)
	sess.Wait()

	verr := sess.SubmitDamaged(ctx, map[string]interface{}{
		"applicationNo": "1023",
		"status":        "Damaged",
		"zoneName":      "North",
		"campusName":    "Hyderabad Central",
		"proName":       "J. Rao",
		"dgmName":       "K. Prasad",
		"reason":        "torn cover",
	})
	assert.Nil(t, verr)
}
