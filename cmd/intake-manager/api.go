// cmd/intake-manager/api.go
package main

import (
	"encoding/json"
	"net/http"
	"time"

	"admissions-intake/internal/common/errors"
	"admissions-intake/internal/common/logger"
	"admissions-intake/internal/common/observability"
	"admissions-intake/internal/models"
	"admissions-intake/internal/session"
)

// api is the HTTP surface over the session manager. One session per form
// flow; the rendering layer drives it with field-change and section events.
type api struct {
	manager *session.Manager
	obs     *observability.Observability
	logger  logger.Logger
}

func newAPI(manager *session.Manager, obs *observability.Observability, log logger.Logger) *api {
	return &api{manager: manager, obs: obs, logger: log}
}

func (a *api) register(mux *http.ServeMux) {
	mux.HandleFunc("POST /sessions", a.openSession)
	mux.HandleFunc("DELETE /sessions/{id}", a.closeSession)
	mux.HandleFunc("GET /sessions/{id}/options/{category}", a.options)
	mux.HandleFunc("POST /sessions/{id}/field-change", a.fieldChange)
	mux.HandleFunc("POST /sessions/{id}/sections/{section}", a.completeSection)
	mux.HandleFunc("POST /sessions/{id}/submit", a.submitSession)
	mux.HandleFunc("POST /sessions/{id}/application", a.loadApplication)
	mux.HandleFunc("POST /sessions/{id}/damaged", a.submitDamaged)
	mux.HandleFunc("POST /sessions/{id}/reset", a.resetSession)
}

func (a *api) openSession(w http.ResponseWriter, r *http.Request) {
	var sctx models.SessionContext
	if err := json.NewDecoder(r.Body).Decode(&sctx); err != nil {
		writeError(w, http.StatusBadRequest, "invalid session context")
		return
	}

	sess, err := a.manager.Open(sctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := sess.Start(r.Context()); err != nil {
		a.manager.Close(sess.ID)
		writeError(w, http.StatusBadGateway, sess.Resolver().Message())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"sessionId": sess.ID,
		"defaults":  sess.Defaults(),
	})
}

func (a *api) closeSession(w http.ResponseWriter, r *http.Request) {
	a.manager.Close(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) options(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.manager.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}

	category := models.CategoryKey(r.PathValue("category"))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"options": sess.Catalog().Options(category),
		"loading": sess.Resolver().Loading(category),
		"message": sess.Resolver().Message(),
	})
}

func (a *api) fieldChange(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.manager.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}

	var req struct {
		Field    string `json:"field"`
		Category string `json:"category"`
		Label    string `json:"label"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid field change")
		return
	}

	id, diag := sess.OnFieldChange(r.Context(), req.Field, models.CategoryKey(req.Category), req.Label)
	resp := map[string]interface{}{"identifier": id}
	if diag != nil {
		resp["diagnostic"] = diag
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *api) completeSection(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.manager.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}

	var values map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
		writeError(w, http.StatusBadRequest, "invalid section values")
		return
	}

	sess.CompleteSection(models.SectionKey(r.PathValue("section")), values)
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) submitSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.manager.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}

	start := time.Now()
	reference, serr := sess.Submit(r.Context())
	if serr != nil {
		a.obs.RecordSubmission(r.Context(), "error")
		a.obs.RecordSubmissionDuration(r.Context(), time.Since(start), "error")
		writeJSON(w, statusFor(serr), map[string]interface{}{
			"state":   sess.State(),
			"message": serr.Message,
			"error":   serr,
		})
		return
	}

	a.obs.RecordSubmission(r.Context(), "success")
	a.obs.RecordSubmissionDuration(r.Context(), time.Since(start), "success")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"state":     sess.State(),
		"reference": reference,
	})
}

func (a *api) loadApplication(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.manager.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}

	var req struct {
		ApplicationNo string `json:"applicationNo"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	prefill, serr := sess.LoadApplication(r.Context(), req.ApplicationNo)
	if serr != nil {
		writeJSON(w, http.StatusBadGateway, map[string]interface{}{"error": serr})
		return
	}
	if prefill == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, prefill)
}

func (a *api) submitDamaged(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.manager.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}

	var values map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	if serr := sess.SubmitDamaged(r.Context(), values); serr != nil {
		writeJSON(w, statusFor(serr), map[string]interface{}{"error": serr})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) resetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.manager.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}
	sess.Reset()
	w.WriteHeader(http.StatusNoContent)
}

func statusFor(serr *errors.StandardError) int {
	switch serr.Code {
	case errors.ErrCodeMissingSections, errors.ErrCodeMissingFields,
		errors.ErrCodeMissingIdentifiers, errors.ErrCodeValidationFailed:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeSubmissionInFlight:
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
