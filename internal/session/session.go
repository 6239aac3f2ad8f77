// Package session ties one user's intake flow together: the option catalog,
// cascade resolver, section aggregator and submission coordinator, plus the
// post-acceptance side effects (audit, search indexing, notification).
package session

import (
	"context"
	"fmt"

	"admissions-intake/internal/cascade"
	"admissions-intake/internal/catalog"
	"admissions-intake/internal/common/errors"
	"admissions-intake/internal/common/logger"
	"admissions-intake/internal/intake"
	"admissions-intake/internal/lookup"
	"admissions-intake/internal/models"
	"admissions-intake/internal/store"
)

// AuditRecorder persists one row per submission attempt.
type AuditRecorder interface {
	RecordAttempt(ctx context.Context, rec *store.AuditRecord) (int64, error)
}

// SubmissionIndexer makes accepted submissions searchable.
type SubmissionIndexer interface {
	IndexSubmission(ctx context.Context, reference, sessionID string, record models.AggregatedRecord) error
}

// ConfirmationSender notifies the applicant after acceptance.
type ConfirmationSender interface {
	SendConfirmation(ctx context.Context, reference string, record models.AggregatedRecord) error
}

// DamagedSubmitter posts damaged-application status updates.
type DamagedSubmitter interface {
	SubmitDamaged(ctx context.Context, sub interface{}) error
}

// Session is one user's form flow. All option and section state lives in the
// components it owns; the session only sequences them.
type Session struct {
	ID      string
	Context models.SessionContext

	catalog     *catalog.Catalog
	resolver    *cascade.Resolver
	aggregator  *intake.Aggregator
	coordinator *intake.Coordinator
	lookup      lookup.Service
	logger      logger.Logger

	// Post-acceptance collaborators, each optional.
	audit    AuditRecorder
	indexer  SubmissionIndexer
	notifier ConfirmationSender
	damaged  DamagedSubmitter
}

type Options struct {
	ID               string
	Context          models.SessionContext
	Lookup           lookup.Service
	Submitter        intake.Submitter
	Logger           logger.Logger
	FormVersion      string
	RequiredSections []models.SectionKey
	RequiredFields   []string

	Audit    AuditRecorder
	Indexer  SubmissionIndexer
	Notifier ConfirmationSender
	Damaged  DamagedSubmitter
}

func New(opts Options) (*Session, error) {
	if opts.Lookup == nil {
		return nil, fmt.Errorf("lookup service is required")
	}
	if opts.Submitter == nil {
		return nil, fmt.Errorf("submitter is required")
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	cat := catalog.New(log)
	resolver, err := cascade.NewResolver(cascade.ResolverDependencies{
		Catalog: cat,
		Service: opts.Lookup,
		Logger:  log,
	})
	if err != nil {
		return nil, err
	}

	aggregator := intake.NewAggregator(opts.FormVersion, log)
	coordinator := intake.NewCoordinator(intake.CoordinatorOptions{
		Aggregator:       aggregator,
		Submitter:        opts.Submitter,
		Logger:           log,
		RequiredSections: opts.RequiredSections,
		RequiredFields:   opts.RequiredFields,
	})

	return &Session{
		ID:          opts.ID,
		Context:     opts.Context,
		catalog:     cat,
		resolver:    resolver,
		aggregator:  aggregator,
		coordinator: coordinator,
		lookup:      opts.Lookup,
		logger:      log,
		audit:       opts.Audit,
		indexer:     opts.Indexer,
		notifier:    opts.Notifier,
		damaged:     opts.Damaged,
	}, nil
}

// Start loads the initial option categories, then the independent sale-form
// catalogs. The dependent cascade pipeline stays gated until this succeeds.
func (s *Session) Start(ctx context.Context) error {
	if err := s.resolver.LoadInitialOptions(ctx); err != nil {
		return err
	}
	s.resolver.LoadSaleCatalogs(ctx)
	return nil
}

// Defaults returns the read-only values injected from the session context:
// the operator's campus and academic year pre-fill the orientation step.
func (s *Session) Defaults() map[string]interface{} {
	return map[string]interface{}{
		"academicYear": s.Context.AcademicYear,
		"branch":       s.Context.CampusName,
	}
}

// Catalog exposes the option lists for rendering.
func (s *Session) Catalog() *catalog.Catalog { return s.catalog }

// Resolver exposes cascade state (loading flags, advisory message).
func (s *Session) Resolver() *cascade.Resolver { return s.resolver }

// State returns the submission lifecycle state.
func (s *Session) State() intake.State { return s.coordinator.State() }

// OnFieldChange resolves a selected label to its identifier and triggers the
// cascades rooted at the field. An empty label clears the downstream lists.
// A label that cannot be resolved reports a lookup miss; downstream lists are
// cleared as if the selection were empty.
func (s *Session) OnFieldChange(ctx context.Context, field string, category models.CategoryKey, label string) (interface{}, *errors.StandardError) {
	if label == "" {
		s.resolver.OnUpstreamChange(ctx, field, "")
		return nil, nil
	}

	id, diag := s.catalog.FindIdentifier(category, label)
	if diag != nil {
		s.resolver.OnUpstreamChange(ctx, field, "")
		return nil, diag
	}

	s.resolver.OnUpstreamChange(ctx, field, fmt.Sprintf("%v", id))
	return id, nil
}

// CompleteSection stores a finished section's values wholesale.
func (s *Session) CompleteSection(section models.SectionKey, values map[string]interface{}) {
	s.aggregator.UpdateSection(section, values)
}

// Submit drives validation and the external submit call, then runs the
// post-acceptance side effects. Audit rows are written for every attempt;
// indexing and notification only run for accepted submissions and never fail
// the flow.
func (s *Session) Submit(ctx context.Context) (string, *errors.StandardError) {
	record := s.aggregator.CollectAll()
	reference, serr := s.coordinator.Submit(ctx)

	if serr != nil {
		if serr.Code != errors.ErrCodeSubmissionInFlight {
			s.recordAudit(ctx, reference, outcomeFor(serr), serr.Message, record)
		}
		return "", serr
	}

	s.recordAudit(ctx, reference, "accepted", "", record)

	if s.indexer != nil {
		if err := s.indexer.IndexSubmission(ctx, reference, s.ID, record); err != nil {
			s.logger.Warn("Submission indexing failed, continuing", map[string]interface{}{
				"reference": reference,
				"error":     err.Error(),
			})
		}
	}
	if s.notifier != nil {
		if err := s.notifier.SendConfirmation(ctx, reference, record); err != nil {
			s.logger.Warn("Confirmation send failed, continuing", map[string]interface{}{
				"reference": reference,
				"error":     err.Error(),
			})
		}
	}

	return reference, nil
}

// LoadApplication fetches an application's detail record and pre-populates
// the damaged-status form from it. An empty application number clears every
// derived field instead.
func (s *Session) LoadApplication(ctx context.Context, applicationNo string) (*cascade.Prefill, *errors.StandardError) {
	if applicationNo == "" {
		s.resolver.ClearApplication()
		return nil, nil
	}

	detail, err := s.lookup.GetApplicationDetails(ctx, applicationNo)
	if err != nil {
		return nil, errors.NewDetailFetchFailedError(applicationNo, err)
	}

	prefill, err := s.resolver.ApplyApplicationDetail(ctx, detail)
	if err != nil {
		return nil, errors.NewDetailFetchFailedError(applicationNo, err)
	}
	return prefill, nil
}

// SubmitDamaged converts the edited damaged-status form back to identifiers
// and posts the status update. Unresolved identifiers block the call.
func (s *Session) SubmitDamaged(ctx context.Context, values map[string]interface{}) *errors.StandardError {
	sub, serr := intake.BuildDamagedSubmission(s.catalog, values, s.logger)
	if serr != nil {
		return serr
	}
	if s.damaged == nil {
		return nil
	}
	if err := s.damaged.SubmitDamaged(ctx, sub); err != nil {
		if se, ok := err.(*errors.StandardError); ok {
			return se
		}
		return errors.NewSubmissionFailedError("", err)
	}
	return nil
}

// Reset returns the whole session to its initial state: coordinator idle,
// sections dropped, cascade-derived categories cleared.
func (s *Session) Reset() {
	s.coordinator.Reset()
	s.resolver.Reset()
}

// Wait blocks until outstanding cascade fetches settle.
func (s *Session) Wait() { s.resolver.Wait() }

func (s *Session) recordAudit(ctx context.Context, reference, outcome, message string, record models.AggregatedRecord) {
	if s.audit == nil {
		return
	}
	if _, err := s.audit.RecordAttempt(ctx, &store.AuditRecord{
		SessionID:     s.ID,
		ApplicationNo: reference,
		Outcome:       outcome,
		Message:       message,
		Payload:       record,
	}); err != nil {
		s.logger.Warn("Audit write failed, continuing", map[string]interface{}{
			"sessionId": s.ID,
			"error":     err.Error(),
		})
	}
}

func outcomeFor(serr *errors.StandardError) string {
	if serr.Code == errors.ErrCodeSubmissionFailed {
		return "rejected"
	}
	return "error"
}
