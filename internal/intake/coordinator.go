package intake

import (
	"context"
	"strings"
	"sync"
	"time"

	"admissions-intake/internal/common/errors"
	"admissions-intake/internal/common/logger"
	"admissions-intake/internal/common/metrics"
	"admissions-intake/internal/common/validation"
	"admissions-intake/internal/models"
)

// State is the coordinator's submission lifecycle.
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateSuccess    State = "success"
	StateError      State = "error"
)

// Submitter sends one aggregated record to the submission service and returns
// the application reference it assigned.
type Submitter interface {
	Submit(ctx context.Context, record models.AggregatedRecord) (string, error)
}

// Coordinator drives aggregation, validation and the external submit call.
// Success and error both allow retry by re-entering submitting; Reset returns
// to idle from any state.
type Coordinator struct {
	aggregator *Aggregator
	submitter  Submitter
	logger     logger.Logger

	requiredSections []models.SectionKey
	requiredFields   []string
	payloadSchema    map[string]interface{}

	mu        sync.Mutex
	state     State
	message   string
	reference string
}

type CoordinatorOptions struct {
	Aggregator       *Aggregator
	Submitter        Submitter
	Logger           logger.Logger
	RequiredSections []models.SectionKey
	RequiredFields   []string
}

func NewCoordinator(opts CoordinatorOptions) *Coordinator {
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Coordinator{
		aggregator:       opts.Aggregator,
		submitter:        opts.Submitter,
		logger:           log,
		requiredSections: opts.RequiredSections,
		requiredFields:   opts.RequiredFields,
		payloadSchema:    validation.PayloadSchema(opts.RequiredFields),
		state:            StateIdle,
	}
}

// State returns the current lifecycle state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Message returns the latest error message, empty outside the error state.
func (c *Coordinator) Message() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.message
}

// Reference returns the application reference from the last successful
// submission.
func (c *Coordinator) Reference() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reference
}

// Submit validates and sends the aggregated record. A submit while one is
// already in flight is a no-op: the duplicate attempt is rejected without a
// second call to the submission service. Validation failures transition to
// error without any network call.
func (c *Coordinator) Submit(ctx context.Context) (string, *errors.StandardError) {
	c.mu.Lock()
	if c.state == StateSubmitting {
		c.mu.Unlock()
		c.logger.Warn("Submission already in flight, ignoring duplicate", nil)
		return "", errors.NewSubmissionInFlightError()
	}
	c.state = StateSubmitting
	c.message = ""
	c.mu.Unlock()

	if verr := c.aggregator.ValidateAll(c.requiredSections, c.requiredFields); verr != nil {
		c.fail(verr.Message)
		metrics.SubmissionsTotal.WithLabelValues("validation_failed").Inc()
		return "", verr
	}

	record := c.aggregator.CollectAll()

	result, err := validation.ValidatePayload(record, c.payloadSchema)
	if err == nil && !result.Valid {
		msg := "Invalid submission payload: " + strings.Join(result.GetErrorMessages(), "; ")
		c.fail(msg)
		metrics.SubmissionsTotal.WithLabelValues("validation_failed").Inc()
		return "", errors.NewMissingFieldsError(result.GetErrorMessages())
	}

	start := time.Now()
	reference, submitErr := c.submitter.Submit(ctx, record)
	metrics.SubmissionDuration.Observe(time.Since(start).Seconds())

	if submitErr != nil {
		// A structured remote error carries its own message; transport
		// failures fall back to the generic one.
		var remoteMsg string
		if se, ok := submitErr.(*errors.StandardError); ok {
			remoteMsg = se.Message
		}
		serr := errors.NewSubmissionFailedError(remoteMsg, submitErr)
		c.fail(serr.Message)
		metrics.SubmissionsTotal.WithLabelValues("error").Inc()
		c.logger.Error("Submission failed", map[string]interface{}{
			"error": submitErr.Error(),
		})
		return "", serr
	}

	c.mu.Lock()
	c.state = StateSuccess
	c.reference = reference
	c.mu.Unlock()
	metrics.SubmissionsTotal.WithLabelValues("success").Inc()
	c.logger.Info("Submission accepted", map[string]interface{}{
		"reference": reference,
	})
	return reference, nil
}

// Reset returns the coordinator to idle and clears the stored sections.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	c.state = StateIdle
	c.message = ""
	c.reference = ""
	c.mu.Unlock()
	c.aggregator.Reset()
}

func (c *Coordinator) fail(message string) {
	c.mu.Lock()
	c.state = StateError
	c.message = message
	c.mu.Unlock()
}
