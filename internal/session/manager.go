package session

import (
	"sync"

	"github.com/google/uuid"

	"admissions-intake/internal/common/logger"
	"admissions-intake/internal/common/metrics"
	"admissions-intake/internal/models"
)

// Manager creates and tracks live sessions. Each session gets its own catalog
// and coordinator; the manager shares the stateless collaborators.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	template Options
	logger   logger.Logger
}

func NewManager(template Options, log logger.Logger) *Manager {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Manager{
		sessions: make(map[string]*Session),
		template: template,
		logger:   log,
	}
}

// Open creates a session for one operator context.
func (m *Manager) Open(sctx models.SessionContext) (*Session, error) {
	opts := m.template
	opts.ID = uuid.New().String()
	opts.Context = sctx

	sess, err := New(opts)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[sess.ID] = sess
	m.mu.Unlock()
	metrics.SessionsActive.Inc()

	m.logger.Info("Session opened", map[string]interface{}{
		"sessionId": sess.ID,
		"campus":    sctx.CampusName,
		"userId":    sctx.UserID,
	})
	return sess, nil
}

// Get returns a live session by ID.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	return sess, ok
}

// Close drops a session after waiting out its in-flight fetches.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return
	}
	sess.Wait()
	metrics.SessionsActive.Dec()
	m.logger.Info("Session closed", map[string]interface{}{
		"sessionId": id,
	})
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
