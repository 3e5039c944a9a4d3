// Package flow implements the account-link wizard: a small multi-step form
// engine driven over HTTP. Each flow instance walks the user through forms
// until it either creates a config entry or aborts.
package flow

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	StepUser = "user"

	AbortSingleInstance = "single_instance_allowed"

	ErrorConnection  = "connection_error"
	ErrorInvalidAuth = "invalid_auth"
)

var ErrUnknownFlow = errors.New("unknown flow id")

// Field describes one input of a form step.
type Field struct {
	Name     string `json:"name"`
	Required bool   `json:"required"`
	Secret   bool   `json:"secret"`
}

// Result is what a flow step returns: a form to show, a created entry or
// an abort.
type Result interface {
	isResult()
}

// ShowForm asks the user to (re)fill a step's fields. Errors carries
// per-field validation errors, with "base" for step-wide ones.
type ShowForm struct {
	FlowID string            `json:"flow_id"`
	StepID string            `json:"step_id"`
	Schema []Field           `json:"schema"`
	Errors map[string]string `json:"errors,omitempty"`
}

// CreateEntry ends a flow successfully.
type CreateEntry struct {
	Title string            `json:"title"`
	Data  map[string]string `json:"data"`
}

// Abort ends a flow without an entry.
type Abort struct {
	Reason string `json:"reason"`
}

func (ShowForm) isResult()    {}
func (CreateEntry) isResult() {}
func (Abort) isResult()       {}

// Handler is one wizard implementation. Begin returns the first step;
// Submit consumes one step's input and returns the next result.
type Handler interface {
	Begin(flowID string) Result
	Submit(flowID string, input map[string]string) Result
}

// Manager tracks running flows and finished entries. A single entry is
// allowed: starting a second flow after one finished aborts immediately.
type Manager struct {
	mu      sync.Mutex
	handler Handler
	flows   map[string]struct{}
	entries []CreateEntry
	logger  *zap.Logger
}

func NewManager(handler Handler, logger *zap.Logger) *Manager {
	return &Manager{
		handler: handler,
		flows:   map[string]struct{}{},
		logger:  logger.With(zap.String("component", "flow")),
	}
}

func (m *Manager) Begin() Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.entries) > 0 {
		return Abort{Reason: AbortSingleInstance}
	}

	flowID := uuid.NewString()
	m.flows[flowID] = struct{}{}
	m.logger.Debug("flow started", zap.String("flow_id", flowID))
	return m.handler.Begin(flowID)
}

func (m *Manager) Submit(flowID string, input map[string]string) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.flows[flowID]; !ok {
		return nil, ErrUnknownFlow
	}

	result := m.handler.Submit(flowID, input)
	switch r := result.(type) {
	case CreateEntry:
		delete(m.flows, flowID)
		m.entries = append(m.entries, r)
		m.logger.Info("flow finished", zap.String("flow_id", flowID), zap.String("title", r.Title))
	case Abort:
		delete(m.flows, flowID)
		m.logger.Info("flow aborted", zap.String("flow_id", flowID), zap.String("reason", r.Reason))
	}
	return result, nil
}

// Entries returns a copy of the finished entries.
func (m *Manager) Entries() []CreateEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CreateEntry, len(m.entries))
	copy(out, m.entries)
	return out
}
