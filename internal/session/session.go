// Package session tracks the in-memory working state of an interactive run:
// which policy is selected, the latest analysis, and progress through the
// workflow steps. State is process-local and not persisted.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jeongsedam/policy-cli/internal/model"
)

// Step is a stage of the policy workflow.
type Step string

const (
	StepPlanning    Step = "planning"
	StepExecution   Step = "execution"
	StepPromotion   Step = "promotion"
	StepPerformance Step = "performance"
)

// Valid reports whether s is a known workflow step.
func (s Step) Valid() bool {
	switch s {
	case StepPlanning, StepExecution, StepPromotion, StepPerformance:
		return true
	}
	return false
}

// State is a snapshot of the session, safe to serialize.
type State struct {
	ID              string          `json:"id"`
	StartedAt       time.Time       `json:"started_at"`
	Step            Step            `json:"step"`
	CurrentPolicyID int64           `json:"current_policy_id,omitempty"`
	Analysis        *model.Analysis `json:"analysis,omitempty"`
	ImageCount      int             `json:"image_count"`
	VideoPromptSets int             `json:"video_prompt_sets"`
}

// Session is the mutable working state. All methods are safe for
// concurrent use.
type Session struct {
	mu    sync.Mutex
	state State
}

// New creates a fresh session at the planning step.
func New() *Session {
	s := &Session{}
	s.reset()
	return s
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SelectPolicy switches the session to a policy, clearing any analysis and
// generation progress carried over from a previous one.
func (s *Session) SelectPolicy(policyID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.CurrentPolicyID == policyID {
		return
	}
	s.state.CurrentPolicyID = policyID
	s.state.Analysis = nil
	s.state.ImageCount = 0
	s.state.VideoPromptSets = 0
	s.state.Step = StepPlanning
}

// SetAnalysis records the latest analysis and advances to execution.
func (s *Session) SetAnalysis(a *model.Analysis) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Analysis = a
	if s.state.Step == StepPlanning {
		s.state.Step = StepExecution
	}
}

// Analysis returns the stored analysis, or nil.
func (s *Session) Analysis() *model.Analysis {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Analysis
}

// RecordImage increments the generated image counter.
func (s *Session) RecordImage() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.ImageCount++
	s.advanceToPromotion()
}

// RecordVideoPrompts increments the video prompt set counter.
func (s *Session) RecordVideoPrompts() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.VideoPromptSets++
	s.advanceToPromotion()
}

// SetStep moves the session to an explicit workflow step.
func (s *Session) SetStep(step Step) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Step = step
}

// Reset discards all state and starts a new session.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

func (s *Session) reset() {
	s.state = State{
		ID:        uuid.New().String(),
		StartedAt: time.Now().UTC(),
		Step:      StepPlanning,
	}
}

func (s *Session) advanceToPromotion() {
	if s.state.Step == StepPlanning || s.state.Step == StepExecution {
		s.state.Step = StepPromotion
	}
}
