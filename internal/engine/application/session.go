// internal/engine/application/session.go
package application

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"teamfit-workers/internal/models"
)

type State int

const (
	StateIdle State = iota
	StateSlotSelected
	StateSubmitting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSlotSelected:
		return "slot_selected"
	case StateSubmitting:
		return "submitting"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	ErrUnknownSlot           = errors.New("UNKNOWN_SLOT")
	ErrSlotUnavailable       = errors.New("SLOT_UNAVAILABLE")
	ErrSlotNotSelectable     = errors.New("SLOT_NOT_SELECTABLE")
	ErrNoSlotSelected        = errors.New("NO_SLOT_SELECTED")
	ErrUnknownQuestion       = errors.New("UNKNOWN_QUESTION")
	ErrApplicationIncomplete = errors.New("APPLICATION_INCOMPLETE")
	ErrSubmissionInFlight    = errors.New("SUBMISSION_IN_FLIGHT")
)

// SubmitFunc delivers a payload to whatever persists applications.
type SubmitFunc func(ctx context.Context, payload models.ApplicationPayload) error

// Session holds one candidate's draft against one team's slots.
//
// Transitions: Idle -> SlotSelected on SelectSlot, SlotSelected -> Submitting
// on Submit, then back to Idle on success (draft cleared) or SlotSelected on
// failure (draft kept). Every mutation is refused while Submitting.
type Session struct {
	mu        sync.Mutex
	candidate models.CandidateProfile
	slots     map[string]models.PositionSlot
	draft     models.ApplicationDraft
	state     State
}

func NewSession(candidate models.CandidateProfile, slots []models.PositionSlot) *Session {
	index := make(map[string]models.PositionSlot, len(slots))
	for _, s := range slots {
		if _, exists := index[s.ID]; !exists {
			index[s.ID] = s
		}
	}
	return &Session{
		candidate: candidate,
		slots:     index,
		draft:     emptyDraft(),
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Draft returns a copy of the current draft.
func (s *Session) Draft() models.ApplicationDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyDraft(s.draft)
}

// SelectSlot picks a slot. Switching to a different slot drops existing
// answers but keeps the introduction; re-selecting the current slot is a no-op.
func (s *Session) SelectSlot(slotID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateSubmitting {
		return ErrSubmissionInFlight
	}
	slot, ok := s.slots[slotID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSlot, slotID)
	}
	if !slot.Available() {
		return fmt.Errorf("%w: %s is full (%d/%d)", ErrSlotUnavailable, slotID, slot.CurrentCount, slot.MaxCount)
	}
	if !IsSelectable(slot, s.candidate) {
		return fmt.Errorf("%w: level %d below required %d", ErrSlotNotSelectable, s.candidate.Level, slot.MinLevel)
	}

	if s.draft.SelectedSlotID != nil && *s.draft.SelectedSlotID == slotID {
		return nil
	}
	id := slotID
	s.draft.SelectedSlotID = &id
	s.draft.Answers = map[string]string{}
	s.state = StateSlotSelected
	return nil
}

func (s *Session) SetIntroduction(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateSubmitting {
		return ErrSubmissionInFlight
	}
	s.draft.IntroductionText = text
	return nil
}

// SetAnswer records the answer to one of the selected slot's questions.
func (s *Session) SetAnswer(questionID, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateSubmitting {
		return ErrSubmissionInFlight
	}
	slot, ok := s.selectedLocked()
	if !ok {
		return ErrNoSlotSelected
	}
	if _, ok := slot.Question(questionID); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownQuestion, questionID)
	}
	s.draft.Answers[questionID] = text
	return nil
}

func (s *Session) CanSubmit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canSubmitLocked()
}

// Submit hands the built payload to fn. The lock is released while fn runs so
// State can still be observed; a second Submit in that window is refused.
func (s *Session) Submit(ctx context.Context, fn SubmitFunc) (models.ApplicationPayload, error) {
	s.mu.Lock()
	if s.state == StateSubmitting {
		s.mu.Unlock()
		return models.ApplicationPayload{}, ErrSubmissionInFlight
	}
	if !s.canSubmitLocked() {
		s.mu.Unlock()
		return models.ApplicationPayload{}, ErrApplicationIncomplete
	}
	slot, _ := s.selectedLocked()
	payload := BuildPayload(s.draft, slot)
	s.state = StateSubmitting
	s.mu.Unlock()

	err := fn(ctx, payload)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = StateSlotSelected
		return payload, fmt.Errorf("submit application: %w", err)
	}
	s.draft = emptyDraft()
	s.state = StateIdle
	return payload, nil
}

// Cancel drops the draft and returns to Idle.
func (s *Session) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateSubmitting {
		return ErrSubmissionInFlight
	}
	s.draft = emptyDraft()
	s.state = StateIdle
	return nil
}

func (s *Session) selectedLocked() (models.PositionSlot, bool) {
	if s.draft.SelectedSlotID == nil {
		return models.PositionSlot{}, false
	}
	slot, ok := s.slots[*s.draft.SelectedSlotID]
	return slot, ok
}

func (s *Session) canSubmitLocked() bool {
	slot, ok := s.selectedLocked()
	if !ok {
		return false
	}
	return CanSubmit(s.draft, &slot)
}

func emptyDraft() models.ApplicationDraft {
	return models.ApplicationDraft{Answers: map[string]string{}}
}

func copyDraft(d models.ApplicationDraft) models.ApplicationDraft {
	out := models.ApplicationDraft{
		IntroductionText: d.IntroductionText,
		Answers:          make(map[string]string, len(d.Answers)),
	}
	if d.SelectedSlotID != nil {
		id := *d.SelectedSlotID
		out.SelectedSlotID = &id
	}
	for k, v := range d.Answers {
		out.Answers[k] = v
	}
	return out
}
