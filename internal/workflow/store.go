package workflow

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrUnknownValue      = errors.New("workflow: unknown value")
	ErrInvalidTransition = errors.New("workflow: invalid transition")
)

// State is the client-side progress of one consultation.
type State struct {
	CurrentStep     Step        `json:"currentStep"`
	ContextDetected ContextType `json:"contextDetected"`
	PatientID       *int64      `json:"patientId"`
	ConsultationID  *int64      `json:"consultationId"`
	InterventionID  *int64      `json:"interventionId"`
	Transcription   string      `json:"transcription"`
	IsRecording     bool        `json:"isRecording"`
	IsGenerating    bool        `json:"isGenerating"`
}

func InitialState() State {
	return State{
		CurrentStep:     StepPatientSelection,
		ContextDetected: ContextUnknown,
	}
}

// ID is a convenience for the nullable identifier setters.
func ID(v int64) *int64 {
	return &v
}

func (s State) clone() State {
	out := s
	out.PatientID = cloneID(s.PatientID)
	out.ConsultationID = cloneID(s.ConsultationID)
	out.InterventionID = cloneID(s.InterventionID)
	return out
}

func cloneID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

// Change is delivered to listeners after every mutation.
type Change struct {
	Action string
	Prev   State
	Next   State
}

type Listener func(Change)

// Store holds one consultation's State. Setters replace exactly one field and
// never touch the others; SetStep does not enforce ordering. Advance, Back and
// TransitionTo are the guarded alternatives.
type Store struct {
	// notifyMu spans a mutation and its delivery, so listeners see changes
	// in the order they were applied. Listeners must not mutate the store.
	notifyMu  sync.Mutex
	mu        sync.Mutex
	state     State
	listeners map[int]Listener
	nextID    int
}

func NewStore() *Store {
	return &Store{
		state:     InitialState(),
		listeners: make(map[int]Listener),
	}
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Subscribe registers fn for every later change. The returned func removes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Store) apply(action string, fn func(*State) error) (State, error) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	prev := s.state.clone()
	if err := fn(&s.state); err != nil {
		s.mu.Unlock()
		return prev, err
	}
	next := s.state.clone()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	change := Change{Action: action, Prev: prev, Next: next}
	for _, l := range listeners {
		l(change)
	}
	return next, nil
}

func (s *Store) set(action string, fn func(*State)) State {
	next, _ := s.apply(action, func(st *State) error {
		fn(st)
		return nil
	})
	return next
}

// SetStep jumps to any known step.
func (s *Store) SetStep(step Step) error {
	if !step.Valid() {
		return fmt.Errorf("%w: step %q", ErrUnknownValue, step)
	}
	s.set("setStep", func(st *State) { st.CurrentStep = step })
	return nil
}

func (s *Store) SetContext(c ContextType) error {
	if !c.Valid() {
		return fmt.Errorf("%w: context %q", ErrUnknownValue, c)
	}
	s.set("setContext", func(st *State) { st.ContextDetected = c })
	return nil
}

func (s *Store) SetPatient(id *int64) {
	id = cloneID(id)
	s.set("setPatient", func(st *State) { st.PatientID = id })
}

func (s *Store) SetConsultation(id *int64) {
	id = cloneID(id)
	s.set("setConsultation", func(st *State) { st.ConsultationID = id })
}

func (s *Store) SetIntervention(id *int64) {
	id = cloneID(id)
	s.set("setIntervention", func(st *State) { st.InterventionID = id })
}

func (s *Store) SetTranscription(text string) {
	s.set("setTranscription", func(st *State) { st.Transcription = text })
}

func (s *Store) SetIsRecording(v bool) {
	s.set("setIsRecording", func(st *State) { st.IsRecording = v })
}

func (s *Store) SetIsGenerating(v bool) {
	s.set("setIsGenerating", func(st *State) { st.IsGenerating = v })
}

// Reset restores every field to its initial value in one step.
func (s *Store) Reset() {
	s.set("reset", func(st *State) { *st = InitialState() })
}

// Advance moves to the next step.
func (s *Store) Advance() (State, error) {
	return s.apply("advance", func(st *State) error {
		i := st.CurrentStep.Index()
		if i+1 >= len(steps) {
			return fmt.Errorf("%w: %s is the last step", ErrInvalidTransition, st.CurrentStep)
		}
		st.CurrentStep = steps[i+1]
		return nil
	})
}

// Back moves to the previous step.
func (s *Store) Back() (State, error) {
	return s.apply("back", func(st *State) error {
		i := st.CurrentStep.Index()
		if i <= 0 {
			return fmt.Errorf("%w: %s is the first step", ErrInvalidTransition, st.CurrentStep)
		}
		st.CurrentStep = steps[i-1]
		return nil
	})
}

// TransitionTo allows moving one step forward or jumping back to any earlier
// step, e.g. returning to editing after validation. Skipping ahead is refused.
func (s *Store) TransitionTo(to Step) (State, error) {
	if !to.Valid() {
		return s.State(), fmt.Errorf("%w: step %q", ErrUnknownValue, to)
	}
	return s.apply("transition", func(st *State) error {
		from := st.CurrentStep.Index()
		if to.Index() > from+1 {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, st.CurrentStep, to)
		}
		st.CurrentStep = to
		return nil
	})
}
