package workflow

import "fmt"

// Step is one stage of a consultation, in the order the UI walks them.
type Step string

const (
	StepPatientSelection Step = "patient_selection"
	StepRecording        Step = "recording"
	StepTranscription    Step = "transcription"
	StepGeneration       Step = "generation"
	StepEditing          Step = "editing"
	StepValidation       Step = "validation"
)

var steps = []Step{
	StepPatientSelection,
	StepRecording,
	StepTranscription,
	StepGeneration,
	StepEditing,
	StepValidation,
}

// Steps returns the six steps in workflow order.
func Steps() []Step {
	out := make([]Step, len(steps))
	copy(out, steps)
	return out
}

// Index is the position of s in the workflow, or -1 for an unknown value.
func (s Step) Index() int {
	for i, candidate := range steps {
		if candidate == s {
			return i
		}
	}
	return -1
}

func (s Step) Valid() bool {
	return s.Index() >= 0
}

func ParseStep(raw string) (Step, error) {
	s := Step(raw)
	if !s.Valid() {
		return "", fmt.Errorf("%w: step %q", ErrUnknownValue, raw)
	}
	return s, nil
}

// ContextType is what kind of encounter the recording turned out to be.
type ContextType string

const (
	ContextConsultation ContextType = "consultation"
	ContextIntervention ContextType = "intervention"
	ContextUnknown      ContextType = "unknown"
)

func (c ContextType) Valid() bool {
	switch c {
	case ContextConsultation, ContextIntervention, ContextUnknown:
		return true
	}
	return false
}

func ParseContext(raw string) (ContextType, error) {
	c := ContextType(raw)
	if !c.Valid() {
		return "", fmt.Errorf("%w: context %q", ErrUnknownValue, raw)
	}
	return c, nil
}
