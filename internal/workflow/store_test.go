package workflow

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialState(t *testing.T) {
	st := NewStore().State()

	assert.Equal(t, StepPatientSelection, st.CurrentStep)
	assert.Equal(t, ContextUnknown, st.ContextDetected)
	assert.Nil(t, st.PatientID)
	assert.Nil(t, st.ConsultationID)
	assert.Nil(t, st.InterventionID)
	assert.Empty(t, st.Transcription)
	assert.False(t, st.IsRecording)
	assert.False(t, st.IsGenerating)
}

func TestSettersTouchOnlyTheirField(t *testing.T) {
	s := NewStore()

	s.SetPatient(ID(7))
	s.SetConsultation(ID(3))

	st := s.State()
	require.NotNil(t, st.PatientID)
	require.NotNil(t, st.ConsultationID)
	assert.Equal(t, int64(7), *st.PatientID)
	assert.Equal(t, int64(3), *st.ConsultationID)
	assert.Nil(t, st.InterventionID)
	assert.Equal(t, StepPatientSelection, st.CurrentStep)

	s.SetTranscription("Patient reports otalgia")
	s.SetIsGenerating(true)
	require.NoError(t, s.SetContext(ContextIntervention))

	st = s.State()
	assert.Equal(t, int64(7), *st.PatientID)
	assert.Equal(t, "Patient reports otalgia", st.Transcription)
	assert.True(t, st.IsGenerating)
	assert.False(t, st.IsRecording)
	assert.Equal(t, ContextIntervention, st.ContextDetected)

	s.SetPatient(nil)
	assert.Nil(t, s.State().PatientID)
	assert.Equal(t, int64(3), *s.State().ConsultationID)
}

func TestRecordingThenReset(t *testing.T) {
	s := NewStore()

	require.NoError(t, s.SetStep(StepRecording))
	s.SetIsRecording(true)
	s.SetIntervention(ID(12))

	st := s.State()
	assert.Equal(t, StepRecording, st.CurrentStep)
	assert.True(t, st.IsRecording)

	s.Reset()
	assert.Equal(t, InitialState(), s.State())
}

func TestSetStepIsPermissive(t *testing.T) {
	s := NewStore()

	require.NoError(t, s.SetStep(StepValidation))
	assert.Equal(t, StepValidation, s.State().CurrentStep)

	require.NoError(t, s.SetStep(StepRecording))
	assert.Equal(t, StepRecording, s.State().CurrentStep)
}

func TestUnknownValuesAreRejected(t *testing.T) {
	s := NewStore()

	err := s.SetStep("billing")
	assert.ErrorIs(t, err, ErrUnknownValue)
	err = s.SetContext("surgery")
	assert.ErrorIs(t, err, ErrUnknownValue)

	assert.Equal(t, InitialState(), s.State())

	_, err = ParseStep("editing")
	assert.NoError(t, err)
	_, err = ParseContext("")
	assert.ErrorIs(t, err, ErrUnknownValue)
}

func TestStateIsACopy(t *testing.T) {
	s := NewStore()
	s.SetPatient(ID(1))

	st := s.State()
	*st.PatientID = 99

	assert.Equal(t, int64(1), *s.State().PatientID)

	id := ID(5)
	s.SetConsultation(id)
	*id = 6
	assert.Equal(t, int64(5), *s.State().ConsultationID)
}

func TestAdvanceAndBack(t *testing.T) {
	s := NewStore()

	for _, want := range Steps()[1:] {
		st, err := s.Advance()
		require.NoError(t, err)
		assert.Equal(t, want, st.CurrentStep)
	}

	_, err := s.Advance()
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, StepValidation, s.State().CurrentStep)

	st, err := s.Back()
	require.NoError(t, err)
	assert.Equal(t, StepEditing, st.CurrentStep)

	s.Reset()
	_, err = s.Back()
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from Step
		to   Step
		ok   bool
	}{
		{"next step", StepRecording, StepTranscription, true},
		{"same step", StepGeneration, StepGeneration, true},
		{"back to editing", StepValidation, StepEditing, true},
		{"back to start", StepValidation, StepPatientSelection, true},
		{"skip ahead", StepPatientSelection, StepGeneration, false},
		{"skip to validation", StepTranscription, StepValidation, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			require.NoError(t, s.SetStep(tt.from))

			st, err := s.TransitionTo(tt.to)
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, tt.to, st.CurrentStep)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidTransition)
			assert.Equal(t, tt.from, s.State().CurrentStep)
		})
	}

	_, err := NewStore().TransitionTo("nowhere")
	assert.ErrorIs(t, err, ErrUnknownValue)
}

func TestSubscribe(t *testing.T) {
	s := NewStore()

	var changes []Change
	unsubscribe := s.Subscribe(func(c Change) { changes = append(changes, c) })

	require.NoError(t, s.SetStep(StepRecording))
	s.SetIsRecording(true)
	_, err := s.Advance()
	require.NoError(t, err)

	require.Len(t, changes, 3)
	assert.Equal(t, "setStep", changes[0].Action)
	assert.Equal(t, StepPatientSelection, changes[0].Prev.CurrentStep)
	assert.Equal(t, StepRecording, changes[0].Next.CurrentStep)
	assert.Equal(t, "setIsRecording", changes[1].Action)
	assert.Equal(t, StepTranscription, changes[2].Next.CurrentStep)

	require.NoError(t, s.SetStep(StepValidation))
	_, err = s.Advance()
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Len(t, changes, 4, "refused transitions are not reported")

	unsubscribe()
	s.Reset()
	assert.Len(t, changes, 4)
}

func TestListenerMayReadStore(t *testing.T) {
	s := NewStore()

	var seen Step
	s.Subscribe(func(Change) { seen = s.State().CurrentStep })
	require.NoError(t, s.SetStep(StepEditing))

	assert.Equal(t, StepEditing, seen)
}

func TestConcurrentSetters(t *testing.T) {
	s := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.SetPatient(ID(int64(i)))
			s.SetTranscription("chunk")
			_ = s.State()
		}(i)
	}
	wg.Wait()

	st := s.State()
	require.NotNil(t, st.PatientID)
	assert.Equal(t, "chunk", st.Transcription)
}

func TestListenersSeeChangesInApplyOrder(t *testing.T) {
	s := NewStore()

	var changes []Change
	s.Subscribe(func(c Change) { changes = append(changes, c) })

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.SetTranscription(fmt.Sprintf("chunk-%d", i))
		}(i)
	}
	wg.Wait()

	require.Len(t, changes, 100)
	assert.Equal(t, "", changes[0].Prev.Transcription)
	for i := 1; i < len(changes); i++ {
		require.Equal(t, changes[i-1].Next.Transcription, changes[i].Prev.Transcription,
			"change %d must follow change %d", i, i-1)
	}
	assert.Equal(t, changes[len(changes)-1].Next.Transcription, s.State().Transcription)
}
