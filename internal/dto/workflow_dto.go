package dto

import (
	"encoding/json"
	"time"

	"orl-assistant/internal/workflow"
)

// NullableID tells an absent member apart from an explicit null.
type NullableID struct {
	Set   bool
	Value *int64
}

func (n *NullableID) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Value = nil
		return nil
	}
	var v int64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

// WorkflowPatchRequest updates only the members present in the body.
type WorkflowPatchRequest struct {
	CurrentStep     *string    `json:"currentStep"`
	ContextDetected *string    `json:"contextDetected"`
	PatientID       NullableID `json:"patientId"`
	ConsultationID  NullableID `json:"consultationId"`
	InterventionID  NullableID `json:"interventionId"`
	Transcription   *string    `json:"transcription"`
	IsRecording     *bool      `json:"isRecording"`
	IsGenerating    *bool      `json:"isGenerating"`
}

// Apply runs each present member through its setter. Values are checked
// before anything is written, so an unknown step leaves the flow untouched.
func (p *WorkflowPatchRequest) Apply(s *workflow.Store) error {
	var (
		step workflow.Step
		ctx  workflow.ContextType
		err  error
	)
	if p.CurrentStep != nil {
		if step, err = workflow.ParseStep(*p.CurrentStep); err != nil {
			return err
		}
	}
	if p.ContextDetected != nil {
		if ctx, err = workflow.ParseContext(*p.ContextDetected); err != nil {
			return err
		}
	}

	if p.CurrentStep != nil {
		_ = s.SetStep(step)
	}
	if p.ContextDetected != nil {
		_ = s.SetContext(ctx)
	}
	if p.PatientID.Set {
		s.SetPatient(p.PatientID.Value)
	}
	if p.ConsultationID.Set {
		s.SetConsultation(p.ConsultationID.Value)
	}
	if p.InterventionID.Set {
		s.SetIntervention(p.InterventionID.Value)
	}
	if p.Transcription != nil {
		s.SetTranscription(*p.Transcription)
	}
	if p.IsRecording != nil {
		s.SetIsRecording(*p.IsRecording)
	}
	if p.IsGenerating != nil {
		s.SetIsGenerating(*p.IsGenerating)
	}
	return nil
}

type TransitionRequest struct {
	Step string `json:"step" validate:"required"`
}

type WorkflowResponse struct {
	ID        string         `json:"id"`
	StartedAt time.Time      `json:"started_at"`
	State     workflow.State `json:"state"`
}

func NewWorkflowResponse(flow *workflow.Flow) WorkflowResponse {
	return WorkflowResponse{
		ID:        flow.ID.String(),
		StartedAt: flow.StartedAt,
		State:     flow.State(),
	}
}
