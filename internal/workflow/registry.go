package workflow

import (
	"context"
	"errors"
	"time"

	"orl-assistant/internal/pkg/logger"
	"orl-assistant/pkg/events"

	"github.com/google/uuid"
)

var ErrFlowNotFound = errors.New("workflow: flow not found")

// Flow is one consultation in progress.
type Flow struct {
	ID        uuid.UUID `json:"id"`
	StartedAt time.Time `json:"started_at"`
	*Store    `json:"-"`
}

// Repository keeps live flows between requests.
type Repository interface {
	Save(flow *Flow)
	Get(id string) (*Flow, bool)
	Delete(id string)
	List() []*Flow
}

// Registry hands out one Store per consultation and reports their progress
// on the event bus.
type Registry struct {
	repo      Repository
	publisher events.Publisher
	logger    logger.ILogger
}

func NewRegistry(repo Repository, publisher events.Publisher, log logger.ILogger) *Registry {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Registry{repo: repo, publisher: publisher, logger: log}
}

func (r *Registry) Start() *Flow {
	flow := &Flow{
		ID:        uuid.New(),
		StartedAt: time.Now().UTC(),
		Store:     NewStore(),
	}
	flow.Subscribe(func(c Change) { r.onChange(flow.ID, c) })
	r.repo.Save(flow)

	r.logger.Info("WORKFLOW", "Consultation flow started", map[string]interface{}{"flow_id": flow.ID.String()})
	return flow
}

func (r *Registry) Get(id string) (*Flow, error) {
	flow, ok := r.repo.Get(id)
	if !ok {
		return nil, ErrFlowNotFound
	}
	// Saving again slides the expiry while the consultation is being worked on.
	r.repo.Save(flow)
	return flow, nil
}

func (r *Registry) List() []*Flow {
	return r.repo.List()
}

// Finish resets the flow and forgets it.
func (r *Registry) Finish(id string) error {
	flow, ok := r.repo.Get(id)
	if !ok {
		return ErrFlowNotFound
	}
	flow.Reset()
	r.repo.Delete(id)
	r.publish(events.TypeWorkflowFinish, map[string]interface{}{"flow_id": id})
	return nil
}

func (r *Registry) onChange(id uuid.UUID, c Change) {
	switch {
	case c.Action == "reset":
		r.publish(events.TypeWorkflowReset, map[string]interface{}{
			"flow_id": id.String(),
			"from":    string(c.Prev.CurrentStep),
		})
	case c.Prev.CurrentStep != c.Next.CurrentStep:
		r.publish(events.TypeWorkflowStep, map[string]interface{}{
			"flow_id": id.String(),
			"from":    string(c.Prev.CurrentStep),
			"to":      string(c.Next.CurrentStep),
		})
	}
}

func (r *Registry) publish(eventType string, data map[string]interface{}) {
	if r.publisher == nil {
		return
	}
	if err := r.publisher.Publish(context.Background(), events.New(eventType, data)); err != nil {
		r.logger.Warn("WORKFLOW", "Failed to publish workflow event", map[string]interface{}{
			"event": eventType,
			"error": err.Error(),
		})
	}
}
