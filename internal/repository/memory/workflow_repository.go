package memory

import (
	"time"

	"orl-assistant/internal/workflow"

	"github.com/patrickmn/go-cache"
)

// WorkflowRepository keeps live consultation flows. A flow untouched for
// 12 hours is dropped; expired items are purged every 30 minutes.
type WorkflowRepository struct {
	cache *cache.Cache
}

func NewWorkflowRepository() *WorkflowRepository {
	return &WorkflowRepository{
		cache: cache.New(12*time.Hour, 30*time.Minute),
	}
}

func (r *WorkflowRepository) Save(flow *workflow.Flow) {
	r.cache.Set(flow.ID.String(), flow, cache.DefaultExpiration)
}

func (r *WorkflowRepository) Get(id string) (*workflow.Flow, bool) {
	if x, found := r.cache.Get(id); found {
		return x.(*workflow.Flow), true
	}
	return nil, false
}

func (r *WorkflowRepository) Delete(id string) {
	r.cache.Delete(id)
}

func (r *WorkflowRepository) List() []*workflow.Flow {
	items := r.cache.Items()
	flows := make([]*workflow.Flow, 0, len(items))
	for _, item := range items {
		if flow, ok := item.Object.(*workflow.Flow); ok {
			flows = append(flows, flow)
		}
	}
	return flows
}
