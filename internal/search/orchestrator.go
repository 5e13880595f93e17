package search

import (
	"context"

	"videosearch-backend/internal/models"
)

// Orchestrator selects a backend per request. AI mode always takes the
// AI mapper (which carries its own fallback tier); keyword mode takes
// the remote adapter when a remote store is configured, else the local
// engine.
type Orchestrator struct {
	local  *LocalEngine
	remote *RemoteAdapter // nil when no remote store is configured
	ai     *AIMapper
}

func NewOrchestrator(local *LocalEngine, remote *RemoteAdapter, ai *AIMapper) *Orchestrator {
	return &Orchestrator{local: local, remote: remote, ai: ai}
}

// Dispatch runs one query against the selected backend. Errors are only
// possible on the AI path (the missing-knowledge-base case); keyword
// backends degrade to empty results internally.
func (o *Orchestrator) Dispatch(ctx context.Context, query string, mode models.SearchMode) ([]models.SearchResult, error) {
	if mode == models.ModeAI {
		return o.ai.Search(ctx, query)
	}
	if o.remote != nil {
		return o.remote.Search(ctx, query), nil
	}
	return o.local.Search(ctx, query), nil
}

// RemoteConfigured reports whether keyword queries go to the remote
// store.
func (o *Orchestrator) RemoteConfigured() bool {
	return o.remote != nil
}
