package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/marcus-qen/aivcs/internal/domain"
	"github.com/marcus-qen/aivcs/internal/storage"
)

// Registry is an in-memory, append-only ReleaseRegistry.
type Registry struct {
	mu       sync.Mutex
	releases map[string][]domain.Release
}

// NewRegistry creates an empty in-memory release registry.
func NewRegistry() *Registry {
	return &Registry{releases: make(map[string][]domain.Release)}
}

func (r *Registry) Promote(_ context.Context, agentName, specDigest string, meta domain.Release) (domain.Release, error) {
	if !domain.IsValidHexDigest(specDigest) {
		return domain.Release{}, &domain.InvalidDigestError{Hex: specDigest}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec := meta
	rec.AgentName = agentName
	rec.SpecDigest = specDigest
	rec.CreatedAt = time.Now().UTC()

	r.releases[agentName] = append(r.releases[agentName], rec)
	return rec, nil
}

func (r *Registry) Current(_ context.Context, agentName string) (*domain.Release, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	history := r.releases[agentName]
	if len(history) == 0 {
		return nil, nil
	}
	latest := history[len(history)-1]
	return &latest, nil
}

func (r *Registry) History(_ context.Context, agentName string) ([]domain.Release, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	history := r.releases[agentName]
	out := make([]domain.Release, len(history))
	copy(out, history)
	return out, nil
}

func (r *Registry) Rollback(_ context.Context, agentName string) (domain.Release, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	history, ok := r.releases[agentName]
	if !ok || len(history) == 0 {
		return domain.Release{}, &domain.ReleaseNotFoundError{Agent: agentName}
	}
	if len(history) < 2 {
		return domain.Release{}, &domain.NoPreviousReleaseError{Agent: agentName}
	}

	previous := history[len(history)-2]
	reappended := domain.Release{
		AgentName:    agentName,
		SpecDigest:   previous.SpecDigest,
		VersionLabel: previous.VersionLabel,
		PromotedBy:   previous.PromotedBy,
		Notes:        previous.Notes,
		Environment:  previous.Environment,
		CreatedAt:    time.Now().UTC(),
	}
	r.releases[agentName] = append(history, reappended)
	return reappended, nil
}

var _ storage.ReleaseRegistry = (*Registry)(nil)
