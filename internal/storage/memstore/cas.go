// Package memstore provides in-memory CasStore, RunLedger, and
// ReleaseRegistry implementations used by unit tests and by components
// that do not require durability.
package memstore

import (
	"context"
	"sync"

	"github.com/marcus-qen/aivcs/internal/domain"
	"github.com/marcus-qen/aivcs/internal/storage"
)

// Cas is an in-memory CasStore.
type Cas struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewCas creates an empty in-memory CAS.
func NewCas() *Cas {
	return &Cas{objects: make(map[string][]byte)}
}

func (c *Cas) Put(_ context.Context, b []byte) (domain.Digest, error) {
	digest := domain.Compute(b)
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.objects[digest.String()]; !exists {
		cp := make([]byte, len(b))
		copy(cp, b)
		c.objects[digest.String()] = cp
	}
	return digest, nil
}

func (c *Cas) Get(_ context.Context, digest domain.Digest) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.objects[digest.String()]
	if !ok {
		return nil, &storage.NotFoundError{Digest: digest}
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

func (c *Cas) Exists(_ context.Context, digest domain.Digest) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.objects[digest.String()]
	return ok, nil
}

var _ storage.CasStore = (*Cas)(nil)
