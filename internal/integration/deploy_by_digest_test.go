package integration

import (
	"context"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/marcus-qen/aivcs/internal/deploy"
	"github.com/marcus-qen/aivcs/internal/domain"
	"github.com/marcus-qen/aivcs/internal/storage"
	"github.com/marcus-qen/aivcs/internal/storage/memstore"
	"github.com/marcus-qen/aivcs/internal/storage/sqlite"
)

var fixedTimestamp = time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)

type backend struct {
	name     string
	registry storage.ReleaseRegistry
	ledger   storage.RunLedger
}

var _ = Describe("deploy.ByDigest across storage backends", func() {
	var backends []backend

	BeforeEach(func() {
		db, err := sqlite.Open(filepath.Join(GinkgoT().TempDir(), "integration.db"))
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() { db.Close() })

		backends = []backend{
			{name: "memstore", registry: memstore.NewRegistry(), ledger: memstore.NewLedger()},
			{name: "sqlite", registry: sqlite.NewRegistry(db), ledger: sqlite.NewLedger(db)},
		}
	})

	It("produces the same golden replay digest for identical deploy inputs, regardless of backend", func() {
		ctx := context.Background()
		when := fixedTimestamp

		var digests []string
		for _, b := range backends {
			digest := domain.Compute([]byte("agent-spec-v1")).String()
			_, err := b.registry.Promote(ctx, "rollout-agent", digest, domain.Release{PromotedBy: "ci"})
			Expect(err).NotTo(HaveOccurred())

			result, err := deploy.ByDigest(ctx, b.registry, b.ledger, "rollout-agent", map[string]any{"prompt": "hello"}, when)
			Expect(err).NotTo(HaveOccurred(), "backend %s", b.name)
			Expect(result.Summary.TotalEvents).To(Equal(uint64(2)))

			digests = append(digests, result.Summary.ReplayDigest)
		}

		Expect(digests[0]).To(Equal(digests[1]), "replay digest must be backend-independent")
	})

	It("refuses to deploy an agent with no promoted release", func() {
		ctx := context.Background()
		for _, b := range backends {
			_, err := deploy.ByDigest(ctx, b.registry, b.ledger, "never-promoted", nil, fixedTimestamp)
			Expect(err).To(HaveOccurred(), "backend %s", b.name)
			Expect(err).To(BeAssignableToTypeOf(&domain.ReleaseConflictError{}))
		}
	})
})
