package memstore

import (
	"context"
	"testing"

	"github.com/marcus-qen/aivcs/internal/domain"
	"github.com/marcus-qen/aivcs/internal/storage"
)

func TestCasPutIsIdempotent(t *testing.T) {
	ctx := context.Background()
	cas := NewCas()
	b := []byte("blob contents")

	d1, err := cas.Put(ctx, b)
	if err != nil {
		t.Fatal(err)
	}
	d2, err := cas.Put(ctx, b)
	if err != nil {
		t.Fatal(err)
	}
	if d1 != d2 {
		t.Fatalf("expected equal digests, got %s and %s", d1, d2)
	}
	if len(cas.objects) != 1 {
		t.Fatalf("expected exactly one stored blob, got %d", len(cas.objects))
	}
}

func TestCasGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	cas := NewCas()
	b := []byte("round trip bytes")

	digest, err := cas.Put(ctx, b)
	if err != nil {
		t.Fatal(err)
	}
	got, err := cas.Get(ctx, digest)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(b) {
		t.Fatalf("expected %q, got %q", b, got)
	}
}

func TestCasGetMissingReturnsNotFound(t *testing.T) {
	ctx := context.Background()
	cas := NewCas()
	_, err := cas.Get(ctx, domain.Compute([]byte("never stored")))
	if _, ok := err.(*storage.NotFoundError); !ok {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestCasExists(t *testing.T) {
	ctx := context.Background()
	cas := NewCas()
	b := []byte("exists check")

	digest, _ := cas.Put(ctx, b)
	ok, err := cas.Exists(ctx, digest)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected blob to exist after put")
	}

	missing, _ := cas.Exists(ctx, domain.Compute([]byte("absent")))
	if missing {
		t.Fatal("expected absent blob to report false")
	}
}

func TestCasEmptyBlob(t *testing.T) {
	ctx := context.Background()
	cas := NewCas()
	digest, err := cas.Put(ctx, []byte{})
	if err != nil {
		t.Fatal(err)
	}
	got, err := cas.Get(ctx, digest)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty blob, got %d bytes", len(got))
	}
}
