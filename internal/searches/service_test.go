package searches

import (
	"context"
	"reflect"
	"testing"

	"github.com/angelmondragon/storefront/internal/collections"
	"github.com/angelmondragon/storefront/pkg/kv"
)

func newTestService(t *testing.T, backend kv.Store) Service {
	t.Helper()
	store, err := collections.New(collections.Params{KV: backend})
	if err != nil {
		t.Fatalf("collection store: %v", err)
	}
	svc, err := NewService(context.Background(), ServiceParams{Store: store})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestRecordDedupesAndCaps(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, kv.NewMemory())
	ctx := context.Background()

	for _, q := range []string{"rose", "oud", "  ", "cedar", "rose ", "musk", "amber", "vanilla"} {
		svc.Record(ctx, q)
	}
	want := []string{"vanilla", "amber", "musk", "rose", "cedar"}
	if got := svc.List(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestRecordPersistsAndReloadsInOrder(t *testing.T) {
	t.Parallel()

	backend := kv.NewMemory()
	ctx := context.Background()
	first := newTestService(t, backend)
	first.Record(ctx, "rose")
	first.Record(ctx, "oud")

	raw, _, _ := backend.Get(ctx, collections.KeyRecentSearches)
	if raw != `["oud","rose"]` {
		t.Fatalf("unexpected persisted searches %s", raw)
	}
	second := newTestService(t, backend)
	if got := second.List(); !reflect.DeepEqual(got, []string{"oud", "rose"}) {
		t.Fatalf("unexpected reloaded searches %v", got)
	}
}

func TestBlankQueryDoesNotSave(t *testing.T) {
	t.Parallel()

	backend := kv.NewMemory()
	svc := newTestService(t, backend)
	if got := svc.Record(context.Background(), "   "); len(got) != 0 {
		t.Fatalf("expected no searches, got %v", got)
	}
	if len(backend.Keys()) != 0 {
		t.Fatalf("blank query must not be saved")
	}
}
