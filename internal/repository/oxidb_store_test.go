package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/parisxmas/OxiDB/qrform/internal/db"
	"github.com/parisxmas/OxiDB/qrform/internal/oxidb/oxidbtest"
)

func newOxiRepo(t *testing.T) (*OxiSubmissionRepo, *oxidbtest.Server) {
	t.Helper()
	srv := oxidbtest.NewServer(t)
	pool, err := db.NewPool(srv.Host, srv.Port, 2)
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	t.Cleanup(pool.Close)
	r := NewOxiSubmissionRepo(pool)
	if err := r.EnsureIndexes(); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}
	return r, srv
}

func TestOxiRepoAppendListDelete(t *testing.T) {
	r, srv := newOxiRepo(t)
	ctx := context.Background()

	alice, err := r.Append(ctx, map[string]any{"name": "Alice"})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	bob, err := r.Append(ctx, map[string]any{"name": "Bob", "age": 30})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if alice.ID >= bob.ID {
		t.Fatalf("ids not increasing: %s then %s", alice.ID, bob.ID)
	}

	subs, err := r.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(subs) != 2 || subs[0].ID != alice.ID || subs[1].Data["name"] != "Bob" {
		t.Fatalf("unexpected list: %+v", subs)
	}
	if _, ok := srv.Docs(SubmissionsCollection)[0]["_id"]; !ok {
		t.Fatal("expected server to assign _id")
	}

	ok, err := r.DeleteByID(ctx, alice.ID)
	if err != nil || !ok {
		t.Fatalf("delete: ok=%v err=%v", ok, err)
	}
	ok, err = r.DeleteByID(ctx, alice.ID)
	if err != nil || ok {
		t.Fatalf("second delete: ok=%v err=%v", ok, err)
	}
	subs, _ = r.List(ctx)
	if len(subs) != 1 || subs[0].ID != bob.ID {
		t.Fatalf("unexpected list after delete: %+v", subs)
	}
}

func TestOxiRepoWriteFailure(t *testing.T) {
	r, srv := newOxiRepo(t)
	ctx := context.Background()

	srv.FailCommand("insert", "disk full")
	if _, err := r.Append(ctx, map[string]any{"a": 1}); !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	if r.Health() == nil {
		t.Fatal("expected health to report failure")
	}

	srv.FailCommand("insert", "")
	if _, err := r.Append(ctx, map[string]any{"a": 2}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if r.Health() != nil {
		t.Fatal("expected health to clear")
	}
}

func TestOxiRepoReadFailureIsEmpty(t *testing.T) {
	r, srv := newOxiRepo(t)
	ctx := context.Background()
	r.Append(ctx, map[string]any{"a": 1})

	srv.FailCommand("find", "unavailable")
	subs, err := r.List(ctx)
	if err != nil {
		t.Fatalf("list must not fail: %v", err)
	}
	if len(subs) != 0 {
		t.Fatalf("expected empty list, got %d", len(subs))
	}
}
