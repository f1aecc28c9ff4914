package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/plasmidq/internal/domain"
	"github.com/kailas-cloud/plasmidq/internal/domain/query"
	"github.com/kailas-cloud/plasmidq/internal/domain/value"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetFn    func(ctx context.Context, key string, fields map[string]string, ttl time.Duration) error
	hgetAllFn func(ctx context.Context, key string) (map[string]string, error)
	delFn     func(ctx context.Context, key string) error
}

func (m *mockStore) HSetWithTTL(ctx context.Context, key string, fields map[string]string, ttl time.Duration) error {
	if m.hsetFn != nil {
		return m.hsetFn(ctx, key, fields, ttl)
	}
	return nil
}

func (m *mockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if m.hgetAllFn != nil {
		return m.hgetAllFn(ctx, key)
	}
	return map[string]string{}, nil
}

func (m *mockStore) Del(ctx context.Context, key string) error {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return nil
}

func testRequest(t *testing.T) query.Request {
	t.Helper()
	req, err := query.ParseRequest("genes", `[{"$match": {"product": {"$regex": "ctx", "$options": "i"}}}]`)
	if err != nil {
		t.Fatal(err)
	}
	return req
}

func TestSaveCurrent(t *testing.T) {
	var gotKey string
	var gotFields map[string]string
	var gotTTL time.Duration
	ms := &mockStore{
		hsetFn: func(_ context.Context, key string, fields map[string]string, ttl time.Duration) error {
			gotKey, gotFields, gotTTL = key, fields, ttl
			return nil
		},
	}
	repo := New(ms, 24*time.Hour)
	repo.now = func() time.Time { return time.UnixMilli(1700000000000) }

	if err := repo.SaveCurrent(context.Background(), "abc", testRequest(t)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotKey != "plasmidq:session:abc" {
		t.Errorf("key = %q", gotKey)
	}
	if gotFields["collection"] != "genes" || gotFields["mode"] != "aggregate" {
		t.Errorf("fields = %v", gotFields)
	}
	if gotFields["query"] != `[{"$match":{"product":{"$regex":"ctx","$options":"i"}}}]` {
		t.Errorf("query = %s", gotFields["query"])
	}
	if gotFields["updated_at"] != "1700000000000" {
		t.Errorf("updated_at = %s", gotFields["updated_at"])
	}
	if gotTTL != 24*time.Hour {
		t.Errorf("ttl = %s, want sliding 24h", gotTTL)
	}
}

func TestSaveCurrent_StoreError(t *testing.T) {
	ms := &mockStore{hsetFn: func(context.Context, string, map[string]string, time.Duration) error {
		return errors.New("conn refused")
	}}
	if err := New(ms, time.Hour).SaveCurrent(context.Background(), "abc", testRequest(t)); err == nil {
		t.Fatal("expected error")
	}
}

func TestCurrent_RoundTrip(t *testing.T) {
	stored := map[string]string{}
	ms := &mockStore{
		hsetFn: func(_ context.Context, _ string, fields map[string]string, _ time.Duration) error {
			for k, v := range fields {
				stored[k] = v
			}
			return nil
		},
		hgetAllFn: func(context.Context, string) (map[string]string, error) { return stored, nil },
	}
	repo := New(ms, time.Hour)
	want := testRequest(t)
	if err := repo.SaveCurrent(context.Background(), "s1", want); err != nil {
		t.Fatal(err)
	}

	got, err := repo.Current(context.Background(), "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Collection() != want.Collection() || !got.Query().Equal(want.Query()) {
		t.Errorf("got %s %s", got.Collection(), value.Compact(got.Query()))
	}
}

func TestCurrent_Missing(t *testing.T) {
	repo := New(&mockStore{}, time.Hour)
	_, err := repo.Current(context.Background(), "nobody")
	if !errors.Is(err, domain.ErrNoCurrentQuery) {
		t.Fatalf("expected ErrNoCurrentQuery, got %v", err)
	}
}

func TestCurrent_Corrupt(t *testing.T) {
	ms := &mockStore{hgetAllFn: func(context.Context, string) (map[string]string, error) {
		return map[string]string{"collection": "genes", "query": "{broken"}, nil
	}}
	_, err := New(ms, time.Hour).Current(context.Background(), "s1")
	if err == nil || errors.Is(err, domain.ErrNoCurrentQuery) {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestClear(t *testing.T) {
	var deleted string
	ms := &mockStore{delFn: func(_ context.Context, key string) error {
		deleted = key
		return nil
	}}
	if err := New(ms, time.Hour).Clear(context.Background(), "s1"); err != nil {
		t.Fatal(err)
	}
	if deleted != "plasmidq:session:s1" {
		t.Errorf("deleted %q", deleted)
	}
}
