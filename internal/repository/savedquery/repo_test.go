package savedquery

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kailas-cloud/plasmidq/internal/db/mongo"
	domsq "github.com/kailas-cloud/plasmidq/internal/domain/savedquery"
	"github.com/kailas-cloud/plasmidq/internal/domain/value"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	upsertFn func(ctx context.Context, collection string, filter, update any) (bool, error)
	findFn   func(ctx context.Context, collection string, filter value.Value, limit int64) ([]value.Value, error)
}

func (m *mockStore) Upsert(ctx context.Context, collection string, filter, update any) (bool, error) {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, collection, filter, update)
	}
	return false, nil
}

func (m *mockStore) Find(ctx context.Context, collection string, filter value.Value, limit int64) ([]value.Value, error) {
	if m.findFn != nil {
		return m.findFn(ctx, collection, filter, limit)
	}
	return nil, nil
}

func field(d bson.D, key string) any {
	for _, e := range d {
		if e.Key == key {
			return e.Value
		}
	}
	return nil
}

func TestSave_UpsertsByQuestion(t *testing.T) {
	var gotCol string
	var gotFilter, gotUpdate bson.D
	ms := &mockStore{upsertFn: func(_ context.Context, col string, filter, update any) (bool, error) {
		gotCol = col
		gotFilter = filter.(bson.D)
		gotUpdate = update.(bson.D)
		return true, nil
	}}
	repo := New(ms, "queries")
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }

	q, err := domsq.New("Genes conferring resistance to ampicillin", "genes",
		`[{"$match": {"resistance_info.resistance_to": "Ampicillin"}}]`)
	if err != nil {
		t.Fatal(err)
	}
	inserted, err := repo.Save(context.Background(), q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !inserted {
		t.Error("expected inserted")
	}
	if gotCol != "queries" {
		t.Errorf("collection = %q", gotCol)
	}
	if field(gotFilter, "natural_language_query") != "Genes conferring resistance to ampicillin" {
		t.Errorf("filter = %v", gotFilter)
	}

	set := field(gotUpdate, "$set").(bson.D)
	if field(set, "is_premade") != true || field(set, "target_collection") != "genes" {
		t.Errorf("$set = %v", set)
	}
	stages, ok := field(set, "json_query").(bson.A)
	if !ok || len(stages) != 1 {
		t.Fatalf("json_query = %#v, want stored as a BSON array", field(set, "json_query"))
	}
	if field(set, "updated_at") != primitive.NewDateTimeFromTime(now) {
		t.Errorf("updated_at = %v", field(set, "updated_at"))
	}

	onInsert := field(gotUpdate, "$setOnInsert").(bson.D)
	if field(onInsert, "created_at") != primitive.NewDateTimeFromTime(now) {
		t.Errorf("$setOnInsert = %v", onInsert)
	}
	if field(set, "created_at") != nil {
		t.Error("created_at must not be overwritten on update")
	}
}

func TestSave_Error(t *testing.T) {
	ms := &mockStore{upsertFn: func(context.Context, string, any, any) (bool, error) {
		return false, errors.New("not primary")
	}}
	q, _ := domsq.New("q", "genes", `[]`)
	if _, err := New(ms, "queries").Save(context.Background(), q); err == nil {
		t.Fatal("expected error")
	}
}

func TestList_Filter(t *testing.T) {
	var got value.Value
	ms := &mockStore{findFn: func(_ context.Context, _ string, filter value.Value, _ int64) ([]value.Value, error) {
		got = filter
		return nil, nil
	}}
	repo := New(ms, "queries")

	if _, err := repo.List(context.Background(), ""); err != nil {
		t.Fatal(err)
	}
	if value.Compact(got) != `{"is_premade":true}` {
		t.Errorf("filter = %s", value.Compact(got))
	}

	if _, err := repo.List(context.Background(), "  bla(TEM)+ "); err != nil {
		t.Fatal(err)
	}
	want := `{"is_premade":true,"natural_language_query":{"$regex":"bla\\(TEM\\)\\+","$options":"i"}}`
	if value.Compact(got) != want {
		t.Errorf("filter = %s\nwant %s", value.Compact(got), want)
	}
}

func TestList_DecodesDocuments(t *testing.T) {
	id := primitive.NewObjectID()
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	doc := mongo.FromBSON(bson.D{
		{Key: "_id", Value: id},
		{Key: "natural_language_query", Value: "Plasmids in Klebsiella"},
		{Key: "json_query", Value: bson.A{bson.D{{Key: "$match", Value: bson.D{{Key: "genus", Value: "Klebsiella"}}}}}},
		{Key: "is_premade", Value: true},
		{Key: "target_collection", Value: "hosts"},
		{Key: "created_at", Value: primitive.NewDateTimeFromTime(created)},
	})
	sparse := mongo.FromBSON(bson.D{{Key: "_id", Value: "legacy-1"}, {Key: "natural_language_query", Value: "old"}})

	ms := &mockStore{findFn: func(context.Context, string, value.Value, int64) ([]value.Value, error) {
		return []value.Value{doc, sparse}, nil
	}}
	got, err := New(ms, "queries").List(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 queries, got %d", len(got))
	}
	if got[0].ID() != id.Hex() || got[0].Collection() != "hosts" || got[0].NaturalLanguage() != "Plasmids in Klebsiella" {
		t.Errorf("first = %+v", got[0])
	}
	if value.Compact(got[0].Query()) != `[{"$match":{"genus":"Klebsiella"}}]` {
		t.Errorf("query = %s", value.Compact(got[0].Query()))
	}
	if got[0].CreatedAt() != created.UnixMilli() || got[0].UpdatedAt() != 0 {
		t.Errorf("timestamps = %d / %d", got[0].CreatedAt(), got[0].UpdatedAt())
	}
	if got[1].ID() != "legacy-1" || got[1].Collection() != "" || !got[1].Query().IsNull() {
		t.Errorf("sparse = %+v", got[1])
	}
}
