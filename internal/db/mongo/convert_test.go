package mongo

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodrv "go.mongodb.org/mongo-driver/mongo"

	"github.com/kailas-cloud/plasmidq/internal/db"
	"github.com/kailas-cloud/plasmidq/internal/domain/value"
)

func parse(t *testing.T, s string) value.Value {
	t.Helper()
	v, err := value.Parse([]byte(s))
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return v
}

func TestToBSON_KeepsOrderAndTypes(t *testing.T) {
	v := parse(t, `{"$match": {"sequence_length": {"$gt": 10000, "$lt": 3000000000}, "gc": 0.5, "circular": true, "note": null}}`)

	got, ok := ToBSON(v).(bson.D)
	if !ok {
		t.Fatalf("expected bson.D, got %T", ToBSON(v))
	}
	if len(got) != 1 || got[0].Key != "$match" {
		t.Fatalf("unexpected top level %v", got)
	}
	match := got[0].Value.(bson.D)
	keys := []string{"sequence_length", "gc", "circular", "note"}
	for i, k := range keys {
		if match[i].Key != k {
			t.Errorf("key %d = %q, want %q", i, match[i].Key, k)
		}
	}

	rng := match[0].Value.(bson.D)
	if _, ok := rng[0].Value.(int32); !ok {
		t.Errorf("$gt = %T, want int32", rng[0].Value)
	}
	if _, ok := rng[1].Value.(int64); !ok {
		t.Errorf("$lt = %T, want int64", rng[1].Value)
	}
	if f, ok := match[1].Value.(float64); !ok || f != 0.5 {
		t.Errorf("gc = %v (%T)", match[1].Value, match[1].Value)
	}
	if b, ok := match[2].Value.(bool); !ok || !b {
		t.Errorf("circular = %v", match[2].Value)
	}
	if match[3].Value != nil {
		t.Errorf("note = %v, want nil", match[3].Value)
	}
}

func TestToBSON_ExtendedObjectID(t *testing.T) {
	v := parse(t, `{"_id": {"$oid": "654f1a2b3c4d5e6f708192a3"}, "bad": {"$oid": "nothex"}}`)
	d := ToBSON(v).(bson.D)

	id, ok := d[0].Value.(primitive.ObjectID)
	if !ok {
		t.Fatalf("_id = %T, want ObjectID", d[0].Value)
	}
	if id.Hex() != "654f1a2b3c4d5e6f708192a3" {
		t.Errorf("hex = %s", id.Hex())
	}
	if _, ok := d[1].Value.(bson.D); !ok {
		t.Errorf("invalid hex must stay a document, got %T", d[1].Value)
	}
}

func TestPipelineToBSON(t *testing.T) {
	stages := parse(t, `[{"$match": {}}, {"$limit": 10}]`).Items()
	got := PipelineToBSON(stages)
	if len(got) != 2 {
		t.Fatalf("expected 2 stages, got %d", len(got))
	}
	limit := got[1].(bson.D)
	if limit[0].Key != "$limit" || limit[0].Value != int32(10) {
		t.Errorf("stage 1 = %v", limit)
	}
}

func TestFromBSON_Document(t *testing.T) {
	id := primitive.NewObjectID()
	when := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	dec, _ := primitive.ParseDecimal128("12.5")

	doc := bson.D{
		{Key: "_id", Value: id},
		{Key: "gene_name", Value: "blaTEM"},
		{Key: "start", Value: int32(120)},
		{Key: "length", Value: int64(9000000000)},
		{Key: "identity", Value: 99.5},
		{Key: "resistant", Value: true},
		{Key: "created", Value: primitive.NewDateTimeFromTime(when)},
		{Key: "price", Value: dec},
		{Key: "tags", Value: bson.A{"a", int32(1)}},
		{Key: "info", Value: bson.D{{Key: "z", Value: 1.0}, {Key: "a", Value: nil}}},
		{Key: "meta", Value: bson.M{"b": "2", "a": "1"}},
	}
	got := FromBSON(doc)

	want := `{"_id":{"$oid":"` + id.Hex() + `"},"gene_name":"blaTEM","start":120,"length":9000000000,` +
		`"identity":99.5,"resistant":true,"created":"2024-03-01T12:30:00Z","price":12.5,` +
		`"tags":["a",1],"info":{"z":1,"a":null},"meta":{"a":"1","b":"2"}}`
	if s := value.Compact(got); s != want {
		t.Errorf("FromBSON\ngot:  %s\nwant: %s", s, want)
	}
	v, _ := got.Get("_id")
	if v.Kind() != value.KindObjectID {
		t.Errorf("_id kind = %s", v.Kind())
	}
}

func TestFromBSON_NonFinite(t *testing.T) {
	if got := FromBSON(math.Inf(1)); got.Kind() != value.KindText {
		t.Errorf("+Inf kind = %s, want text", got.Kind())
	}
	if got := FromBSON(primitive.Regex{Pattern: "^bla", Options: "i"}); value.Compact(got) != `{"$regex":"^bla","$options":"i"}` {
		t.Errorf("regex = %s", value.Compact(got))
	}
}

func TestRoundTrip_ObjectID(t *testing.T) {
	id := primitive.NewObjectID()
	v := FromBSON(id)
	if back, ok := ToBSON(v).(primitive.ObjectID); !ok || back != id {
		t.Errorf("round trip = %v", ToBSON(v))
	}
}

func TestWrap_TagsServerErrors(t *testing.T) {
	cmdErr := mongodrv.CommandError{Code: 40324, Message: "Unrecognized pipeline stage name: '$mtach'"}
	err := wrap(db.OpAggregate, cmdErr)
	if !errors.Is(err, db.ErrQueryRejected) {
		t.Errorf("server error must be tagged, got %v", err)
	}
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpAggregate {
		t.Errorf("expected db.Error with op, got %v", err)
	}

	err = wrap(db.OpFind, context.DeadlineExceeded)
	if errors.Is(err, db.ErrQueryRejected) {
		t.Error("network and timeout errors are not query errors")
	}
}
