package savedquery

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kailas-cloud/plasmidq/internal/db/mongo"
	domsq "github.com/kailas-cloud/plasmidq/internal/domain/savedquery"
	"github.com/kailas-cloud/plasmidq/internal/domain/value"
)

// store is the consumer interface for saved queries (ISP).
type store interface {
	Upsert(ctx context.Context, collection string, filter, update any) (bool, error)
	Find(ctx context.Context, collection string, filter value.Value, limit int64) ([]value.Value, error)
}

// Document field names, shared with the curation tooling that seeds the collection.
const (
	fieldNaturalLanguage = "natural_language_query"
	fieldQuery           = "json_query"
	fieldPremade         = "is_premade"
	fieldCollection      = "target_collection"
	fieldCreatedAt       = "created_at"
	fieldUpdatedAt       = "updated_at"
)

// Repo stores premade queries in a MongoDB collection.
type Repo struct {
	store      store
	collection string
	now        func() time.Time
}

// New creates a saved query repository over the named collection.
func New(s store, collection string) *Repo {
	return &Repo{store: s, collection: collection, now: time.Now}
}

// Save upserts by question text. It reports whether a new document was inserted.
func (r *Repo) Save(ctx context.Context, q domsq.SavedQuery) (bool, error) {
	now := primitive.NewDateTimeFromTime(r.now())
	filter := bson.D{{Key: fieldNaturalLanguage, Value: q.NaturalLanguage()}}
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: fieldNaturalLanguage, Value: q.NaturalLanguage()},
			{Key: fieldQuery, Value: mongo.ToBSON(q.Query())},
			{Key: fieldPremade, Value: true},
			{Key: fieldCollection, Value: q.Collection()},
			{Key: fieldUpdatedAt, Value: now},
		}},
		{Key: "$setOnInsert", Value: bson.D{{Key: fieldCreatedAt, Value: now}}},
	}

	inserted, err := r.store.Upsert(ctx, r.collection, filter, update)
	if err != nil {
		return false, fmt.Errorf("upsert saved query: %w", err)
	}
	return inserted, nil
}

// List returns premade queries. A non-empty search matches the question
// text as a case-insensitive substring.
func (r *Repo) List(ctx context.Context, search string) ([]domsq.SavedQuery, error) {
	members := []value.Member{{Key: fieldPremade, Value: value.Bool(true)}}
	if s := strings.TrimSpace(search); s != "" {
		members = append(members, value.Member{Key: fieldNaturalLanguage, Value: value.Mapping(
			value.Member{Key: "$regex", Value: value.Text(regexp.QuoteMeta(s))},
			value.Member{Key: "$options", Value: value.Text("i")},
		)})
	}

	docs, err := r.store.Find(ctx, r.collection, value.Mapping(members...), 0)
	if err != nil {
		return nil, fmt.Errorf("find saved queries: %w", err)
	}

	out := make([]domsq.SavedQuery, 0, len(docs))
	for _, d := range docs {
		out = append(out, fromDocument(d))
	}
	return out, nil
}

// fromDocument reads a stored document leniently: hand-seeded documents may
// lack any field.
func fromDocument(d value.Value) domsq.SavedQuery {
	var id string
	if v, ok := d.Get("_id"); ok {
		if v.Kind() == value.KindObjectID {
			id = v.ObjectIDHex()
		} else {
			id = v.Text()
		}
	}
	nl, _ := d.Get(fieldNaturalLanguage)
	col, _ := d.Get(fieldCollection)
	q, _ := d.Get(fieldQuery)
	created, _ := d.Get(fieldCreatedAt)
	updated, _ := d.Get(fieldUpdatedAt)
	return domsq.Reconstruct(id, nl.Text(), col.Text(), q, millis(created), millis(updated))
}

func millis(v value.Value) int64 {
	t, err := time.Parse(time.RFC3339, v.Text())
	if err != nil {
		return 0
	}
	return t.UnixMilli()
}
