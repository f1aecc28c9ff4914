package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kailas-cloud/plasmidq/internal/db"
	"github.com/kailas-cloud/plasmidq/internal/domain/value"
)

// Aggregate runs a pipeline against a collection and returns the documents
// in cursor order.
func (c *Client) Aggregate(ctx context.Context, collection string, pipeline []value.Value) ([]value.Value, error) {
	cur, err := c.Collection(collection).Aggregate(ctx, PipelineToBSON(pipeline))
	if err != nil {
		return nil, wrap(db.OpAggregate, err)
	}
	return drain(ctx, cur)
}

// Find runs a filter query. limit <= 0 returns every match.
func (c *Client) Find(ctx context.Context, collection string, filter value.Value, limit int64) ([]value.Value, error) {
	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(limit)
	}

	f := ToBSON(filter)
	if f == nil {
		f = bson.D{}
	}

	cur, err := c.Collection(collection).Find(ctx, f, opts)
	if err != nil {
		return nil, wrap(db.OpFind, err)
	}
	return drain(ctx, cur)
}

func drain(ctx context.Context, cur *mongo.Cursor) ([]value.Value, error) {
	var docs []bson.D
	if err := cur.All(ctx, &docs); err != nil {
		return nil, wrap(db.OpDecode, err)
	}
	out := make([]value.Value, len(docs))
	for i, d := range docs {
		out[i] = FromBSON(d)
	}
	return out, nil
}

// Upsert applies update to the first document matching filter, inserting
// one when nothing matches. It reports whether a document was inserted.
func (c *Client) Upsert(ctx context.Context, collection string, filter, update any) (bool, error) {
	res, err := c.Collection(collection).UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return false, &db.Error{Op: db.OpUpdate, Err: err}
	}
	return res.UpsertedCount > 0, nil
}

// wrap tags server-side refusals so callers can tell a bad query from an
// unreachable database.
func wrap(op string, err error) error {
	var se mongo.ServerError
	if errors.As(err, &se) {
		err = fmt.Errorf("%w: %w", db.ErrQueryRejected, err)
	}
	return &db.Error{Op: op, Err: err}
}
