package execution

import (
	"context"

	"github.com/kailas-cloud/plasmidq/internal/domain/query"
	"github.com/kailas-cloud/plasmidq/internal/domain/value"
)

// Executor runs queries against the plasmid database.
type Executor interface {
	Aggregate(ctx context.Context, collection string, pipeline []value.Value) ([]value.Value, error)
	Find(ctx context.Context, collection string, filter value.Value, limit int64) ([]value.Value, error)
}

// SessionStore remembers the last query a session displayed.
type SessionStore interface {
	SaveCurrent(ctx context.Context, sessionID string, req query.Request) error
	Current(ctx context.Context, sessionID string) (query.Request, error)
	Clear(ctx context.Context, sessionID string) error
}
