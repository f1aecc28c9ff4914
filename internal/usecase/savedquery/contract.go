package savedquery

import (
	"context"

	domsq "github.com/kailas-cloud/plasmidq/internal/domain/savedquery"
)

// Repository persists premade queries.
type Repository interface {
	Save(ctx context.Context, q domsq.SavedQuery) (inserted bool, err error)
	List(ctx context.Context, search string) ([]domsq.SavedQuery, error)
}
