package health

import "context"

// Pinger checks a backing store (MongoDB, Redis).
type Pinger interface {
	Ping(ctx context.Context) error
}

// LLMChecker checks model provider availability.
type LLMChecker interface {
	HealthCheck(ctx context.Context) error
}
