package metrics

// Metrics holds model usage for a time period.
type Metrics struct {
	completionRequests int64
	tokens             int64
}

// New creates a Metrics snapshot.
func New(requests, tokens int64) Metrics {
	return Metrics{completionRequests: requests, tokens: tokens}
}

// CompletionRequests returns the number of model calls.
func (m Metrics) CompletionRequests() int64 { return m.completionRequests }

// Tokens returns the total tokens consumed.
func (m Metrics) Tokens() int64 { return m.tokens }
