package budget

// Budget is a token budget snapshot for one period.
type Budget struct {
	tokensLimit int64
	tokensUsed  int64
	resetsAt    int64 // unix millis, converted to ISO 8601 at transport layer
}

// New creates a Budget snapshot. limit 0 means unlimited.
func New(limit, used, resetsAt int64) Budget {
	return Budget{tokensLimit: limit, tokensUsed: used, resetsAt: resetsAt}
}

// TokensLimit returns the token cap (0 = unlimited).
func (b Budget) TokensLimit() int64 { return b.tokensLimit }

// TokensRemaining returns tokens left, -1 when unlimited.
func (b Budget) TokensRemaining() int64 {
	if b.tokensLimit == 0 {
		return -1
	}
	return max(b.tokensLimit-b.tokensUsed, 0)
}

// IsExhausted reports whether the budget is spent.
func (b Budget) IsExhausted() bool {
	return b.tokensLimit > 0 && b.tokensUsed >= b.tokensLimit
}

// ResetsAt returns the reset timestamp (unix millis), 0 if it never resets.
func (b Budget) ResetsAt() int64 { return b.resetsAt }
