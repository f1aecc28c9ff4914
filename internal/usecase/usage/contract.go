package usage

import domusage "github.com/kailas-cloud/plasmidq/internal/domain/usage"

// BudgetReader provides read-only access to token budget state.
type BudgetReader interface {
	Window(period domusage.Period) domusage.Window
}
