package diag

import "context"

// DefaultMaxSteps bounds parser and translator iterations per call.
const DefaultMaxSteps = 1_000_000

// ctxCheckInterval is how many steps pass between deadline checks.
const ctxCheckInterval = 1024

// Budget counts work units across a whole translation, including nested
// re-entrant ones. A nil Budget never runs out.
type Budget struct {
	ctx  context.Context
	max  int
	used int
}

func NewBudget(ctx context.Context, max int) *Budget {
	if ctx == nil {
		ctx = context.Background()
	}
	if max <= 0 {
		max = DefaultMaxSteps
	}
	return &Budget{ctx: ctx, max: max}
}

// Step consumes one unit, raising a budget error when the cap or the
// context deadline is hit.
func (b *Budget) Step() {
	if b == nil {
		return
	}
	b.used++
	if b.used > b.max {
		Fail(KindBudget, CodeStuck, -1)
	}
	if b.used%ctxCheckInterval == 0 && b.ctx.Err() != nil {
		Fail(KindBudget, CodeDeadline, -1)
	}
}

// Check raises a budget error if the context is already done.
func (b *Budget) Check() {
	if b != nil && b.ctx.Err() != nil {
		Fail(KindBudget, CodeDeadline, -1)
	}
}

// Used reports how many steps have been consumed.
func (b *Budget) Used() int {
	if b == nil {
		return 0
	}
	return b.used
}
