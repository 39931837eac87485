package indicator

// The helpers below implement the minimum-period formulas of spec.md
// §4.2.2. Every concrete indicator computes its mp through one of these at
// construction time, then treats it as immutable (spec.md §3.4 lifecycle:
// "mp fixed -> evaluated ... no hot reconfiguration").

// Windowed is the mp of a windowed aggregate of period P over one or more
// upstream lines: mp = P + max(input mp) - 1.
func Windowed(period int, inputMPs ...int) int {
	return period + maxOf(inputMPs) - 1
}

// EMASeeded is the mp of a period-P recursive smoothing seeded by an SMA of
// the first P input values: mp = P + input.mp - 1. Identical formula to
// Windowed but named separately since spec.md §4.2.2 calls it out as its
// own case (EMA, Wilder's SMMA, and anything built the same way).
func EMASeeded(period int, inputMP int) int {
	return period + inputMP - 1
}

// Chain is the mp of N stages of recursive smoothing applied back to back,
// each stage i contributing mps[i]: sum(mps) - len(mps) + 1. A
// triple-smoothed EMA with per-stage mp=P three times over gives 3P-2,
// matching spec.md's DEMA/TEMA/TRIX formulas.
func Chain(mps ...int) int {
	sum := 0
	for _, m := range mps {
		sum += m
	}
	return sum - len(mps) + 1
}

// Shifted is the mp of a multi-line construction whose lines are shifted
// forward by `lead` bars relative to the windows that feed them (Ichimoku):
// mp = max(periods) + lead.
func Shifted(lead int, periods ...int) int {
	return maxOf(periods) + lead
}

func maxOf(xs []int) int {
	m := 0
	for _, x := range xs {
		if x > m {
			m = x
		}
	}
	return m
}
