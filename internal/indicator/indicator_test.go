package indicator_test

import (
	"testing"

	"backline/internal/indicator"

	"github.com/stretchr/testify/assert"
)

func TestStep_DispatchesByPhase(t *testing.T) {
	var got string
	run := func(out, mp int) string {
		got = ""
		indicator.Step(out, mp,
			func() { got = "prenext" },
			func() { got = "nextstart" },
			func() { got = "next" },
		)
		return got
	}

	assert.Equal(t, "prenext", run(0, 5))
	assert.Equal(t, "prenext", run(3, 5))
	assert.Equal(t, "nextstart", run(4, 5))
	assert.Equal(t, "next", run(5, 5))
	assert.Equal(t, "next", run(100, 5))
}

func TestRunOnce_SplitsRanges(t *testing.T) {
	type call struct {
		phase      string
		start, end int
	}
	var calls []call

	indicator.RunOnce(5, 10,
		func(s, e int) { calls = append(calls, call{"preonce", s, e}) },
		func(s, e int) { calls = append(calls, call{"oncestart", s, e}) },
		func(s, e int) { calls = append(calls, call{"once", s, e}) },
	)

	assert.Equal(t, []call{
		{"preonce", 0, 4},
		{"oncestart", 4, 5},
		{"once", 5, 10},
	}, calls)
}

func TestRunOnce_ShortHistoryNeverReachesValid(t *testing.T) {
	var calls []string
	indicator.RunOnce(20, 3,
		func(s, e int) { calls = append(calls, "preonce") },
		func(s, e int) { calls = append(calls, "oncestart") },
		func(s, e int) { calls = append(calls, "once") },
	)
	assert.Equal(t, []string{"preonce"}, calls)
}

func TestMinPeriod_Formulas(t *testing.T) {
	assert.Equal(t, 30, indicator.Windowed(30, 1))
	assert.Equal(t, 30, indicator.EMASeeded(30, 1))
	assert.Equal(t, 3*10-2, indicator.Chain(10, 10, 10))
	assert.Equal(t, 78, indicator.Shifted(26, 9, 26, 52))
}
