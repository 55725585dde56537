package evaluator

import (
	"testing"

	"github.com/raykavin/coinalert/pkg/core"
	"github.com/stretchr/testify/require"
)

func above(target float64) core.Condition {
	return core.Condition{Target: target, Direction: core.DirectionAbove}
}

func below(target float64) core.Condition {
	return core.Condition{Target: target, Direction: core.DirectionBelow}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name  string
		price float64
		conds []core.Condition
		want  []int
	}{
		{"above boundary is inclusive", 100, []core.Condition{above(100)}, []int{0}},
		{"above not reached", 99.99, []core.Condition{above(100)}, []int{}},
		{"below reached", 50, []core.Condition{below(100)}, []int{0}},
		{"below boundary is inclusive", 100, []core.Condition{below(100)}, []int{0}},
		{"neither side", 100, []core.Condition{above(150), below(50)}, []int{}},
		{"price between targets", 100, []core.Condition{above(50), below(150)}, []int{0, 1}},
		{"only matching positions", 120, []core.Condition{above(130), above(110), below(90), below(125)}, []int{1, 3}},
		{"empty list", 10, nil, []int{}},
		{"unknown direction never fires", 10, []core.Condition{{Target: 1, Direction: "sideways"}}, []int{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Evaluate(tc.price, tc.conds))
		})
	}
}

func TestEvaluateAlerts(t *testing.T) {
	alerts := []core.Alert{
		{Key: "a", Condition: above(50000)},
		{Key: "b", Condition: below(40000)},
		{Key: "c", Condition: above(51000)},
	}

	require.Equal(t, []int{0, 2}, EvaluateAlerts(51000, alerts))
	require.Equal(t, []int{1}, EvaluateAlerts(39000, alerts))
}
