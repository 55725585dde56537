// Package evaluator decides which price conditions a quote satisfies.
package evaluator

import (
	"github.com/samber/lo"

	"github.com/raykavin/coinalert/pkg/core"
)

// Satisfied reports whether price meets one condition. Both directions are boundary
// inclusive: above fires at price >= target, below fires at price <= target.
func Satisfied(price float64, cond core.Condition) bool {
	switch cond.Direction {
	case core.DirectionAbove:
		return price >= cond.Target
	case core.DirectionBelow:
		return price <= cond.Target
	default:
		return false
	}
}

// Evaluate returns, in ascending order, the positions of conds satisfied by price.
// Conditions are independent of each other and all satisfied ones are reported.
func Evaluate(price float64, conds []core.Condition) []int {
	satisfied := make([]int, 0)
	for i, cond := range conds {
		if Satisfied(price, cond) {
			satisfied = append(satisfied, i)
		}
	}
	return satisfied
}

// EvaluateAlerts is Evaluate over stored alerts; positions index into alerts.
func EvaluateAlerts(price float64, alerts []core.Alert) []int {
	return Evaluate(price, lo.Map(alerts, func(a core.Alert, _ int) core.Condition { return a.Condition }))
}
