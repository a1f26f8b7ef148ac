// Package aggregate implements Component F: it turns the coalition cost
// map produced by internal/coalition into one uptime-weighted Shapley
// value per operator, normalized to a share of the total.
package aggregate

import (
	"math/bits"
	"sort"

	"github.com/doublezerofoundation/network-shapley/internal/coalition"
	"github.com/doublezerofoundation/network-shapley/internal/decimalx"
	"github.com/doublezerofoundation/network-shapley/internal/model"
)

// Result is one operator's Shapley value and its share of the total,
// spec.md section 6's core API output shape.
type Result struct {
	Operator string
	Value    decimalx.Decimal
	Share    decimalx.Decimal
}

// Compute implements spec.md section 4.6: each coalition's raw cost is
// first replaced by its expected cost under independent per-operator
// availability (buildExpectedValues), then the classical Shapley weight
// w(s,n) = (s-1)!(n-s)!/n! is applied to the marginal contribution
// e(S\{i}) - e(S) for every coalition S containing i. Grounded on
// original_source/src/shapley.rs's compute_expected_values and
// compute_shapley_values — see DESIGN.md. Results are sorted by operator
// name ascending.
func Compute(input *model.NormalizedInput, costs coalition.CostMap) []Result {
	n := input.OperatorCount()
	total := 1 << uint(n)

	expected := buildExpectedValues(input, n, total, costs)
	weight := buildShapleyWeights(n)

	phi := make([]decimalx.Decimal, n)
	for i := range phi {
		phi[i] = decimalx.Zero
	}

	for mask := 0; mask < total; mask++ {
		s := bits.OnesCount(uint(mask))
		for i := 0; i < n; i++ {
			if mask&(1<<uint(i)) == 0 {
				continue
			}
			without := mask ^ (1 << uint(i))
			marginal := expected[without].Sub(expected[mask])
			phi[i] = phi[i].Add(weight[s].Mul(marginal))
		}
	}

	total64 := decimalx.Zero
	for _, v := range phi {
		total64 = total64.Add(v)
	}

	results := make([]Result, n)
	for i, op := range input.Operators {
		value := phi[op.Index]
		share := decimalx.Zero
		if !total64.IsZero() {
			share = value.Div(total64)
		}
		results[i] = Result{Operator: op.Name, Value: value, Share: share}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Operator < results[j].Operator })
	return results
}

// buildExpectedValues computes, for every coalition mask S, the expected
// realized coalition cost under independent per-operator availability:
//
//	e(S) = sum over r subset-of S of P(r | S) * costs[r]
//
// where P(r|S) = product over i in S of (uptime_i if i in r else
// 1-uptime_i) — each nominal member of S is independently present or
// absent, and operators outside S are never present. This is the same
// transform as original_source/src/shapley.rs's compute_expected_values,
// computed here as n independent per-bit passes over the full 2^n table
// (O(n*2^n)) instead of materializing that implementation's 2^n x 2^n
// coefficient matrix, which is infeasible at the n<=20 cap. At uptime=1
// for every operator this reduces to e(S) = costs[S] exactly, the u=1
// collapse required by testable property 7.
func buildExpectedValues(input *model.NormalizedInput, n, total int, costs coalition.CostMap) []decimalx.Decimal {
	e := make([]decimalx.Decimal, total)
	copy(e, costs)

	for b := 0; b < n; b++ {
		u := input.UptimeFor(b)
		notU := decimalx.One.Sub(u)
		bit := 1 << uint(b)
		for mask := 0; mask < total; mask++ {
			if mask&bit == 0 {
				continue
			}
			e[mask] = u.Mul(e[mask]).Add(notU.Mul(e[mask^bit]))
		}
	}
	return e
}

// buildShapleyWeights computes w(s,n) = (s-1)!(n-s)!/n! for s in [1,n],
// the classical Shapley weight for a coalition of size s that includes
// the operator whose marginal contribution is being measured. Index 0 is
// left unused: a coalition containing an operator always has size >= 1.
func buildShapleyWeights(n int) []decimalx.Decimal {
	nFact := decimalx.Factorial(n)
	weight := make([]decimalx.Decimal, n+1)
	for s := 1; s <= n; s++ {
		num := decimalx.Factorial(s - 1).Mul(decimalx.Factorial(n - s))
		weight[s] = num.Div(nFact)
	}
	return weight
}
