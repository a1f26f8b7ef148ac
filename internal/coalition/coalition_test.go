package coalition_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/doublezerofoundation/network-shapley/internal/coalition"
	"github.com/doublezerofoundation/network-shapley/internal/lpmodel"
	"github.com/doublezerofoundation/network-shapley/internal/model"
	"github.com/doublezerofoundation/network-shapley/internal/netbuild"
	"github.com/doublezerofoundation/network-shapley/internal/solver"
)

func operators(names ...string) []model.Operator {
	ops := make([]model.Operator, len(names))
	for i, n := range names {
		ops[i] = model.Operator{Name: n, Index: i}
	}
	return ops
}

// maskCostSolver returns an objective equal to -mask, so cost strictly
// decreases (in absolute terms increases negatively) as the coalition grows
// — enough to exercise the monotonic-cost-reduction property downstream in
// aggregate without depending on lpmodel at all.
type maskCostSolver struct{}

func (maskCostSolver) Solve(_ context.Context, p *lpmodel.Problem) (solver.Solution, error) {
	return solver.Solution{Status: solver.StatusSolved, Objective: -p.Cost[0]}, nil
}

func buildTagged(input *model.NormalizedInput, mask model.Coalition) *netbuild.Network {
	return &netbuild.Network{Nodes: []string{"A"}}
}

func TestEnumerateFillsEveryMask(t *testing.T) {
	input := &model.NormalizedInput{
		Operators: operators("a", "b", "c"),
		Demands:   []model.Demand{{Start: "A", End: "B", Traffic: decimal.NewFromInt(1)}},
	}
	// maskCostSolver reads p.Cost[0], so the input carries one demand: with
	// no demands Assemble yields NumVars == 0 and an empty Cost slice. The
	// fake builder gives every mask one edge whose cost is the mask itself.
	build := func(in *model.NormalizedInput, mask model.Coalition) *netbuild.Network {
		return &netbuild.Network{
			Nodes: []string{"A", "B"},
			Edges: []netbuild.Edge{{From: "A", To: "B", Cost: decimal.NewFromInt(int64(mask)), Capacity: decimal.NewFromInt(100)}},
		}
	}

	costs, err := coalition.Enumerate(context.Background(), input, build, maskCostSolver{}, 2)
	require.NoError(t, err)
	require.Len(t, costs, 8)
	for mask := 0; mask < 8; mask++ {
		require.True(t, costs[mask].Equal(decimal.NewFromInt(-int64(mask))), "mask %d", mask)
	}
}

type errSolver struct{}

func (errSolver) Solve(context.Context, *lpmodel.Problem) (solver.Solution, error) {
	return solver.Solution{}, errors.New("boom")
}

func TestEnumeratePropagatesSolverError(t *testing.T) {
	input := &model.NormalizedInput{Operators: operators("a")}
	_, err := coalition.Enumerate(context.Background(), input, buildTagged, errSolver{}, 2)
	require.Error(t, err)
}

// TestEnumerateCostIsMonotoneInCoalitionSize runs the real netbuild+lpmodel+
// simplex pipeline (testable property 2 from spec.md section 8): adding an
// operator to a coalition can only reduce or preserve the optimal cost,
// since every edge available to S remains available to any superset of S.
func TestEnumerateCostIsMonotoneInCoalitionSize(t *testing.T) {
	input := &model.NormalizedInput{
		Operators: operators("Alpha", "Beta", "Gamma"),
		PrivateLinks: []model.PrivateLink{
			{Start: "A", End: "B", Cost: decimal.NewFromInt(1), Bandwidth: decimal.NewFromInt(20), Operator1: "Alpha", Directed: true},
			{Start: "A", End: "B", Cost: decimal.NewFromInt(2), Bandwidth: decimal.NewFromInt(20), Operator1: "Beta", Directed: true},
			{Start: "A", End: "B", Cost: decimal.NewFromInt(3), Bandwidth: decimal.NewFromInt(20), Operator1: "Gamma", Directed: true},
		},
		PublicLinks: []model.PublicLink{
			{Start: "A", End: "B", Cost: decimal.NewFromInt(1000), Directed: true},
		},
		Demands: []model.Demand{{Start: "A", End: "B", Traffic: decimal.NewFromInt(10)}},
	}

	s := solver.NewSimplex(solver.DefaultConfig())
	costs, err := coalition.Enumerate(context.Background(), input, netbuild.Build, s, 4)
	require.NoError(t, err)

	total := 1 << len(input.Operators)
	for sub := 0; sub < total; sub++ {
		for sup := sub; sup < total; sup++ {
			if sub&sup != sub {
				continue // sup is not a superset of sub
			}
			require.True(t, costs[sub].GreaterThanOrEqual(costs[sup]),
				"c(%#b)=%s must be >= c(%#b)=%s", sub, costs[sub], sup, costs[sup])
		}
	}
}
