// Package lpmodel implements Component D: it turns a coalition network
// (netbuild.Network) and a demand set into a sparse multi-commodity min-cost
// flow LP — variables, capacity/conservation constraints, and an objective
// vector — ready for internal/solver. It never solves anything itself.
package lpmodel

import (
	"github.com/doublezerofoundation/network-shapley/internal/decimalx"
	"github.com/doublezerofoundation/network-shapley/internal/model"
	"github.com/doublezerofoundation/network-shapley/internal/netbuild"
)

// FallbackCost is the per-unit cost of the always-available fallback edge
// every demand gets from its source directly to its sink, chosen well
// above any realistic edge cost so a coalition is never LP-infeasible.
const FallbackCost = 1e7

// Sense is a constraint's comparison operator.
type Sense int

const (
	LessEqual Sense = iota
	Equal
)

// Row is one sparse constraint: sum(Coeffs[i]*x[i]) Sense RHS.
type Row struct {
	Coeffs map[int]float64
	Sense  Sense
	RHS    float64
}

// Problem is the sparse LP handed to internal/solver.
type Problem struct {
	NumVars int
	Cost    []float64
	Rows    []Row
}

// varIndex maps (edge index, commodity index) to a variable slot; commodity
// fallback variables are appended after all (edge, commodity) slots.
type varIndex struct {
	numEdges, numCommodities int
}

func (v varIndex) edgeVar(edge, commodity int) int {
	return edge*v.numCommodities + commodity
}

func (v varIndex) fallbackVar(commodity int) int {
	return v.numEdges*v.numCommodities + commodity
}

func (v varIndex) numVars() int {
	return v.numEdges*v.numCommodities + v.numCommodities
}

// Assemble builds the LP for net and demands. Each demand is its own
// commodity (the reference policy of spec.md section 4.4 — demand_type and
// priority are carried as opaque tags and never enter the objective).
func Assemble(net *netbuild.Network, demands []model.Demand) (*Problem, error) {
	vi := varIndex{numEdges: len(net.Edges), numCommodities: len(demands)}
	p := &Problem{NumVars: vi.numVars(), Cost: make([]float64, vi.numVars())}

	for e, edge := range net.Edges {
		cost, err := decimalx.ToFloat64(edge.Cost)
		if err != nil {
			return nil, err
		}
		for k := range demands {
			p.Cost[vi.edgeVar(e, k)] = cost
		}
	}
	for k := range demands {
		p.Cost[vi.fallbackVar(k)] = FallbackCost
	}

	if err := addCapacityRows(p, net, vi); err != nil {
		return nil, err
	}
	if err := addConservationRows(p, net, demands, vi); err != nil {
		return nil, err
	}
	addSharedDemandRows(p, net, demands, vi)

	return p, nil
}

func addCapacityRows(p *Problem, net *netbuild.Network, vi varIndex) error {
	groups := make(map[int][]int) // SharedGroup -> edge indices
	for e, edge := range net.Edges {
		if edge.Unbounded {
			continue
		}
		if edge.SharedGroup > 0 {
			groups[edge.SharedGroup] = append(groups[edge.SharedGroup], e)
			continue
		}
		cap, err := decimalx.ToFloat64(edge.Capacity)
		if err != nil {
			return err
		}
		coeffs := make(map[int]float64, vi.numCommodities)
		for k := 0; k < vi.numCommodities; k++ {
			coeffs[vi.edgeVar(e, k)] = 1
		}
		p.Rows = append(p.Rows, Row{Coeffs: coeffs, Sense: LessEqual, RHS: cap})
	}

	for _, edgeIdxs := range groups {
		cap, err := decimalx.ToFloat64(net.Edges[edgeIdxs[0]].Capacity)
		if err != nil {
			return err
		}
		coeffs := make(map[int]float64, len(edgeIdxs)*vi.numCommodities)
		for _, e := range edgeIdxs {
			for k := 0; k < vi.numCommodities; k++ {
				coeffs[vi.edgeVar(e, k)] = 1
			}
		}
		p.Rows = append(p.Rows, Row{Coeffs: coeffs, Sense: LessEqual, RHS: cap})
	}
	return nil
}

func addConservationRows(p *Problem, net *netbuild.Network, demands []model.Demand, vi varIndex) error {
	// incoming/outgoing edge indices per node, computed once.
	incoming := make(map[string][]int)
	outgoing := make(map[string][]int)
	for e, edge := range net.Edges {
		outgoing[edge.From] = append(outgoing[edge.From], e)
		incoming[edge.To] = append(incoming[edge.To], e)
	}

	nodes := net.Nodes

	for k, d := range demands {
		traffic, err := decimalx.ToFloat64(d.Traffic)
		if err != nil {
			return err
		}
		for _, v := range nodes {
			coeffs := make(map[int]float64)
			for _, e := range incoming[v] {
				coeffs[vi.edgeVar(e, k)] += 1
			}
			for _, e := range outgoing[v] {
				coeffs[vi.edgeVar(e, k)] -= 1
			}
			supply := 0.0
			switch v {
			case d.Start:
				supply = -traffic
			case d.End:
				supply = traffic
			}
			if v == d.Start {
				coeffs[vi.fallbackVar(k)] -= 1
			}
			if v == d.End {
				coeffs[vi.fallbackVar(k)] += 1
			}
			if len(coeffs) == 0 {
				continue
			}
			p.Rows = append(p.Rows, Row{Coeffs: coeffs, Sense: Equal, RHS: supply})
		}
	}
	return nil
}

// addSharedDemandRows implements the multicast/shared-bandwidth supplement
// from SPEC_FULL.md section 4: demands flagged Shared with a common Start
// share one uplink capacity, bounded by the group's peak traffic rather
// than the sum of its members' traffic, modeling one physical uplink
// serving several destinations.
func addSharedDemandRows(p *Problem, net *netbuild.Network, demands []model.Demand, vi varIndex) {
	type group struct {
		commodities []int
		peak        float64
	}
	groups := make(map[string]*group)
	for k, d := range demands {
		if !d.Shared {
			continue
		}
		g, ok := groups[d.Start]
		if !ok {
			g = &group{}
			groups[d.Start] = g
		}
		g.commodities = append(g.commodities, k)
		if traffic, err := decimalx.ToFloat64(d.Traffic); err == nil && traffic > g.peak {
			g.peak = traffic
		}
	}
	for start, g := range groups {
		if len(g.commodities) < 2 {
			continue
		}
		coeffs := make(map[int]float64)
		for e, edge := range net.Edges {
			if edge.From != start {
				continue
			}
			for _, k := range g.commodities {
				coeffs[vi.edgeVar(e, k)] = 1
			}
		}
		if len(coeffs) == 0 {
			continue
		}
		p.Rows = append(p.Rows, Row{Coeffs: coeffs, Sense: LessEqual, RHS: g.peak})
	}
}
