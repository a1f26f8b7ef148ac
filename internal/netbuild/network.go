// Package netbuild implements Component C: given a coalition bitmask, it
// materializes the node/edge graph the LP assembler turns into variables
// and constraints. It never touches the LP or the solver.
package netbuild

import (
	"sort"
	"strings"

	"github.com/doublezerofoundation/network-shapley/internal/decimalx"
	"github.com/doublezerofoundation/network-shapley/internal/model"
)

// Edge is a directed edge carried into the LP assembler.
type Edge struct {
	From, To string
	Cost     decimalx.Decimal
	Capacity decimalx.Decimal // meaningless when Unbounded
	Unbounded bool

	// SharedGroup, when nonzero, names the capacity pool this edge shares
	// with its sibling directed edge(s) — the LP assembler emits one
	// capacity constraint per SharedGroup instead of one per edge. Edges
	// with SharedGroup == 0 get their own independent constraint.
	SharedGroup int
}

// Network is the coalition-specific flow graph handed to the LP assembler.
type Network struct {
	Nodes []string
	Edges []Edge
}

// Build constructs the coalition-specific network for mask per spec.md
// section 4.2: retained private edges (owner bits subset of mask, hybrid
// edges gated on both owners and penalized), all public edges, and
// zero-cost unbounded city<->device stitching edges.
func Build(input *model.NormalizedInput, mask model.Coalition) *Network {
	index := make(map[string]int, len(input.Operators))
	for _, op := range input.Operators {
		index[op.Name] = op.Index
	}

	nodeSet := make(map[string]struct{})
	var edges []Edge
	nextShared := 1

	addNode := func(n string) {
		if n != "" {
			nodeSet[n] = struct{}{}
		}
	}

	for _, l := range input.PrivateLinks {
		owner1, ok1 := index[l.Operator1]
		if !ok1 || !mask.Has(owner1) {
			continue
		}
		cost := l.Cost
		if l.Operator2 != "" {
			owner2, ok2 := index[l.Operator2]
			if !ok2 || !mask.Has(owner2) {
				continue
			}
			cost = cost.Add(input.HybridPenalty)
		}

		addNode(l.Start)
		addNode(l.End)

		// Per-link uptime override (Open Question resolution, see
		// DESIGN.md): scale effective capacity instead of folding
		// availability into the aggregator's per-operator transform.
		capacity := l.Bandwidth
		if l.Uptime != nil {
			capacity = capacity.Mul(*l.Uptime)
		}

		group := l.Shared
		if !l.Directed && group == 0 {
			group = nextShared
			nextShared++
		}

		edges = append(edges, Edge{From: l.Start, To: l.End, Cost: cost, Capacity: capacity, SharedGroup: group})
		if !l.Directed {
			edges = append(edges, Edge{From: l.End, To: l.Start, Cost: cost, Capacity: capacity, SharedGroup: group})
		}
	}

	for _, l := range input.PublicLinks {
		addNode(l.Start)
		addNode(l.End)
		edges = append(edges, Edge{From: l.Start, To: l.End, Cost: l.Cost, Unbounded: true})
		if !l.Directed {
			edges = append(edges, Edge{From: l.End, To: l.Start, Cost: l.Cost, Unbounded: true})
		}
	}

	// City <-> device stitching: zero-cost, unbounded, bidirectional.
	cityDevices := make(map[string][]string)
	for _, d := range input.Devices {
		city := cityOf(d.Code)
		cityDevices[city] = append(cityDevices[city], d.Code)
		addNode(d.Code)
		addNode(city)
	}
	for city, devs := range cityDevices {
		for _, dev := range devs {
			if dev == city {
				continue
			}
			edges = append(edges, Edge{From: city, To: dev, Cost: decimalx.Zero, Unbounded: true})
			edges = append(edges, Edge{From: dev, To: city, Cost: decimalx.Zero, Unbounded: true})
		}
	}

	nodes := make([]string, 0, len(nodeSet))
	for n := range nodeSet {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)

	return &Network{Nodes: nodes, Edges: edges}
}

func cityOf(deviceCode string) string {
	i := strings.IndexFunc(deviceCode, func(r rune) bool { return r >= '0' && r <= '9' })
	if i < 0 {
		return deviceCode
	}
	return deviceCode[:i]
}
