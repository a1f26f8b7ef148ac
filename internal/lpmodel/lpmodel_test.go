package lpmodel_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/doublezerofoundation/network-shapley/internal/decimalx"
	"github.com/doublezerofoundation/network-shapley/internal/lpmodel"
	"github.com/doublezerofoundation/network-shapley/internal/model"
	"github.com/doublezerofoundation/network-shapley/internal/netbuild"
)

func simpleNetwork() *netbuild.Network {
	return &netbuild.Network{
		Nodes: []string{"A", "B"},
		Edges: []netbuild.Edge{
			{From: "A", To: "B", Cost: decimalx.One, Capacity: decimalx.OneHundred},
		},
	}
}

func TestAssembleOneDemandOneEdge(t *testing.T) {
	net := simpleNetwork()
	demands := []model.Demand{{Start: "A", End: "B", Traffic: decimalx.OneHundred}}

	p, err := lpmodel.Assemble(net, demands)
	require.NoError(t, err)

	// 1 edge * 1 commodity + 1 fallback var = 2 vars.
	require.Equal(t, 2, p.NumVars)
	require.Equal(t, 1.0, p.Cost[0])
	require.Equal(t, lpmodel.FallbackCost, p.Cost[1])

	// One capacity row, two conservation rows (node A and node B).
	var capacityRows, conservationRows int
	for _, row := range p.Rows {
		if row.Sense == lpmodel.LessEqual {
			capacityRows++
		} else {
			conservationRows++
		}
	}
	require.Equal(t, 1, capacityRows)
	require.Equal(t, 2, conservationRows)
}

func TestAssembleSharedDemandsGetPooledCapacityRow(t *testing.T) {
	net := &netbuild.Network{
		Nodes: []string{"A", "B", "C"},
		Edges: []netbuild.Edge{
			{From: "A", To: "B", Cost: decimalx.One, Capacity: decimalx.OneHundred},
			{From: "A", To: "C", Cost: decimalx.One, Capacity: decimalx.OneHundred},
		},
	}
	demands := []model.Demand{
		{Start: "A", End: "B", Traffic: decimalx.OneHundred, Shared: true},
		{Start: "A", End: "C", Traffic: decimalx.OneHundred, Shared: true},
	}

	p, err := lpmodel.Assemble(net, demands)
	require.NoError(t, err)

	var pooled bool
	for _, row := range p.Rows {
		// 2 source-adjacent edges x 2 shared commodities; the per-edge
		// capacity rows carry only 2 coefficients each.
		if row.Sense == lpmodel.LessEqual && len(row.Coeffs) == 4 {
			pooled = true
		}
	}
	require.True(t, pooled, "expected one pooled capacity row spanning both shared demands' source-adjacent edges")
}

func TestAssembleConservationRowsCarrySupplyAtEndpointsOnly(t *testing.T) {
	net := simpleNetwork()
	demands := []model.Demand{{Start: "A", End: "B", Traffic: decimalx.OneHundred}}

	p, err := lpmodel.Assemble(net, demands)
	require.NoError(t, err)

	var sawSourceRow, sawSinkRow bool
	for _, row := range p.Rows {
		if row.Sense != lpmodel.Equal {
			continue
		}
		switch row.RHS {
		case -100:
			sawSourceRow = true
		case 100:
			sawSinkRow = true
		}
	}
	require.True(t, sawSourceRow, "the source node's conservation row must carry -traffic")
	require.True(t, sawSinkRow, "the sink node's conservation row must carry +traffic")
}
