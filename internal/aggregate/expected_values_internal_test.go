package aggregate

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/doublezerofoundation/network-shapley/internal/coalition"
	"github.com/doublezerofoundation/network-shapley/internal/model"
)

// Hand-verified against original_source/src/shapley.rs's
// test_compute_expected_values_simple: n=2, uptime=0.9,
// costs = [100, 120, 150, 200] indexed by mask, expected e = [100, 118, 145, 187.3].
func TestBuildExpectedValuesMatchesReferenceFixture(t *testing.T) {
	input := &model.NormalizedInput{
		Operators:      []model.Operator{{Name: "a", Index: 0}, {Name: "b", Index: 1}},
		OperatorUptime: decimal.NewFromFloat(0.9),
	}
	costs := coalition.CostMap{
		decimal.NewFromInt(100),
		decimal.NewFromInt(120),
		decimal.NewFromInt(150),
		decimal.NewFromInt(200),
	}

	e := buildExpectedValues(input, 2, 4, costs)

	want := []decimal.Decimal{
		decimal.NewFromInt(100),
		decimal.NewFromInt(118),
		decimal.NewFromInt(145),
		decimal.NewFromFloat(187.3),
	}
	for mask, w := range want {
		require.True(t, w.Equal(e[mask]), "mask %d: want %s, got %s", mask, w, e[mask])
	}
}
