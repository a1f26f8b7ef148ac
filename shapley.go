// Package shapley is the core API surface of spec.md section 6: given a
// normalized network-and-demand snapshot, Compute returns one Shapley
// value per operator. Everything under internal/ is wired together here;
// callers outside this module only ever see this file's exports.
package shapley

import (
	"context"
	"runtime"

	"github.com/doublezerofoundation/network-shapley/internal/aggregate"
	"github.com/doublezerofoundation/network-shapley/internal/coalition"
	"github.com/doublezerofoundation/network-shapley/internal/decimalx"
	"github.com/doublezerofoundation/network-shapley/internal/model"
	"github.com/doublezerofoundation/network-shapley/internal/netbuild"
	"github.com/doublezerofoundation/network-shapley/internal/normalize"
	"github.com/doublezerofoundation/network-shapley/internal/solver"
)

// Decimal is the exact decimal type every user-facing value is expressed
// in (spec.md section 1: "deterministic, non-binary-floating-point
// decimal domain").
type Decimal = decimalx.Decimal

// Re-exported data model types, so callers never need to import internal/model.
type (
	Device      = model.Device
	PrivateLink = model.PrivateLink
	PublicLink  = model.PublicLink
	Demand      = model.Demand
)

// RawInput is the caller-facing input shape of spec.md section 6.
type RawInput = normalize.RawInput

// Result is one operator's Shapley value and share of the total,
// spec.md section 6.
type Result = aggregate.Result

// Config controls the solver's deterministic mode (spec.md section 4.7)
// and the coalition worker-pool size (spec.md section 5). Zero-value
// Config uses the package defaults.
type Config struct {
	Solver   solver.Config
	PoolSize int
}

// Compute implements spec.md section 6: compute(normalized_input) ->
// OrderedList<{operator, value, share}>. It normalizes raw, enumerates all
// 2^n coalitions (Component E), and aggregates them into per-operator
// Shapley values (Component F). Results are ordered by operator name
// ascending.
func Compute(ctx context.Context, raw RawInput) ([]Result, error) {
	return ComputeWithConfig(ctx, raw, Config{})
}

// ComputeWithConfig is Compute with explicit solver/pool tuning.
func ComputeWithConfig(ctx context.Context, raw RawInput, cfg Config) ([]Result, error) {
	input, err := normalize.Normalize(raw)
	if err != nil {
		return nil, err
	}

	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = runtime.NumCPU()
	}

	s := solver.NewSimplex(cfg.Solver)

	costs, err := coalition.Enumerate(ctx, input, netbuild.Build, s, poolSize)
	if err != nil {
		return nil, err
	}

	return aggregate.Compute(input, costs), nil
}
