// Package coalition implements Component E: it drives netbuild+lpmodel+
// solver across all 2^n coalition subsets, fanning the independent LP
// solves out across a bounded worker pool. Grounded on the ants.Pool usage
// in Bootes2022-Arcturus's forwarding/common and scheduling/pool_manager
// packages — coalition solving is the one hot loop in this system that
// benefits from a bounded pool rather than a goroutine-per-subset loop.
package coalition

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/doublezerofoundation/network-shapley/internal/decimalx"
	"github.com/doublezerofoundation/network-shapley/internal/lpmodel"
	"github.com/doublezerofoundation/network-shapley/internal/model"
	"github.com/doublezerofoundation/network-shapley/internal/netbuild"
	"github.com/doublezerofoundation/network-shapley/internal/solver"
)

// CostMap holds one coalition cost per bitmask, index == mask. Populated
// by Enumerate in canonical ascending-mask order and read by
// internal/aggregate in that same order.
type CostMap []decimalx.Decimal

// Builder abstracts Component C for testing; netbuild.Build satisfies it.
type Builder func(input *model.NormalizedInput, mask model.Coalition) *netbuild.Network

// Enumerate iterates mask = 0..2^n-1, builds each coalition's network and
// LP, solves it on a bounded ants.Pool, and returns the filled CostMap. A
// SolverError from any coalition cancels the remaining work and is
// returned — per spec.md section 7, a single coalition failure aborts the
// whole computation.
func Enumerate(ctx context.Context, input *model.NormalizedInput, build Builder, s solver.Solver, poolSize int) (CostMap, error) {
	n := input.OperatorCount()
	total := 1 << uint(n)

	costs := make(CostMap, total)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var firstErr error
	var errOnce sync.Once
	var wg sync.WaitGroup

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, fmt.Errorf("coalition: failed to create worker pool: %w", err)
	}
	defer pool.Release()

	for mask := 0; mask < total; mask++ {
		mask := mask
		wg.Add(1)
		task := func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			cost, err := solveOne(ctx, input, build, s, model.Coalition(mask))
			if err != nil {
				errOnce.Do(func() {
					firstErr = err
					cancel()
				})
				return
			}
			costs[mask] = cost
		}
		if err := pool.Submit(task); err != nil {
			wg.Done()
			errOnce.Do(func() {
				firstErr = fmt.Errorf("coalition: failed to submit mask %d: %w", mask, err)
				cancel()
			})
			break
		}
	}

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return costs, nil
}

func solveOne(ctx context.Context, input *model.NormalizedInput, build Builder, s solver.Solver, mask model.Coalition) (decimalx.Decimal, error) {
	net := build(input, mask)
	problem, err := lpmodel.Assemble(net, input.Demands)
	if err != nil {
		return decimalx.Decimal{}, fmt.Errorf("coalition: mask %#x: %w", uint32(mask), err)
	}
	solution, err := s.Solve(ctx, problem)
	if err != nil {
		return decimalx.Decimal{}, fmt.Errorf("coalition: mask %#x: %w", uint32(mask), err)
	}
	cost, err := decimalx.FromFloat64(solution.Objective, decimalx.DefaultPrecision)
	if err != nil {
		return decimalx.Decimal{}, fmt.Errorf("coalition: mask %#x: %w", uint32(mask), err)
	}
	return cost, nil
}
