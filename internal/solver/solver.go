// Package solver implements Component G: a narrow interface the core
// depends on, and one concrete backend. No LP/QP library exists anywhere
// in the retrieved example pack (the original implementation this spec was
// distilled from binds to the Rust-only clarabel conic solver); the
// concrete backend here is a from-scratch single-phase Big-M primal simplex,
// written the way the pack's own graph packages hand-roll flow algorithms
// rather than depend on a numerics library — see DESIGN.md.
package solver

import (
	"context"
	"fmt"

	"github.com/doublezerofoundation/network-shapley/internal/lpmodel"
	"github.com/doublezerofoundation/network-shapley/internal/shapleyerr"
)

// Status mirrors the solver statuses spec.md section 4.3/4.7 distinguish.
type Status int

const (
	StatusSolved Status = iota
	StatusInfeasible
	StatusUnbounded
	StatusIterationLimit
)

func (s Status) String() string {
	switch s {
	case StatusSolved:
		return "solved"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	case StatusIterationLimit:
		return "iteration_limit"
	default:
		return "unknown"
	}
}

// Solution is the result of solving one coalition's LP.
type Solution struct {
	Status    Status
	Objective float64
}

// Solver abstracts the convex LP/QP backend. The core depends only on this
// interface — see spec.md section 4.7.
type Solver interface {
	Solve(ctx context.Context, p *lpmodel.Problem) (Solution, error)
}

// Config controls the deterministic mode spec.md section 4.7 requires:
// fixed iteration cap, fixed tolerance.
type Config struct {
	MaxIterations int
	Tolerance     float64
}

// DefaultConfig matches the spec's reference numbers (section 4.3/4.7).
func DefaultConfig() Config {
	return Config{MaxIterations: 10000, Tolerance: 1e-9}
}

// Simplex is the concrete Solver backend: dense-tableau, single-phase Big-M
// primal simplex. Coalition LPs in this domain are small (n<=20 operators,
// a handful of demands), so a dense tableau is appropriate — no sparse
// numerics library is needed.
type Simplex struct {
	Config Config
}

// NewSimplex constructs a Simplex with cfg, filling zero fields from
// DefaultConfig.
func NewSimplex(cfg Config) *Simplex {
	d := DefaultConfig()
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = d.MaxIterations
	}
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = d.Tolerance
	}
	return &Simplex{Config: cfg}
}

const bigM = 1e9

type rowKind int

const (
	kindLessEqual rowKind = iota
	kindGreaterEqual
	kindEqual
)

func (s *Simplex) Solve(ctx context.Context, p *lpmodel.Problem) (Solution, error) {
	if p.NumVars == 0 {
		return Solution{Status: StatusSolved, Objective: 0}, nil
	}

	numOriginal := p.NumVars
	numRows := len(p.Rows)

	type rowInfo struct {
		coeffs map[int]float64
		rhs    float64
		kind   rowKind
	}
	rows := make([]rowInfo, numRows)
	numSlackCols := 0
	numArtificial := 0

	for i, row := range p.Rows {
		coeffs := make(map[int]float64, len(row.Coeffs))
		for k, v := range row.Coeffs {
			coeffs[k] = v
		}
		rhs := row.RHS
		kind := kindLessEqual
		if row.Sense == lpmodel.Equal {
			kind = kindEqual
		}
		if rhs < 0 {
			for k := range coeffs {
				coeffs[k] = -coeffs[k]
			}
			rhs = -rhs
			if kind == kindLessEqual {
				kind = kindGreaterEqual
			}
		}
		rows[i] = rowInfo{coeffs: coeffs, rhs: rhs, kind: kind}
		switch kind {
		case kindLessEqual:
			numSlackCols++
		case kindGreaterEqual:
			numSlackCols++
			numArtificial++
		case kindEqual:
			numArtificial++
		}
	}

	totalVars := numOriginal + numSlackCols + numArtificial
	// tableau[i] has totalVars+1 columns, the last holding the RHS.
	tableau := make([][]float64, numRows)
	for i := range tableau {
		tableau[i] = make([]float64, totalVars+1)
	}
	basis := make([]int, numRows)

	slackCol := numOriginal
	artCol := numOriginal + numSlackCols

	for i, ri := range rows {
		for v, coeff := range ri.coeffs {
			tableau[i][v] = coeff
		}
		switch ri.kind {
		case kindLessEqual:
			tableau[i][slackCol] = 1
			basis[i] = slackCol
			slackCol++
		case kindGreaterEqual:
			tableau[i][slackCol] = -1
			slackCol++
			tableau[i][artCol] = 1
			basis[i] = artCol
			artCol++
		case kindEqual:
			tableau[i][artCol] = 1
			basis[i] = artCol
			artCol++
		}
		tableau[i][totalVars] = ri.rhs
	}

	// Maximize -cost (original vars) - bigM*artificial, i.e. minimize
	// cost + bigM*artificial.
	objCoef := make([]float64, totalVars)
	for v := 0; v < numOriginal; v++ {
		objCoef[v] = -p.Cost[v]
	}
	for v := numOriginal + numSlackCols; v < totalVars; v++ {
		objCoef[v] = -bigM
	}

	delta := make([]float64, totalVars+1)
	recomputeDelta(delta, objCoef, tableau, basis, totalVars)

	tol := s.Config.Tolerance
	status := StatusSolved

iterate:
	for iter := 0; ; iter++ {
		if err := ctx.Err(); err != nil {
			return Solution{}, err
		}
		if iter >= s.Config.MaxIterations {
			status = StatusIterationLimit
			break iterate
		}

		enter := -1
		best := tol
		for j := 0; j < totalVars; j++ {
			if delta[j] > best {
				best = delta[j]
				enter = j
			}
		}
		if enter == -1 {
			break iterate
		}

		leave := -1
		bestRatio := 0.0
		for i := 0; i < numRows; i++ {
			if tableau[i][enter] > tol {
				ratio := tableau[i][totalVars] / tableau[i][enter]
				if leave == -1 || ratio < bestRatio-tol {
					bestRatio = ratio
					leave = i
				}
			}
		}
		if leave == -1 {
			status = StatusUnbounded
			break iterate
		}

		pivot(tableau, delta, leave, enter, totalVars)
		basis[leave] = enter
	}

	if status == StatusSolved {
		for i := 0; i < numRows; i++ {
			if basis[i] >= numOriginal+numSlackCols && tableau[i][totalVars] > tol {
				status = StatusInfeasible
				break
			}
		}
	}

	if status != StatusSolved {
		return Solution{Status: status}, fmt.Errorf("%w: simplex returned %s", shapleyerr.ErrSolver, status)
	}

	x := make([]float64, numOriginal)
	for i := 0; i < numRows; i++ {
		if basis[i] < numOriginal {
			x[basis[i]] = tableau[i][totalVars]
		}
	}
	objective := 0.0
	for v := 0; v < numOriginal; v++ {
		objective += p.Cost[v] * x[v]
	}

	return Solution{Status: StatusSolved, Objective: objective}, nil
}

// recomputeDelta fills delta[j] = objCoef[j] - sum_i cB[basis[i]]*tableau[i][j]
// for every column j including the RHS column (holding the running
// objective value at index totalVars).
func recomputeDelta(delta, objCoef []float64, tableau [][]float64, basis []int, totalVars int) {
	for j := 0; j <= totalVars; j++ {
		c := 0.0
		if j < totalVars {
			c = objCoef[j]
		}
		sum := 0.0
		for i, b := range basis {
			sum += objCoef[b] * tableau[i][j]
		}
		delta[j] = c - sum
	}
}

// pivot performs a standard Gauss-Jordan pivot on (row, col), normalizing
// the pivot row and eliminating col from every other row, including delta.
func pivot(tableau [][]float64, delta []float64, row, col, totalVars int) {
	pv := tableau[row][col]
	for j := 0; j <= totalVars; j++ {
		tableau[row][j] /= pv
	}
	for i := range tableau {
		if i == row {
			continue
		}
		factor := tableau[i][col]
		if factor == 0 {
			continue
		}
		for j := 0; j <= totalVars; j++ {
			tableau[i][j] -= factor * tableau[row][j]
		}
	}
	factor := delta[col]
	if factor != 0 {
		for j := 0; j <= totalVars; j++ {
			delta[j] -= factor * tableau[row][j]
		}
	}
}
