// Package shapleyerr defines the sentinel error kinds the core surfaces to
// callers. Callers branch on kind with errors.Is; context is attached with
// fmt.Errorf("%w", ...) at the point the offending entity is known.
package shapleyerr

import "errors"

var (
	// ErrInvalidInput covers malformed input: empty operator names, negative
	// cost, non-positive bandwidth/traffic, an operator count over the
	// n<=20 cap, or a link referencing an unknown device code.
	ErrInvalidInput = errors.New("shapley: invalid input")

	// ErrInconsistentTopology marks a demand endpoint that resolves to
	// neither a public-link city nor any device's city prefix.
	ErrInconsistentTopology = errors.New("shapley: inconsistent topology")

	// ErrSolver marks a solver status other than Solved that the
	// assembler's fallback edges did not rescue.
	ErrSolver = errors.New("shapley: solver error")

	// ErrNumericOverflow marks a decimal conversion outside the
	// representable range, or division by zero in the decimal adapter.
	ErrNumericOverflow = errors.New("shapley: numeric overflow")
)
