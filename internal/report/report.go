// Package report is the tabular pretty-printer external collaborator of
// spec.md section 6: a three-column table operator | value | share. No
// table-formatting library exists anywhere in the retrieved example pack,
// so this uses stdlib text/tabwriter — see DESIGN.md for that
// justification.
package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/doublezerofoundation/network-shapley/internal/aggregate"
	"github.com/doublezerofoundation/network-shapley/internal/decimalx"
)

// Precision bounds per spec.md section 6: "4-16 decimal digits".
const (
	MinPrecision = 4
	MaxPrecision = 16
)

// Write renders results as a three-column table to w, formatting Value
// with precision decimal digits (clamped to [MinPrecision, MaxPrecision])
// and Share as a percentage with 2 decimal digits.
func Write(w io.Writer, results []aggregate.Result, precision int) error {
	if precision < MinPrecision {
		precision = MinPrecision
	}
	if precision > MaxPrecision {
		precision = MaxPrecision
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "operator\tvalue\tshare\n")
	for _, r := range results {
		pct := r.Share.Mul(decimalx.OneHundred).Round(2)
		fmt.Fprintf(tw, "%s\t%s\t%s%%\n", r.Operator, r.Value.StringFixed(int32(precision)), pct.StringFixed(2))
	}
	return tw.Flush()
}
