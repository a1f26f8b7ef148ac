// Package model holds the frozen data types the core operates on: the raw
// inputs a caller hands in, the derived operator roster, and the
// NormalizedInput that every downstream component (netbuild, lpmodel,
// coalition, aggregate) reads but never mutates.
package model

import "github.com/doublezerofoundation/network-shapley/internal/decimalx"

// Device binds a device code (city code + index, e.g. "FRA1") to exactly
// one operator and carries a small switch/router role tag.
type Device struct {
	Code     string
	TypeTag  int
	Operator string
}

// PrivateLink is a capacity-bounded edge owned by one operator, or jointly
// by two (a hybrid link, available only when both owners are present).
type PrivateLink struct {
	Start     string
	End       string
	Cost      decimalx.Decimal
	Bandwidth decimalx.Decimal
	Uptime    *decimalx.Decimal // non-nil scales capacity in netbuild; nil => full bandwidth
	Operator1 string
	Operator2 string // "" when not a hybrid link
	Shared    int    // >0 groups links (e.g. the two directions of an
	// undirected link) under one shared capacity counter; see netbuild.
	Directed bool
}

// PublicLink is an unbounded-capacity edge available to every coalition,
// including the empty one.
type PublicLink struct {
	Start    string
	End      string
	Cost     decimalx.Decimal
	Directed bool
}

// Demand is a required traffic flow between two cities.
type Demand struct {
	Start      string
	End        string
	Traffic    decimalx.Decimal
	DemandType int
	Priority   string // opaque tie-break tag; never enters the LP objective
	Shared     bool   // true groups same-source demands onto one capacity pool; see lpmodel
}

// Operator is a derived, sorted, indexed economic actor.
type Operator struct {
	Name  string
	Index int // stable bit position in a Coalition bitmask
}

// Coalition is a subset of operators, represented as a bitmask over
// Operator.Index. n <= 20 is enforced by normalize, so uint32 suffices.
type Coalition uint32

// Has reports whether operator index i is a member of the coalition.
func (c Coalition) Has(i int) bool {
	return c&(1<<uint(i)) != 0
}

// Size returns the number of member operators.
func (c Coalition) Size() int {
	n := 0
	for c != 0 {
		n += int(c & 1)
		c >>= 1
	}
	return n
}

// NormalizedInput is the frozen, validated output of the normalizer (B).
// Every field is read-only for the remainder of the computation.
type NormalizedInput struct {
	PrivateLinks []PrivateLink
	PublicLinks  []PublicLink
	Demands      []Demand
	Devices      []Device
	Operators    []Operator // sorted by Name ascending, Index == position

	OperatorUptime   decimalx.Decimal
	HybridPenalty    decimalx.Decimal
	DemandMultiplier decimalx.Decimal

	// OperatorUptimeOverride, when non-nil for an operator index, replaces
	// OperatorUptime for that operator in the aggregator's per-operator
	// availability transform (Resolution of the per-operator-uptime Open
	// Question in SPEC_FULL.md section 3.8).
	OperatorUptimeOverride map[int]decimalx.Decimal
}

// OperatorCount returns n, the number of distinct operators.
func (ni *NormalizedInput) OperatorCount() int {
	return len(ni.Operators)
}

// UptimeFor returns the effective uptime used in the aggregator's
// per-operator availability transform for operator index i.
func (ni *NormalizedInput) UptimeFor(i int) decimalx.Decimal {
	if ni.OperatorUptimeOverride != nil {
		if u, ok := ni.OperatorUptimeOverride[i]; ok {
			return u
		}
	}
	return ni.OperatorUptime
}
