// Package normalize implements Component B: it validates raw caller input,
// derives the sorted operator roster, and produces a frozen
// model.NormalizedInput. Links, demands and caller-supplied devices are
// passed through as given: duplicate entries are not removed (an inferred
// device table has one device per distinct link endpoint). Nothing here touches the network or the LP
// — this package only decides whether the input is well-formed.
package normalize

import (
	"fmt"
	"sort"

	"github.com/doublezerofoundation/network-shapley/internal/decimalx"
	"github.com/doublezerofoundation/network-shapley/internal/model"
	"github.com/doublezerofoundation/network-shapley/internal/shapleyerr"
)

// MaxOperators is the hard cap from the 2^n coalition enumeration.
const MaxOperators = 20

// RawInput mirrors the caller-facing input shape of spec.md section 6.
type RawInput struct {
	PrivateLinks     []model.PrivateLink
	PublicLinks      []model.PublicLink
	Demands          []model.Demand
	Devices          []model.Device // optional; inferred when empty
	OperatorUptime   decimalx.Decimal
	HybridPenalty    decimalx.Decimal
	DemandMultiplier decimalx.Decimal
}

// Normalize validates raw and returns a frozen NormalizedInput, or a
// wrapped shapleyerr.ErrInvalidInput / ErrInconsistentTopology.
func Normalize(raw RawInput) (*model.NormalizedInput, error) {
	if err := validateScalars(raw); err != nil {
		return nil, err
	}

	devices := raw.Devices
	if len(devices) == 0 {
		var err error
		devices, err = inferDevices(raw.PrivateLinks)
		if err != nil {
			return nil, err
		}
	}

	deviceOperator := make(map[string]string, len(devices))
	for _, d := range devices {
		if d.Code == "" {
			return nil, fmt.Errorf("%w: device with empty code", shapleyerr.ErrInvalidInput)
		}
		deviceOperator[d.Code] = d.Operator
	}

	operators, err := deriveOperators(raw.PrivateLinks, devices)
	if err != nil {
		return nil, err
	}
	if len(operators) > MaxOperators {
		return nil, fmt.Errorf("%w: %d operators exceeds the cap of %d", shapleyerr.ErrInvalidInput, len(operators), MaxOperators)
	}
	index := make(map[string]int, len(operators))
	for _, op := range operators {
		index[op.Name] = op.Index
	}

	if err := validateLinks(raw.PrivateLinks, deviceOperator); err != nil {
		return nil, err
	}
	if err := validatePublicLinks(raw.PublicLinks); err != nil {
		return nil, err
	}

	cities := collectCities(raw.PublicLinks, devices)
	if err := validateDemands(raw.Demands, cities); err != nil {
		return nil, err
	}

	scaled := make([]model.Demand, len(raw.Demands))
	for i, d := range raw.Demands {
		d.Traffic = d.Traffic.Mul(raw.DemandMultiplier)
		scaled[i] = d
	}

	return &model.NormalizedInput{
		PrivateLinks:     raw.PrivateLinks,
		PublicLinks:      raw.PublicLinks,
		Demands:          scaled,
		Devices:          devices,
		Operators:        operators,
		OperatorUptime:   raw.OperatorUptime,
		HybridPenalty:    raw.HybridPenalty,
		DemandMultiplier: raw.DemandMultiplier,
	}, nil
}

func validateScalars(raw RawInput) error {
	if raw.OperatorUptime.LessThan(decimalx.Zero) || raw.OperatorUptime.GreaterThan(decimalx.One) {
		return fmt.Errorf("%w: operator_uptime %s outside [0,1]", shapleyerr.ErrInvalidInput, raw.OperatorUptime)
	}
	if raw.HybridPenalty.LessThan(decimalx.Zero) {
		return fmt.Errorf("%w: hybrid_penalty %s is negative", shapleyerr.ErrInvalidInput, raw.HybridPenalty)
	}
	if !raw.DemandMultiplier.GreaterThan(decimalx.Zero) {
		return fmt.Errorf("%w: demand_multiplier %s is not positive", shapleyerr.ErrInvalidInput, raw.DemandMultiplier)
	}
	return nil
}

// inferDevices derives one device per distinct endpoint referenced by
// private links when the caller supplies no explicit device table, per
// original_source/src/link_preparation.rs's device-inference fallback.
func inferDevices(links []model.PrivateLink) ([]model.Device, error) {
	seen := make(map[string]model.Device)
	for _, l := range links {
		for _, code := range [2]string{l.Start, l.End} {
			if code == "" {
				continue
			}
			if _, ok := seen[code]; !ok {
				seen[code] = model.Device{Code: code, Operator: l.Operator1}
			}
		}
	}
	devices := make([]model.Device, 0, len(seen))
	for _, d := range seen {
		devices = append(devices, d)
	}
	sort.Slice(devices, func(i, j int) bool { return devices[i].Code < devices[j].Code })
	return devices, nil
}

func deriveOperators(links []model.PrivateLink, devices []model.Device) ([]model.Operator, error) {
	names := make(map[string]struct{})
	for _, l := range links {
		if l.Operator1 == "" {
			return nil, fmt.Errorf("%w: private link %s-%s has an empty operator1", shapleyerr.ErrInvalidInput, l.Start, l.End)
		}
		names[l.Operator1] = struct{}{}
		if l.Operator2 != "" {
			if l.Operator2 == l.Operator1 {
				return nil, fmt.Errorf("%w: private link %s-%s has operator2 equal to operator1", shapleyerr.ErrInvalidInput, l.Start, l.End)
			}
			names[l.Operator2] = struct{}{}
		}
	}
	for _, d := range devices {
		if d.Operator != "" {
			names[d.Operator] = struct{}{}
		}
	}

	sorted := make([]string, 0, len(names))
	for n := range names {
		sorted = append(sorted, n)
	}
	sort.Strings(sorted)

	ops := make([]model.Operator, len(sorted))
	for i, n := range sorted {
		ops[i] = model.Operator{Name: n, Index: i}
	}
	return ops, nil
}

func validateLinks(links []model.PrivateLink, deviceOperator map[string]string) error {
	for _, l := range links {
		if l.Cost.LessThan(decimalx.Zero) {
			return fmt.Errorf("%w: private link %s-%s has negative cost %s", shapleyerr.ErrInvalidInput, l.Start, l.End, l.Cost)
		}
		if !l.Bandwidth.GreaterThan(decimalx.Zero) {
			return fmt.Errorf("%w: private link %s-%s has non-positive bandwidth %s", shapleyerr.ErrInvalidInput, l.Start, l.End, l.Bandwidth)
		}
		if _, ok := deviceOperator[l.Start]; !ok {
			return fmt.Errorf("%w: private link references unknown device %q", shapleyerr.ErrInvalidInput, l.Start)
		}
		if _, ok := deviceOperator[l.End]; !ok {
			return fmt.Errorf("%w: private link references unknown device %q", shapleyerr.ErrInvalidInput, l.End)
		}
	}
	return nil
}

func validatePublicLinks(links []model.PublicLink) error {
	for _, l := range links {
		if l.Cost.LessThan(decimalx.Zero) {
			return fmt.Errorf("%w: public link %s-%s has negative cost %s", shapleyerr.ErrInvalidInput, l.Start, l.End, l.Cost)
		}
	}
	return nil
}

func collectCities(publicLinks []model.PublicLink, devices []model.Device) map[string]struct{} {
	cities := make(map[string]struct{})
	for _, l := range publicLinks {
		cities[l.Start] = struct{}{}
		cities[l.End] = struct{}{}
	}
	for _, d := range devices {
		cities[cityOf(d.Code)] = struct{}{}
	}
	return cities
}

// cityOf returns a device code's city-code prefix: everything before its
// first digit (e.g. "FRA1" -> "FRA"), or the whole code if it has no digit.
func cityOf(deviceCode string) string {
	i := 0
	for i < len(deviceCode) && (deviceCode[i] < '0' || deviceCode[i] > '9') {
		i++
	}
	return deviceCode[:i]
}

func validateDemands(demands []model.Demand, cities map[string]struct{}) error {
	for _, d := range demands {
		if !d.Traffic.GreaterThan(decimalx.Zero) {
			return fmt.Errorf("%w: demand %s->%s has non-positive traffic %s", shapleyerr.ErrInvalidInput, d.Start, d.End, d.Traffic)
		}
		if _, ok := cities[d.Start]; !ok {
			return fmt.Errorf("%w: demand source city %q is absent from public links and device codes", shapleyerr.ErrInconsistentTopology, d.Start)
		}
		if _, ok := cities[d.End]; !ok {
			return fmt.Errorf("%w: demand destination city %q is absent from public links and device codes", shapleyerr.ErrInconsistentTopology, d.End)
		}
	}
	return nil
}
