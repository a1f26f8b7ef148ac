// Command network-shapley is the CLI framing around the core: load a TOML
// config plus the CSV link/demand files it points at, compute Shapley
// values, and print the result table. CLI framing, logging, and CSV
// parsing are all external collaborators per spec.md section 1 — the
// computation itself lives entirely in the root shapley package.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"

	shapley "github.com/doublezerofoundation/network-shapley"
	"github.com/doublezerofoundation/network-shapley/internal/csvio"
	"github.com/doublezerofoundation/network-shapley/internal/decimalx"
	"github.com/doublezerofoundation/network-shapley/internal/report"
	"github.com/doublezerofoundation/network-shapley/internal/solver"
)

// ScenarioConfig mirrors forwarding/cmd/main.go's pattern of a flat TOML
// struct loaded with toml.DecodeFile, one section per concern.
type ScenarioConfig struct {
	Paths      PathsConfig      `toml:"paths"`
	Parameters ParametersConfig `toml:"parameters"`
	Solver     SolverConfig     `toml:"solver"`
}

type PathsConfig struct {
	PrivateLinks string `toml:"private_links"`
	PublicLinks  string `toml:"public_links"`
	Demands      string `toml:"demands"`
	Devices      string `toml:"devices"`
}

type ParametersConfig struct {
	OperatorUptime   string `toml:"operator_uptime"`
	HybridPenalty    string `toml:"hybrid_penalty"`
	DemandMultiplier string `toml:"demand_multiplier"`
}

type SolverConfig struct {
	MaxIterations int     `toml:"max_iterations"`
	Tolerance     float64 `toml:"tolerance"`
}

func loadConfig(path string) (*ScenarioConfig, error) {
	var cfg ScenarioConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
	}
	return &cfg, nil
}

func main() {
	configPath := flag.String("config", "scenario.toml", "Path to the scenario TOML config file")
	privatePath := flag.String("private", "", "Override: path to the private links CSV")
	publicPath := flag.String("public", "", "Override: path to the public links CSV")
	demandsPath := flag.String("demands", "", "Override: path to the demands CSV")
	precision := flag.Int("precision", 4, "Number of decimal digits in the printed value column")
	flag.Parse()

	if err := run(*configPath, *privatePath, *publicPath, *demandsPath, *precision); err != nil {
		log.Fatalf("network-shapley: %v", err)
	}
}

func run(configPath, privateOverride, publicOverride, demandsOverride string, precision int) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	privatePath := firstNonEmpty(privateOverride, cfg.Paths.PrivateLinks)
	publicPath := firstNonEmpty(publicOverride, cfg.Paths.PublicLinks)
	demandsPath := firstNonEmpty(demandsOverride, cfg.Paths.Demands)

	privateLinks, err := csvio.LoadPrivateLinks(privatePath)
	if err != nil {
		return err
	}
	publicLinks, err := csvio.LoadPublicLinks(publicPath)
	if err != nil {
		return err
	}
	demands, err := csvio.LoadDemands(demandsPath)
	if err != nil {
		return err
	}
	var devices []shapley.Device
	if cfg.Paths.Devices != "" {
		devices, err = csvio.LoadDevices(cfg.Paths.Devices)
		if err != nil {
			return err
		}
	}

	uptime, err := parseDecimalParam(cfg.Parameters.OperatorUptime, "operator_uptime")
	if err != nil {
		return err
	}
	penalty, err := parseDecimalParam(cfg.Parameters.HybridPenalty, "hybrid_penalty")
	if err != nil {
		return err
	}
	multiplier, err := parseDecimalParam(cfg.Parameters.DemandMultiplier, "demand_multiplier")
	if err != nil {
		return err
	}

	raw := shapley.RawInput{
		PrivateLinks:     privateLinks,
		PublicLinks:      publicLinks,
		Demands:          demands,
		Devices:          devices,
		OperatorUptime:   uptime,
		HybridPenalty:    penalty,
		DemandMultiplier: multiplier,
	}

	log.Printf("computing Shapley values over %d private links, %d public links, %d demands",
		len(privateLinks), len(publicLinks), len(demands))

	results, err := shapley.ComputeWithConfig(context.Background(), raw, shapley.Config{
		Solver: solver.Config{
			MaxIterations: cfg.Solver.MaxIterations,
			Tolerance:     cfg.Solver.Tolerance,
		},
	})
	if err != nil {
		return err
	}

	return report.Write(os.Stdout, results, precision)
}

func parseDecimalParam(s, name string) (decimalx.Decimal, error) {
	if s == "" {
		return decimalx.Decimal{}, fmt.Errorf("scenario config is missing %s", name)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimalx.Decimal{}, fmt.Errorf("scenario config field %s: %w", name, err)
	}
	return d, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
