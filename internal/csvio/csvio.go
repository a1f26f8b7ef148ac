// Package csvio is the CSV ingestion external collaborator of spec.md
// section 6: it maps the documented CSV column layout onto the core's
// model types. It is not part of the Shapley engine — the core never
// imports this package — but spec.md section 6 documents the contract, so
// this is the loader that fulfills it.
package csvio

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/doublezerofoundation/network-shapley/internal/model"
)

// LoadPrivateLinks reads a CSV with header
// start,end,cost,bandwidth,operator1,operator2,shared,uptime.
func LoadPrivateLinks(path string) ([]model.PrivateLink, error) {
	rows, err := readCSV(path, []string{"start", "end", "cost", "bandwidth", "operator1", "operator2", "shared", "uptime"})
	if err != nil {
		return nil, err
	}
	links := make([]model.PrivateLink, 0, len(rows))
	for i, row := range rows {
		cost, err := parseDecimal(row[2])
		if err != nil {
			return nil, fmt.Errorf("csvio: private link row %d: cost: %w", i, err)
		}
		bandwidth, err := parseDecimal(row[3])
		if err != nil {
			return nil, fmt.Errorf("csvio: private link row %d: bandwidth: %w", i, err)
		}
		shared, err := parseIntOrZero(row[6])
		if err != nil {
			return nil, fmt.Errorf("csvio: private link row %d: shared: %w", i, err)
		}
		link := model.PrivateLink{
			Start: row[0], End: row[1], Cost: cost, Bandwidth: bandwidth,
			Operator1: row[4], Operator2: row[5], Shared: shared,
		}
		if row[7] != "" && row[7] != "NA" {
			uptime, err := parseDecimal(row[7])
			if err != nil {
				return nil, fmt.Errorf("csvio: private link row %d: uptime: %w", i, err)
			}
			link.Uptime = &uptime
		}
		links = append(links, link)
	}
	return links, nil
}

// LoadPublicLinks reads a CSV with header start,end,cost.
func LoadPublicLinks(path string) ([]model.PublicLink, error) {
	rows, err := readCSV(path, []string{"start", "end", "cost"})
	if err != nil {
		return nil, err
	}
	links := make([]model.PublicLink, 0, len(rows))
	for i, row := range rows {
		cost, err := parseDecimal(row[2])
		if err != nil {
			return nil, fmt.Errorf("csvio: public link row %d: cost: %w", i, err)
		}
		links = append(links, model.PublicLink{Start: row[0], End: row[1], Cost: cost})
	}
	return links, nil
}

// LoadDemands reads a CSV with header start,end,traffic,type,priority.
func LoadDemands(path string) ([]model.Demand, error) {
	rows, err := readCSV(path, []string{"start", "end", "traffic", "type", "priority"})
	if err != nil {
		return nil, err
	}
	demands := make([]model.Demand, 0, len(rows))
	for i, row := range rows {
		traffic, err := parseDecimal(row[2])
		if err != nil {
			return nil, fmt.Errorf("csvio: demand row %d: traffic: %w", i, err)
		}
		demandType, err := parseIntOrZero(row[3])
		if err != nil {
			return nil, fmt.Errorf("csvio: demand row %d: type: %w", i, err)
		}
		demands = append(demands, model.Demand{
			Start: row[0], End: row[1], Traffic: traffic,
			DemandType: demandType, Priority: row[4],
		})
	}
	return demands, nil
}

// LoadDevices reads a CSV with header code,type_tag,operator.
func LoadDevices(path string) ([]model.Device, error) {
	rows, err := readCSV(path, []string{"code", "type_tag", "operator"})
	if err != nil {
		return nil, err
	}
	devices := make([]model.Device, 0, len(rows))
	for i, row := range rows {
		typeTag, err := parseIntOrZero(row[1])
		if err != nil {
			return nil, fmt.Errorf("csvio: device row %d: type_tag: %w", i, err)
		}
		devices = append(devices, model.Device{Code: row[0], TypeTag: typeTag, Operator: row[2]})
	}
	return devices, nil
}

// readCSV opens path, validates that its header begins with the columns in
// want, in order (extra trailing columns are accepted), and returns the
// remaining data rows.
func readCSV(path string, want []string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csvio: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("csvio: %s: reading header: %w", path, err)
	}
	if len(header) < len(want) {
		return nil, fmt.Errorf("csvio: %s: expected header %v, got %v", path, want, header)
	}
	for i, col := range want {
		if header[i] != col {
			return nil, fmt.Errorf("csvio: %s: expected column %d to be %q, got %q", path, i, col, header[i])
		}
	}

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csvio: %s: %w", path, err)
	}
	return rows, nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

func parseIntOrZero(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
