package inventory

import (
	"sort"
	"strings"

	"sparesmart-backend/internal/model"
)

// AggregatedPart is the stock of one part number summed across every machine.
type AggregatedPart struct {
	PartNumber    string   `json:"part_number"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	TotalQuantity int      `json:"total_quantity"`
	MinStockLevel int      `json:"min_stock_level"`
	Machines      []string `json:"machines"`
	Lines         []string `json:"lines"`
	PartCount     int      `json:"part_count"`
	LowStock      bool     `json:"low_stock"`
}

type aggregateAcc struct {
	part     AggregatedPart
	machines map[string]struct{}
	lines    map[string]struct{}
}

// Aggregate groups parts by part number, summing stock and keeping the largest
// minimum level. Parts with a blank part number are not aggregable and are skipped.
// The result is sorted by part number.
func Aggregate(parts []model.Part, machines []model.Machine, lines []model.Line) []AggregatedPart {
	machineByID := make(map[int64]model.Machine, len(machines))
	for _, m := range machines {
		machineByID[m.ID] = m
	}
	lineByID := make(map[int64]model.Line, len(lines))
	for _, l := range lines {
		lineByID[l.ID] = l
	}

	accs := make(map[string]*aggregateAcc)
	for _, p := range parts {
		key := strings.TrimSpace(p.PartNumber)
		if key == "" {
			continue
		}

		acc, ok := accs[key]
		if !ok {
			acc = &aggregateAcc{
				part:     AggregatedPart{PartNumber: key, MinStockLevel: p.MinStockLevel},
				machines: make(map[string]struct{}),
				lines:    make(map[string]struct{}),
			}
			accs[key] = acc
		}

		acc.part.TotalQuantity += p.StockQuantity
		acc.part.PartCount++
		if p.MinStockLevel > acc.part.MinStockLevel {
			acc.part.MinStockLevel = p.MinStockLevel
		}
		if acc.part.Name == "" {
			acc.part.Name = p.Name
		}
		if acc.part.Description == "" {
			acc.part.Description = p.Description
		}

		if m, ok := machineByID[p.MachineID]; ok {
			acc.machines[m.Name] = struct{}{}
			if l, ok := lineByID[m.LineID]; ok {
				acc.lines[l.Name] = struct{}{}
			}
		}
	}

	out := make([]AggregatedPart, 0, len(accs))
	for _, acc := range accs {
		acc.part.Machines = sortedKeys(acc.machines)
		acc.part.Lines = sortedKeys(acc.lines)
		acc.part.LowStock = IsLowStock(acc.part.TotalQuantity, acc.part.MinStockLevel)
		out = append(out, acc.part)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PartNumber < out[j].PartNumber })
	return out
}

// FilterAggregated keeps the rows whose part number, name or description contains q.
// An empty query keeps every row.
func FilterAggregated(rows []AggregatedPart, q string) []AggregatedPart {
	needle := normalize(q)
	if needle == "" {
		return rows
	}
	out := make([]AggregatedPart, 0, len(rows))
	for _, r := range rows {
		if containsAny(needle, r.PartNumber, r.Name, r.Description) {
			out = append(out, r)
		}
	}
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
