package inventory

import (
	"sort"
	"strings"

	"sparesmart-backend/internal/model"
)

// Line sort keys.
const (
	SortByName    = "name"
	SortByCreated = "created"
)

// SortMachines orders machines by their position in order. Names missing from
// order come after every listed name; ties are broken alphabetically. A nil
// order sorts alphabetically. The input slice is not modified.
func SortMachines(machines []model.Machine, order []string) []model.Machine {
	rank := make(map[string]int, len(order))
	for i, name := range order {
		if _, seen := rank[name]; !seen {
			rank[name] = i
		}
	}
	unlisted := len(order)

	out := make([]model.Machine, len(machines))
	copy(out, machines)
	sort.SliceStable(out, func(i, j int) bool {
		ri, ok := rank[out[i].Name]
		if !ok {
			ri = unlisted
		}
		rj, ok := rank[out[j].Name]
		if !ok {
			rj = unlisted
		}
		if ri != rj {
			return ri < rj
		}
		return lessName(out[i].Name, out[j].Name)
	})
	return out
}

// SortLines orders lines by name (the default) or by creation time.
func SortLines(lines []model.Line, by string) []model.Line {
	out := make([]model.Line, len(lines))
	copy(out, lines)
	switch by {
	case SortByCreated:
		sort.SliceStable(out, func(i, j int) bool {
			if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
				return out[i].CreatedAt.Before(out[j].CreatedAt)
			}
			return out[i].ID < out[j].ID
		})
	default:
		sort.SliceStable(out, func(i, j int) bool { return lessName(out[i].Name, out[j].Name) })
	}
	return out
}

func lessName(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return a < b
}
