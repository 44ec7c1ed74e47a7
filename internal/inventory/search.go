package inventory

import (
	"strings"

	"sparesmart-backend/internal/model"
)

// Results holds the matching subset of each collection.
type Results struct {
	Lines         []model.Line         `json:"lines"`
	Machines      []model.Machine      `json:"machines"`
	Parts         []model.Part         `json:"parts"`
	Checkweighers []model.Checkweigher `json:"checkweighers"`
}

// EmptyResults returns result sets that encode as empty JSON arrays.
func EmptyResults() Results {
	return Results{
		Lines:         []model.Line{},
		Machines:      []model.Machine{},
		Parts:         []model.Part{},
		Checkweighers: []model.Checkweigher{},
	}
}

// Total is the number of matches across all collections.
func (r Results) Total() int {
	return len(r.Lines) + len(r.Machines) + len(r.Parts) + len(r.Checkweighers)
}

// Search matches q case-insensitively against each collection independently.
// A blank query matches nothing.
func Search(s Snapshot, q string) Results {
	res := EmptyResults()
	needle := normalize(q)
	if needle == "" {
		return res
	}

	for _, l := range s.Lines {
		if LineMatches(l, needle) {
			res.Lines = append(res.Lines, l)
		}
	}
	for _, m := range s.Machines {
		if containsAny(needle, m.Name, m.Description, m.Location) {
			res.Machines = append(res.Machines, m)
		}
	}
	for _, p := range s.Parts {
		if PartMatches(p, needle) || strings.Contains(strings.ToLower(p.Description), needle) {
			res.Parts = append(res.Parts, p)
		}
	}
	for _, c := range s.Checkweighers {
		if containsAny(needle, c.Name) {
			res.Checkweighers = append(res.Checkweighers, c)
		}
	}
	return res
}

// LineMatches reports whether a normalized needle occurs in the line's text fields.
func LineMatches(l model.Line, needle string) bool {
	return containsAny(needle, l.Name, l.Description, l.Location)
}

// PartMatches reports whether a normalized needle occurs in the part's name,
// part number, location or notes.
func PartMatches(p model.Part, needle string) bool {
	return containsAny(needle, p.Name, p.PartNumber, p.Location, p.Notes)
}

// FilterMachines narrows a machine list by name. An empty query keeps every machine.
func FilterMachines(machines []model.Machine, q string) []model.Machine {
	needle := normalize(q)
	if needle == "" {
		return machines
	}
	out := make([]model.Machine, 0, len(machines))
	for _, m := range machines {
		if containsAny(needle, m.Name) {
			out = append(out, m)
		}
	}
	return out
}

// FilterParts narrows a part list by name, part number, location or notes.
// An empty query keeps every part.
func FilterParts(parts []model.Part, q string) []model.Part {
	needle := normalize(q)
	if needle == "" {
		return parts
	}
	out := make([]model.Part, 0, len(parts))
	for _, p := range parts {
		if PartMatches(p, needle) {
			out = append(out, p)
		}
	}
	return out
}

func normalize(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

func containsAny(needle string, fields ...string) bool {
	for _, f := range fields {
		if f != "" && strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}
