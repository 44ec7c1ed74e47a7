package store

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"sparesmart-backend/internal/inventory"
)

// Columns matched by Search, per table.
var (
	lineSearchColumns         = []string{"name", "description", "location"}
	machineSearchColumns      = []string{"name", "description", "location"}
	partSearchColumns         = []string{"name", "part_number", "location", "notes", "description"}
	checkweigherSearchColumns = []string{"name"}
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern turns a free-text query into a lower-cased substring LIKE pattern.
func likePattern(q string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(q))) + "%"
}

// matchAny adds "LOWER(c1) LIKE p OR LOWER(c2) LIKE p ..." to the query.
func matchAny(db *gorm.DB, pattern string, columns []string) *gorm.DB {
	conds := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, col := range columns {
		conds[i] = fmt.Sprintf(`LOWER(%s) LIKE ? ESCAPE '\'`, col)
		args[i] = pattern
	}
	return db.Where(strings.Join(conds, " OR "), args...)
}

// Search runs a case-insensitive substring match against each table
// independently. A blank query matches nothing.
func (s *gormStore) Search(ctx context.Context, q string) (inventory.Results, error) {
	res := inventory.EmptyResults()
	if strings.TrimSpace(q) == "" {
		return res, nil
	}

	// SQLite's LOWER only folds ASCII, so accented text is matched in Go.
	if s.db.Dialector.Name() == "sqlite" {
		snap, err := s.Snapshot(ctx)
		if err != nil {
			return res, fmt.Errorf("failed to load inventory for search: %w", err)
		}
		return inventory.Search(snap, q), nil
	}

	pattern := likePattern(q)
	db := s.db.WithContext(ctx)

	if err := matchAny(db, pattern, lineSearchColumns).Order("name").Find(&res.Lines).Error; err != nil {
		return res, fmt.Errorf("failed to search lines: %w", err)
	}
	if err := matchAny(db, pattern, machineSearchColumns).Order("name").Find(&res.Machines).Error; err != nil {
		return res, fmt.Errorf("failed to search machines: %w", err)
	}
	if err := matchAny(db, pattern, partSearchColumns).Order("name").Find(&res.Parts).Error; err != nil {
		return res, fmt.Errorf("failed to search parts: %w", err)
	}
	if err := matchAny(db, pattern, checkweigherSearchColumns).Order("name").Find(&res.Checkweighers).Error; err != nil {
		return res, fmt.Errorf("failed to search checkweighers: %w", err)
	}
	return res, nil
}
