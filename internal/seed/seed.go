// Package seed loads the starting plant layout into an empty database.
package seed

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"sparesmart-backend/config"
	"sparesmart-backend/internal/model"
)

// Lines are the production lines of the plant, in creation order.
var Lines = []string{
	"Canning Line 1",
	"Canning Line 2",
	"Kegging Line",
	"Bottling Line 1",
	"Bottling Line 2",
}

// MachineLine is the line whose machines are created up front.
const MachineLine = "Canning Line 2"

// Result reports what Run created.
type Result struct {
	Skipped  bool
	Lines    int
	Machines int
}

// Run creates the lines and the Canning Line 2 machines in one transaction.
// It does nothing when any line already exists.
func Run(ctx context.Context, db *gorm.DB) (Result, error) {
	var res Result
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.Line{}).Count(&n).Error; err != nil {
			return fmt.Errorf("failed to count lines: %w", err)
		}
		if n > 0 {
			res.Skipped = true
			return nil
		}

		var machineLine model.Line
		for _, name := range Lines {
			line := model.Line{Name: name}
			if err := tx.Create(&line).Error; err != nil {
				return fmt.Errorf("failed to create line %q: %w", name, err)
			}
			if name == MachineLine {
				machineLine = line
			}
			res.Lines++
		}

		for _, name := range config.DefaultMachineOrder[MachineLine] {
			machine := model.Machine{LineID: machineLine.ID, Name: name, Status: model.MachineStatusActive}
			if err := tx.Create(&machine).Error; err != nil {
				return fmt.Errorf("failed to create machine %q: %w", name, err)
			}
			res.Machines++
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	if res.Skipped {
		log.Info().Msg("seed skipped: lines already exist")
	} else {
		log.Info().Int("lines", res.Lines).Int("machines", res.Machines).Msg("seed data created")
	}
	return res, nil
}
