package notification

import (
	"fmt"

	"sparesmart-backend/internal/model"
)

// LowStockAlert builds the alert raised when a part drops below its minimum.
func LowStockAlert(part model.Part, machine model.Machine, line model.Line) Alert {
	return Alert{
		Kind:   KindLowStock,
		LineID: machine.LineID,
		Title:  "Low stock: " + part.Name,
		Body: fmt.Sprintf("%s on %s: %d in stock, minimum %d",
			label(machine.Name, "unknown machine"), label(line.Name, "unknown line"), part.StockQuantity, part.MinStockLevel),
		Key: fmt.Sprintf("%s:part:%d", KindLowStock, part.ID),
	}
}

// PartDueAlert builds the alert raised when a part check is due.
func PartDueAlert(part model.Part, machine model.Machine, line model.Line) Alert {
	return Alert{
		Kind:   KindPartDue,
		LineID: machine.LineID,
		Title:  "Part check due: " + part.Name,
		Body: fmt.Sprintf("%s on %s is due %s",
			label(machine.Name, "unknown machine"), label(line.Name, "unknown line"), part.NextDue),
		Key: fmt.Sprintf("%s:part:%d:%s", KindPartDue, part.ID, part.NextDue),
	}
}

// CalibrationDueAlert builds the alert raised when a checkweigher needs calibrating.
func CalibrationDueAlert(cw model.Checkweigher, line model.Line) Alert {
	return Alert{
		Kind:   KindCalibrationDue,
		LineID: cw.LineID,
		Title:  "Calibration due: " + cw.Name,
		Body:   fmt.Sprintf("%s on %s is due %s", cw.Name, label(line.Name, "unknown line"), cw.NextDue),
		Key:    fmt.Sprintf("%s:checkweigher:%d:%s", KindCalibrationDue, cw.ID, cw.NextDue),
	}
}

func label(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}
