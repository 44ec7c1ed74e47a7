package api

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sparesmart-backend/internal/inventory"
	"sparesmart-backend/internal/model"
	"sparesmart-backend/internal/notification"
)

func TestCreateMachine_InvalidReference(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/machines", gin.H{"line_id": 42, "name": "Filler"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

	w = env.do(t, http.MethodPost, "/api/machines", gin.H{"name": "Filler"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t, `{"error":"validation failed","fields":{"line_id":"gt"}}`, w.Body.String())
}

func TestMachineCRUD(t *testing.T) {
	env := newTestEnv(t)
	line := env.createLine(t, "Canning Line 2")
	other := env.createLine(t, "Canning Line 1")
	machine := env.createMachine(t, line.ID, "Seamer")
	assert.Equal(t, model.MachineStatusActive, machine.Status)

	path := "/api/machines/" + strconv.FormatInt(machine.ID, 10)

	w := env.do(t, http.MethodPatch, path, gin.H{"status": "down", "line_id": other.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &machine)
	assert.Equal(t, "down", machine.Status)
	assert.Equal(t, other.ID, machine.LineID)

	w = env.do(t, http.MethodPatch, path, gin.H{"line_id": 999})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = env.do(t, http.MethodPatch, path, gin.H{"line_id": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/machines?line_id="+strconv.FormatInt(other.ID, 10), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var machines []model.Machine
	decode(t, w, &machines)
	require.Len(t, machines, 1)

	w = env.do(t, http.MethodGet, "/api/machines?line_id=x", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	env.createPart(t, gin.H{"machine_id": machine.ID, "name": "Seaming Chuck"})
	w = env.do(t, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodGet, "/api/parts", nil)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestListMachineParts(t *testing.T) {
	env := newTestEnv(t)
	line := env.createLine(t, "Canning Line 2")
	filler := env.createMachine(t, line.ID, "Filler")
	env.createPart(t, gin.H{"machine_id": filler.ID, "name": "Filling Valve", "part_number": "FV-100", "location": "Shelf A1"})
	env.createPart(t, gin.H{"machine_id": filler.ID, "name": "Gasket", "notes": "order from Krones"})

	path := "/api/machines/" + strconv.FormatInt(filler.ID, 10) + "/parts"

	var parts []model.Part
	w := env.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &parts)
	assert.Len(t, parts, 2)

	for _, q := range []string{"fv-1", "SHELF", "krones"} {
		w = env.do(t, http.MethodGet, path+"?q="+q, nil)
		decode(t, w, &parts)
		assert.Len(t, parts, 1, q)
	}

	w = env.do(t, http.MethodGet, "/api/machines/999/parts", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPartCRUD(t *testing.T) {
	env := newTestEnv(t)
	line := env.createLine(t, "Canning Line 2")
	filler := env.createMachine(t, line.ID, "Filler")

	part := env.createPart(t, gin.H{
		"machine_id":      filler.ID,
		"name":            "Filling Valve",
		"part_number":     "FV-100",
		"stock_quantity":  5,
		"min_stock_level": 2,
		"cost":            "12.50",
		"next_due":        "2026-03-01",
	})
	assert.False(t, part.LowStock)
	assert.Equal(t, "12.5", part.Cost.Decimal.String())
	assert.Equal(t, "2026-03-01", part.NextDue.String())

	path := "/api/parts/" + strconv.FormatInt(part.ID, 10)

	w := env.do(t, http.MethodPatch, path, `{"cost":null,"next_due":null,"notes":"check seals"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &part)
	assert.False(t, part.Cost.Valid)
	assert.False(t, part.NextDue.Valid())
	assert.Equal(t, "check seals", part.Notes)

	for _, body := range []string{`{"stock_quantity":-1}`, `{"stock_quantity":1.5}`, `{"cost":"-3"}`, `{"next_due":"soon"}`, `{"low_stock":true}`} {
		w = env.do(t, http.MethodPatch, path, body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}

	w = env.do(t, http.MethodPost, "/api/parts", gin.H{"machine_id": filler.ID, "name": "Valve", "stock_quantity": -2})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = env.do(t, http.MethodPost, "/api/parts", gin.H{"machine_id": 999, "name": "Valve"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = env.do(t, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = env.do(t, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPartWrites_LowStockAlerts(t *testing.T) {
	env := newTestEnv(t)
	line := env.createLine(t, "Canning Line 2")
	filler := env.createMachine(t, line.ID, "Filler")

	low := env.createPart(t, gin.H{"machine_id": filler.ID, "name": "Valve", "stock_quantity": 1, "min_stock_level": 4})
	assert.True(t, low.LowStock)
	require.Len(t, env.dispatcher.alerts, 1)
	assert.Equal(t, notification.KindLowStock, env.dispatcher.alerts[0].Kind)
	assert.Equal(t, line.ID, env.dispatcher.alerts[0].LineID)

	// Already low: no second alert.
	w := env.do(t, http.MethodPatch, "/api/parts/"+strconv.FormatInt(low.ID, 10), gin.H{"stock_quantity": 0})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, env.dispatcher.alerts, 1)

	ok := env.createPart(t, gin.H{"machine_id": filler.ID, "name": "Belt", "stock_quantity": 3, "min_stock_level": 3})
	assert.False(t, ok.LowStock)
	assert.Len(t, env.dispatcher.alerts, 1)

	w = env.do(t, http.MethodPatch, "/api/parts/"+strconv.FormatInt(ok.ID, 10), gin.H{"stock_quantity": 2})
	require.Equal(t, http.StatusOK, w.Code)
	var updated model.Part
	decode(t, w, &updated)
	assert.True(t, updated.LowStock)
	assert.Len(t, env.dispatcher.alerts, 2)

	// Every write records the stock level.
	assert.Len(t, env.telemetry.parts, 4)
}

func TestListParts_Filters(t *testing.T) {
	env := newTestEnv(t)
	canning1 := env.createLine(t, "Canning Line 1")
	canning2 := env.createLine(t, "Canning Line 2")
	depal := env.createMachine(t, canning1.ID, "Depal")
	filler := env.createMachine(t, canning2.ID, "Filler")
	env.createPart(t, gin.H{"machine_id": depal.ID, "name": "Belt", "stock_quantity": 3, "min_stock_level": 3})
	env.createPart(t, gin.H{"machine_id": filler.ID, "name": "Valve", "stock_quantity": 1, "min_stock_level": 4})

	count := func(query string) int {
		w := env.do(t, http.MethodGet, "/api/parts"+query, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var parts []model.Part
		decode(t, w, &parts)
		return len(parts)
	}

	assert.Equal(t, 2, count(""))
	assert.Equal(t, 1, count("?low_stock=true"))
	assert.Equal(t, 2, count("?low_stock=false"))
	assert.Equal(t, 1, count("?line_id="+strconv.FormatInt(canning1.ID, 10)))
	assert.Equal(t, 1, count("?machine_id="+strconv.FormatInt(filler.ID, 10)))
	assert.Equal(t, 0, count("?machine_id="+strconv.FormatInt(filler.ID, 10)+"&line_id="+strconv.FormatInt(canning1.ID, 10)))

	w := env.do(t, http.MethodGet, "/api/parts?low_stock=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAggregateParts(t *testing.T) {
	env := newTestEnv(t)
	canning1 := env.createLine(t, "Canning Line 1")
	canning2 := env.createLine(t, "Canning Line 2")
	depal := env.createMachine(t, canning1.ID, "Depal")
	filler := env.createMachine(t, canning2.ID, "Filler")
	env.createPart(t, gin.H{"machine_id": depal.ID, "name": "Drive Belt", "part_number": "DB-1", "stock_quantity": 1, "min_stock_level": 2})
	env.createPart(t, gin.H{"machine_id": filler.ID, "name": "Drive Belt", "part_number": "DB-1", "stock_quantity": 2, "min_stock_level": 5})
	env.createPart(t, gin.H{"machine_id": filler.ID, "name": "Valve", "part_number": "FV-100", "stock_quantity": 9, "min_stock_level": 1})
	env.createPart(t, gin.H{"machine_id": filler.ID, "name": "Rag"})

	w := env.do(t, http.MethodGet, "/api/parts/aggregate", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var rows []inventory.AggregatedPart
	decode(t, w, &rows)
	require.Len(t, rows, 2)

	belt := rows[0]
	assert.Equal(t, "DB-1", belt.PartNumber)
	assert.Equal(t, 3, belt.TotalQuantity)
	assert.Equal(t, 5, belt.MinStockLevel)
	assert.Equal(t, 2, belt.PartCount)
	assert.True(t, belt.LowStock)
	assert.Equal(t, []string{"Depal", "Filler"}, belt.Machines)
	assert.Equal(t, []string{"Canning Line 1", "Canning Line 2"}, belt.Lines)

	w = env.do(t, http.MethodGet, "/api/parts/aggregate?q=fv", nil)
	decode(t, w, &rows)
	require.Len(t, rows, 1)
	assert.Equal(t, "FV-100", rows[0].PartNumber)
}

func TestCheckweigherCRUD(t *testing.T) {
	env := newTestEnv(t)
	line := env.createLine(t, "Canning Line 2")

	w := env.do(t, http.MethodPost, "/api/checkweighers", gin.H{"line_id": line.ID, "name": "CW Cluster", "next_due": "2026-05-01"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var cw model.Checkweigher
	decode(t, w, &cw)

	path := "/api/checkweighers/" + strconv.FormatInt(cw.ID, 10)
	w = env.do(t, http.MethodPatch, path, gin.H{"last_calibrated": "2026-04-30", "next_due": "2026-10-30"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &cw)
	assert.Equal(t, "2026-04-30", cw.LastCalibrated.String())
	assert.Equal(t, "2026-10-30", cw.NextDue.String())

	w = env.do(t, http.MethodGet, "/api/lines/"+strconv.FormatInt(line.ID, 10)+"/checkweighers", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var cws []model.Checkweigher
	decode(t, w, &cws)
	assert.Len(t, cws, 1)

	w = env.do(t, http.MethodPost, "/api/checkweighers", gin.H{"line_id": 999, "name": "CW"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = env.do(t, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = env.do(t, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
