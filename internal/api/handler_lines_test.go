package api

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sparesmart-backend/internal/events"
	"sparesmart-backend/internal/model"
)

func TestLineCRUD(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/lines", gin.H{"name": "  Kegging Line ", "location": "Hall C", "capacity": 1200})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var line model.Line
	decode(t, w, &line)
	assert.NotZero(t, line.ID)
	assert.Equal(t, "Kegging Line", line.Name)
	require.NotNil(t, line.Capacity)
	assert.Equal(t, 1200, *line.Capacity)

	path := "/api/lines/" + strconv.FormatInt(line.ID, 10)

	w = env.do(t, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPatch, path, `{"description":"Kegs","capacity":null}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &line)
	assert.Equal(t, "Kegs", line.Description)
	assert.Equal(t, "Hall C", line.Location)
	assert.Nil(t, line.Capacity)

	w = env.do(t, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"line not found"}`, w.Body.String())

	require.Len(t, env.publisher.events, 3)
	assert.Equal(t, events.ActionCreated, env.publisher.events[0].Action)
	assert.Equal(t, events.ActionUpdated, env.publisher.events[1].Action)
	assert.Equal(t, events.ActionDeleted, env.publisher.events[2].Action)
	assert.Equal(t, events.EntityLine, env.publisher.events[2].Entity)
}

func TestCreateLine_Validation(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/lines", gin.H{"name": "   "})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t, `{"error":"validation failed","fields":{"name":"notblank"}}`, w.Body.String())

	w = env.do(t, http.MethodPost, "/api/lines", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	env.createLine(t, "Bottling Line 1")
	w = env.do(t, http.MethodPost, "/api/lines", gin.H{"name": "Bottling Line 1"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUpdateLine_Errors(t *testing.T) {
	env := newTestEnv(t)
	line := env.createLine(t, "Canning Line 1")
	env.createLine(t, "Canning Line 2")
	path := "/api/lines/" + strconv.FormatInt(line.ID, 10)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
	}{
		{"missing row", "/api/lines/999", `{"name":"X"}`, http.StatusNotFound},
		{"bad id", "/api/lines/abc", `{"name":"X"}`, http.StatusBadRequest},
		{"unknown column", path, `{"colour":"red"}`, http.StatusBadRequest},
		{"empty required", path, `{"name":"  "}`, http.StatusBadRequest},
		{"wrong type", path, `{"capacity":"lots"}`, http.StatusBadRequest},
		{"negative", path, `{"capacity":-1}`, http.StatusBadRequest},
		{"empty body", path, `{}`, http.StatusBadRequest},
		{"not an object", path, `[1]`, http.StatusBadRequest},
		{"duplicate name", path, `{"name":"Canning Line 2"}`, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPatch, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestListLines_Sort(t *testing.T) {
	env := newTestEnv(t)
	env.createLine(t, "Kegging Line")
	env.createLine(t, "Bottling Line 1")

	w := env.do(t, http.MethodGet, "/api/lines", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var lines []model.Line
	decode(t, w, &lines)
	require.Len(t, lines, 2)
	assert.Equal(t, "Bottling Line 1", lines[0].Name)

	w = env.do(t, http.MethodGet, "/api/lines?sort=created", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &lines)
	assert.Equal(t, "Kegging Line", lines[0].Name)

	w = env.do(t, http.MethodGet, "/api/lines?sort=size", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListLines_Empty(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/lines", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestListLineMachines_DisplayOrder(t *testing.T) {
	env := newTestEnv(t)
	canning2 := env.createLine(t, "Canning Line 2")
	kegging := env.createLine(t, "Kegging Line")

	for _, name := range []string{"Palletiser", "Zebra Labeller", "Filler", "Depal", "Seamer"} {
		env.createMachine(t, canning2.ID, name)
	}
	for _, name := range []string{"Washer", "Racker"} {
		env.createMachine(t, kegging.ID, name)
	}

	names := func(path string) []string {
		w := env.do(t, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var machines []model.Machine
		decode(t, w, &machines)
		out := make([]string, len(machines))
		for i, m := range machines {
			out[i] = m.Name
		}
		return out
	}

	canningPath := "/api/lines/" + strconv.FormatInt(canning2.ID, 10) + "/machines"
	assert.Equal(t, []string{"Depal", "Filler", "Seamer", "Palletiser", "Zebra Labeller"}, names(canningPath))
	assert.Equal(t, []string{"Filler"}, names(canningPath+"?q=FILL"))
	assert.Equal(t, []string{"Racker", "Washer"}, names("/api/lines/"+strconv.FormatInt(kegging.ID, 10)+"/machines"))

	w := env.do(t, http.MethodGet, "/api/lines/999/machines", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteLine_Cascades(t *testing.T) {
	env := newTestEnv(t)
	line := env.createLine(t, "Canning Line 2")
	other := env.createLine(t, "Canning Line 1")
	filler := env.createMachine(t, line.ID, "Filler")
	depal := env.createMachine(t, other.ID, "Depal")
	valve := env.createPart(t, gin.H{"machine_id": filler.ID, "name": "Valve"})
	belt := env.createPart(t, gin.H{"machine_id": depal.ID, "name": "Belt"})

	w := env.do(t, http.MethodPost, "/api/checkweighers", gin.H{"line_id": line.ID, "name": "CW 1"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodDelete, "/api/lines/"+strconv.FormatInt(line.ID, 10), nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/machines/"+strconv.FormatInt(filler.ID, 10), nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/parts/"+strconv.FormatInt(valve.ID, 10), nil).Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/parts/"+strconv.FormatInt(belt.ID, 10), nil).Code)

	w = env.do(t, http.MethodGet, "/api/checkweighers", nil)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = env.do(t, http.MethodDelete, "/api/lines/"+strconv.FormatInt(line.ID, 10), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
