package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sparesmart-backend/internal/events"
	"sparesmart-backend/internal/inventory"
	"sparesmart-backend/internal/store"
)

// ListLines returns every line, sorted by name or by creation time.
func (h *Handler) ListLines(c *gin.Context) {
	by := c.DefaultQuery("sort", inventory.SortByName)
	if by != inventory.SortByName && by != inventory.SortByCreated {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sort must be name or created"})
		return
	}

	lines, err := h.store.ListLines(c.Request.Context())
	if err != nil {
		respondStoreError(c, err, "line")
		return
	}
	c.JSON(http.StatusOK, orEmpty(inventory.SortLines(lines, by)))
}

// GetLine returns a single line.
func (h *Handler) GetLine(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	line, err := h.store.GetLine(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, err, "line")
		return
	}
	c.JSON(http.StatusOK, line)
}

// CreateLine inserts a line and returns it.
func (h *Handler) CreateLine(c *gin.Context) {
	var req createLineRequest
	if !bindAndValidate(c, &req) {
		return
	}

	line := req.toModel()
	if err := h.store.CreateLine(c.Request.Context(), &line); err != nil {
		respondStoreError(c, err, "line")
		return
	}
	h.publish(c, events.EntityLine, events.ActionCreated, line.ID, line)
	c.JSON(http.StatusCreated, line)
}

// UpdateLine applies a partial update to a line.
func (h *Handler) UpdateLine(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	updates, ok := bindPatch(c, linePatchFields)
	if !ok {
		return
	}

	line, err := h.store.UpdateLine(c.Request.Context(), id, updates)
	if err != nil {
		respondStoreError(c, err, "line")
		return
	}
	h.publish(c, events.EntityLine, events.ActionUpdated, line.ID, line)
	c.JSON(http.StatusOK, line)
}

// DeleteLine removes a line together with its machines, parts and checkweighers.
func (h *Handler) DeleteLine(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteLine(c.Request.Context(), id); err != nil {
		respondStoreError(c, err, "line")
		return
	}
	h.publish(c, events.EntityLine, events.ActionDeleted, id, nil)
	c.Status(http.StatusNoContent)
}

// ListLineMachines returns the machines of a line in display order,
// optionally narrowed by ?q=.
func (h *Handler) ListLineMachines(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	line, err := h.store.GetLine(ctx, id)
	if err != nil {
		respondStoreError(c, err, "line")
		return
	}
	machines, err := h.store.ListMachines(ctx, store.MachineFilter{LineID: id})
	if err != nil {
		respondStoreError(c, err, "machine")
		return
	}

	// Lines without a configured order fall back to alphabetical.
	ordered := inventory.SortMachines(machines, h.display.MachineOrder[line.Name])
	c.JSON(http.StatusOK, orEmpty(inventory.FilterMachines(ordered, c.Query("q"))))
}

// ListLineCheckweighers returns the checkweighers of a line.
func (h *Handler) ListLineCheckweighers(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if _, err := h.store.GetLine(ctx, id); err != nil {
		respondStoreError(c, err, "line")
		return
	}
	cws, err := h.store.ListCheckweighers(ctx, store.CheckweigherFilter{LineID: id})
	if err != nil {
		respondStoreError(c, err, "checkweigher")
		return
	}
	c.JSON(http.StatusOK, orEmpty(cws))
}
