package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sparesmart-backend/internal/events"
	"sparesmart-backend/internal/inventory"
	"sparesmart-backend/internal/store"
)

// ListMachines returns machines, optionally for one line (?line_id=).
func (h *Handler) ListMachines(c *gin.Context) {
	lineID, ok := optionalIDQuery(c, "line_id")
	if !ok {
		return
	}
	machines, err := h.store.ListMachines(c.Request.Context(), store.MachineFilter{LineID: lineID})
	if err != nil {
		respondStoreError(c, err, "machine")
		return
	}
	c.JSON(http.StatusOK, orEmpty(machines))
}

func (h *Handler) GetMachine(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	machine, err := h.store.GetMachine(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, err, "machine")
		return
	}
	c.JSON(http.StatusOK, machine)
}

func (h *Handler) CreateMachine(c *gin.Context) {
	var req createMachineRequest
	if !bindAndValidate(c, &req) {
		return
	}

	machine := req.toModel()
	if err := h.store.CreateMachine(c.Request.Context(), &machine); err != nil {
		respondStoreError(c, err, "machine")
		return
	}
	h.publish(c, events.EntityMachine, events.ActionCreated, machine.ID, machine)
	c.JSON(http.StatusCreated, machine)
}

func (h *Handler) UpdateMachine(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	updates, ok := bindPatch(c, machinePatchFields)
	if !ok {
		return
	}

	machine, err := h.store.UpdateMachine(c.Request.Context(), id, updates)
	if err != nil {
		respondStoreError(c, err, "machine")
		return
	}
	h.publish(c, events.EntityMachine, events.ActionUpdated, machine.ID, machine)
	c.JSON(http.StatusOK, machine)
}

// DeleteMachine removes a machine and its parts.
func (h *Handler) DeleteMachine(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteMachine(c.Request.Context(), id); err != nil {
		respondStoreError(c, err, "machine")
		return
	}
	h.publish(c, events.EntityMachine, events.ActionDeleted, id, nil)
	c.Status(http.StatusNoContent)
}

// ListMachineParts returns the parts of a machine, optionally narrowed by ?q=.
func (h *Handler) ListMachineParts(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if _, err := h.store.GetMachine(ctx, id); err != nil {
		respondStoreError(c, err, "machine")
		return
	}
	parts, err := h.store.ListParts(ctx, store.PartFilter{MachineID: id})
	if err != nil {
		respondStoreError(c, err, "part")
		return
	}
	c.JSON(http.StatusOK, orEmpty(inventory.FilterParts(parts, c.Query("q"))))
}
