package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"sparesmart-backend/internal/events"
	"sparesmart-backend/internal/inventory"
	"sparesmart-backend/internal/model"
	"sparesmart-backend/internal/notification"
	"sparesmart-backend/internal/store"
)

// ListParts returns parts filtered by ?machine_id=, ?line_id= and ?low_stock=true.
func (h *Handler) ListParts(c *gin.Context) {
	var filter store.PartFilter
	var ok bool
	if filter.MachineID, ok = optionalIDQuery(c, "machine_id"); !ok {
		return
	}
	if filter.LineID, ok = optionalIDQuery(c, "line_id"); !ok {
		return
	}
	if raw := c.Query("low_stock"); raw != "" {
		low, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid low_stock"})
			return
		}
		filter.LowStockOnly = low
	}

	parts, err := h.store.ListParts(c.Request.Context(), filter)
	if err != nil {
		respondStoreError(c, err, "part")
		return
	}
	c.JSON(http.StatusOK, orEmpty(parts))
}

// AggregateParts sums stock per part number across machines, optionally
// narrowed by ?q=.
func (h *Handler) AggregateParts(c *gin.Context) {
	snap, err := h.store.Snapshot(c.Request.Context())
	if err != nil {
		respondStoreError(c, err, "part")
		return
	}
	rows := inventory.Aggregate(snap.Parts, snap.Machines, snap.Lines)
	c.JSON(http.StatusOK, orEmpty(inventory.FilterAggregated(rows, c.Query("q"))))
}

func (h *Handler) GetPart(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	part, err := h.store.GetPart(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, err, "part")
		return
	}
	c.JSON(http.StatusOK, part)
}

func (h *Handler) CreatePart(c *gin.Context) {
	var req createPartRequest
	if !bindAndValidate(c, &req) {
		return
	}

	part := req.toModel()
	if err := h.store.CreatePart(c.Request.Context(), &part); err != nil {
		respondStoreError(c, err, "part")
		return
	}
	h.afterPartWrite(c.Request.Context(), part, false)
	h.publish(c, events.EntityPart, events.ActionCreated, part.ID, part)
	c.JSON(http.StatusCreated, part)
}

// UpdatePart applies a partial update. Crossing below the minimum stock level
// notifies the line's subscribers.
func (h *Handler) UpdatePart(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	updates, ok := bindPatch(c, partPatchFields)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	before, err := h.store.GetPart(ctx, id)
	if err != nil {
		respondStoreError(c, err, "part")
		return
	}
	part, err := h.store.UpdatePart(ctx, id, updates)
	if err != nil {
		respondStoreError(c, err, "part")
		return
	}
	h.afterPartWrite(ctx, *part, before.LowStock)
	h.publish(c, events.EntityPart, events.ActionUpdated, part.ID, part)
	c.JSON(http.StatusOK, part)
}

func (h *Handler) DeletePart(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.store.DeletePart(c.Request.Context(), id); err != nil {
		respondStoreError(c, err, "part")
		return
	}
	h.publish(c, events.EntityPart, events.ActionDeleted, id, nil)
	c.Status(http.StatusNoContent)
}

// afterPartWrite records the stock level and raises a low-stock alert when
// the part has just dropped below its minimum.
func (h *Handler) afterPartWrite(ctx context.Context, part model.Part, wasLow bool) {
	h.telemetry.RecordPartStock(part)
	if !part.LowStock || wasLow {
		return
	}

	machine, err := h.store.GetMachine(ctx, part.MachineID)
	if err != nil {
		log.Warn().Err(err).Int64("part_id", part.ID).Msg("low-stock alert skipped: machine lookup failed")
		return
	}
	line, err := h.store.GetLine(ctx, machine.LineID)
	if err != nil {
		log.Warn().Err(err).Int64("part_id", part.ID).Msg("low-stock alert skipped: line lookup failed")
		return
	}
	h.dispatcher.Dispatch(notification.LowStockAlert(part, *machine, *line))
}
