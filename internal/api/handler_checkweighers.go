package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sparesmart-backend/internal/events"
	"sparesmart-backend/internal/store"
)

func (h *Handler) ListCheckweighers(c *gin.Context) {
	lineID, ok := optionalIDQuery(c, "line_id")
	if !ok {
		return
	}
	cws, err := h.store.ListCheckweighers(c.Request.Context(), store.CheckweigherFilter{LineID: lineID})
	if err != nil {
		respondStoreError(c, err, "checkweigher")
		return
	}
	c.JSON(http.StatusOK, orEmpty(cws))
}

func (h *Handler) GetCheckweigher(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	cw, err := h.store.GetCheckweigher(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, err, "checkweigher")
		return
	}
	c.JSON(http.StatusOK, cw)
}

func (h *Handler) CreateCheckweigher(c *gin.Context) {
	var req createCheckweigherRequest
	if !bindAndValidate(c, &req) {
		return
	}

	cw := req.toModel()
	if err := h.store.CreateCheckweigher(c.Request.Context(), &cw); err != nil {
		respondStoreError(c, err, "checkweigher")
		return
	}
	h.publish(c, events.EntityCheckweigher, events.ActionCreated, cw.ID, cw)
	c.JSON(http.StatusCreated, cw)
}

func (h *Handler) UpdateCheckweigher(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	updates, ok := bindPatch(c, checkweigherPatchFields)
	if !ok {
		return
	}

	cw, err := h.store.UpdateCheckweigher(c.Request.Context(), id, updates)
	if err != nil {
		respondStoreError(c, err, "checkweigher")
		return
	}
	h.publish(c, events.EntityCheckweigher, events.ActionUpdated, cw.ID, cw)
	c.JSON(http.StatusOK, cw)
}

func (h *Handler) DeleteCheckweigher(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteCheckweigher(c.Request.Context(), id); err != nil {
		respondStoreError(c, err, "checkweigher")
		return
	}
	h.publish(c, events.EntityCheckweigher, events.ActionDeleted, id, nil)
	c.Status(http.StatusNoContent)
}
