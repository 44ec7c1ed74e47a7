package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"sparesmart-backend/internal/export"
	"sparesmart-backend/internal/inventory"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Health reports whether the database is reachable.
func (h *Handler) Health(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		log.Error().Err(err).Msg("health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetInventory returns all four collections in one response.
func (h *Handler) GetInventory(c *gin.Context) {
	snap, err := h.store.Snapshot(c.Request.Context())
	if err != nil {
		respondStoreError(c, err, "inventory")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"lines":         orEmpty(snap.Lines),
		"machines":      orEmpty(snap.Machines),
		"parts":         orEmpty(snap.Parts),
		"checkweighers": orEmpty(snap.Checkweighers),
	})
}

// Search matches ?q= case-insensitively against every collection. A blank
// query returns empty results.
func (h *Handler) Search(c *gin.Context) {
	q := c.Query("q")
	res, err := h.store.Search(c.Request.Context(), q)
	if err != nil {
		respondStoreError(c, err, "search")
		return
	}
	c.JSON(http.StatusOK, searchResponse(q, res))
}

func searchResponse(q string, res inventory.Results) gin.H {
	return gin.H{
		"query":         q,
		"total":         res.Total(),
		"lines":         orEmpty(res.Lines),
		"machines":      orEmpty(res.Machines),
		"parts":         orEmpty(res.Parts),
		"checkweighers": orEmpty(res.Checkweighers),
	}
}

// ExportInventory streams the inventory as an Excel workbook.
func (h *Handler) ExportInventory(c *gin.Context) {
	snap, err := h.store.Snapshot(c.Request.Context())
	if err != nil {
		respondStoreError(c, err, "inventory")
		return
	}

	f, err := export.Workbook(snap)
	if err != nil {
		respondStoreError(c, err, "export")
		return
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		respondStoreError(c, err, "export")
		return
	}

	filename := "sparesmart-inventory-" + time.Now().UTC().Format("20060102") + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
