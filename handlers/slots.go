package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"styledesk/services/booking"
	"styledesk/utils"
)

// SlotHandler exposes day availability.
type SlotHandler struct {
	Ledger booking.SlotLedger
}

func NewSlotHandler(ledger booking.SlotLedger) *SlotHandler {
	return &SlotHandler{Ledger: ledger}
}

// ListAvailable returns the open slots for a date, ascending by time.
func (h *SlotHandler) ListAvailable(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		utils.JSONError(c, http.StatusBadRequest, "missing date", "query parameter 'date' is required (YYYY-MM-DD)")
		return
	}
	if _, err := utils.ParseDate(date); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid date", err.Error())
		return
	}

	times, err := h.Ledger.ListAvailable(c.Request.Context(), date)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to list slots", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "slots": times, "count": len(times)})
}
