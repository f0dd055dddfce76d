package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"styledesk/services/reminder"
	"styledesk/utils"
)

// ReminderHandler exposes the reminder pass for manual and test use.
type ReminderHandler struct {
	Scheduler *reminder.Scheduler
}

func NewReminderHandler(scheduler *reminder.Scheduler) *ReminderHandler {
	return &ReminderHandler{Scheduler: scheduler}
}

// RunPass triggers a reminder sweep. With an appointmentId in the body, only
// that appointment is dispatched, regardless of thresholds.
func (h *ReminderHandler) RunPass(c *gin.Context) {
	var input struct {
		AppointmentID string `json:"appointmentId"`
	}
	// The body is optional; an empty body means a full pass.
	_ = c.ShouldBindJSON(&input)

	if input.AppointmentID != "" {
		if err := h.Scheduler.RunForAppointment(c.Request.Context(), input.AppointmentID); err != nil {
			utils.JSONError(c, http.StatusNotFound, "failed to run reminder", err.Error())
			return
		}
		c.JSON(http.StatusOK, gin.H{"ran": true, "appointmentId": input.AppointmentID})
		return
	}

	if err := h.Scheduler.Pass(c.Request.Context()); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "reminder pass failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"ran": true})
}

// Stats reports reminder progress across active appointments.
func (h *ReminderHandler) Stats(c *gin.Context) {
	stats, err := h.Scheduler.GetStats(c.Request.Context())
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to compute stats", err.Error())
		return
	}
	c.JSON(http.StatusOK, stats)
}
