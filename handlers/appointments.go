package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	ledgerRepo "styledesk/database/repository/ledger"
	"styledesk/services/booking"
	"styledesk/utils"
)

// AppointmentHandler exposes ledger operations: listing, cancellation, status
// transitions, reschedules, conflict checks, and the daily schedule analysis.
type AppointmentHandler struct {
	Ledger   booking.SlotLedger
	Resolver *booking.ConflictChecker
}

func NewAppointmentHandler(ledger booking.SlotLedger, resolver *booking.ConflictChecker) *AppointmentHandler {
	return &AppointmentHandler{Ledger: ledger, Resolver: resolver}
}

// List returns appointments filtered by the query parameters.
func (h *AppointmentHandler) List(c *gin.Context) {
	f := ledgerRepo.Filter{
		UserID:   c.Query("userId"),
		Status:   c.Query("status"),
		Date:     c.Query("date"),
		FromDate: c.Query("from"),
		ToDate:   c.Query("to"),
	}
	appts, err := h.Ledger.List(c.Request.Context(), f)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to list appointments", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointments": appts, "count": len(appts)})
}

// Get returns one appointment by id.
func (h *AppointmentHandler) Get(c *gin.Context) {
	appt, err := h.Ledger.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to fetch appointment", err.Error())
		return
	}
	if appt == nil {
		utils.JSONError(c, http.StatusNotFound, "appointment not found", c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, appt)
}

// Cancel transitions an appointment to cancelled and frees its slot.
func (h *AppointmentHandler) Cancel(c *gin.Context) {
	ok, err := h.Ledger.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to cancel appointment", err.Error())
		return
	}
	if !ok {
		utils.JSONError(c, http.StatusNotFound, "appointment not found", c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"cancelled": true})
}

// SetStatus applies a status transition (confirmed, completed, no-show).
func (h *AppointmentHandler) SetStatus(c *gin.Context) {
	var input struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	ok, err := h.Ledger.SetStatus(c.Request.Context(), c.Param("id"), input.Status)
	if err != nil {
		var verr *booking.ValidationError
		if errors.As(err, &verr) {
			utils.JSONError(c, http.StatusBadRequest, "invalid status transition", verr.Message)
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "failed to update status", err.Error())
		return
	}
	if !ok {
		utils.JSONError(c, http.StatusNotFound, "appointment not found", c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true, "status": input.Status})
}

// Reschedule moves an appointment to a new slot after a conflict check that
// excludes the appointment itself.
func (h *AppointmentHandler) Reschedule(c *gin.Context) {
	var input struct {
		Date string `json:"date" binding:"required"`
		Time string `json:"time" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	id := c.Param("id")

	appt, err := h.Ledger.Get(c.Request.Context(), id)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to fetch appointment", err.Error())
		return
	}
	if appt == nil {
		utils.JSONError(c, http.StatusNotFound, "appointment not found", id)
		return
	}

	report, err := h.Resolver.Check(c.Request.Context(), input.Date, input.Time, appt.Service, id)
	if err != nil {
		h.writeCheckError(c, err)
		return
	}
	if report.HasConflict {
		c.JSON(http.StatusConflict, report)
		return
	}

	moved, err := h.Ledger.Reschedule(c.Request.Context(), id, input.Date, input.Time)
	if err != nil {
		if errors.Is(err, booking.ErrSlotTaken) {
			utils.JSONError(c, http.StatusConflict, "slot already taken", input.Date+" "+input.Time)
			return
		}
		var verr *booking.ValidationError
		if errors.As(err, &verr) {
			utils.JSONError(c, http.StatusBadRequest, "invalid input", verr.Error())
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "failed to reschedule appointment", err.Error())
		return
	}
	c.JSON(http.StatusOK, moved)
}

// CheckConflicts runs the resolver for a candidate slot without booking it.
func (h *AppointmentHandler) CheckConflicts(c *gin.Context) {
	var input struct {
		Date    string `json:"date" binding:"required"`
		Time    string `json:"time" binding:"required"`
		Service string `json:"service" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	report, err := h.Resolver.Check(c.Request.Context(), input.Date, input.Time, input.Service, "")
	if err != nil {
		h.writeCheckError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// AnalyzeSchedule reports gaps and the efficiency score for a day.
func (h *AppointmentHandler) AnalyzeSchedule(c *gin.Context) {
	report, err := h.Resolver.AnalyzeDay(c.Request.Context(), c.Param("date"))
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to analyze schedule", err.Error())
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *AppointmentHandler) writeCheckError(c *gin.Context, err error) {
	var verr *booking.ValidationError
	if errors.As(err, &verr) {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", verr.Error())
		return
	}
	utils.JSONError(c, http.StatusInternalServerError, "conflict check failed", err.Error())
}
