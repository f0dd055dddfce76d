package handlers

import "github.com/gin-gonic/gin"

// HandlerBundle groups all endpoint handlers into one struct for route
// registration.
type HandlerBundle struct {
	// Chat endpoint.
	ProcessMessage gin.HandlerFunc

	// Appointment endpoints.
	ListAppointments      gin.HandlerFunc
	GetAppointment        gin.HandlerFunc
	CancelAppointment     gin.HandlerFunc
	SetAppointmentStatus  gin.HandlerFunc
	RescheduleAppointment gin.HandlerFunc
	CheckConflicts        gin.HandlerFunc
	AnalyzeSchedule       gin.HandlerFunc

	// Slot endpoint.
	ListAvailableSlots gin.HandlerFunc

	// Reminder endpoints.
	RunReminderPass gin.HandlerFunc
	ReminderStats   gin.HandlerFunc
}
