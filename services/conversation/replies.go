package conversation

import (
	"fmt"
	"strings"

	"styledesk/models"
)

func greetingReply(businessName string) string {
	return fmt.Sprintf("Hello! Welcome to %s. I'm your virtual assistant. How can I help you today?\n\n"+
		"I can help you with:\n"+
		"1️⃣ Book an appointment\n"+
		"2️⃣ Answer questions about our services\n"+
		"3️⃣ Hours and location info\n\n"+
		"Just type 'book', 'questions', or 'info' to get started!", businessName)
}

func faqMenuReply() string {
	return "❓ What would you like to know?\n\n" +
		"• Type 'hours' - Business hours\n" +
		"• Type 'location' - Address and parking\n" +
		"• Type 'services' - What we offer\n" +
		"• Type 'prices' - Pricing information\n" +
		"• Type 'cancellation' - Cancellation policy\n" +
		"• Type 'payment' - Payment options\n" +
		"• Type 'first-time' - New client info\n\n" +
		"Or type 'book' to schedule an appointment!"
}

func faqAnswerReply(answer string) string {
	return "📋 " + answer + "\n\n" +
		"Need anything else? Type 'book' for appointments, or ask another question!"
}

func bookingStartReply() string {
	return "📅 Great! I'll help you book an appointment.\n\nFirst, what's your name?"
}

func serviceMenuReply(name string, services []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Nice to meet you, %s! What service are you interested in?\n", name)
	for _, service := range services {
		b.WriteString("\n• " + service)
	}
	return b.String()
}

func timesReply(date string, times []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🕐 Available times for %s:\n\n", date)
	for _, slot := range times {
		b.WriteString("• " + slot + "\n")
	}
	b.WriteString("\nPlease type your preferred time.")
	return b.String()
}

func countSlots(n int) string {
	if n == 1 {
		return "1 slot available"
	}
	return fmt.Sprintf("%d slots available", n)
}

func noDatesReply() string {
	return "Sorry, we're fully booked for the next two weeks. Please check back later or call us directly."
}

func invalidDateReply() string {
	return "Please select a valid date from the options above."
}

func invalidTimeReply() string {
	return "Please select a valid time from the available options."
}

func confirmationReply(session *models.ConversationSession) string {
	draft := session.Draft
	return "📋 Please confirm your appointment:\n\n" +
		"👤 Name: " + draft.Name + "\n" +
		"📞 Phone: " + session.UserID + "\n" +
		"💇 Service: " + draft.Service + "\n" +
		"📅 Date: " + draft.Date + "\n" +
		"🕐 Time: " + draft.Time + "\n\n" +
		"Type 'YES' to confirm or 'NO' to cancel."
}

func confirmedReply(appt *models.Appointment) string {
	return "✅ Your appointment is confirmed!\n\n" +
		"📋 Confirmation ID: " + appt.ID + "\n" +
		"📅 " + appt.Date + " at " + appt.Time + "\n" +
		"💇 " + appt.Service + " for " + appt.Name + "\n\n" +
		"We'll send you a reminder 24 hours before your appointment. " +
		"If you need to cancel or reschedule, please call us with 24 hours notice.\n\n" +
		"Thank you for choosing Style Studio! 💫"
}

func conflictReply(report *models.ConflictReport) string {
	var b strings.Builder
	b.WriteString("Sorry, that time doesn't work:\n")
	for _, detail := range report.Details {
		b.WriteString("• " + detail + "\n")
	}
	if len(report.Suggestions) > 0 {
		b.WriteString("\nHow about one of these instead?\n")
		for _, sug := range report.Suggestions {
			b.WriteString("• " + sug.Date + " at " + sug.Time + " (" + sug.Reason + ")\n")
		}
	}
	b.WriteString("\nPlease pick another date.")
	return b.String()
}

func slotTakenReply() string {
	return "Sorry, that time slot is no longer available. Please pick another date."
}

func notBookedReply() string {
	return "No problem! Your appointment was not booked. Feel free to start over anytime. How else can I help you?"
}

func yesNoReply() string {
	return "Please type 'YES' to confirm your appointment or 'NO' to cancel."
}

func genericFailureReply() string {
	return "Sorry, something went wrong on our end. Please try again in a moment."
}
