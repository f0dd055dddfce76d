package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"styledesk/utils"
)

// LunchBreak is a daily closed window, times in 24h "15:04" form.
type LunchBreak struct {
	Start string `mapstructure:"start"`
	End   string `mapstructure:"end"`
}

// Settings is the read-only business configuration snapshot injected into the
// engine. It is loaded once and replaced wholesale on Reload; no component
// re-reads the file per call.
type Settings struct {
	BusinessName string `mapstructure:"business_name"`
	Timezone     string `mapstructure:"timezone"`

	// BusinessHours maps lowercase weekday names to "9:00 AM - 6:00 PM", or
	// "Closed".
	BusinessHours map[string]string `mapstructure:"business_hours"`

	SlotIntervalMinutes  int        `mapstructure:"slot_interval_minutes"`
	BufferMinutes        int        `mapstructure:"buffer_minutes"`
	MaxDailyAppointments int        `mapstructure:"max_daily_appointments"`
	LunchBreak           LunchBreak `mapstructure:"lunch_break"`
	PreferredSlots       []string   `mapstructure:"preferred_slots"`
	AvoidSlots           []string   `mapstructure:"avoid_slots"`
	BookingWindowDays    int        `mapstructure:"booking_window_days"`
	SuggestionCount      int        `mapstructure:"suggestion_count"`

	ReminderHours            []int  `mapstructure:"reminder_hours"`
	ReminderToleranceMinutes int    `mapstructure:"reminder_tolerance_minutes"`
	DailySummaryTime         string `mapstructure:"daily_summary_time"`
	AdminPhone               string `mapstructure:"admin_phone"`
	AdminEmail               string `mapstructure:"admin_email"`

	ServiceDurations       map[string]int `mapstructure:"service_durations"`
	DefaultDurationMinutes int            `mapstructure:"default_duration_minutes"`
	Services               []string       `mapstructure:"services"`

	FAQ map[string]string `mapstructure:"faq_responses"`

	CalendarEnabled bool `mapstructure:"calendar_enabled"`
	SMSEnabled      bool `mapstructure:"sms_enabled"`
	EmailEnabled    bool `mapstructure:"email_enabled"`
	WebhookEnabled  bool `mapstructure:"webhook_enabled"`
}

// DayHours returns the open/close minutes-from-midnight for a lowercase
// weekday name. open is false on closed days.
func (s *Settings) DayHours(weekday string) (openMin, closeMin int, open bool) {
	hours, ok := s.BusinessHours[strings.ToLower(weekday)]
	if !ok || strings.EqualFold(hours, "Closed") {
		return 0, 0, false
	}
	parts := strings.Split(hours, " - ")
	if len(parts) != 2 {
		return 0, 0, false
	}
	o, err1 := utils.ParseClock(strings.TrimSpace(parts[0]))
	c, err2 := utils.ParseClock(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return o, c, true
}

// LunchWindow returns the lunch break as minutes from midnight. ok is false
// when no break is configured.
func (s *Settings) LunchWindow() (startMin, endMin int, ok bool) {
	if s.LunchBreak.Start == "" || s.LunchBreak.End == "" {
		return 0, 0, false
	}
	start, err1 := utils.ParseClock(s.LunchBreak.Start)
	end, err2 := utils.ParseClock(s.LunchBreak.End)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return start, end, true
}

// DurationMinutes returns the configured duration for a service, falling back
// to the default for unknown services.
func (s *Settings) DurationMinutes(service string) int {
	if d, ok := s.ServiceDurations[service]; ok {
		return d
	}
	return s.DefaultDurationMinutes
}

// DefaultSettings returns the built-in business configuration, used when no
// settings file is present and as the baseline for tests.
func DefaultSettings() *Settings {
	return &Settings{
		BusinessName: "Style Studio",
		Timezone:     "America/New_York",
		BusinessHours: map[string]string{
			"monday":    "9:00 AM - 6:00 PM",
			"tuesday":   "9:00 AM - 6:00 PM",
			"wednesday": "9:00 AM - 6:00 PM",
			"thursday":  "9:00 AM - 6:00 PM",
			"friday":    "9:00 AM - 6:00 PM",
			"saturday":  "10:00 AM - 4:00 PM",
			"sunday":    "Closed",
		},
		SlotIntervalMinutes:  60,
		BufferMinutes:        15,
		MaxDailyAppointments: 8,
		LunchBreak:           LunchBreak{Start: "12:00", End: "13:00"},
		PreferredSlots:       []string{"9:00 AM", "10:00 AM", "2:00 PM", "3:00 PM"},
		AvoidSlots:           []string{"12:00 PM"},
		BookingWindowDays:    14,
		SuggestionCount:      3,

		ReminderHours:            []int{24, 2},
		ReminderToleranceMinutes: 30,
		DailySummaryTime:         "09:00",

		ServiceDurations: map[string]int{
			"Haircut":       45,
			"Styling":       30,
			"Coloring":      120,
			"Treatment":     60,
			"Special Event": 90,
		},
		DefaultDurationMinutes: 60,
		Services:               []string{"Haircut", "Styling", "Coloring", "Treatment", "Special Event"},

		FAQ: map[string]string{
			"hours":        "We are open Monday-Friday 9AM-6PM, Saturday 10AM-4PM. Closed Sundays.",
			"location":     "We're located at 123 Main Street, Downtown. Free parking available.",
			"services":     "We offer haircuts, styling, coloring, treatments, and special event styling.",
			"prices":       "Haircuts start at $30, styling from $25, coloring from $60. Call for detailed pricing.",
			"cancellation": "Please give us 24 hours notice for cancellations to avoid fees.",
			"walk-ins":     "We accept walk-ins but recommend booking ahead to guarantee your preferred time.",
			"payment":      "We accept cash, credit cards, and digital payments (Venmo, PayPal, etc.).",
			"first-time":   "First-time clients get 10% off! Please arrive 15 minutes early for consultation.",
		},
	}
}

// LoadSettings reads the business settings file, applying the defaults above
// for anything not configured.
func LoadSettings() (*Settings, error) {
	v := viper.New()
	v.SetConfigName("settings")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	defaults := DefaultSettings()
	v.SetDefault("business_name", defaults.BusinessName)
	v.SetDefault("timezone", defaults.Timezone)
	v.SetDefault("business_hours", defaults.BusinessHours)
	v.SetDefault("slot_interval_minutes", defaults.SlotIntervalMinutes)
	v.SetDefault("buffer_minutes", defaults.BufferMinutes)
	v.SetDefault("max_daily_appointments", defaults.MaxDailyAppointments)
	v.SetDefault("lunch_break.start", defaults.LunchBreak.Start)
	v.SetDefault("lunch_break.end", defaults.LunchBreak.End)
	v.SetDefault("preferred_slots", defaults.PreferredSlots)
	v.SetDefault("avoid_slots", defaults.AvoidSlots)
	v.SetDefault("booking_window_days", defaults.BookingWindowDays)
	v.SetDefault("suggestion_count", defaults.SuggestionCount)
	v.SetDefault("reminder_hours", defaults.ReminderHours)
	v.SetDefault("reminder_tolerance_minutes", defaults.ReminderToleranceMinutes)
	v.SetDefault("daily_summary_time", defaults.DailySummaryTime)
	v.SetDefault("service_durations", defaults.ServiceDurations)
	v.SetDefault("default_duration_minutes", defaults.DefaultDurationMinutes)
	v.SetDefault("services", defaults.Services)
	v.SetDefault("faq_responses", defaults.FAQ)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read settings: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return &s, nil
}
