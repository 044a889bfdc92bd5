package models

// BookingIntent is the booking record extracted from a chat conversation.
// Every field is always serialized; a missing value is the empty string.
type BookingIntent struct {
	ShouldBook   bool   `json:"shouldBook"`   // true only when the user explicitly asked to book
	EventType    string `json:"eventType"`    // taxonomy value, e.g. "Свадьба", or ""
	Date         string `json:"date"`         // "YYYY-MM-DD" or ""
	GuestsCount  string `json:"guestsCount"`  // numeric string or ""
	Budget       string `json:"budget"`       // integer amount in rubles or ""
	City         string `json:"city"`         // free text or ""
	Description  string `json:"description"`  // theme, wishes
	Dishes       string `json:"dishes"`       // food preferences
	OtherDetails string `json:"otherDetails"` // anything else
}
