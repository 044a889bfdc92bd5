package models

// AgentPromptRequest is the payload of the chat endpoint.
type AgentPromptRequest struct {
	Message   string `json:"message" binding:"required"`
	SessionID string `json:"sessionId,omitempty"` // generated when absent
}

// AgentPromptResponse is what the chat endpoint returns to the frontend.
type AgentPromptResponse struct {
	Message     string         `json:"message"`     // user-visible assistant text, never raw JSON
	SessionID   string         `json:"sessionId"`   // echo or newly generated id
	BookingData *BookingIntent `json:"bookingData"` // null unless the user asked to book
}
