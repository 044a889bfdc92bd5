// File: services/intelligence/interface.go
package ai

import (
	"context"

	"eventura/models"
)

// BookingToolName is the function the chat model calls to hand over booking data.
const BookingToolName = "extract_booking_data"

// ToolCall is a structured function invocation returned by the model.
type ToolCall struct {
	Name string
	Args map[string]interface{}
}

// Completion is one assistant reply.
type Completion struct {
	Text      string
	ToolCalls []ToolCall
}

// LLMClient completes a conversation. The session id lets implementations keep
// provider-side state; the turns passed in are the full history to replay.
type LLMClient interface {
	Complete(ctx context.Context, turns []models.ConversationTurn, sessionID string) (*Completion, error)
}

// ToolCapable is implemented by clients that can declare the booking tool.
type ToolCapable interface {
	SupportsTools() bool
}

// ConversationStore keeps the ordered turns of each chat session.
type ConversationStore interface {
	Append(ctx context.Context, sessionID string, turns ...models.ConversationTurn) error
	ReadAll(ctx context.Context, sessionID string) ([]models.ConversationTurn, error)
	Clear(ctx context.Context, sessionID string) error
}

// VendorSnapshot is the read-only marketplace view used by vendor search.
type VendorSnapshot interface {
	ListVendors(ctx context.Context, filter models.VendorFilter) ([]models.Vendor, error)
	ListServices(ctx context.Context, vendorIDs []int) ([]models.Service, error)
}

func supportsTools(client LLMClient) bool {
	tc, ok := client.(ToolCapable)
	return ok && tc.SupportsTools()
}
