// File: eventura/handlers/bundle.go
package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// AI endpoints
	AgentPromptHandler gin.HandlerFunc
	AISearchHandler    gin.HandlerFunc

	// Vendor catalogue endpoints
	ListVendorsHandler gin.HandlerFunc
	GetVendorHandler   gin.HandlerFunc
}

// NewHandlerBundle wires the handler methods into the bundle.
func NewHandlerBundle(aiHandler *AIHandler, vendorHandler *VendorHandler) *HandlerBundle {
	return &HandlerBundle{
		AgentPromptHandler: aiHandler.HandleAgentPrompt,
		AISearchHandler:    aiHandler.HandleAISearch,
		ListVendorsHandler: vendorHandler.ListVendors,
		GetVendorHandler:   vendorHandler.GetVendor,
	}
}
