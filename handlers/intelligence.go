package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"eventura/models"
	ai "eventura/services/intelligence"
	"eventura/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// IntentProcessor handles one chat turn.
type IntentProcessor interface {
	Process(ctx context.Context, sessionID, message string) (*ai.IntentReply, error)
}

// VendorSearcher runs the AI vendor search.
type VendorSearcher interface {
	Search(ctx context.Context, req models.VendorSearchRequest) (*ai.SearchReply, error)
}

// AIHandler serves the chat agent and the AI vendor search.
type AIHandler struct {
	Intent IntentProcessor
	Search VendorSearcher
}

func NewAIHandler(intent IntentProcessor, search VendorSearcher) *AIHandler {
	return &AIHandler{Intent: intent, Search: search}
}

// HandleAgentPrompt answers a chat message. Failures the user can act on come back as a
// normal assistant message; only server-side failures produce a JSON error.
func (h *AIHandler) HandleAgentPrompt(c *gin.Context) {
	logger := getLogger(c)

	var req models.AgentPromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Invalid agent prompt request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	reply, err := h.Intent.Process(c.Request.Context(), req.SessionID, req.Message)
	if err != nil {
		var upstream *ai.UpstreamError
		if errors.As(err, &upstream) && !upstream.Is5xx() {
			logger.Warn("Agent prompt upstream error", zap.Int("status", upstream.Status), zap.Error(err))
			c.JSON(http.StatusOK, models.AgentPromptResponse{
				Message:   upstream.UserMessage(),
				SessionID: req.SessionID,
			})
			return
		}

		status, message := http.StatusInternalServerError, "Произошла ошибка при обработке запроса"
		if upstream != nil {
			status, message = upstream.Status, upstream.UserMessage()
		}
		logger.Error("Agent prompt failed", zap.String("sessionId", req.SessionID), zap.Error(err))
		c.JSON(status, gin.H{"error": "processing_error", "message": message})
		return
	}

	c.JSON(http.StatusOK, models.AgentPromptResponse{
		Message:     reply.Message,
		SessionID:   reply.SessionID,
		BookingData: reply.BookingData,
	})
}

// HandleAISearch recommends vendors for an event.
func (h *AIHandler) HandleAISearch(c *gin.Context) {
	logger := getLogger(c)

	var req models.VendorSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Некорректный запрос", err.Error())
		return
	}

	reply, err := h.Search.Search(c.Request.Context(), req)
	if err != nil {
		var (
			upstream   *ai.UpstreamError
			structured *ai.StructuredOutputError
		)
		switch {
		case errors.As(err, &upstream):
			utils.JSONError(c, upstream.Status, upstream.UserMessage(), err.Error())
		case errors.As(err, &structured):
			logger.Warn("AI search returned invalid output",
				zap.Int("length", structured.TextLength), zap.String("preview", structured.Preview))
			utils.JSONError(c, http.StatusInternalServerError, structured.UserMessage(),
				fmt.Sprintf("structured output rejected after %d attempts", len(structured.Attempts)))
		default:
			logger.Error("AI search failed", zap.Error(err))
			utils.JSONError(c, http.StatusInternalServerError, "Ошибка при подборе подрядчиков", err.Error())
		}
		return
	}

	c.JSON(http.StatusOK, reply.Result)
}
