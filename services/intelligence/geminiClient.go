// File: services/intelligence/geminiClient.go
package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"eventura/models"

	genai "github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// GeminiClient is the LLMClient backed by Google's Generative Language API.
type GeminiClient struct {
	name   string
	client *genai.Client
	model  *genai.GenerativeModel
	tools  bool
	logger *zap.Logger
}

// GeminiOption configures the underlying model.
type GeminiOption func(*GeminiClient)

// WithSystemInstruction sets the system prompt.
func WithSystemInstruction(text string) GeminiOption {
	return func(g *GeminiClient) {
		g.model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(text)}}
	}
}

// WithBookingTool declares the extract_booking_data function.
func WithBookingTool() GeminiOption {
	return func(g *GeminiClient) {
		g.model.Tools = []*genai.Tool{{FunctionDeclarations: []*genai.FunctionDeclaration{bookingToolDeclaration()}}}
		g.tools = true
	}
}

// WithJSONResponse asks the model to answer with application/json.
func WithJSONResponse() GeminiOption {
	return func(g *GeminiClient) {
		g.model.ResponseMIMEType = "application/json"
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float32) GeminiOption {
	return func(g *GeminiClient) {
		g.model.SetTemperature(t)
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *zap.Logger) GeminiOption {
	return func(g *GeminiClient) {
		g.logger = logger
	}
}

// NewGeminiClient connects to the API with apiKey and selects modelName.
func NewGeminiClient(ctx context.Context, apiKey, modelName string, opts ...GeminiOption) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is empty")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	g := &GeminiClient{
		name:   modelName,
		client: client,
		model:  client.GenerativeModel(modelName),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// SupportsTools implements ToolCapable.
func (g *GeminiClient) SupportsTools() bool {
	return g.tools
}

// Close releases the underlying connection.
func (g *GeminiClient) Close() error {
	return g.client.Close()
}

// Complete replays all but the last turn as chat history and sends the last one.
func (g *GeminiClient) Complete(ctx context.Context, turns []models.ConversationTurn, sessionID string) (*Completion, error) {
	if len(turns) == 0 {
		return nil, &UpstreamError{Status: http.StatusUnprocessableEntity, Err: errors.New("no turns to complete")}
	}

	cs := g.model.StartChat()
	for _, turn := range turns[:len(turns)-1] {
		if strings.TrimSpace(turn.Content) == "" {
			continue
		}
		cs.History = append(cs.History, &genai.Content{
			Role:  geminiRole(turn.Role),
			Parts: []genai.Part{genai.Text(turn.Content)},
		})
	}

	start := time.Now()
	resp, err := cs.SendMessage(ctx, genai.Text(turns[len(turns)-1].Content))
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	llmLatency.WithLabelValues(g.name, outcome).Observe(time.Since(start).Seconds())
	if err != nil {
		g.logger.Error("Gemini request failed",
			zap.String("model", g.name), zap.String("sessionId", sessionID), zap.Error(err))
		return nil, &UpstreamError{Status: classifyUpstream(err), Err: fmt.Errorf("gemini generate error: %w", err)}
	}

	return completionFromResponse(resp), nil
}

func completionFromResponse(resp *genai.GenerateContentResponse) *Completion {
	out := &Completion{}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return out
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		switch p := part.(type) {
		case genai.Text:
			sb.WriteString(string(p))
		case genai.FunctionCall:
			out.ToolCalls = append(out.ToolCalls, ToolCall{Name: p.Name, Args: p.Args})
		case *genai.FunctionCall:
			out.ToolCalls = append(out.ToolCalls, ToolCall{Name: p.Name, Args: p.Args})
		}
	}
	out.Text = sb.String()
	return out
}

func geminiRole(role string) string {
	if role == models.RoleAssistant {
		return "model"
	}
	return "user"
}

// classifyUpstream maps provider failures onto the HTTP status surfaced to clients.
func classifyUpstream(err error) int {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return normalizeStatus(apiErr.Code)
	}
	var httpErr interface{ HTTPCode() int }
	if errors.As(err, &httpErr) && httpErr.HTTPCode() > 0 {
		return normalizeStatus(httpErr.HTTPCode())
	}
	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return http.StatusUnprocessableEntity
	}
	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.ResourceExhausted:
			return http.StatusTooManyRequests
		case codes.Unauthenticated, codes.PermissionDenied:
			return http.StatusUnauthorized
		case codes.NotFound:
			return http.StatusNotFound
		case codes.InvalidArgument:
			return http.StatusUnprocessableEntity
		}
	}
	if strings.Contains(err.Error(), "429") {
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

func normalizeStatus(code int) int {
	switch code {
	case http.StatusTooManyRequests, http.StatusUnauthorized, http.StatusNotFound, http.StatusUnprocessableEntity:
		return code
	case http.StatusForbidden:
		return http.StatusUnauthorized
	case http.StatusBadRequest:
		return http.StatusUnprocessableEntity
	}
	if code >= 400 && code < 600 {
		return code
	}
	return http.StatusInternalServerError
}

func bookingToolDeclaration() *genai.FunctionDeclaration {
	str := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeString, Description: desc}
	}
	return &genai.FunctionDeclaration{
		Name:        BookingToolName,
		Description: "Извлекает данные для бронирования мероприятия, когда пользователь явно просит забронировать или оформить заказ",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"shouldBook":   {Type: genai.TypeBoolean, Description: "true, если пользователь явно просит перейти к бронированию"},
				"eventType":    str("Тип мероприятия: Свадьба, День рождения, Корпоратив, Гендер-пати, Выпускной, Юбилей"),
				"date":         str("Дата мероприятия в формате YYYY-MM-DD или как указал пользователь"),
				"guestsCount":  str("Количество гостей"),
				"budget":       str("Бюджет в рублях"),
				"city":         str("Город проведения"),
				"description":  str("Пожелания, тематика"),
				"dishes":       str("Пожелания по меню"),
				"otherDetails": str("Прочие детали"),
			},
			Required: []string{"shouldBook"},
		},
	}
}
