package ai

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"eventura/models"

	genai "github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type httpCodeErr struct{ code int }

func (e httpCodeErr) Error() string { return fmt.Sprintf("http %d", e.code) }
func (e httpCodeErr) HTTPCode() int { return e.code }

func TestClassifyUpstream(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"googleapi rate limit", &googleapi.Error{Code: 429}, http.StatusTooManyRequests},
		{"googleapi forbidden", fmt.Errorf("wrapped: %w", &googleapi.Error{Code: 403}), http.StatusUnauthorized},
		{"googleapi bad request", &googleapi.Error{Code: 400}, http.StatusUnprocessableEntity},
		{"http code", httpCodeErr{code: 404}, http.StatusNotFound},
		{"grpc exhausted", status.Error(codes.ResourceExhausted, "quota"), http.StatusTooManyRequests},
		{"grpc unauthenticated", status.Error(codes.Unauthenticated, "key"), http.StatusUnauthorized},
		{"grpc invalid", status.Error(codes.InvalidArgument, "bad"), http.StatusUnprocessableEntity},
		{"grpc not found", status.Error(codes.NotFound, "model"), http.StatusNotFound},
		{"blocked", &genai.BlockedError{}, http.StatusUnprocessableEntity},
		{"message mentions 429", errors.New("rpc error: 429 Too Many Requests"), http.StatusTooManyRequests},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyUpstream(tt.err))
		})
	}
}

func TestCompletionFromResponse(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{
				genai.Text("Хорошо, "),
				genai.FunctionCall{Name: BookingToolName, Args: map[string]any{"shouldBook": true}},
				genai.Text("оформляю."),
			}},
		}},
	}

	out := completionFromResponse(resp)
	assert.Equal(t, "Хорошо, оформляю.", out.Text)
	assert.Equal(t, []ToolCall{{Name: BookingToolName, Args: map[string]any{"shouldBook": true}}}, out.ToolCalls)

	assert.Equal(t, &Completion{}, completionFromResponse(&genai.GenerateContentResponse{}))
}

func TestGeminiRoleAndDeclaration(t *testing.T) {
	assert.Equal(t, "model", geminiRole(models.RoleAssistant))
	assert.Equal(t, "user", geminiRole(models.RoleUser))

	decl := bookingToolDeclaration()
	assert.Equal(t, BookingToolName, decl.Name)
	assert.Contains(t, decl.Parameters.Properties, "guestsCount")
	assert.Equal(t, []string{"shouldBook"}, decl.Parameters.Required)
}

func TestUpstreamError_UserMessage(t *testing.T) {
	assert.Contains(t, (&UpstreamError{Status: 429}).UserMessage(), "Слишком много запросов")
	assert.Contains(t, (&UpstreamError{Status: 401}).UserMessage(), "авторизации")
	assert.Contains(t, (&UpstreamError{Status: 503}).UserMessage(), "503")
	assert.True(t, (&UpstreamError{Status: 503}).Is5xx())
	assert.False(t, (&UpstreamError{Status: 422}).Is5xx())
}
