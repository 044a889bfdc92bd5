package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"eventura/database/repository"
	"eventura/models"
	ai "eventura/services/intelligence"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeIntent struct {
	reply     *ai.IntentReply
	err       error
	sessionID string
}

func (f *fakeIntent) Process(_ context.Context, sessionID, _ string) (*ai.IntentReply, error) {
	f.sessionID = sessionID
	return f.reply, f.err
}

type fakeSearcher struct {
	reply *ai.SearchReply
	err   error
	req   models.VendorSearchRequest
}

func (f *fakeSearcher) Search(_ context.Context, req models.VendorSearchRequest) (*ai.SearchReply, error) {
	f.req = req
	return f.reply, f.err
}

type fakeVendorRepo struct {
	vendors []models.Vendor
	details *models.VendorDetails
	filter  models.VendorFilter
	err     error
}

func (f *fakeVendorRepo) ListVendors(_ context.Context, filter models.VendorFilter) ([]models.Vendor, error) {
	f.filter = filter
	return f.vendors, f.err
}

func (f *fakeVendorRepo) ListServices(context.Context, []int) ([]models.Service, error) {
	return nil, nil
}

func (f *fakeVendorRepo) GetVendorByID(context.Context, int) (*models.VendorDetails, error) {
	return f.details, f.err
}

func (f *fakeVendorRepo) EnsureIndexes(context.Context) error { return nil }

func newTestRouter(intent IntentProcessor, search VendorSearcher, repo repository.VendorRepository) *gin.Engine {
	bundle := NewHandlerBundle(NewAIHandler(intent, search), NewVendorHandler(repo, 20))

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("logger", zap.NewNop())
		c.Next()
	})
	r.POST("/api/agent/prompt", bundle.AgentPromptHandler)
	r.POST("/api/eventura/ai-search", bundle.AISearchHandler)
	r.GET("/api/eventura/vendors", bundle.ListVendorsHandler)
	r.GET("/api/eventura/vendors/:id", bundle.GetVendorHandler)
	return r
}

func doJSON(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAgentPrompt_Success(t *testing.T) {
	intent := &fakeIntent{reply: &ai.IntentReply{
		SessionID:   "s1",
		Message:     "Отлично, оформляю бронирование!",
		BookingData: &models.BookingIntent{ShouldBook: true, City: "Казань"},
	}}
	r := newTestRouter(intent, &fakeSearcher{}, &fakeVendorRepo{})

	w := doJSON(r, http.MethodPost, "/api/agent/prompt", gin.H{"message": "забронируй", "sessionId": "s1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "s1", intent.sessionID)

	var resp models.AgentPromptResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "s1", resp.SessionID)
	require.NotNil(t, resp.BookingData)
	assert.True(t, resp.BookingData.ShouldBook)
	assert.Equal(t, "Казань", resp.BookingData.City)
}

func TestAgentPrompt_GeneratesSessionID(t *testing.T) {
	intent := &fakeIntent{reply: &ai.IntentReply{Message: "Привет!"}}
	r := newTestRouter(intent, &fakeSearcher{}, &fakeVendorRepo{})

	w := doJSON(r, http.MethodPost, "/api/agent/prompt", gin.H{"message": "привет"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, intent.sessionID, 36)
	assert.Contains(t, w.Body.String(), `"bookingData":null`)
}

func TestAgentPrompt_MissingMessage(t *testing.T) {
	r := newTestRouter(&fakeIntent{}, &fakeSearcher{}, &fakeVendorRepo{})

	w := doJSON(r, http.MethodPost, "/api/agent/prompt", gin.H{"sessionId": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAgentPrompt_UpstreamErrors(t *testing.T) {
	t.Run("client error becomes assistant message", func(t *testing.T) {
		intent := &fakeIntent{err: &ai.UpstreamError{Status: http.StatusTooManyRequests, Err: errors.New("quota")}}
		r := newTestRouter(intent, &fakeSearcher{}, &fakeVendorRepo{})

		w := doJSON(r, http.MethodPost, "/api/agent/prompt", gin.H{"message": "привет", "sessionId": "s2"})
		require.Equal(t, http.StatusOK, w.Code)

		var resp models.AgentPromptResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "s2", resp.SessionID)
		assert.Contains(t, resp.Message, "Слишком много запросов")
		assert.Nil(t, resp.BookingData)
	})

	t.Run("server error keeps status", func(t *testing.T) {
		intent := &fakeIntent{err: &ai.UpstreamError{Status: http.StatusServiceUnavailable, Err: errors.New("down")}}
		r := newTestRouter(intent, &fakeSearcher{}, &fakeVendorRepo{})

		w := doJSON(r, http.MethodPost, "/api/agent/prompt", gin.H{"message": "привет"})
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), `"error":"processing_error"`)
		assert.NotContains(t, w.Body.String(), "down")
	})
}

func TestAISearch_Success(t *testing.T) {
	search := &fakeSearcher{reply: &ai.SearchReply{Result: &models.VendorSearchResult{
		Vendors:        []models.VendorMatch{{VendorID: 4, RelevanceScore: 9, Reason: "рядом"}},
		EventConcept:   "Гала-ужин",
		EstimatedCosts: []models.CostEstimate{},
	}}}
	r := newTestRouter(&fakeIntent{}, search, &fakeVendorRepo{})

	w := doJSON(r, http.MethodPost, "/api/eventura/ai-search", gin.H{
		"eventType": "Корпоратив", "budget": 150000, "guestsCount": "40", "date": "2025-03-01", "city": "Москва",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.FlexString("150000"), search.req.Budget)

	var result models.VendorSearchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.Len(t, result.Vendors, 1)
	assert.Equal(t, 4, result.Vendors[0].VendorID)
	assert.Equal(t, "Гала-ужин", result.EventConcept)
}

func TestAISearch_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{
			name:       "structured output",
			err:        &ai.StructuredOutputError{TextLength: 7, Preview: "не знаю"},
			wantStatus: http.StatusInternalServerError,
			wantError:  "ИИ вернул некорректный ответ",
		},
		{
			name:       "upstream",
			err:        &ai.UpstreamError{Status: http.StatusUnauthorized, Err: errors.New("bad key")},
			wantStatus: http.StatusUnauthorized,
			wantError:  "Ошибка авторизации",
		},
		{
			name:       "other",
			err:        errors.New("load vendors: timeout"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "Ошибка при подборе подрядчиков",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(&fakeIntent{}, &fakeSearcher{err: tt.err}, &fakeVendorRepo{})

			w := doJSON(r, http.MethodPost, "/api/eventura/ai-search", gin.H{"eventType": "Свадьба"})
			require.Equal(t, tt.wantStatus, w.Code)

			var resp struct {
				Error   string `json:"error"`
				Details string `json:"details"`
				Status  int    `json:"status"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Contains(t, resp.Error, tt.wantError)
			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.NotEmpty(t, resp.Details)
		})
	}
}

func TestListVendors(t *testing.T) {
	repo := &fakeVendorRepo{vendors: []models.Vendor{{ID: 1, CompanyName: "Декор", City: "Казань", Rating: 4.8}}}
	r := newTestRouter(&fakeIntent{}, &fakeSearcher{}, repo)

	w := doJSON(r, http.MethodGet, "/api/eventura/vendors?city="+url.QueryEscape("Казань")+"&minRating=4.5&type=vendor", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.VendorFilter{City: "Казань", MinRating: 4.5, Types: []string{"vendor"}, Limit: 20}, repo.filter)
	assert.Contains(t, w.Body.String(), `"companyName":"Декор"`)

	w = doJSON(r, http.MethodGet, "/api/eventura/vendors?minRating=high", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	repo.err = errors.New("mongo down")
	w = doJSON(r, http.MethodGet, "/api/eventura/vendors", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGetVendor(t *testing.T) {
	repo := &fakeVendorRepo{details: &models.VendorDetails{
		Vendor:   models.Vendor{ID: 3, CompanyName: "Праздник"},
		Services: []models.Service{{ID: 30, VendorID: 3, Name: "Ведущий"}},
	}}
	r := newTestRouter(&fakeIntent{}, &fakeSearcher{}, repo)

	w := doJSON(r, http.MethodGet, "/api/eventura/vendors/3", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Ведущий"`)

	w = doJSON(r, http.MethodGet, "/api/eventura/vendors/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	repo.err = repository.ErrVendorNotFound
	w = doJSON(r, http.MethodGet, "/api/eventura/vendors/9", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
