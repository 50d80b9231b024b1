package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/BerylCAtieno/icp-builder/internal/api"
	"github.com/BerylCAtieno/icp-builder/internal/builder"
	"github.com/BerylCAtieno/icp-builder/internal/chat"
	"github.com/BerylCAtieno/icp-builder/internal/export"
	"github.com/BerylCAtieno/icp-builder/internal/models"
	"github.com/BerylCAtieno/icp-builder/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const testKey = "AIzaTestKey"

type stubModel struct {
	mu    sync.Mutex
	steps []func() (*chat.Response, error)
	calls int
}

func (m *stubModel) Generate(context.Context, []chat.Content) (*chat.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := m.calls
	if idx >= len(m.steps) {
		idx = len(m.steps) - 1
	}
	m.calls++
	return m.steps[idx]()
}

func reply(text string) func() (*chat.Response, error) {
	return func() (*chat.Response, error) { return &chat.Response{Text: text}, nil }
}

func update(args map[string]any) func() (*chat.Response, error) {
	return func() (*chat.Response, error) {
		return &chat.Response{Calls: []chat.FunctionCall{{Name: chat.UpdateToolName, Args: args}}}, nil
	}
}

func failure(err error) func() (*chat.Response, error) {
	return func() (*chat.Response, error) { return nil, err }
}

func factory(m *stubModel) chat.ModelFactory {
	return func(context.Context, string) (chat.Model, error) { return m, nil }
}

type fixture struct {
	router  *gin.Engine
	builder *builder.Builder
}

func newFixture(t *testing.T, m *stubModel, webhookURL string, proxy api.ProxyConfig) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zaptest.NewLogger(t)

	b := builder.New(context.Background(), store.New(store.NewMemory(), logger), factory(m), logger)
	h := api.NewHandler(b, export.NewWebhook(webhookURL, nil, logger), proxy, logger)

	r := gin.New()
	r.Use(api.CORS())
	h.Register(r)
	return &fixture{router: r, builder: b}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	f := newFixture(t, &stubModel{}, "", api.ProxyConfig{})
	w := f.do(t, http.MethodGet, "/api/health", nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t, &stubModel{}, "", api.ProxyConfig{})
	w := f.do(t, http.MethodOptions, "/api/chat", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCredentialLifecycle(t *testing.T) {
	f := newFixture(t, &stubModel{steps: []func() (*chat.Response, error){reply("hi")}}, "", api.ProxyConfig{})

	assert.Equal(t, false, decode(t, f.do(t, http.MethodGet, "/api/credential", nil))["hasApiKey"])

	w := f.do(t, http.MethodPut, "/api/credential", map[string]string{"apiKey": "sk-nope"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPut, "/api/credential", map[string]string{"apiKey": testKey})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, f.builder.HasCredential())

	w = f.do(t, http.MethodDelete, "/api/credential", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, f.builder.HasCredential())
}

func TestChat_WithoutCredential(t *testing.T) {
	f := newFixture(t, &stubModel{}, "", api.ProxyConfig{})

	w := f.do(t, http.MethodPost, "/api/chat", map[string]string{"message": "hello"})
	require.Equal(t, http.StatusOK, w.Code)

	var res builder.TurnResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "missing_credential", res.Kind)
	assert.Equal(t, chat.KindMissingCredential.Message(), res.Reply.Text)
}

func TestChat_AppliesUpdates(t *testing.T) {
	m := &stubModel{steps: []func() (*chat.Response, error){
		update(map[string]any{"role": "CTO", "industry": "Fintech"}),
		reply("Got it. What size are these companies?"),
	}}
	f := newFixture(t, m, "", api.ProxyConfig{})
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPut, "/api/credential", map[string]string{"apiKey": testKey}).Code)

	w := f.do(t, http.MethodPost, "/api/chat", map[string]string{"message": "CTOs at fintechs"})
	require.Equal(t, http.StatusOK, w.Code)

	var res builder.TurnResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Empty(t, res.Kind)
	assert.Equal(t, "Got it. What size are these companies?", res.Reply.Text)
	assert.Equal(t, "CTO", res.Profile.Role)
	assert.Equal(t, 22, res.Status.Percentage)

	w = f.do(t, http.MethodGet, "/api/icp", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"industry":"Fintech"`)

	w = f.do(t, http.MethodGet, "/api/messages", nil)
	body := decode(t, w)
	assert.Len(t, body["messages"], 3)
	assert.Equal(t, false, body["busy"])
}

func TestChat_EmptyMessage(t *testing.T) {
	f := newFixture(t, &stubModel{}, "", api.ProxyConfig{})
	w := f.do(t, http.MethodPost, "/api/chat", map[string]string{"message": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReset(t *testing.T) {
	m := &stubModel{steps: []func() (*chat.Response, error){
		update(map[string]any{"role": "CTO"}),
		reply("ok"),
	}}
	f := newFixture(t, m, "", api.ProxyConfig{})
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPut, "/api/credential", map[string]string{"apiKey": testKey}).Code)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/chat", map[string]string{"message": "CTOs"}).Code)

	w := f.do(t, http.MethodPost, "/api/reset", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, f.builder.Profile().IsEmpty())
	assert.Len(t, f.builder.Transcript(), 1)
}

func TestToggleSection(t *testing.T) {
	f := newFixture(t, &stubModel{}, "", api.ProxyConfig{})

	w := f.do(t, http.MethodPost, "/api/sections/firmographics/toggle", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "", decode(t, w)["openSection"])

	w = f.do(t, http.MethodPost, "/api/sections/strategy/toggle", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Complete Psychographics first", decode(t, w)["message"])

	w = f.do(t, http.MethodPost, "/api/sections/nope/toggle", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExport(t *testing.T) {
	f := newFixture(t, &stubModel{}, "", api.ProxyConfig{})

	w := f.do(t, http.MethodGet, "/api/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "# Ideal Customer Profile")
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".md")

	w = f.do(t, http.MethodGet, "/api/export?format=json", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var p models.ICP
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.NotNil(t, p.PainPoints)

	w = f.do(t, http.MethodGet, "/api/export?format=pdf", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestShare(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		f := newFixture(t, &stubModel{}, "", api.ProxyConfig{})
		w := f.do(t, http.MethodPost, "/api/share", map[string]string{"email": "a@b.co"})
		assert.Equal(t, http.StatusNotImplemented, w.Code)
	})

	t.Run("delivered", func(t *testing.T) {
		var got export.WebhookPayload
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewDecoder(r.Body).Decode(&got)
			w.WriteHeader(http.StatusOK)
		}))
		t.Cleanup(srv.Close)

		f := newFixture(t, &stubModel{}, srv.URL, api.ProxyConfig{})
		w := f.do(t, http.MethodPost, "/api/share", map[string]string{"email": "a@b.co"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "a@b.co", got.Email)
	})

	t.Run("invalid email", func(t *testing.T) {
		f := newFixture(t, &stubModel{}, "http://127.0.0.1:1", api.ProxyConfig{})
		w := f.do(t, http.MethodPost, "/api/share", map[string]string{"email": "nope"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("upstream failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		t.Cleanup(srv.Close)

		f := newFixture(t, &stubModel{}, srv.URL, api.ProxyConfig{})
		w := f.do(t, http.MethodPost, "/api/share", map[string]string{"email": "a@b.co"})
		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}

func TestGemini(t *testing.T) {
	proxyFor := func(m *stubModel) api.ProxyConfig {
		return api.ProxyConfig{APIKey: testKey, Factory: factory(m)}
	}

	t.Run("not configured", func(t *testing.T) {
		f := newFixture(t, &stubModel{}, "", api.ProxyConfig{})
		w := f.do(t, http.MethodPost, "/api/gemini", map[string]string{"message": "hi"})
		require.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "API key not configured", decode(t, w)["message"])
	})

	t.Run("missing message", func(t *testing.T) {
		f := newFixture(t, &stubModel{}, "", proxyFor(&stubModel{}))
		w := f.do(t, http.MethodPost, "/api/gemini", map[string]string{})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Message is required", decode(t, w)["message"])
	})

	t.Run("success", func(t *testing.T) {
		m := &stubModel{steps: []func() (*chat.Response, error){
			update(map[string]any{"painPoints": []any{"Manual reporting"}}),
			reply("Noted."),
		}}
		f := newFixture(t, &stubModel{}, "", proxyFor(m))
		w := f.do(t, http.MethodPost, "/api/gemini", map[string]any{
			"message": "they hate manual reporting",
			"sessionState": map[string]any{
				"messages": []models.ChatMessage{models.SeedMessage()},
				"icp":      models.ICP{Role: "CFO"},
			},
		})
		require.Equal(t, http.StatusOK, w.Code)

		body := decode(t, w)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "Noted.", body["reply"])
		assert.EqualValues(t, 1, body["updates"])
		icp := body["icp"].(map[string]any)
		assert.Equal(t, "CFO", icp["role"])
		assert.Equal(t, []any{"Manual reporting"}, icp["painPoints"])

		assert.True(t, f.builder.Profile().IsEmpty(), "proxy turns never touch the builder")
	})

	cases := []struct {
		name   string
		err    error
		status int
		title  string
	}{
		{"auth", &chat.StatusError{Code: http.StatusUnauthorized}, http.StatusUnauthorized, "Authentication failed"},
		{"rate limit", &chat.StatusError{Code: http.StatusTooManyRequests}, http.StatusTooManyRequests, "Rate limit exceeded"},
		{"network", errors.New("network unreachable"), http.StatusServiceUnavailable, "Network error"},
		{"other", errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := &stubModel{steps: []func() (*chat.Response, error){failure(tc.err)}}
			f := newFixture(t, &stubModel{}, "", proxyFor(m))
			w := f.do(t, http.MethodPost, "/api/gemini", map[string]string{"message": "hi"})
			require.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.title, decode(t, w)["error"])
			assert.False(t, strings.Contains(w.Body.String(), "boom"))
		})
	}
}
