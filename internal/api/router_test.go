package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"edubot/docs"
	"edubot/internal/api/handlers"
	"edubot/internal/dto"
	"edubot/internal/repository"
	"edubot/internal/seed"
	"edubot/internal/service"
	"edubot/pkg/config"
	"edubot/pkg/database"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testServer struct {
	app           *fiber.App
	conversations *repository.ConversationRepository
}

// newTestServer wires the full stack against a fresh sqlite store and a fake
// completion endpoint that replies with status and body.
func newTestServer(t *testing.T, status int, body string) *testServer {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()

	db, err := database.Open(ctx, &config.DatabaseConfig{Driver: database.DriverSQLite, Path: filepath.Join(t.TempDir(), "kb.db")}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	static := repository.NewStaticResponseRepository(db, logger)
	facts := repository.NewEducationFactRepository(db, logger)
	conversations := repository.NewConversationRepository(db, logger)

	data, err := seed.Default()
	require.NoError(t, err)
	_, err = service.NewSeedService(static, facts, logger).Seed(ctx, data)
	require.NoError(t, err)

	llm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(llm.Close)

	completion := service.NewCompletionService(
		service.NewOpenAIClient(&config.CompletionConfig{URL: llm.URL, APIKey: "k", Model: "deepseek-chat"}, llm.Client()),
		logger,
	)
	resolver := service.NewResolver(
		service.DefaultMatchers(static, facts, completion, logger),
		service.NewConversationLogger(conversations, logger),
		logger,
	)

	app := SetupRouter(
		&config.ServerConfig{ReadTimeout: 5 * time.Second, WriteTimeout: 5 * time.Second},
		handlers.NewChatHandler(resolver, logger),
		handlers.NewConversationHandler(service.NewConversationService(conversations, logger), logger),
		handlers.NewHealthHandler(db, logger),
		logger,
	)
	return &testServer{app: app, conversations: conversations}
}

func (s *testServer) do(t *testing.T, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func chatResponse(t *testing.T, raw []byte) string {
	t.Helper()
	var out dto.ChatResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	return out.Response
}

const remoteDown = `{"error":"unavailable"}`

func TestIndexPage(t *testing.T) {
	s := newTestServer(t, http.StatusServiceUnavailable, remoteDown)
	resp, raw := s.do(t, http.MethodGet, "/", "")

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, string(raw), "Sri Lankan Education Assistant")
}

func TestChatLocalAnswers(t *testing.T) {
	s := newTestServer(t, http.StatusServiceUnavailable, remoteDown)

	tests := []struct {
		message string
		want    string
	}{
		{"hello", "Hello! How can I help you with Sri Lankan education today?"},
		{"Thank You", "You're welcome! How else can I assist you with Sri Lankan education?"},
		{"what is primary education", "Primary education in Sri Lanka covers Grades 1-5 and is compulsory for all children."},
		{"explain university admission", "University admissions are based on Z-scores calculated from A/L results, with quotas for each district."},
	}
	for _, tt := range tests {
		body, _ := json.Marshal(map[string]string{"message": tt.message})
		resp, raw := s.do(t, http.MethodPost, "/chat", string(body))
		require.Equal(t, fiber.StatusOK, resp.StatusCode, tt.message)
		assert.Equal(t, tt.want, chatResponse(t, raw), tt.message)
	}

	entries, err := s.conversations.List(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestChatRemoteAnswer(t *testing.T) {
	s := newTestServer(t, http.StatusOK, `{"choices":[{"message":{"content":"The school year starts in January."}}]}`)

	resp, raw := s.do(t, http.MethodPost, "/chat", `{"message":"When does school start?"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "The school year starts in January.", chatResponse(t, raw))
}

// A failed remote call is not surfaced as an error; the user gets the
// fallback message with status 200.
func TestChatRemoteFailureReturnsFallback(t *testing.T) {
	s := newTestServer(t, http.StatusInternalServerError, remoteDown)

	resp, raw := s.do(t, http.MethodPost, "/chat", `{"message":"How many schools are there?"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, service.FallbackMessage, chatResponse(t, raw))

	resp, raw = s.do(t, http.MethodPost, "/chat", `{"message":""}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, service.FallbackMessage, chatResponse(t, raw))

	entries, err := s.conversations.List(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestChatConcurrentFallbacksAreAllLogged(t *testing.T) {
	const clients = 24
	s := newTestServer(t, http.StatusInternalServerError, remoteDown)

	var wg sync.WaitGroup
	responses := make(chan string, clients)
	for i := 0; i < clients; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			body := fmt.Sprintf(`{"message":"Unknown question %d"}`, i)
			req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			resp, err := s.app.Test(req, -1)
			if !assert.NoError(t, err) {
				return
			}
			defer resp.Body.Close()
			assert.Equal(t, fiber.StatusOK, resp.StatusCode)

			var out dto.ChatResponse
			if assert.NoError(t, json.NewDecoder(resp.Body).Decode(&out)) {
				responses <- out.Response
			}
		}(i)
	}
	wg.Wait()
	close(responses)

	got := 0
	for r := range responses {
		assert.Equal(t, service.FallbackMessage, r)
		got++
	}
	assert.Equal(t, clients, got)

	entries, err := s.conversations.List(context.Background(), clients*2, 0)
	require.NoError(t, err)
	assert.Len(t, entries, clients)
}

func TestChatMalformedRequests(t *testing.T) {
	s := newTestServer(t, http.StatusServiceUnavailable, remoteDown)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"invalid json", `{"message":`, "Invalid request body"},
		{"empty body", ``, "Invalid request body"},
		{"not an object", `"hello"`, "Invalid request body"},
		{"number message", `{"message": 42}`, "Invalid request body"},
		{"missing message", `{"text":"hello"}`, `Field "message" is required`},
		{"null message", `{"message": null}`, `Field "message" is required`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, raw := s.do(t, http.MethodPost, "/chat", tt.body)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

			var out dto.ErrorResponse
			require.NoError(t, json.Unmarshal(raw, &out))
			assert.Contains(t, out.Error, tt.want)
		})
	}

	entries, err := s.conversations.List(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Empty(t, entries, "rejected requests are not logged")
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, http.StatusServiceUnavailable, remoteDown)
	resp, raw := s.do(t, http.MethodGet, "/health", "")

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(raw))
}

func TestConversationReviewAndFeedback(t *testing.T) {
	s := newTestServer(t, http.StatusServiceUnavailable, remoteDown)
	s.do(t, http.MethodPost, "/chat", `{"message":"Is there a school bus?"}`)

	resp, raw := s.do(t, http.MethodGet, "/api/v1/conversations?limit=5", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var list []dto.ConversationResponse
	require.NoError(t, json.Unmarshal(raw, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Is there a school bus?", list[0].UserInput)
	assert.Equal(t, service.FallbackMessage, list[0].BotResponse)
	assert.Nil(t, list[0].Feedback)

	resp, _ = s.do(t, http.MethodPost, "/api/v1/conversations/"+list[0].ID+"/feedback", `{"feedback":"add transport facts"}`)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	_, raw = s.do(t, http.MethodGet, "/api/v1/conversations", "")
	require.NoError(t, json.Unmarshal(raw, &list))
	require.NotNil(t, list[0].Feedback)
	assert.Equal(t, "add transport facts", *list[0].Feedback)

	resp, _ = s.do(t, http.MethodPost, "/api/v1/conversations/not-a-uuid/feedback", `{"feedback":"x"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = s.do(t, http.MethodPost, "/api/v1/conversations/"+list[0].ID+"/feedback", `{"feedback":"  "}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = s.do(t, http.MethodPost, "/api/v1/conversations/3f1c1d3a-8f0e-4d55-9a57-6f0b4f4c2b10/feedback", `{"feedback":"x"}`)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestSwaggerDescribesEveryRoute(t *testing.T) {
	s := newTestServer(t, http.StatusServiceUnavailable, remoteDown)

	var doc struct {
		Paths map[string]map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(docs.SwaggerInfo.ReadDoc()), &doc))

	documented := 0
	for _, route := range s.app.GetRoutes(true) {
		if route.Path == "/" || strings.HasPrefix(route.Path, "/swagger") || route.Method == fiber.MethodHead {
			continue
		}
		path := swaggerPath(route.Path)
		ops, ok := doc.Paths[path]
		if !assert.True(t, ok, "undocumented route %s %s", route.Method, route.Path) {
			continue
		}
		assert.Contains(t, ops, strings.ToLower(route.Method), path)
		documented++
	}
	assert.Equal(t, len(doc.Paths), len(uniquePaths(s.app)), "documented paths without a route")
	assert.Positive(t, documented)
}

// swaggerPath turns fiber's ":id" segments into swagger's "{id}".
func swaggerPath(p string) string {
	segments := strings.Split(p, "/")
	for i, seg := range segments {
		if strings.HasPrefix(seg, ":") {
			segments[i] = "{" + seg[1:] + "}"
		}
	}
	return strings.Join(segments, "/")
}

func uniquePaths(app *fiber.App) map[string]struct{} {
	paths := make(map[string]struct{})
	for _, route := range app.GetRoutes(true) {
		if route.Path == "/" || strings.HasPrefix(route.Path, "/swagger") {
			continue
		}
		paths[swaggerPath(route.Path)] = struct{}{}
	}
	return paths
}
