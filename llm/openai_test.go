package llm

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"promptctx/chat"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testClient(serverURL string, maxRetries int) *Client {
	return NewClient(Config{
		BaseURL:     serverURL,
		APIKey:      "test-key",
		Model:       "test-model",
		Temperature: 0.2,
		Timeout:     5 * time.Second,
		MaxRetries:  maxRetries,
	}, testLogger())
}

func completionResponse(text string) string {
	return `{"choices":[{"message":{"role":"assistant","content":"` + text + `"}}]}`
}

func Test_Client_GenerateReturnsAssistantReply(t *testing.T) {
	var gotAuth string
	var gotRequest wireRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotRequest)
		io.WriteString(w, completionResponse("hello from the model"))
	}))
	defer server.Close()

	client := testClient(server.URL, 0)
	reply, err := client.Generate(context.Background(), []chat.Message{
		chat.SystemMessage("You are a software developer"),
		chat.UserMessage("explain this code"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if reply.Role != chat.RoleAssistant {
		t.Errorf("expected assistant role, got %q", reply.Role)
	}
	if reply.Text != "hello from the model" {
		t.Errorf("unexpected reply text: %q", reply.Text)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("expected bearer auth header, got %q", gotAuth)
	}
	if gotRequest.Model != "test-model" {
		t.Errorf("expected model in request, got %q", gotRequest.Model)
	}
	if len(gotRequest.Messages) != 2 || gotRequest.Messages[0].Role != "system" {
		t.Errorf("expected system+user messages on the wire, got %+v", gotRequest.Messages)
	}
}

func Test_Client_RetriesOnServerError(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		io.WriteString(w, completionResponse("recovered"))
	}))
	defer server.Close()

	client := testClient(server.URL, 2)
	reply, err := client.Generate(context.Background(), []chat.Message{chat.UserMessage("hi")})
	if err != nil {
		t.Fatal(err)
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
	if reply.Text != "recovered" {
		t.Errorf("unexpected reply: %q", reply.Text)
	}
}

func Test_Client_DoesNotRetryClientErrors(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error":{"message":"bad model name","type":"invalid_request_error"}}`)
	}))
	defer server.Close()

	client := testClient(server.URL, 3)
	_, err := client.Generate(context.Background(), []chat.Message{chat.UserMessage("hi")})
	if err == nil {
		t.Fatal("expected error")
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt for a 400, got %d", attempts)
	}
	if !strings.Contains(err.Error(), "bad model name") {
		t.Errorf("expected API error message in error, got %v", err)
	}
}

func Test_Client_CancelledContextStopsRetrying(t *testing.T) {
	var attempts int
	ctx, cancel := context.WithCancel(context.Background())
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		cancel() // cancel while the request is in flight
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := testClient(server.URL, 5)
	_, err := client.Generate(ctx, []chat.Message{chat.UserMessage("hi")})
	if err == nil {
		t.Fatal("expected error after cancellation")
	}
	if attempts != 1 {
		t.Errorf("expected no retries after cancel, got %d attempts", attempts)
	}
}

func Test_Client_NegativeRetriesStillAttemptsOnce(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		io.WriteString(w, completionResponse("still works"))
	}))
	defer server.Close()

	client := testClient(server.URL, -1)
	reply, err := client.Generate(context.Background(), []chat.Message{chat.UserMessage("hi")})
	if err != nil {
		t.Fatal(err)
	}
	if attempts != 1 {
		t.Errorf("expected exactly 1 attempt, got %d", attempts)
	}
	if reply.Text != "still works" {
		t.Errorf("unexpected reply: %q", reply.Text)
	}
}

func Test_Client_EmptyChoicesIsAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"choices":[]}`)
	}))
	defer server.Close()

	client := testClient(server.URL, 0)
	_, err := client.Generate(context.Background(), []chat.Message{chat.UserMessage("hi")})
	if err == nil {
		t.Fatal("expected error for empty choices")
	}
}
