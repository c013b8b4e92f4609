package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*StreamClient, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewStreamClient("test-key", "test-secret", server.URL)
	if err != nil {
		t.Fatalf("NewStreamClient err: %v", err)
	}
	return client, server
}

func TestNewStreamClientRequiresCredentials(t *testing.T) {
	if _, err := NewStreamClient("", "secret", ""); err == nil {
		t.Fatal("expected error for missing api key")
	}
	if _, err := NewStreamClient("key", "", ""); err == nil {
		t.Fatal("expected error for missing api secret")
	}
}

func TestUserExistsFound(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("api_key") != "test-key" {
			t.Error("api_key query parameter missing")
		}
		if r.Header.Get("Stream-Auth-Type") != "jwt" {
			t.Error("expected jwt auth type header")
		}
		json.NewEncoder(w).Encode(map[string]any{
			"users": []map[string]string{{"id": "user-1"}},
		})
	})

	found, err := client.UserExists(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("UserExists err: %v", err)
	}
	if !found {
		t.Fatal("expected user to be found")
	}
}

func TestUserExistsMissing(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"users": []any{}})
	})

	found, err := client.UserExists(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("UserExists err: %v", err)
	}
	if found {
		t.Fatal("expected user to be absent")
	}
}

func TestEnsureChannelReturnsDerivedID(t *testing.T) {
	var gotPath string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{}`))
	})

	channelID, err := client.EnsureChannel(context.Background(), "user-7")
	if err != nil {
		t.Fatalf("EnsureChannel err: %v", err)
	}
	if channelID != "chat-user-7" {
		t.Fatalf("unexpected channel id %q", channelID)
	}
	if gotPath != "/channels/messaging/chat-user-7/query" {
		t.Fatalf("unexpected path %q", gotPath)
	}
}

func TestSendMessageBody(t *testing.T) {
	var body struct {
		Message struct {
			Text   string `json:"text"`
			UserID string `json:"user_id"`
		} `json:"message"`
	}
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Write([]byte(`{}`))
	})

	if err := client.SendMessage(context.Background(), "chat-user-7", "hello there", "ai_assistant"); err != nil {
		t.Fatalf("SendMessage err: %v", err)
	}
	if body.Message.Text != "hello there" {
		t.Fatalf("unexpected text %q", body.Message.Text)
	}
	if body.Message.UserID != "ai_assistant" {
		t.Fatalf("unexpected sender %q", body.Message.UserID)
	}
}

func TestProviderErrorSurfacesStatus(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"broken"}`, http.StatusServiceUnavailable)
	})

	err := client.UpsertUser(context.Background(), "user-1", "Ada", "ada@x.com")
	if err == nil {
		t.Fatal("expected error from provider")
	}
	if !strings.Contains(err.Error(), "503") {
		t.Fatalf("expected status code in error, got %v", err)
	}
}

func TestServerTokenShape(t *testing.T) {
	token, err := serverToken("secret")
	if err != nil {
		t.Fatalf("serverToken err: %v", err)
	}
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("expected three jwt segments, got %d", len(parts))
	}
	for i, part := range parts {
		if part == "" {
			t.Fatalf("segment %d is empty", i)
		}
	}
}
