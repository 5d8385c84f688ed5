package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/avaldez/aideck/internal/api"
)

func testService(t *testing.T, handler http.HandlerFunc) (*Service, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := api.New(&api.Config{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("api.New() error = %v", err)
	}
	return NewService(client), server
}

func TestService_Generate(t *testing.T) {
	svc, _ := testService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/ai/generate" {
			t.Errorf("got %s %s, want POST /ai/generate", r.Method, r.URL.Path)
		}
		var req GenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Prompt != "hello" || req.Model != "gemini-2.5-flash" {
			t.Errorf("request = %+v", req)
		}
		json.NewEncoder(w).Encode(GenerateResponse{
			Response:       "hi there",
			ConversationID: "c1",
			MessageOrder:   0,
		})
	})

	resp, err := svc.Generate(context.Background(), &GenerateRequest{
		Prompt: "hello",
		Model:  "gemini-2.5-flash",
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if resp.ConversationID != "c1" {
		t.Errorf("ConversationID = %q, want c1", resp.ConversationID)
	}
	if resp.MessageOrder != 0 {
		t.Errorf("MessageOrder = %d, want 0", resp.MessageOrder)
	}
}

func TestService_Continue(t *testing.T) {
	svc, _ := testService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ai/conversation/c1" {
			t.Errorf("path = %s, want /ai/conversation/c1", r.URL.Path)
		}
		json.NewEncoder(w).Encode(GenerateResponse{
			Response:       "second reply",
			ConversationID: "c1",
			MessageOrder:   1,
		})
	})

	resp, err := svc.Continue(context.Background(), &ContinueRequest{
		Prompt:         "and then?",
		Model:          "gemini-2.5-flash",
		ConversationID: "c1",
	})
	if err != nil {
		t.Fatalf("Continue() error = %v", err)
	}
	if resp.MessageOrder != 1 {
		t.Errorf("MessageOrder = %d, want 1", resp.MessageOrder)
	}
}

func TestService_Conversation(t *testing.T) {
	svc, _ := testService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ai/conversation/c1" {
			t.Errorf("path = %s, want /ai/conversation/c1", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]Message{
			{ID: 1, ConversationID: "c1", MessageOrder: 0, Prompt: "a", Response: "b"},
			{ID: 2, ConversationID: "c1", MessageOrder: 1, Prompt: "c", Response: "d"},
		})
	})

	messages, err := svc.Conversation(context.Background(), "c1")
	if err != nil {
		t.Fatalf("Conversation() error = %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("len(messages) = %d, want 2", len(messages))
	}
	if messages[1].MessageOrder != 1 {
		t.Errorf("messages[1].MessageOrder = %d, want 1", messages[1].MessageOrder)
	}
}

func TestService_History_Params(t *testing.T) {
	var gotQuery string
	svc, _ := testService(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode([]Message{})
	})

	_, err := svc.History(context.Background(), &HistoryParams{Page: 0, Size: 50, Sort: "createdAt,desc"})
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	// page 0 is the default and is omitted, as the original client does.
	if gotQuery != "size=50&sort=createdAt%2Cdesc" {
		t.Errorf("query = %q", gotQuery)
	}
}

func TestService_History_NilParams(t *testing.T) {
	var gotURL string
	svc, _ := testService(t, func(w http.ResponseWriter, r *http.Request) {
		gotURL = r.URL.String()
		json.NewEncoder(w).Encode([]Message{})
	})

	if _, err := svc.History(context.Background(), nil); err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if gotURL != "/ai/history" {
		t.Errorf("url = %q, want /ai/history", gotURL)
	}
}

func TestService_AllHistory(t *testing.T) {
	svc, _ := testService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ai/history/all" {
			t.Errorf("path = %s, want /ai/history/all", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]Message{{ID: 1, ConversationID: "c1"}})
	})

	messages, err := svc.AllHistory(context.Background(), nil)
	if err != nil {
		t.Fatalf("AllHistory() error = %v", err)
	}
	if len(messages) != 1 {
		t.Errorf("len(messages) = %d, want 1", len(messages))
	}
}

func TestService_DeactivateReactivate(t *testing.T) {
	var paths []string
	svc, _ := testService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s, want PUT", r.Method)
		}
		paths = append(paths, r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})

	if err := svc.Deactivate(context.Background(), "c1"); err != nil {
		t.Fatalf("Deactivate() error = %v", err)
	}
	if err := svc.Reactivate(context.Background(), "c1"); err != nil {
		t.Fatalf("Reactivate() error = %v", err)
	}

	want := []string{"/ai/conversation/c1/deactivate", "/ai/conversation/c1/reactivate"}
	for i, p := range want {
		if paths[i] != p {
			t.Errorf("paths[%d] = %q, want %q", i, paths[i], p)
		}
	}
}

func TestService_Generate_ServerError(t *testing.T) {
	svc, _ := testService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"message":"model unavailable"}`))
	})

	_, err := svc.Generate(context.Background(), &GenerateRequest{Prompt: "x", Model: "m"})
	if err == nil {
		t.Fatal("Generate() error = nil, want error")
	}
}
