// Package chat wraps the backend's conversational AI endpoints.
package chat

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/avaldez/aideck/internal/api"
)

const basePath = "/ai"

// Message is one prompt/response exchange within a conversation. The backend
// assigns MessageOrder starting at 0 and gapless within a conversation.
type Message struct {
	ID             int64     `json:"id"`
	ConversationID string    `json:"conversationId"`
	MessageOrder   int       `json:"messageOrder"`
	Prompt         string    `json:"prompt"`
	Response       string    `json:"response"`
	CreatedAt      time.Time `json:"createdAt"`
}

type GenerateRequest struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model"`
}

type ContinueRequest struct {
	Prompt         string `json:"prompt"`
	Model          string `json:"model"`
	ConversationID string `json:"conversationId"`
}

type GenerateResponse struct {
	Response       string    `json:"response"`
	ConversationID string    `json:"conversationId"`
	MessageOrder   int       `json:"messageOrder"`
	CreatedAt      time.Time `json:"createdAt,omitempty"`
}

// HistoryParams are optional paging parameters for the history endpoints.
type HistoryParams struct {
	Page int
	Size int
	Sort string
}

func (p *HistoryParams) encode() string {
	if p == nil {
		return ""
	}
	values := url.Values{}
	if p.Page > 0 {
		values.Set("page", strconv.Itoa(p.Page))
	}
	if p.Size > 0 {
		values.Set("size", strconv.Itoa(p.Size))
	}
	if p.Sort != "" {
		values.Set("sort", p.Sort)
	}
	if len(values) == 0 {
		return ""
	}
	return "?" + values.Encode()
}

type Service struct {
	client *api.Client
}

func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

// Generate starts a new conversation. The backend assigns the conversation
// id and messageOrder 0.
func (s *Service) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	var resp GenerateResponse
	if err := s.client.Post(ctx, basePath+"/generate", req, &resp); err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	return &resp, nil
}

// Continue appends an exchange to an existing conversation.
func (s *Service) Continue(ctx context.Context, req *ContinueRequest) (*GenerateResponse, error) {
	var resp GenerateResponse
	path := fmt.Sprintf("%s/conversation/%s", basePath, url.PathEscape(req.ConversationID))
	if err := s.client.Post(ctx, path, req, &resp); err != nil {
		return nil, fmt.Errorf("continue conversation: %w", err)
	}
	return &resp, nil
}

// Conversation returns the full message list for one conversation, ordered
// by messageOrder.
func (s *Service) Conversation(ctx context.Context, conversationID string) ([]Message, error) {
	var messages []Message
	path := fmt.Sprintf("%s/conversation/%s", basePath, url.PathEscape(conversationID))
	if err := s.client.Get(ctx, path, &messages); err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	return messages, nil
}

// History returns messages belonging to active conversations only.
func (s *Service) History(ctx context.Context, params *HistoryParams) ([]Message, error) {
	var messages []Message
	if err := s.client.Get(ctx, basePath+"/history"+params.encode(), &messages); err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}
	return messages, nil
}

// AllHistory returns messages for every conversation, archived included.
func (s *Service) AllHistory(ctx context.Context, params *HistoryParams) ([]Message, error) {
	var messages []Message
	if err := s.client.Get(ctx, basePath+"/history/all"+params.encode(), &messages); err != nil {
		return nil, fmt.Errorf("get all history: %w", err)
	}
	return messages, nil
}

// Deactivate archives a conversation. Records are never deleted client-side.
func (s *Service) Deactivate(ctx context.Context, conversationID string) error {
	path := fmt.Sprintf("%s/conversation/%s/deactivate", basePath, url.PathEscape(conversationID))
	if err := s.client.Put(ctx, path, nil, nil); err != nil {
		return fmt.Errorf("deactivate conversation: %w", err)
	}
	return nil
}

// Reactivate restores an archived conversation.
func (s *Service) Reactivate(ctx context.Context, conversationID string) error {
	path := fmt.Sprintf("%s/conversation/%s/reactivate", basePath, url.PathEscape(conversationID))
	if err := s.client.Put(ctx, path, nil, nil); err != nil {
		return fmt.Errorf("reactivate conversation: %w", err)
	}
	return nil
}
