package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/avaldez/aideck/internal/chat"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Entry is one bubble in the visible timeline. A Pending user entry has been
// sent but not yet answered; a Failed one was sent and got no reply.
type Entry struct {
	ID      string
	Role    Role
	Text    string
	Time    time.Time
	Pending bool
	Failed  bool
}

// ChatBackend is the slice of chat.Service a chat session drives.
type ChatBackend interface {
	Generate(ctx context.Context, req *chat.GenerateRequest) (*chat.GenerateResponse, error)
	Continue(ctx context.Context, req *chat.ContinueRequest) (*chat.GenerateResponse, error)
	Conversation(ctx context.Context, conversationID string) ([]chat.Message, error)
}

// ChatSession owns the active conversation: its id, the append-only visible
// timeline, and the next message order. The timeline is rebuilt from scratch
// on Load and discarded on StartNew; it is never persisted.
type ChatSession struct {
	mu sync.Mutex

	svc   ChatBackend
	model string

	conversationID string
	nextOrder      int
	timeline       []Entry
	loading        bool

	// epoch invalidates in-flight results: StartNew and Load bump it, and a
	// call that resolves after its epoch passed is dropped instead of
	// mutating the replacement session's state.
	epoch uint64
}

func NewChatSession(svc ChatBackend, model string) *ChatSession {
	return &ChatSession{svc: svc, model: model}
}

func (s *ChatSession) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.loading:
		return Loading
	case s.conversationID == "" && len(s.timeline) == 0:
		return Empty
	default:
		return Populated
	}
}

func (s *ChatSession) ConversationID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversationID
}

// Timeline returns a copy of the visible entries.
func (s *ChatSession) Timeline() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := make([]Entry, len(s.timeline))
	copy(entries, s.timeline)
	return entries
}

func (s *ChatSession) Model() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model
}

func (s *ChatSession) SetModel(model string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.model = model
}

// StartNew clears the active id and timeline unconditionally. No network
// call is made and it never fails.
func (s *ChatSession) StartNew() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	s.conversationID = ""
	s.nextOrder = 0
	s.timeline = nil
	s.loading = false
}

// Load fetches the full record set for a conversation and rebuilds the
// timeline from scratch. On failure the previous state is retained.
func (s *ChatSession) Load(ctx context.Context, conversationID string) error {
	s.mu.Lock()
	s.epoch++
	epoch := s.epoch
	s.loading = true
	s.mu.Unlock()

	messages, err := s.svc.Conversation(ctx, conversationID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		// Superseded by StartNew or another Load while in flight.
		return nil
	}
	s.loading = false
	if err != nil {
		return fmt.Errorf("%w %s: %v", ErrLoadFailed, conversationID, err)
	}

	timeline := make([]Entry, 0, 2*len(messages))
	for _, m := range messages {
		timeline = append(timeline,
			Entry{
				ID:   fmt.Sprintf("%d-user", m.ID),
				Role: RoleUser,
				Text: m.Prompt,
				Time: m.CreatedAt,
			},
			Entry{
				ID:   fmt.Sprintf("%d-assistant", m.ID),
				Role: RoleAssistant,
				Text: m.Response,
				Time: m.CreatedAt,
			},
		)
	}

	s.conversationID = conversationID
	s.nextOrder = len(messages)
	s.timeline = timeline
	return nil
}

// AppendExchange sends a prompt. With no active conversation it starts one
// and adopts the server-assigned id and order; otherwise it continues the
// current conversation. The user entry is appended optimistically before the
// call and is kept, marked failed, if the call errors. The caller surfaces
// the error, the entry is not rolled back.
func (s *ChatSession) AppendExchange(ctx context.Context, prompt string) error {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return ErrEmptyInput
	}

	s.mu.Lock()
	epoch := s.epoch
	userEntry := Entry{
		ID:      uuid.New().String(),
		Role:    RoleUser,
		Text:    prompt,
		Time:    time.Now(),
		Pending: true,
	}
	s.timeline = append(s.timeline, userEntry)
	conversationID := s.conversationID
	model := s.model
	s.mu.Unlock()

	var resp *chat.GenerateResponse
	var err error
	if conversationID == "" {
		resp, err = s.svc.Generate(ctx, &chat.GenerateRequest{
			Prompt: prompt,
			Model:  model,
		})
	} else {
		resp, err = s.svc.Continue(ctx, &chat.ContinueRequest{
			Prompt:         prompt,
			Model:          model,
			ConversationID: conversationID,
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return nil
	}

	if err != nil {
		s.markEntry(userEntry.ID, func(e *Entry) {
			e.Pending = false
			e.Failed = true
		})
		return err
	}

	s.conversationID = resp.ConversationID
	s.nextOrder = resp.MessageOrder + 1
	s.markEntry(userEntry.ID, func(e *Entry) {
		e.Pending = false
	})
	s.timeline = append(s.timeline, Entry{
		ID:   uuid.New().String(),
		Role: RoleAssistant,
		Text: resp.Response,
		Time: time.Now(),
	})
	return nil
}

// markEntry mutates the entry with the given id in place. Caller holds mu.
func (s *ChatSession) markEntry(id string, fn func(*Entry)) {
	for i := range s.timeline {
		if s.timeline[i].ID == id {
			fn(&s.timeline[i])
			return
		}
	}
}
