package history

import (
	"strings"
	"testing"
	"time"

	"github.com/avaldez/aideck/internal/chat"
	"github.com/avaldez/aideck/internal/imagegen"
)

func msg(id int64, conv string, order int, prompt, response string, created time.Time) chat.Message {
	return chat.Message{
		ID:             id,
		ConversationID: conv,
		MessageOrder:   order,
		Prompt:         prompt,
		Response:       response,
		CreatedAt:      created,
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		s     string
		limit int
		want  string
	}{
		{"shorter unchanged", "hello", 30, "hello"},
		{"exactly at limit unchanged", strings.Repeat("a", 30), 30, strings.Repeat("a", 30)},
		{"over limit cut with ellipsis", strings.Repeat("a", 31), 30, strings.Repeat("a", 30) + "..."},
		{"empty", "", 30, ""},
		{"multibyte runes counted as one", strings.Repeat("ñ", 31), 30, strings.Repeat("ñ", 30) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.s, tt.limit); got != tt.want {
				t.Errorf("Truncate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGroupMessages(t *testing.T) {
	now := time.Now()
	messages := []chat.Message{
		msg(3, "c2", 1, "p", "r", now),
		msg(1, "c1", 1, "p", "r", now),
		msg(2, "c1", 0, "p", "r", now),
		msg(4, "c2", 0, "p", "r", now),
	}

	groups := GroupMessages(messages)
	if len(groups) != 2 {
		t.Fatalf("len(groups) = %d, want 2", len(groups))
	}

	for id, group := range groups {
		if group[0].MessageOrder != 0 {
			t.Errorf("group %s first order = %d, want 0", id, group[0].MessageOrder)
		}
		for i := 1; i < len(group); i++ {
			if group[i].MessageOrder <= group[i-1].MessageOrder {
				t.Errorf("group %s not strictly increasing at %d", id, i)
			}
		}
	}
}

func TestConversations(t *testing.T) {
	older := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)

	longPrompt := strings.Repeat("q", 45)
	longResponse := strings.Repeat("r", 60)

	messages := []chat.Message{
		msg(1, "c1", 0, longPrompt, "first reply", older),
		msg(2, "c1", 1, "follow up", longResponse, newer),
		msg(3, "c2", 0, "short", "short reply", older),
	}

	summaries := Conversations(messages)
	if len(summaries) != 2 {
		t.Fatalf("len(summaries) = %d, want 2", len(summaries))
	}

	// Most recent conversation comes first.
	if summaries[0].ConversationID != "c1" {
		t.Errorf("summaries[0] = %s, want c1", summaries[0].ConversationID)
	}

	c1 := summaries[0]
	if want := longPrompt[:30] + "..."; c1.Title != want {
		t.Errorf("Title = %q, want %q", c1.Title, want)
	}
	if want := longResponse[:50] + "..."; c1.Preview != want {
		t.Errorf("Preview = %q, want %q", c1.Preview, want)
	}
	if c1.MessageCount != 2 {
		t.Errorf("MessageCount = %d, want 2", c1.MessageCount)
	}
	if !c1.LastTimestamp.Equal(newer) {
		t.Errorf("LastTimestamp = %v, want %v", c1.LastTimestamp, newer)
	}

	if summaries[1].Title != "short" {
		t.Errorf("short title altered: %q", summaries[1].Title)
	}
}

func TestConversations_TitleFromFirstByOrder(t *testing.T) {
	now := time.Now()
	// Interleaved arrival order; the title must come from messageOrder 0.
	messages := []chat.Message{
		msg(2, "c1", 1, "second prompt", "second reply", now),
		msg(1, "c1", 0, "first prompt", "first reply", now),
	}

	summaries := Conversations(messages)
	if summaries[0].Title != "first prompt" {
		t.Errorf("Title = %q, want first prompt", summaries[0].Title)
	}
	if summaries[0].Preview != "second reply" {
		t.Errorf("Preview = %q, want second reply", summaries[0].Preview)
	}
}

func TestImages(t *testing.T) {
	older := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	newer := older.Add(time.Minute)
	longPrompt := strings.Repeat("p", 41)

	images := []imagegen.Image{
		{ID: 1, Prompt: longPrompt, ImageURL: "http://x/1.png", CreatedAt: older},
		{ID: 2, Prompt: "short", ImageURL: "http://x/2.png", CreatedAt: newer},
	}

	summaries := Images(images)
	if summaries[0].ID != 2 {
		t.Errorf("summaries[0].ID = %d, want 2 (newest first)", summaries[0].ID)
	}
	if want := longPrompt[:40] + "..."; summaries[1].Prompt != want {
		t.Errorf("Prompt = %q, want %q", summaries[1].Prompt, want)
	}
}

func TestPartition(t *testing.T) {
	tests := []struct {
		name   string
		all    []string
		active []string
		want   []string
	}{
		{"simple diff", []string{"a", "b", "c"}, []string{"a", "c"}, []string{"b"}},
		{"nothing archived", []string{"a", "b"}, []string{"a", "b"}, nil},
		{"all archived", []string{"a", "b"}, nil, []string{"a", "b"}},
		{"id in both never archived", []string{"a"}, []string{"a"}, nil},
		{"duplicates collapsed", []string{"a", "a", "b"}, nil, []string{"a", "b"}},
		{"empty all", nil, []string{"a"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Partition(tt.all, tt.active)
			if len(got) != len(tt.want) {
				t.Fatalf("Partition() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Partition()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestConversationIDs(t *testing.T) {
	now := time.Now()
	messages := []chat.Message{
		msg(1, "c1", 0, "p", "r", now),
		msg(2, "c2", 0, "p", "r", now),
		msg(3, "c1", 1, "p", "r", now),
	}

	ids := ConversationIDs(messages)
	want := []string{"c1", "c2"}
	if len(ids) != len(want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %s, want %s", i, ids[i], want[i])
		}
	}
}
