// Package history reconciles flat message/image records fetched from the
// backend into grouped, ordered timelines and display summaries.
package history

import (
	"sort"
	"time"

	"github.com/avaldez/aideck/internal/chat"
	"github.com/avaldez/aideck/internal/imagegen"
)

// Truncation thresholds for derived display strings.
const (
	TitleLimit       = 30
	ImagePromptLimit = 40
	PreviewLimit     = 50
)

// ConversationSummary is the sidebar view of one conversation.
type ConversationSummary struct {
	ConversationID string
	Title          string
	Preview        string
	MessageCount   int
	LastTimestamp  time.Time
}

// ImageSummary is the gallery view of one generated image.
type ImageSummary struct {
	ID           int64
	Prompt       string
	ImageURL     string
	ThumbnailURL string
	Style        string
	Size         string
	CreatedAt    time.Time
}

// Truncate cuts s to limit runes and appends "..." when it was longer.
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

// GroupMessages groups a flat message list by conversation id. Each group is
// sorted ascending by messageOrder.
func GroupMessages(messages []chat.Message) map[string][]chat.Message {
	groups := make(map[string][]chat.Message)
	for _, m := range messages {
		groups[m.ConversationID] = append(groups[m.ConversationID], m)
	}
	for id, group := range groups {
		sort.Slice(group, func(i, j int) bool {
			return group[i].MessageOrder < group[j].MessageOrder
		})
		groups[id] = group
	}
	return groups
}

// Conversations derives sidebar summaries from a flat message list, sorted
// most recent first.
func Conversations(messages []chat.Message) []ConversationSummary {
	groups := GroupMessages(messages)

	summaries := make([]ConversationSummary, 0, len(groups))
	for id, group := range groups {
		first := group[0]
		last := group[len(group)-1]
		summaries = append(summaries, ConversationSummary{
			ConversationID: id,
			Title:          Truncate(first.Prompt, TitleLimit),
			Preview:        Truncate(last.Response, PreviewLimit),
			MessageCount:   len(group),
			LastTimestamp:  last.CreatedAt,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		if !summaries[i].LastTimestamp.Equal(summaries[j].LastTimestamp) {
			return summaries[i].LastTimestamp.After(summaries[j].LastTimestamp)
		}
		return summaries[i].ConversationID < summaries[j].ConversationID
	})
	return summaries
}

// Images derives gallery summaries from an image list, newest first.
func Images(images []imagegen.Image) []ImageSummary {
	summaries := make([]ImageSummary, 0, len(images))
	for _, img := range images {
		summaries = append(summaries, ImageSummary{
			ID:           img.ID,
			Prompt:       Truncate(img.Prompt, ImagePromptLimit),
			ImageURL:     img.ImageURL,
			ThumbnailURL: img.ThumbnailURL,
			Style:        img.Style,
			Size:         img.Size,
			CreatedAt:    img.CreatedAt,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		if !summaries[i].CreatedAt.Equal(summaries[j].CreatedAt) {
			return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
		}
		return summaries[i].ID < summaries[j].ID
	})
	return summaries
}

// Partition splits ids into archived = all minus active. The two inputs come
// from separate fetches with no transactional guarantee, so an item toggled
// between the calls can be misclassified for one render cycle; the next
// reload self-corrects. An id present in both sets is never archived.
func Partition[K comparable](all, active []K) (archived []K) {
	activeSet := make(map[K]struct{}, len(active))
	for _, id := range active {
		activeSet[id] = struct{}{}
	}

	seen := make(map[K]struct{}, len(all))
	for _, id := range all {
		if _, ok := activeSet[id]; ok {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		archived = append(archived, id)
	}
	return archived
}

// ConversationIDs lists the distinct conversation ids in a message list, in
// first-seen order.
func ConversationIDs(messages []chat.Message) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, m := range messages {
		if _, ok := seen[m.ConversationID]; ok {
			continue
		}
		seen[m.ConversationID] = struct{}{}
		ids = append(ids, m.ConversationID)
	}
	return ids
}

// ImageIDs lists the image ids in order.
func ImageIDs(images []imagegen.Image) []int64 {
	ids := make([]int64, 0, len(images))
	for _, img := range images {
		ids = append(ids, img.ID)
	}
	return ids
}
