package history

import (
	"context"

	"github.com/avaldez/aideck/internal/async"
	"github.com/avaldez/aideck/internal/chat"
	"github.com/avaldez/aideck/internal/imagegen"
)

// Default page sizes for the history fetches, matching the sidebar's
// active/all windows.
const (
	DefaultActivePageSize = 50
	DefaultAllPageSize    = 100
)

// ChatHistory is the slice of chat.Service the loader needs.
type ChatHistory interface {
	History(ctx context.Context, params *chat.HistoryParams) ([]chat.Message, error)
	AllHistory(ctx context.Context, params *chat.HistoryParams) ([]chat.Message, error)
}

// ImageHistory is the slice of imagegen.Service the loader needs.
type ImageHistory interface {
	History(ctx context.Context) ([]imagegen.Image, error)
	AllHistory(ctx context.Context) ([]imagegen.Image, error)
}

// ChatLoader fetches and reconciles conversation history. Each list lives in
// an async.State, so a failed fetch leaves the previous snapshot in place.
type ChatLoader struct {
	svc      ChatHistory
	pageSize int

	active   *async.State[[]ConversationSummary]
	archived *async.State[[]ConversationSummary]
}

func NewChatLoader(svc ChatHistory, pageSize int) *ChatLoader {
	if pageSize <= 0 {
		pageSize = DefaultActivePageSize
	}
	return &ChatLoader{
		svc:      svc,
		pageSize: pageSize,
		active:   async.NewState[[]ConversationSummary](),
		archived: async.NewState[[]ConversationSummary](),
	}
}

func (l *ChatLoader) Active() []ConversationSummary {
	return l.active.Data()
}

func (l *ChatLoader) Archived() []ConversationSummary {
	return l.archived.Data()
}

// LoadActive refreshes the active conversation list.
func (l *ChatLoader) LoadActive(ctx context.Context) error {
	_, err := l.active.Execute(ctx, func(ctx context.Context) ([]ConversationSummary, error) {
		messages, err := l.svc.History(ctx, &chat.HistoryParams{Size: l.pageSize})
		if err != nil {
			return nil, err
		}
		return Conversations(messages), nil
	})
	return err
}

// LoadArchived refreshes the archived list by diffing the full history
// against a fresh active snapshot (see Partition for the consistency note).
func (l *ChatLoader) LoadArchived(ctx context.Context) error {
	_, err := l.archived.Execute(ctx, func(ctx context.Context) ([]ConversationSummary, error) {
		all, err := l.svc.AllHistory(ctx, &chat.HistoryParams{Size: DefaultAllPageSize})
		if err != nil {
			return nil, err
		}
		active, err := l.svc.History(ctx, &chat.HistoryParams{Size: l.pageSize})
		if err != nil {
			return nil, err
		}

		archivedIDs := Partition(ConversationIDs(all), ConversationIDs(active))
		archivedSet := make(map[string]struct{}, len(archivedIDs))
		for _, id := range archivedIDs {
			archivedSet[id] = struct{}{}
		}

		var inactive []chat.Message
		for _, m := range all {
			if _, ok := archivedSet[m.ConversationID]; ok {
				inactive = append(inactive, m)
			}
		}
		return Conversations(inactive), nil
	})
	return err
}

// Reload refreshes both lists; either fetch failing aborts without touching
// the list it would have replaced.
func (l *ChatLoader) Reload(ctx context.Context) error {
	if err := l.LoadActive(ctx); err != nil {
		return err
	}
	return l.LoadArchived(ctx)
}

// ImageLoader is the gallery counterpart of ChatLoader.
type ImageLoader struct {
	svc ImageHistory

	active   *async.State[[]ImageSummary]
	archived *async.State[[]ImageSummary]
}

func NewImageLoader(svc ImageHistory) *ImageLoader {
	return &ImageLoader{
		svc:      svc,
		active:   async.NewState[[]ImageSummary](),
		archived: async.NewState[[]ImageSummary](),
	}
}

func (l *ImageLoader) Active() []ImageSummary {
	return l.active.Data()
}

func (l *ImageLoader) Archived() []ImageSummary {
	return l.archived.Data()
}

func (l *ImageLoader) LoadActive(ctx context.Context) error {
	_, err := l.active.Execute(ctx, func(ctx context.Context) ([]ImageSummary, error) {
		images, err := l.svc.History(ctx)
		if err != nil {
			return nil, err
		}
		return Images(images), nil
	})
	return err
}

func (l *ImageLoader) LoadArchived(ctx context.Context) error {
	_, err := l.archived.Execute(ctx, func(ctx context.Context) ([]ImageSummary, error) {
		all, err := l.svc.AllHistory(ctx)
		if err != nil {
			return nil, err
		}
		active, err := l.svc.History(ctx)
		if err != nil {
			return nil, err
		}

		archivedIDs := Partition(ImageIDs(all), ImageIDs(active))
		archivedSet := make(map[int64]struct{}, len(archivedIDs))
		for _, id := range archivedIDs {
			archivedSet[id] = struct{}{}
		}

		var inactive []imagegen.Image
		for _, img := range all {
			if _, ok := archivedSet[img.ID]; ok {
				inactive = append(inactive, img)
			}
		}
		return Images(inactive), nil
	})
	return err
}

func (l *ImageLoader) Reload(ctx context.Context) error {
	if err := l.LoadActive(ctx); err != nil {
		return err
	}
	return l.LoadArchived(ctx)
}
