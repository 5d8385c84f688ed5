package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/avaldez/aideck/internal/imagegen"
)

// GalleryItem is one image in the visible gallery, newest first.
type GalleryItem struct {
	ID       string
	RemoteID int64
	URL      string
	Prompt   string
	Style    string
	Size     string
	Time     time.Time
}

// ImageBackend is the slice of imagegen.Service a gallery session drives.
type ImageBackend interface {
	Generate(ctx context.Context, req *imagegen.GenerateRequest) (*imagegen.GenerateResponse, error)
	History(ctx context.Context) ([]imagegen.Image, error)
}

// GallerySession owns the visible gallery list for the image screen.
type GallerySession struct {
	mu sync.Mutex

	svc     ImageBackend
	styles  *imagegen.StyleRegistry
	items   []GalleryItem
	loading bool
	epoch   uint64
}

func NewGallerySession(svc ImageBackend, styles *imagegen.StyleRegistry) *GallerySession {
	if styles == nil {
		styles = imagegen.DefaultStyleRegistry()
	}
	return &GallerySession{svc: svc, styles: styles}
}

func (s *GallerySession) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.loading:
		return Loading
	case len(s.items) == 0:
		return Empty
	default:
		return Populated
	}
}

// Items returns a copy of the gallery, newest first.
func (s *GallerySession) Items() []GalleryItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]GalleryItem, len(s.items))
	copy(items, s.items)
	return items
}

// StartNew discards the gallery unconditionally.
func (s *GallerySession) StartNew() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	s.items = nil
	s.loading = false
}

// Load rebuilds the gallery from the active image history. The previous list
// survives a failed fetch.
func (s *GallerySession) Load(ctx context.Context) error {
	s.mu.Lock()
	s.epoch++
	epoch := s.epoch
	s.loading = true
	s.mu.Unlock()

	images, err := s.svc.History(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return nil
	}
	s.loading = false
	if err != nil {
		return fmt.Errorf("%w gallery: %v", ErrLoadFailed, err)
	}

	items := make([]GalleryItem, 0, len(images))
	for _, img := range images {
		items = append(items, GalleryItem{
			ID:       uuid.New().String(),
			RemoteID: img.ID,
			URL:      img.ImageURL,
			Prompt:   img.Prompt,
			Style:    img.Style,
			Size:     img.Size,
			Time:     img.CreatedAt,
		})
	}
	s.items = items
	return nil
}

// AppendGeneration requests an image and prepends it to the gallery only on
// a successful response. A failed generation leaves the gallery untouched
// and the error carries whatever diagnostics the service returned.
func (s *GallerySession) AppendGeneration(ctx context.Context, prompt string, styleID int, size string) (*GalleryItem, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, ErrEmptyInput
	}

	req := &imagegen.GenerateRequest{Prompt: prompt, StyleID: styleID, Size: size}
	if err := s.styles.Validate(req); err != nil {
		return nil, err
	}

	s.mu.Lock()
	epoch := s.epoch
	style, _ := s.styles.Get(styleID)
	s.mu.Unlock()

	resp, err := s.svc.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	if !resp.Succeeded() {
		if resp.RawResponse != "" {
			return nil, fmt.Errorf("%w: status %q: %s",
				imagegen.ErrGenerationFailed, resp.Status, resp.RawResponse)
		}
		return nil, fmt.Errorf("%w: status %q, no image received",
			imagegen.ErrGenerationFailed, resp.Status)
	}

	item := GalleryItem{
		ID:     uuid.New().String(),
		URL:    resp.ImageURL,
		Prompt: prompt,
		Style:  style.Label,
		Size:   size,
		Time:   time.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		// Gallery was cleared or reloaded while the call was in flight.
		return &item, nil
	}
	s.items = append([]GalleryItem{item}, s.items...)
	return &item, nil
}
