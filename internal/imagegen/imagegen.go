// Package imagegen wraps the backend's image generation endpoints.
package imagegen

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avaldez/aideck/internal/api"
)

const basePath = "/image"

// StatusSuccess is the status value the generation endpoint returns when an
// image was produced.
const StatusSuccess = "success"

var ErrGenerationFailed = errors.New("image generation failed")

// Image is one generated image record as stored by the backend. Ids are
// numeric database keys on the wire.
type Image struct {
	ID           int64     `json:"id"`
	Prompt       string    `json:"prompt"`
	ImageURL     string    `json:"imageUrl"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
	StyleID      int       `json:"styleId"`
	Style        string    `json:"style,omitempty"`
	Size         string    `json:"size"`
	Status       string    `json:"status,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	Active       bool      `json:"active"`
}

type GenerateRequest struct {
	Prompt  string `json:"prompt"`
	StyleID int    `json:"style_id"`
	Size    string `json:"size"`
}

type GenerateResponse struct {
	ImageURL    string `json:"imageUrl,omitempty"`
	Status      string `json:"status,omitempty"`
	RawResponse string `json:"rawResponse,omitempty"`
}

// Succeeded reports whether the backend produced a usable image.
func (r *GenerateResponse) Succeeded() bool {
	return r.Status == StatusSuccess && r.ImageURL != ""
}

type Service struct {
	client *api.Client
}

func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

// Generate requests a new image. A 2xx response can still carry a failed
// status; callers must check Succeeded before using ImageURL.
func (s *Service) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	var resp GenerateResponse
	if err := s.client.Post(ctx, basePath+"/generate", req, &resp); err != nil {
		return nil, fmt.Errorf("generate image: %w", err)
	}
	return &resp, nil
}

// History returns active images only, newest first.
func (s *Service) History(ctx context.Context) ([]Image, error) {
	var images []Image
	if err := s.client.Get(ctx, basePath+"/history", &images); err != nil {
		return nil, fmt.Errorf("get image history: %w", err)
	}
	return images, nil
}

// AllHistory returns every image, archived included.
func (s *Service) AllHistory(ctx context.Context) ([]Image, error) {
	var images []Image
	if err := s.client.Get(ctx, basePath+"/history/all", &images); err != nil {
		return nil, fmt.Errorf("get all image history: %w", err)
	}
	return images, nil
}

func (s *Service) Deactivate(ctx context.Context, id int64) error {
	path := fmt.Sprintf("%s/%d/deactivate", basePath, id)
	if err := s.client.Put(ctx, path, nil, nil); err != nil {
		return fmt.Errorf("deactivate image: %w", err)
	}
	return nil
}

func (s *Service) Reactivate(ctx context.Context, id int64) error {
	path := fmt.Sprintf("%s/%d/reactivate", basePath, id)
	if err := s.client.Put(ctx, path, nil, nil); err != nil {
		return fmt.Errorf("reactivate image: %w", err)
	}
	return nil
}
