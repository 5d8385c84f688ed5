// Package display renders gallery images inline in terminals that support
// the kitty graphics protocol, falling back to printing the URL.
package display

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/term"
)

const defaultTimeout = 60 * time.Second

type Displayer struct {
	out        io.Writer
	httpClient *http.Client
	isTerminal func() bool
}

func New(out io.Writer) *Displayer {
	return &Displayer{
		out: out,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		isTerminal: func() bool {
			return term.IsTerminal(int(os.Stdout.Fd()))
		},
	}
}

// Show renders the image at url inline when possible, otherwise prints the
// URL so the user can open it elsewhere.
func (d *Displayer) Show(ctx context.Context, url string) error {
	if url == "" {
		return fmt.Errorf("image has no URL")
	}

	if !d.isTerminal() || !IsProtocolSupported() {
		fmt.Fprintln(d.out, url)
		return nil
	}

	body, err := d.fetch(ctx, url)
	if err != nil {
		return err
	}
	defer body.Close()

	if err := renderInline(d.out, body); err != nil {
		return fmt.Errorf("failed to render image: %w", err)
	}

	fmt.Fprintln(d.out)
	return nil
}

func (d *Displayer) fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("download failed with status: %d", resp.StatusCode)
	}

	return resp.Body, nil
}

// IsProtocolSupported reports whether the terminal advertises kitty graphics
// support.
func IsProtocolSupported() bool {
	termProgram := strings.ToLower(os.Getenv("TERM_PROGRAM"))
	supportedPrograms := []string{"kitty", "ghostty", "iterm.app", "wezterm"}

	for _, prog := range supportedPrograms {
		if termProgram == prog {
			return true
		}
	}

	if os.Getenv("KITTY_WINDOW_ID") != "" {
		return true
	}

	if os.Getenv("ITERM_SESSION_ID") != "" {
		return true
	}

	termEnv := strings.ToLower(os.Getenv("TERM"))
	return strings.Contains(termEnv, "kitty") || strings.Contains(termEnv, "ghostty")
}
