package display

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestShow_NoURL(t *testing.T) {
	d := New(&bytes.Buffer{})
	if err := d.Show(context.Background(), ""); err == nil {
		t.Error("Show() error = nil, want error for empty URL")
	}
}

func TestShow_FallsBackToURL(t *testing.T) {
	var out bytes.Buffer
	d := New(&out)
	d.isTerminal = func() bool { return false }

	if err := d.Show(context.Background(), "http://cdn/img.png"); err != nil {
		t.Fatalf("Show() error = %v", err)
	}
	if !strings.Contains(out.String(), "http://cdn/img.png") {
		t.Errorf("output = %q, want URL printed", out.String())
	}
}

func TestShow_RendersInline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte{0x89, 0x50, 0x4e, 0x47})
	}))
	defer server.Close()

	t.Setenv("TERM_PROGRAM", "kitty")

	var out bytes.Buffer
	d := New(&out)
	d.isTerminal = func() bool { return true }

	if err := d.Show(context.Background(), server.URL+"/img.png"); err != nil {
		t.Fatalf("Show() error = %v", err)
	}
	if !strings.Contains(out.String(), escapeStart) {
		t.Error("output lacks kitty escape sequence")
	}
}

func TestShow_DownloadFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	t.Setenv("TERM_PROGRAM", "kitty")

	d := New(&bytes.Buffer{})
	d.isTerminal = func() bool { return true }

	if err := d.Show(context.Background(), server.URL+"/gone.png"); err == nil {
		t.Error("Show() error = nil, want download error")
	}
}

func TestIsProtocolSupported(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want bool
	}{
		{"kitty program", map[string]string{"TERM_PROGRAM": "kitty"}, true},
		{"ghostty program", map[string]string{"TERM_PROGRAM": "ghostty"}, true},
		{"kitty window id", map[string]string{"KITTY_WINDOW_ID": "1"}, true},
		{"kitty TERM", map[string]string{"TERM": "xterm-kitty"}, true},
		{"plain xterm", map[string]string{"TERM": "xterm-256color"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{"TERM_PROGRAM", "KITTY_WINDOW_ID", "ITERM_SESSION_ID", "TERM"} {
				t.Setenv(key, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if got := IsProtocolSupported(); got != tt.want {
				t.Errorf("IsProtocolSupported() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRenderInline_SingleChunk(t *testing.T) {
	var out bytes.Buffer
	data := []byte{0x89, 0x50, 0x4e, 0x47}

	if err := renderInline(&out, bytes.NewReader(data)); err != nil {
		t.Fatalf("renderInline() error = %v", err)
	}

	s := out.String()
	if !strings.HasPrefix(s, escapeStart+"a=T,f=100,q=2;") {
		t.Errorf("output = %q, want single transmit sequence", s)
	}
	if strings.Contains(s, "m=1") {
		t.Error("single-chunk output carries a continuation marker")
	}
}

func TestRenderInline_Chunking(t *testing.T) {
	var out bytes.Buffer
	data := bytes.Repeat([]byte{0xab}, 8192)

	if err := renderInline(&out, bytes.NewReader(data)); err != nil {
		t.Fatalf("renderInline() error = %v", err)
	}

	s := out.String()
	if !strings.Contains(s, "m=1") {
		t.Error("chunked output missing continuation marker")
	}
	if !strings.Contains(s, "m=0") {
		t.Error("chunked output missing final marker")
	}

	// Each escape sequence's payload must fit the protocol limit.
	for _, seq := range strings.Split(s, escapeEnd) {
		if seq == "" {
			continue
		}
		_, payload, ok := strings.Cut(seq, ";")
		if !ok {
			t.Fatalf("sequence %q has no payload separator", seq)
		}
		if len(payload) > chunkLen {
			t.Errorf("payload length = %d, want <= %d", len(payload), chunkLen)
		}
	}
}

func TestRenderInline_Empty(t *testing.T) {
	var out bytes.Buffer
	if err := renderInline(&out, bytes.NewReader(nil)); err != nil {
		t.Fatalf("renderInline() error = %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("empty input wrote %d bytes, want 0", out.Len())
	}
}
