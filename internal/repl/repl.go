// Package repl implements the interactive view over the chat and gallery
// sessions. It renders state and forwards user actions; all domain logic
// lives in the session and history packages.
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/avaldez/aideck/internal/display"
	"github.com/avaldez/aideck/internal/history"
	"github.com/avaldez/aideck/internal/imagegen"
	"github.com/avaldez/aideck/internal/session"
	"github.com/avaldez/aideck/internal/store"
)

// Screen selects which timeline the list commands operate on.
type Screen string

const (
	ScreenChat  Screen = "chat"
	ScreenImage Screen = "image"
)

// ChatService is the full chat surface the REPL drives.
type ChatService interface {
	session.ChatBackend
	history.ChatHistory
	Deactivate(ctx context.Context, conversationID string) error
	Reactivate(ctx context.Context, conversationID string) error
}

// ImageService is the full image surface the REPL drives. Image ids are
// numeric on the backend; the selection workflow still tracks them as the
// strings the user typed.
type ImageService interface {
	session.ImageBackend
	history.ImageHistory
	Deactivate(ctx context.Context, id int64) error
	Reactivate(ctx context.Context, id int64) error
}

type Config struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer

	ChatSvc  ChatService
	ImageSvc ImageService
	Styles   *imagegen.StyleRegistry
	Store    *store.Store
	Display  *display.Displayer

	Model    string
	PageSize int
}

type REPL struct {
	in  io.Reader
	out io.Writer
	err io.Writer

	chatSvc  ChatService
	imageSvc ImageService
	styles   *imagegen.StyleRegistry
	store    *store.Store
	display  *display.Displayer

	chatSession *session.ChatSession
	gallery     *session.GallerySession
	chatLoader  *history.ChatLoader
	imageLoader *history.ImageLoader

	// One selection workflow per screen; entering select mode on one list
	// does not touch the other.
	chatSelection  *session.Selection
	imageSelection *session.Selection

	screen  Screen
	styleID int
	size    string

	commands map[string]Command
	running  bool
}

func New(cfg *Config) *REPL {
	styles := cfg.Styles
	if styles == nil {
		styles = imagegen.DefaultStyleRegistry()
	}

	r := &REPL{
		in:             cfg.In,
		out:            cfg.Out,
		err:            cfg.Err,
		chatSvc:        cfg.ChatSvc,
		imageSvc:       cfg.ImageSvc,
		styles:         styles,
		store:          cfg.Store,
		display:        cfg.Display,
		chatSession:    session.NewChatSession(cfg.ChatSvc, cfg.Model),
		gallery:        session.NewGallerySession(cfg.ImageSvc, styles),
		chatLoader:     history.NewChatLoader(cfg.ChatSvc, cfg.PageSize),
		imageLoader:    history.NewImageLoader(cfg.ImageSvc),
		chatSelection:  session.NewSelection(),
		imageSelection: session.NewSelection(),
		screen:         ScreenChat,
		styleID:        imagegen.StyleNone,
		size:           "1:1",
		commands:       make(map[string]Command),
	}
	r.registerCommands()
	return r
}

func (r *REPL) Run(ctx context.Context) error {
	r.running = true
	r.printWelcome()

	scanner := bufio.NewScanner(r.in)
	for r.running {
		r.printPrompt()
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if err := r.execute(ctx, line); err != nil {
			fmt.Fprintf(r.err, "Error: %v\n", err)
		}
	}

	return scanner.Err()
}

func (r *REPL) execute(ctx context.Context, line string) error {
	parts := parseCommand(line)
	if len(parts) == 0 {
		return nil
	}

	cmdName := strings.ToLower(parts[0])
	args := parts[1:]

	cmd, ok := r.commands[cmdName]
	if !ok {
		return fmt.Errorf("unknown command: %s (type 'help' for available commands)", cmdName)
	}

	return cmd.Execute(ctx, r, args)
}

func (r *REPL) Stop() {
	r.running = false
}

func (r *REPL) selection() *session.Selection {
	if r.screen == ScreenImage {
		return r.imageSelection
	}
	return r.chatSelection
}

func (r *REPL) printWelcome() {
	fmt.Fprintln(r.out, "aideck interactive mode")
	fmt.Fprintln(r.out, "Type 'help' for available commands, 'quit' to exit.")
	fmt.Fprintln(r.out)
}

func (r *REPL) printPrompt() {
	mode := ""
	if r.selection().Active() {
		mode = " [select]"
	}
	switch r.screen {
	case ScreenImage:
		style, _ := r.styles.Get(r.styleID)
		fmt.Fprintf(r.out, "aideck image [%s %s]%s> ", style.Label, r.size, mode)
	default:
		if id := r.chatSession.ConversationID(); id != "" {
			fmt.Fprintf(r.out, "aideck chat [%s] (%s)%s> ", r.chatSession.Model(), shortID(id), mode)
		} else {
			fmt.Fprintf(r.out, "aideck chat [%s]%s> ", r.chatSession.Model(), mode)
		}
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func parseCommand(line string) []string {
	var parts []string
	var current strings.Builder
	inQuotes := false
	quoteChar := rune(0)

	for _, ch := range line {
		switch {
		case ch == '"' || ch == '\'':
			if inQuotes && ch == quoteChar {
				inQuotes = false
				quoteChar = 0
			} else if !inQuotes {
				inQuotes = true
				quoteChar = ch
			} else {
				current.WriteRune(ch)
			}
		case ch == ' ' && !inQuotes:
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(ch)
		}
	}

	if current.Len() > 0 {
		parts = append(parts, current.String())
	}

	return parts
}
