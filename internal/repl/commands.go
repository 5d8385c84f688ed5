package repl

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/avaldez/aideck/internal/history"
	"github.com/avaldez/aideck/internal/imagegen"
	"github.com/avaldez/aideck/internal/session"
	"github.com/avaldez/aideck/internal/store"
)

type Command interface {
	Name() string
	Aliases() []string
	Description() string
	Usage() string
	Execute(ctx context.Context, r *REPL, args []string) error
}

func (r *REPL) registerCommands() {
	commands := []Command{
		&AskCommand{},
		&ImageCommand{},
		&NewCommand{},
		&LoadCommand{},
		&HistoryCommand{},
		&ArchivedCommand{},
		&GalleryCommand{},
		&ScreenCommand{},
		&SelectCommand{},
		&ToggleCommand{},
		&ArchiveCommand{},
		&RestoreCommand{},
		&ShowCommand{},
		&SaveCommand{},
		&SavedCommand{},
		&StyleCommand{},
		&SizeCommand{},
		&ModelCommand{},
		&HelpCommand{},
		&QuitCommand{},
	}

	for _, cmd := range commands {
		r.commands[cmd.Name()] = cmd
		for _, alias := range cmd.Aliases() {
			r.commands[alias] = cmd
		}
	}
}

// AskCommand sends a prompt in the active conversation
type AskCommand struct{}

func (c *AskCommand) Name() string        { return "ask" }
func (c *AskCommand) Aliases() []string   { return []string{"a"} }
func (c *AskCommand) Description() string { return "Send a prompt in the current conversation" }
func (c *AskCommand) Usage() string       { return "ask <prompt>" }

func (c *AskCommand) Execute(ctx context.Context, r *REPL, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: %s", c.Usage())
	}

	prompt := strings.Join(args, " ")
	if err := r.chatSession.AppendExchange(ctx, prompt); err != nil {
		return err
	}

	timeline := r.chatSession.Timeline()
	last := timeline[len(timeline)-1]
	fmt.Fprintf(r.out, "\n%s\n\n", last.Text)
	return nil
}

// ImageCommand generates an image with the current style and size
type ImageCommand struct{}

func (c *ImageCommand) Name() string        { return "image" }
func (c *ImageCommand) Aliases() []string   { return []string{"img", "i"} }
func (c *ImageCommand) Description() string { return "Generate an image from a prompt" }
func (c *ImageCommand) Usage() string       { return "image <prompt>" }

func (c *ImageCommand) Execute(ctx context.Context, r *REPL, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: %s", c.Usage())
	}

	prompt := strings.Join(args, " ")
	style, _ := r.styles.Get(r.styleID)
	fmt.Fprintf(r.out, "Generating with style %s, size %s...\n", style.Label, r.size)

	item, err := r.gallery.AppendGeneration(ctx, prompt, r.styleID, r.size)
	if err != nil {
		return err
	}

	fmt.Fprintf(r.out, "Image ready: %s\n", item.URL)
	return nil
}

// NewCommand discards the current timeline
type NewCommand struct{}

func (c *NewCommand) Name() string        { return "new" }
func (c *NewCommand) Aliases() []string   { return []string{"n"} }
func (c *NewCommand) Description() string { return "Start a new chat or gallery" }
func (c *NewCommand) Usage() string       { return "new" }

func (c *NewCommand) Execute(ctx context.Context, r *REPL, args []string) error {
	if r.screen == ScreenImage {
		r.gallery.StartNew()
		fmt.Fprintln(r.out, "Gallery cleared.")
		return nil
	}
	r.chatSession.StartNew()
	fmt.Fprintln(r.out, "Started a new conversation.")
	return nil
}

// LoadCommand opens a conversation, or rebuilds the gallery on the image screen
type LoadCommand struct{}

func (c *LoadCommand) Name() string        { return "load" }
func (c *LoadCommand) Aliases() []string   { return []string{"l"} }
func (c *LoadCommand) Description() string { return "Load a conversation by id, or reload the gallery" }
func (c *LoadCommand) Usage() string       { return "load [conversation-id]" }

func (c *LoadCommand) Execute(ctx context.Context, r *REPL, args []string) error {
	if r.screen == ScreenImage {
		if err := r.gallery.Load(ctx); err != nil {
			return err
		}
		fmt.Fprintf(r.out, "Gallery loaded: %d image(s).\n", len(r.gallery.Items()))
		return nil
	}

	if len(args) != 1 {
		return fmt.Errorf("usage: %s", c.Usage())
	}
	if r.selection().Active() {
		// In select mode clicking an item does not load it.
		return fmt.Errorf("leave select mode first (type 'select')")
	}

	if err := r.chatSession.Load(ctx, args[0]); err != nil {
		return err
	}

	for _, entry := range r.chatSession.Timeline() {
		prefix := "you"
		if entry.Role == session.RoleAssistant {
			prefix = " ai"
		}
		fmt.Fprintf(r.out, "%s| %s\n", prefix, entry.Text)
	}
	return nil
}

// HistoryCommand lists active conversations or images
type HistoryCommand struct{}

func (c *HistoryCommand) Name() string        { return "history" }
func (c *HistoryCommand) Aliases() []string   { return []string{"h"} }
func (c *HistoryCommand) Description() string { return "List active conversations or images" }
func (c *HistoryCommand) Usage() string       { return "history" }

func (c *HistoryCommand) Execute(ctx context.Context, r *REPL, args []string) error {
	if r.screen == ScreenImage {
		if err := r.imageLoader.LoadActive(ctx); err != nil {
			return err
		}
		return printImageSummaries(r, r.imageLoader.Active())
	}

	if err := r.chatLoader.LoadActive(ctx); err != nil {
		return err
	}
	return printConversationSummaries(r, r.chatLoader.Active())
}

// ArchivedCommand lists archived conversations or images
type ArchivedCommand struct{}

func (c *ArchivedCommand) Name() string        { return "archived" }
func (c *ArchivedCommand) Aliases() []string   { return nil }
func (c *ArchivedCommand) Description() string { return "List archived conversations or images" }
func (c *ArchivedCommand) Usage() string       { return "archived" }

func (c *ArchivedCommand) Execute(ctx context.Context, r *REPL, args []string) error {
	if r.screen == ScreenImage {
		if err := r.imageLoader.LoadArchived(ctx); err != nil {
			return err
		}
		return printImageSummaries(r, r.imageLoader.Archived())
	}

	if err := r.chatLoader.LoadArchived(ctx); err != nil {
		return err
	}
	return printConversationSummaries(r, r.chatLoader.Archived())
}

// GalleryCommand lists the in-memory gallery of this session
type GalleryCommand struct{}

func (c *GalleryCommand) Name() string        { return "gallery" }
func (c *GalleryCommand) Aliases() []string   { return []string{"g"} }
func (c *GalleryCommand) Description() string { return "List images in the current gallery" }
func (c *GalleryCommand) Usage() string       { return "gallery" }

func (c *GalleryCommand) Execute(ctx context.Context, r *REPL, args []string) error {
	items := r.gallery.Items()
	if len(items) == 0 {
		fmt.Fprintln(r.out, "Gallery is empty. Use 'image <prompt>' or 'load' on the image screen.")
		return nil
	}
	for i, item := range items {
		fmt.Fprintf(r.out, "%2d. %s  (%s, %s)  %s\n", i+1, item.Prompt, item.Style, item.Size, humanize.Time(item.Time))
	}
	return nil
}

// ScreenCommand switches between the chat and image screens
type ScreenCommand struct{}

func (c *ScreenCommand) Name() string        { return "screen" }
func (c *ScreenCommand) Aliases() []string   { return []string{"s"} }
func (c *ScreenCommand) Description() string { return "Switch between chat and image screens" }
func (c *ScreenCommand) Usage() string       { return "screen [chat|image]" }

func (c *ScreenCommand) Execute(ctx context.Context, r *REPL, args []string) error {
	if len(args) == 0 {
		if r.screen == ScreenChat {
			r.screen = ScreenImage
		} else {
			r.screen = ScreenChat
		}
	} else {
		switch Screen(args[0]) {
		case ScreenChat:
			r.screen = ScreenChat
		case ScreenImage:
			r.screen = ScreenImage
		default:
			return fmt.Errorf("usage: %s", c.Usage())
		}
	}
	fmt.Fprintf(r.out, "Switched to %s screen.\n", r.screen)
	return nil
}

// SelectCommand toggles selection mode on the current screen's list
type SelectCommand struct{}

func (c *SelectCommand) Name() string        { return "select" }
func (c *SelectCommand) Aliases() []string   { return nil }
func (c *SelectCommand) Description() string { return "Toggle selection mode for archive/restore" }
func (c *SelectCommand) Usage() string       { return "select" }

func (c *SelectCommand) Execute(ctx context.Context, r *REPL, args []string) error {
	sel := r.selection()
	sel.ToggleMode()
	if sel.Active() {
		fmt.Fprintln(r.out, "Selection mode on. Use 'toggle <id>' then 'archive' or 'restore'.")
	} else {
		fmt.Fprintln(r.out, "Selection mode off.")
	}
	return nil
}

// ToggleCommand adds or removes an id from the selection
type ToggleCommand struct{}

func (c *ToggleCommand) Name() string        { return "toggle" }
func (c *ToggleCommand) Aliases() []string   { return []string{"t"} }
func (c *ToggleCommand) Description() string { return "Toggle an id in the selection" }
func (c *ToggleCommand) Usage() string       { return "toggle <id>" }

func (c *ToggleCommand) Execute(ctx context.Context, r *REPL, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: %s", c.Usage())
	}
	sel := r.selection()
	if !sel.Active() {
		return fmt.Errorf("not in selection mode (type 'select')")
	}
	sel.Toggle(args[0])
	fmt.Fprintf(r.out, "%d selected.\n", sel.Count())
	return nil
}

// ArchiveCommand archives every selected item
type ArchiveCommand struct{}

func (c *ArchiveCommand) Name() string        { return "archive" }
func (c *ArchiveCommand) Aliases() []string   { return nil }
func (c *ArchiveCommand) Description() string { return "Archive all selected items" }
func (c *ArchiveCommand) Usage() string       { return "archive" }

func (c *ArchiveCommand) Execute(ctx context.Context, r *REPL, args []string) error {
	return r.commitSelection(ctx, true)
}

// RestoreCommand restores every selected item
type RestoreCommand struct{}

func (c *RestoreCommand) Name() string        { return "restore" }
func (c *RestoreCommand) Aliases() []string   { return nil }
func (c *RestoreCommand) Description() string { return "Restore all selected items" }
func (c *RestoreCommand) Usage() string       { return "restore" }

func (c *RestoreCommand) Execute(ctx context.Context, r *REPL, args []string) error {
	return r.commitSelection(ctx, false)
}

func (r *REPL) commitSelection(ctx context.Context, archive bool) error {
	sel := r.selection()
	if !sel.Active() {
		return fmt.Errorf("not in selection mode (type 'select')")
	}
	count := sel.Count()
	if count == 0 {
		fmt.Fprintln(r.out, "Nothing selected.")
		return nil
	}

	var toggle func(ctx context.Context, id string) error
	var reload func(ctx context.Context) error
	if r.screen == ScreenImage {
		imgToggle := r.imageSvc.Deactivate
		if !archive {
			imgToggle = r.imageSvc.Reactivate
		}
		toggle = func(ctx context.Context, id string) error {
			n, err := strconv.ParseInt(id, 10, 64)
			if err != nil {
				return fmt.Errorf("image ids are numeric, got %q", id)
			}
			return imgToggle(ctx, n)
		}
		reload = r.imageLoader.Reload
	} else {
		toggle = r.chatSvc.Deactivate
		if !archive {
			toggle = r.chatSvc.Reactivate
		}
		reload = r.chatLoader.Reload
	}

	if err := sel.Commit(ctx, toggle, reload); err != nil {
		return err
	}

	verb := "Archived"
	if !archive {
		verb = "Restored"
	}
	fmt.Fprintf(r.out, "%s %d item(s).\n", verb, count)
	return nil
}

// ShowCommand renders a gallery image inline
type ShowCommand struct{}

func (c *ShowCommand) Name() string        { return "show" }
func (c *ShowCommand) Aliases() []string   { return nil }
func (c *ShowCommand) Description() string { return "Display a gallery image in the terminal" }
func (c *ShowCommand) Usage() string       { return "show [index]" }

func (c *ShowCommand) Execute(ctx context.Context, r *REPL, args []string) error {
	item, err := r.galleryItem(args)
	if err != nil {
		return err
	}
	return r.display.Show(ctx, item.URL)
}

// SaveCommand archives a gallery image locally
type SaveCommand struct{}

func (c *SaveCommand) Name() string        { return "save" }
func (c *SaveCommand) Aliases() []string   { return nil }
func (c *SaveCommand) Description() string { return "Save a gallery image to the local archive" }
func (c *SaveCommand) Usage() string       { return "save [index]" }

func (c *SaveCommand) Execute(ctx context.Context, r *REPL, args []string) error {
	if r.store == nil {
		return fmt.Errorf("local archive is not available")
	}
	item, err := r.galleryItem(args)
	if err != nil {
		return err
	}

	saved := &store.SavedImage{
		ID:       uuid.New().String(),
		RemoteID: item.RemoteID,
		Prompt:   item.Prompt,
		Style:    item.Style,
		Size:     item.Size,
		ImageURL: item.URL,
		SavedAt:  time.Now(),
	}
	if err := r.store.Save(ctx, saved); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	fmt.Fprintf(r.out, "Saved: %s\n", item.URL)
	return nil
}

// SavedCommand lists locally archived images
type SavedCommand struct{}

func (c *SavedCommand) Name() string        { return "saved" }
func (c *SavedCommand) Aliases() []string   { return nil }
func (c *SavedCommand) Description() string { return "List locally saved images" }
func (c *SavedCommand) Usage() string       { return "saved" }

func (c *SavedCommand) Execute(ctx context.Context, r *REPL, args []string) error {
	if r.store == nil {
		return fmt.Errorf("local archive is not available")
	}
	images, err := r.store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list saved images: %w", err)
	}
	if len(images) == 0 {
		fmt.Fprintln(r.out, "No saved images.")
		return nil
	}
	for i, img := range images {
		fmt.Fprintf(r.out, "%2d. %s  %s  %s\n", i+1, img.Prompt, img.ImageURL, humanize.Time(img.SavedAt))
	}
	return nil
}

// StyleCommand lists styles or sets the current one
type StyleCommand struct{}

func (c *StyleCommand) Name() string        { return "style" }
func (c *StyleCommand) Aliases() []string   { return nil }
func (c *StyleCommand) Description() string { return "List image styles or set the current one" }
func (c *StyleCommand) Usage() string       { return "style [id]" }

func (c *StyleCommand) Execute(ctx context.Context, r *REPL, args []string) error {
	if len(args) == 0 {
		for _, s := range r.styles.List() {
			marker := "  "
			if s.ID == r.styleID {
				marker = "* "
			}
			fmt.Fprintf(r.out, "%s%3d  %-26s %s\n", marker, s.ID, s.Label, s.Category)
		}
		return nil
	}

	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("usage: %s", c.Usage())
	}
	style, ok := r.styles.Get(id)
	if !ok {
		return fmt.Errorf("unknown style id %d", id)
	}
	r.styleID = id
	fmt.Fprintf(r.out, "Style set to %s.\n", style.Label)
	return nil
}

// SizeCommand sets the aspect ratio for generation
type SizeCommand struct{}

func (c *SizeCommand) Name() string        { return "size" }
func (c *SizeCommand) Aliases() []string   { return nil }
func (c *SizeCommand) Description() string { return "Set the image aspect ratio" }
func (c *SizeCommand) Usage() string       { return "size <1:1|16:9|9:16|4:3|3:4>" }

func (c *SizeCommand) Execute(ctx context.Context, r *REPL, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: %s", c.Usage())
	}
	if !imagegen.ValidSize(args[0]) {
		return fmt.Errorf("usage: %s", c.Usage())
	}
	r.size = args[0]
	fmt.Fprintf(r.out, "Size set to %s.\n", r.size)
	return nil
}

// ModelCommand shows or sets the chat model
type ModelCommand struct{}

func (c *ModelCommand) Name() string        { return "model" }
func (c *ModelCommand) Aliases() []string   { return []string{"m"} }
func (c *ModelCommand) Description() string { return "Show or set the chat model" }
func (c *ModelCommand) Usage() string       { return "model [name]" }

func (c *ModelCommand) Execute(ctx context.Context, r *REPL, args []string) error {
	if len(args) == 0 {
		fmt.Fprintf(r.out, "Current model: %s\n", r.chatSession.Model())
		return nil
	}
	r.chatSession.SetModel(args[0])
	fmt.Fprintf(r.out, "Model set to %s.\n", args[0])
	return nil
}

// HelpCommand lists all commands
type HelpCommand struct{}

func (c *HelpCommand) Name() string        { return "help" }
func (c *HelpCommand) Aliases() []string   { return []string{"?"} }
func (c *HelpCommand) Description() string { return "Show available commands" }
func (c *HelpCommand) Usage() string       { return "help" }

func (c *HelpCommand) Execute(ctx context.Context, r *REPL, args []string) error {
	seen := make(map[string]bool)
	fmt.Fprintln(r.out, "Commands:")
	for _, cmd := range r.commands {
		if seen[cmd.Name()] {
			continue
		}
		seen[cmd.Name()] = true
		fmt.Fprintf(r.out, "  %-28s %s\n", cmd.Usage(), cmd.Description())
	}
	return nil
}

// QuitCommand exits the REPL
type QuitCommand struct{}

func (c *QuitCommand) Name() string        { return "quit" }
func (c *QuitCommand) Aliases() []string   { return []string{"exit", "q"} }
func (c *QuitCommand) Description() string { return "Exit aideck" }
func (c *QuitCommand) Usage() string       { return "quit" }

func (c *QuitCommand) Execute(ctx context.Context, r *REPL, args []string) error {
	r.Stop()
	fmt.Fprintln(r.out, "Bye!")
	return nil
}

func (r *REPL) galleryItem(args []string) (*session.GalleryItem, error) {
	items := r.gallery.Items()
	if len(items) == 0 {
		return nil, fmt.Errorf("gallery is empty")
	}

	index := 1
	if len(args) > 0 {
		i, err := strconv.Atoi(args[0])
		if err != nil || i < 1 || i > len(items) {
			return nil, fmt.Errorf("index must be between 1 and %d", len(items))
		}
		index = i
	}
	return &items[index-1], nil
}

func printConversationSummaries(r *REPL, summaries []history.ConversationSummary) error {
	if len(summaries) == 0 {
		fmt.Fprintln(r.out, "No conversations.")
		return nil
	}
	for _, s := range summaries {
		fmt.Fprintf(r.out, "%s  %s\n", s.ConversationID, s.Title)
		fmt.Fprintf(r.out, "    %s  (%d messages, %s)\n", s.Preview, s.MessageCount, humanize.Time(s.LastTimestamp))
	}
	return nil
}

func printImageSummaries(r *REPL, summaries []history.ImageSummary) error {
	if len(summaries) == 0 {
		fmt.Fprintln(r.out, "No images.")
		return nil
	}
	for _, s := range summaries {
		fmt.Fprintf(r.out, "%d  %s\n", s.ID, s.Prompt)
		fmt.Fprintf(r.out, "    %s  (%s, %s)\n", s.ImageURL, s.Size, humanize.Time(s.CreatedAt))
	}
	return nil
}
