package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/avaldez/aideck/internal/api"
	"github.com/avaldez/aideck/internal/chat"
	"github.com/avaldez/aideck/internal/config"
	"github.com/avaldez/aideck/internal/display"
	"github.com/avaldez/aideck/internal/history"
	"github.com/avaldez/aideck/internal/imagegen"
	"github.com/avaldez/aideck/internal/repl"
	"github.com/avaldez/aideck/internal/session"
	"github.com/avaldez/aideck/internal/store"
)

var (
	version = "dev"
	commit  = "none"
)

var (
	flagBaseURL  string
	flagModel    string
	flagStyle    int
	flagSize     string
	flagPage     int
	flagAll      bool
	flagArchived bool
	flagVerbose  bool
	flagShow     bool
)

type App struct {
	Out        io.Writer
	Err        io.Writer
	GetEnv     func(string) string
	LoadConfig func() (*config.Config, error)
	NewClient  func(cfg *api.Config) (*api.Client, error)
	NewStore   func() (*store.Store, error)
}

func DefaultApp() *App {
	return &App{
		Out:        os.Stdout,
		Err:        os.Stderr,
		GetEnv:     os.Getenv,
		LoadConfig: config.Load,
		NewClient:  api.New,
		NewStore:   store.New,
	}
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	app := DefaultApp()
	rootCmd := newRootCmd(app)
	return rootCmd.Execute()
}

func newRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aideck",
		Short: "Chat and generate images against an AI backend",
		Long: `aideck is a terminal client for an AI chat and image generation backend.

Run it without arguments for the interactive mode, or use the one-shot
subcommands for scripting.

Examples:
  aideck
  aideck ask "explain goroutines in one paragraph"
  aideck image --style 9 --size 16:9 "a lighthouse in a storm"
  aideck history --archived`,
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL(cmd, app)
		},
	}

	cmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "backend base URL (defaults to config or AIDECK_BASE_URL)")
	cmd.PersistentFlags().StringVarP(&flagModel, "model", "m", "", "chat model (gemini-2.5-pro, gemini-2.5-flash)")
	cmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log HTTP requests and responses")

	cmd.AddCommand(newAskCmd(app))
	cmd.AddCommand(newImageCmd(app))
	cmd.AddCommand(newHistoryCmd(app))
	cmd.AddCommand(newGalleryCmd(app))
	cmd.AddCommand(newREPLCmd(app))

	return cmd
}

func newREPLCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start the interactive mode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL(cmd, app)
		},
	}
}

func newAskCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "ask [prompt]",
		Short: "Send a single prompt and print the reply",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd, args, app)
		},
	}
}

func newImageCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "image [prompt]",
		Short: "Generate a single image and print its URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImage(cmd, args, app)
		},
	}
	cmd.Flags().IntVar(&flagStyle, "style", imagegen.StyleNone, "style id (see 'style' in interactive mode)")
	cmd.Flags().StringVar(&flagSize, "size", "1:1", "aspect ratio (1:1, 16:9, 9:16, 4:3, 3:4)")
	cmd.Flags().BoolVar(&flagShow, "show", false, "render the image inline when the terminal supports it")
	return cmd
}

func newHistoryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List conversations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, app)
		},
	}
	cmd.Flags().BoolVar(&flagArchived, "archived", false, "list archived conversations instead of active ones")
	cmd.Flags().BoolVar(&flagAll, "all", false, "list every conversation, active and archived")
	cmd.Flags().IntVar(&flagPage, "size", 0, "page size (defaults to config)")
	return cmd
}

func newGalleryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gallery",
		Short: "List generated images",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGallery(cmd, app)
		},
	}
	cmd.Flags().BoolVar(&flagArchived, "archived", false, "list archived images instead of active ones")
	cmd.Flags().BoolVar(&flagAll, "all", false, "list every image, active and archived")
	return cmd
}

// buildDeps loads the config, applies flag overrides and constructs the
// API client plus both services.
func buildDeps(app *App) (*config.Config, *chat.Service, *imagegen.Service, error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	if flagBaseURL != "" {
		cfg.BaseURL = flagBaseURL
	}
	if flagModel != "" {
		cfg.Model = flagModel
	}
	if flagVerbose {
		cfg.Verbose = true
	}
	if err := cfg.RequireBaseURL(); err != nil {
		return nil, nil, nil, err
	}

	client, err := app.NewClient(&api.Config{
		BaseURL:    cfg.BaseURL,
		TimeoutSec: cfg.TimeoutSec,
		Verbose:    cfg.Verbose,
	})
	if err != nil {
		return nil, nil, nil, err
	}

	return cfg, chat.NewService(client), imagegen.NewService(client), nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func runAsk(_ *cobra.Command, args []string, app *App) error {
	ctx, cancel := signalContext()
	defer cancel()

	prompt := strings.TrimSpace(args[0])
	if prompt == "" {
		return session.ErrEmptyInput
	}

	cfg, chatSvc, _, err := buildDeps(app)
	if err != nil {
		return err
	}

	resp, err := chatSvc.Generate(ctx, &chat.GenerateRequest{
		Prompt: prompt,
		Model:  cfg.Model,
	})
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	fmt.Fprintln(app.Out, resp.Response)
	return nil
}

func runImage(_ *cobra.Command, args []string, app *App) error {
	ctx, cancel := signalContext()
	defer cancel()

	prompt := strings.TrimSpace(args[0])
	if prompt == "" {
		return session.ErrEmptyInput
	}

	_, _, imageSvc, err := buildDeps(app)
	if err != nil {
		return err
	}

	styles := imagegen.DefaultStyleRegistry()
	req := &imagegen.GenerateRequest{
		Prompt:  prompt,
		StyleID: flagStyle,
		Size:    flagSize,
	}
	if err := styles.Validate(req); err != nil {
		return err
	}

	style, _ := styles.Get(flagStyle)
	fmt.Fprintf(app.Out, "Generating with style %s, size %s...\n", style.Label, flagSize)

	resp, err := imageSvc.Generate(ctx, req)
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}
	if !resp.Succeeded() {
		return fmt.Errorf("%w: %s", imagegen.ErrGenerationFailed, resp.RawResponse)
	}

	fmt.Fprintf(app.Out, "Image ready: %s\n", resp.ImageURL)

	if flagShow {
		return display.New(app.Out).Show(ctx, resp.ImageURL)
	}
	return nil
}

func runHistory(_ *cobra.Command, app *App) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, chatSvc, _, err := buildDeps(app)
	if err != nil {
		return err
	}

	pageSize := flagPage
	if pageSize <= 0 {
		pageSize = cfg.HistoryPageSize
	}

	loader := history.NewChatLoader(chatSvc, pageSize)
	var summaries []history.ConversationSummary
	switch {
	case flagAll:
		messages, err := chatSvc.AllHistory(ctx, &chat.HistoryParams{Size: pageSize})
		if err != nil {
			return err
		}
		summaries = history.Conversations(messages)
	case flagArchived:
		if err := loader.LoadArchived(ctx); err != nil {
			return err
		}
		summaries = loader.Archived()
	default:
		if err := loader.LoadActive(ctx); err != nil {
			return err
		}
		summaries = loader.Active()
	}

	if len(summaries) == 0 {
		fmt.Fprintln(app.Out, "No conversations.")
		return nil
	}
	for _, s := range summaries {
		fmt.Fprintf(app.Out, "%s  %s\n", s.ConversationID, s.Title)
		fmt.Fprintf(app.Out, "    %s  (%d messages, %s)\n", s.Preview, s.MessageCount, humanize.Time(s.LastTimestamp))
	}
	return nil
}

func runGallery(_ *cobra.Command, app *App) error {
	ctx, cancel := signalContext()
	defer cancel()

	_, _, imageSvc, err := buildDeps(app)
	if err != nil {
		return err
	}

	loader := history.NewImageLoader(imageSvc)
	var summaries []history.ImageSummary
	switch {
	case flagAll:
		images, err := imageSvc.AllHistory(ctx)
		if err != nil {
			return err
		}
		summaries = history.Images(images)
	case flagArchived:
		if err := loader.LoadArchived(ctx); err != nil {
			return err
		}
		summaries = loader.Archived()
	default:
		if err := loader.LoadActive(ctx); err != nil {
			return err
		}
		summaries = loader.Active()
	}

	if len(summaries) == 0 {
		fmt.Fprintln(app.Out, "No images.")
		return nil
	}
	for _, s := range summaries {
		fmt.Fprintf(app.Out, "%d  %s\n", s.ID, s.Prompt)
		fmt.Fprintf(app.Out, "    %s  (%s, %s)\n", s.ImageURL, s.Size, humanize.Time(s.CreatedAt))
	}
	return nil
}

func runREPL(_ *cobra.Command, app *App) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, chatSvc, imageSvc, err := buildDeps(app)
	if err != nil {
		return err
	}

	// The local save archive is optional; the REPL degrades gracefully
	// when sqlite cannot open its database file.
	st, err := app.NewStore()
	if err != nil {
		fmt.Fprintf(app.Err, "Warning: local archive unavailable: %v\n", err)
		st = nil
	} else {
		defer st.Close()
	}

	r := repl.New(&repl.Config{
		In:       os.Stdin,
		Out:      app.Out,
		Err:      app.Err,
		ChatSvc:  chatSvc,
		ImageSvc: imageSvc,
		Store:    st,
		Display:  display.New(app.Out),
		Model:    cfg.Model,
		PageSize: cfg.HistoryPageSize,
	})
	return r.Run(ctx)
}
