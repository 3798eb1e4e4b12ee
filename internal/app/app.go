// Package app drives the interactive session.
//
// It wires the pipeline together: an attached photo is normalized on first
// use, submitted to the generation service along with the user's prompt,
// and the classified outcome resolves a pending conversation turn.
// Successful generations are inserted into the gallery, which persists
// itself.
//
// Everything here runs on a single goroutine; at most one submission is in
// flight at a time because the loop blocks on Submit.
package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pg-png/restaurant-content-creator/internal/config"
	"github.com/pg-png/restaurant-content-creator/internal/conversation"
	"github.com/pg-png/restaurant-content-creator/internal/gallery"
	"github.com/pg-png/restaurant-content-creator/internal/generate"
	"github.com/pg-png/restaurant-content-creator/internal/logging"
)

// App holds the interactive session state.
type App struct {
	cfg     *config.Config
	logger  *logging.Logger
	client  *generate.Client
	gallery *gallery.Store
	log     *conversation.Log

	// attachedPath is the photo the next submission will transform.
	attachedPath string
	// normalized caches the data URI for attachedPath so repeat prompts
	// against the same photo skip re-encoding. Cleared on /attach.
	normalized string
	// processing is true while a submission is outstanding. The settle
	// hook clears it exactly once per submission.
	processing bool
}

// New creates an App over already-initialized components.
func New(cfg *config.Config, logger *logging.Logger, client *generate.Client, store *gallery.Store, log *conversation.Log) *App {
	return &App{
		cfg:     cfg,
		logger:  logger,
		client:  client,
		gallery: store,
		log:     log,
	}
}

// Run reads commands from in and writes responses to out until EOF, /quit,
// or context cancellation. Any line that is not a command is treated as a
// transformation prompt for the attached photo.
func (a *App) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	fmt.Fprintf(out, "restaurant-content-creator %s — type /help for commands\n", config.Version)
	fmt.Fprintf(out, "Gallery: %d saved image(s)\n", a.gallery.Len())

	scanner := bufio.NewScanner(in)
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if quit := a.handleCommand(ctx, line, scanner, out); quit {
				return nil
			}
			continue
		}

		a.submit(ctx, out, line)
	}

	return scanner.Err()
}

// handleCommand dispatches a slash command. Returns true when the session
// should end.
func (a *App) handleCommand(ctx context.Context, line string, scanner *bufio.Scanner, out io.Writer) bool {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "/quit", "/exit":
		return true

	case "/help":
		printHelp(out)

	case "/attach":
		a.attach(out, arg)

	case "/presets":
		for i, p := range presets {
			fmt.Fprintf(out, "  %d. %s\n", i+1, p)
		}

	case "/preset":
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 || n > len(presets) {
			fmt.Fprintf(out, "Pick a preset between 1 and %d (see /presets).\n", len(presets))
			return false
		}
		a.submit(ctx, out, presets[n-1])

	case "/gallery":
		a.printGallery(out)

	case "/remove":
		if arg == "" {
			fmt.Fprintln(out, "Usage: /remove <id>")
			return false
		}
		if err := a.gallery.Remove(arg); err != nil {
			a.logger.Error("Failed to remove gallery item: %v", err)
			fmt.Fprintf(out, "Could not update the gallery: %v\n", err)
			return false
		}
		fmt.Fprintln(out, "Removed.")

	case "/clear":
		a.clearGallery(scanner, out)

	case "/history":
		a.printHistory(out)

	default:
		fmt.Fprintf(out, "Unknown command %s — type /help for commands.\n", cmd)
	}

	return false
}

// attach records the photo the next submission will use. The file is not
// decoded yet; normalization happens lazily on first submit so a bad path
// surfaces as a decode failure on the turn that used it.
func (a *App) attach(out io.Writer, path string) {
	if path == "" {
		fmt.Fprintln(out, "Usage: /attach <path-to-photo>")
		return
	}
	a.attachedPath = path
	a.normalized = ""
	fmt.Fprintf(out, "Attached %s — type a prompt (or /presets) to transform it.\n", path)
}

// clearGallery empties the gallery after an explicit confirmation.
func (a *App) clearGallery(scanner *bufio.Scanner, out io.Writer) {
	if a.gallery.Len() == 0 {
		fmt.Fprintln(out, "The gallery is already empty.")
		return
	}
	fmt.Fprintf(out, "This deletes all %d saved image(s). Type 'yes' to confirm: ", a.gallery.Len())
	if !scanner.Scan() || strings.TrimSpace(scanner.Text()) != "yes" {
		fmt.Fprintln(out, "Cancelled.")
		return
	}
	if err := a.gallery.Clear(); err != nil {
		a.logger.Error("Failed to clear gallery: %v", err)
		fmt.Fprintf(out, "Could not update the gallery: %v\n", err)
		return
	}
	fmt.Fprintln(out, "Gallery cleared.")
}

func (a *App) printGallery(out io.Writer) {
	items := a.gallery.Items()
	if len(items) == 0 {
		fmt.Fprintln(out, "The gallery is empty. Successful generations are saved here automatically.")
		return
	}
	for _, item := range items {
		fmt.Fprintf(out, "  [%s] %s\n      %s (%s)\n",
			item.ID, item.Prompt, item.ImageURL, item.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
}

func (a *App) printHistory(out io.Writer) {
	entries := a.log.Entries()
	if len(entries) == 0 {
		fmt.Fprintln(out, "No exchanges yet.")
		return
	}
	for _, e := range entries {
		switch e.Kind {
		case conversation.KindUser:
			fmt.Fprintf(out, "  you: %s\n", e.Prompt)
		case conversation.KindAssistant:
			if e.State == conversation.StatePending {
				fmt.Fprintln(out, "  assistant: (pending)")
			} else {
				fmt.Fprintf(out, "  assistant: %s\n", renderOutcome(*e.Outcome))
			}
		}
	}
}

func printHelp(out io.Writer) {
	fmt.Fprint(out, `Commands:
  /attach <path>   Attach the photo to transform
  /presets         List preset transformation prompts
  /preset <n>      Submit preset prompt n
  /gallery         List saved generations
  /remove <id>     Remove one gallery item
  /clear           Remove all gallery items (asks for confirmation)
  /history         Show the conversation transcript
  /quit            Exit

Anything else you type is sent as a transformation prompt for the
attached photo.
`)
}
