package app

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pg-png/restaurant-content-creator/internal/generate"
	img "github.com/pg-png/restaurant-content-creator/internal/image"
)

// submit runs one full submission: normalize the attached photo if needed,
// append the user turn and a pending assistant turn, call the service, and
// resolve the pending turn with the classified outcome. Success outcomes
// additionally insert into the gallery.
func (a *App) submit(ctx context.Context, out io.Writer, prompt string) {
	if a.processing {
		// The loop blocks on Submit, so this only trips if a future caller
		// drives the app from more than one goroutine.
		fmt.Fprintln(out, "A submission is already in progress.")
		return
	}
	if a.attachedPath == "" {
		fmt.Fprintln(out, "Attach a photo first: /attach <path>")
		return
	}

	if a.normalized == "" {
		normalized, err := a.normalizeAttached()
		if err != nil {
			// Decode failures surface on the conversation like any other
			// failed turn instead of stalling the submission.
			a.logger.Warn("Normalization failed for %s: %v", a.attachedPath, err)
			a.log.AppendUser(prompt, nil)
			pending := a.log.AppendPending()
			a.log.Resolve(pending.ID, generate.Failed(fmt.Sprintf("Could not read the attached photo: %v", err)))
			fmt.Fprintf(out, "Could not read the attached photo: %v\n", err)
			return
		}
		a.normalized = normalized
	}

	a.log.AppendUser(prompt, thumbnailBytes(a.normalized))
	pending := a.log.AppendPending()
	a.processing = true

	fmt.Fprintln(out, "Generating... this can take a couple of minutes.")

	source := a.normalized
	outcome, err := a.client.Submit(ctx, a.normalized, prompt, func() {
		a.processing = false
	})
	if err != nil {
		if errors.Is(err, generate.ErrSubmissionInFlight) {
			a.log.Resolve(pending.ID, generate.Failed("Another submission is still in flight. Wait for it to finish."))
			fmt.Fprintln(out, "Another submission is still in flight. Wait for it to finish.")
			return
		}
		// Submit only ever returns ErrSubmissionInFlight today; anything
		// else still resolves the turn so it cannot stay pending forever.
		a.log.Resolve(pending.ID, generate.Failed(err.Error()))
		fmt.Fprintln(out, err.Error())
		return
	}

	a.log.Resolve(pending.ID, outcome)
	fmt.Fprintln(out, renderOutcome(outcome))

	if outcome.Kind == generate.OutcomeSuccess {
		if _, err := a.gallery.Insert(outcome.ImageURL, prompt, source); err != nil {
			a.logger.Error("Failed to save gallery item: %v", err)
			fmt.Fprintf(out, "Warning: the result could not be saved to the gallery: %v\n", err)
		}
	}
}

// normalizeAttached opens the attached photo and normalizes it for
// transmission.
func (a *App) normalizeAttached() (string, error) {
	f, err := os.Open(a.attachedPath)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return img.Normalize(f)
}

// thumbnailBytes extracts the raw JPEG bytes from a normalized data URI for
// storage on the user turn. Returns nil if the payload is not decodable,
// which only loses the transcript thumbnail, nothing else.
func thumbnailBytes(dataURI string) []byte {
	i := strings.Index(dataURI, ",")
	if i < 0 {
		return nil
	}
	data, err := base64.StdEncoding.DecodeString(dataURI[i+1:])
	if err != nil {
		return nil
	}
	return data
}

// renderOutcome maps an outcome to the human-readable text shown on the
// resolved conversation turn.
func renderOutcome(o generate.Outcome) string {
	switch o.Kind {
	case generate.OutcomeSuccess:
		return fmt.Sprintf("Done! Generated image: %s (saved to your gallery)", o.ImageURL)
	case generate.OutcomeProcessing:
		return fmt.Sprintf("The service is still working (status: %s). Give it a moment and submit again.", o.StatusLabel)
	case generate.OutcomeFailed:
		return fmt.Sprintf("Generation failed: %s", o.ReasonText)
	case generate.OutcomeTransport:
		if o.TimedOut {
			return fmt.Sprintf("%s. The service may be overloaded; try again.", o.ReasonText)
		}
		return fmt.Sprintf("%s. Check your connection and try again.", o.ReasonText)
	default:
		return "Something unexpected happened. Try again."
	}
}
