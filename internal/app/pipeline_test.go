package app

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pg-png/restaurant-content-creator/internal/config"
	"github.com/pg-png/restaurant-content-creator/internal/conversation"
	"github.com/pg-png/restaurant-content-creator/internal/gallery"
	"github.com/pg-png/restaurant-content-creator/internal/generate"
	"github.com/pg-png/restaurant-content-creator/internal/logging"
)

// writeTestPhoto writes a small decodable PNG and returns its path.
func writeTestPhoto(t *testing.T) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 80, 60))
	for y := 0; y < 60; y++ {
		for x := 0; x < 80; x++ {
			img.Set(x, y, color.RGBA{R: 180, G: 90, B: 30, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test photo: %v", err)
	}

	path := filepath.Join(t.TempDir(), "dish.png")
	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		t.Fatalf("failed to write test photo: %v", err)
	}
	return path
}

// newTestApp wires an App against the given endpoint with a temp gallery.
func newTestApp(t *testing.T, endpoint string, timeout time.Duration) *App {
	t.Helper()

	logger := logging.New(logging.LevelError, io.Discard)
	store := gallery.NewStore(filepath.Join(t.TempDir(), "gallery.json"), logger)
	if err := store.Load(); err != nil {
		t.Fatalf("gallery Load() error = %v", err)
	}

	return New(
		&config.Config{APIURL: endpoint, LogLevel: "error"},
		logger,
		generate.NewClient(endpoint, timeout, logger),
		store,
		conversation.NewLog(),
	)
}

func TestSubmit_SuccessFlow(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true, "imageUrl": "https://cdn.example.com/out.png"}`))
	}))
	defer server.Close()

	a := newTestApp(t, server.URL, 5*time.Second)
	a.attachedPath = writeTestPhoto(t)

	out := &bytes.Buffer{}
	a.submit(context.Background(), out, "make it fancy")

	entries := a.log.Entries()
	if len(entries) != 2 {
		t.Fatalf("log has %d entries, want user + assistant", len(entries))
	}
	if entries[0].Kind != conversation.KindUser || entries[0].Prompt != "make it fancy" {
		t.Error("first entry is not the user turn")
	}
	if len(entries[0].Thumbnail) == 0 {
		t.Error("user turn has no thumbnail")
	}

	assistant := entries[1]
	if assistant.State != conversation.StateResolved {
		t.Fatal("assistant turn did not resolve")
	}
	if assistant.Outcome.Kind != generate.OutcomeSuccess {
		t.Fatalf("outcome kind = %v, want success", assistant.Outcome.Kind)
	}

	items := a.gallery.Items()
	if len(items) != 1 {
		t.Fatalf("gallery has %d items, want 1", len(items))
	}
	if items[0].ImageURL != "https://cdn.example.com/out.png" {
		t.Errorf("gallery ImageURL = %s", items[0].ImageURL)
	}
	if items[0].Prompt != "make it fancy" {
		t.Errorf("gallery Prompt = %s", items[0].Prompt)
	}
	if items[0].SourceImageURL == nil || !strings.HasPrefix(*items[0].SourceImageURL, "data:image/jpeg;base64,") {
		t.Error("gallery item does not reference the normalized source image")
	}

	if a.processing {
		t.Error("processing flag still set after settle")
	}
}

func TestSubmit_ProcessingAndFailureDoNotTouchGallery(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantKind generate.OutcomeKind
	}{
		{"still processing", `{"status": "processing"}`, generate.OutcomeProcessing},
		{"explicit failure", `{"status": "failed", "debug": {"failMsg": "oom"}}`, generate.OutcomeFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			a := newTestApp(t, server.URL, 5*time.Second)
			a.attachedPath = writeTestPhoto(t)

			a.submit(context.Background(), &bytes.Buffer{}, "prompt")

			entries := a.log.Entries()
			assistant := entries[len(entries)-1]
			if assistant.State != conversation.StateResolved {
				t.Fatal("assistant turn did not resolve")
			}
			if assistant.Outcome.Kind != tt.wantKind {
				t.Errorf("outcome kind = %v, want %v", assistant.Outcome.Kind, tt.wantKind)
			}
			if a.gallery.Len() != 0 {
				t.Errorf("gallery has %d items, want 0", a.gallery.Len())
			}
		})
	}
}

func TestSubmit_TimeoutResolvesOnceAndLateSuccessIsDiscarded(t *testing.T) {
	handlerDone := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer close(handlerDone)
		time.Sleep(300 * time.Millisecond)
		// This late success must never reach the conversation or gallery.
		w.Write([]byte(`{"success": true, "imageUrl": "https://cdn.example.com/late.png"}`))
	}))
	defer server.Close()

	a := newTestApp(t, server.URL, 50*time.Millisecond)
	a.attachedPath = writeTestPhoto(t)

	a.submit(context.Background(), &bytes.Buffer{}, "prompt")

	entries := a.log.Entries()
	assistant := entries[len(entries)-1]
	if assistant.State != conversation.StateResolved {
		t.Fatal("assistant turn did not resolve on timeout")
	}
	if assistant.Outcome.Kind != generate.OutcomeTransport || !assistant.Outcome.TimedOut {
		t.Fatalf("outcome = %+v, want timed-out transport error", assistant.Outcome)
	}

	// Let the server finish its late write, then verify nothing changed.
	<-handlerDone
	time.Sleep(20 * time.Millisecond)

	after := a.log.Entries()
	final := after[len(after)-1]
	if final.Outcome.Kind != generate.OutcomeTransport || !final.Outcome.TimedOut {
		t.Error("late-arriving success mutated the resolved turn")
	}
	if a.gallery.Len() != 0 {
		t.Error("late-arriving success reached the gallery")
	}
	if a.processing {
		t.Error("processing flag still set after timeout settle")
	}
}

func TestSubmit_UndecodablePhotoResolvesAsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("service should not be called for an undecodable photo")
	}))
	defer server.Close()

	badPath := filepath.Join(t.TempDir(), "menu.txt")
	if err := os.WriteFile(badPath, []byte("tonight's specials"), 0600); err != nil {
		t.Fatalf("failed to write bad file: %v", err)
	}

	a := newTestApp(t, server.URL, time.Second)
	a.attachedPath = badPath

	out := &bytes.Buffer{}
	a.submit(context.Background(), out, "prompt")

	entries := a.log.Entries()
	if len(entries) != 2 {
		t.Fatalf("log has %d entries, want 2", len(entries))
	}
	assistant := entries[1]
	if assistant.State != conversation.StateResolved {
		t.Fatal("assistant turn did not resolve")
	}
	if assistant.Outcome.Kind != generate.OutcomeFailed {
		t.Errorf("outcome kind = %v, want failed", assistant.Outcome.Kind)
	}
	if !strings.Contains(assistant.Outcome.ReasonText, "Could not read the attached photo") {
		t.Errorf("ReasonText = %q, want decode failure text", assistant.Outcome.ReasonText)
	}
}

func TestSubmit_RequiresAttachment(t *testing.T) {
	a := newTestApp(t, "http://localhost:0", time.Second)

	out := &bytes.Buffer{}
	a.submit(context.Background(), out, "prompt")

	if a.log.Len() != 0 {
		t.Error("submission without an attachment should not touch the log")
	}
	if !strings.Contains(out.String(), "/attach") {
		t.Errorf("output %q should point the user at /attach", out.String())
	}
}
