// Package gallery persists successfully generated images.
//
// The gallery outlives any one conversation: items are created only from
// successful generation outcomes and survive process restarts. The durable
// representation is a single JSON file holding the full collection,
// most-recent-first, rewritten on every mutation. That is deliberate — the
// client is single-user and single-process, so full-rewrite persistence is
// simpler than incremental updates and leaves no partial states on disk
// (writes go through a temp file and rename).
//
// The Store exclusively owns the collection. All mutation goes through
// Insert, Remove, and Clear, each of which persists synchronously after the
// in-memory change.
package gallery

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/pg-png/restaurant-content-creator/internal/logging"
)

// MaxGalleryFileBytes is the maximum size allowed for the gallery file.
// This prevents disk exhaustion from corrupted data. 10MB holds thousands
// of items.
const MaxGalleryFileBytes = 10 * 1024 * 1024

// Item is one durable gallery entry.
//
// SourceImageURL, when present, weakly references the uploaded image the
// generation started from. It is informational only and never dereferenced
// for control flow; nil serializes as JSON null per the on-disk schema.
type Item struct {
	ID             string    `json:"id"`
	ImageURL       string    `json:"imageUrl"`
	Prompt         string    `json:"prompt"`
	CreatedAt      time.Time `json:"createdAt"`
	SourceImageURL *string   `json:"sourceImageUrl"`
}

// Store manages the persisted gallery collection.
//
// Store is not thread-safe; the client accesses it from a single goroutine.
// Every mutation still persists the full collection so future background
// writers could not observe lost updates.
type Store struct {
	path   string
	items  []Item
	logger *logging.Logger
}

// NewStore creates a store backed by the JSON file at path. Call Load
// before first use to restore the persisted collection.
func NewStore(path string, logger *logging.Logger) *Store {
	return &Store{
		path:   path,
		logger: logger,
	}
}

// Load restores the collection from disk.
//
// A missing file is a normal first run and yields an empty collection. A
// file that exists but cannot be parsed also degrades to an empty
// collection: the anomaly is logged, never surfaced as a fatal error, and
// the corrupt file is overwritten on the next mutation.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.items = nil
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read gallery file: %w", err)
	}

	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		s.logger.Warn("Gallery file %s is corrupt, starting with an empty gallery: %v", s.path, err)
		s.items = nil
		return nil
	}

	s.items = items
	return nil
}

// Insert creates an item for a successful generation, prepends it
// (most-recent-first) and persists the collection. sourceImageURL may be
// empty, in which case the stored reference is null.
func (s *Store) Insert(imageURL, prompt, sourceImageURL string) (Item, error) {
	item := Item{
		ID:        uuid.New().String(),
		ImageURL:  imageURL,
		Prompt:    prompt,
		CreatedAt: time.Now().UTC(),
	}
	if sourceImageURL != "" {
		item.SourceImageURL = &sourceImageURL
	}

	s.items = append([]Item{item}, s.items...)

	if err := s.persist(); err != nil {
		return Item{}, err
	}
	return item, nil
}

// Remove deletes the item with the given id and persists. Removing an
// absent id is a no-op: the collection is unchanged and nothing is
// rewritten.
func (s *Store) Remove(id string) error {
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return s.persist()
		}
	}
	return nil
}

// Clear empties the collection and persists. Confirmation is the caller's
// responsibility; the store itself does not gate destructive operations.
func (s *Store) Clear() error {
	s.items = nil
	return s.persist()
}

// Items returns a copy of the collection, most-recent-first.
func (s *Store) Items() []Item {
	return append([]Item(nil), s.items...)
}

// Len returns the number of items in the collection.
func (s *Store) Len() int {
	return len(s.items)
}

// persist serializes the full collection and writes it atomically
// (temp file then rename), creating the parent directory as needed.
func (s *Store) persist() error {
	items := s.items
	if items == nil {
		items = []Item{}
	}

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize gallery: %w", err)
	}

	if len(data) > MaxGalleryFileBytes {
		return fmt.Errorf("gallery size %d bytes exceeds maximum %d bytes", len(data), MaxGalleryFileBytes)
	}

	// Create parent directory (0700: owner-only access)
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create gallery directory: %w", err)
		}
	}

	// Write to temp file first, then rename (atomic write)
	// 0600: owner read/write only
	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write gallery file: %w", err)
	}

	if err := os.Rename(tempPath, s.path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to commit gallery file: %w", err)
	}

	return nil
}
