package storage

import (
	"context"
	"encoding/json"
	"errors"
	"os"

	"rural-health-assistant/internal/history"
	"rural-health-assistant/internal/patient"
)

// ErrProfileNotFound is returned when no profile exists for a user ID.
var ErrProfileNotFound = errors.New("profile not found")

type ProfileStore interface {
	// SaveProfile persists the full profile, bumping LastUpdated.
	SaveProfile(ctx context.Context, p *patient.Profile) error
	LoadProfile(ctx context.Context, userID string) (*patient.Profile, error)
	ListProfileIDs(ctx context.Context) ([]string, error)
}

// HistoryStore persists the per-user append-only consultation log. Every
// append is a whole-sequence read-modify-write; the design assumes a single
// active session per user.
type HistoryStore interface {
	Append(ctx context.Context, userID string, entry history.Entry) error
	LoadAll(ctx context.Context, userID string) ([]history.Entry, error)
	// ReplaceAll is used only by the explicit clear operation.
	ReplaceAll(ctx context.Context, userID string, entries []history.Entry) error
}

type CheckinStore interface {
	// SaveCheckin appends the check-in and applies the 30-day retention
	// window in the same write.
	SaveCheckin(ctx context.Context, userID string, c patient.Checkin) error
	LoadCheckins(ctx context.Context, userID string) ([]patient.Checkin, error)
}

// Store bundles the per-user stores behind one driver.
type Store interface {
	ProfileStore
	HistoryStore
	CheckinStore
	Close() error
}

// AtomicWriteJSON writes data as indented JSON via a temp file and rename,
// so readers never observe a partial file.
func AtomicWriteJSON(path string, data interface{}) error {
	tempFile := path + ".tmp"
	f, err := os.Create(tempFile)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tempFile)
		return err
	}

	return os.Rename(tempFile, path)
}

// ReadJSON loads a whole JSON file into out. A missing file is not an
// error; out is left untouched and ok is false.
func ReadJSON(path string, out interface{}) (ok bool, err error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if len(raw) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, err
	}
	return true, nil
}
