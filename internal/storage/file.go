package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"rural-health-assistant/internal/history"
	"rural-health-assistant/internal/patient"
)

const (
	profilePrefix = "perfil_usuario_"
	historyPrefix = "historial_medico_"
	checkinPrefix = "checkin_diario_"
)

// FileStore keeps one JSON file per user per record kind under a data
// directory. Files are loaded whole and rewritten whole on every mutation;
// a single mutex serializes writers within the process.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) profilePath(userID string) string {
	return filepath.Join(s.dir, profilePrefix+userID+".json")
}

func (s *FileStore) historyPath(userID string) string {
	return filepath.Join(s.dir, historyPrefix+userID+".json")
}

func (s *FileStore) checkinPath(userID string) string {
	return filepath.Join(s.dir, checkinPrefix+userID+".json")
}

func (s *FileStore) SaveProfile(ctx context.Context, p *patient.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.LastUpdated = time.Now()
	if err := AtomicWriteJSON(s.profilePath(p.UserID), p); err != nil {
		return fmt.Errorf("save profile %s: %w", p.UserID, err)
	}
	return nil
}

func (s *FileStore) LoadProfile(ctx context.Context, userID string) (*patient.Profile, error) {
	var p patient.Profile
	ok, err := ReadJSON(s.profilePath(userID), &p)
	if err != nil {
		return nil, fmt.Errorf("load profile %s: %w", userID, err)
	}
	if !ok {
		return nil, ErrProfileNotFound
	}
	return &p, nil
}

func (s *FileStore) ListProfileIDs(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	ids := []string{}
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, profilePrefix) && strings.HasSuffix(name, ".json") {
			ids = append(ids, strings.TrimSuffix(strings.TrimPrefix(name, profilePrefix), ".json"))
		}
	}
	return ids, nil
}

func (s *FileStore) Append(ctx context.Context, userID string, entry history.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.loadHistory(userID)
	if err != nil {
		return err
	}
	entries = append(entries, entry)
	if err := AtomicWriteJSON(s.historyPath(userID), entries); err != nil {
		return fmt.Errorf("save history %s: %w", userID, err)
	}
	return nil
}

func (s *FileStore) LoadAll(ctx context.Context, userID string) ([]history.Entry, error) {
	return s.loadHistory(userID)
}

func (s *FileStore) ReplaceAll(ctx context.Context, userID string, entries []history.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entries == nil {
		entries = []history.Entry{}
	}
	if err := AtomicWriteJSON(s.historyPath(userID), entries); err != nil {
		return fmt.Errorf("save history %s: %w", userID, err)
	}
	return nil
}

func (s *FileStore) loadHistory(userID string) ([]history.Entry, error) {
	entries := []history.Entry{}
	if _, err := ReadJSON(s.historyPath(userID), &entries); err != nil {
		return nil, fmt.Errorf("load history %s: %w", userID, err)
	}
	return entries, nil
}

func (s *FileStore) SaveCheckin(ctx context.Context, userID string, c patient.Checkin) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	checkins, err := s.loadCheckins(userID)
	if err != nil {
		return err
	}
	checkins = append(checkins, c)
	checkins = patient.PruneCheckins(checkins, time.Now())
	if err := AtomicWriteJSON(s.checkinPath(userID), checkins); err != nil {
		return fmt.Errorf("save checkins %s: %w", userID, err)
	}
	return nil
}

func (s *FileStore) LoadCheckins(ctx context.Context, userID string) ([]patient.Checkin, error) {
	return s.loadCheckins(userID)
}

func (s *FileStore) loadCheckins(userID string) ([]patient.Checkin, error) {
	checkins := []patient.Checkin{}
	if _, err := ReadJSON(s.checkinPath(userID), &checkins); err != nil {
		return nil, fmt.Errorf("load checkins %s: %w", userID, err)
	}
	return checkins, nil
}

func (s *FileStore) Close() error { return nil }
