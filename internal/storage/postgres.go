package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"rural-health-assistant/internal/history"
	"rural-health-assistant/internal/patient"
)

// PostgresStore keeps the same whole-document read/rewrite contract as the
// file driver, storing each user's records as JSONB blobs.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) SaveProfile(ctx context.Context, p *patient.Profile) error {
	p.LastUpdated = time.Now()
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO profiles (user_id, data, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET
			data = $2,
			updated_at = $3
	`
	if _, err := s.db.ExecContext(ctx, query, p.UserID, data, p.LastUpdated); err != nil {
		return fmt.Errorf("save profile %s: %w", p.UserID, err)
	}
	return nil
}

func (s *PostgresStore) LoadProfile(ctx context.Context, userID string) (*patient.Profile, error) {
	row := s.db.QueryRowContext(ctx, `SELECT data FROM profiles WHERE user_id = $1`, userID)

	var raw []byte
	if err := row.Scan(&raw); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("load profile %s: %w", userID, err)
	}

	var p patient.Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("unmarshal profile %s: %w", userID, err)
	}
	return &p, nil
}

func (s *PostgresStore) ListProfileIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT user_id FROM profiles ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *PostgresStore) Append(ctx context.Context, userID string, entry history.Entry) error {
	entries, err := s.LoadAll(ctx, userID)
	if err != nil {
		return err
	}
	entries = append(entries, entry)
	return s.ReplaceAll(ctx, userID, entries)
}

func (s *PostgresStore) LoadAll(ctx context.Context, userID string) ([]history.Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT entries FROM medical_history WHERE user_id = $1`, userID)

	var raw []byte
	if err := row.Scan(&raw); err != nil {
		if err == sql.ErrNoRows {
			return []history.Entry{}, nil
		}
		return nil, fmt.Errorf("load history %s: %w", userID, err)
	}

	entries := []history.Entry{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, fmt.Errorf("unmarshal history %s: %w", userID, err)
		}
	}
	return entries, nil
}

func (s *PostgresStore) ReplaceAll(ctx context.Context, userID string, entries []history.Entry) error {
	if entries == nil {
		entries = []history.Entry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO medical_history (user_id, entries)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET entries = $2
	`
	if _, err := s.db.ExecContext(ctx, query, userID, data); err != nil {
		return fmt.Errorf("save history %s: %w", userID, err)
	}
	return nil
}

func (s *PostgresStore) SaveCheckin(ctx context.Context, userID string, c patient.Checkin) error {
	checkins, err := s.LoadCheckins(ctx, userID)
	if err != nil {
		return err
	}
	checkins = append(checkins, c)
	checkins = patient.PruneCheckins(checkins, time.Now())

	data, err := json.Marshal(checkins)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO daily_checkins (user_id, entries)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET entries = $2
	`
	if _, err := s.db.ExecContext(ctx, query, userID, data); err != nil {
		return fmt.Errorf("save checkins %s: %w", userID, err)
	}
	return nil
}

func (s *PostgresStore) LoadCheckins(ctx context.Context, userID string) ([]patient.Checkin, error) {
	row := s.db.QueryRowContext(ctx, `SELECT entries FROM daily_checkins WHERE user_id = $1`, userID)

	var raw []byte
	if err := row.Scan(&raw); err != nil {
		if err == sql.ErrNoRows {
			return []patient.Checkin{}, nil
		}
		return nil, fmt.Errorf("load checkins %s: %w", userID, err)
	}

	checkins := []patient.Checkin{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &checkins); err != nil {
			return nil, fmt.Errorf("unmarshal checkins %s: %w", userID, err)
		}
	}
	return checkins, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
