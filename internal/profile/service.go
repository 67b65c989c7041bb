// Package profile manages patient profiles and the active session.
package profile

import (
	"context"

	"rural-health-assistant/internal/patient"
	"rural-health-assistant/internal/session"
	"rural-health-assistant/internal/storage"
)

// Service persists profiles and keeps the session manager in sync.
// Creating or activating a profile makes its user the session's active
// patient.
type Service struct {
	store    storage.ProfileStore
	sessions *session.Manager
}

func NewService(store storage.ProfileStore, sessions *session.Manager) *Service {
	return &Service{store: store, sessions: sessions}
}

// Create validates and persists a new profile, then starts its session.
// Identity is always assigned server-side.
func (s *Service) Create(ctx context.Context, p *patient.Profile) (*patient.Profile, error) {
	fresh := patient.NewProfile()
	fresh.Name = p.Name
	fresh.Age = p.Age
	fresh.Location = p.Location
	fresh.Phone = p.Phone
	fresh.EmergencyContact = p.EmergencyContact
	if p.ChronicConditions != nil {
		fresh.ChronicConditions = p.ChronicConditions
	}
	if p.Allergies != nil {
		fresh.Allergies = p.Allergies
	}
	if p.CurrentMedications != nil {
		fresh.CurrentMedications = p.CurrentMedications
	}

	if err := fresh.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.SaveProfile(ctx, fresh); err != nil {
		return nil, err
	}
	s.sessions.Start(fresh)
	return fresh, nil
}

// Update rewrites an existing profile's mutable fields. The user ID and
// creation time never change.
func (s *Service) Update(ctx context.Context, userID string, p *patient.Profile) (*patient.Profile, error) {
	existing, err := s.store.LoadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	existing.Name = p.Name
	existing.Age = p.Age
	existing.Location = p.Location
	existing.Phone = p.Phone
	existing.EmergencyContact = p.EmergencyContact
	existing.ChronicConditions = p.ChronicConditions
	existing.Allergies = p.Allergies
	existing.CurrentMedications = p.CurrentMedications

	if err := existing.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.SaveProfile(ctx, existing); err != nil {
		return nil, err
	}

	// Keep the active session's view current.
	if sess, err := s.sessions.Current(); err == nil && sess.UserID == userID {
		sess.Profile = existing
	}
	return existing, nil
}

func (s *Service) Get(ctx context.Context, userID string) (*patient.Profile, error) {
	return s.store.LoadProfile(ctx, userID)
}

func (s *Service) List(ctx context.Context) ([]string, error) {
	return s.store.ListProfileIDs(ctx)
}

// Activate loads a stored profile and starts its session, replacing any
// active one.
func (s *Service) Activate(ctx context.Context, userID string) (*patient.Profile, error) {
	p, err := s.store.LoadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.sessions.Start(p)
	return p, nil
}
