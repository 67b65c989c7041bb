package consultation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"rural-health-assistant/internal/agent"
	"rural-health-assistant/internal/catalog"
	"rural-health-assistant/internal/history"
	"rural-health-assistant/internal/patient"
	"rural-health-assistant/internal/session"
	"rural-health-assistant/internal/storage"
	"rural-health-assistant/internal/triage"
)

// Service orchestrates a consultation from composing to commit: it
// assembles the patient context, calls the completion gateway with the
// variant matching the consultation type, classifies emergency responses,
// and appends the committed entry to the history store. A gateway failure
// commits nothing; the caller keeps the input and retries explicitly.
type Service struct {
	store    storage.Store
	gateway  agent.CompletionGateway
	herbal   *catalog.Catalog
	generic  *catalog.Catalog
	sessions *session.Manager
	logger   zerolog.Logger
}

func NewService(store storage.Store, gateway agent.CompletionGateway, herbal, generic *catalog.Catalog, sessions *session.Manager, logger zerolog.Logger) *Service {
	return &Service{
		store:    store,
		gateway:  gateway,
		herbal:   herbal,
		generic:  generic,
		sessions: sessions,
		logger:   logger,
	}
}

func (s *Service) promptContext(sess *session.Session, entries []history.Entry, window int) agent.PromptContext {
	recent := entries
	if len(recent) > window {
		recent = recent[len(recent)-window:]
	}
	return agent.PromptContext{
		Profile:       sess.Profile,
		RecentHistory: recent,
		HerbalKeys:    s.herbal.Keys(),
		GenericKeys:   s.generic.Keys(),
	}
}

// Submit runs one consultation for the active session. Chat-style types
// (general, medical_evaluation) extend the in-memory transcript; emergency
// and herbal consultations are one-shot.
func (s *Service) Submit(ctx context.Context, input Input) (*history.Entry, error) {
	sess, err := s.sessions.Current()
	if err != nil {
		return nil, err
	}
	if !input.Type.Valid() || input.Type == history.TypeDailyCheckin {
		return nil, fmt.Errorf("unsupported consultation type %q", input.Type)
	}
	if input.Text == "" {
		return nil, fmt.Errorf("consultation text is required")
	}

	entries, err := s.store.LoadAll(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}

	req := agent.GenerateRequest{
		Prompt:      input.Text,
		ImageBase64: input.ImageBase64,
		Temperature: evalTemperature,
		MaxTokens:   evalMaxTokens,
	}
	userInput := input.Text
	if input.Type == history.TypeEmergency {
		req.SystemPrompt = agent.EmergencyPrompt()
		req.Prompt = agent.EmergencyUserPrompt(input.Text)
		req.Temperature = triageTemperature
		req.MaxTokens = triageMaxTokens
		userInput = "EMERGENCIA: " + input.Text
	} else {
		req.SystemPrompt = agent.HealthAssistantPrompt(s.promptContext(sess, entries, contextWindow))
	}

	result, err := s.gateway.Generate(ctx, req)
	if err != nil {
		// Nothing is persisted; the transcript stays as composed so the
		// user can retry without retyping.
		s.logger.Warn().Err(err).Str("type", string(input.Type)).Msg("consultation failed")
		return nil, err
	}

	entry := history.Entry{
		ID:         uuid.New().String(),
		Timestamp:  time.Now(),
		Type:       input.Type,
		UserInput:  userInput,
		AIResponse: result.Text,
	}

	if input.Type == history.TypeEmergency {
		entry.AssessmentLevel = triage.Classify(result.Text).String()
	}

	chatType := input.Type == history.TypeGeneral || input.Type == history.TypeMedicalEvaluation
	if chatType {
		userMsg := history.Message{Role: "user", Content: input.Text}
		if input.ImageBase64 != "" {
			userMsg.Image = input.ImageBase64
		}
		assistantMsg := history.Message{Role: "assistant", Content: result.Text}
		candidate := append(s.sessions.Transcript(), userMsg, assistantMsg)
		entry.ChatHistory = history.SnapshotTranscript(candidate)

		if err := s.store.Append(ctx, sess.UserID, entry); err != nil {
			return nil, err
		}
		s.sessions.AppendTranscript(userMsg, assistantMsg)
	} else {
		entry.ChatHistory = []history.Message{}
		if err := s.store.Append(ctx, sess.UserID, entry); err != nil {
			return nil, err
		}
	}

	s.logger.Info().
		Str("type", string(input.Type)).
		Str("entry_id", entry.ID).
		Dur("latency", result.Latency).
		Msg("consultation committed")
	return &entry, nil
}

// SubmitCheckin persists the daily check-in (with retention pruning), then
// requests the AI analysis. The analysis degrades to a warning when the
// gateway fails; the check-in itself stays saved.
func (s *Service) SubmitCheckin(ctx context.Context, c patient.Checkin) (*CheckinResult, error) {
	sess, err := s.sessions.Current()
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	c.Timestamp = now
	c.Date = now.Format("2006-01-02")
	if err := s.store.SaveCheckin(ctx, sess.UserID, c); err != nil {
		return nil, err
	}

	res := &CheckinResult{Checkin: c}

	result, err := s.gateway.Generate(ctx, agent.GenerateRequest{
		SystemPrompt: agent.DailyCheckinPrompt(),
		Prompt:       agent.CheckinUserPrompt(c),
		Temperature:  checkinTemperature,
		MaxTokens:    checkinMaxTokens,
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("check-in analysis failed")
		res.AnalysisWarning = err.Error()
		return res, nil
	}

	entry := history.Entry{
		ID:        uuid.New().String(),
		Timestamp: time.Now(),
		Type:      history.TypeDailyCheckin,
		UserInput: fmt.Sprintf("Check-in diario: Agua:%d, Ejercicio:%dmin, Bienestar:%d/10",
			c.WaterIntake, c.ExerciseMinutes, c.WellnessScore),
		AIResponse:  result.Text,
		ChatHistory: []history.Message{},
	}
	if err := s.store.Append(ctx, sess.UserID, entry); err != nil {
		return nil, err
	}

	res.Analysis = result.Text
	res.Entry = &entry
	return res, nil
}

// HerbalConsult asks the canned question about one herbal catalog entry
// and commits it as a herbal consultation.
func (s *Service) HerbalConsult(ctx context.Context, slug string) (*history.Entry, error) {
	plant, ok := s.herbal.Get(slug)
	if !ok {
		return nil, fmt.Errorf("unknown herbal entry %q", slug)
	}
	return s.Submit(ctx, Input{
		Type: history.TypeHerbal,
		Text: agent.HerbalUserPrompt(plant.Name),
	})
}

// Trends analyzes the most recent history entries for patterns. The result
// is shown, not persisted.
func (s *Service) Trends(ctx context.Context) (string, error) {
	sess, err := s.sessions.Current()
	if err != nil {
		return "", err
	}
	entries, err := s.store.LoadAll(ctx, sess.UserID)
	if err != nil {
		return "", err
	}
	if len(entries) <= trendMinEntries {
		return "", fmt.Errorf("need more than %d consultations to analyze trends", trendMinEntries)
	}

	recent := entries
	if len(recent) > trendWindow {
		recent = recent[len(recent)-trendWindow:]
	}

	result, err := s.gateway.Generate(ctx, agent.GenerateRequest{
		SystemPrompt: agent.HealthAssistantPrompt(s.promptContext(sess, entries, contextWindow)),
		Prompt:       agent.TrendUserPrompt(recent),
		Temperature:  trendTemperature,
		MaxTokens:    trendMaxTokens,
	})
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

// FilteredHistory loads the active user's history and applies the optional
// type and period filters.
func (s *Service) FilteredHistory(ctx context.Context, t history.Type, p history.Period) ([]history.Entry, error) {
	sess, err := s.sessions.Current()
	if err != nil {
		return nil, err
	}
	entries, err := s.store.LoadAll(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	if t != "" {
		if !t.Valid() {
			return nil, fmt.Errorf("unknown consultation type %q", t)
		}
		entries = history.FilterByType(entries, t)
	}
	if p != "" && p != history.PeriodAll {
		entries = history.FilterByPeriod(entries, p, time.Now())
	}
	return entries, nil
}

// Stats computes the aggregate history figures on demand.
func (s *Service) Stats(ctx context.Context) (*history.Stats, error) {
	sess, err := s.sessions.Current()
	if err != nil {
		return nil, err
	}
	entries, err := s.store.LoadAll(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	stats := history.ComputeStats(entries, time.Now())
	return &stats, nil
}

// ClearHistory replaces the active user's history with the empty sequence.
// Clearing an already-empty history is a no-op.
func (s *Service) ClearHistory(ctx context.Context) error {
	sess, err := s.sessions.Current()
	if err != nil {
		return err
	}
	return s.store.ReplaceAll(ctx, sess.UserID, []history.Entry{})
}

// ClearTranscript empties the in-memory chat without touching committed
// entries.
func (s *Service) ClearTranscript() error {
	if _, err := s.sessions.Current(); err != nil {
		return err
	}
	s.sessions.ClearTranscript()
	return nil
}

// Checkins returns the retained check-in log for the active user.
func (s *Service) Checkins(ctx context.Context) ([]patient.Checkin, error) {
	sess, err := s.sessions.Current()
	if err != nil {
		return nil, err
	}
	return s.store.LoadCheckins(ctx, sess.UserID)
}

// Reachable probes the inference endpoint. Advisory only.
func (s *Service) Reachable(ctx context.Context) bool {
	return s.gateway.Ping(ctx)
}
