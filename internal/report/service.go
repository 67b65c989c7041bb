package report

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"rural-health-assistant/internal/agent"
	"rural-health-assistant/internal/history"
	"rural-health-assistant/internal/patient"
	"rural-health-assistant/internal/session"
	"rural-health-assistant/internal/storage"
)

// Config selects what a generated report covers.
type Config struct {
	Period           history.Period `json:"period"`
	IncludeCheckins  bool           `json:"include_checkins"`
	IncludeEmergency bool           `json:"include_emergency"`
	WantAISummary    bool           `json:"want_ai_summary"`
}

// Meta describes a generated export.
type Meta struct {
	Period             history.Period `json:"period"`
	GeneratedDate      time.Time      `json:"generated_date"`
	TotalEntries       int            `json:"total_entries"`
	AIAnalysisIncluded bool           `json:"ai_analysis_included"`
}

// JSONExport bundles the filtered data without any document-layout
// concerns. Warning is set when an AI summary was requested but could not
// be generated.
type JSONExport struct {
	PatientInfo      *patient.Profile `json:"patient_info"`
	AIMedicalSummary string           `json:"ai_medical_summary,omitempty"`
	MedicalHistory   []history.Entry  `json:"medical_history"`
	ReportConfig     Meta             `json:"report_config"`
	Warning          string           `json:"warning,omitempty"`
}

// HistoryExport is the plain history download: profile plus the full log.
type HistoryExport struct {
	UserProfile    *patient.Profile `json:"user_profile"`
	MedicalHistory []history.Entry  `json:"medical_history"`
	ExportDate     time.Time        `json:"export_date"`
	TotalEntries   int              `json:"total_entries"`
}

// summaryDetailCap bounds the per-consultation detail sections when an AI
// summary is present, so the document length stays bounded.
const summaryDetailCap = 5

const (
	summaryTemperature = 0.2
	summaryMaxTokens   = 1000
	summaryWindow      = 10
)

// Service builds clinical reports from the history and profile stores,
// optionally asking the completion gateway for a structured summary.
// Summary failure degrades the report, it never aborts it.
type Service struct {
	store    storage.Store
	gateway  agent.CompletionGateway
	sessions *session.Manager
	logger   zerolog.Logger
}

func NewService(store storage.Store, gateway agent.CompletionGateway, sessions *session.Manager, logger zerolog.Logger) *Service {
	return &Service{store: store, gateway: gateway, sessions: sessions, logger: logger}
}

func filterHistory(entries []history.Entry, cfg Config, now time.Time) []history.Entry {
	out := history.FilterByPeriod(entries, cfg.Period, now)
	if !cfg.IncludeCheckins {
		filtered := out[:0:0]
		for _, e := range out {
			if e.Type != history.TypeDailyCheckin {
				filtered = append(filtered, e)
			}
		}
		out = filtered
	}
	if !cfg.IncludeEmergency {
		filtered := out[:0:0]
		for _, e := range out {
			if e.Type != history.TypeEmergency {
				filtered = append(filtered, e)
			}
		}
		out = filtered
	}
	return out
}

// aiSummary requests the five-section clinical summary. The reachability
// probe gates the attempt but does not guarantee the real call succeeds.
func (s *Service) aiSummary(ctx context.Context, profile *patient.Profile, entries []history.Entry) (string, error) {
	if !s.gateway.Ping(ctx) {
		return "", fmt.Errorf("inference endpoint unreachable")
	}

	recent := entries
	if len(recent) > summaryWindow {
		recent = recent[len(recent)-summaryWindow:]
	}
	counts := history.ComputeStats(entries, time.Now()).ByType

	result, err := s.gateway.Generate(ctx, agent.GenerateRequest{
		SystemPrompt: agent.PatientSummaryPrompt(),
		Prompt:       agent.SummaryUserPrompt(profile, counts, recent),
		Temperature:  summaryTemperature,
		MaxTokens:    summaryMaxTokens,
	})
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

func (s *Service) load(ctx context.Context, cfg Config) (*session.Session, []history.Entry, string, string, error) {
	sess, err := s.sessions.Current()
	if err != nil {
		return nil, nil, "", "", err
	}
	entries, err := s.store.LoadAll(ctx, sess.UserID)
	if err != nil {
		return nil, nil, "", "", err
	}
	entries = filterHistory(entries, cfg, time.Now())

	var summary, warning string
	if cfg.WantAISummary {
		summary, err = s.aiSummary(ctx, sess.Profile, entries)
		if err != nil {
			warning = fmt.Sprintf("AI summary unavailable: %v", err)
			s.logger.Warn().Err(err).Msg("report proceeds without AI summary")
		}
	}
	return sess, entries, summary, warning, nil
}

// BuildJSON produces the JSON export for the active user.
func (s *Service) BuildJSON(ctx context.Context, cfg Config) (*JSONExport, error) {
	sess, entries, summary, warning, err := s.load(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &JSONExport{
		PatientInfo:      sess.Profile,
		AIMedicalSummary: summary,
		MedicalHistory:   entries,
		ReportConfig: Meta{
			Period:             cfg.Period,
			GeneratedDate:      time.Now(),
			TotalEntries:       len(entries),
			AIAnalysisIncluded: summary != "",
		},
		Warning: warning,
	}, nil
}

// BuildPDF renders the report document to a temporary file and returns its
// path with a warning when the AI section was dropped. The caller streams
// the file and must remove it afterwards.
func (s *Service) BuildPDF(ctx context.Context, cfg Config) (path string, warning string, err error) {
	sess, entries, summary, warning, err := s.load(ctx, cfg)
	if err != nil {
		return "", "", err
	}

	// Newest first for the detail sections.
	sorted := make([]history.Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})

	tmp, err := os.CreateTemp("", "reporte_medico_*.pdf")
	if err != nil {
		return "", "", fmt.Errorf("create report file: %w", err)
	}
	tmp.Close()

	if err := renderPDF(tmp.Name(), sess.Profile, sorted, cfg, summary); err != nil {
		os.Remove(tmp.Name())
		return "", "", err
	}
	return tmp.Name(), warning, nil
}

// Export is the plain history download of the full (unfiltered) log.
func (s *Service) Export(ctx context.Context) (*HistoryExport, error) {
	sess, err := s.sessions.Current()
	if err != nil {
		return nil, err
	}
	entries, err := s.store.LoadAll(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	return &HistoryExport{
		UserProfile:    sess.Profile,
		MedicalHistory: entries,
		ExportDate:     time.Now(),
		TotalEntries:   len(entries),
	}, nil
}
