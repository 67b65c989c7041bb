package history

import (
	"time"
)

// Type classifies a consultation entry.
type Type string

const (
	TypeGeneral           Type = "general"
	TypeMedicalEvaluation Type = "medical_evaluation"
	TypeDailyCheckin      Type = "daily_checkin"
	TypeEmergency         Type = "emergency"
	TypeHerbal            Type = "herbal_consultation"
)

func (t Type) Valid() bool {
	switch t {
	case TypeGeneral, TypeMedicalEvaluation, TypeDailyCheckin, TypeEmergency, TypeHerbal:
		return true
	}
	return false
}

// ImagePlaceholder replaces embedded image content before a transcript is
// persisted. Raw image bytes are never written to the history log.
const ImagePlaceholder = "[Imagen adjunta]"

// Message is one role-tagged turn of a multi-turn consultation.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
	Image   string `json:"image,omitempty"`
}

// Entry is one persisted consultation record. Entries are append-only and
// never mutated; only an explicit clear replaces the full sequence.
type Entry struct {
	ID              string    `json:"id"`
	Timestamp       time.Time `json:"timestamp"`
	Type            Type      `json:"type"`
	UserInput       string    `json:"user_input"`
	AIResponse      string    `json:"ai_response"`
	AssessmentLevel string    `json:"assessment_level,omitempty"`
	ChatHistory     []Message `json:"chat_history"`
}

// SnapshotTranscript copies a chat transcript for persistence, replacing any
// attached image content with the placeholder marker.
func SnapshotTranscript(transcript []Message) []Message {
	snap := make([]Message, 0, len(transcript))
	for _, m := range transcript {
		if m.Image != "" {
			m.Image = ImagePlaceholder
		}
		snap = append(snap, m)
	}
	return snap
}

// Period is a recency window applied to a history sequence.
type Period string

const (
	PeriodWeek    Period = "week"
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter"
	PeriodAll     Period = "all"
)

// Days returns the window length, or 0 for the unbounded period.
func (p Period) Days() int {
	switch p {
	case PeriodWeek:
		return 7
	case PeriodMonth:
		return 30
	case PeriodQuarter:
		return 90
	}
	return 0
}

// FilterByType returns the entries matching t, in order. The input slice is
// never mutated.
func FilterByType(entries []Entry, t Type) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// FilterByPeriod returns the entries newer than the period cutoff relative
// to now. PeriodAll passes everything through.
func FilterByPeriod(entries []Entry, p Period, now time.Time) []Entry {
	days := p.Days()
	if days == 0 {
		out := make([]Entry, len(entries))
		copy(out, entries)
		return out
	}
	cutoff := now.AddDate(0, 0, -days)
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Timestamp.After(cutoff) {
			out = append(out, e)
		}
	}
	return out
}

// Stats are aggregate figures computed on demand from the full sequence,
// never cached or persisted.
type Stats struct {
	Total          int          `json:"total"`
	ByType         map[Type]int `json:"by_type"`
	EmergencyCount int          `json:"emergency_count"`
	LastWeekCount  int          `json:"last_week_count"`
}

func ComputeStats(entries []Entry, now time.Time) Stats {
	s := Stats{ByType: make(map[Type]int)}
	weekCutoff := now.AddDate(0, 0, -7)
	for _, e := range entries {
		s.Total++
		s.ByType[e.Type]++
		if e.Type == TypeEmergency {
			s.EmergencyCount++
		}
		if e.Timestamp.After(weekCutoff) {
			s.LastWeekCount++
		}
	}
	return s
}
