// Package triage classifies the urgency of an emergency assessment from
// the model's free-text reply.
package triage

import "strings"

// Severity is one of three ordered urgency tiers.
type Severity int

const (
	SeverityMild Severity = iota
	SeverityUrgent
	SeverityEmergency
)

func (s Severity) String() string {
	switch s {
	case SeverityEmergency:
		return "EMERGENCIA"
	case SeverityUrgent:
		return "URGENTE"
	default:
		return "LEVE"
	}
}

// Classify maps a triage response to a severity tier by looking for the
// protocol's flag glyphs or urgency keywords, case-insensitively.
//
// This is a substring match, not a semantic one: a response that phrases
// urgency without the exact markers will be under-classified. Known
// limitation, kept deliberately until a stronger classifier is signed off.
func Classify(responseText string) Severity {
	upper := strings.ToUpper(responseText)
	switch {
	case strings.Contains(responseText, "🔴") || strings.Contains(upper, "EMERGENCIA"):
		return SeverityEmergency
	case strings.Contains(responseText, "🟡") || strings.Contains(upper, "URGENTE"):
		return SeverityUrgent
	default:
		return SeverityMild
	}
}
