package consultation

import (
	"rural-health-assistant/internal/history"
	"rural-health-assistant/internal/patient"
)

// Input is one user submission accumulated during composing: free text,
// an optional base64-encoded image, and the consultation type. Voice notes
// arrive here already transcribed into Text.
type Input struct {
	Type        history.Type `json:"type"`
	Text        string       `json:"text"`
	ImageBase64 string       `json:"image_base64,omitempty"`
}

// CheckinResult reports a submitted check-in. AnalysisWarning is set
// instead of failing when the inference call did not succeed; the check-in
// itself is already persisted at that point.
type CheckinResult struct {
	Checkin         patient.Checkin `json:"checkin"`
	Analysis        string          `json:"analysis,omitempty"`
	AnalysisWarning string          `json:"analysis_warning,omitempty"`
	Entry           *history.Entry  `json:"entry,omitempty"`
}

// Generation parameters per consultation variant, matching the
// temperature/length envelope each prompt was tuned for.
const (
	evalTemperature    = 0.3
	evalMaxTokens      = 800
	triageTemperature  = 0.1
	triageMaxTokens    = 600
	checkinTemperature = 0.3
	checkinMaxTokens   = 600
	trendTemperature   = 0.3
	trendMaxTokens     = 800
)

// contextWindow is how many recent history entries the general assistant
// prompt carries.
const contextWindow = 5

// trendWindow is how many recent entries trend analysis inspects, and the
// minimum history size it requires is trendMinEntries.
const (
	trendWindow     = 10
	trendMinEntries = 5
)
