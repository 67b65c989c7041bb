package patient

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Profile holds a patient's identity and static medical facts. The list
// fields preserve input order and are not deduplicated.
type Profile struct {
	UserID             string    `json:"user_id"`
	Name               string    `json:"name"`
	Age                string    `json:"age"`
	Location           string    `json:"location"`
	Phone              string    `json:"phone"`
	EmergencyContact   string    `json:"emergency_contact"`
	ChronicConditions  []string  `json:"chronic_conditions"`
	Allergies          []string  `json:"allergies"`
	CurrentMedications []string  `json:"current_medications"`
	CreatedAt          time.Time `json:"created_at"`
	LastUpdated        time.Time `json:"last_updated"`
}

// NewProfile stamps a fresh user ID and creation time. The ID never changes
// afterwards.
func NewProfile() *Profile {
	now := time.Now()
	return &Profile{
		UserID:             uuid.New().String(),
		ChronicConditions:  []string{},
		Allergies:          []string{},
		CurrentMedications: []string{},
		CreatedAt:          now,
		LastUpdated:        now,
	}
}

// Validate checks the required fields before any persistence attempt.
func (p *Profile) Validate() error {
	if p.UserID == "" {
		return fmt.Errorf("profile: user_id is required")
	}
	if p.Name == "" {
		return fmt.Errorf("profile: name is required")
	}
	if p.Age == "" {
		return fmt.Errorf("profile: age is required")
	}
	if p.Location == "" {
		return fmt.Errorf("profile: location is required")
	}
	return nil
}

// SleepQuality is the fixed 5-point scale offered on the daily check-in
// form.
type SleepQuality string

const (
	SleepVeryBad  SleepQuality = "Muy mal"
	SleepBad      SleepQuality = "Mal"
	SleepRegular  SleepQuality = "Regular"
	SleepGood     SleepQuality = "Bien"
	SleepVeryGood SleepQuality = "Muy bien"
)

func (q SleepQuality) Valid() bool {
	switch q {
	case SleepVeryBad, SleepBad, SleepRegular, SleepGood, SleepVeryGood:
		return true
	}
	return false
}

// Checkin is one daily wellness record. Date is the calendar day used by
// the 30-day retention window.
type Checkin struct {
	WaterIntake     int          `json:"water_intake"`
	ExerciseMinutes int          `json:"exercise_minutes"`
	WellnessScore   int          `json:"wellness_score"`
	SleepQuality    SleepQuality `json:"sleep_quality"`
	DailyNotes      string       `json:"daily_notes"`
	Timestamp       time.Time    `json:"timestamp"`
	Date            string       `json:"date"`
}

func (c *Checkin) Validate() error {
	if c.WaterIntake < 0 {
		return fmt.Errorf("checkin: water_intake must not be negative")
	}
	if c.ExerciseMinutes < 0 {
		return fmt.Errorf("checkin: exercise_minutes must not be negative")
	}
	if c.WellnessScore < 1 || c.WellnessScore > 10 {
		return fmt.Errorf("checkin: wellness_score must be between 1 and 10")
	}
	if !c.SleepQuality.Valid() {
		return fmt.Errorf("checkin: unknown sleep_quality %q", c.SleepQuality)
	}
	return nil
}

// CheckinRetentionDays is the sliding retention window applied on every
// check-in save.
const CheckinRetentionDays = 30

// PruneCheckins drops entries older than the retention window relative to
// now. The comparison is on calendar-day strings, so a check-in dated
// exactly 30 days ago survives.
func PruneCheckins(checkins []Checkin, now time.Time) []Checkin {
	cutoff := now.AddDate(0, 0, -CheckinRetentionDays).Format("2006-01-02")
	kept := make([]Checkin, 0, len(checkins))
	for _, c := range checkins {
		if c.Date >= cutoff {
			kept = append(kept, c)
		}
	}
	return kept
}
