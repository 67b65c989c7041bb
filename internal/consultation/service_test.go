package consultation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rural-health-assistant/internal/agent"
	"rural-health-assistant/internal/catalog"
	"rural-health-assistant/internal/history"
	"rural-health-assistant/internal/patient"
	"rural-health-assistant/internal/session"
	"rural-health-assistant/internal/storage"
)

type fakeGateway struct {
	generate  func(ctx context.Context, req agent.GenerateRequest) (*agent.GenerateResult, error)
	reachable bool
}

func (f *fakeGateway) Generate(ctx context.Context, req agent.GenerateRequest) (*agent.GenerateResult, error) {
	return f.generate(ctx, req)
}

func (f *fakeGateway) Ping(ctx context.Context) bool { return f.reachable }

func respondWith(text string) *fakeGateway {
	return &fakeGateway{
		reachable: true,
		generate: func(ctx context.Context, req agent.GenerateRequest) (*agent.GenerateResult, error) {
			return &agent.GenerateResult{Text: text, Latency: time.Millisecond}, nil
		},
	}
}

func failWith(err error) *fakeGateway {
	return &fakeGateway{
		generate: func(ctx context.Context, req agent.GenerateRequest) (*agent.GenerateResult, error) {
			return nil, err
		},
	}
}

type fixture struct {
	svc      *Service
	store    storage.Store
	sessions *session.Manager
	profile  *patient.Profile
}

func newFixture(t *testing.T, gw agent.CompletionGateway) *fixture {
	t.Helper()
	dir := t.TempDir()

	store, err := storage.NewFileStore(dir)
	require.NoError(t, err)
	herbal, err := catalog.Load(dir, catalog.KindHerbal)
	require.NoError(t, err)
	generic, err := catalog.Load(dir, catalog.KindGeneric)
	require.NoError(t, err)

	sessions := session.NewManager()
	p := patient.NewProfile()
	p.Name = "María Quispe"
	p.Age = "45"
	p.Location = "Cusco, Perú"
	require.NoError(t, store.SaveProfile(context.Background(), p))
	sessions.Start(p)

	return &fixture{
		svc:      NewService(store, gw, herbal, generic, sessions, zerolog.Nop()),
		store:    store,
		sessions: sessions,
		profile:  p,
	}
}

func TestSubmitRequiresSession(t *testing.T) {
	f := newFixture(t, respondWith("ok"))
	f.sessions.End()

	_, err := f.svc.Submit(context.Background(), Input{Type: history.TypeGeneral, Text: "hola"})
	assert.ErrorIs(t, err, session.ErrNoActiveSession)
}

func TestSubmitRejectsInvalidInput(t *testing.T) {
	f := newFixture(t, respondWith("ok"))
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, Input{Type: history.TypeGeneral, Text: ""})
	assert.Error(t, err)

	_, err = f.svc.Submit(ctx, Input{Type: history.TypeDailyCheckin, Text: "hola"})
	assert.Error(t, err, "check-ins go through SubmitCheckin, not Submit")

	_, err = f.svc.Submit(ctx, Input{Type: history.Type("bogus"), Text: "hola"})
	assert.Error(t, err)
}

func TestSubmitCommitsChatConsultation(t *testing.T) {
	f := newFixture(t, respondWith("Descansa y toma líquidos."))
	ctx := context.Background()

	entry, err := f.svc.Submit(ctx, Input{Type: history.TypeGeneral, Text: "Tengo tos seca"})
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, history.TypeGeneral, entry.Type)
	assert.Equal(t, "Tengo tos seca", entry.UserInput)
	assert.Equal(t, "Descansa y toma líquidos.", entry.AIResponse)
	assert.Empty(t, entry.AssessmentLevel)

	// Entry carries the transcript snapshot; the live transcript grew by
	// the same two turns.
	require.Len(t, entry.ChatHistory, 2)
	assert.Equal(t, "user", entry.ChatHistory[0].Role)
	assert.Equal(t, "assistant", entry.ChatHistory[1].Role)
	assert.Len(t, f.sessions.Transcript(), 2)

	stored, err := f.store.LoadAll(ctx, f.profile.UserID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, entry.ID, stored[0].ID)

	// Second turn snapshots the full conversation so far.
	entry2, err := f.svc.Submit(ctx, Input{Type: history.TypeGeneral, Text: "¿Y si no mejora?"})
	require.NoError(t, err)
	assert.Len(t, entry2.ChatHistory, 4)
	assert.Len(t, f.sessions.Transcript(), 4)
}

func TestSubmitImagePlaceholderInSnapshot(t *testing.T) {
	f := newFixture(t, respondWith("Parece una irritación leve."))
	ctx := context.Background()

	entry, err := f.svc.Submit(ctx, Input{
		Type:        history.TypeMedicalEvaluation,
		Text:        "Me salió esta mancha",
		ImageBase64: "aW1hZ2Vu",
	})
	require.NoError(t, err)
	require.Len(t, entry.ChatHistory, 2)
	assert.Equal(t, history.ImagePlaceholder, entry.ChatHistory[0].Image,
		"committed snapshot must not embed raw image data")

	// The live transcript keeps the real image for the ongoing chat.
	live := f.sessions.Transcript()
	require.Len(t, live, 2)
	assert.Equal(t, "aW1hZ2Vu", live[0].Image)
}

func TestSubmitEmergencyClassifiesSeverity(t *testing.T) {
	cases := []struct {
		response string
		want     string
	}{
		{"🔴 Esto es una EMERGENCIA, acuda al centro de salud", "EMERGENCIA"},
		{"Recomendamos atención 🟡 URGENTE en las próximas horas", "URGENTE"},
		{"Descansa y toma líquidos", "LEVE"},
	}
	for _, tc := range cases {
		f := newFixture(t, respondWith(tc.response))
		entry, err := f.svc.Submit(context.Background(), Input{
			Type: history.TypeEmergency,
			Text: "dolor fuerte en el pecho",
		})
		require.NoError(t, err)
		assert.Equal(t, tc.want, entry.AssessmentLevel)
		assert.Equal(t, "EMERGENCIA: dolor fuerte en el pecho", entry.UserInput)
		assert.Empty(t, entry.ChatHistory, "emergency consultations are one-shot")
		assert.Empty(t, f.sessions.Transcript())
	}
}

func TestSubmitGatewayFailureCommitsNothing(t *testing.T) {
	f := newFixture(t, failWith(errors.New("inference endpoint unreachable")))
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, Input{Type: history.TypeGeneral, Text: "hola"})
	require.Error(t, err)

	stored, err := f.store.LoadAll(ctx, f.profile.UserID)
	require.NoError(t, err)
	assert.Empty(t, stored)
	assert.Empty(t, f.sessions.Transcript(), "failed consultation must not extend the transcript")
}

func TestSubmitCheckinPersistsAndAnalyzes(t *testing.T) {
	f := newFixture(t, respondWith("Buen nivel de hidratación, sigue así."))
	ctx := context.Background()

	res, err := f.svc.SubmitCheckin(ctx, patient.Checkin{
		WaterIntake: 6, ExerciseMinutes: 20, WellnessScore: 8, SleepQuality: patient.SleepGood,
	})
	require.NoError(t, err)
	assert.Equal(t, time.Now().Format("2006-01-02"), res.Checkin.Date)
	assert.Equal(t, "Buen nivel de hidratación, sigue así.", res.Analysis)
	assert.Empty(t, res.AnalysisWarning)
	require.NotNil(t, res.Entry)
	assert.Equal(t, history.TypeDailyCheckin, res.Entry.Type)
	assert.Contains(t, res.Entry.UserInput, "Agua:6")

	checkins, err := f.svc.Checkins(ctx)
	require.NoError(t, err)
	assert.Len(t, checkins, 1)
}

func TestSubmitCheckinDegradesWhenAnalysisFails(t *testing.T) {
	f := newFixture(t, failWith(errors.New("inference endpoint unreachable")))
	ctx := context.Background()

	res, err := f.svc.SubmitCheckin(ctx, patient.Checkin{
		WaterIntake: 4, ExerciseMinutes: 0, WellnessScore: 5, SleepQuality: patient.SleepRegular,
	})
	require.NoError(t, err, "analysis failure must not fail the check-in")
	assert.NotEmpty(t, res.AnalysisWarning)
	assert.Empty(t, res.Analysis)
	assert.Nil(t, res.Entry)

	checkins, err := f.svc.Checkins(ctx)
	require.NoError(t, err)
	assert.Len(t, checkins, 1, "check-in stays saved")

	entries, err := f.store.LoadAll(ctx, f.profile.UserID)
	require.NoError(t, err)
	assert.Empty(t, entries, "no history entry without an analysis")
}

func TestSubmitCheckinValidation(t *testing.T) {
	f := newFixture(t, respondWith("ok"))
	_, err := f.svc.SubmitCheckin(context.Background(), patient.Checkin{
		WaterIntake: 4, WellnessScore: 11, SleepQuality: patient.SleepGood,
	})
	assert.Error(t, err)
}

func TestHerbalConsult(t *testing.T) {
	f := newFixture(t, respondWith("La manzanilla se prepara en infusión."))
	ctx := context.Background()

	entry, err := f.svc.HerbalConsult(ctx, "manzanilla")
	require.NoError(t, err)
	assert.Equal(t, history.TypeHerbal, entry.Type)
	assert.Contains(t, entry.UserInput, "Manzanilla")

	_, err = f.svc.HerbalConsult(ctx, "no_existe")
	assert.Error(t, err)
}

func TestTrendsNeedsEnoughHistory(t *testing.T) {
	f := newFixture(t, respondWith("Sin tendencias claras."))
	ctx := context.Background()

	_, err := f.svc.Trends(ctx)
	assert.Error(t, err, "fewer than the minimum entries")

	for i := 0; i <= trendMinEntries; i++ {
		_, err := f.svc.Submit(ctx, Input{Type: history.TypeGeneral, Text: "consulta"})
		require.NoError(t, err)
	}

	analysis, err := f.svc.Trends(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Sin tendencias claras.", analysis)

	// Trend analysis is shown, not persisted.
	entries, err := f.store.LoadAll(ctx, f.profile.UserID)
	require.NoError(t, err)
	assert.Len(t, entries, trendMinEntries+1)
}

func TestConsultationLifecycle(t *testing.T) {
	f := newFixture(t, respondWith("🔴 EMERGENCIA: acuda de inmediato"))
	ctx := context.Background()

	// One check-in, one evaluation, one emergency for the same user.
	checkinGW := respondWith("Análisis del día: todo bien.")
	f.svc.gateway = checkinGW
	_, err := f.svc.SubmitCheckin(ctx, patient.Checkin{
		WaterIntake: 5, ExerciseMinutes: 15, WellnessScore: 7, SleepQuality: patient.SleepGood,
	})
	require.NoError(t, err)

	f.svc.gateway = respondWith("Podría ser una infección leve.")
	_, err = f.svc.Submit(ctx, Input{Type: history.TypeMedicalEvaluation, Text: "Tengo fiebre"})
	require.NoError(t, err)

	f.svc.gateway = respondWith("🔴 EMERGENCIA: acuda de inmediato")
	emergency, err := f.svc.Submit(ctx, Input{Type: history.TypeEmergency, Text: "no puedo respirar"})
	require.NoError(t, err)

	// All three in insertion order under the week filter.
	week, err := f.svc.FilteredHistory(ctx, "", history.PeriodWeek)
	require.NoError(t, err)
	require.Len(t, week, 3)
	assert.Equal(t, history.TypeDailyCheckin, week[0].Type)
	assert.Equal(t, history.TypeMedicalEvaluation, week[1].Type)
	assert.Equal(t, history.TypeEmergency, week[2].Type)

	// Type filter narrows to the emergency entry.
	onlyEmergency, err := f.svc.FilteredHistory(ctx, history.TypeEmergency, "")
	require.NoError(t, err)
	require.Len(t, onlyEmergency, 1)
	assert.Equal(t, emergency.ID, onlyEmergency[0].ID)
	assert.Equal(t, "EMERGENCIA", onlyEmergency[0].AssessmentLevel)

	stats, err := f.svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.EmergencyCount)
	assert.Equal(t, 3, stats.LastWeekCount)

	// Clear is idempotent.
	require.NoError(t, f.svc.ClearHistory(ctx))
	require.NoError(t, f.svc.ClearHistory(ctx))
	entries, err := f.store.LoadAll(ctx, f.profile.UserID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestClearTranscriptKeepsHistory(t *testing.T) {
	f := newFixture(t, respondWith("respuesta"))
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, Input{Type: history.TypeGeneral, Text: "hola"})
	require.NoError(t, err)
	require.Len(t, f.sessions.Transcript(), 2)

	require.NoError(t, f.svc.ClearTranscript())
	assert.Empty(t, f.sessions.Transcript())

	entries, err := f.store.LoadAll(ctx, f.profile.UserID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestReachable(t *testing.T) {
	f := newFixture(t, &fakeGateway{reachable: false, generate: nil})
	assert.False(t, f.svc.Reachable(context.Background()))
}
