package triage

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		text string
		want Severity
	}{
		{"red glyph", "🔴 Esto es una EMERGENCIA", SeverityEmergency},
		{"emergency word only", "esto es una emergencia médica", SeverityEmergency},
		{"red glyph without keyword", "🔴 Busca transporte inmediato", SeverityEmergency},
		{"yellow glyph with urgent", "Recomendamos atención 🟡 URGENTE", SeverityUrgent},
		{"urgent word lowercase", "necesita atención urgente en 24h", SeverityUrgent},
		{"red outranks yellow", "🔴 EMERGENCIA, no solo 🟡 URGENTE", SeverityEmergency},
		{"no markers", "Descansa y toma líquidos", SeverityMild},
		{"green glyph", "🟢 Cuidados en casa", SeverityMild},
		{"empty", "", SeverityMild},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.text); got != tc.want {
				t.Errorf("Classify(%q) = %v, want %v", tc.text, got, tc.want)
			}
		})
	}
}

func TestSeverityString(t *testing.T) {
	if SeverityEmergency.String() != "EMERGENCIA" {
		t.Errorf("unexpected label %q", SeverityEmergency.String())
	}
	if SeverityUrgent.String() != "URGENTE" {
		t.Errorf("unexpected label %q", SeverityUrgent.String())
	}
	if SeverityMild.String() != "LEVE" {
		t.Errorf("unexpected label %q", SeverityMild.String())
	}
}

func TestSeverityOrdering(t *testing.T) {
	if !(SeverityMild < SeverityUrgent && SeverityUrgent < SeverityEmergency) {
		t.Error("severity tiers must be ordered")
	}
}
