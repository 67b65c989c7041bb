package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"rural-health-assistant/internal/history"
	"rural-health-assistant/internal/patient"
)

// PromptContext is the patient context assembled for a completion call:
// the active profile, the most recent history entries for the variant, and
// the catalog key lists.
type PromptContext struct {
	Profile       *patient.Profile
	RecentHistory []history.Entry
	HerbalKeys    []string
	GenericKeys   []string
}

func jsonDump(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// HealthAssistantPrompt is the general assistant variant, fed the profile,
// the last five history entries and the available remedy keys.
func HealthAssistantPrompt(pc PromptContext) string {
	return fmt.Sprintf(`Eres un asistente de salud especializado para comunidades rurales de Sudamérica con acceso limitado a servicios médicos.

## Contexto del Usuario:
- Información personal: %s
- Historial médico: %s
- Plantas medicinales disponibles: %s
- Medicamentos genéricos disponibles: %s

## Tu Rol Principal:
EVALUAR el estado de salud considerando el perfil completo del usuario
PROPORCIONAR orientación médica básica adaptada al contexto rural
RECOMENDAR tratamientos accesibles priorizando plantas medicinales locales
IDENTIFICAR niveles de urgencia médica
DOCUMENTAR cada consulta para seguimiento

## Principios:
- Usa español simple y claro
- Sé empático y culturalmente sensible
- Considera limitaciones de recursos
- NUNCA diagnostiques sin confirmación médica
- Prioriza la seguridad del paciente`,
		jsonDump(pc.Profile), jsonDump(pc.RecentHistory), jsonDump(pc.HerbalKeys), jsonDump(pc.GenericKeys))
}

// EmergencyPrompt is the triage variant. Responses are expected to carry
// the 🔴/🟡/🟢 protocol markers the classifier looks for.
func EmergencyPrompt() string {
	return `Eres un evaluador de emergencias médicas para áreas rurales.

## Protocolo de Evaluación Rápida:
🔴 EMERGENCIA VITAL: Instrucciones inmediatas + transporte urgente
🟡 URGENTE NO VITAL: Estabilización + atención en 24h
🟢 NO URGENTE: Cuidados en casa + seguimiento

En emergencias, sé directo y claro. Cada minuto cuenta.`
}

// DailyCheckinPrompt is the check-in analysis variant.
func DailyCheckinPrompt() string {
	return `Analiza los datos del check-in diario para identificar patrones y riesgos.

## Métricas a Evaluar:
1. Hidratación: Meta mínima 8 vasos/día
2. Actividad física: Recomendado 30 min/día
3. Bienestar general: Tendencias emocionales

Identifica patrones preocupantes y da recomendaciones personalizadas con tono motivador.`
}

// PatientSummaryPrompt is the clinical-summary variant used by the report
// generator.
func PatientSummaryPrompt() string {
	return `Eres un médico especialista experimentado que revisa historiales médicos para generar resúmenes clínicos precisos y útiles. Tu análisis debe ser profesional, basado en evidencia, y proporcionar insights valiosos tanto para el paciente como para otros profesionales de la salud.`
}

// EmergencyUserPrompt wraps reported emergency symptoms for the triage
// variant.
func EmergencyUserPrompt(symptoms string) string {
	return fmt.Sprintf(`SÍNTOMAS DE EMERGENCIA REPORTADOS: %s

Evalúa INMEDIATAMENTE el nivel de urgencia y proporciona instrucciones de primeros auxilios.`, symptoms)
}

// CheckinUserPrompt renders a check-in for analysis.
func CheckinUserPrompt(c patient.Checkin) string {
	return fmt.Sprintf(`Datos del check-in diario:
- Hidratación: %d vasos (meta: 8)
- Ejercicio: %d minutos (meta: 30)
- Bienestar: %d/10
- Sueño: %s
- Notas: %s

Analiza estos datos y proporciona recomendaciones personalizadas.`,
		c.WaterIntake, c.ExerciseMinutes, c.WellnessScore, c.SleepQuality, c.DailyNotes)
}

// TrendUserPrompt renders the most recent entries for trend analysis.
func TrendUserPrompt(recent []history.Entry) string {
	return fmt.Sprintf(`Analiza las siguientes consultas médicas de los últimos registros:
%s

Identifica patrones, tendencias preocupantes y mejoras en la salud del usuario.`, jsonDump(recent))
}

// SummaryUserPrompt builds the clinical-summary request from the full
// profile, aggregate consultation-type counts and the most recent entries.
// The five numbered sections are mandated by the report layout.
func SummaryUserPrompt(profile *patient.Profile, typeCounts map[history.Type]int, recent []history.Entry) string {
	orNone := func(items []string, none string) string {
		if len(items) == 0 {
			return none
		}
		return strings.Join(items, ", ")
	}
	total := 0
	for _, n := range typeCounts {
		total += n
	}

	return fmt.Sprintf(`Como médico especialista, analiza el siguiente perfil completo del paciente y genera un resumen profesional de su estado de salud actual:

DATOS DEL PACIENTE:
- Nombre: %s
- Edad: %s años
- Ubicación: %s
- Condiciones crónicas: %s
- Alergias: %s
- Medicamentos actuales: %s

ESTADÍSTICAS DE CONSULTAS:
- Total de consultas: %d
- Tipos de consultas: %s

HISTORIAL MÉDICO RECIENTE:
%s

Por favor, proporciona un resumen médico profesional que incluya:
1. ESTADO DE SALUD ACTUAL: Evaluación general basada en las consultas recientes
2. PATRONES IDENTIFICADOS: Síntomas recurrentes, tendencias preocupantes o mejoras
3. FACTORES DE RIESGO: Elementos que requieren atención o monitoreo
4. RECOMENDACIONES PRIORITARIAS: Acciones inmediatas y seguimiento sugerido
5. OBSERVACIONES CLÍNICAS: Notas importantes para el médico tratante

Mantén un tono profesional y médico, pero accesible para el paciente.`,
		profile.Name, profile.Age, profile.Location,
		orNone(profile.ChronicConditions, "Ninguna reportada"),
		orNone(profile.Allergies, "Ninguna reportada"),
		orNone(profile.CurrentMedications, "Ninguno reportado"),
		total, jsonDump(typeCounts), jsonDump(recent))
}

// HerbalUserPrompt is the canned quick-consult question about a catalog
// entry.
func HerbalUserPrompt(plantName string) string {
	return fmt.Sprintf("Cuéntame más sobre los usos medicinales de %s para mi condición de salud actual.", plantName)
}
