package catalog

// Default catalog contents, written out on first load. Sourced from
// traditional South American remedies and common generic medicines.
func defaults(kind Kind) map[string]Entry {
	if kind == KindHerbal {
		return map[string]Entry{
			"manzanilla": {
				Name:              "Manzanilla (Chamomile)",
				ScientificName:    "Matricaria chamomilla",
				Uses:              []string{"Digestive problems", "Anxiety", "Sleep disorders", "Skin irritation"},
				Preparation:       "Tea: 1 tsp dried flowers per cup of hot water, steep 5-10 minutes",
				Contraindications: []string{"Pregnancy (large amounts)", "Allergy to asteraceae family"},
				Region:            "Available throughout South America",
			},
			"eucalipto": {
				Name:              "Eucalipto (Eucalyptus)",
				ScientificName:    "Eucalyptus globulus",
				Uses:              []string{"Respiratory problems", "Cough", "Congestion", "Wound healing"},
				Preparation:       "Inhalation: 5-10 drops oil in hot water. Tea: 2-3 leaves per cup",
				Contraindications: []string{"Not for children under 2", "Not for internal use in pregnancy"},
				Region:            "Common in Andean regions",
			},
			"hierba_buena": {
				Name:              "Hierbabuena (Spearmint)",
				ScientificName:    "Mentha spicata",
				Uses:              []string{"Digestive issues", "Nausea", "Headaches", "Common cold"},
				Preparation:       "Tea: 1 tbsp fresh leaves or 1 tsp dried per cup, steep 5 minutes",
				Contraindications: []string{"GERD (may worsen symptoms)", "Hiatal hernia"},
				Region:            "Grows well in most South American climates",
			},
			"aloe_vera": {
				Name:              "Sábila (Aloe Vera)",
				ScientificName:    "Aloe barbadensis",
				Uses:              []string{"Burns", "Skin wounds", "Constipation", "Digestive inflammation"},
				Preparation:       "Topical: Apply gel directly. Internal: 1-2 tbsp gel (pure) in water",
				Contraindications: []string{"Pregnancy", "Breastfeeding", "Intestinal obstruction"},
				Region:            "Thrives in dry climates across South America",
			},
			"cola_de_caballo": {
				Name:              "Cola de Caballo (Horsetail)",
				ScientificName:    "Equisetum arvense",
				Uses:              []string{"Kidney problems", "Urinary tract infections", "Wound healing", "Bone health"},
				Preparation:       "Tea: 2-3 tsp dried herb per cup, boil 5 minutes, steep 10 minutes",
				Contraindications: []string{"Pregnancy", "Heart/kidney disease", "Low potassium"},
				Region:            "Found in moist areas throughout South America",
			},
		}
	}

	return map[string]Entry{
		"paracetamol": {
			Name:              "Paracetamol (Acetaminofén)",
			Uses:              []string{"Fever", "Mild to moderate pain", "Headache"},
			Dosage:            "Adults: 500-1000mg every 4-6 hours (max 4g/day)",
			Contraindications: []string{"Severe liver disease", "Alcohol abuse"},
			SideEffects:       []string{"Rare: liver damage with overdose"},
			Availability:      "Widely available",
		},
		"ibuprofeno": {
			Name:              "Ibuprofeno",
			Uses:              []string{"Pain", "Inflammation", "Fever"},
			Dosage:            "Adults: 200-400mg every 4-6 hours (max 1200mg/day)",
			Contraindications: []string{"Stomach ulcers", "Kidney disease", "Heart disease"},
			SideEffects:       []string{"Stomach irritation", "Nausea", "Dizziness"},
			Availability:      "Common in pharmacies",
		},
		"omeprazol": {
			Name:              "Omeprazol",
			Uses:              []string{"Stomach acid reduction", "Gastritis", "GERD"},
			Dosage:            "Adults: 20mg once daily before meals",
			Contraindications: []string{"Known allergy to proton pump inhibitors"},
			SideEffects:       []string{"Headache", "Nausea", "Diarrhea"},
			Availability:      "Prescription or OTC",
		},
	}
}
