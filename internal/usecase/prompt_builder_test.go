package usecase

import (
	"strings"
	"testing"

	"github.com/medilingo/backend/internal/domain"
)

func TestBuildPrompt(t *testing.T) {
	label := &domain.DrugLabel{
		BrandName:            "TYLENOL",
		GenericName:          "ACETAMINOPHEN",
		Manufacturer:         "Johnson & Johnson",
		Purpose:              []string{"Pain reliever/fever reducer"},
		IndicationsAndUsage:  []string{"temporarily relieves minor aches"},
		ActiveIngredients:    []string{"Acetaminophen 500 mg"},
		Warnings:             []string{"Liver warning"},
		AdverseReactions:     []string{"nausea"},
		DosageAdministration: []string{"take 2 tablets every 6 hours"},
	}

	t.Run("includes label fields and reader instructions", func(t *testing.T) {
		prompt := BuildPrompt(label, domain.DefaultSettings())

		for _, want := range []string{
			"Medicine: TYLENOL (ACETAMINOPHEN), manufactured by Johnson & Johnson",
			"Purpose: Pain reliever/fever reducer",
			"Indications and usage: temporarily relieves minor aches",
			"Active ingredients: Acetaminophen 500 mg",
			"Warnings: Liver warning",
			"Side effects: nausea",
			"Dosage: take 2 tablets every 6 hours",
			"Explain this medicine for a female reader, age 18-30, in English.",
			"Clarity level: Simple - everyday language.",
		} {
			if !strings.Contains(prompt, want) {
				t.Errorf("prompt missing %q\nprompt:\n%s", want, prompt)
			}
		}
	})

	t.Run("omits empty sections", func(t *testing.T) {
		sparse := &domain.DrugLabel{BrandName: "TYLENOL"}
		prompt := BuildPrompt(sparse, domain.DefaultSettings())

		for _, unwanted := range []string{"Purpose:", "Warnings:", "Side effects:", "Dosage:"} {
			if strings.Contains(prompt, unwanted) {
				t.Errorf("prompt contains %q for a sparse label\nprompt:\n%s", unwanted, prompt)
			}
		}
	})

	t.Run("falls back to generic name", func(t *testing.T) {
		generic := &domain.DrugLabel{GenericName: "ACETAMINOPHEN"}
		prompt := BuildPrompt(generic, domain.DefaultSettings())

		if !strings.Contains(prompt, "Medicine: ACETAMINOPHEN\n") {
			t.Errorf("prompt = %q, want generic name without a parenthetical", prompt)
		}
	})

	t.Run("condition IDs surface as display labels", func(t *testing.T) {
		settings := domain.DefaultSettings()
		settings.Conditions = []string{"pregnancy", "asthma"}
		settings.Language = domain.Language{ID: "es", Name: "Spanish"}
		settings.Clarity = domain.ClarityLevel{ID: "detailed", Label: "Detailed - full medical terminology"}

		prompt := BuildPrompt(label, settings)

		if !strings.Contains(prompt, "in Spanish.") {
			t.Errorf("prompt missing language instruction:\n%s", prompt)
		}
		if !strings.Contains(prompt, "The reader has these conditions: Pregnancy, Asthma.") {
			t.Errorf("prompt missing conditions:\n%s", prompt)
		}
		if !strings.Contains(prompt, "Clarity level: Detailed - full medical terminology.") {
			t.Errorf("prompt missing clarity level:\n%s", prompt)
		}
	})
}
