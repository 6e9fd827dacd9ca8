package usecase

import (
	"strings"

	"github.com/medilingo/backend/internal/domain"
)

// Placeholder text shown when a panel's underlying label field is absent.
const (
	placeholderOverview    = "No overview information available"
	placeholderIngredients = "No ingredients information available"
	placeholderSideEffects = "No side effects information available"
)

// herbalAlternativesNotice is fixed copy: herbal data has no upstream source,
// so the panel always carries the same advisory text.
var herbalAlternativesNotice = []string{
	"No herbal alternatives information available at this time.",
	"Please consult with a healthcare provider before considering any alternatives.",
}

// BuildTabs maps the current lookup state onto the four display panels.
// Pure function: each panel independently falls back to its placeholder when
// the label or the relevant field is missing, and no panel triggers any
// further lookup.
func BuildTabs(label *domain.DrugLabel, isLoading bool) domain.TabSet {
	if isLoading {
		return domain.TabSet{
			Overview:           domain.TabPanel{Title: "Overview", Loading: true},
			Ingredients:        domain.TabPanel{Title: "Ingredients", Loading: true},
			SideEffects:        domain.TabPanel{Title: "Side Effects", Loading: true},
			HerbalAlternatives: domain.TabPanel{Title: "Herbal Alternatives", Loading: true},
		}
	}

	return domain.TabSet{
		Overview: domain.TabPanel{
			Title: "Overview",
			Body:  overviewBody(label),
		},
		Ingredients: domain.TabPanel{
			Title: "Ingredients",
			Body:  ingredientsBody(label),
		},
		SideEffects: domain.TabPanel{
			Title: "Side Effects",
			Body:  sideEffectsBody(label),
		},
		HerbalAlternatives: domain.TabPanel{
			Title: "Herbal Alternatives",
			Body:  strings.Join(herbalAlternativesNotice, " "),
		},
	}
}

func overviewBody(label *domain.DrugLabel) string {
	if label == nil {
		return placeholderOverview
	}
	parts := append([]string{}, label.Purpose...)
	parts = append(parts, label.IndicationsAndUsage...)
	if len(parts) == 0 {
		return placeholderOverview
	}
	return strings.Join(parts, " ")
}

func ingredientsBody(label *domain.DrugLabel) string {
	if label == nil {
		return placeholderIngredients
	}
	var parts []string
	if len(label.ActiveIngredients) > 0 {
		parts = append(parts, "Active: "+strings.Join(label.ActiveIngredients, "; "))
	}
	if len(label.InactiveIngredients) > 0 {
		parts = append(parts, "Inactive: "+strings.Join(label.InactiveIngredients, "; "))
	}
	if len(parts) == 0 {
		return placeholderIngredients
	}
	return strings.Join(parts, " ")
}

func sideEffectsBody(label *domain.DrugLabel) string {
	if label == nil || len(label.AdverseReactions) == 0 {
		return placeholderSideEffects
	}
	return strings.Join(label.AdverseReactions, " ")
}
