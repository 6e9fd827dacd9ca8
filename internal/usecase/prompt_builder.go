package usecase

import (
	"fmt"
	"strings"

	"github.com/medilingo/backend/internal/domain"
)

// BuildPrompt composes the text-generation input from the label record and
// the user's current preferences. The label fields go in verbatim; the
// trailing instructions adjust language and clarity.
func BuildPrompt(label *domain.DrugLabel, settings domain.UserSettings) string {
	var b strings.Builder

	name := label.BrandName
	if name == "" {
		name = label.GenericName
	}

	fmt.Fprintf(&b, "Medicine: %s", name)
	if label.GenericName != "" && label.GenericName != name {
		fmt.Fprintf(&b, " (%s)", label.GenericName)
	}
	if label.Manufacturer != "" {
		fmt.Fprintf(&b, ", manufactured by %s", label.Manufacturer)
	}
	b.WriteString("\n")

	writeSection(&b, "Purpose", label.Purpose)
	writeSection(&b, "Indications and usage", label.IndicationsAndUsage)
	writeSection(&b, "Active ingredients", label.ActiveIngredients)
	writeSection(&b, "Warnings", label.Warnings)
	writeSection(&b, "Side effects", label.AdverseReactions)
	writeSection(&b, "Dosage", label.DosageAdministration)

	fmt.Fprintf(&b, "\nExplain this medicine for a %s reader, age %s, in %s.",
		settings.Sex, settings.Age.Range, settings.Language.Name)
	fmt.Fprintf(&b, " Clarity level: %s.", settings.Clarity.Label)

	if len(settings.Conditions) > 0 {
		labels := make([]string, len(settings.Conditions))
		for i, id := range settings.Conditions {
			labels[i] = domain.ConditionLabel(id)
		}
		fmt.Fprintf(&b, " The reader has these conditions: %s. Mention anything they should watch out for.",
			strings.Join(labels, ", "))
	}

	return b.String()
}

func writeSection(b *strings.Builder, title string, lines []string) {
	if len(lines) == 0 {
		return
	}
	fmt.Fprintf(b, "%s: %s\n", title, strings.Join(lines, " "))
}
