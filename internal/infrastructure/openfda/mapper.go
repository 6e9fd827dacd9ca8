package openfda

import "github.com/medilingo/backend/internal/domain"

// mapToDrugLabel converts an openFDA label result to the domain record.
// Raw keeps the upstream fields intact for callers that pass the record
// through untouched.
func mapToDrugLabel(r *labelResult) *domain.DrugLabel {
	label := &domain.DrugLabel{
		Purpose:              r.Purpose,
		IndicationsAndUsage:  r.IndicationsAndUsage,
		ActiveIngredients:    r.ActiveIngredient,
		InactiveIngredients:  r.InactiveIngredient,
		Warnings:             r.Warnings,
		AdverseReactions:     r.AdverseReactions,
		DosageAdministration: r.DosageAndAdministration,
		Source:               "openFDA",
	}

	if len(r.OpenFDA.BrandName) > 0 {
		label.BrandName = r.OpenFDA.BrandName[0]
	}
	if len(r.OpenFDA.GenericName) > 0 {
		label.GenericName = r.OpenFDA.GenericName[0]
	}
	if len(r.OpenFDA.ManufacturerName) > 0 {
		label.Manufacturer = r.OpenFDA.ManufacturerName[0]
	}

	label.Raw = map[string]interface{}{
		"id":                        r.ID,
		"purpose":                   r.Purpose,
		"indications_and_usage":     r.IndicationsAndUsage,
		"active_ingredient":         r.ActiveIngredient,
		"inactive_ingredient":       r.InactiveIngredient,
		"warnings":                  r.Warnings,
		"adverse_reactions":         r.AdverseReactions,
		"dosage_and_administration": r.DosageAndAdministration,
	}

	return label
}
