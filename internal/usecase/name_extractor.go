package usecase

import (
	"log"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/medilingo/backend/internal/domain"
)

// Package-level compiled regex pattern for performance
var pureDigitRegex = regexp.MustCompile(`^\d+$`)

// medicineIndicators are common packaging terms that never name a medicine.
// This list is a fixed policy: it is matched against whole lowercased OCR
// tokens, English-only, and is deliberately left as-is for non-English labels.
var medicineIndicators = map[string]bool{
	"mg":                true,
	"tablet":            true,
	"capsule":           true,
	"tablets":           true,
	"capsules":          true,
	"prescription":      true,
	"drug":              true,
	"medicine":          true,
	"pharmaceutical":    true,
	"dose":              true,
	"dosage":            true,
	"active ingredient": true,
}

// maxCandidates is how many surviving OCR tokens are kept: the first becomes
// the medicine name, the rest become alternatives.
const maxCandidates = 3

// NameExtractor picks the best-guess medicine name out of OCR text blocks
type NameExtractor struct {
	enableDebugLogging bool
}

// NewNameExtractor creates a new name extractor
func NewNameExtractor(enableDebugLogging bool) *NameExtractor {
	return &NameExtractor{
		enableDebugLogging: enableDebugLogging,
	}
}

// ExtractCandidates filters OCR text blocks down to medicine-name candidates.
// A block is excluded when it is a packaging indicator, a pure-digit token,
// or has length <= 2. The first survivor is the name, the remaining (up to
// two) are alternatives.
func (e *NameExtractor) ExtractCandidates(textBlocks []string) (string, []string) {
	var candidates []string

	for _, block := range textBlocks {
		if len(candidates) == maxCandidates {
			break
		}

		lower := strings.ToLower(block)
		if medicineIndicators[lower] {
			continue
		}
		if pureDigitRegex.MatchString(block) {
			continue
		}
		// Character count, not bytes: 2-character non-ASCII tokens are
		// just as uninformative as 2-letter ASCII ones.
		if utf8.RuneCountInString(block) <= 2 {
			continue
		}

		candidates = append(candidates, block)
	}

	if e.enableDebugLogging {
		log.Printf("[EXTRACT] Input blocks: %d, candidates: %v", len(textBlocks), candidates)
	}

	if len(candidates) == 0 {
		return "", nil
	}
	return candidates[0], candidates[1:]
}

// BuildAnalysis assembles the image-analysis record from one vision
// annotation.
func (e *NameExtractor) BuildAnalysis(annotation *domain.VisionAnnotation) *domain.ImageAnalysisResult {
	name, alternatives := e.ExtractCandidates(annotation.TextBlocks)

	return &domain.ImageAnalysisResult{
		MedicineName:     name,
		AlternativeNames: alternatives,
		FullText:         annotation.FullText,
		Objects:          annotation.Objects,
		Logos:            annotation.Logos,
		Labels:           annotation.Labels,
	}
}
