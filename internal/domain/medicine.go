package domain

import "time"

// ImageAnalysisResult holds what the vision collaborator extracted from a
// single medicine photo. It is produced once per image submission and
// discarded when a new search or capture starts.
type ImageAnalysisResult struct {
	MedicineName     string   `json:"medicineName"`
	AlternativeNames []string `json:"alternativeNames"`
	FullText         string   `json:"fullText"`
	Objects          []string `json:"objects"`
	Logos            []string `json:"logos"`
	Labels           []string `json:"labels"`
}

// DrugLabel is the structured regulatory label record resolved from the
// drug-record collaborator. Raw preserves the upstream result untouched so
// callers that treat the record as opaque keep working when openFDA adds
// fields.
type DrugLabel struct {
	BrandName            string                 `json:"brandName"`
	GenericName          string                 `json:"genericName"`
	Manufacturer         string                 `json:"manufacturer"`
	Purpose              []string               `json:"purpose"`
	IndicationsAndUsage  []string               `json:"indicationsAndUsage"`
	ActiveIngredients    []string               `json:"activeIngredients"`
	InactiveIngredients  []string               `json:"inactiveIngredients"`
	Warnings             []string               `json:"warnings"`
	AdverseReactions     []string               `json:"adverseReactions"`
	DosageAdministration []string               `json:"dosageAndAdministration"`
	Raw                  map[string]interface{} `json:"raw,omitempty"`
	Source               string                 `json:"source"` // "openFDA" or "Cache"
	CachedAt             time.Time              `json:"cachedAt,omitempty"`
}

// ExplanationStatus tracks the lifecycle of the fire-and-forget generation
// step relative to the lookup that started it.
type ExplanationStatus string

const (
	ExplanationPending ExplanationStatus = "pending"
	ExplanationReady   ExplanationStatus = "ready"
	ExplanationFailed  ExplanationStatus = "failed"
	ExplanationStale   ExplanationStatus = "stale"
)

// Explanation is the free-form text produced by the text-generation
// collaborator, plus enough bookkeeping to poll for it.
type Explanation struct {
	Token       string            `json:"token"`
	Status      ExplanationStatus `json:"status"`
	Text        string            `json:"generatedText,omitempty"`
	Error       string            `json:"error,omitempty"`
	CompletedAt time.Time         `json:"completedAt,omitempty"`
}

// LookupRequest seeds one orchestration action: either a typed query or an
// image data URL, never both.
type LookupRequest struct {
	Query    string `json:"query,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// LookupResult is what the orchestration flow returns synchronously: the
// confirmed medicine plus its label record. The explanation arrives later
// under Token.
type LookupResult struct {
	SelectedMedicine string               `json:"selectedMedicine"`
	Analysis         *ImageAnalysisResult `json:"analysis,omitempty"`
	Label            *DrugLabel           `json:"label,omitempty"`
	Token            string               `json:"token"`
	Tabs             TabSet               `json:"tabs"`
}

// TabSet is the four-panel presentation payload. Each panel falls back to a
// literal placeholder when its underlying label field is absent.
type TabSet struct {
	Overview           TabPanel `json:"overview"`
	Ingredients        TabPanel `json:"ingredients"`
	SideEffects        TabPanel `json:"sideEffects"`
	HerbalAlternatives TabPanel `json:"herbalAlternatives"`
}

// TabPanel is one rendered panel.
type TabPanel struct {
	Title   string `json:"title"`
	Body    string `json:"body"`
	Loading bool   `json:"loading"`
}
