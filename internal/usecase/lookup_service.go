package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/medilingo/backend/internal/domain"
)

// Package-level compiled regex patterns for performance
var (
	nonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9\s]`)
	multipleSpacesRegex  = regexp.MustCompile(`\s+`)
)

// LookupServiceConfig holds configuration for the lookup service
type LookupServiceConfig struct {
	LabelCacheTTL      time.Duration
	ExplanationTTL     time.Duration
	EnableDebugLogging bool
}

// LookupService owns the orchestration flow: vision analysis for image
// seeds, brand confirmation, label fetch, and the decoupled explanation
// generation. One action at a time: starting a new lookup invalidates the
// previous action's token and cancels its in-flight generation.
type LookupService struct {
	cache     domain.CacheRepository
	vision    domain.VisionClient
	drugs     domain.DrugClient
	generator domain.TextGenerator
	settings  domain.SettingsStore
	extractor *NameExtractor

	labelTTL       time.Duration
	explanationTTL time.Duration

	mu            sync.Mutex
	currentToken  string
	cancelCurrent context.CancelFunc
}

// NewLookupService creates a new lookup service with dependencies
func NewLookupService(
	cache domain.CacheRepository,
	vision domain.VisionClient,
	drugs domain.DrugClient,
	generator domain.TextGenerator,
	settings domain.SettingsStore,
	config LookupServiceConfig,
) *LookupService {
	labelTTL := config.LabelCacheTTL
	if labelTTL == 0 {
		labelTTL = 24 * time.Hour
	}
	explanationTTL := config.ExplanationTTL
	if explanationTTL == 0 {
		explanationTTL = time.Hour
	}

	return &LookupService{
		cache:          cache,
		vision:         vision,
		drugs:          drugs,
		generator:      generator,
		settings:       settings,
		extractor:      NewNameExtractor(config.EnableDebugLogging),
		labelTTL:       labelTTL,
		explanationTTL: explanationTTL,
	}
}

// Lookup runs one user action end to end. The returned result carries the
// confirmed medicine and its label; the explanation is generated in the
// background and retrievable under result.Token once ready.
//
// Ordering: confirmation and label fetch are strictly sequential and both
// are hard dependencies. Generation is fire-and-forget: its failure never
// disturbs the label data already returned.
func (s *LookupService) Lookup(ctx context.Context, request *domain.LookupRequest) (*domain.LookupResult, error) {
	if request == nil {
		return nil, domain.ErrInvalidRequest
	}

	query := strings.TrimSpace(request.Query)
	if query == "" && request.ImageURL == "" {
		return nil, fmt.Errorf("%w: a query or an image is required", domain.ErrInvalidRequest)
	}

	var analysis *domain.ImageAnalysisResult
	name := query

	// Step 1: image seeds go through vision analysis first
	if request.ImageURL != "" {
		annotation, err := s.vision.Annotate(ctx, request.ImageURL)
		if err != nil {
			return nil, err
		}
		analysis = s.extractor.BuildAnalysis(annotation)
		name = analysis.MedicineName
		if name == "" {
			return nil, fmt.Errorf("%w: no medicine name detected in image", domain.ErrMedicineNotFound)
		}
	}

	// Step 2: confirm the canonical brand name (hard dependency)
	brand, err := s.drugs.ConfirmBrand(ctx, name)
	if err != nil {
		return nil, err
	}

	// Step 3: fetch the label record, cache-first
	label, err := s.getLabel(ctx, brand)
	if err != nil {
		return nil, err
	}

	// This action is now going to produce a visible result; any previous
	// action's pending generation is stale from here on.
	token, genCtx := s.beginAction()

	// Step 4: fire-and-forget generation, decoupled from the caller
	s.recordExplanation(&domain.Explanation{Token: token, Status: domain.ExplanationPending})
	go s.generateExplanation(genCtx, token, label)

	return &domain.LookupResult{
		SelectedMedicine: brand,
		Analysis:         analysis,
		Label:            label,
		Token:            token,
		Tabs:             BuildTabs(label, false),
	}, nil
}

// Explanation returns the generation record for a token, or ErrCacheMiss if
// the token is unknown or expired.
func (s *LookupService) Explanation(ctx context.Context, token string) (*domain.Explanation, error) {
	value, err := s.cache.Get(ctx, explanationKey(token))
	if err != nil {
		return nil, err
	}

	explanation, ok := value.(*domain.Explanation)
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	return explanation, nil
}

// beginAction allocates a fresh request token and cancels the previous
// action's background work. The generation context derives from Background,
// not the HTTP request, so it outlives the response and dies only when a
// newer action supersedes it.
func (s *LookupService) beginAction() (string, context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancelCurrent != nil {
		s.cancelCurrent()
	}

	token := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())
	s.currentToken = token
	s.cancelCurrent = cancel

	return token, ctx
}

// isCurrent reports whether the token still belongs to the active action.
func (s *LookupService) isCurrent(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentToken == token
}

// generateExplanation runs step 4: build the prompt from the label and the
// user's current settings, call the generator, and record the outcome.
// Results arriving for a superseded token are discarded.
func (s *LookupService) generateExplanation(ctx context.Context, token string, label *domain.DrugLabel) {
	settings, err := s.settings.Read(ctx)
	if err != nil {
		log.Printf("[LOOKUP] Settings read failed, using defaults: %v", err)
		settings = domain.DefaultSettings()
	}

	prompt := BuildPrompt(label, settings)
	text, err := s.generator.GenerateText(ctx, prompt)

	if !s.isCurrent(token) {
		log.Printf("[LOOKUP] Discarding stale generation result for token %s", token)
		s.recordExplanation(&domain.Explanation{Token: token, Status: domain.ExplanationStale})
		return
	}

	if err != nil {
		log.Printf("[LOOKUP] Generation failed for token %s: %v", token, err)
		s.recordExplanation(&domain.Explanation{
			Token:       token,
			Status:      domain.ExplanationFailed,
			Error:       err.Error(),
			CompletedAt: time.Now(),
		})
		return
	}

	s.recordExplanation(&domain.Explanation{
		Token:       token,
		Status:      domain.ExplanationReady,
		Text:        text,
		CompletedAt: time.Now(),
	})
}

func (s *LookupService) recordExplanation(explanation *domain.Explanation) {
	// Cache writes never block or fail the flow
	if err := s.cache.Set(context.Background(), explanationKey(explanation.Token), explanation, s.explanationTTL); err != nil {
		log.Printf("[LOOKUP] Failed to record explanation for token %s: %v", explanation.Token, err)
	}
}

// getLabel fetches the label record, preferring the cache.
func (s *LookupService) getLabel(ctx context.Context, brand string) (*domain.DrugLabel, error) {
	key := labelKey(brand)

	if value, err := s.cache.Get(ctx, key); err == nil {
		if cached, ok := value.(*domain.DrugLabel); ok {
			copied := *cached
			copied.Source = "Cache"
			return &copied, nil
		}
	} else if !errors.Is(err, domain.ErrCacheMiss) {
		log.Printf("[LOOKUP] Label cache error for %q: %v", brand, err)
	}

	label, err := s.drugs.GetLabel(ctx, brand)
	if err != nil {
		return nil, err
	}

	label.CachedAt = time.Now()
	if err := s.cache.Set(ctx, key, label, s.labelTTL); err != nil {
		// Log but don't fail if caching fails
		log.Printf("[LOOKUP] Failed to cache label for %q: %v", brand, err)
	}

	return label, nil
}

// labelKey creates a normalized cache key from a brand name.
// Format: "label:{normalized_brand}"
func labelKey(brand string) string {
	return "label:" + normalizeForCacheKey(brand)
}

func explanationKey(token string) string {
	return "explanation:" + token
}

// normalizeForCacheKey normalizes a string for use as cache key component.
// Converts to lowercase, removes special characters, and trims whitespace.
func normalizeForCacheKey(s string) string {
	if s == "" {
		return ""
	}
	result := strings.ToLower(s)
	result = nonAlphanumericRegex.ReplaceAllString(result, "")
	result = multipleSpacesRegex.ReplaceAllString(result, " ")
	return strings.TrimSpace(result)
}
