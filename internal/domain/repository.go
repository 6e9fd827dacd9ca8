package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// VisionClient defines the interface for the OCR/object-detection collaborator
type VisionClient interface {
	Annotate(ctx context.Context, imageDataURL string) (*VisionAnnotation, error)
}

// VisionAnnotation is the raw output of one vision call before the
// candidate-name filter runs.
type VisionAnnotation struct {
	FullText   string
	TextBlocks []string
	Objects    []string
	Logos      []string
	Labels     []string
}

// DrugClient defines the interface for the drug-record collaborator.
// ConfirmBrand resolves free text to a canonical brand name; GetLabel
// fetches the structured label record for a confirmed brand.
type DrugClient interface {
	ConfirmBrand(ctx context.Context, medicine string) (string, error)
	GetLabel(ctx context.Context, brandName string) (*DrugLabel, error)
}

// TextGenerator defines the interface for the text-generation collaborator
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// SettingsStore defines the interface for user-settings persistence.
// Read never fails on a missing or unparseable record; it falls back to
// the built-in defaults.
type SettingsStore interface {
	Read(ctx context.Context) (UserSettings, error)
	Write(ctx context.Context, settings UserSettings) error
}
