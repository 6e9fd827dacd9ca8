package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/medilingo/backend/internal/domain"
	"golang.org/x/time/rate"
)

// Feature types requested for every medicine photo.
const (
	featureText   = "TEXT_DETECTION"
	featureObject = "OBJECT_LOCALIZATION"
	featureLogo   = "LOGO_DETECTION"
	featureLabel  = "LABEL_DETECTION"

	maxLabelResults = 5
)

// Client handles communication with the Google Cloud Vision REST API
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	rateLimiter *rate.Limiter
	validate    *validator.Validate
	debug       bool
}

// NewClient creates a new Vision API client
func NewClient(apiKey, baseURL string) *Client {
	// Vision allows 1800 requests per minute per project; stay well under it
	limiter := rate.NewLimiter(rate.Limit(10), 20)

	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		apiKey:      apiKey,
		baseURL:     baseURL,
		rateLimiter: limiter,
		validate:    validator.New(),
	}
}

// SetDebug enables request/response logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// SetRateLimit overrides the client-side request budget, in requests per
// minute. Non-positive values leave the default in place.
func (c *Client) SetRateLimit(perMinute int) {
	if perMinute <= 0 {
		return
	}
	c.rateLimiter.SetLimit(rate.Limit(float64(perMinute) / 60))
}

// annotateRequest is the images:annotate request body
type annotateRequest struct {
	Requests []imageRequest `json:"requests"`
}

type imageRequest struct {
	Image    imageContent `json:"image"`
	Features []feature    `json:"features"`
}

type imageContent struct {
	Content string `json:"content"`
}

type feature struct {
	Type       string `json:"type"`
	MaxResults int    `json:"maxResults,omitempty"`
}

// annotateResponse is the images:annotate response body. Responses must
// contain exactly one entry for a single-image request; anything else is a
// malformed upstream response.
type annotateResponse struct {
	Responses []imageResponse `json:"responses" validate:"required,len=1"`
}

type imageResponse struct {
	FullTextAnnotation *textAnnotation    `json:"fullTextAnnotation"`
	TextAnnotations    []entityAnnotation `json:"textAnnotations"`
	ObjectAnnotations  []objectAnnotation `json:"localizedObjectAnnotations"`
	LogoAnnotations    []entityAnnotation `json:"logoAnnotations"`
	LabelAnnotations   []entityAnnotation `json:"labelAnnotations"`
	Error              *statusError       `json:"error"`
}

type textAnnotation struct {
	Text string `json:"text"`
}

type entityAnnotation struct {
	Description string `json:"description"`
}

type objectAnnotation struct {
	Name string `json:"name"`
}

type statusError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Annotate sends one image through text, object, logo, and label detection.
// The payload is a data URL; the base64 body after the comma is what the API
// receives.
func (c *Client) Annotate(ctx context.Context, imageDataURL string) (*domain.VisionAnnotation, error) {
	content := stripDataURLPrefix(imageDataURL)
	if content == "" {
		return nil, fmt.Errorf("%w: empty image payload", domain.ErrInvalidRequest)
	}

	reqBody := annotateRequest{
		Requests: []imageRequest{
			{
				Image: imageContent{Content: content},
				Features: []feature{
					{Type: featureText},
					{Type: featureObject},
					{Type: featureLogo},
					{Type: featureLabel, MaxResults: maxLabelResults},
				},
			},
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	reqURL := fmt.Sprintf("%s/v1/images:annotate?key=%s", c.baseURL, c.apiKey)

	// Retry up to 3 times for transient failures
	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		resp, err := c.doRequest(ctx, reqURL, payload)
		if err != nil {
			log.Printf("[VISION] Request error (attempt %d): %v", attempt, err)
			lastErr = err
			time.Sleep(exponentialBackoff(attempt))
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			log.Printf("[VISION] API error (attempt %d) - Status: %d", attempt, resp.StatusCode)
			if c.debug {
				log.Printf("[VISION] Response body: %s", string(body))
			}
			lastErr = fmt.Errorf("%w: status %d", domain.ErrVisionAPIFailure, resp.StatusCode)
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return nil, lastErr
			}
			time.Sleep(exponentialBackoff(attempt))
			continue
		}

		var annotateResp annotateResponse
		if err := json.Unmarshal(body, &annotateResp); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrMalformedUpstream, err)
		}
		if err := c.validate.Struct(&annotateResp); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrMalformedUpstream, err)
		}

		result := annotateResp.Responses[0]
		if result.Error != nil {
			return nil, fmt.Errorf("%w: %s (code %d)", domain.ErrVisionAPIFailure, result.Error.Message, result.Error.Code)
		}

		return mapAnnotation(&result), nil
	}

	log.Printf("[VISION] All retries failed")
	return nil, lastErr
}

// doRequest executes an HTTP POST with proper headers and error handling
func (c *Client) doRequest(ctx context.Context, reqURL string, payload []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", reqURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "MediLingo/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrVisionAPIFailure, err)
	}

	return resp, nil
}

// mapAnnotation flattens the API response into the domain shape. The first
// text annotation is the full-text block and is skipped; the rest are the
// individual OCR tokens the candidate filter consumes.
func mapAnnotation(r *imageResponse) *domain.VisionAnnotation {
	annotation := &domain.VisionAnnotation{}

	if r.FullTextAnnotation != nil {
		annotation.FullText = r.FullTextAnnotation.Text
	}

	if len(r.TextAnnotations) > 1 {
		for _, t := range r.TextAnnotations[1:] {
			annotation.TextBlocks = append(annotation.TextBlocks, t.Description)
		}
	}

	for _, o := range r.ObjectAnnotations {
		annotation.Objects = append(annotation.Objects, o.Name)
	}
	for _, l := range r.LogoAnnotations {
		annotation.Logos = append(annotation.Logos, l.Description)
	}
	for _, l := range r.LabelAnnotations {
		annotation.Labels = append(annotation.Labels, l.Description)
	}

	return annotation
}

// stripDataURLPrefix removes the "data:image/...;base64," prefix, if present.
func stripDataURLPrefix(dataURL string) string {
	if idx := strings.Index(dataURL, ","); idx >= 0 {
		return dataURL[idx+1:]
	}
	return dataURL
}

// exponentialBackoff returns the sleep duration before the next retry
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(500*(1<<uint(attempt-1))) * time.Millisecond
}
