package openfda

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/medilingo/backend/internal/domain"
	"golang.org/x/time/rate"
)

// Client handles communication with the openFDA drug label API
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a new openFDA API client. The API key is optional;
// unauthenticated requests get 240 per minute per IP.
func NewClient(apiKey, baseURL string) *Client {
	limiter := rate.NewLimiter(rate.Limit(4), 10)

	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		apiKey:      apiKey,
		baseURL:     baseURL,
		rateLimiter: limiter,
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

// labelResponse is the drug/label.json response envelope
type labelResponse struct {
	Results []labelResult `json:"results"`
}

// labelResult is one label record. The field set openFDA returns varies per
// product, so everything is optional here; ConfirmBrand enforces that a name
// can actually be resolved.
type labelResult struct {
	ID                      string      `json:"id"`
	Purpose                 []string    `json:"purpose"`
	IndicationsAndUsage     []string    `json:"indications_and_usage"`
	ActiveIngredient        []string    `json:"active_ingredient"`
	InactiveIngredient      []string    `json:"inactive_ingredient"`
	Warnings                []string    `json:"warnings"`
	AdverseReactions        []string    `json:"adverse_reactions"`
	DosageAndAdministration []string    `json:"dosage_and_administration"`
	OpenFDA                 openFDAMeta `json:"openfda"`
}

type openFDAMeta struct {
	BrandName        []string `json:"brand_name"`
	GenericName      []string `json:"generic_name"`
	ManufacturerName []string `json:"manufacturer_name"`
}

// ConfirmBrand resolves a free-text medicine name to a canonical brand name.
// Brand-name matches are preferred; generic-name matches are the fallback.
func (c *Client) ConfirmBrand(ctx context.Context, medicine string) (string, error) {
	medicine = strings.TrimSpace(medicine)
	if medicine == "" {
		return "", domain.ErrInvalidRequest
	}

	log.Printf("[OPENFDA] ConfirmBrand called with medicine: %q", medicine)

	result, err := c.queryLabel(ctx, fmt.Sprintf(`openfda.brand_name:%q`, medicine))
	if errors.Is(err, domain.ErrMedicineNotFound) {
		result, err = c.queryLabel(ctx, fmt.Sprintf(`openfda.generic_name:%q`, medicine))
	}
	if err != nil {
		return "", err
	}

	if len(result.OpenFDA.BrandName) > 0 {
		return result.OpenFDA.BrandName[0], nil
	}
	if len(result.OpenFDA.GenericName) > 0 {
		return result.OpenFDA.GenericName[0], nil
	}

	return "", fmt.Errorf("%w: label record carries no brand or generic name", domain.ErrMalformedUpstream)
}

// GetLabel retrieves the structured label record for a confirmed brand name
func (c *Client) GetLabel(ctx context.Context, brandName string) (*domain.DrugLabel, error) {
	brandName = strings.TrimSpace(brandName)
	if brandName == "" {
		return nil, domain.ErrInvalidRequest
	}

	result, err := c.queryLabel(ctx, fmt.Sprintf(`openfda.brand_name:%q`, brandName))
	if err != nil {
		return nil, err
	}

	return mapToDrugLabel(result), nil
}

// queryLabel runs one search against drug/label.json and returns the first
// result. A 404 means openFDA has no matching record.
func (c *Client) queryLabel(ctx context.Context, search string) (*labelResult, error) {
	endpoint := fmt.Sprintf("%s/drug/label.json", c.baseURL)
	params := url.Values{}
	params.Add("search", search)
	params.Add("limit", "1")
	if c.apiKey != "" {
		params.Add("api_key", c.apiKey)
	}

	reqURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())

	// Retry up to 3 times for transient failures
	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		resp, err := c.doRequest(ctx, reqURL)
		if err != nil {
			log.Printf("[OPENFDA] Request error (attempt %d): %v", attempt, err)
			lastErr = err
			time.Sleep(exponentialBackoff(attempt))
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return nil, domain.ErrMedicineNotFound
		}
		if resp.StatusCode != http.StatusOK {
			log.Printf("[OPENFDA] API error (attempt %d) - Status: %d", attempt, resp.StatusCode)
			if c.debug {
				log.Printf("[OPENFDA] Response body: %s", string(body))
			}
			lastErr = fmt.Errorf("%w: status %d", domain.ErrFDAAPIFailure, resp.StatusCode)
			time.Sleep(exponentialBackoff(attempt))
			continue
		}

		var labelResp labelResponse
		if err := json.Unmarshal(body, &labelResp); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrMalformedUpstream, err)
		}

		if len(labelResp.Results) == 0 {
			return nil, domain.ErrMedicineNotFound
		}

		return &labelResp.Results[0], nil
	}

	log.Printf("[OPENFDA] All retries failed for search: %q", search)
	return nil, lastErr
}

// doRequest executes an HTTP GET request with proper headers and error handling
func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "MediLingo/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFDAAPIFailure, err)
	}

	return resp, nil
}

// exponentialBackoff returns the sleep duration before the next retry
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(500*(1<<uint(attempt-1))) * time.Millisecond
}
