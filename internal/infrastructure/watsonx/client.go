package watsonx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/medilingo/backend/internal/domain"
	"golang.org/x/time/rate"
)

const systemPrompt = "your job is to be medicine assistant and replay with the manufactor and side effects of a midicine and what used for."

// Generation parameters used for every call, matching the assistant's tuned
// values: greedy decoding with a hard cap and mild repetition penalty.
const (
	decodingMethod    = "greedy"
	maxNewTokens      = 1500
	minNewTokens      = 0
	stopSequence      = "<|endoftext|>"
	repetitionPenalty = 1.03
)

// Config carries the deployment-supplied identifiers for the watsonx.ai
// text-generation service.
type Config struct {
	APIKey     string
	ProjectID  string
	ServiceURL string
	IAMURL     string
	ModelID    string
	Version    string
}

// Client handles communication with the IBM watsonx.ai text-generation API.
// IAM bearer tokens are exchanged lazily and cached until shortly before
// expiry.
type Client struct {
	httpClient  *http.Client
	cfg         Config
	rateLimiter *rate.Limiter

	tokenMu     sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewClient creates a new watsonx.ai client
func NewClient(cfg Config) *Client {
	limiter := rate.NewLimiter(rate.Limit(1), 5)

	return &Client{
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		cfg:         cfg,
		rateLimiter: limiter,
	}
}

// SetRateLimit overrides the client-side request budget, in requests per
// minute. Non-positive values leave the default in place.
func (c *Client) SetRateLimit(perMinute int) {
	if perMinute <= 0 {
		return
	}
	c.rateLimiter.SetLimit(rate.Limit(float64(perMinute) / 60))
}

type iamTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type generationRequest struct {
	Input      string               `json:"input"`
	Parameters generationParameters `json:"parameters"`
	ModelID    string               `json:"model_id"`
	ProjectID  string               `json:"project_id"`
}

type generationParameters struct {
	DecodingMethod    string   `json:"decoding_method"`
	MaxNewTokens      int      `json:"max_new_tokens"`
	MinNewTokens      int      `json:"min_new_tokens"`
	StopSequences     []string `json:"stop_sequences"`
	RepetitionPenalty float64  `json:"repetition_penalty"`
}

type generationResponse struct {
	Results []generationResult `json:"results"`
}

type generationResult struct {
	GeneratedText string `json:"generated_text"`
}

// GenerateText runs one generation call. The fixed medicine-assistant system
// prompt is prepended to the caller's input.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", domain.ErrInvalidRequest
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter error: %w", err)
	}

	token, err := c.bearerToken(ctx)
	if err != nil {
		return "", err
	}

	reqBody := generationRequest{
		Input: fmt.Sprintf("%s\n\nInput: %s\nOutput:", systemPrompt, prompt),
		Parameters: generationParameters{
			DecodingMethod:    decodingMethod,
			MaxNewTokens:      maxNewTokens,
			MinNewTokens:      minNewTokens,
			StopSequences:     []string{stopSequence},
			RepetitionPenalty: repetitionPenalty,
		},
		ModelID:   c.cfg.ModelID,
		ProjectID: c.cfg.ProjectID,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	reqURL := fmt.Sprintf("%s/ml/v1/text/generation?version=%s", c.cfg.ServiceURL, url.QueryEscape(c.cfg.Version))
	req, err := http.NewRequestWithContext(ctx, "POST", reqURL, strings.NewReader(string(payload)))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrGenerationFailure, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		log.Printf("[WATSONX] Generation error - Status: %d", resp.StatusCode)
		return "", fmt.Errorf("%w: status %d", domain.ErrGenerationFailure, resp.StatusCode)
	}

	var genResp generationResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrMalformedUpstream, err)
	}
	if len(genResp.Results) == 0 {
		return "", fmt.Errorf("%w: generation response has no results", domain.ErrMalformedUpstream)
	}

	return genResp.Results[0].GeneratedText, nil
}

// bearerToken returns a cached IAM token, exchanging the API key for a new
// one when missing or within a minute of expiry.
func (c *Client) bearerToken(ctx context.Context) (string, error) {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry.Add(-time.Minute)) {
		return c.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "urn:ibm:params:oauth:grant-type:apikey")
	form.Set("apikey", c.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, "POST", c.cfg.IAMURL+"/identity/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: token exchange: %v", domain.ErrGenerationFailure, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		log.Printf("[WATSONX] IAM token error - Status: %d", resp.StatusCode)
		return "", fmt.Errorf("%w: token exchange status %d", domain.ErrGenerationFailure, resp.StatusCode)
	}

	var tokenResp iamTokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", fmt.Errorf("%w: token exchange: %v", domain.ErrMalformedUpstream, err)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("%w: token exchange returned empty token", domain.ErrMalformedUpstream)
	}

	c.accessToken = tokenResp.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second)

	return c.accessToken, nil
}
