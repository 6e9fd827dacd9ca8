package http

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/medilingo/backend/internal/domain"
	"github.com/medilingo/backend/internal/usecase"
)

// maxUploadBytes bounds photo uploads before base64 expansion.
const maxUploadBytes = 10 << 20

// Handler holds dependencies for HTTP handlers
type Handler struct {
	lookup    *usecase.LookupService
	vision    domain.VisionClient
	drugs     domain.DrugClient
	generator domain.TextGenerator
	settings  domain.SettingsStore
	extractor *usecase.NameExtractor
	validate  *validator.Validate
}

// NewHandler creates a new HTTP handler. Individual collaborators are
// exposed alongside the lookup service because the single-step endpoints
// (img-analyze, confirmMed, fda, watsonx) call them directly.
func NewHandler(
	lookup *usecase.LookupService,
	vision domain.VisionClient,
	drugs domain.DrugClient,
	generator domain.TextGenerator,
	settings domain.SettingsStore,
) *Handler {
	return &Handler{
		lookup:    lookup,
		vision:    vision,
		drugs:     drugs,
		generator: generator,
		settings:  settings,
		extractor: usecase.NewNameExtractor(false),
		validate:  validator.New(),
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "medilingo-backend",
		"version": "1.0.0",
	})
}

type imgAnalyzeRequest struct {
	ImageURL string `json:"imageUrl" binding:"required"`
}

// AnalyzeImage runs vision analysis on a base64 image and returns the
// extracted candidate names without confirming or fetching a label.
func (h *Handler) AnalyzeImage(c *gin.Context) {
	var req imgAnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "imageUrl is required"})
		return
	}

	annotation, err := h.vision.Annotate(c.Request.Context(), req.ImageURL)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.extractor.BuildAnalysis(annotation))
}

type confirmMedRequest struct {
	Medicine string `json:"medicine" binding:"required"`
}

// ConfirmMedicine resolves free text to a canonical brand name.
func (h *Handler) ConfirmMedicine(c *gin.Context) {
	var req confirmMedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "medicine is required"})
		return
	}

	brand, err := h.drugs.ConfirmBrand(c.Request.Context(), req.Medicine)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"brand_name": brand})
}

type fdaRequest struct {
	BrandName string `json:"brand_name" binding:"required"`
}

// GetDrugLabel fetches the structured label record for a confirmed brand.
func (h *Handler) GetDrugLabel(c *gin.Context) {
	var req fdaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "brand_name is required"})
		return
	}

	label, err := h.drugs.GetLabel(c.Request.Context(), req.BrandName)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, label)
}

type watsonxRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

// GenerateText runs one synchronous text-generation call.
func (h *Handler) GenerateText(c *gin.Context) {
	var req watsonxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "prompt is required"})
		return
	}

	text, err := h.generator.GenerateText(c.Request.Context(), req.Prompt)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"generatedText": text})
}

// Lookup runs the full orchestration flow from a typed query or an image
// data URL. The explanation is generated in the background; poll
// GET /api/explanation/:token with the returned token.
func (h *Handler) Lookup(c *gin.Context) {
	var req domain.LookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.lookup.Lookup(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Upload accepts a multipart photo, verifies it is a PNG or JPEG by
// sniffing the content, and runs the full lookup flow on it.
func (h *Handler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "an image file is required"})
		return
	}

	var fileCount int
	for _, files := range form.File {
		fileCount += len(files)
	}
	files := form.File["image"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "an image file is required"})
		return
	}
	if fileCount > 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only one image may be uploaded at a time"})
		return
	}

	fileHeader := files[0]
	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image exceeds the 10MB limit"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unable to read uploaded image"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unable to read uploaded image"})
		return
	}
	if len(data) > maxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image exceeds the 10MB limit"})
		return
	}

	// Sniff the actual content; the client-supplied filename and
	// Content-Type are not trusted.
	contentType := http.DetectContentType(data)
	if contentType != "image/png" && contentType != "image/jpeg" {
		respondError(c, fmt.Errorf("%w: got %s", domain.ErrUnsupportedImageType, contentType))
		return
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data))

	result, err := h.lookup.Lookup(c.Request.Context(), &domain.LookupRequest{ImageURL: dataURL})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetExplanation returns the generation record for a lookup token. Pending
// records return 200 with status "pending"; unknown or expired tokens 404.
func (h *Handler) GetExplanation(c *gin.Context) {
	token := c.Param("token")

	explanation, err := h.lookup.Explanation(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, domain.ErrCacheMiss) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown or expired token"})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, explanation)
}

// GetSettings returns the persisted user preferences, plus the selectable
// catalogs the client renders its pickers from.
func (h *Handler) GetSettings(c *gin.Context) {
	settings, err := h.settings.Read(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"settings": settings,
		"options": gin.H{
			"ageRanges":     domain.AgeRanges,
			"languages":     domain.Languages,
			"clarityLevels": domain.ClarityLevels,
			"conditions":    domain.ConditionsFor(settings.Sex),
		},
	})
}

// PutSettings replaces the persisted preferences wholesale. Conditions not
// selectable for the submitted sex are silently dropped.
func (h *Handler) PutSettings(c *gin.Context) {
	var settings domain.UserSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid settings payload"})
		return
	}

	if err := h.validate.Struct(settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid settings: %v", err)})
		return
	}

	settings.SanitizeConditions()

	if err := h.settings.Write(c.Request.Context(), settings); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// respondError maps domain sentinels onto HTTP statuses. Upstream failures
// surface as 502 so clients can distinguish them from bad input.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrUnsupportedImageType):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrMedicineNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "medicine not found"})
	case errors.Is(err, domain.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
	case errors.Is(err, domain.ErrVisionAPIFailure):
		c.JSON(http.StatusBadGateway, gin.H{"error": "vision API temporarily unavailable"})
	case errors.Is(err, domain.ErrFDAAPIFailure):
		c.JSON(http.StatusBadGateway, gin.H{"error": "openFDA temporarily unavailable"})
	case errors.Is(err, domain.ErrGenerationFailure):
		c.JSON(http.StatusBadGateway, gin.H{"error": "text generation temporarily unavailable"})
	case errors.Is(err, domain.ErrMalformedUpstream):
		c.JSON(http.StatusBadGateway, gin.H{"error": "unexpected upstream response"})
	default:
		log.Printf("[HTTP] unhandled error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
