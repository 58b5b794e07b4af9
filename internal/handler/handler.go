package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/drbn68/ai-medical-imaging-agent/internal/domain"
	"github.com/drbn68/ai-medical-imaging-agent/internal/service"
	"github.com/drbn68/ai-medical-imaging-agent/pkg/utils"
)

type Handler struct {
	service  service.AnalysisService
	ingestor *utils.ImageIngestor
	log      *zap.Logger
}

func NewHandler(svc service.AnalysisService, ingestor *utils.ImageIngestor, log *zap.Logger) *Handler {
	return &Handler{
		service:  svc,
		ingestor: ingestor,
		log:      log,
	}
}

// AnalyzeImage runs the full pipeline for one upload. The upload and the
// credential are validated before any network call is made.
func (h *Handler) AnalyzeImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		h.log.Error("Failed to get file from form", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image file provided"})
		return
	}

	apiKey := strings.TrimSpace(c.PostForm("api_key"))
	if apiKey == "" {
		apiKey = strings.TrimSpace(c.GetHeader("X-API-Key"))
	}
	if apiKey == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": domain.ErrMissingCredential.Error()})
		return
	}

	src, err := file.Open()
	if err != nil {
		h.log.Error("Failed to open upload", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process file"})
		return
	}
	defer src.Close()

	fileBytes, err := io.ReadAll(src)
	if err != nil {
		h.log.Error("Failed to read upload", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read file"})
		return
	}

	img, err := h.ingestor.Ingest(fileBytes, file.Filename)
	if err != nil {
		h.log.Warn("Upload rejected",
			zap.String("filename", file.Filename),
			zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.service.Analyze(c.Request.Context(), domain.Credentials{APIKey: apiKey}, img)
	if err != nil {
		h.respondPipelineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"report": report})
}

func (h *Handler) respondPipelineError(c *gin.Context, err error) {
	var cerr *domain.CompletionError
	switch {
	case errors.Is(err, domain.ErrMissingCredential):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.As(err, &cerr):
		h.log.Error("Analysis failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		h.log.Error("Analysis failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Analysis failed"})
	}
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}

func (h *Handler) GetUI(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{})
}
