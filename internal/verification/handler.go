package verification

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sign-scan/scanner-backend/internal/auth"
	"sign-scan/scanner-backend/internal/imaging"
	"sign-scan/scanner-backend/pkg/gemini"
	"sign-scan/scanner-backend/pkg/pdf"
)

// Handler handles HTTP requests for verifications and reports
type Handler struct {
	service        Service
	reports        pdf.Generator
	logger         *zap.Logger
	maxUploadBytes int64

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewHandler(service Service, reports pdf.Generator, maxUploadBytes int64, logger *zap.Logger) *Handler {
	return &Handler{
		service:        service,
		reports:        reports,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
		inFlight:       make(map[string]struct{}),
	}
}

// RegisterRoutes registers verification routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/verifications", h.verify)
	router.POST("/reports", h.generateReport)
}

// verify handles POST /api/v1/verifications
func (h *Handler) verify(c *gin.Context) {
	userID := auth.UserID(c)
	if !h.acquire(userID) {
		c.JSON(http.StatusConflict, gin.H{"error": "A verification is already in progress."})
		return
	}
	defer h.release(userID)

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	document, err := h.readUpload(c, "document")
	if err != nil {
		h.respondError(c, err, nil, analysisFailed)
		return
	}
	sample, err := h.readUpload(c, "signature")
	if err != nil {
		h.respondError(c, err, nil, analysisFailed)
		return
	}

	outcome, err := h.service.Verify(c.Request.Context(), VerifyRequest{
		UserID:   userID,
		Document: document,
		Sample:   sample,
	})
	if err != nil {
		h.respondError(c, err, outcome, analysisFailed)
		return
	}

	c.JSON(http.StatusOK, outcome)
}

// generateReport handles POST /api/v1/reports?format=json|pdf
func (h *Handler) generateReport(c *gin.Context) {
	format := c.DefaultQuery("format", "json")
	if format != "json" && format != "pdf" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be json or pdf"})
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	document, err := h.readUpload(c, "document")
	if err != nil {
		h.respondError(c, err, nil, reportFailed)
		return
	}

	report, err := h.service.GenerateReport(c.Request.Context(), ReportRequest{
		UserID:   auth.UserID(c),
		Document: document,
	})
	if err != nil {
		h.respondError(c, err, nil, reportFailed)
		return
	}

	if format == "json" {
		c.JSON(http.StatusOK, report)
		return
	}

	rendered, err := h.reports.Generate(c.Request.Context(), pdf.Document{
		Title:       "Signature Forensic Report",
		Subtitle:    document.Name,
		GeneratedAt: report.GeneratedAt,
		Footer:      "AI-assisted analysis. Not a substitute for a certified examiner.",
		Sections:    []pdf.Section{{Heading: "Summary", Body: report.Text}},
	})
	if err != nil {
		h.logger.Error("Failed to render report", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": reportFailed})
		return
	}

	data, err := io.ReadAll(rendered)
	if err != nil {
		h.logger.Error("Failed to read rendered report", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": reportFailed})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="signature-report.pdf"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

func (h *Handler) readUpload(c *gin.Context, field string) (*imaging.ImageAsset, error) {
	header, err := c.FormFile(field)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, ErrMissingInput
	}
	return openAsset(header)
}

func openAsset(header *multipart.FileHeader) (*imaging.ImageAsset, error) {
	file, err := header.Open()
	if err != nil {
		return nil, &imaging.EncodingError{Name: header.Filename, Err: err}
	}
	defer file.Close()

	return imaging.ReadAsset(header.Filename, header.Header.Get("Content-Type"), file)
}

// respondError maps pipeline errors to HTTP responses. outcome may be nil.
func (h *Handler) respondError(c *gin.Context, err error, outcome *Outcome, upstreamMessage string) {
	status, message := http.StatusInternalServerError, upstreamMessage

	var (
		quality   *imaging.QualityError
		encoding  *imaging.EncodingError
		rejection *PlausibilityRejection
		upstream  *gemini.UpstreamError
		tooLarge  *http.MaxBytesError
	)
	switch {
	case errors.Is(err, ErrMissingInput):
		status, message = http.StatusBadRequest, err.Error()
	case errors.As(err, &tooLarge):
		status, message = http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit)
	case errors.As(err, &quality):
		status, message = http.StatusUnprocessableEntity, quality.Reason
	case errors.As(err, &encoding):
		status, message = http.StatusBadRequest, "Failed to read uploaded image."
	case errors.As(err, &rejection):
		status, message = http.StatusUnprocessableEntity, rejection.Message
	case errors.As(err, &upstream):
		status = http.StatusBadGateway
	case errors.Is(err, ErrEmptyReport):
		status, message = http.StatusBadGateway, "Could not generate report."
	default:
		h.logger.Error("Unexpected verification error", zap.Error(err))
	}

	body := gin.H{"error": message}
	if outcome != nil {
		body["state"] = outcome.State
		body["transitions"] = outcome.Transitions
	}
	c.JSON(status, body)
}

func (h *Handler) acquire(userID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, busy := h.inFlight[userID]; busy {
		return false
	}
	h.inFlight[userID] = struct{}{}
	return true
}

func (h *Handler) release(userID string) {
	h.mu.Lock()
	delete(h.inFlight, userID)
	h.mu.Unlock()
}
