package verification

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sign-scan/scanner-backend/internal/auth"
	"sign-scan/scanner-backend/internal/imaging"
	"sign-scan/scanner-backend/internal/imaging/imagingtest"
	"sign-scan/scanner-backend/pkg/gemini"
	"sign-scan/scanner-backend/pkg/pdf"
)

// MockService is a mock implementation of the Service interface
type MockService struct {
	mock.Mock
}

func (m *MockService) Verify(ctx context.Context, req VerifyRequest) (*Outcome, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Outcome), args.Error(1)
}

func (m *MockService) GenerateReport(ctx context.Context, req ReportRequest) (*Report, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Report), args.Error(1)
}

func setupHandler(service Service) (*gin.Engine, *Handler) {
	gin.SetMode(gin.TestMode)
	handler := NewHandler(service, pdf.NewGenerator(pdf.DefaultOptions()), 10<<20, zap.NewNop())

	router := gin.New()
	api := router.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		auth.SetUser(c, "user-1", "user@example.com")
		c.Next()
	})
	handler.RegisterRoutes(api)
	return router, handler
}

func multipartBody(t *testing.T, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for field, data := range files {
		part, err := writer.CreateFormFile(field, field+".png")
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return &body, writer.FormDataContentType()
}

func post(t *testing.T, router *gin.Engine, target string, files map[string][]byte) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, files)
	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func bothImages() map[string][]byte {
	return map[string][]byte{
		"document":  imagingtest.NoisyPNG(400, 200),
		"signature": imagingtest.NoisyPNG(200, 80),
	}
}

func TestHandler_Verify(t *testing.T) {
	service := new(MockService)
	service.On("Verify", mock.Anything, mock.MatchedBy(func(req VerifyRequest) bool {
		return req.UserID == "user-1" &&
			req.Document.Name == "document.png" &&
			req.Sample.Name == "signature.png" &&
			req.Document.MediaType == "image/png"
	})).Return(&Outcome{
		State:        StateCompleted,
		Verdict:      VerdictForged,
		Confidence:   85,
		Presentation: &Presentation{Label: "High Confidence in Forgery", Severity: SeverityHigh},
		Summary:      "FORGED (85%)",
	}, nil)
	router, _ := setupHandler(service)

	w := post(t, router, "/api/v1/verifications", bothImages())

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "COMPLETED", body["state"])
	assert.Equal(t, "FORGED", body["verdict"])
	assert.Equal(t, float64(85), body["confidence"])
	assert.Equal(t, "FORGED (85%)", body["summary"])
	service.AssertExpectations(t)
}

func TestHandler_VerifyMissingSignature(t *testing.T) {
	service := new(MockService)
	router, _ := setupHandler(service)

	w := post(t, router, "/api/v1/verifications", map[string][]byte{"document": imagingtest.NoisyPNG(400, 200)})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), ErrMissingInput.Error())
	service.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
}

func TestHandler_VerifyErrorMapping(t *testing.T) {
	failed := &Outcome{State: StateFailed, Transitions: []Transition{{From: StateIdle, To: StateValidating}, {From: StateValidating, To: StateFailed}}}

	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "quality",
			err:         &imaging.QualityError{Reason: "Image file size too small. This may indicate a low-quality image."},
			wantStatus:  http.StatusUnprocessableEntity,
			wantMessage: "Image file size too small. This may indicate a low-quality image.",
		},
		{
			name:        "plausibility",
			err:         &PlausibilityRejection{Asset: AssetDocument, Message: documentRejected},
			wantStatus:  http.StatusUnprocessableEntity,
			wantMessage: documentRejected,
		},
		{
			name:        "upstream",
			err:         &gemini.UpstreamError{Attempts: 5, Err: &gemini.StatusError{StatusCode: 500, Status: "500 Internal Server Error"}},
			wantStatus:  http.StatusBadGateway,
			wantMessage: "Failed to run AI analysis.",
		},
		{
			name:        "encoding",
			err:         &imaging.EncodingError{Name: "document.png"},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Failed to read uploaded image.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(MockService)
			service.On("Verify", mock.Anything, mock.Anything).Return(failed, tt.err)
			router, _ := setupHandler(service)

			w := post(t, router, "/api/v1/verifications", bothImages())

			assert.Equal(t, tt.wantStatus, w.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantMessage, body["error"])
			assert.Equal(t, "FAILED", body["state"])
			assert.NotContains(t, w.Body.String(), "500 Internal Server Error")
		})
	}
}

func TestHandler_VerifyOneInFlightPerUser(t *testing.T) {
	service := new(MockService)
	started := make(chan struct{})
	release := make(chan struct{})
	service.On("Verify", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(&Outcome{State: StateCompleted}, nil).Once()
	router, handler := setupHandler(service)

	body, contentType := multipartBody(t, bothImages())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/verifications", body)
	req.Header.Set("Content-Type", contentType)

	first := make(chan *httptest.ResponseRecorder)
	go func() {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		first <- w
	}()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("first verification did not start")
	}

	second := post(t, router, "/api/v1/verifications", bothImages())
	assert.Equal(t, http.StatusConflict, second.Code)

	close(release)
	assert.Equal(t, http.StatusOK, (<-first).Code)

	assert.True(t, handler.acquire("user-1"), "guard released after completion")
	handler.release("user-1")
}

func TestHandler_Report(t *testing.T) {
	service := new(MockService)
	service.On("GenerateReport", mock.Anything, mock.MatchedBy(func(req ReportRequest) bool {
		return req.UserID == "user-1" && req.Document != nil
	})).Return(&Report{Text: "Fluid strokes.", GeneratedAt: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)}, nil)
	router, _ := setupHandler(service)

	w := post(t, router, "/api/v1/reports", map[string][]byte{"document": imagingtest.NoisyPNG(400, 200)})

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"report":"Fluid strokes.","generated_at":"2026-03-14T09:00:00Z"}`, w.Body.String())
}

func TestHandler_ReportPDF(t *testing.T) {
	service := new(MockService)
	service.On("GenerateReport", mock.Anything, mock.Anything).
		Return(&Report{Text: "Fluid strokes.", GeneratedAt: time.Now()}, nil)
	router, _ := setupHandler(service)

	w := post(t, router, "/api/v1/reports?format=pdf", map[string][]byte{"document": imagingtest.NoisyPNG(400, 200)})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))
}

func TestHandler_ReportErrors(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{name: "rejected", err: &PlausibilityRejection{Asset: AssetDocument, Message: reportRejected}, wantStatus: http.StatusUnprocessableEntity, wantMessage: reportRejected},
		{name: "empty", err: ErrEmptyReport, wantStatus: http.StatusBadGateway, wantMessage: "Could not generate report."},
		{name: "upstream", err: &gemini.UpstreamError{Attempts: 5}, wantStatus: http.StatusBadGateway, wantMessage: "Failed to generate report."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(MockService)
			service.On("GenerateReport", mock.Anything, mock.Anything).Return(nil, tt.err)
			router, _ := setupHandler(service)

			w := post(t, router, "/api/v1/reports", map[string][]byte{"document": imagingtest.NoisyPNG(400, 200)})

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantMessage)
		})
	}
}

func TestHandler_ReportRejectsUnknownFormat(t *testing.T) {
	service := new(MockService)
	router, _ := setupHandler(service)

	w := post(t, router, "/api/v1/reports?format=docx", map[string][]byte{"document": imagingtest.NoisyPNG(400, 200)})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
