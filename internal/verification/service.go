package verification

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"sign-scan/scanner-backend/internal/history"
	"sign-scan/scanner-backend/internal/imaging"
	"sign-scan/scanner-backend/internal/progress"
	"sign-scan/scanner-backend/pkg/gemini"
)

// ModelClient sends one generation request to the model
type ModelClient interface {
	GenerateContent(ctx context.Context, req *gemini.GenerateRequest) (*gemini.GenerateResponse, error)
}

// HistoryRecorder persists a completed verification
type HistoryRecorder interface {
	Record(ctx context.Context, userID, summary string) (*history.ScanRecord, error)
}

// ProgressPublisher delivers progress messages to a user. Delivery is best effort.
type ProgressPublisher interface {
	SendToUser(userID string, message progress.Message) error
}

type Service interface {
	Verify(ctx context.Context, req VerifyRequest) (*Outcome, error)
	GenerateReport(ctx context.Context, req ReportRequest) (*Report, error)
}

type verificationService struct {
	model     ModelClient
	validator *imaging.Validator
	history   HistoryRecorder
	publisher ProgressPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewService wires the pipeline. publisher may be nil.
func NewService(model ModelClient, validator *imaging.Validator, recorder HistoryRecorder, publisher ProgressPublisher, logger *zap.Logger) Service {
	return &verificationService{
		model:     model,
		validator: validator,
		history:   recorder,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Verify validates both images, runs the content checks, compares the signatures and
// records the result. Every failure returns a FAILED outcome alongside the error.
func (s *verificationService) Verify(ctx context.Context, req VerifyRequest) (*Outcome, error) {
	if req.UserID == "" || req.Document == nil || req.Sample == nil {
		return nil, ErrMissingInput
	}

	r := &run{
		userID:    req.UserID,
		state:     StateIdle,
		publisher: s.publisher,
		logger:    s.logger,
		now:       s.now,
	}

	r.advance(StateValidating, progressValidatingQuality)
	for _, asset := range []*imaging.ImageAsset{req.Document, req.Sample} {
		if err := s.validator.Validate(asset); err != nil {
			return r.fail(err.Error(), err)
		}
	}

	document, err := imaging.Encode(req.Document)
	if err != nil {
		return r.fail(err.Error(), err)
	}
	sample, err := imaging.Encode(req.Sample)
	if err != nil {
		return r.fail(err.Error(), err)
	}

	r.advance(StateContentChecking, progressCheckingDocument)
	if ok, err := s.checkContent(ctx, documentCheckPrompt, document); err != nil {
		return r.fail(analysisFailed, s.upstreamFailure(req.UserID, "document check", err))
	} else if !ok {
		return r.fail(documentRejected, &PlausibilityRejection{Asset: AssetDocument, Message: documentRejected})
	}

	r.publish(progressCheckingSample)
	if ok, err := s.checkContent(ctx, sampleCheckPrompt, sample); err != nil {
		return r.fail(analysisFailed, s.upstreamFailure(req.UserID, "sample check", err))
	} else if !ok {
		return r.fail(sampleRejected, &PlausibilityRejection{Asset: AssetSample, Message: sampleRejected})
	}

	r.advance(StateComparing, progressComparing)
	resp, err := s.model.GenerateContent(ctx, gemini.NewRequest(forensicInstruction,
		gemini.TextPart(comparisonPrompt),
		gemini.InlinePart(document.MediaType, document.Data),
		gemini.InlinePart(sample.MediaType, sample.Data),
	))
	if err != nil {
		return r.fail(analysisFailed, s.upstreamFailure(req.UserID, "comparison", err))
	}

	reply := resp.Text()
	verdict, confidence := ParseVerdict(reply)
	presentation := Classify(verdict, confidence)
	if verdict == VerdictInconclusive {
		s.logger.Warn("Ambiguous comparison reply",
			zap.String("user_id", req.UserID),
			zap.String("reply", truncate(reply, 200)))
	}

	r.advance(StateCompleted, presentation.Label)
	outcome := &Outcome{
		State:        r.state,
		Verdict:      verdict,
		Confidence:   confidence,
		Ambiguous:    verdict == VerdictInconclusive,
		Presentation: &presentation,
		Summary:      history.Summary(string(verdict), confidence),
	}

	// the result stands even when the write fails or the caller has gone away
	record, err := s.history.Record(context.WithoutCancel(ctx), req.UserID, outcome.Summary)
	if err != nil {
		s.logger.Warn("Verification completed without history record",
			zap.String("user_id", req.UserID),
			zap.Error(err))
		outcome.Warning = persistenceWarning
	} else {
		outcome.Record = record
	}

	s.logger.Info("Verification completed",
		zap.String("user_id", req.UserID),
		zap.String("verdict", string(verdict)),
		zap.Int("confidence", confidence))

	outcome.Transitions = r.transitions
	return outcome, nil
}

// GenerateReport screens the document with a looser check and returns the model's
// summary verbatim. Nothing is persisted.
func (s *verificationService) GenerateReport(ctx context.Context, req ReportRequest) (*Report, error) {
	if req.UserID == "" || req.Document == nil {
		return nil, ErrMissingInput
	}

	document, err := imaging.Encode(req.Document)
	if err != nil {
		return nil, err
	}

	s.notifyReport(req.UserID, progressWritingReport)

	ok, err := s.checkContent(ctx, reportCheckPrompt, document)
	if err != nil {
		return nil, s.upstreamFailure(req.UserID, "report check", err)
	}
	if !ok {
		return nil, &PlausibilityRejection{Asset: AssetDocument, Message: reportRejected}
	}

	resp, err := s.model.GenerateContent(ctx, gemini.NewRequest(reportInstruction,
		gemini.TextPart(reportPrompt),
		gemini.InlinePart(document.MediaType, document.Data),
	))
	if err != nil {
		return nil, s.upstreamFailure(req.UserID, "report", err)
	}

	text := resp.Text()
	if text == "" {
		return nil, ErrEmptyReport
	}

	return &Report{Text: text, GeneratedAt: s.now()}, nil
}

func (s *verificationService) checkContent(ctx context.Context, prompt string, payload imaging.Payload) (bool, error) {
	resp, err := s.model.GenerateContent(ctx, gemini.NewRequest(contentCheckInstruction,
		gemini.TextPart(prompt),
		gemini.InlinePart(payload.MediaType, payload.Data),
	))
	if err != nil {
		return false, err
	}
	return ParseYesNo(resp.Text()), nil
}

// upstreamFailure logs the cause and makes sure callers can match on UpstreamError.
func (s *verificationService) upstreamFailure(userID, step string, err error) error {
	s.logger.Error("Model request failed",
		zap.String("user_id", userID),
		zap.String("step", step),
		zap.Error(err))

	var upstream *gemini.UpstreamError
	if errors.As(err, &upstream) {
		return err
	}
	return &gemini.UpstreamError{Attempts: 1, Err: err}
}

func (s *verificationService) notifyReport(userID, text string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.SendToUser(userID, progress.Message{
		Type:      progress.TypeReport,
		Text:      text,
		Timestamp: s.now(),
	}); err != nil {
		s.logger.Debug("Progress update not delivered", zap.String("user_id", userID), zap.Error(err))
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
