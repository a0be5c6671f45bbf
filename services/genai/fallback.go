package genaisvc

import (
	"context"

	"github.com/pkg/errors"

	"github.com/theadruss/Clix-App/core"
)

// fallback messages
const (
	MsgMissingKey       = "AI generation unavailable (Missing API Key)."
	MsgNoContent        = "Could not generate content."
	MsgTextError        = "Error generating content. Please try again."
	MsgReportMissingKey = "API Key missing."
	MsgReportError      = "Error generating report. Please try again."
)

// Fallback wraps an Assistant so that no call ever fails: errors are logged and replaced
// by a fallback message, or by an empty image. A nil next means no API key was configured.
type Fallback struct {
	next   core.Assistant
	logger core.Logger
}

var _ core.Assistant = (*Fallback)(nil)

func NewFallback(next core.Assistant, logger core.Logger) *Fallback {
	return &Fallback{next: next, logger: logger}
}

func (f *Fallback) GenerateText(ctx context.Context, topic string, kind core.AssistKind) (string, error) {
	if f.next == nil {
		return MsgMissingKey, nil
	}
	text, err := f.next.GenerateText(ctx, topic, kind)
	if err != nil {
		if errors.Cause(err) == ErrNoContent {
			return MsgNoContent, nil
		}
		f.logger.Warn("generating text", err)
		return MsgTextError, nil
	}
	return text, nil
}

func (f *Fallback) GenerateReport(ctx context.Context, in core.ReportInput) (string, error) {
	if f.next == nil {
		return MsgReportMissingKey, nil
	}
	report, err := f.next.GenerateReport(ctx, in)
	if err != nil {
		f.logger.Warn("generating report", err)
		return MsgReportError, nil
	}
	return report, nil
}

// GenerateImage returns "" when no image could be generated.
func (f *Fallback) GenerateImage(ctx context.Context, prompt string) (string, error) {
	if f.next == nil {
		return "", nil
	}
	img, err := f.next.GenerateImage(ctx, prompt)
	if err != nil {
		if errors.Cause(err) != ErrNoContent {
			f.logger.Warn("generating image", err)
		}
		return "", nil
	}
	return img, nil
}

// New returns the application assistant: Gemini when an API key is configured, behind a Fallback.
func New(ctx context.Context, conf core.GenAIConfig, logger core.Logger) (*Fallback, error) {
	if conf.APIKey == "" {
		logger.Warn("genai API key is missing, AI generation is disabled")
		return NewFallback(nil, logger), nil
	}
	gemini, err := NewGeminiAssistant(ctx, conf)
	if err != nil {
		return nil, err
	}
	return NewFallback(gemini, logger), nil
}
