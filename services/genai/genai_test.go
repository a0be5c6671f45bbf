package genaisvc

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theadruss/Clix-App/core"
	"github.com/theadruss/Clix-App/testutil"
)

type part map[string]interface{}

// newGeminiStub serves generateContent calls. respond returns the parts of the single candidate,
// or a status code >= 400 to fail the call.
func newGeminiStub(t *testing.T, respond func(model, prompt string) ([]part, int)) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, ":generateContent") {
			http.NotFound(w, r)
			return
		}
		model := strings.TrimSuffix(r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:], ":generateContent")

		body, _ := io.ReadAll(r.Body)
		var req struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
		}
		_ = json.Unmarshal(body, &req)
		prompt := ""
		if len(req.Contents) > 0 && len(req.Contents[0].Parts) > 0 {
			prompt = req.Contents[0].Parts[0].Text
		}

		parts, code := respond(model, prompt)
		w.Header().Set("Content-Type", "application/json")
		if code >= http.StatusBadRequest {
			w.WriteHeader(code)
			_, _ = w.Write([]byte(`{"error": {"code": 500, "message": "boom", "status": "INTERNAL"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []interface{}{
				map[string]interface{}{"content": map[string]interface{}{"role": "model", "parts": parts}},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestAssistant(t *testing.T, srv *httptest.Server) *GeminiAssistant {
	a, err := NewGeminiAssistant(context.Background(), core.GenAIConfig{
		APIKey:     "test-key",
		TextModel:  "text-model",
		ImageModel: "image-model",
		BaseURL:    srv.URL,
	})
	require.NoError(t, err)
	return a
}

func TestGeminiAssistant_GenerateText(t *testing.T) {
	var gotModel, gotPrompt string
	srv := newGeminiStub(t, func(model, prompt string) ([]part, int) {
		gotModel, gotPrompt = model, prompt
		return []part{{"text": "  Code all night, win by morning.  "}}, http.StatusOK
	})
	a := newTestAssistant(t, srv)

	text, err := a.GenerateText(context.Background(), "Hackathon", core.AssistTagline)
	require.NoError(t, err)
	assert.Equal(t, "Code all night, win by morning.", text)
	assert.Equal(t, "text-model", gotModel)
	assert.Contains(t, gotPrompt, `"Hackathon"`)
	assert.Contains(t, gotPrompt, "Max 10 words.")

	_, err = a.GenerateText(context.Background(), "Hackathon", core.AssistKind("haiku"))
	assert.Error(t, err)
}

func TestGeminiAssistant_GenerateReport(t *testing.T) {
	var gotPrompt string
	srv := newGeminiStub(t, func(_, prompt string) ([]part, int) {
		gotPrompt = prompt
		return []part{{"text": "# Report"}}, http.StatusOK
	})
	a := newTestAssistant(t, srv)

	report, err := a.GenerateReport(context.Background(), core.ReportInput{
		Title: "Music Fest", Registered: 850, Capacity: 1000, Revenue: 127500,
		Feedback: []string{"Loud!", "Great lineup"},
	})
	require.NoError(t, err)
	assert.Equal(t, "# Report", report)
	assert.Contains(t, gotPrompt, "Registrations: 850 / 1000")
	assert.Contains(t, gotPrompt, "Revenue: 127500")
	assert.Contains(t, gotPrompt, "Loud!; Great lineup")

	_, err = a.GenerateReport(context.Background(), core.ReportInput{Title: "Quiet"})
	require.NoError(t, err)
	assert.Contains(t, gotPrompt, "No specific feedback provided.")
}

func TestGeminiAssistant_GenerateImage(t *testing.T) {
	srv := newGeminiStub(t, func(model, _ string) ([]part, int) {
		if model != "image-model" {
			return nil, http.StatusInternalServerError
		}
		return []part{
			{"text": "here you go"},
			{"inlineData": map[string]string{"mimeType": "image/png", "data": "iVBORw0K"}},
		}, http.StatusOK
	})
	a := newTestAssistant(t, srv)

	img, err := a.GenerateImage(context.Background(), "a trophy")
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,iVBORw0K", img)
}

type failingAssistant struct {
	err error
}

func (f failingAssistant) GenerateText(context.Context, string, core.AssistKind) (string, error) {
	return "", f.err
}
func (f failingAssistant) GenerateReport(context.Context, core.ReportInput) (string, error) {
	return "", f.err
}
func (f failingAssistant) GenerateImage(context.Context, string) (string, error) { return "", f.err }

func TestFallback(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name       string
		next       core.Assistant
		wantText   string
		wantReport string
	}{
		{"missing key", nil, MsgMissingKey, MsgReportMissingKey},
		{"empty response", failingAssistant{err: errors.Wrap(ErrNoContent, "text")}, MsgNoContent, MsgReportError},
		{"api error", failingAssistant{err: errors.New("503")}, MsgTextError, MsgReportError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := NewFallback(tc.next, testutil.NewLogger())

			text, err := f.GenerateText(ctx, "Hackathon", core.AssistDescription)
			assert.NoError(t, err)
			assert.Equal(t, tc.wantText, text)

			report, err := f.GenerateReport(ctx, core.ReportInput{Title: "Hackathon"})
			assert.NoError(t, err)
			assert.Equal(t, tc.wantReport, report)

			img, err := f.GenerateImage(ctx, "a trophy")
			assert.NoError(t, err)
			assert.Empty(t, img)
		})
	}
}

func TestFallback_PassesThrough(t *testing.T) {
	srv := newGeminiStub(t, func(_, _ string) ([]part, int) {
		return []part{{"text": "An exciting night of code."}}, http.StatusOK
	})
	f := NewFallback(newTestAssistant(t, srv), testutil.NewLogger())

	text, err := f.GenerateText(context.Background(), "Hackathon", core.AssistDescription)
	require.NoError(t, err)
	assert.Equal(t, "An exciting night of code.", text)
}
