package httpapi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sweetpotato0/dealsense/config"
	"github.com/sweetpotato0/dealsense/delivery"
	"github.com/sweetpotato0/dealsense/errors"
	"github.com/sweetpotato0/dealsense/generation"
)

// fakeGenerator returns a canned result or error and records the request.
type fakeGenerator struct {
	result *generation.Result
	err    error
	last   *generation.Request
}

func (f *fakeGenerator) Generate(_ context.Context, req *generation.Request) (*generation.Result, error) {
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

// fakeSender records the request and returns a canned result.
type fakeSender struct {
	result *delivery.Result
	err    error
	last   *delivery.Request
}

func (f *fakeSender) Send(_ context.Context, req *delivery.Request) (*delivery.Result, error) {
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func newTestServer(apiKey string, gen generation.Generator, email EmailSender) *Server {
	cfg := &config.Config{
		Port:       8080,
		TextModel:  config.DefaultTextModel,
		ImageModel: config.DefaultImageModel,
		EmailFrom:  config.DefaultEmailFrom,

		GeminiAPIKey: apiKey,
		Environment:  "test",
	}
	return New(cfg, gen, email)
}

func do(s *Server, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

var allEndpoints = []string{
	"/score-deal", "/account-health", "/crm-insights", "/battlecard",
	"/cold-email", "/find-leads", "/research", "/generate-image", "/send-email",
}

func assertCORS(t *testing.T, w *httptest.ResponseRecorder) {
	t.Helper()
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Expected wildcard origin header, got %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Headers"); got != allowedHeaders {
		t.Errorf("Expected allow-headers %q, got %q", allowedHeaders, got)
	}
}

func TestPreflightInvariance(t *testing.T) {
	s := newTestServer("", &fakeGenerator{}, &fakeSender{})

	for _, path := range allEndpoints {
		w := do(s, http.MethodOptions, path, "")
		if w.Code != http.StatusOK {
			t.Errorf("%s: expected 200 for preflight, got %d", path, w.Code)
		}
		if w.Body.String() != "ok" {
			t.Errorf("%s: expected body 'ok', got %q", path, w.Body.String())
		}
		assertCORS(t, w)
	}
}

func TestCredentialGating(t *testing.T) {
	s := newTestServer("", &fakeGenerator{}, &fakeSender{})

	for _, path := range []string{"/score-deal", "/research", "/generate-image"} {
		w := do(s, http.MethodPost, path, "{}")
		if w.Code != http.StatusInternalServerError {
			t.Errorf("%s: expected 500 without credential, got %d", path, w.Code)
		}

		var envelope map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("%s: expected JSON envelope, got %v", path, err)
		}
		if envelope["error"] != "GEMINI_API_KEY is not set" {
			t.Errorf("%s: expected credential message, got %q", path, envelope["error"])
		}
		assertCORS(t, w)
	}
}

func TestScoreDealRoundTrip(t *testing.T) {
	gen := &fakeGenerator{result: &generation.Result{
		ToolCall: &generation.ToolCall{
			Name: "analyzeDealScore",
			Args: map[string]any{"score": float64(72), "reasoning": "multi-threaded, budget approved"},
		},
	}}
	s := newTestServer("key", gen, &fakeSender{})

	w := do(s, http.MethodPost, "/score-deal", `{
		"deal": {"name": "Acme renewal", "value": 50000},
		"customer": {"name": "Acme Corp"},
		"interactions": [{"date": "2025-01-10", "type": "call", "note": "pricing"}]
	}`)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	assertCORS(t, w)

	var payload map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("Expected JSON payload, got %v", err)
	}
	if payload["score"] != float64(72) {
		t.Errorf("Expected score 72, got %v", payload["score"])
	}
	if payload["reasoning"] != "multi-threaded, budget approved" {
		t.Errorf("Expected reasoning passthrough, got %v", payload["reasoning"])
	}

	if gen.last == nil || gen.last.Capability.ID != "deal_score" {
		t.Error("Expected deal_score capability to reach the generator")
	}
	if !strings.Contains(gen.last.Prompt, "Acme renewal") {
		t.Error("Expected deal data in composed prompt")
	}
}

func TestScoreDealExtractionFailure(t *testing.T) {
	gen := &fakeGenerator{result: &generation.Result{Text: "no function call here"}}
	s := newTestServer("key", gen, &fakeSender{})

	w := do(s, http.MethodPost, "/score-deal", "{}")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", w.Code)
	}

	var envelope map[string]string
	json.Unmarshal(w.Body.Bytes(), &envelope)
	if envelope["error"] != "AI failed to generate deal score." {
		t.Errorf("Expected capability failure message, got %q", envelope["error"])
	}
	assertCORS(t, w)
}

func TestBackendErrorPassthrough(t *testing.T) {
	gen := &fakeGenerator{err: errors.Backend("Gemini API error", context.DeadlineExceeded)}
	s := newTestServer("key", gen, &fakeSender{})

	w := do(s, http.MethodPost, "/battlecard", `{"companyName": "Initech"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", w.Code)
	}

	var envelope map[string]string
	json.Unmarshal(w.Body.Bytes(), &envelope)
	if !strings.Contains(envelope["error"], "Gemini API error") {
		t.Errorf("Expected backend error in envelope, got %q", envelope["error"])
	}
}

func TestCRMInsights(t *testing.T) {
	insights := []any{
		map[string]any{"type": "risk", "message": "renewal at risk", "action": "schedule QBR"},
		map[string]any{"type": "opportunity", "message": "expansion possible", "action": "propose upsell"},
		map[string]any{"type": "info", "message": "usage stable", "action": "monitor"},
	}
	gen := &fakeGenerator{result: &generation.Result{
		ToolCall: &generation.ToolCall{
			Name: "generateCRMInsights",
			Args: map[string]any{"insights": insights},
		},
	}}
	s := newTestServer("key", gen, &fakeSender{})

	w := do(s, http.MethodPost, "/crm-insights", `{"accounts": [{"name": "Acme"}]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var payload struct {
		Insights []struct {
			Type    string `json:"type"`
			Message string `json:"message"`
			Action  string `json:"action"`
		} `json:"insights"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("Expected insights payload, got %v", err)
	}
	if len(payload.Insights) != 3 {
		t.Fatalf("Expected exactly 3 insights, got %d", len(payload.Insights))
	}
	for _, in := range payload.Insights {
		switch in.Type {
		case "risk", "opportunity", "info":
		default:
			t.Errorf("Unexpected insight type %q", in.Type)
		}
	}
}

func TestResearchGroundedFallback(t *testing.T) {
	gen := &fakeGenerator{result: &generation.Result{}}
	s := newTestServer("key", gen, &fakeSender{})

	w := do(s, http.MethodPost, "/research", `{"query": "CRM market size"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var payload struct {
		Summary string           `json:"summary"`
		Sources []map[string]any `json:"sources"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("Expected research payload, got %v", err)
	}
	if payload.Summary != "No summary generated." {
		t.Errorf("Expected literal fallback summary, got %q", payload.Summary)
	}
	if payload.Sources == nil {
		t.Error("Expected sources to be an array, got null")
	}

	if gen.last.Capability.ID != "research" {
		t.Errorf("Expected research capability, got %q", gen.last.Capability.ID)
	}
}

func TestResearchWithCitations(t *testing.T) {
	gen := &fakeGenerator{result: &generation.Result{
		Text: "The CRM market reached $100B.",
		Citations: []generation.Citation{
			{Title: "Market report", URI: "https://example.com/r"},
		},
	}}
	s := newTestServer("key", gen, &fakeSender{})

	w := do(s, http.MethodPost, "/research", `{"query": "CRM market size"}`)

	var payload struct {
		Summary string `json:"summary"`
		Sources []struct {
			Title string `json:"title"`
			URI   string `json:"uri"`
		} `json:"sources"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("Expected research payload, got %v", err)
	}
	if payload.Summary != "The CRM market reached $100B." {
		t.Errorf("Expected summary text, got %q", payload.Summary)
	}
	if len(payload.Sources) != 1 || payload.Sources[0].URI != "https://example.com/r" {
		t.Errorf("Expected citation, got %v", payload.Sources)
	}
}

func TestGenerateImage(t *testing.T) {
	blob := []byte{0x89, 0x50, 0x4e, 0x47}
	gen := &fakeGenerator{result: &generation.Result{
		Image: &generation.Blob{MIMEType: "image/png", Data: blob},
	}}
	s := newTestServer("key", gen, &fakeSender{})

	w := do(s, http.MethodPost, "/generate-image", `{"action": "generate", "prompt": "product hero shot", "aspectRatio": "16:9"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var payload struct {
		Image string `json:"image"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("Expected image payload, got %v", err)
	}
	if payload.Image != base64.StdEncoding.EncodeToString(blob) {
		t.Error("Expected base64 image in payload")
	}
	if gen.last.Media == nil || gen.last.Media.AspectRatio != "16:9" {
		t.Error("Expected aspect ratio to reach the generator")
	}
}

func TestGenerateImageEditCarriesSource(t *testing.T) {
	src := base64.StdEncoding.EncodeToString([]byte{1, 2, 3})
	gen := &fakeGenerator{result: &generation.Result{
		Image: &generation.Blob{MIMEType: "image/png", Data: []byte{4, 5}},
	}}
	s := newTestServer("key", gen, &fakeSender{})

	w := do(s, http.MethodPost, "/generate-image",
		`{"action": "edit", "prompt": "brighten", "image": "`+src+`", "mimeType": "image/png"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if gen.last.Media == nil || len(gen.last.Media.InputImage) != 3 {
		t.Error("Expected decoded source image to reach the generator")
	}
	if gen.last.Media.InputMIME != "image/png" {
		t.Errorf("Expected source mime type, got %q", gen.last.Media.InputMIME)
	}
}

func TestGenerateImageNone(t *testing.T) {
	gen := &fakeGenerator{result: &generation.Result{Text: "cannot draw that"}}
	s := newTestServer("key", gen, &fakeSender{})

	w := do(s, http.MethodPost, "/generate-image", `{"action": "generate", "prompt": "x"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", w.Code)
	}

	var envelope map[string]string
	json.Unmarshal(w.Body.Bytes(), &envelope)
	if envelope["error"] != "no image generated" {
		t.Errorf("Expected 'no image generated', got %q", envelope["error"])
	}
}

func TestSendEmail(t *testing.T) {
	sender := &fakeSender{result: &delivery.Result{Success: true, Message: "Email sent successfully", ID: "msg_1"}}
	s := newTestServer("", &fakeGenerator{}, sender)

	w := do(s, http.MethodPost, "/send-email", `{"to": "a@b.com", "subject": "S", "body": "B"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var result delivery.Result
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("Expected delivery result, got %v", err)
	}
	if !result.Success || result.ID != "msg_1" {
		t.Errorf("Expected provider result passthrough, got %+v", result)
	}
	if sender.last == nil || sender.last.To != "a@b.com" {
		t.Error("Expected request to reach the sender")
	}
}

func TestSendEmailValidation(t *testing.T) {
	// Real sender: validation must fail before any network or delay.
	s := newTestServer("", &fakeGenerator{}, delivery.New(delivery.Config{}))

	w := do(s, http.MethodPost, "/send-email", `{}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", w.Code)
	}

	var envelope map[string]string
	json.Unmarshal(w.Body.Bytes(), &envelope)
	if envelope["error"] != "Missing required email fields." {
		t.Errorf("Expected literal validation message, got %q", envelope["error"])
	}
	assertCORS(t, w)
}

func TestMalformedBody(t *testing.T) {
	s := newTestServer("key", &fakeGenerator{}, &fakeSender{})

	w := do(s, http.MethodPost, "/score-deal", `{not json`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500 for malformed body, got %d", w.Code)
	}

	var envelope map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("Expected well-formed envelope even for bad input, got %v", err)
	}
	if envelope["error"] == "" {
		t.Error("Expected non-empty error message")
	}
}

func TestPermissiveMissingFields(t *testing.T) {
	gen := &fakeGenerator{result: &generation.Result{
		ToolCall: &generation.ToolCall{Name: "draftColdEmail", Args: map[string]any{"subject": "Hi", "body": "..."}},
	}}
	s := newTestServer("key", gen, &fakeSender{})

	// Empty body object: fields degrade the prompt instead of failing.
	w := do(s, http.MethodPost, "/cold-email", `{}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 for empty payload, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(gen.last.Prompt, "Not provided.") {
		t.Error("Expected placeholder for missing fields in prompt")
	}
}

func TestHealthz(t *testing.T) {
	s := newTestServer("", &fakeGenerator{}, &fakeSender{})

	w := do(s, http.MethodGet, "/healthz", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "ok") {
		t.Errorf("Expected ok status, got %q", w.Body.String())
	}
}
