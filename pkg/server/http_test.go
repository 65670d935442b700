package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/dasmlab/sensebridge/pkg/model"
	"github.com/dasmlab/sensebridge/pkg/replies"
	"github.com/dasmlab/sensebridge/pkg/service"
)

type stubGenerator struct {
	mu        sync.Mutex
	outputs   []string
	configErr error
	calls     int
}

func (g *stubGenerator) Generate(context.Context, model.Request) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	i := g.calls
	g.calls++
	if i < len(g.outputs) {
		return g.outputs[i], nil
	}
	return "", nil
}

func (g *stubGenerator) Configured() error                 { return g.configErr }
func (g *stubGenerator) CheckHealth(context.Context) error { return nil }
func (g *stubGenerator) Name() string                      { return "stub" }

func newTestHandler(gen model.Generator) http.Handler {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewHTTPServer(service.NewAnalysisService(gen, logger), logger, "").Handler()
}

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func requireCommonHeaders(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	require.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "Content-Type", rec.Header().Get("Access-Control-Allow-Headers"))
	require.Equal(t, "POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func topLevelKeys(body []byte) []string {
	var keys []string
	gjson.ParseBytes(body).ForEach(func(key, _ gjson.Result) bool {
		keys = append(keys, key.String())
		return true
	})
	sort.Strings(keys)
	return keys
}

func TestAnalyzeResponseCarriesAllAliases(t *testing.T) {
	gen := &stubGenerator{outputs: []string{
		`{"detectedLang":"NL","summary":"U moet betalen.","risks":["termijn"],"replies":{"neutral":"n"}}`,
		"Musisz zapłacić.",
	}}
	h := newTestHandler(gen)

	rec := post(t, h, "/analyze", `{"text":"U moet betalen.","sourceLang":"AUTO","userLang":"PL","tone":"neutral"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	requireCommonHeaders(t, rec)
	require.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	body := rec.Body.Bytes()
	expectedKeys := []string{
		"communication", "detected", "detectedLang", "examples", "lang", "officeSummary",
		"ok", "replies", "responseExamples", "riskChips", "riskList", "risks",
		"sourceLang", "summary", "translated", "translatedText", "translation",
		"userLang", "whatOfficeSays",
	}
	require.Empty(t, cmp.Diff(expectedKeys, topLevelKeys(body)))

	doc := gjson.ParseBytes(body)
	require.True(t, doc.Get("ok").Bool())
	require.Equal(t, "NL", doc.Get("detectedLang").String())
	require.Equal(t, "NL", doc.Get("sourceLang").String())
	require.Equal(t, "PL", doc.Get("userLang").String())
	require.Equal(t, "Musisz zapłacić.", doc.Get("translation").String())

	for canonical, names := range map[string][]string{
		"detectedLang": {"detected", "lang"},
		"translation":  {"translatedText", "translated"},
		"summary":      {"whatOfficeSays", "communication", "officeSummary"},
		"risks":        {"riskList", "riskChips"},
		"replies":      {"examples", "responseExamples"},
	} {
		for _, name := range names {
			require.JSONEq(t, doc.Get(canonical).Raw, doc.Get(name).Raw, "%s should mirror %s", name, canonical)
		}
	}

	fallback := replies.For("PL", "")
	require.Equal(t, "n", doc.Get("replies.neutral").String())
	require.Equal(t, fallback.Polite, doc.Get("replies.polite").String())
	require.Equal(t, fallback.Firm, doc.Get("replies.firm").String())
}

func TestAnalyzeEmptyTextReturnsFallback(t *testing.T) {
	gen := &stubGenerator{}
	h := newTestHandler(gen)

	for _, body := range []string{`{"text":"   "}`, `not json at all`, ``} {
		rec := post(t, h, "/analyze", body)
		require.Equal(t, http.StatusOK, rec.Code)
		doc := gjson.ParseBytes(rec.Body.Bytes())
		require.Equal(t, "UNKNOWN", doc.Get("detectedLang").String())
		require.Equal(t, "[]", doc.Get("risks").Raw)
		require.Equal(t, replies.For("PL", "").Neutral, doc.Get("replies.neutral").String())
	}
	require.Zero(t, gen.calls)
}

func TestMissingCredentialReturns500(t *testing.T) {
	gen := &stubGenerator{configErr: model.ErrMissingCredential}
	h := newTestHandler(gen)

	for _, path := range []string{"/analyze", "/translate"} {
		rec := post(t, h, path, `{"text":"hallo"}`)
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		requireCommonHeaders(t, rec)
		doc := gjson.ParseBytes(rec.Body.Bytes())
		require.False(t, doc.Get("ok").Bool())
		require.Equal(t, model.ErrMissingCredential.Error(), doc.Get("error").String())
	}
	require.Zero(t, gen.calls)
}

func TestEmptyTextIgnoresMissingCredential(t *testing.T) {
	gen := &stubGenerator{configErr: model.ErrMissingCredential}
	h := newTestHandler(gen)

	for _, path := range []string{"/analyze", "/translate"} {
		rec := post(t, h, path, `{"text":"   "}`)
		require.Equal(t, http.StatusOK, rec.Code, path)
		requireCommonHeaders(t, rec)
		doc := gjson.ParseBytes(rec.Body.Bytes())
		require.True(t, doc.Get("ok").Bool())
		require.Equal(t, "UNKNOWN", doc.Get("detectedLang").String())
		require.Equal(t, "", doc.Get("translation").String())
	}
	require.Zero(t, gen.calls)
}

func TestOversizedBodyIsRejected(t *testing.T) {
	gen := &stubGenerator{}
	h := newTestHandler(gen)

	letter := strings.Repeat("a", maxBodyBytes)
	for _, path := range []string{"/analyze", "/translate"} {
		rec := post(t, h, path, `{"text":"`+letter+`"}`)
		require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, path)
		requireCommonHeaders(t, rec)
		doc := gjson.ParseBytes(rec.Body.Bytes())
		require.False(t, doc.Get("ok").Bool())
		require.Contains(t, doc.Get("error").String(), "request body exceeds")
	}
	require.Zero(t, gen.calls)
}

func TestTranslateEndpoint(t *testing.T) {
	gen := &stubGenerator{outputs: []string{"Dzień dobry"}}
	h := newTestHandler(gen)

	rec := post(t, h, "/translate", `{"input":"Goedendag","source":"nl","target":"pl"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	requireCommonHeaders(t, rec)

	body := rec.Body.Bytes()
	require.Empty(t, cmp.Diff(
		[]string{"detectedLang", "ok", "translated", "translatedText", "translation"},
		topLevelKeys(body),
	))
	doc := gjson.ParseBytes(body)
	require.Equal(t, "NL", doc.Get("detectedLang").String())
	require.Equal(t, "Dzień dobry", doc.Get("translation").String())
	require.Equal(t, "Dzień dobry", doc.Get("translatedText").String())
	require.Equal(t, "Dzień dobry", doc.Get("translated").String())
}

func TestPreflight(t *testing.T) {
	h := newTestHandler(&stubGenerator{})

	for _, path := range []string{"/analyze", "/translate", "/.netlify/functions/analyze"} {
		req := httptest.NewRequest(http.MethodOptions, path, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Empty(t, rec.Body.String())
		requireCommonHeaders(t, rec)
	}
}

func TestNetlifyPathsAreServed(t *testing.T) {
	gen := &stubGenerator{outputs: []string{`{"detectedLang":"PL"}`}}
	h := newTestHandler(gen)

	rec := post(t, h, "/.netlify/functions/analyze", `{"content":"Treść","userLang":"PL"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Treść", gjson.Get(rec.Body.String(), "translation").String())
	require.Equal(t, 1, gen.calls)
}

func TestPing(t *testing.T) {
	h := newTestHandler(&stubGenerator{})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
	doc := gjson.Parse(rec.Body.String())
	require.True(t, doc.Get("ok").Bool())
	require.Equal(t, ServiceName, doc.Get("service").String())
	require.NotEmpty(t, doc.Get("time").String())
}

func TestHealthReportsMissingCredential(t *testing.T) {
	h := newTestHandler(&stubGenerator{configErr: model.ErrMissingCredential})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	doc := gjson.Parse(rec.Body.String())
	require.Equal(t, "degraded", doc.Get("status").String())
	require.Equal(t, "stub", doc.Get("backend").String())
}

func TestWrongMethodIsRejected(t *testing.T) {
	h := newTestHandler(&stubGenerator{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/analyze", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	require.False(t, gjson.Get(rec.Body.String(), "ok").Bool())
	requireCommonHeaders(t, rec)
}
