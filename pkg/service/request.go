package service

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/dasmlab/sensebridge/pkg/lang"
	"github.com/dasmlab/sensebridge/pkg/replies"
)

// Accepted request field names. The first non-empty string wins.
var (
	analysisTextKeys  = []string{"text", "input", "content", "document"}
	translateTextKeys = []string{"text", "input", "content"}
	sourceLangKeys    = []string{"sourceLang", "source"}
	userLangKeys      = []string{"userLang", "targetLang", "target"}
	toneKeys          = []string{"tone", "style"}
)

// Request defaults.
const (
	DefaultSourceLang = lang.Auto
	DefaultUserLang   = lang.PL
	DefaultTone       = replies.ToneNeutral
)

// AnalysisRequest is a normalized /analyze request.
type AnalysisRequest struct {
	Text       string
	SourceLang string
	UserLang   string
	Tone       string
}

// TranslateRequest is a normalized /translate request.
type TranslateRequest struct {
	Text       string
	SourceLang string
	UserLang   string
}

// ParseAnalysisRequest extracts an AnalysisRequest from an arbitrary body.
// It never fails: bodies that are not a JSON object are treated as {}.
func ParseAnalysisRequest(body []byte) AnalysisRequest {
	doc := parseObject(body)
	return AnalysisRequest{
		Text:       firstString(doc, analysisTextKeys),
		SourceLang: lang.Normalize(firstString(doc, sourceLangKeys), DefaultSourceLang),
		UserLang:   lang.Normalize(firstString(doc, userLangKeys), DefaultUserLang),
		Tone:       normalizeTone(firstString(doc, toneKeys)),
	}
}

// ParseTranslateRequest extracts a TranslateRequest from an arbitrary body.
// Like ParseAnalysisRequest it never fails.
func ParseTranslateRequest(body []byte) TranslateRequest {
	doc := parseObject(body)
	return TranslateRequest{
		Text:       firstString(doc, translateTextKeys),
		SourceLang: lang.Normalize(firstString(doc, sourceLangKeys), DefaultSourceLang),
		UserLang:   lang.Normalize(firstString(doc, userLangKeys), DefaultUserLang),
	}
}

func parseObject(body []byte) gjson.Result {
	if !gjson.ValidBytes(body) {
		return gjson.Result{}
	}
	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return gjson.Result{}
	}
	return doc
}

// firstString returns the first key holding a non-blank string, trimmed.
// Numbers, booleans and nested values count as empty.
func firstString(doc gjson.Result, keys []string) string {
	for _, key := range keys {
		v := doc.Get(key)
		if v.Type != gjson.String {
			continue
		}
		if s := strings.TrimSpace(v.Str); s != "" {
			return s
		}
	}
	return ""
}

func normalizeTone(tone string) string {
	tone = strings.ToLower(strings.TrimSpace(tone))
	if tone == "" {
		return DefaultTone
	}
	return tone
}
