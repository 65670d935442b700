package server

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dasmlab/sensebridge/pkg/replies"
	"github.com/dasmlab/sensebridge/pkg/service"
)

// alias copies the value of a canonical key to every name in names.
type alias struct {
	canonical string
	names     []string
}

// Front-end builds disagree on field names, so every historical name is
// served. Aliasing happens here only; the service layer never sees it.
var (
	analysisAliases = []alias{
		{canonical: "detectedLang", names: []string{"detected", "lang"}},
		{canonical: "translation", names: []string{"translatedText", "translated"}},
		{canonical: "summary", names: []string{"whatOfficeSays", "communication", "officeSummary"}},
		{canonical: "risks", names: []string{"riskList", "riskChips"}},
		{canonical: "replies", names: []string{"examples", "responseExamples"}},
	}

	translationAliases = []alias{
		{canonical: "translation", names: []string{"translatedText", "translated"}},
	}
)

type analysisPayload struct {
	OK           bool            `json:"ok"`
	DetectedLang string          `json:"detectedLang"`
	SourceLang   string          `json:"sourceLang"`
	UserLang     string          `json:"userLang"`
	Translation  string          `json:"translation"`
	Summary      string          `json:"summary"`
	Risks        []string        `json:"risks"`
	Replies      replies.ToneSet `json:"replies"`
}

type translationPayload struct {
	OK           bool   `json:"ok"`
	DetectedLang string `json:"detectedLang"`
	Translation  string `json:"translation"`
}

type errorPayload struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

func presentAnalysis(res *service.AnalysisResult) ([]byte, error) {
	risks := res.Risks
	if risks == nil {
		risks = []string{}
	}
	return present(analysisPayload{
		OK:           true,
		DetectedLang: res.DetectedLang,
		SourceLang:   res.SourceLang,
		UserLang:     res.UserLang,
		Translation:  res.Translation,
		Summary:      res.Summary,
		Risks:        risks,
		Replies:      res.Replies,
	}, analysisAliases)
}

func presentTranslation(res *service.TranslateResult) ([]byte, error) {
	return present(translationPayload{
		OK:           true,
		DetectedLang: res.DetectedLang,
		Translation:  res.Translation,
	}, translationAliases)
}

func present(payload interface{}, aliases []alias) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return expandAliases(body, aliases)
}

// expandAliases adds every alias key to body, holding the canonical value.
func expandAliases(body []byte, aliases []alias) ([]byte, error) {
	for _, a := range aliases {
		value := gjson.GetBytes(body, a.canonical)
		if !value.Exists() {
			return nil, fmt.Errorf("alias source %q missing from payload", a.canonical)
		}
		for _, name := range a.names {
			var err error
			body, err = sjson.SetRawBytes(body, name, []byte(value.Raw))
			if err != nil {
				return nil, fmt.Errorf("set alias %q: %w", name, err)
			}
		}
	}
	return body, nil
}
