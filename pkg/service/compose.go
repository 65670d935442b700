package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/dasmlab/sensebridge/pkg/lang"
	"github.com/dasmlab/sensebridge/pkg/replies"
)

// ErrMalformedModelJSON wraps the parse error of an extracted model object.
var ErrMalformedModelJSON = errors.New("model returned malformed JSON")

// modelAnalysis is the lenient view of the object returned by the analysis
// call. Missing or mistyped fields are left empty, never rejected.
type modelAnalysis struct {
	DetectedLang string
	Summary      string
	Risks        []string
	Replies      replies.ToneSet
}

// parseModelAnalysis decodes the extracted JSON text. Only a syntax error
// fails; the shape of individual fields is not enforced.
func parseModelAnalysis(text string) (modelAnalysis, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &probe); err != nil {
		return modelAnalysis{}, fmt.Errorf("%w: %w", ErrMalformedModelJSON, err)
	}

	doc := gjson.Parse(text)
	out := modelAnalysis{
		DetectedLang: lang.Normalize(stringField(doc.Get("detectedLang")), lang.Unknown),
		Summary:      stringField(doc.Get("summary")),
		Risks:        riskList(doc.Get("risks")),
	}

	if r := doc.Get("replies"); r.IsObject() {
		out.Replies = replies.ToneSet{
			Neutral: stringField(r.Get(replies.ToneNeutral)),
			Polite:  stringField(r.Get(replies.TonePolite)),
			Firm:    stringField(r.Get(replies.ToneFirm)),
		}
	}
	return out, nil
}

func stringField(r gjson.Result) string {
	if r.Type != gjson.String {
		return ""
	}
	return strings.TrimSpace(r.Str)
}

// riskList keeps non-empty entries of a JSON array. Scalar non-string
// entries are kept in their literal form; null, false and nested values
// are dropped.
func riskList(r gjson.Result) []string {
	risks := []string{}
	if !r.IsArray() {
		return risks
	}
	for _, item := range r.Array() {
		var s string
		switch item.Type {
		case gjson.String:
			s = strings.TrimSpace(item.Str)
		case gjson.Number, gjson.True:
			s = item.Raw
		}
		if s != "" {
			risks = append(risks, s)
		}
	}
	return risks
}

// effectiveSource resolves the language the input is considered to be in.
func effectiveSource(sourceLang, detectedLang string) string {
	src := sourceLang
	if src == lang.Auto {
		src = detectedLang
	}
	if src == "" {
		return lang.Unknown
	}
	return src
}

// translationNeeded reports whether a translation call has to be issued.
// Same-language input and an AUTO target are echoed back unchanged.
func translationNeeded(source, target string) bool {
	return source != target && target != lang.Auto
}

// mergeReplies fills every tone the model left empty from fallback. It
// returns the merged set and the tones that were filled.
func mergeReplies(fromModel, fallback replies.ToneSet) (replies.ToneSet, []string) {
	var filled []string
	pick := func(tone, modelValue, fallbackValue string) string {
		if modelValue != "" {
			return modelValue
		}
		filled = append(filled, tone)
		return fallbackValue
	}

	merged := replies.ToneSet{
		Neutral: pick(replies.ToneNeutral, fromModel.Neutral, fallback.Neutral),
		Polite:  pick(replies.TonePolite, fromModel.Polite, fallback.Polite),
		Firm:    pick(replies.ToneFirm, fromModel.Firm, fallback.Firm),
	}
	return merged, filled
}
