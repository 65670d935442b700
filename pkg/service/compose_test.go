package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dasmlab/sensebridge/pkg/replies"
)

func TestParseModelAnalysisLenient(t *testing.T) {
	got, err := parseModelAnalysis(`{
		"detectedLang": 7,
		"summary": ["not", "a", "string"],
		"risks": ["  a ", "", null, false, 3, {"x":1}, "b"],
		"replies": {"neutral": "n", "polite": 12, "firm": "  "}
	}`)
	require.NoError(t, err)
	require.Equal(t, "UNKNOWN", got.DetectedLang)
	require.Empty(t, got.Summary)
	require.Equal(t, []string{"a", "3", "b"}, got.Risks)
	require.Equal(t, replies.ToneSet{Neutral: "n"}, got.Replies)
}

func TestParseModelAnalysisRepliesNotObject(t *testing.T) {
	got, err := parseModelAnalysis(`{"detectedLang":" de ","replies":["x"],"risks":"one"}`)
	require.NoError(t, err)
	require.Equal(t, "DE", got.DetectedLang)
	require.Equal(t, replies.ToneSet{}, got.Replies)
	require.NotNil(t, got.Risks)
	require.Empty(t, got.Risks)
}

func TestParseModelAnalysisSyntaxError(t *testing.T) {
	_, err := parseModelAnalysis(`{"a": }`)
	require.ErrorIs(t, err, ErrMalformedModelJSON)
}

func TestEffectiveSource(t *testing.T) {
	require.Equal(t, "NL", effectiveSource("AUTO", "NL"))
	require.Equal(t, "PL", effectiveSource("PL", "NL"))
	require.Equal(t, "UNKNOWN", effectiveSource("AUTO", ""))
}

func TestTranslationNeeded(t *testing.T) {
	require.True(t, translationNeeded("NL", "PL"))
	require.True(t, translationNeeded("UNKNOWN", "PL"))
	require.False(t, translationNeeded("PL", "PL"))
	require.False(t, translationNeeded("NL", "AUTO"))
}

func TestMergeReplies(t *testing.T) {
	fallback := replies.ToneSet{Neutral: "fn", Polite: "fp", Firm: "ff"}

	merged, filled := mergeReplies(replies.ToneSet{Polite: "p"}, fallback)
	require.Equal(t, replies.ToneSet{Neutral: "fn", Polite: "p", Firm: "ff"}, merged)
	require.Equal(t, []string{"neutral", "firm"}, filled)

	merged, filled = mergeReplies(replies.ToneSet{Neutral: "n", Polite: "p", Firm: "f"}, fallback)
	require.Equal(t, replies.ToneSet{Neutral: "n", Polite: "p", Firm: "f"}, merged)
	require.Empty(t, filled)
}
