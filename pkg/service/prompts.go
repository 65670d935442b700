package service

import (
	"fmt"
	"strings"

	"github.com/dasmlab/sensebridge/pkg/lang"
)

const analysisPromptTemplate = `Task: analyze the official letter below. Do not give legal advice. I need:
1) The language of the letter (detectedLang) as an uppercase code such as NL, DE, EN or PL.
2) A short summary of what the office is communicating (1-3 sentences) in language: %[1]s.
3) Communication risks (3-8 points) in language: %[1]s.
4) Three ready-to-send replies: neutral, polite and firm, in language: %[1]s.

Return ONLY JSON:
{
  "detectedLang": "NL",
  "summary": "...",
  "risks": ["...", "..."],
  "replies": { "neutral": "...", "polite": "...", "firm": "..." }
}

Text:
"""%[2]s"""`

const translationPromptTemplate = `Translate the text below into language: %s.
Keep the meaning, tone and format (paragraphs, lists).
Return ONLY the translated text, without comments.

TEXT:
"""%s"""`

const standaloneTranslationPromptTemplate = `Translate the text below into language: %s.
%sKeep the format, meaning and tone.
Return ONLY the translation.

TEXT:
"""%s"""`

func buildAnalysisPrompt(text, userLang string) string {
	return strings.TrimSpace(fmt.Sprintf(analysisPromptTemplate, userLang, text))
}

func buildTranslationPrompt(text, userLang string) string {
	return strings.TrimSpace(fmt.Sprintf(translationPromptTemplate, userLang, text))
}

func buildStandaloneTranslationPrompt(text, sourceLang, targetLang string) string {
	var hint string
	if sourceLang != lang.Auto {
		hint = fmt.Sprintf("The text is written in language: %s.\n", sourceLang)
	}
	return strings.TrimSpace(fmt.Sprintf(standaloneTranslationPromptTemplate, targetLang, hint, text))
}
