// Package replies provides the canned reply templates returned whenever
// the model does not supply usable replies or there is nothing to analyze.
package replies

import (
	"strings"

	"github.com/dasmlab/sensebridge/pkg/lang"
)

// Tone names accepted by the front end.
const (
	ToneNeutral = "neutral"
	TonePolite  = "polite"
	ToneFirm    = "firm"
)

// Tones lists every tone in presentation order.
var Tones = []string{ToneNeutral, TonePolite, ToneFirm}

// DefaultLanguage is the bank entry served for any code without its own entry.
const DefaultLanguage = lang.PL

// ToneSet holds the three reply variants of a single answer.
type ToneSet struct {
	Neutral string `json:"neutral"`
	Polite  string `json:"polite"`
	Firm    string `json:"firm"`
}

// Get returns the variant for tone, or an empty string for an unknown tone.
func (t ToneSet) Get(tone string) string {
	switch tone {
	case ToneNeutral:
		return t.Neutral
	case TonePolite:
		return t.Polite
	case ToneFirm:
		return t.Firm
	default:
		return ""
	}
}

// Complete reports whether all three variants are non-empty.
func (t ToneSet) Complete() bool {
	return strings.TrimSpace(t.Neutral) != "" &&
		strings.TrimSpace(t.Polite) != "" &&
		strings.TrimSpace(t.Firm) != ""
}

type entry struct {
	replies      ToneSet
	emptySummary string
}

// bank is never written after package initialization.
var bank = map[string]entry{
	lang.PL: {
		replies: ToneSet{
			Neutral: "Dzień dobry,\n" +
				"dziękuję za wiadomość. Proszę o informację, czy pismo wymaga ode mnie działania oraz jakie są terminy.\n" +
				"Z poważaniem,",
			Polite: "Dzień dobry,\n" +
				"uprzejmie proszę o potwierdzenie, czy wymagane są dalsze kroki z mojej strony oraz do kiedy.\n" +
				"Z wyrazami szacunku,",
			Firm: "Dzień dobry,\n" +
				"proszę o jasne wskazanie wymaganych działań i terminów.\n" +
				"Z poważaniem,",
		},
		emptySummary: "Brak tekstu do analizy.",
	},
	lang.EN: {
		replies: ToneSet{
			Neutral: "Hello,\n" +
				"thank you for your message. Please confirm whether any action is required from me and what the deadlines are.\n" +
				"Kind regards,",
			Polite: "Hello,\n" +
				"could you please confirm whether any further steps are required from my side and by when?\n" +
				"Yours sincerely,",
			Firm: "Hello,\n" +
				"please clearly indicate the required actions and deadlines.\n" +
				"Kind regards,",
		},
		emptySummary: "No text to analyze.",
	},
	lang.NL: {
		replies: ToneSet{
			Neutral: "Goedemiddag,\n" +
				"dank voor uw bericht. Kunt u aangeven of ik actie moet ondernemen en wat de termijnen zijn?\n" +
				"Met vriendelijke groet,",
			Polite: "Goedemiddag,\n" +
				"kunt u alstublieft bevestigen of er verdere stappen van mijn kant nodig zijn en vóór welke datum?\n" +
				"Met vriendelijke groet,",
			Firm: "Goedemiddag,\n" +
				"graag ontvang ik een duidelijke opsomming van de vereiste acties en termijnen.\n" +
				"Met vriendelijke groet,",
		},
		emptySummary: "Geen tekst om te analyseren.",
	},
	lang.DE: {
		replies: ToneSet{
			Neutral: "Guten Tag,\n" +
				"vielen Dank für Ihre Nachricht. Bitte teilen Sie mir mit, ob ich etwas tun muss und welche Fristen gelten.\n" +
				"Mit freundlichen Grüßen,",
			Polite: "Guten Tag,\n" +
				"könnten Sie bitte bestätigen, ob weitere Schritte von meiner Seite erforderlich sind und bis wann?\n" +
				"Mit freundlichen Grüßen,",
			Firm: "Guten Tag,\n" +
				"bitte nennen Sie die erforderlichen Maßnahmen und Fristen eindeutig.\n" +
				"Mit freundlichen Grüßen,",
		},
		emptySummary: "Kein Text zur Analyse vorhanden.",
	},
}

func lookup(code string) entry {
	if e, ok := bank[lang.Normalize(code, DefaultLanguage)]; ok {
		return e
	}
	// Unsupported codes (FR, AUTO, UNKNOWN, ...) get the default language.
	return bank[DefaultLanguage]
}

// For returns the full set of fallback replies for code.
//
// tone is accepted for compatibility with the front end but does not select
// content: all three variants are always returned together.
func For(code, tone string) ToneSet {
	return lookup(code).replies
}

// EmptySummary returns the summary reported when there is no text to analyze.
func EmptySummary(code string) string {
	return lookup(code).emptySummary
}
