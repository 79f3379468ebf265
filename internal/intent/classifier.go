package intent

// #region imports
import (
	"strings"

	"carscout/internal/profile"
)

// #endregion

// #region token-lists

// affirmationTokens are matched exactly against the trimmed message
// (trailing punctuation stripped).
var affirmationTokens = []string{
	"ok", "okay", "ja", "jo", "jep", "klar", "passt", "danke", "super",
	"gut", "genau", "perfekt", "alles klar", "danke dir", "top",
}

var noviceTokens = []string{
	"keine ahnung", "bin neu", "kenne mich nicht aus", "kenn mich nicht aus",
	"weiß nicht", "weiss nicht", "keinen plan", "noch nie ein auto",
	"zum ersten mal", "hilf mir", "was empfiehlst du",
}

var smallTalkTokens = []string{
	"wetter", "regen", "sonne schein", "wie geht es dir", "wie gehts",
	"schönes wochenende", "guten morgen", "guten abend",
}

var modeRequestTokens = []string{
	"führe mich", "leite mich", "stell mir fragen", "frag mich einfach",
	"guide me", "schritt für schritt",
}

var metaTokens = []string{
	"warum fragst du", "was kannst du", "wie funktionierst du",
	"wer bist du", "bist du ein bot", "was machst du mit meinen daten",
}

var frustrationTokens = []string{
	"nervt", "frustrierend", "bringt nichts", "schon wieder",
	"kapierst du nicht", "versteh doch", "hörst du mir zu", "vergiss es",
}

var negativeFeedbackTokens = []string{
	"gefällt mir nicht", "gefallen mir nicht", "nicht gut", "schlecht",
	"falsch", "passt nicht", "daneben", "unpassend",
}

var positiveFeedbackTokens = []string{
	"gefällt mir", "gefallen mir", "toll", "schöne auswahl", "gute auswahl",
	"sieht gut aus", "nice",
}

var brevityTokens = []string{
	"zu lang", "zu viel text", "kürzer", "fass dich kurz", "weniger text",
	"kurze antworten",
}

// fillerWords never count as a brand-like single token.
var fillerWords = map[string]bool{
	"und": true, "oder": true, "aber": true, "der": true, "die": true,
	"das": true, "ein": true, "eine": true, "mit": true, "für": true,
	"auch": true, "nicht": true, "was": true, "wie": true, "wo": true,
	"the": true, "and": true, "hmm": true, "naja": true, "also": true,
}

// shortBrandAllow lets two-letter marques through the length check.
var shortBrandAllow = map[string]bool{"vw": true, "mg": true, "ds": true, "bx": true}

// #endregion token-lists

// #region cascade

// rule is one (predicate, result) pair of the ordered cascade.
type rule struct {
	name  string
	match func(c *turnContext) bool
	build func(c *turnContext) Classification
}

type turnContext struct {
	raw        string
	normalized string
	bare       string // normalized with trailing punctuation stripped
	delta      profile.Delta
}

// cascade is evaluated top to bottom with explicit early exit: the first
// matching rule decides the label. The order is a priority contract, not a
// set of independent scores. Do not reorder.
var cascade = []rule{
	{
		name:  "empty",
		match: func(c *turnContext) bool { return c.normalized == "" },
		build: func(c *turnContext) Classification {
			return Classification{Label: LabelNeedsClarification, Confidence: 0.3}
		},
	},
	{
		name:  "affirmation",
		match: func(c *turnContext) bool { return matchesToken(c.bare, affirmationTokens) },
		build: func(c *turnContext) Classification {
			return Classification{Label: LabelAffirmation, Confidence: 0.9}
		},
	},
	{
		name:  "knowledge-signal",
		match: func(c *turnContext) bool { return containsAny(c.normalized, noviceTokens) },
		build: func(c *turnContext) Classification {
			guided := true
			d := c.delta
			d.Conversation.KnowledgeLevel = "beginner"
			d.Conversation.DesiredMode = "onboarding"
			d.Conversation.WantsGuidedQuestions = &guided
			return Classification{Label: LabelKnowledgeSignal, Confidence: 0.82, Delta: &d}
		},
	},
	{
		name:  "small-talk",
		match: func(c *turnContext) bool { return containsAny(c.normalized, smallTalkTokens) },
		build: func(c *turnContext) Classification {
			return Classification{Label: LabelSmallTalk, Confidence: 0.65}
		},
	},
	{
		name:  "mode-request",
		match: func(c *turnContext) bool { return containsAny(c.normalized, modeRequestTokens) },
		build: func(c *turnContext) Classification {
			guided := true
			d := c.delta
			d.Conversation.DesiredMode = "guided"
			d.Conversation.WantsGuidedQuestions = &guided
			return Classification{Label: LabelModeRequest, Confidence: 0.8, Delta: &d}
		},
	},
	{
		name:  "meta-communication",
		match: func(c *turnContext) bool { return containsAny(c.normalized, metaTokens) },
		build: func(c *turnContext) Classification {
			return Classification{Label: LabelMetaCommunication, Confidence: 0.7}
		},
	},
	{
		name:  "frustration",
		match: func(c *turnContext) bool { return containsAny(c.normalized, frustrationTokens) },
		build: func(c *turnContext) Classification {
			return Classification{Label: LabelFrustration, Confidence: 0.85, Frustration: true}
		},
	},
	{
		name:  "feedback-negative",
		match: func(c *turnContext) bool { return containsAny(c.normalized, negativeFeedbackTokens) },
		build: func(c *turnContext) Classification {
			return Classification{Label: LabelFeedbackNegative, Confidence: 0.8, Frustration: true}
		},
	},
	{
		name:  "feedback-positive",
		match: func(c *turnContext) bool { return containsAny(c.normalized, positiveFeedbackTokens) },
		build: func(c *turnContext) Classification {
			return Classification{Label: LabelFeedbackPositive, Confidence: 0.7}
		},
	},
	{
		name:  "preference-change",
		match: func(c *turnContext) bool { return len(c.delta.Product.PreferredCategories) > 0 },
		build: func(c *turnContext) Classification {
			d := c.delta
			return Classification{Label: LabelPreferenceChange, Confidence: 0.78, Delta: &d}
		},
	},
	{
		name:  "constraint-update",
		match: func(c *turnContext) bool { return len(c.delta.Product.ExcludedCategories) > 0 },
		build: func(c *turnContext) Classification {
			d := c.delta
			return Classification{Label: LabelConstraintUpdate, Confidence: 0.72, Delta: &d}
		},
	},
	{
		name:  "brevity",
		match: func(c *turnContext) bool { return containsAny(c.normalized, brevityTokens) },
		build: func(c *turnContext) Classification {
			d := c.delta
			d.Style.Brevity = "short"
			return Classification{Label: LabelInformation, Confidence: 0.6, Delta: &d}
		},
	},
	{
		name:  "brand-like-token",
		match: func(c *turnContext) bool { return brandLikeToken(c.bare) != "" },
		build: func(c *turnContext) Classification {
			d := c.delta
			d.Product.PreferredCategories = appendUnique(d.Product.PreferredCategories, brandLikeToken(c.bare))
			return Classification{Label: LabelPreferenceChange, Confidence: 0.7, Delta: &d}
		},
	},
	{
		name:  "too-short",
		match: func(c *turnContext) bool { return len([]rune(c.normalized)) < 6 },
		build: func(c *turnContext) Classification {
			return Classification{Label: LabelNeedsClarification, Confidence: 0.6}
		},
	},
	{
		name:  "default",
		match: func(c *turnContext) bool { return true },
		build: func(c *turnContext) Classification {
			cls := Classification{Label: LabelInformation, Confidence: 0.65}
			if !c.delta.IsZero() {
				d := c.delta
				cls.Delta = &d
			}
			return cls
		},
	},
}

// #endregion cascade

// #region classify

// Classify maps free text onto an intent label plus structured preference
// deltas. Pure, deterministic, case-insensitive: everything operates on a
// lowercased, trimmed copy of the input.
func Classify(text string) Classification {
	normalized := strings.ToLower(strings.TrimSpace(text))
	c := &turnContext{
		raw:        text,
		normalized: normalized,
		bare:       strings.TrimRight(normalized, ".!?, "),
	}
	if normalized != "" {
		c.delta = ExtractDelta(normalized)
	}

	for _, r := range cascade {
		if r.match(c) {
			return r.build(c)
		}
	}
	// Unreachable: the default rule always matches.
	return Classification{Label: LabelInformation, Confidence: 0.65}
}

// #endregion classify

// #region helpers

func matchesToken(bare string, tokens []string) bool {
	for _, t := range tokens {
		if bare == t {
			return true
		}
	}
	return false
}

// brandLikeToken returns the single alphanumeric token of a one-word message
// when it plausibly names a brand or model: length ≥ 3 (or in the short-brand
// allow-list) and not a filler word. Returns "" otherwise.
func brandLikeToken(bare string) string {
	fields := strings.Fields(bare)
	if len(fields) != 1 {
		return ""
	}
	token := fields[0]
	for _, r := range token {
		if !isAlnum(r) {
			return ""
		}
	}
	if fillerWords[token] {
		return ""
	}
	if len([]rune(token)) < 3 && !shortBrandAllow[token] {
		return ""
	}
	return token
}

func isAlnum(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= '0' && r <= '9' ||
		r == 'ä' || r == 'ö' || r == 'ü' || r == 'ß'
}

// #endregion helpers
