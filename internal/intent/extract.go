package intent

// #region imports
import (
	"regexp"
	"strconv"
	"strings"

	"carscout/internal/profile"
)

// #endregion

// #region vocabulary

// brandVocabulary is the fixed set of brand names recognized in free text.
var brandVocabulary = []string{
	"audi", "bmw", "mercedes", "volkswagen", "vw", "opel", "ford", "toyota",
	"tesla", "skoda", "seat", "cupra", "renault", "peugeot", "citroen",
	"volvo", "mazda", "hyundai", "kia", "porsche", "mini", "fiat", "dacia",
	"honda", "nissan", "suzuki", "smart", "mitsubishi", "jeep", "subaru",
}

// keywordRule pairs a free-text token with its normalized value. These are
// ordered slices, not maps: the rule order is part of the contract, and a
// text matching several tokens must resolve the same way on every call.
type keywordRule struct {
	token string
	value string
}

// useCaseKeywords maps free-text tokens onto normalized use cases.
var useCaseKeywords = []keywordRule{
	{"stadt", "stadt"},
	{"city", "stadt"},
	{"innenstadt", "stadt"},
	{"langstrecke", "langstrecke"},
	{"autobahn", "langstrecke"},
	{"urlaub", "langstrecke"},
	{"pendeln", "pendeln"},
	{"pendler", "pendeln"},
	{"gelände", "gelände"},
	{"offroad", "gelände"},
	{"familie", "familie"},
	{"kinder", "familie"},
	{"anhänger", "anhänger"},
}

// sizeKeywords maps body-style mentions onto the size_preference enum.
// First match wins when a text names several body styles.
var sizeKeywords = []keywordRule{
	{"suv", "suv"},
	{"kombi", "kombi"},
	{"kleinwagen", "kleinwagen"},
	{"limousine", "limousine"},
	{"cabrio", "cabrio"},
	{"van", "van"},
	{"bus", "van"},
}

// vibeKeywords maps design adjectives onto design vibes.
var vibeKeywords = []keywordRule{
	{"sportlich", "sporty"},
	{"sportwagen", "sporty"},
	{"elegant", "elegant"},
	{"schick", "elegant"},
	{"praktisch", "practical"},
	{"robust", "rugged"},
	{"luxus", "luxury"},
	{"luxuriös", "luxury"},
	{"retro", "retro"},
}

var comfortKeywords = []string{"komfort", "bequem", "gemütlich", "komfortabel"}
var techKeywords = []string{"technik", "assistenzsysteme", "display", "digital", "vernetzt", "apple carplay", "android auto"}
var cautiousKeywords = []string{"zuverlässig", "sicher", "sicherheit", "garantie", "wertstabil"}
var adventurousKeywords = []string{"ausgefallen", "exot", "experimentierfreudig", "besonderes"}

// dealBreakerTargets are the "kein X" targets that become deal-breakers
// rather than plain category exclusions.
var dealBreakerTargets = map[string]bool{
	"suv":     true,
	"diesel":  true,
	"elektro": true,
}

// exclusionTargets are the remaining "kein X" targets that become plain
// category exclusions: body styles and fuels the catalog actually carries.
// Arbitrary negated nouns ("ohne probleme") stay out of the state entirely,
// since the monotonic merge could never remove them again.
var exclusionTargets = map[string]string{
	"kombi":      "kombi",
	"kleinwagen": "kleinwagen",
	"limousine":  "limousine",
	"cabrio":     "cabrio",
	"van":        "van",
	"bus":        "van",
	"benzin":     "benzin",
	"benziner":   "benzin",
	"verbrenner": "benzin",
	"hybrid":     "hybrid",
}

// #endregion vocabulary

// #region regex

// budgetRe matches budget ceilings like "bis 20000", "max. 15k",
// "budget 30.000 €", "unter 25000 euro".
var budgetRe = regexp.MustCompile(`(?:bis(?:\s+zu)?|max\.?|maximal|budget(?:\s+von)?|unter|höchstens)\s*(\d{1,3}(?:[.,]\d{3})*|\d+)\s*(k|tsd)?\s*(?:€|euro|eur)?`)

// negationRe matches "kein/keine/keinen X", "ohne X", "bloß kein X".
var negationRe = regexp.MustCompile(`(?:kein(?:e|en|s)?|ohne|nie wieder)\s+([a-zäöüß]+)`)

// #endregion regex

// #region extract

// ExtractDelta derives a preference delta from normalized (lowercased,
// trimmed) text. Computed once up front, independent of the label cascade;
// all list fields come out de-duplicated case-insensitively.
func ExtractDelta(normalized string) profile.Delta {
	var delta profile.Delta
	patch := &profile.CarPatch{}

	// Budget ceiling
	if m := budgetRe.FindStringSubmatch(normalized); m != nil {
		if v, ok := parseAmount(m[1], m[2]); ok {
			delta.Product.Budget = &profile.Budget{Max: &v}
			patch.BudgetLevel = budgetLevelFor(v)
		}
	}

	// Use cases
	for _, r := range useCaseKeywords {
		if strings.Contains(normalized, r.token) {
			delta.Product.UseCases = appendUnique(delta.Product.UseCases, r.value)
		}
	}

	// Body style / size, first matching rule wins
	for _, r := range sizeKeywords {
		if containsWord(normalized, r.token) {
			patch.SizePreference = r.value
			break
		}
	}

	// Brands, split into likes and dislikes via the negation scan below.
	negated := negatedTargets(normalized)
	for _, brand := range brandVocabulary {
		if !containsWord(normalized, brand) {
			continue
		}
		if hasToken(negated, brand) {
			patch.BrandDislikes = appendUnique(patch.BrandDislikes, brand)
			delta.Product.ExcludedCategories = appendUnique(delta.Product.ExcludedCategories, brand)
		} else {
			patch.BrandLikes = appendUnique(patch.BrandLikes, brand)
			delta.Product.PreferredCategories = appendUnique(delta.Product.PreferredCategories, brand)
		}
	}

	// "kein X" in text order: deal-breaker for the known targets, plain
	// exclusion for the known body styles and fuels, ignored otherwise.
	for _, target := range negated {
		switch {
		case dealBreakerTargets[target]:
			patch.DealBreakers = appendUnique(patch.DealBreakers, target)
		case isBrand(target):
			// the brand scan above already recorded the dislike
		default:
			if cat, ok := exclusionTargets[target]; ok {
				delta.Product.ExcludedCategories = appendUnique(delta.Product.ExcludedCategories, cat)
			}
		}
	}

	// Vibe / comfort / tech / risk keyword maps; the scalar vibe takes the
	// first matching rule, the list keeps every match.
	for _, r := range vibeKeywords {
		if strings.Contains(normalized, r.token) {
			patch.DesignVibes = appendUnique(patch.DesignVibes, r.value)
			if delta.Style.Vibe == "" {
				delta.Style.Vibe = r.value
			}
		}
	}
	if containsAny(normalized, comfortKeywords) {
		patch.ComfortImportance = "high"
	}
	if containsAny(normalized, techKeywords) {
		patch.TechImportance = "high"
	}
	if containsAny(normalized, cautiousKeywords) {
		patch.RiskProfile = "cautious"
	}
	if containsAny(normalized, adventurousKeywords) {
		patch.RiskProfile = "adventurous"
	}

	if !patchEmpty(patch) {
		delta.Car = patch
	}

	// Fold profile-implied categories in via the shared derivation function
	// rather than duplicating the mapping here.
	if delta.Car != nil {
		derived := profile.DeriveProduct(patched(*delta.Car))
		for _, c := range derived.PreferredCategories {
			delta.Product.PreferredCategories = appendUnique(delta.Product.PreferredCategories, c)
		}
		for _, c := range derived.ExcludedCategories {
			delta.Product.ExcludedCategories = appendUnique(delta.Product.ExcludedCategories, c)
		}
		for _, uc := range derived.UseCases {
			delta.Product.UseCases = appendUnique(delta.Product.UseCases, uc)
		}
	}

	return delta
}

// #endregion extract

// #region helpers

func patchEmpty(p *profile.CarPatch) bool {
	return p.BudgetLevel == "" && p.UsagePattern == "" && p.SizePreference == "" &&
		p.ComfortImportance == "" && p.TechImportance == "" && p.RiskProfile == "" &&
		len(p.DesignVibes) == 0 && len(p.BrandLikes) == 0 &&
		len(p.BrandDislikes) == 0 && len(p.DealBreakers) == 0
}

// patched builds a throwaway CarProfile carrying only the patch values, so
// DeriveProduct can run over a delta before it is merged into real state.
func patched(p profile.CarPatch) profile.CarProfile {
	return profile.CarProfile{
		UsagePattern:   p.UsagePattern,
		SizePreference: p.SizePreference,
		DealBreakers:   p.DealBreakers,
	}
}

// negatedTargets collects the X of every "kein X"/"ohne X" in text order,
// de-duplicated.
func negatedTargets(normalized string) []string {
	var out []string
	for _, m := range negationRe.FindAllStringSubmatch(normalized, -1) {
		target := strings.TrimSpace(m[1])
		if target != "" {
			out = appendUnique(out, target)
		}
	}
	return out
}

func hasToken(list []string, token string) bool {
	for _, v := range list {
		if v == token {
			return true
		}
	}
	return false
}

func parseAmount(num, suffix string) (float64, bool) {
	cleaned := strings.NewReplacer(".", "", ",", "").Replace(num)
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	if suffix == "k" || suffix == "tsd" {
		v *= 1000
	}
	return v, true
}

func budgetLevelFor(max float64) string {
	switch {
	case max < 15000:
		return "low"
	case max < 40000:
		return "medium"
	default:
		return "high"
	}
}

func isBrand(token string) bool {
	for _, b := range brandVocabulary {
		if b == token {
			return true
		}
	}
	return false
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// containsWord matches token on word boundaries so "mini" does not fire
// inside "aluminium".
func containsWord(s, token string) bool {
	idx := 0
	for {
		i := strings.Index(s[idx:], token)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(token)
		beforeOK := start == 0 || !isWordByte(s[start-1])
		afterOK := end >= len(s) || !isWordByte(s[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9'
}

func appendUnique(dst []string, v string) []string {
	for _, existing := range dst {
		if strings.EqualFold(existing, v) {
			return dst
		}
	}
	return append(dst, v)
}

// #endregion helpers
