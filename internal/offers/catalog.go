package offers

// #region imports
import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"carscout/internal/profile"
)

// #endregion

// #region catalog

// Catalog is an in-memory vehicle catalog loaded from a YAML spec file.
type Catalog struct {
	offers []Offer
}

// LoadCatalog reads and parses a YAML catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	var doc struct {
		Offers []Offer `yaml:"offers"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return NewCatalog(doc.Offers), nil
}

// NewCatalog wraps a fixed offer list. Used by tests and the replay harness.
func NewCatalog(offers []Offer) *Catalog {
	return &Catalog{offers: offers}
}

// Len returns the catalog size.
func (c *Catalog) Len() int { return len(c.offers) }

// #endregion catalog

// #region match

// Match filters the catalog against the preference state.
//
// Exclusions and deal-breakers always apply. In strict mode the budget
// ceiling is hard and preferred categories/brands must overlap when any are
// set; relaxed mode tolerates 10% over budget and falls back to score
// ordering instead of filtering. The relevance score is the mean preference
// overlap of the surviving offers.
func (c *Catalog) Match(ctx context.Context, prefs profile.Data, strict bool) (MatchResult, error) {
	if err := ctx.Err(); err != nil {
		return MatchResult{}, err
	}

	type scored struct {
		offer Offer
		score float64
	}
	var candidates []scored

	for _, o := range c.offers {
		if excluded(o, prefs) {
			continue
		}
		if !withinBudget(o, prefs.Product.Budget, strict) {
			continue
		}
		s := overlapScore(o, prefs)
		if strict && hasPositivePrefs(prefs) && s == 0 {
			continue
		}
		candidates = append(candidates, scored{offer: o, score: s})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	var out []Offer
	for _, c := range candidates {
		out = append(out, c.offer)
	}
	out = consistencyCheck(out)

	result := MatchResult{Offers: out, Strict: strict}
	if len(out) > 0 {
		// Mean overlap of the offers actually returned, so dropped dupes
		// and untitled rows do not dilute the score.
		var total float64
		for _, o := range out {
			total += overlapScore(o, prefs)
		}
		result.Relevance = total / float64(len(out))
		result.Reason = fmt.Sprintf("matched %d offers (strict=%v, relevance=%.2f)", len(out), strict, result.Relevance)
	} else {
		result.Reason = fmt.Sprintf("no offers survived filtering (strict=%v)", strict)
	}
	return result, nil
}

// #endregion match

// #region filters

func excluded(o Offer, prefs profile.Data) bool {
	cat := strings.ToLower(o.Category)
	fuel := strings.ToLower(o.Fuel)
	brand := strings.ToLower(o.Brand)

	for _, ex := range prefs.Product.ExcludedCategories {
		ex = strings.ToLower(ex)
		if ex == cat || ex == fuel || ex == brand {
			return true
		}
	}
	for _, db := range prefs.Car.DealBreakers {
		db = strings.ToLower(db)
		if db == cat || db == fuel {
			return true
		}
	}
	for _, dislike := range prefs.Car.BrandDislikes {
		if strings.EqualFold(dislike, o.Brand) {
			return true
		}
	}
	for _, ex := range prefs.Product.ExcludedAttributes {
		for _, attr := range o.Attributes {
			if strings.EqualFold(ex, attr) {
				return true
			}
		}
	}
	return false
}

func withinBudget(o Offer, b *profile.Budget, strict bool) bool {
	if b == nil || b.Max == nil {
		return true
	}
	limit := *b.Max
	if !strict {
		limit *= 1.10
	}
	if o.PriceEUR > limit {
		return false
	}
	if b.Min != nil && o.PriceEUR < *b.Min {
		return false
	}
	return true
}

func hasPositivePrefs(prefs profile.Data) bool {
	return len(prefs.Product.PreferredCategories) > 0 ||
		len(prefs.Product.PreferredAttributes) > 0 ||
		len(prefs.Car.BrandLikes) > 0 ||
		len(prefs.Product.UseCases) > 0
}

// overlapScore is the fraction of positive preference signals this offer
// satisfies, in [0,1].
func overlapScore(o Offer, prefs profile.Data) float64 {
	var hits, total float64

	cat := strings.ToLower(o.Category)
	brand := strings.ToLower(o.Brand)

	for _, p := range prefs.Product.PreferredCategories {
		total++
		p = strings.ToLower(p)
		if p == cat || p == brand {
			hits++
		}
	}
	for _, like := range prefs.Car.BrandLikes {
		total++
		if strings.EqualFold(like, o.Brand) {
			hits++
		}
	}
	for _, uc := range prefs.Product.UseCases {
		total++
		for _, ouc := range o.UseCases {
			if strings.EqualFold(uc, ouc) {
				hits++
				break
			}
		}
	}
	for _, attr := range prefs.Product.PreferredAttributes {
		total++
		for _, oattr := range o.Attributes {
			if strings.EqualFold(attr, oattr) {
				hits++
				break
			}
		}
	}

	if total == 0 {
		return 0
	}
	return hits / total
}

// consistencyCheck drops offers with empty titles and duplicate IDs.
func consistencyCheck(in []Offer) []Offer {
	seen := make(map[string]bool, len(in))
	var valid []Offer
	for _, o := range in {
		if o.Title == "" {
			continue
		}
		if seen[o.ID] {
			continue
		}
		seen[o.ID] = true
		valid = append(valid, o)
	}
	return valid
}

// #endregion filters
