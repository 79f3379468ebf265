package offers

// #region imports
import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"carscout/internal/profile"
)

// #endregion

// #region cached-source

// CachedSource wraps a Source with an expirable LRU so repeated turns with
// an unchanged preference state do not re-run retrieval. The cache is the
// injected get/set/ttl collaborator; the matcher itself stays stateless.
type CachedSource struct {
	inner Source
	cache *expirable.LRU[string, MatchResult]
}

// NewCachedSource creates a caching wrapper. size ≤ 0 defaults to 256
// entries, ttl ≤ 0 to five minutes.
func NewCachedSource(inner Source, size int, ttl time.Duration) *CachedSource {
	if size <= 0 {
		size = 256
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedSource{
		inner: inner,
		cache: expirable.NewLRU[string, MatchResult](size, nil, ttl),
	}
}

// Match serves from cache when the preference signature is unchanged.
func (s *CachedSource) Match(ctx context.Context, prefs profile.Data, strict bool) (MatchResult, error) {
	key := signature(prefs, strict)
	if cached, ok := s.cache.Get(key); ok {
		return cached, nil
	}
	result, err := s.inner.Match(ctx, prefs, strict)
	if err != nil {
		return MatchResult{}, err
	}
	s.cache.Add(key, result)
	return result, nil
}

// #endregion cached-source

// #region signature

// signature builds a normalized cache key from the filter-relevant parts of
// the preference state.
func signature(prefs profile.Data, strict bool) string {
	var b strings.Builder
	b.WriteString(strconv.FormatBool(strict))
	writeSet(&b, "pc", prefs.Product.PreferredCategories)
	writeSet(&b, "xc", prefs.Product.ExcludedCategories)
	writeSet(&b, "pa", prefs.Product.PreferredAttributes)
	writeSet(&b, "xa", prefs.Product.ExcludedAttributes)
	writeSet(&b, "uc", prefs.Product.UseCases)
	writeSet(&b, "bl", prefs.Car.BrandLikes)
	writeSet(&b, "bd", prefs.Car.BrandDislikes)
	writeSet(&b, "db", prefs.Car.DealBreakers)
	if prefs.Product.Budget != nil {
		if prefs.Product.Budget.Min != nil {
			b.WriteString("|min=" + strconv.FormatFloat(*prefs.Product.Budget.Min, 'f', 0, 64))
		}
		if prefs.Product.Budget.Max != nil {
			b.WriteString("|max=" + strconv.FormatFloat(*prefs.Product.Budget.Max, 'f', 0, 64))
		}
	}
	return b.String()
}

func writeSet(b *strings.Builder, tag string, vals []string) {
	if len(vals) == 0 {
		return
	}
	norm := make([]string, 0, len(vals))
	for _, v := range vals {
		norm = append(norm, strings.ToLower(strings.TrimSpace(v)))
	}
	sort.Strings(norm)
	b.WriteString("|" + tag + "=" + strings.Join(norm, ","))
}

// #endregion signature
