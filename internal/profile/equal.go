package profile

import (
	"sort"
	"strings"
)

// #region equal

// Equal reports whether two state snapshots are equivalent under
// normalization: list fields compared as sorted lowercase sets, scalar
// fields compared lowercase. Used by history/"did anything change" logic.
func Equal(a, b Data) bool {
	if !scalarEq(a.Car.BudgetLevel, b.Car.BudgetLevel) ||
		!scalarEq(a.Car.UsagePattern, b.Car.UsagePattern) ||
		!scalarEq(a.Car.SizePreference, b.Car.SizePreference) ||
		!scalarEq(a.Car.ComfortImportance, b.Car.ComfortImportance) ||
		!scalarEq(a.Car.TechImportance, b.Car.TechImportance) ||
		!scalarEq(a.Car.RiskProfile, b.Car.RiskProfile) {
		return false
	}
	if !setEq(a.Car.DesignVibes, b.Car.DesignVibes) ||
		!setEq(a.Car.BrandLikes, b.Car.BrandLikes) ||
		!setEq(a.Car.BrandDislikes, b.Car.BrandDislikes) ||
		!setEq(a.Car.DealBreakers, b.Car.DealBreakers) {
		return false
	}
	if !setEq(a.Product.PreferredCategories, b.Product.PreferredCategories) ||
		!setEq(a.Product.ExcludedCategories, b.Product.ExcludedCategories) ||
		!setEq(a.Product.PreferredAttributes, b.Product.PreferredAttributes) ||
		!setEq(a.Product.ExcludedAttributes, b.Product.ExcludedAttributes) ||
		!setEq(a.Product.UseCases, b.Product.UseCases) {
		return false
	}
	if !budgetEq(a.Product.Budget, b.Product.Budget) {
		return false
	}
	if !scalarEq(a.Conversation.KnowledgeLevel, b.Conversation.KnowledgeLevel) ||
		!scalarEq(a.Conversation.DesiredMode, b.Conversation.DesiredMode) ||
		!scalarEq(a.Conversation.DetailLevel, b.Conversation.DetailLevel) ||
		!scalarEq(a.Conversation.Tone, b.Conversation.Tone) ||
		!boolPtrEq(a.Conversation.WantsGuidedQuestions, b.Conversation.WantsGuidedQuestions) {
		return false
	}
	return scalarEq(a.Style.Vibe, b.Style.Vibe) && scalarEq(a.Style.Brevity, b.Style.Brevity)
}

// #endregion equal

// #region helpers

func scalarEq(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func setEq(a, b []string) bool {
	na := normalizeSet(a)
	nb := normalizeSet(b)
	if len(na) != len(nb) {
		return false
	}
	for i := range na {
		if na[i] != nb[i] {
			return false
		}
	}
	return true
}

func normalizeSet(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		key := strings.ToLower(strings.TrimSpace(v))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

func budgetEq(a, b *Budget) bool {
	if a == nil || b == nil {
		return a == b
	}
	return floatPtrEq(a.Min, b.Min) && floatPtrEq(a.Max, b.Max)
}

func floatPtrEq(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func boolPtrEq(a, b *bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// #endregion helpers
