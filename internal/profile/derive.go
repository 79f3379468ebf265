package profile

import "strings"

// #region derive

// categoryDealBreakers are deal-breaker tokens that map 1:1 onto an
// excludable category or drivetrain.
var categoryDealBreakers = map[string]string{
	"suv":     "suv",
	"diesel":  "diesel",
	"elektro": "elektro",
}

// usageUseCases maps a usage pattern onto the product-level use case it implies.
var usageUseCases = map[string]string{
	"city":          "stadt",
	"long_distance": "langstrecke",
	"offroad":       "gelände",
	"family":        "familie",
	"commute":       "pendeln",
}

// DeriveProduct computes the product-level filters a CarProfile implies.
// Pure and idempotent: deriving twice from the same profile yields the same
// lists, so re-deriving after every merge never grows state.
func DeriveProduct(car CarProfile) ProductPreference {
	var out ProductPreference

	if car.SizePreference != "" && car.SizePreference != "no_preference" {
		out.PreferredCategories = append(out.PreferredCategories, car.SizePreference)
	}
	if uc, ok := usageUseCases[car.UsagePattern]; ok {
		out.UseCases = append(out.UseCases, uc)
	}
	for _, db := range car.DealBreakers {
		if cat, ok := categoryDealBreakers[strings.ToLower(strings.TrimSpace(db))]; ok {
			out.ExcludedCategories = unionFold(out.ExcludedCategories, []string{cat})
		}
	}
	return out
}

// #endregion derive
