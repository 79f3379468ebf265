package offers

import (
	"context"

	"carscout/internal/profile"
)

// #region offer

// Offer is one candidate vehicle record.
type Offer struct {
	ID         string   `yaml:"id" json:"id"`
	Title      string   `yaml:"title" json:"title"`
	Brand      string   `yaml:"brand" json:"brand"`
	Category   string   `yaml:"category" json:"category"` // kleinwagen | kompakt | kombi | suv | limousine | cabrio | van
	Fuel       string   `yaml:"fuel" json:"fuel"`         // benzin | diesel | elektro | hybrid
	PriceEUR   float64  `yaml:"price_eur" json:"price_eur"`
	UseCases   []string `yaml:"use_cases" json:"use_cases"`
	Attributes []string `yaml:"attributes" json:"attributes"`
	ImageURL   string   `yaml:"image_url" json:"image_url,omitempty"`
}

// #endregion offer

// #region match-result

// MatchResult is one retrieval pass over the catalog.
type MatchResult struct {
	Offers    []Offer `json:"offers"`
	Relevance float64 `json:"relevance"` // [0,1]; mean preference overlap of the returned offers
	Strict    bool    `json:"strict"`
	Reason    string  `json:"reason"`
}

// #endregion match-result

// #region source

// Source returns candidate vehicle records for a preference state. The
// routing core treats this as an opaque external collaborator: a failed
// fetch and a legitimately empty result look the same downstream.
type Source interface {
	Match(ctx context.Context, prefs profile.Data, strict bool) (MatchResult, error)
}

// #endregion source
